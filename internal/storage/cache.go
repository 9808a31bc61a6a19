package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/record"
)

// InvalidationHandler обрабатывает уведомление об инвалидации ключа
type InvalidationHandler func(key string)

// Invalidator рассылает и принимает уведомления об инвалидации между узлами
type Invalidator interface {
	PublishInvalidation(ctx context.Context, key string) error
	SubscribeInvalidations(ctx context.Context, handler InvalidationHandler) error
	Close() error
}

// CacheStats счётчики кеша
type CacheStats struct {
	Hits   uint64
	Misses uint64
	Keys   int
}

// CachedStore кеш записей в памяти поверх другого хранилища.
// Запись идёт сквозь кеш в backend; другие узлы получают инвалидацию через Invalidator.
// Записи хранятся сериализованными, поэтому вызывающий код не может испортить кеш изменением записи.
type CachedStore struct {
	backing RecordStore
	inv     Invalidator

	mu      sync.RWMutex
	entries map[string][]byte

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedStore оборачивает backing; inv может быть nil (кеш одного узла)
func NewCachedStore(ctx context.Context, backing RecordStore, inv Invalidator) (*CachedStore, error) {
	cs := &CachedStore{
		backing: backing,
		inv:     inv,
		entries: make(map[string][]byte),
	}
	if inv != nil {
		if err := inv.SubscribeInvalidations(ctx, cs.Invalidate); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// Invalidate удаляет ключ из локального кеша
func (cs *CachedStore) Invalidate(key string) {
	cs.mu.Lock()
	delete(cs.entries, key)
	cs.mu.Unlock()
	logging.GetStorageLogger().Trace("кеш: инвалидирован ключ %s", key)
}

func (cs *CachedStore) put(key string, rec record.Record) {
	data, err := record.Marshal(rec)
	if err != nil {
		cs.Invalidate(key)
		return
	}
	cs.mu.Lock()
	cs.entries[key] = data
	cs.mu.Unlock()
}

func (cs *CachedStore) publish(ctx context.Context, key string) {
	if cs.inv == nil {
		return
	}
	if err := cs.inv.PublishInvalidation(ctx, key); err != nil {
		logging.GetStorageLogger().Warn("кеш: инвалидация %s не отправлена: %v", key, err)
	}
}

// Save реализует RecordStore
func (cs *CachedStore) Save(ctx context.Context, key string, rec record.Record) error {
	if err := cs.backing.Save(ctx, key, rec); err != nil {
		cs.Invalidate(key)
		return err
	}
	cs.put(key, rec)
	cs.publish(ctx, key)
	return nil
}

// Load реализует RecordStore
func (cs *CachedStore) Load(ctx context.Context, key string) (record.Record, bool, error) {
	cs.mu.RLock()
	data, ok := cs.entries[key]
	cs.mu.RUnlock()
	if ok {
		if rec, err := record.Unmarshal(data); err == nil {
			cs.hits.Add(1)
			return rec, true, nil
		}
		cs.Invalidate(key)
	}

	cs.misses.Add(1)
	rec, found, err := cs.backing.Load(ctx, key)
	if err != nil || !found {
		return rec, found, err
	}
	cs.put(key, rec)
	return rec, true, nil
}

// Delete реализует RecordStore
func (cs *CachedStore) Delete(ctx context.Context, key string) error {
	cs.Invalidate(key)
	if err := cs.backing.Delete(ctx, key); err != nil {
		return err
	}
	cs.publish(ctx, key)
	return nil
}

// Keys реализует RecordStore; список всегда берётся из backend
func (cs *CachedStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return cs.backing.Keys(ctx, prefix)
}

// Stats возвращает счётчики кеша
func (cs *CachedStore) Stats() CacheStats {
	cs.mu.RLock()
	n := len(cs.entries)
	cs.mu.RUnlock()
	return CacheStats{Hits: cs.hits.Load(), Misses: cs.misses.Load(), Keys: n}
}

// Close закрывает инвалидатор и backend
func (cs *CachedStore) Close() error {
	if cs.inv != nil {
		if err := cs.inv.Close(); err != nil {
			logging.GetStorageLogger().Warn("кеш: ошибка закрытия инвалидатора: %v", err)
		}
	}
	return cs.backing.Close()
}
