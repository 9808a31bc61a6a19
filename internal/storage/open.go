package storage

import (
	"context"
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/metrics"
	"github.com/annel0/greenhouse-sim/internal/record"
)

// Open создаёт хранилище по конфигурации: memory | badger | redis,
// при cfg.Cache поверх него ставится кеш записей.
// Операции учитываются в метриках, если m != nil.
func Open(ctx context.Context, cfg config.StorageConfig, m *metrics.Metrics) (RecordStore, error) {
	codec, err := NewCodec(cfg.Compress)
	if err != nil {
		return nil, err
	}

	var store RecordStore
	switch cfg.Backend {
	case "", "memory":
		store = NewMemoryStore(codec)
	case "badger":
		store, err = NewBadgerStore(cfg.Path, codec)
	case "redis":
		store, err = NewRedisStore(ctx, &RedisConfig{Addr: cfg.RedisAddr, KeyPrefix: cfg.RedisPrefix}, codec)
	default:
		err = fmt.Errorf("неизвестный backend хранилища %q", cfg.Backend)
	}
	if err != nil {
		codec.Close()
		return nil, err
	}

	store = &instrumentedStore{RecordStore: store, codec: codec, metrics: m}
	if !cfg.Cache {
		return store, nil
	}

	var inv Invalidator
	if cfg.InvalidationURL != "" {
		ni, err := NewNATSInvalidator(InvalidatorConfig{NATSURL: cfg.InvalidationURL})
		if err != nil {
			store.Close()
			return nil, err
		}
		inv = ni
	}
	cached, err := NewCachedStore(ctx, store, inv)
	if err != nil {
		if inv != nil {
			inv.Close()
		}
		store.Close()
		return nil, err
	}
	return cached, nil
}

// instrumentedStore учитывает операции в метриках
type instrumentedStore struct {
	RecordStore
	codec   *Codec
	metrics *metrics.Metrics
}

func (s *instrumentedStore) Save(ctx context.Context, key string, rec record.Record) error {
	err := s.RecordStore.Save(ctx, key, rec)
	s.metrics.StoreOp("save", err)
	return err
}

func (s *instrumentedStore) Load(ctx context.Context, key string) (record.Record, bool, error) {
	rec, ok, err := s.RecordStore.Load(ctx, key)
	s.metrics.StoreOp("load", err)
	return rec, ok, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.RecordStore.Delete(ctx, key)
	s.metrics.StoreOp("delete", err)
	return err
}

func (s *instrumentedStore) Close() error {
	err := s.RecordStore.Close()
	s.codec.Close()
	return err
}
