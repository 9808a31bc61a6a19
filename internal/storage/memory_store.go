package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/annel0/greenhouse-sim/internal/record"
)

// MemoryStore реализует RecordStore в памяти.
// Значения хранятся в закодированном виде, как в настоящих хранилищах.
// ВНИМАНИЕ: данные теряются при перезапуске!
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	codec  *Codec
	closed bool
}

// NewMemoryStore создаёт хранилище в памяти
func NewMemoryStore(codec *Codec) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), codec: codec}
}

// Save реализует RecordStore
func (s *MemoryStore) Save(ctx context.Context, key string, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.codec.Encode(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotReady
	}
	s.data[key] = data
	return nil
}

// Load реализует RecordStore
func (s *MemoryStore) Load(ctx context.Context, key string) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, false, ErrNotReady
	}
	data, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	rec, err := s.codec.Decode(data)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Delete реализует RecordStore
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotReady
	}
	delete(s.data, key)
	return nil
}

// Keys реализует RecordStore
func (s *MemoryStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrNotReady
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len количество записей
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close реализует RecordStore
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.data = make(map[string][]byte)
	return nil
}
