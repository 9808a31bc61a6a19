package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localHub синхронная рассылка инвалидаций между узлами одного процесса
type localHub struct {
	mu       sync.Mutex
	handlers map[string]InvalidationHandler
}

type localInvalidator struct {
	hub  *localHub
	node string
}

func (h *localHub) node(name string) *localInvalidator {
	return &localInvalidator{hub: h, node: name}
}

func (l *localInvalidator) PublishInvalidation(_ context.Context, key string) error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	for node, h := range l.hub.handlers {
		if node != l.node {
			h(key)
		}
	}
	return nil
}

func (l *localInvalidator) SubscribeInvalidations(_ context.Context, handler InvalidationHandler) error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	l.hub.handlers[l.node] = handler
	return nil
}

func (l *localInvalidator) Close() error { return nil }

func TestCachedStore_Contract(t *testing.T) {
	codec, err := NewCodec(false)
	require.NoError(t, err)
	cs, err := NewCachedStore(context.Background(), NewMemoryStore(codec), nil)
	require.NoError(t, err)
	exerciseStore(t, cs)
}

func TestCachedStore_HitsAndIsolation(t *testing.T) {
	ctx := context.Background()
	codec, err := NewCodec(true)
	require.NoError(t, err)
	cs, err := NewCachedStore(ctx, NewMemoryStore(codec), nil)
	require.NoError(t, err)

	require.NoError(t, cs.Save(ctx, "greenhouse:a", sampleRecord()))

	rec, ok, err := cs.Load(ctx, "greenhouse:a")
	require.NoError(t, err)
	require.True(t, ok)
	rec.SetInt("water", 0)

	again, _, err := cs.Load(ctx, "greenhouse:a")
	require.NoError(t, err)
	assert.Equal(t, 490, again.GetInt("water"), "изменение загруженной записи не портит кеш")

	stats := cs.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(0), stats.Misses)
	assert.Equal(t, 1, stats.Keys)
}

func TestCachedStore_CrossNodeInvalidation(t *testing.T) {
	ctx := context.Background()
	codec, err := NewCodec(true)
	require.NoError(t, err)
	shared := NewMemoryStore(codec)
	hub := &localHub{handlers: make(map[string]InvalidationHandler)}

	a, err := NewCachedStore(ctx, shared, hub.node("a"))
	require.NoError(t, err)
	b, err := NewCachedStore(ctx, shared, hub.node("b"))
	require.NoError(t, err)

	require.NoError(t, a.Save(ctx, "hatch:1,2,3", sampleRecord()))
	_, ok, err := b.Load(ctx, "hatch:1,2,3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, b.Stats().Keys, "узел b закешировал запись")

	updated := sampleRecord()
	updated.SetInt("water", 7)
	require.NoError(t, a.Save(ctx, "hatch:1,2,3", updated))
	assert.Equal(t, 0, b.Stats().Keys, "сохранение на узле a инвалидирует кеш узла b")

	rec, _, err := b.Load(ctx, "hatch:1,2,3")
	require.NoError(t, err)
	assert.Equal(t, 7, rec.GetInt("water"))

	require.NoError(t, a.Delete(ctx, "hatch:1,2,3"))
	_, ok, err = b.Load(ctx, "hatch:1,2,3")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpen_WithCache(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Cache = true
	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*CachedStore)
	assert.True(t, ok, "cache=true оборачивает backend кешем")
	exerciseStore(t, s)
}
