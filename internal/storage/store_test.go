package storage

import (
	"context"
	"testing"

	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/metrics"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() record.Record {
	rec := record.New()
	rec.SetString("name", "greenhouse")
	rec.SetInt("water", 490)
	rec.SetFloat("temperature", 21.5)
	rec.SetPos(vec.Vec3{X: 1, Y: -2, Z: 3})
	return rec
}

func TestCodec_RoundTrip(t *testing.T) {
	for _, compress := range []bool{true, false} {
		codec, err := NewCodec(compress)
		require.NoError(t, err)

		data, err := codec.Encode(sampleRecord())
		require.NoError(t, err)
		if compress {
			assert.Equal(t, markerZstd, data[0])
		} else {
			assert.Equal(t, markerRaw, data[0])
		}

		rec, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, "greenhouse", rec.GetString("name"))
		assert.Equal(t, 490, rec.GetInt("water"))
		assert.Equal(t, float32(21.5), rec.GetFloat("temperature"))
		assert.Equal(t, vec.Vec3{X: 1, Y: -2, Z: 3}, rec.GetPos())
		codec.Close()
	}
}

func TestCodec_RejectsGarbage(t *testing.T) {
	codec, err := NewCodec(true)
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decode(nil)
	assert.Error(t, err)
	_, err = codec.Decode([]byte{0x7f, 1, 2})
	assert.Error(t, err, "неизвестный маркер должен давать ошибку")
	_, err = codec.Decode([]byte{markerZstd, 1, 2, 3})
	assert.Error(t, err)
}

// exerciseStore общий сценарий для всех реализаций
func exerciseStore(t *testing.T, s RecordStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "greenhouse:missing")
	require.NoError(t, err)
	assert.False(t, ok, "отсутствующий ключ не ошибка")

	require.NoError(t, s.Save(ctx, "greenhouse:b", sampleRecord()))
	require.NoError(t, s.Save(ctx, "greenhouse:a", sampleRecord()))
	require.NoError(t, s.Save(ctx, "hatch:1,2,3", sampleRecord()))

	rec, ok, err := s.Load(ctx, "greenhouse:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 490, rec.GetInt("water"))

	keys, err := s.Keys(ctx, "greenhouse:")
	require.NoError(t, err)
	assert.Equal(t, []string{"greenhouse:a", "greenhouse:b"}, keys)

	require.NoError(t, s.Delete(ctx, "greenhouse:a"))
	require.NoError(t, s.Delete(ctx, "greenhouse:a"))
	_, ok, err = s.Load(ctx, "greenhouse:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	codec, err := NewCodec(true)
	require.NoError(t, err)
	s := NewMemoryStore(codec)
	exerciseStore(t, s)
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Save(context.Background(), "x", record.New()), ErrNotReady)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NewMemoryStore(codec).Save(ctx, "x", record.New()))
}

func TestBadgerStore(t *testing.T) {
	codec, err := NewCodec(true)
	require.NoError(t, err)
	defer codec.Close()

	dir := t.TempDir()
	s, err := NewBadgerStore(dir, codec)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "повторное закрытие безопасно")

	// Данные переживают переоткрытие
	reopened, err := NewBadgerStore(dir, codec)
	require.NoError(t, err)
	defer reopened.Close()
	_, ok, err := reopened.Load(context.Background(), "hatch:1,2,3")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpen_MemoryWithMetricsAndObjects(t *testing.T) {
	cfg := config.Default().Storage
	m := metrics.New(prometheus.NewRegistry())
	s, err := Open(context.Background(), cfg, m)
	require.NoError(t, err)
	defer s.Close()

	region := climate.NewRegion(nil, climate.RegionConfig{ID: "r1"})
	region.SetBounds(vec.Vec3{}, vec.Vec3{X: 2, Y: 2, Z: 2})
	region.Sample(vec.Vec3{X: 1, Y: 1, Z: 1})
	region.AddSource(climate.NewBlockSource("heater", vec.Vec3{}, climate.KindHeater, 5, 4))
	region.UpdateClimate(20)

	require.NoError(t, SaveObject(context.Background(), s, "region:r1", region))

	restored := climate.NewRegion(nil, climate.RegionConfig{})
	ok, err := LoadObject(context.Background(), s, "region:r1", restored)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, region.Climate(), restored.Climate())
	assert.Equal(t, []string{"heater"}, restored.PendingSources())

	ok, err = LoadObject(context.Background(), s, "region:none", restored)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = Open(context.Background(), config.StorageConfig{Backend: "tape"}, nil)
	assert.Error(t, err)
}
