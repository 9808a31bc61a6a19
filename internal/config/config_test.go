package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greenhouse.yaml")
	data := []byte(`
climate:
  ticks_per_update: 40
  ambient_temperature: 21.5
multiblock:
  max_scan: 128
storage:
  backend: badger
  path: /tmp/gh
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Climate.GetTicksPerUpdate())
	assert.Equal(t, 21.5, cfg.Climate.AmbientTemperature)
	assert.Equal(t, 50.0, cfg.Climate.AmbientHumidity, "не заданное в файле значение берётся по умолчанию")
	assert.Equal(t, 128, cfg.Multiblock.GetMaxScan())
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.GetFlushEvery())
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv("GREENHOUSE_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestGetters_EnvFallback(t *testing.T) {
	t.Setenv("GREENHOUSE_MAX_SCAN", "77")

	var m MultiblockConfig
	assert.Equal(t, 77, m.GetMaxScan(), "при нулевом значении используется ENV")

	m.MaxScan = 5
	assert.Equal(t, 5, m.GetMaxScan(), "значение из конфига приоритетнее ENV")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
