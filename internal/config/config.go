package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляции теплиц.
// Пустые поля заполняются значениями по умолчанию через геттеры.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Climate    ClimateConfig    `yaml:"climate"`
	Multiblock MultiblockConfig `yaml:"multiblock"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Sync       SyncConfig       `yaml:"sync"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type LoggingConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

type ClimateConfig struct {
	TicksPerUpdate     int     `yaml:"ticks_per_update"`
	AmbientTemperature float64 `yaml:"ambient_temperature"`
	AmbientHumidity    float64 `yaml:"ambient_humidity"`
	NoiseSeed          int64   `yaml:"noise_seed"`
	NoiseScale         float64 `yaml:"noise_scale"` // 0 отключает шум окружения
}

type MultiblockConfig struct {
	MaxScan int `yaml:"max_scan"`
	MinSize int `yaml:"min_size"`
	MaxSize int `yaml:"max_size"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // memory | badger | redis
	Path        string `yaml:"path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	Compress    bool   `yaml:"compress"`

	Cache           bool   `yaml:"cache"`            // кеш записей поверх backend
	InvalidationURL string `yaml:"invalidation_url"` // NATS для межузловой инвалидации кеша
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type SyncConfig struct {
	RegionID   string `yaml:"region_id"`
	BatchSize  int    `yaml:"batch_size"`
	FlushEvery int    `yaml:"flush_every_ms"`
	Compress   bool   `yaml:"compress"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// TelemetryConfig трассировка OTLP; пустой Endpoint отключает экспорт
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint"` // host:port коллектора, например localhost:4318
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Default возвращает полностью заполненную конфигурацию
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Climate: ClimateConfig{
			TicksPerUpdate:     20,
			AmbientTemperature: 15,
			AmbientHumidity:    50,
		},
		Multiblock: MultiblockConfig{MaxScan: 4096, MinSize: 3, MaxSize: 15},
		Storage:    StorageConfig{Backend: "memory", Path: "data", RedisAddr: "localhost:6379", RedisPrefix: "greenhouse:", Compress: true},
		EventBus:   EventBusConfig{Stream: "GREENHOUSE", Retention: 24},
		Sync:       SyncConfig{RegionID: "local", BatchSize: 64, FlushEvery: 250, Compress: true},
		Metrics:    MetricsConfig{Addr: ":2112"},
		Telemetry:  TelemetryConfig{ServiceName: "greenhouse-sim", Insecure: true},
	}
}

// GetTicksPerUpdate возвращает период обновления климата в тиках
func (c *ClimateConfig) GetTicksPerUpdate() int {
	return getIntWithEnvFallback(c.TicksPerUpdate, "GREENHOUSE_TICKS_PER_UPDATE", 20)
}

// GetMaxScan возвращает ограничение обхода при сборке
func (m *MultiblockConfig) GetMaxScan() int {
	return getIntWithEnvFallback(m.MaxScan, "GREENHOUSE_MAX_SCAN", 4096)
}

// GetMinSize возвращает минимальную сторону конструкции
func (m *MultiblockConfig) GetMinSize() int {
	return getIntWithEnvFallback(m.MinSize, "GREENHOUSE_MIN_SIZE", 3)
}

// GetMaxSize возвращает максимальную сторону конструкции
func (m *MultiblockConfig) GetMaxSize() int {
	return getIntWithEnvFallback(m.MaxSize, "GREENHOUSE_MAX_SIZE", 15)
}

// GetBatchSize возвращает размер батча синхронизации
func (s *SyncConfig) GetBatchSize() int {
	return getIntWithEnvFallback(s.BatchSize, "GREENHOUSE_SYNC_BATCH", 64)
}

// GetFlushEvery возвращает период сброса батча
func (s *SyncConfig) GetFlushEvery() time.Duration {
	return time.Duration(getIntWithEnvFallback(s.FlushEvery, "GREENHOUSE_SYNC_FLUSH_MS", 250)) * time.Millisecond
}

// GetRetention возвращает время хранения событий в стриме
func (e *EventBusConfig) GetRetention() time.Duration {
	return time.Duration(getIntWithEnvFallback(e.Retention, "GREENHOUSE_EVENTS_RETENTION_HOURS", 24)) * time.Hour
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultValue
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV GREENHOUSE_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GREENHOUSE_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
