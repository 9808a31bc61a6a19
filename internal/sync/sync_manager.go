package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/eventbus"
	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/metrics"
)

// SyncManager координирует работу всех компонентов синхронизации:
// BatchManager, SyncProducer, SyncConsumer.
type SyncManager struct {
	bm       *BatchManager
	producer *SyncProducer
	consumer *SyncConsumer
}

// SyncConfig параметры менеджера
type SyncConfig struct {
	RegionID   string
	Bus        eventbus.EventBus
	BatchSize  int
	FlushEvery time.Duration
	Compress   bool
	Metrics    *metrics.Metrics
}

// ConfigFrom переводит секцию sync файла конфигурации в параметры менеджера
func ConfigFrom(cfg config.SyncConfig, bus eventbus.EventBus, m *metrics.Metrics) SyncConfig {
	return SyncConfig{
		RegionID:   cfg.RegionID,
		Bus:        bus,
		BatchSize:  cfg.GetBatchSize(),
		FlushEvery: cfg.GetFlushEvery(),
		Compress:   cfg.Compress,
		Metrics:    m,
	}
}

// NewSyncManager создаёт менеджер и подписывает потребителя на шину
func NewSyncManager(ctx context.Context, cfg SyncConfig) (*SyncManager, error) {
	if cfg.Bus == nil {
		return nil, fmt.Errorf("sync: шина событий не задана")
	}
	log := logging.GetSyncLogger()

	var compressor DeltaCompressor
	if cfg.Compress {
		zc, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		compressor = zc
		log.Info("🔄 SyncManager: используется zstd-компрессия")
	} else {
		compressor = NewPassthroughCompressor()
		log.Info("🔄 SyncManager: компрессия отключена")
	}

	bm := NewBatchManager(cfg.Bus, cfg.RegionID, cfg.BatchSize, cfg.FlushEvery, compressor, cfg.Metrics)
	consumer, err := NewSyncConsumer(ctx, cfg.Bus, cfg.RegionID, compressor, cfg.Metrics)
	if err != nil {
		bm.Stop()
		return nil, err
	}

	log.Info("✅ SyncManager инициализирован: node=%s, batch=%d, flush=%v",
		cfg.RegionID, cfg.BatchSize, cfg.FlushEvery)

	return &SyncManager{
		bm:       bm,
		producer: NewSyncProducer(bm, cfg.RegionID),
		consumer: consumer,
	}, nil
}

// Producer возвращает приёмник дельт для регионов и люков авторитетной стороны
func (sm *SyncManager) Producer() *SyncProducer {
	return sm.producer
}

// Flush немедленно отправляет буфер
func (sm *SyncManager) Flush(ctx context.Context) error {
	return sm.bm.Flush(ctx)
}

// Drain применяет полученные изменения; вызывать из потока симуляции
func (sm *SyncManager) Drain(a Applier) int {
	return sm.consumer.Drain(a)
}

// Stop отписывает потребителя и отправляет остаток буфера
func (sm *SyncManager) Stop() {
	sm.consumer.Stop()
	sm.bm.Stop()
	logging.GetSyncLogger().Info("🔄 SyncManager остановлен")
}
