package sync

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/greenhouse-sim/internal/eventbus"
	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/metrics"
)

// Типы изменений
const (
	ChangeClimate           = "ClimateDelta"
	ChangeCamouflage        = "CamouflageDelta"
	ChangeCamouflageRequest = "CamouflageRequest"
)

// Change содержит сериализованное изменение состояния (JSON дельты).
type Change struct {
	Data         []byte    // Сериализованные данные изменения
	Priority     int       // приоритизация для сброса при перегрузке
	Timestamp    time.Time // Время создания изменения
	SourceRegion string    // Узел-источник изменения
	ChangeType   string    // ChangeClimate | ChangeCamouflage | ChangeCamouflageRequest
	Key          string    // Изменение с тем же ключом замещает прежнее в буфере
}

// BatchManager накапливает изменения и отправляет их пакетами через EventBus.
// Каждый узел имеет собственный экземпляр.
type BatchManager struct {
	mu       sync.Mutex
	buf      []Change
	capacity int

	flushEvery time.Duration
	bus        eventbus.EventBus
	source     string // имя текущего узла
	compressor DeltaCompressor
	metrics    *metrics.Metrics
	dropped    uint64

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBatchManager создаёт менеджер с указанным лимитом буфера и интервалом отправки.
// При flushEvery <= 0 фоновая отправка не запускается, пакеты уходят только через Flush.
func NewBatchManager(bus eventbus.EventBus, source string, capacity int, flushEvery time.Duration, compressor DeltaCompressor, m *metrics.Metrics) *BatchManager {
	if compressor == nil {
		compressor = NewPassthroughCompressor()
	}
	if capacity <= 0 {
		capacity = 64
	}
	bm := &BatchManager{
		capacity:   capacity,
		flushEvery: flushEvery,
		bus:        bus,
		source:     source,
		compressor: compressor,
		metrics:    m,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if flushEvery > 0 {
		go bm.loop()
	} else {
		close(bm.done)
	}
	return bm
}

// AddChange добавляет изменение в буфер.
// Изменение с уже буферизованным ключом замещает прежнее; при переполнении
// вытесняется самое низкоприоритетное изменение, если новое важнее.
func (bm *BatchManager) AddChange(ch Change) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if ch.Key != "" {
		for i := range bm.buf {
			if bm.buf[i].Key == ch.Key {
				bm.buf[i] = ch
				return
			}
		}
	}

	if len(bm.buf) < bm.capacity {
		bm.buf = append(bm.buf, ch)
		return
	}

	// ищем самое низкое Priority и заменяем, если новый выше.
	lowIdx := -1
	lowPri := ch.Priority
	for i, c := range bm.buf {
		if c.Priority < lowPri {
			lowPri = c.Priority
			lowIdx = i
		}
	}
	bm.dropped++
	if lowIdx >= 0 {
		bm.buf[lowIdx] = ch
	}
	// иначе все изменения >= нового, дропаём новый
}

// Pending возвращает число изменений в буфере
func (bm *BatchManager) Pending() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return len(bm.buf)
}

// Dropped возвращает число вытесненных изменений
func (bm *BatchManager) Dropped() uint64 {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.dropped
}

func (bm *BatchManager) loop() {
	defer close(bm.done)

	ticker := time.NewTicker(bm.flushEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := bm.Flush(ctx); err != nil {
				logging.GetSyncLogger().Warn("BatchManager flush error: %v", err)
			}
			cancel()
		case <-bm.quit:
			return
		}
	}
}

// Flush отсылает накопленные изменения единым сообщением.
// Пустой буфер ничего не публикует.
func (bm *BatchManager) Flush(ctx context.Context) error {
	bm.mu.Lock()
	if len(bm.buf) == 0 {
		bm.mu.Unlock()
		return nil
	}
	changes := make([]Change, len(bm.buf))
	copy(changes, bm.buf)
	bm.buf = bm.buf[:0]
	bm.mu.Unlock()

	payload, err := bm.compressor.Compress(changes)
	if err != nil {
		return err
	}

	env := eventbus.NewEnvelope(bm.source, eventbus.TypeSyncBatch, 5, payload)
	if err := bm.bus.Publish(ctx, env); err != nil {
		return err
	}
	bm.metrics.SyncBatch("out")
	logging.GetSyncLogger().Debug("📤 пакет %s: %d изменений, %d байт", env.ID, len(changes), len(payload))
	return nil
}

// Stop завершает работу менеджера и отправляет оставшиеся изменения.
func (bm *BatchManager) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.quit)
		<-bm.done

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := bm.Flush(ctx); err != nil {
			logging.GetSyncLogger().Warn("BatchManager final flush error: %v", err)
		}
	})
}
