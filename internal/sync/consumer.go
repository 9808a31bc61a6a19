package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/eventbus"
	"github.com/annel0/greenhouse-sim/internal/greenhouse"
	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/metrics"
)

// Applier применяет полученные изменения: дельты на реплике, запросы на авторитетной стороне.
// Вызывается только из потока симуляции хоста (через Drain).
type Applier interface {
	ApplyClimate(d climate.Delta) bool
	ApplyCamouflage(d greenhouse.CamouflageDelta) bool
	ApplyCamouflageRequest(req greenhouse.CamouflageRequest) bool
}

// SyncConsumer слушает SyncBatch сообщения других узлов и складывает изменения во входящую очередь.
// Обработчик шины работает в своей горутине, поэтому состояние мира в нём не трогается:
// хост вызывает Drain на своём тике.
type SyncConsumer struct {
	sub        eventbus.Subscription
	compressor DeltaCompressor
	source     string
	metrics    *metrics.Metrics

	mu    sync.Mutex
	inbox []Change

	// Только поток Drain
	resolver ConflictResolver
	applied  map[string]Change // последнее применённое по ключу, без данных
}

// NewSyncConsumer подписывается на пакеты; пакеты собственного узла source пропускаются
func NewSyncConsumer(ctx context.Context, bus eventbus.EventBus, source string, compressor DeltaCompressor, m *metrics.Metrics) (*SyncConsumer, error) {
	if compressor == nil {
		compressor = NewPassthroughCompressor()
	}
	sc := &SyncConsumer{
		compressor: compressor,
		source:     source,
		metrics:    m,
		resolver:   NewLWWResolver(),
		applied:    make(map[string]Change),
	}
	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: []string{eventbus.TypeSyncBatch}}, sc.handle)
	if err != nil {
		return nil, err
	}
	sc.sub = sub
	return sc, nil
}

func (sc *SyncConsumer) handle(ctx context.Context, ev *eventbus.Envelope) {
	if ev.Source == sc.source {
		return
	}
	log := logging.GetSyncLogger()

	changes, err := sc.compressor.Decompress(ev.Payload)
	if err != nil {
		log.Warn("SyncConsumer: пакет %s от %s отброшен: %v", ev.ID, ev.Source, err)
		return
	}
	sc.metrics.SyncBatch("in")
	log.Debug("📥 пакет %s от %s: %d изменений", ev.ID, ev.Source, len(changes))

	sc.mu.Lock()
	sc.inbox = append(sc.inbox, changes...)
	sc.mu.Unlock()
}

// Pending возвращает число изменений, ожидающих применения
func (sc *SyncConsumer) Pending() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.inbox)
}

// SetResolver заменяет стратегию разрешения конфликтов (по умолчанию LWW)
func (sc *SyncConsumer) SetResolver(r ConflictResolver) {
	sc.resolver = r
}

// stale сообщает, что по ключу изменения уже применено более новое
func (sc *SyncConsumer) stale(ch *Change) bool {
	if ch.Key == "" {
		return false
	}
	prev, ok := sc.applied[ch.Key]
	if !ok {
		return false
	}
	winner, err := sc.resolver.Resolve(&Conflict{LocalChange: &prev, RemoteChange: ch, DetectedAt: time.Now()})
	if err != nil {
		logging.GetSyncLogger().Warn("SyncConsumer: конфликт по %s не разрешён: %v", ch.Key, err)
		return true
	}
	return winner != ch
}

// Drain применяет накопленные изменения в порядке поступления и возвращает число применённых.
// Устаревшие и нераспознанные изменения пропускаются.
func (sc *SyncConsumer) Drain(a Applier) int {
	sc.mu.Lock()
	changes := sc.inbox
	sc.inbox = nil
	sc.mu.Unlock()

	applied := 0
	for i := range changes {
		if sc.stale(&changes[i]) {
			continue
		}
		if changes[i].Key != "" {
			meta := changes[i]
			meta.Data = nil
			sc.applied[meta.Key] = meta
		}
		ok, err := applyChange(a, &changes[i])
		if err != nil {
			logging.GetSyncLogger().Warn("SyncConsumer: ошибка применения изменения от %s: %v", changes[i].SourceRegion, err)
			continue
		}
		if ok {
			applied++
		}
	}
	return applied
}

// applyChange декодирует и применяет отдельное изменение
func applyChange(a Applier, change *Change) (bool, error) {
	if len(change.Data) == 0 {
		return false, fmt.Errorf("change data is empty")
	}

	switch change.ChangeType {
	case ChangeClimate:
		var d climate.Delta
		if err := json.Unmarshal(change.Data, &d); err != nil {
			return false, err
		}
		return a.ApplyClimate(d), nil
	case ChangeCamouflage:
		var d greenhouse.CamouflageDelta
		if err := json.Unmarshal(change.Data, &d); err != nil {
			return false, err
		}
		return a.ApplyCamouflage(d), nil
	case ChangeCamouflageRequest:
		var req greenhouse.CamouflageRequest
		if err := json.Unmarshal(change.Data, &req); err != nil {
			return false, err
		}
		return a.ApplyCamouflageRequest(req), nil
	default:
		return false, fmt.Errorf("неизвестный тип изменения %q", change.ChangeType)
	}
}

// Stop отписывается от шины
func (sc *SyncConsumer) Stop() { sc.sub.Unsubscribe() }
