package sync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/greenhouse"
	"github.com/annel0/greenhouse-sim/internal/logging"
)

// Приоритеты: смена маскировки не повторяется, климат перекрывается следующей дельтой
const (
	priorityClimate    = 3
	priorityCamouflage = 7
)

// SyncProducer принимает дельты авторитетной стороны и запросы реплики и передаёт их BatchManager'у.
// Реализует climate.DeltaSink, greenhouse.CamouflageSink и greenhouse.Network.
type SyncProducer struct {
	bm     *BatchManager
	source string
}

// NewSyncProducer создаёт продюсер поверх менеджера пакетов
func NewSyncProducer(bm *BatchManager, source string) *SyncProducer {
	return &SyncProducer{bm: bm, source: source}
}

// PublishClimate реализует climate.DeltaSink
func (sp *SyncProducer) PublishClimate(d climate.Delta) {
	_ = sp.add(ChangeClimate, "climate:"+d.RegionID, priorityClimate, d)
}

// PublishCamouflage реализует greenhouse.CamouflageSink
func (sp *SyncProducer) PublishCamouflage(d greenhouse.CamouflageDelta) {
	_ = sp.add(ChangeCamouflage, camouflageKey("camouflage", d.Pos.String(), d.Type, d.Controller), priorityCamouflage, d)
}

// SendCamouflageRequest реализует greenhouse.Network: запрос уходит авторитетной стороне
// со следующим пакетом реплики
func (sp *SyncProducer) SendCamouflageRequest(req greenhouse.CamouflageRequest) error {
	return sp.add(ChangeCamouflageRequest, camouflageKey("camouflage_request", req.Pos.String(), req.Type, req.Controller), priorityCamouflage, req)
}

func camouflageKey(prefix, pos, typ string, controller bool) string {
	if controller {
		prefix += ":controller"
	}
	return prefix + ":" + pos + ":" + typ
}

func (sp *SyncProducer) add(changeType, key string, priority int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		logging.GetSyncLogger().Warn("SyncProducer: %s не сериализуется: %v", changeType, err)
		return fmt.Errorf("sync: %s: %w", changeType, err)
	}
	sp.bm.AddChange(Change{
		Data:         data,
		Priority:     priority,
		Timestamp:    time.Now().UTC(),
		SourceRegion: sp.source,
		ChangeType:   changeType,
		Key:          key,
	})
	return nil
}
