package sync

import (
	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/greenhouse"
	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
)

// RegionLookup ищет регион по идентификатору (например, climate.Scheduler)
type RegionLookup interface {
	Region(id string) (*climate.Region, bool)
}

// camouflageTarget тайл, принимающий дельту маскировки
type camouflageTarget interface {
	ApplyCamouflageDelta(d greenhouse.CamouflageDelta) bool
}

// WorldApplier применяет изменения к регионам и тайлам мира узла.
// На реплике применяются дельты, на авторитетной стороне запросы маскировки.
type WorldApplier struct {
	Regions RegionLookup
	World   world.World
}

// ApplyClimate находит регион и применяет дельту; неизвестный регион игнорируется
func (wa WorldApplier) ApplyClimate(d climate.Delta) bool {
	if wa.Regions == nil {
		return false
	}
	r, ok := wa.Regions.Region(d.RegionID)
	if !ok {
		return false
	}
	return r.ApplyDelta(d)
}

// ApplyCamouflage передаёт дельту тайлу в её координате или контроллеру его теплицы
func (wa WorldApplier) ApplyCamouflage(d greenhouse.CamouflageDelta) bool {
	tile, ok := wa.tileAt(d.Pos)
	if !ok {
		return false
	}
	if d.Controller {
		gc, ok := greenhouse.ControllerOfTile(tile)
		if !ok {
			return false
		}
		return gc.ApplyCamouflageDelta(d)
	}
	target, ok := tile.(camouflageTarget)
	if !ok {
		return false
	}
	return target.ApplyCamouflageDelta(d)
}

// ApplyCamouflageRequest выполняет запрос реплики через SetCamouflageBlock,
// который публикует дельту обратно. Реплика запросы не принимает.
func (wa WorldApplier) ApplyCamouflageRequest(req greenhouse.CamouflageRequest) bool {
	if wa.World != nil && wa.World.IsRemote() {
		return false
	}
	tile, ok := wa.tileAt(req.Pos)
	if !ok {
		return false
	}

	var handler greenhouse.CamouflageHandler
	if req.Controller {
		gc, ok := greenhouse.ControllerOfTile(tile)
		if !ok {
			return false
		}
		handler = gc
	} else if handler, ok = tile.(greenhouse.CamouflageHandler); !ok {
		return false
	}

	if !handler.CanHandleType(req.Type) {
		logging.GetSyncLogger().Debug("запрос маскировки %s: тип %q не поддерживается", req.Pos, req.Type)
		return false
	}
	if handler.CamouflageBlock(req.Type) == req.Item {
		return false
	}
	handler.SetCamouflageBlock(req.Type, req.Item)
	return true
}

func (wa WorldApplier) tileAt(pos vec.Vec3) (world.Tile, bool) {
	if wa.World == nil {
		return nil, false
	}
	return wa.World.TileAt(pos)
}
