package greenhouse

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// HatchOptions коллабораторы люка
type HatchOptions struct {
	Network Network        // Реплика отправляет через него запросы маскировки
	Sink    CamouflageSink // Авторитетная сторона публикует через него дельты маскировки
}

// Hatch люк теплицы: член конструкции с внешним направлением, маскировкой и владельцем
type Hatch struct {
	multiblock.TileBase

	outwards    vec.Facing
	hasOutwards bool

	camouflage Item
	owner      *Owner

	network Network
	sink    CamouflageSink
}

// NewHatch создаёт люк в координате
func NewHatch(w world.World, pos vec.Vec3, hub *multiblock.Listeners, opts HatchOptions) *Hatch {
	return &Hatch{
		TileBase: multiblock.NewTileBase(w, pos, hub),
		network:  opts.Network,
		sink:     opts.Sink,
	}
}

// blockType вариант блока под люком
func (h *Hatch) blockType() block.GreenhouseType {
	if h.World() == nil {
		return block.GreenhouseNone
	}
	b, ok := h.World().BlockAt(h.Pos())
	if !ok {
		return block.GreenhouseNone
	}
	return b.GreenhouseType()
}

// OutwardsDir внешнее направление; false для люка в углу, на ребре или внутри
func (h *Hatch) OutwardsDir() (vec.Facing, bool) {
	return h.outwards, h.hasOutwards
}

// OutwardsPos соседняя координата по внешнему направлению
func (h *Hatch) OutwardsPos() (vec.Vec3, error) {
	if !h.hasOutwards {
		return vec.Vec3{}, fmt.Errorf("люк %s: %w", h.Pos(), multiblock.ErrNotConnectable)
	}
	return h.Pos().Offset(h.outwards), nil
}

// OutwardsTile тайл снаружи люка. Отсутствие тайла не ошибка: ok=false.
func (h *Hatch) OutwardsTile() (world.Tile, bool, error) {
	pos, err := h.OutwardsPos()
	if err != nil {
		return nil, false, err
	}
	t, ok := h.World().TileAt(pos)
	return t, ok, nil
}

// OnMachineAssembled пересчитывает направление по границам конструкции
func (h *Hatch) OnMachineAssembled(c *multiblock.Controller, minCoord, maxCoord vec.Vec3) {
	h.TileBase.OnMachineAssembled(c, minCoord, maxCoord)
	h.RecalculateOutwardsDirection(minCoord, maxCoord)
}

// OnMachineBroken сбрасывает направление
func (h *Hatch) OnMachineBroken() {
	h.TileBase.OnMachineBroken()
	h.hasOutwards = false
}

// RecalculateOutwardsDirection вычисляет внешнее направление.
// Направление есть только у люка ровно на одной грани коробки; люк-вход смотрит внутрь.
func (h *Hatch) RecalculateOutwardsDirection(minCoord, maxCoord vec.Vec3) {
	h.hasOutwards = false
	pos := h.Pos()

	faces := 0
	if pos.X == minCoord.X || pos.X == maxCoord.X {
		faces++
	}
	if pos.Y == minCoord.Y || pos.Y == maxCoord.Y {
		faces++
	}
	if pos.Z == minCoord.Z || pos.Z == maxCoord.Z {
		faces++
	}
	if faces != 1 {
		return
	}

	switch {
	case pos.X == maxCoord.X:
		h.outwards = vec.East
	case pos.X == minCoord.X:
		h.outwards = vec.West
	case pos.Z == maxCoord.Z:
		h.outwards = vec.South
	case pos.Z == minCoord.Z:
		h.outwards = vec.North
	case pos.Y == maxCoord.Y:
		h.outwards = vec.Up
	default:
		h.outwards = vec.Down
	}
	h.hasOutwards = true

	if h.blockType() != block.GreenhouseHatchOutput {
		h.outwards = h.outwards.Opposite()
	}
}

// CamouflageType тип маскировки определяется вариантом блока
func (h *Hatch) CamouflageType() string {
	if h.blockType() == block.GreenhouseGlass {
		return CamouflageGlass
	}
	return CamouflageDefault
}

// CanHandleType реализует CamouflageHandler
func (h *Hatch) CanHandleType(typ string) bool {
	return typ == h.CamouflageType()
}

// CamouflageBlock текущая маскировка
func (h *Hatch) CamouflageBlock(string) Item {
	return h.camouflage
}

// DefaultCamouflageBlock у люка маскировки по умолчанию нет
func (h *Hatch) DefaultCamouflageBlock(string) Item {
	return Item{}
}

// SetCamouflageBlock меняет маскировку. Повтор того же значения ничего не делает.
// Реплика пересылает запрос авторитетной стороне, авторитетная сторона публикует дельту.
func (h *Hatch) SetCamouflageBlock(typ string, item Item) {
	if item == h.camouflage {
		return
	}
	h.camouflage = item

	if h.World() != nil && h.World().IsRemote() {
		if h.network != nil {
			req := CamouflageRequest{Pos: h.Pos(), Type: typ, Item: item}
			if err := h.network.SendCamouflageRequest(req); err != nil {
				logging.Warn("люк %s: не удалось отправить запрос маскировки: %v", h.Pos(), err)
			}
		}
	} else if h.sink != nil {
		h.sink.PublishCamouflage(CamouflageDelta{Pos: h.Pos(), Type: typ, Item: item})
	}

	h.Publish(multiblock.Event{
		Type:    multiblock.EventCamouflageChange,
		Source:  h.Pos(),
		Payload: CamouflageChange{Type: typ, Item: item, Source: h.Pos()},
	})
}

// ApplyCamouflageDelta применяет дельту на реплике без обратного запроса
func (h *Hatch) ApplyCamouflageDelta(d CamouflageDelta) bool {
	if d.Controller || d.Pos != h.Pos() || d.Item == h.camouflage {
		return false
	}
	h.camouflage = d.Item
	h.MarkDirty()
	h.Publish(multiblock.Event{
		Type:    multiblock.EventCamouflageChange,
		Source:  h.Pos(),
		Payload: CamouflageChange{Type: d.Type, Item: d.Item, Source: h.Pos()},
	})
	return true
}

// Owner владелец люка
func (h *Hatch) Owner() (Owner, bool) {
	if h.owner == nil {
		return Owner{}, false
	}
	return *h.owner, true
}

// SetOwner задаёт владельца
func (h *Hatch) SetOwner(o Owner) {
	h.owner = &o
}

// GreenhouseController контроллер теплицы, если люк входит в собранную конструкцию
func (h *Hatch) GreenhouseController() (*Controller, bool) {
	return controllerOf(h.Controller())
}

// ErrorLogic состояния ошибок теплицы (nil вне конструкции)
func (h *Hatch) ErrorLogic() *ErrorLogic {
	if gc, ok := h.GreenhouseController(); ok {
		return gc.ErrorLogic()
	}
	return nil
}

// WriteTo сохраняет люк
func (h *Hatch) WriteTo(rec record.Record) record.Record {
	rec.SetPos(h.Pos())
	if !h.camouflage.IsEmpty() {
		rec.SetRecord("CamouflageBlock", h.camouflage.WriteTo(record.New()))
	}
	if h.owner != nil {
		rec.SetRecord("owner", h.owner.WriteTo(record.New()))
	}
	return rec
}

// ReadFrom восстанавливает люк. Маскировка восстанавливается без событий.
func (h *Hatch) ReadFrom(rec record.Record) error {
	if rec.HasKey("CamouflageBlock") {
		h.camouflage = ReadItem(rec.GetRecord("CamouflageBlock"))
	}
	if rec.HasKey("owner") {
		o, err := ReadOwner(rec.GetRecord("owner"))
		if err != nil {
			return fmt.Errorf("люк %s: %w", h.Pos(), err)
		}
		h.owner = &o
	}
	return nil
}

// EncodeDescription данные описания для первичной синхронизации реплики
func (h *Hatch) EncodeDescription(rec record.Record) record.Record {
	if !h.camouflage.IsEmpty() {
		rec.SetRecord("CamouflageBlock", h.camouflage.WriteTo(record.New()))
	}
	return rec
}

// DecodeDescription применяет описание через SetCamouflageBlock
func (h *Hatch) DecodeDescription(rec record.Record) {
	if rec.HasKey("CamouflageBlock") {
		h.SetCamouflageBlock(h.CamouflageType(), ReadItem(rec.GetRecord("CamouflageBlock")))
	}
}
