package greenhouse

import (
	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// Climatizer член теплицы, влияющий на климат (вентилятор, нагреватель, осушитель, дождеватель).
// При сборке добавляет свой источник в регион теплицы, при разборке убирает.
type Climatizer struct {
	multiblock.TileBase
	source *climate.BlockSource
}

// NewClimatizer создаёт тайл. Мощность и радиус берутся из метаданных блока
// (или из значений по умолчанию для id, если блок ещё не установлен);
// знак мощности выбирает нагрев/охлаждение или увлажнение/осушение.
func NewClimatizer(w world.World, pos vec.Vec3, id block.BlockID, hub *multiblock.Listeners) *Climatizer {
	c := &Climatizer{TileBase: multiblock.NewTileBase(w, pos, hub)}

	payload := world.NewBlock(id).Payload
	if b, ok := w.BlockAt(pos); ok && b.ID == id {
		payload = b.Payload
	}
	// после декодирования NBT числа приходят как int32/float32
	meta := record.Record(payload)
	power := meta.GetFloat("power")
	rng := meta.GetInt("range")

	var kind climate.SourceKind
	switch block.TypeOf(id) {
	case block.GreenhouseFan, block.GreenhouseHeater:
		kind = climate.KindHeater
		if power < 0 {
			kind = climate.KindCooler
		}
	default:
		kind = climate.KindHumidifier
		if power < 0 {
			kind = climate.KindDehumidifier
		}
	}

	c.source = climate.NewBlockSource("climatizer:"+pos.String(), pos, kind, power, rng)
	return c
}

// ClimateSource реализует SourceProvider
func (c *Climatizer) ClimateSource() climate.Source {
	return c.source
}

// SetActive включает или выключает климатизатор
func (c *Climatizer) SetActive(active bool) {
	c.source.SetActive(active)
	c.MarkDirty()
}

// OnMachineAssembled регистрирует источник в регионе теплицы
func (c *Climatizer) OnMachineAssembled(mb *multiblock.Controller, minCoord, maxCoord vec.Vec3) {
	c.TileBase.OnMachineAssembled(mb, minCoord, maxCoord)
	if gc, ok := controllerOf(mb); ok {
		gc.Region().AddSource(c.source)
	}
}

// OnMachineBroken убирает источник из региона
func (c *Climatizer) OnMachineBroken() {
	if gc, ok := delegateOf(c.Controller()); ok {
		gc.Region().RemoveSource(c.source)
	}
	c.TileBase.OnMachineBroken()
}
