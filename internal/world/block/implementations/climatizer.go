package implementations

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// ClimatizerBehavior реализует блоки, влияющие на климат (вентилятор, нагреватель, осушитель, дождеватель).
// Мощность и радиус хранятся в метаданных блока.
type ClimatizerBehavior struct {
	id    block.BlockID
	name  string
	gtype block.GreenhouseType
	power float64
	rng   int
}

// ID возвращает идентификатор блока
func (b *ClimatizerBehavior) ID() block.BlockID {
	return b.id
}

// Name возвращает имя блока
func (b *ClimatizerBehavior) Name() string {
	return b.name
}

// GreenhouseType возвращает вариант блока теплицы
func (b *ClimatizerBehavior) GreenhouseType() block.GreenhouseType {
	return b.gtype
}

// OnPlace инициализирует мощность и радиус действия
func (b *ClimatizerBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {
	api.SetBlockMetadata(pos, "power", b.power)
	api.SetBlockMetadata(pos, "range", b.rng)
	api.NotifyNeighbors(pos)
}

// OnBreak оповещает соседей
func (b *ClimatizerBehavior) OnBreak(api block.BlockAPI, pos vec.Vec3) {
	api.NotifyNeighbors(pos)
}

// CreateMetadata создает начальные метаданные для блока
func (b *ClimatizerBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"assembled": false,
		"power":     b.power,
		"range":     b.rng,
	}
}
