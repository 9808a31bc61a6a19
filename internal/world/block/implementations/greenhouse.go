package implementations

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// GreenhouseBehavior реализует каркасные блоки теплицы и люки
type GreenhouseBehavior struct {
	id    block.BlockID
	name  string
	gtype block.GreenhouseType
}

// ID возвращает идентификатор блока
func (b *GreenhouseBehavior) ID() block.BlockID {
	return b.id
}

// Name возвращает имя блока
func (b *GreenhouseBehavior) Name() string {
	return b.name
}

// GreenhouseType возвращает вариант блока теплицы
func (b *GreenhouseBehavior) GreenhouseType() block.GreenhouseType {
	return b.gtype
}

// OnPlace помечает блок как ещё не собранный в конструкцию
func (b *GreenhouseBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {
	api.SetBlockMetadata(pos, "assembled", false)
	api.NotifyNeighbors(pos)
}

// OnBreak оповещает соседей, чтобы конструкция пересобралась
func (b *GreenhouseBehavior) OnBreak(api block.BlockAPI, pos vec.Vec3) {
	api.NotifyNeighbors(pos)
}

// CreateMetadata создает начальные метаданные для блока
func (b *GreenhouseBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{"assembled": false}
}
