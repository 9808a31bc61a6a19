package implementations

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "Air"
}

// GreenhouseType воздух не входит в теплицу
func (b *AirBehavior) GreenhouseType() block.GreenhouseType {
	return block.GreenhouseNone
}

// OnPlace вызывается при установке блока
func (b *AirBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {}

// OnBreak вызывается при разрушении блока
func (b *AirBehavior) OnBreak(api block.BlockAPI, pos vec.Vec3) {}

// CreateMetadata создает пустые метаданные
func (b *AirBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}
