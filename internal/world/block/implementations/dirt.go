package implementations

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// TerrainBehavior реализует простые блоки ландшафта (земля, камень)
type TerrainBehavior struct {
	id   block.BlockID
	name string
}

// ID возвращает идентификатор блока
func (b *TerrainBehavior) ID() block.BlockID {
	return b.id
}

// Name возвращает имя блока
func (b *TerrainBehavior) Name() string {
	return b.name
}

// GreenhouseType ландшафт не входит в теплицу
func (b *TerrainBehavior) GreenhouseType() block.GreenhouseType {
	return block.GreenhouseNone
}

// OnPlace вызывается при установке блока
func (b *TerrainBehavior) OnPlace(api block.BlockAPI, pos vec.Vec3) {}

// OnBreak вызывается при разрушении блока
func (b *TerrainBehavior) OnBreak(api block.BlockAPI, pos vec.Vec3) {}

// CreateMetadata создает пустые метаданные
func (b *TerrainBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}
