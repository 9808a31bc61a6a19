package greenhouse

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/metrics"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// Part простой член теплицы (стена, стекло, редуктор, блок управления)
type Part struct {
	multiblock.TileBase
}

// NewPart создаёт простой член
func NewPart(w world.World, pos vec.Vec3, hub *multiblock.Listeners) *Part {
	return &Part{TileBase: multiblock.NewTileBase(w, pos, hub)}
}

// GreenhouseController контроллер теплицы, если блок входит в собранную конструкцию
func (p *Part) GreenhouseController() (*Controller, bool) {
	return controllerOf(p.Controller())
}

// ControllerOfTile контроллер теплицы, в которую входит тайл
func ControllerOfTile(t world.Tile) (*Controller, bool) {
	comp, ok := t.(multiblock.Component)
	if !ok {
		return nil, false
	}
	return controllerOf(comp.Controller())
}

// NewTile создаёт тайл для блока теплицы; для прочих блоков возвращает nil
func NewTile(w world.World, pos vec.Vec3, id block.BlockID, hub *multiblock.Listeners, opts HatchOptions) world.Tile {
	gtype := block.TypeOf(id)
	switch {
	case gtype == block.GreenhouseNone:
		return nil
	case gtype.IsHatch():
		return NewHatch(w, pos, hub, opts)
	case gtype.IsClimatizer():
		return NewClimatizer(w, pos, id, hub)
	default:
		return NewPart(w, pos, hub)
	}
}

// IsMember блок входит в теплицу, если это вариант теплицы с тайлом
func IsMember(b world.Block, t world.Tile) bool {
	return b.GreenhouseType() != block.GreenhouseNone && t != nil
}

// Rules правила сборки теплицы: пустотелая коробка с ровно одним блоком управления
func Rules(w world.World, cfg config.MultiblockConfig) multiblock.Rules {
	minSide, maxSide := cfg.GetMinSize(), cfg.GetMaxSize()
	return multiblock.Rules{
		Name:     "greenhouse",
		IsMember: IsMember,
		Shape:    multiblock.ShapeShell,
		MinSize:  vec.Vec3{X: minSide, Y: minSide, Z: minSide},
		MaxSize:  vec.Vec3{X: maxSide, Y: maxSide, Z: maxSide},
		MaxScan:  cfg.GetMaxScan(),
		Validate: func(members map[vec.Vec3]multiblock.Component, _, _ vec.Vec3) error {
			controls := 0
			for pos := range members {
				if b, ok := w.BlockAt(pos); ok && b.GreenhouseType() == block.GreenhouseControl {
					controls++
				}
			}
			if controls != 1 {
				return fmt.Errorf("%w: блоков управления %d, нужен ровно один", multiblock.ErrShape, controls)
			}
			return nil
		},
	}
}

// NewAssembler создаёт ассемблер теплиц для мира
func NewAssembler(w world.World, cfg config.MultiblockConfig, ctrl ControllerConfig, m *metrics.Metrics) *multiblock.Assembler {
	return multiblock.NewAssembler(w, multiblock.AssemblerConfig{
		Rules:       Rules(w, cfg),
		NewDelegate: NewDelegateFactory(ctrl),
		Metrics:     m,
	})
}

// ControllerFor контроллер теплицы, которому принадлежит координата
func ControllerFor(a *multiblock.Assembler, pos vec.Vec3) (*Controller, bool) {
	mb, ok := a.ControllerAt(pos)
	if !ok {
		return nil, false
	}
	return controllerOf(mb)
}
