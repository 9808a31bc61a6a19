package multiblock

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
)

// Shape ограничение формы конструкции
type Shape uint8

const (
	// ShapeAny любая связная форма
	ShapeAny Shape = iota
	// ShapeBox сплошной параллелепипед
	ShapeBox
	// ShapeShell пустотелый параллелепипед: оболочка целиком из членов, внутри членов нет
	ShapeShell
)

// Rules правила сборки конструкции одного типа
type Rules struct {
	Name string

	// IsMember решает, может ли блок с тайлом входить в конструкцию
	IsMember func(b world.Block, t world.Tile) bool

	Shape   Shape
	MinSize vec.Vec3 // Нулевая компонента: без ограничения
	MaxSize vec.Vec3
	MaxScan int // Предел обхода; 0: 4096

	// Validate дополнительная проверка собранного набора (например, «ровно один блок управления»)
	Validate func(members map[vec.Vec3]Component, minCoord, maxCoord vec.Vec3) error
}

const defaultMaxScan = 4096

func (r Rules) maxScan() int {
	if r.MaxScan <= 0 {
		return defaultMaxScan
	}
	return r.MaxScan
}

// check проверяет размеры, форму и пользовательские ограничения
func (r Rules) check(members map[vec.Vec3]Component, minCoord, maxCoord vec.Vec3) error {
	size := vec.Size(minCoord, maxCoord)

	if (r.MinSize.X > 0 && size.X < r.MinSize.X) ||
		(r.MinSize.Y > 0 && size.Y < r.MinSize.Y) ||
		(r.MinSize.Z > 0 && size.Z < r.MinSize.Z) {
		return fmt.Errorf("%w: %s < %s", ErrTooSmall, size, r.MinSize)
	}
	if (r.MaxSize.X > 0 && size.X > r.MaxSize.X) ||
		(r.MaxSize.Y > 0 && size.Y > r.MaxSize.Y) ||
		(r.MaxSize.Z > 0 && size.Z > r.MaxSize.Z) {
		return fmt.Errorf("%w: %s > %s", ErrTooLarge, size, r.MaxSize)
	}

	switch r.Shape {
	case ShapeBox:
		volume := size.X * size.Y * size.Z
		if len(members) != volume {
			return fmt.Errorf("%w: заполнено %d из %d", ErrShape, len(members), volume)
		}
	case ShapeShell:
		for x := minCoord.X; x <= maxCoord.X; x++ {
			for y := minCoord.Y; y <= maxCoord.Y; y++ {
				for z := minCoord.Z; z <= maxCoord.Z; z++ {
					pos := vec.Vec3{X: x, Y: y, Z: z}
					_, member := members[pos]
					onShell := x == minCoord.X || x == maxCoord.X ||
						y == minCoord.Y || y == maxCoord.Y ||
						z == minCoord.Z || z == maxCoord.Z
					if onShell && !member {
						return fmt.Errorf("%w: дыра в оболочке %s", ErrShape, pos)
					}
					if !onShell && member {
						return fmt.Errorf("%w: член внутри оболочки %s", ErrShape, pos)
					}
				}
			}
		}
	}

	if r.Validate != nil {
		return r.Validate(members, minCoord, maxCoord)
	}
	return nil
}
