package vec

// Facing описывает одно из шести направлений по граням блока
type Facing uint8

const (
	Down Facing = iota
	Up
	North
	South
	West
	East
)

// Facings перечисляет все направления в фиксированном порядке
var Facings = [6]Facing{Down, Up, North, South, West, East}

// Vector возвращает единичный вектор направления.
// North смотрит в -Z, South в +Z, West в -X, East в +X.
func (f Facing) Vector() Vec3 {
	switch f {
	case Down:
		return Vec3{Y: -1}
	case Up:
		return Vec3{Y: 1}
	case North:
		return Vec3{Z: -1}
	case South:
		return Vec3{Z: 1}
	case West:
		return Vec3{X: -1}
	case East:
		return Vec3{X: 1}
	default:
		return Vec3{}
	}
}

// Opposite возвращает противоположное направление
func (f Facing) Opposite() Facing {
	switch f {
	case Down:
		return Up
	case Up:
		return Down
	case North:
		return South
	case South:
		return North
	case West:
		return East
	default:
		return West
	}
}

// String возвращает имя направления
func (f Facing) String() string {
	switch f {
	case Down:
		return "down"
	case Up:
		return "up"
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	default:
		return "unknown"
	}
}
