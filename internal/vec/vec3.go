package vec

import (
	"fmt"
	"slices"
)

// Vec3 представляет трехмерный вектор с целочисленными координатами
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// String возвращает строковое представление координат
func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Offset возвращает соседнюю координату в направлении f
func (v Vec3) Offset(f Facing) Vec3 {
	return v.Add(f.Vector())
}

// Neighbors возвращает шесть соседей по граням (порядок фиксирован порядком Facings)
func (v Vec3) Neighbors() [6]Vec3 {
	var out [6]Vec3
	for i, f := range Facings {
		out[i] = v.Offset(f)
	}
	return out
}

// Less сравнивает координаты лексикографически: X, затем Y, затем Z
func (v Vec3) Less(other Vec3) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.Z < other.Z
}

// Compare возвращает -1, 0 или 1 в лексикографическом порядке Less
func Compare(a, b Vec3) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// DistanceSq возвращает квадрат евклидова расстояния
func (v Vec3) DistanceSq(other Vec3) int {
	d := v.Sub(other)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Chebyshev возвращает расстояние Чебышёва (максимум модулей разностей)
func (v Vec3) Chebyshev(other Vec3) int {
	d := v.Sub(other)
	return max(abs(d.X), abs(d.Y), abs(d.Z))
}

// Min покомпонентный минимум
func Min(a, b Vec3) Vec3 {
	return Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)}
}

// Max покомпонентный максимум
func Max(a, b Vec3) Vec3 {
	return Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)}
}

// Size возвращает размеры коробки [minC, maxC] включительно
func Size(minC, maxC Vec3) Vec3 {
	return Vec3{X: maxC.X - minC.X + 1, Y: maxC.Y - minC.Y + 1, Z: maxC.Z - minC.Z + 1}
}

// Within проверяет, лежит ли v внутри коробки [minC, maxC] включительно
func (v Vec3) Within(minC, maxC Vec3) bool {
	return v.X >= minC.X && v.X <= maxC.X &&
		v.Y >= minC.Y && v.Y <= maxC.Y &&
		v.Z >= minC.Z && v.Z <= maxC.Z
}

// SortVec3 сортирует срез координат лексикографически
func SortVec3(list []Vec3) {
	slices.SortFunc(list, Compare)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
