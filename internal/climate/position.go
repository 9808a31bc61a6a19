package climate

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Position климатический отсчёт в одной координате региона
type Position struct {
	Pos         vec.Vec3
	Temperature float32
	Humidity    float32
}

// Climate пара значений температуры и влажности
type Climate struct {
	Temperature float32
	Humidity    float32
}
