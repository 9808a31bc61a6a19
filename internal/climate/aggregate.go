package climate

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Границы значений климата
const (
	MinTemperature float32 = -50
	MaxTemperature float32 = 150
	MinHumidity    float32 = 0
	MaxHumidity    float32 = 100
)

// Falloff ослабление вклада источника на расстоянии d при радиусе r:
// 1 - d/(r+1) внутри радиуса, 0 за его пределами.
func Falloff(d, r int) float64 {
	if d < 0 || d > r {
		return 0
	}
	return 1 - float64(d)/float64(r+1)
}

// targetAt целевой климат в координате: фон плюс ослабленные вклады, с ограничением
func targetAt(base Climate, pos vec.Vec3, sources []Source) Climate {
	t := float64(base.Temperature)
	h := float64(base.Humidity)
	for _, src := range sources {
		w := Falloff(src.Pos().Chebyshev(pos), src.Range())
		if w == 0 {
			continue
		}
		e := src.Effect()
		t += float64(e.Temperature) * w
		h += float64(e.Humidity) * w
	}
	return clampClimate(Climate{Temperature: float32(t), Humidity: float32(h)})
}

// regionTargetWithoutPositions фон плюс полные вклады всех источников
func regionTargetWithoutPositions(base Climate, sources []Source) Climate {
	t := float64(base.Temperature)
	h := float64(base.Humidity)
	for _, src := range sources {
		e := src.Effect()
		t += float64(e.Temperature)
		h += float64(e.Humidity)
	}
	return clampClimate(Climate{Temperature: float32(t), Humidity: float32(h)})
}

// approach сдвигает value к target на долю fraction (0..1)
func approach(value, target float32, fraction float64) float32 {
	if fraction >= 1 {
		return target
	}
	return float32(float64(value) + (float64(target)-float64(value))*fraction)
}

func clampClimate(c Climate) Climate {
	return Climate{
		Temperature: clamp(c.Temperature, MinTemperature, MaxTemperature),
		Humidity:    clamp(c.Humidity, MinHumidity, MaxHumidity),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
