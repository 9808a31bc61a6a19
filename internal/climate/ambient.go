package climate

import (
	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/aquilax/go-perlin"
)

// Ambient задаёт фоновый климат, к которому добавляются вклады источников
type Ambient interface {
	Baseline(pos vec.Vec3) Climate
}

// ConstantAmbient одинаковый фон во всех координатах
type ConstantAmbient Climate

// Baseline реализует Ambient
func (a ConstantAmbient) Baseline(pos vec.Vec3) Climate {
	return Climate(a)
}

// NoiseAmbient фон, плавно меняющийся по горизонтали (шум Перлина), как климат биомов
type NoiseAmbient struct {
	base      Climate
	amplitude Climate
	scale     float64
	noise     *perlin.Perlin
}

// NewNoiseAmbient создаёт фон с шумом; amplitude задаёт максимальное отклонение от base
func NewNoiseAmbient(base, amplitude Climate, scale float64, seed int64) *NoiseAmbient {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &NoiseAmbient{
		base:      base,
		amplitude: amplitude,
		scale:     scale,
		noise:     perlin.NewPerlin(alpha, beta, n, seed),
	}
}

// Baseline реализует Ambient. Значение зависит только от X и Z.
func (a *NoiseAmbient) Baseline(pos vec.Vec3) Climate {
	t := a.noise.Noise2D(float64(pos.X)*a.scale, float64(pos.Z)*a.scale)
	// Второй канал берём со смещением, чтобы влажность не повторяла температуру
	h := a.noise.Noise2D(float64(pos.X)*a.scale+1000, float64(pos.Z)*a.scale+1000)
	return clampClimate(Climate{
		Temperature: a.base.Temperature + a.amplitude.Temperature*float32(t),
		Humidity:    a.base.Humidity + a.amplitude.Humidity*float32(h),
	})
}

// AmbientFromConfig строит фон из секции climate; NoiseScale > 0 включает шум
func AmbientFromConfig(cfg config.ClimateConfig) Ambient {
	base := Climate{Temperature: float32(cfg.AmbientTemperature), Humidity: float32(cfg.AmbientHumidity)}
	if cfg.NoiseScale <= 0 {
		return ConstantAmbient(base)
	}
	return NewNoiseAmbient(base, Climate{Temperature: 5, Humidity: 15}, cfg.NoiseScale, cfg.NoiseSeed)
}
