package climate

import (
	"context"
	"fmt"
	"testing"

	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegion(t *testing.T) *Region {
	t.Helper()
	return NewRegion(world.NewMemoryWorld(false), RegionConfig{
		ID:             "gh-1",
		TicksPerUpdate: 20,
		Ambient:        ConstantAmbient{Temperature: 15, Humidity: 50},
	})
}

func TestRegion_SourceSetSemantics(t *testing.T) {
	r := newTestRegion(t)
	heater := NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4)
	dryer := NewBlockSource("dryer", vec.Vec3{X: 1}, KindDehumidifier, 10, 4)

	r.AddSource(heater)
	r.AddSource(heater)
	r.AddSource(dryer)
	require.Len(t, r.Sources(), 2, "повторное добавление не создаёт дубликат")
	assert.Equal(t, "dryer", r.Sources()[0].SourceID(), "источники упорядочены по идентификатору")

	r.RemoveSource(heater)
	r.RemoveSource(heater)
	r.RemoveSource(NewBlockSource("ghost", vec.Vec3{}, KindCooler, 1, 1))
	require.Len(t, r.Sources(), 1, "удаление отсутствующего источника ничего не делает")
	assert.False(t, r.HasSource("heater"))
	assert.True(t, r.HasSource("dryer"))

	r.UpdateClimate(20)
	assert.Equal(t, float32(40), r.Humidity(), "вклад дублированного источника не удваивается")
}

func TestRegion_UpdateZeroTicksIsNoop(t *testing.T) {
	r := newTestRegion(t)
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))

	before := r.Climate()
	r.UpdateClimate(0)
	r.UpdateClimate(-3)
	assert.Equal(t, before, r.Climate(), "UpdateClimate(0) не должен менять скаляры")
}

func TestRegion_HeaterScenario(t *testing.T) {
	r := newTestRegion(t)
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))

	assert.Equal(t, float32(15), r.Temperature(), "до обновления значение равно фону")
	r.UpdateClimate(20)
	assert.Equal(t, float32(20), r.Temperature(), "фон 15° + нагреватель 5°")
	assert.Equal(t, float32(50), r.Humidity(), "влажность не меняется нагревателем")
}

func TestRegion_PartialUpdateApproachesTarget(t *testing.T) {
	r := newTestRegion(t)
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))

	r.UpdateClimate(10)
	assert.InDelta(t, 17.5, r.Temperature(), 1e-5, "половина периода проходит половину пути")

	r.UpdateClimate(100)
	assert.InDelta(t, 20, r.Temperature(), 1e-5, "доля ограничена единицей")
}

func TestRegion_ReadDoesNotRecompute(t *testing.T) {
	r := newTestRegion(t)
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))

	assert.Equal(t, float32(15), r.Temperature())
	assert.Equal(t, float32(15), r.Temperature(), "чтение не запускает пересчёт")
}

func TestRegion_PositionsFalloff(t *testing.T) {
	r := newTestRegion(t)
	r.SetBounds(vec.Vec3{}, vec.Vec3{X: 2})
	for x := 0; x <= 2; x++ {
		_, ok := r.Sample(vec.Vec3{X: x})
		require.True(t, ok)
	}
	_, ok := r.Sample(vec.Vec3{X: 5})
	assert.False(t, ok, "координата вне границ не получает отсчёт")

	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 6, 2))
	r.UpdateClimate(20)

	p0, _ := r.PositionAt(vec.Vec3{X: 0})
	p1, _ := r.PositionAt(vec.Vec3{X: 1})
	p2, _ := r.PositionAt(vec.Vec3{X: 2})
	assert.InDelta(t, 21, p0.Temperature, 1e-4)
	assert.InDelta(t, 19, p1.Temperature, 1e-4)
	assert.InDelta(t, 17, p2.Temperature, 1e-4)
	assert.InDelta(t, 19, r.Temperature(), 1e-4, "регион усредняет цели отсчётов")
}

func TestRegion_Clamping(t *testing.T) {
	r := newTestRegion(t)
	r.AddSource(NewBlockSource("sprinkler", vec.Vec3{}, KindHumidifier, 500, 1))

	r.UpdateClimate(20)
	assert.Equal(t, MaxHumidity, r.Humidity())
}

func TestRegion_InactiveSourceIgnored(t *testing.T) {
	r := newTestRegion(t)
	heater := NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4)
	heater.SetActive(false)
	r.AddSource(heater)

	r.UpdateClimate(20)
	assert.Equal(t, float32(15), r.Temperature())
	assert.Len(t, r.Sources(), 1, "выключенный источник остаётся в множестве")
}

func TestRegion_SetBoundsEvicts(t *testing.T) {
	r := newTestRegion(t)
	r.Sample(vec.Vec3{X: 1})
	r.Sample(vec.Vec3{X: 9})
	r.AddOtherPosition(vec.Vec3{X: 9, Y: 1})

	r.SetBounds(vec.Vec3{}, vec.Vec3{X: 3, Y: 3, Z: 3})

	positions := r.Positions()
	assert.Len(t, positions, 1)
	assert.Contains(t, positions, vec.Vec3{X: 1})
	assert.Empty(t, r.OtherPositions(), "прочие координаты вне границ удаляются")
}

func TestRegion_RoundTrip(t *testing.T) {
	r := newTestRegion(t)
	r.SetBounds(vec.Vec3{}, vec.Vec3{X: 2, Y: 2, Z: 2})
	r.Sample(vec.Vec3{X: 1, Y: 1, Z: 1})
	r.Sample(vec.Vec3{X: 2, Y: 1, Z: 1})
	r.AddOtherPosition(vec.Vec3{})
	heater := NewBlockSource("heater", vec.Vec3{X: 1, Y: 1, Z: 1}, KindHeater, 5, 2)
	r.AddSource(heater)
	r.UpdateClimate(7)

	rec := r.WriteTo(record.New())

	restored := NewRegion(r.World(), RegionConfig{
		Ambient: ConstantAmbient{Temperature: 15, Humidity: 50},
		Resolver: func(id string) (Source, bool) {
			if id == "heater" {
				return heater, true
			}
			return nil, false
		},
	})
	require.NoError(t, restored.ReadFrom(rec))

	assert.Equal(t, r.ID(), restored.ID())
	assert.Equal(t, r.Climate(), restored.Climate(), "скаляры восстанавливаются точно")
	assert.Equal(t, r.Positions(), restored.Positions(), "набор отсчётов восстанавливается точно")
	assert.Equal(t, r.OtherPositions(), restored.OtherPositions())
	assert.True(t, restored.HasSource("heater"))
	assert.Equal(t, r.TicksPerUpdate(), restored.TicksPerUpdate())
}

func TestRegion_RoundTripThroughNBT(t *testing.T) {
	r := newTestRegion(t)
	r.Sample(vec.Vec3{X: 4, Y: 5, Z: 6})
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))
	r.UpdateClimate(20)

	data, err := record.Marshal(r.WriteTo(record.New()))
	require.NoError(t, err)
	rec, err := record.Unmarshal(data)
	require.NoError(t, err)

	restored := NewRegion(nil, RegionConfig{})
	require.NoError(t, restored.ReadFrom(rec))

	assert.Equal(t, r.Climate(), restored.Climate())
	assert.Equal(t, r.Positions(), restored.Positions())
	assert.Equal(t, []string{"heater"}, restored.PendingSources(), "без резолвера источник ожидает восстановления")

	again := restored.WriteTo(record.New())
	assert.Equal(t, []string{"heater"}, again.GetStringList("sources"), "ожидающий источник записывается обратно")

	restored.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))
	assert.Empty(t, restored.PendingSources(), "добавление источника снимает ожидание")
}

func TestRegion_ReadFromRejectsInvalid(t *testing.T) {
	r := newTestRegion(t)
	err := r.ReadFrom(record.New())
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRegion_RemoteIgnoresUpdateButAppliesDelta(t *testing.T) {
	r := NewRegion(world.NewMemoryWorld(true), RegionConfig{ID: "gh-1"})
	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))

	r.UpdateClimate(20)
	assert.Equal(t, float32(15), r.Temperature(), "реплика не считает климат сама")

	assert.False(t, r.ApplyDelta(Delta{RegionID: "other", Temperature: 99}))
	assert.True(t, r.ApplyDelta(Delta{RegionID: "gh-1", Temperature: 22, Humidity: 40}))
	assert.Equal(t, float32(22), r.Temperature())
	assert.Equal(t, float32(40), r.Humidity())
}

func TestRegion_EmitsDeltaOnChange(t *testing.T) {
	var deltas []Delta
	r := NewRegion(world.NewMemoryWorld(false), RegionConfig{
		ID:   "gh-1",
		Sink: DeltaSinkFunc(func(d Delta) { deltas = append(deltas, d) }),
	})

	r.UpdateClimate(20)
	assert.Empty(t, deltas, "без изменений дельта не отправляется")

	r.AddSource(NewBlockSource("heater", vec.Vec3{}, KindHeater, 5, 4))
	r.UpdateClimate(20)
	require.Len(t, deltas, 1)
	assert.Equal(t, Delta{RegionID: "gh-1", Temperature: 20, Humidity: 50}, deltas[0])
}

func TestRegion_OrderIndependent(t *testing.T) {
	build := func(order []int) Climate {
		r := newTestRegion(t)
		for _, x := range order {
			r.Sample(vec.Vec3{X: x})
			r.AddSource(NewBlockSource(fmt.Sprintf("s%d", x), vec.Vec3{X: x}, KindHeater, 0.1*float32(x+1), 3))
		}
		r.UpdateClimate(13)
		return r.Climate()
	}

	assert.Equal(t, build([]int{0, 1, 2, 3, 4}), build([]int{4, 2, 0, 3, 1}),
		"результат не зависит от порядка добавления")
}

func TestFalloff(t *testing.T) {
	assert.Equal(t, 1.0, Falloff(0, 3))
	assert.Equal(t, 0.75, Falloff(1, 3))
	assert.Equal(t, 0.0, Falloff(4, 3))
	assert.Equal(t, 1.0, Falloff(0, 0))
}

func TestNoiseAmbient_Deterministic(t *testing.T) {
	a := NewNoiseAmbient(Climate{Temperature: 15, Humidity: 50}, Climate{Temperature: 10, Humidity: 20}, 0.05, 42)
	b := NewNoiseAmbient(Climate{Temperature: 15, Humidity: 50}, Climate{Temperature: 10, Humidity: 20}, 0.05, 42)

	pos := vec.Vec3{X: 37, Y: 64, Z: -12}
	assert.Equal(t, a.Baseline(pos), b.Baseline(pos), "одинаковый сид даёт одинаковый фон")

	c := a.Baseline(pos)
	assert.InDelta(t, 15, c.Temperature, 20)
	assert.Equal(t, c, a.Baseline(vec.Vec3{X: 37, Y: 0, Z: -12}), "фон не зависит от высоты")
}

func TestAmbientFromConfig(t *testing.T) {
	cfg := config.Default().Climate
	a := AmbientFromConfig(cfg)
	assert.Equal(t, ConstantAmbient{Temperature: 15, Humidity: 50}, a)

	cfg.NoiseScale = 0.05
	cfg.NoiseSeed = 7
	_, ok := AmbientFromConfig(cfg).(*NoiseAmbient)
	assert.True(t, ok, "ненулевой масштаб включает шум")
}

func TestScheduler_Cadence(t *testing.T) {
	s := NewScheduler(nil)
	fast := NewRegion(nil, RegionConfig{ID: "fast", TicksPerUpdate: 10})
	slow := NewRegion(nil, RegionConfig{ID: "slow", TicksPerUpdate: 40})
	fast.AddSource(NewBlockSource("h", vec.Vec3{}, KindHeater, 5, 1))
	slow.AddSource(NewBlockSource("h", vec.Vec3{}, KindHeater, 5, 1))
	s.Add(fast)
	s.Add(slow)

	ctx := context.Background()
	assert.Equal(t, 1, s.Tick(ctx, 10))
	assert.Equal(t, float32(20), fast.Temperature())
	assert.Equal(t, float32(15), slow.Temperature(), "медленный регион ещё не обновлялся")

	assert.Equal(t, 0, s.Tick(ctx, 15))
	assert.Equal(t, 2, s.Tick(ctx, 40))
	assert.Equal(t, float32(20), slow.Temperature())

	s.Remove("fast")
	assert.Equal(t, 1, s.Len())
}
