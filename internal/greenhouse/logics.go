package greenhouse

import (
	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// ClimateTargets допустимые диапазоны климата теплицы
type ClimateTargets struct {
	MinTemperature float32
	MaxTemperature float32
	MinHumidity    float32
	MaxHumidity    float32
}

// DefaultClimateTargets диапазоны для умеренных культур
func DefaultClimateTargets() ClimateTargets {
	return ClimateTargets{MinTemperature: 10, MaxTemperature: 35, MinHumidity: 20, MaxHumidity: 80}
}

// ClimateRegulationLogic выставляет состояния ошибок при выходе климата из диапазонов
type ClimateRegulationLogic struct {
	c       *Controller
	targets ClimateTargets
}

// NewClimateRegulationLogic создаёт логику регулирования
func NewClimateRegulationLogic(c *Controller, targets ClimateTargets) *ClimateRegulationLogic {
	return &ClimateRegulationLogic{c: c, targets: targets}
}

func (l *ClimateRegulationLogic) Name() string { return "climate_regulation" }

// Targets текущие диапазоны
func (l *ClimateRegulationLogic) Targets() ClimateTargets {
	return l.targets
}

// SetTargets меняет диапазоны и сразу пересчитывает состояния
func (l *ClimateRegulationLogic) SetTargets(t ClimateTargets) {
	l.targets = t
	l.evaluate()
}

func (l *ClimateRegulationLogic) OnEvent(change ChangeType, _ interface{}) {
	switch change {
	case ChangeAssembled, ChangeClimate:
		l.evaluate()
	case ChangeBroken:
		l.clear()
	}
}

func (l *ClimateRegulationLogic) Work() {
	l.evaluate()
}

func (l *ClimateRegulationLogic) evaluate() {
	e := l.c.ErrorLogic()
	t, h := l.c.Temperature(), l.c.Humidity()
	e.SetCondition(t > l.targets.MaxTemperature, StateTooHot)
	e.SetCondition(t < l.targets.MinTemperature, StateTooCold)
	e.SetCondition(h > l.targets.MaxHumidity, StateTooHumid)
	e.SetCondition(h < l.targets.MinHumidity, StateTooArid)
}

func (l *ClimateRegulationLogic) clear() {
	e := l.c.ErrorLogic()
	for _, s := range []ErrorState{StateTooHot, StateTooCold, StateTooHumid, StateTooArid} {
		e.SetCondition(false, s)
	}
}

func (l *ClimateRegulationLogic) WriteTo(rec record.Record) record.Record {
	rec.SetFloat("minTemperature", l.targets.MinTemperature)
	rec.SetFloat("maxTemperature", l.targets.MaxTemperature)
	rec.SetFloat("minHumidity", l.targets.MinHumidity)
	rec.SetFloat("maxHumidity", l.targets.MaxHumidity)
	return rec
}

func (l *ClimateRegulationLogic) ReadFrom(rec record.Record) error {
	l.targets = ClimateTargets{
		MinTemperature: rec.GetFloat("minTemperature"),
		MaxTemperature: rec.GetFloat("maxTemperature"),
		MinHumidity:    rec.GetFloat("minHumidity"),
		MaxHumidity:    rec.GetFloat("maxHumidity"),
	}
	return nil
}

// IrrigationConfig параметры орошения
type IrrigationConfig struct {
	Capacity          int     // Объём бака, мБ
	Consumption       int     // Расход за цикл, мБ
	CycleTicks        int     // Длина цикла в тиках
	HumidityThreshold float32 // Орошение включается ниже этой влажности
	Power             float32 // Вклад увлажнителя, %
	Range             int
}

// DefaultIrrigationConfig параметры по умолчанию
func DefaultIrrigationConfig() IrrigationConfig {
	return IrrigationConfig{
		Capacity:          10000,
		Consumption:       10,
		CycleTicks:        20,
		HumidityThreshold: 60,
		Power:             10,
		Range:             8,
	}
}

// IrrigationLogic бак с водой и увлажнитель: пока влажность ниже порога и есть вода,
// в регион добавлен источник-увлажнитель, а каждый цикл расходует воду
type IrrigationLogic struct {
	c      *Controller
	cfg    IrrigationConfig
	water  int
	ticks  int
	source *climate.BlockSource
	active bool
}

// NewIrrigationLogic создаёт логику орошения с пустым баком
func NewIrrigationLogic(c *Controller, cfg IrrigationConfig) *IrrigationLogic {
	if cfg.CycleTicks <= 0 {
		cfg.CycleTicks = 1
	}
	return &IrrigationLogic{c: c, cfg: cfg}
}

func (l *IrrigationLogic) Name() string { return "irrigation" }

// Water текущий запас воды
func (l *IrrigationLogic) Water() int {
	return l.water
}

// Fill доливает воду и возвращает принятый объём
func (l *IrrigationLogic) Fill(amount int) int {
	if amount <= 0 {
		return 0
	}
	accepted := min(amount, l.cfg.Capacity-l.water)
	l.water += accepted
	return accepted
}

// IsIrrigating установлен ли увлажнитель
func (l *IrrigationLogic) IsIrrigating() bool {
	return l.active
}

// ClimateSource реализует SourceProvider
func (l *IrrigationLogic) ClimateSource() climate.Source {
	if l.source == nil {
		return nil
	}
	return l.source
}

func (l *IrrigationLogic) OnEvent(change ChangeType, _ interface{}) {
	if change == ChangeBroken {
		l.stop()
		// центр и регион могут измениться при повторной сборке
		l.source = nil
		l.ticks = 0
		l.c.ErrorLogic().SetCondition(false, StateNoWater)
	}
}

func (l *IrrigationLogic) Work() {
	l.ticks++
	if l.ticks < l.cfg.CycleTicks {
		return
	}
	l.ticks = 0

	needWater := l.c.Humidity() < l.cfg.HumidityThreshold
	noWater := l.water < l.cfg.Consumption
	l.c.ErrorLogic().SetCondition(needWater && noWater, StateNoWater)

	if needWater && !noWater {
		l.water -= l.cfg.Consumption
		l.start()
		return
	}
	l.stop()
}

func (l *IrrigationLogic) start() {
	if l.source == nil {
		minCoord, maxCoord := l.c.Multiblock().Bounds()
		center := vec.Vec3{
			X: (minCoord.X + maxCoord.X) / 2,
			Y: (minCoord.Y + maxCoord.Y) / 2,
			Z: (minCoord.Z + maxCoord.Z) / 2,
		}
		l.source = climate.NewBlockSource("irrigation:"+l.c.Region().ID(), center, climate.KindHumidifier, l.cfg.Power, l.cfg.Range)
	}
	if !l.active {
		l.c.Region().AddSource(l.source)
		l.active = true
	}
}

func (l *IrrigationLogic) stop() {
	if !l.active {
		return
	}
	l.c.Region().RemoveSource(l.source)
	l.active = false
}

func (l *IrrigationLogic) WriteTo(rec record.Record) record.Record {
	rec.SetInt("water", l.water)
	rec.SetBool("irrigating", l.active)
	return rec
}

func (l *IrrigationLogic) ReadFrom(rec record.Record) error {
	l.water = min(max(rec.GetInt("water"), 0), l.cfg.Capacity)
	l.source = nil
	l.active = false
	if rec.GetBool("irrigating") {
		l.start()
	}
	return nil
}
