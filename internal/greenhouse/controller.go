package greenhouse

import (
	"fmt"
	"sort"

	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// ChangeType вид изменения, о котором контроллер оповещает логики
type ChangeType uint8

const (
	ChangeAssembled ChangeType = iota
	ChangeBroken
	ChangeCamouflage
	ChangeClimate
)

// String возвращает имя изменения
func (t ChangeType) String() string {
	switch t {
	case ChangeAssembled:
		return "assembled"
	case ChangeBroken:
		return "broken"
	case ChangeCamouflage:
		return "camouflage"
	case ChangeClimate:
		return "climate"
	default:
		return "unknown"
	}
}

// Logic подключаемое поведение теплицы
type Logic interface {
	Name() string
	// OnEvent вызывается синхронно при каждом изменении теплицы
	OnEvent(change ChangeType, event interface{})
	// Work вызывается на каждом тике хоста
	Work()
	WriteTo(rec record.Record) record.Record
	ReadFrom(rec record.Record) error
}

// LogicFactory создаёт логику для контроллера
type LogicFactory func(c *Controller) Logic

// ControllerConfig параметры контроллеров теплиц
type ControllerConfig struct {
	TicksPerUpdate int
	Ambient        climate.Ambient
	Sink           climate.DeltaSink  // Транспорт дельт климата (может быть nil)
	CamouflageSink CamouflageSink     // Дельты маскировки контроллера (авторитетная сторона)
	Network        Network            // Запросы маскировки контроллера (реплика)
	Scheduler      *climate.Scheduler // Планировщик регионов (может быть nil)
	Logics         []LogicFactory     // nil означает DefaultLogics()
}

// DefaultLogics стандартный набор логик
func DefaultLogics() []LogicFactory {
	return []LogicFactory{
		func(c *Controller) Logic { return NewClimateRegulationLogic(c, DefaultClimateTargets()) },
		func(c *Controller) Logic { return NewIrrigationLogic(c, DefaultIrrigationConfig()) },
	}
}

// Controller контроллер теплицы поверх контроллера конструкции: регион климата
// внутреннего объёма, логики, маскировка уровня контроллера и состояния ошибок
type Controller struct {
	mb     *multiblock.Controller
	cfg    ControllerConfig
	region *climate.Region
	adjust climate.Climate

	logics     []Logic
	camouflage map[string]Item
	errors     *ErrorLogic

	subscription int
	log          *logging.Logger
}

// NewDelegateFactory возвращает фабрику делегатов для multiblock.Assembler
func NewDelegateFactory(cfg ControllerConfig) multiblock.DelegateFactory {
	return func(mb *multiblock.Controller) multiblock.Delegate {
		return newController(mb, cfg)
	}
}

func newController(mb *multiblock.Controller, cfg ControllerConfig) *Controller {
	if cfg.Ambient == nil {
		cfg.Ambient = climate.ConstantAmbient{Temperature: 15, Humidity: 50}
	}
	if cfg.Logics == nil {
		cfg.Logics = DefaultLogics()
	}

	c := &Controller{
		mb:         mb,
		cfg:        cfg,
		camouflage: make(map[string]Item),
		errors:     NewErrorLogic(),
		log:        logging.GetGreenhouseLogger(),
	}
	c.errors.SetCondition(true, StateNotAssembled)
	c.region = c.newRegion(mb.ID())

	for _, factory := range cfg.Logics {
		c.logics = append(c.logics, factory(c))
	}
	return c
}

// newRegion регион внутреннего объёма; идентификатор совпадает с идентификатором конструкции
func (c *Controller) newRegion(id string) *climate.Region {
	return climate.NewRegion(c.mb.World(), climate.RegionConfig{
		ID:             id,
		TicksPerUpdate: c.cfg.TicksPerUpdate,
		Ambient:        adjustedAmbient{base: c.cfg.Ambient, c: c},
		Resolver:       c.resolveSource,
		Sink:           climate.DeltaSinkFunc(c.onClimateDelta),
	})
}

// controllerOf контроллер теплицы для собранного контроллера конструкции
func controllerOf(mb *multiblock.Controller) (*Controller, bool) {
	if mb == nil || !mb.IsAssembled() {
		return nil, false
	}
	return delegateOf(mb)
}

// delegateOf контроллер теплицы независимо от состояния (нужен во время разборки)
func delegateOf(mb *multiblock.Controller) (*Controller, bool) {
	if mb == nil {
		return nil, false
	}
	gc, ok := mb.Delegate().(*Controller)
	return gc, ok
}

// Multiblock контроллер конструкции
func (c *Controller) Multiblock() *multiblock.Controller {
	return c.mb
}

// Region регион климата внутреннего объёма
func (c *Controller) Region() *climate.Region {
	return c.region
}

// Temperature температура теплицы
func (c *Controller) Temperature() float32 {
	return c.region.Temperature()
}

// Humidity влажность теплицы
func (c *Controller) Humidity() float32 {
	return c.region.Humidity()
}

// ErrorLogic состояния ошибок
func (c *Controller) ErrorLogic() *ErrorLogic {
	return c.errors
}

// Logics логики в порядке подключения
func (c *Controller) Logics() []Logic {
	out := make([]Logic, len(c.logics))
	copy(out, c.logics)
	return out
}

// Logic логика по имени
func (c *Controller) Logic(name string) (Logic, bool) {
	for _, l := range c.logics {
		if l.Name() == name {
			return l, true
		}
	}
	return nil, false
}

// OnAssembled реализует multiblock.Delegate: внутренний объём становится отсчётами региона,
// стены учитываются как прочие координаты
func (c *Controller) OnAssembled(mb *multiblock.Controller) {
	// опорная координата могла сместиться при повторной сборке
	if c.region.ID() != mb.ID() {
		c.region = c.newRegion(mb.ID())
	}
	minCoord, maxCoord := mb.Bounds()
	c.region.SetBounds(minCoord, maxCoord)

	for x := minCoord.X; x <= maxCoord.X; x++ {
		for y := minCoord.Y; y <= maxCoord.Y; y++ {
			for z := minCoord.Z; z <= maxCoord.Z; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				if mb.Contains(pos) {
					c.region.AddOtherPosition(pos)
				} else {
					c.region.Sample(pos)
				}
			}
		}
	}

	c.subscription = mb.Subscribe(c.onStructureEvent)
	if c.cfg.Scheduler != nil {
		c.cfg.Scheduler.Add(c.region)
	}
	c.errors.SetCondition(false, StateNotAssembled)
	c.OnChange(ChangeAssembled, mb)

	c.log.Info("🌱 Теплица %s собрана: %d блоков, объём %d", mb.ID(), mb.MemberCount(), len(c.region.Positions()))
}

// OnDisassembled реализует multiblock.Delegate
func (c *Controller) OnDisassembled(mb *multiblock.Controller) {
	c.OnChange(ChangeBroken, mb)

	mb.Listeners().Unsubscribe(c.subscription)
	if c.cfg.Scheduler != nil {
		c.cfg.Scheduler.Remove(c.region.ID())
	}
	c.region.Clear()
	c.errors.Clear()
	c.errors.SetCondition(true, StateNotAssembled)

	c.log.Info("🥀 Теплица %s разобрана", mb.ID())
}

// OnChange рассылает изменение всем логикам в порядке подключения
func (c *Controller) OnChange(change ChangeType, event interface{}) {
	for _, l := range c.logics {
		l.OnEvent(change, event)
	}
}

// Tick выполняет работу логик
func (c *Controller) Tick() {
	if !c.mb.IsAssembled() {
		return
	}
	for _, l := range c.logics {
		l.Work()
	}
}

func (c *Controller) onStructureEvent(ev multiblock.Event) {
	if ev.Type == multiblock.EventCamouflageChange {
		c.OnChange(ChangeCamouflage, ev.Payload)
	}
}

func (c *Controller) onClimateDelta(d climate.Delta) {
	c.OnChange(ChangeClimate, d)
	c.mb.Publish(multiblock.Event{Type: multiblock.EventClimateChange, Source: c.mb.Reference(), Payload: d})
	if c.cfg.Sink != nil {
		c.cfg.Sink.PublishClimate(d)
	}
}

// SourceProvider член конструкции, владеющий источником климата
type SourceProvider interface {
	ClimateSource() climate.Source
}

// resolveSource ищет живой источник среди членов и логик
func (c *Controller) resolveSource(id string) (climate.Source, bool) {
	for _, comp := range c.mb.Components() {
		if p, ok := comp.(SourceProvider); ok {
			if src := p.ClimateSource(); src != nil && src.SourceID() == id {
				return src, true
			}
		}
	}
	for _, l := range c.logics {
		if p, ok := l.(SourceProvider); ok {
			if src := p.ClimateSource(); src != nil && src.SourceID() == id {
				return src, true
			}
		}
	}
	return nil, false
}

// AddTemperatureChange сдвигает температуру теплицы; итоговый сдвиг ограничен [lo, hi]
func (c *Controller) AddTemperatureChange(change, lo, hi float32) {
	c.adjust.Temperature = clamp32(c.adjust.Temperature+change, lo, hi)
}

// AddHumidityChange сдвигает влажность теплицы; итоговый сдвиг ограничен [lo, hi]
func (c *Controller) AddHumidityChange(change, lo, hi float32) {
	c.adjust.Humidity = clamp32(c.adjust.Humidity+change, lo, hi)
}

// Adjustment текущий управляемый сдвиг климата
func (c *Controller) Adjustment() climate.Climate {
	return c.adjust
}

func clamp32(v, lo, hi float32) float32 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// adjustedAmbient фон региона со сдвигом, заданным через AddTemperatureChange/AddHumidityChange
type adjustedAmbient struct {
	base climate.Ambient
	c    *Controller
}

func (a adjustedAmbient) Baseline(pos vec.Vec3) climate.Climate {
	b := a.base.Baseline(pos)
	b.Temperature += a.c.adjust.Temperature
	b.Humidity += a.c.adjust.Humidity
	return b
}

var defaultCamouflage = map[string]Item{
	CamouflageDefault: {ID: "greenhouse:plain"},
	CamouflageGlass:   {ID: "greenhouse:glass"},
}

// CanHandleType реализует CamouflageHandler
func (c *Controller) CanHandleType(typ string) bool {
	_, ok := defaultCamouflage[typ]
	return ok
}

// DefaultCamouflageBlock маскировка по умолчанию для типа
func (c *Controller) DefaultCamouflageBlock(typ string) Item {
	return defaultCamouflage[typ]
}

// CamouflageBlock маскировка типа; если не задана, возвращается маскировка по умолчанию
func (c *Controller) CamouflageBlock(typ string) Item {
	if item, ok := c.camouflage[typ]; ok {
		return item
	}
	return c.DefaultCamouflageBlock(typ)
}

// SetCamouflageBlock меняет маскировку уровня контроллера; повтор значения ничего не делает.
// Реплика пересылает запрос авторитетной стороне, авторитетная сторона публикует дельту.
func (c *Controller) SetCamouflageBlock(typ string, item Item) {
	if !c.CanHandleType(typ) {
		c.log.Debug("теплица %s: неизвестный тип маскировки %q", c.mb.ID(), typ)
		return
	}
	if cur, ok := c.camouflage[typ]; ok && cur == item {
		return
	}
	c.camouflage[typ] = item

	ref := c.mb.Reference()
	if w := c.mb.World(); w != nil && w.IsRemote() {
		if c.cfg.Network != nil {
			req := CamouflageRequest{Pos: ref, Type: typ, Item: item, Controller: true}
			if err := c.cfg.Network.SendCamouflageRequest(req); err != nil {
				c.log.Warn("теплица %s: не удалось отправить запрос маскировки: %v", c.mb.ID(), err)
			}
		}
	} else if c.cfg.CamouflageSink != nil {
		c.cfg.CamouflageSink.PublishCamouflage(CamouflageDelta{Pos: ref, Type: typ, Item: item, Controller: true})
	}
	c.publishCamouflage(typ, item)
}

// ApplyCamouflageDelta применяет дельту маскировки контроллера на реплике без обратного запроса
func (c *Controller) ApplyCamouflageDelta(d CamouflageDelta) bool {
	if !d.Controller || !c.CanHandleType(d.Type) {
		return false
	}
	if cur, ok := c.camouflage[d.Type]; ok && cur == d.Item {
		return false
	}
	c.camouflage[d.Type] = d.Item
	c.publishCamouflage(d.Type, d.Item)
	return true
}

func (c *Controller) publishCamouflage(typ string, item Item) {
	c.mb.Publish(multiblock.Event{
		Type:    multiblock.EventCamouflageChange,
		Source:  c.mb.Reference(),
		Payload: CamouflageChange{Type: typ, Item: item, Source: c.mb.Reference()},
	})
}

// WriteTo сохраняет регион, сдвиг климата, маскировку и логики
func (c *Controller) WriteTo(rec record.Record) record.Record {
	rec.SetRecord("region", c.region.WriteTo(record.New()))

	adjust := record.New()
	adjust.SetFloat("temperature", c.adjust.Temperature)
	adjust.SetFloat("humidity", c.adjust.Humidity)
	rec.SetRecord("adjust", adjust)

	types := make([]string, 0, len(c.camouflage))
	for typ := range c.camouflage {
		types = append(types, typ)
	}
	sort.Strings(types)
	camouflage := record.New()
	for _, typ := range types {
		camouflage.SetRecord(typ, c.camouflage[typ].WriteTo(record.New()))
	}
	rec.SetRecord("camouflage", camouflage)

	logics := record.New()
	for _, l := range c.logics {
		logics.SetRecord(l.Name(), l.WriteTo(record.New()))
	}
	rec.SetRecord("logics", logics)
	return rec
}

// ReadFrom восстанавливает состояние, сохранённое WriteTo. Источники членов
// разрешаются заново по идентификаторам.
func (c *Controller) ReadFrom(rec record.Record) error {
	oldID := c.region.ID()
	if rec.HasKey("region") {
		if err := c.region.ReadFrom(rec.GetRecord("region")); err != nil {
			return fmt.Errorf("теплица %s: %w", c.mb.ID(), err)
		}
	}
	if c.cfg.Scheduler != nil && c.mb.IsAssembled() {
		c.cfg.Scheduler.Remove(oldID)
		c.cfg.Scheduler.Add(c.region)
	}

	adjust := rec.GetRecord("adjust")
	c.adjust = climate.Climate{Temperature: adjust.GetFloat("temperature"), Humidity: adjust.GetFloat("humidity")}

	camouflage := rec.GetRecord("camouflage")
	c.camouflage = make(map[string]Item)
	for typ := range defaultCamouflage {
		if camouflage.HasKey(typ) {
			c.camouflage[typ] = ReadItem(camouflage.GetRecord(typ))
		}
	}

	logics := rec.GetRecord("logics")
	for _, l := range c.logics {
		if !logics.HasKey(l.Name()) {
			continue
		}
		if err := l.ReadFrom(logics.GetRecord(l.Name())); err != nil {
			return fmt.Errorf("теплица %s: логика %s: %w", c.mb.ID(), l.Name(), err)
		}
	}
	return nil
}
