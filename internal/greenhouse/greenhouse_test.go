package greenhouse

import (
	"context"
	"errors"
	"testing"

	"github.com/annel0/greenhouse-sim/internal/climate"
	"github.com/annel0/greenhouse-sim/internal/config"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/annel0/greenhouse-sim/internal/world/block"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/annel0/greenhouse-sim/internal/world/block/implementations"
)

var (
	topCenter    = vec.Vec3{X: 1, Y: 2, Z: 1}
	bottomCenter = vec.Vec3{X: 1, Y: 0, Z: 1}
	eastFace     = vec.Vec3{X: 2, Y: 1, Z: 1}
	westFace     = vec.Vec3{X: 0, Y: 1, Z: 1}
	interior     = vec.Vec3{X: 1, Y: 1, Z: 1}
)

type recordingNetwork struct {
	requests []CamouflageRequest
}

func (n *recordingNetwork) SendCamouflageRequest(req CamouflageRequest) error {
	n.requests = append(n.requests, req)
	return nil
}

func newTestAssembler(w *world.MemoryWorld, ctrl ControllerConfig) *multiblock.Assembler {
	if ctrl.TicksPerUpdate == 0 {
		ctrl.TicksPerUpdate = 20
	}
	return NewAssembler(w, config.Default().Multiblock, ctrl, nil)
}

// buildGreenhouse ставит оболочку 3×3×3; special задаёт блоки, отличные от стены.
// Блок управления по умолчанию стоит в центре крыши.
func buildGreenhouse(t *testing.T, w *world.MemoryWorld, a *multiblock.Assembler, special map[vec.Vec3]block.BlockID, opts HatchOptions) map[vec.Vec3]world.Tile {
	t.Helper()
	if _, ok := special[topCenter]; !ok {
		special[topCenter] = block.GreenhouseControlBlockID
	}

	tiles := make(map[vec.Vec3]world.Tile)
	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				if pos == interior {
					continue
				}
				id := block.GreenhousePlainBlockID
				if s, ok := special[pos]; ok {
					id = s
				}
				tile := NewTile(w, pos, id, a.Hub(), opts)
				w.SetBlockWithTile(pos, id, tile)
				require.NoError(t, a.OnBlockChanged(pos))
				tiles[pos] = tile
			}
		}
	}
	return tiles
}

func TestGreenhouse_Assembles(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})

	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok, "теплица должна собраться")
	assert.Equal(t, 26, gc.Multiblock().MemberCount())
	assert.Equal(t, vec.Vec3{}, gc.Multiblock().Reference())

	positions := gc.Region().Positions()
	assert.Len(t, positions, 1, "внутренний объём 3×3×3 это одна координата")
	_, ok = positions[interior]
	assert.True(t, ok)
	assert.Len(t, gc.Region().OtherPositions(), 26)
	assert.False(t, gc.ErrorLogic().Contains(StateNotAssembled))
}

func TestGreenhouse_RequiresControlBlock(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{topCenter: block.GreenhousePlainBlockID}, HatchOptions{})

	assert.Empty(t, a.Controllers())
	assert.ErrorIs(t, a.LastFailure(), multiblock.ErrShape)
}

func TestHatch_OutwardsDirection(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	tiles := buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{
		eastFace: block.GreenhouseHatchOutBlockID,
		westFace: block.GreenhouseHatchInBlockID,
	}, HatchOptions{})
	require.Len(t, a.Controllers(), 1)

	out := tiles[eastFace].(*Hatch)
	dir, ok := out.OutwardsDir()
	require.True(t, ok)
	assert.Equal(t, vec.East, dir, "выходной люк смотрит по нормали грани")

	in := tiles[westFace].(*Hatch)
	dir, ok = in.OutwardsDir()
	require.True(t, ok)
	assert.Equal(t, vec.East, dir, "входной люк смотрит внутрь")

	pos, err := out.OutwardsPos()
	require.NoError(t, err)
	assert.Equal(t, vec.Vec3{X: 3, Y: 1, Z: 1}, pos)
	_, found, err := out.OutwardsTile()
	require.NoError(t, err)
	assert.False(t, found, "снаружи тайла нет, это не ошибка")

	// Разборка сбрасывает направление
	w.RemoveBlock(bottomCenter)
	require.NoError(t, a.OnBlockChanged(bottomCenter))
	_, ok = out.OutwardsDir()
	assert.False(t, ok)
}

func TestHatch_NoDirectionInCenterOrCorner(t *testing.T) {
	w := world.NewMemoryWorld(false)
	minCoord, maxCoord := vec.Vec3{}, vec.Vec3{X: 2, Y: 2, Z: 2}

	for _, pos := range []vec.Vec3{interior, {}, {X: 2, Y: 2, Z: 0}, {X: 2, Y: 0, Z: 1}} {
		h := NewHatch(w, pos, nil, HatchOptions{})
		w.SetBlockWithTile(pos, block.GreenhouseHatchOutBlockID, h)
		h.RecalculateOutwardsDirection(minCoord, maxCoord)

		_, ok := h.OutwardsDir()
		assert.False(t, ok, "у %s не должно быть направления", pos)
		_, err := h.OutwardsPos()
		assert.True(t, errors.Is(err, multiblock.ErrNotConnectable))
	}
}

func TestHatch_FacePriority(t *testing.T) {
	w := world.NewMemoryWorld(false)
	minCoord, maxCoord := vec.Vec3{}, vec.Vec3{X: 4, Y: 4, Z: 4}

	cases := map[vec.Vec3]vec.Facing{
		{X: 4, Y: 2, Z: 2}: vec.East,
		{X: 0, Y: 2, Z: 2}: vec.West,
		{X: 2, Y: 2, Z: 4}: vec.South,
		{X: 2, Y: 2, Z: 0}: vec.North,
		{X: 2, Y: 4, Z: 2}: vec.Up,
		{X: 2, Y: 0, Z: 2}: vec.Down,
	}
	for pos, want := range cases {
		out := NewHatch(w, pos, nil, HatchOptions{})
		w.SetBlockWithTile(pos, block.GreenhouseHatchOutBlockID, out)
		out.RecalculateOutwardsDirection(minCoord, maxCoord)
		dir, ok := out.OutwardsDir()
		require.True(t, ok)
		assert.Equal(t, want, dir, "выходной люк в %s", pos)

		in := NewHatch(w, pos, nil, HatchOptions{})
		w.SetBlockWithTile(pos, block.GreenhouseHatchInBlockID, in)
		in.RecalculateOutwardsDirection(minCoord, maxCoord)
		dir, ok = in.OutwardsDir()
		require.True(t, ok)
		assert.Equal(t, want.Opposite(), dir, "входной люк в %s", pos)
	}
}

func TestHatch_CamouflageDedupe(t *testing.T) {
	w := world.NewMemoryWorld(false)
	hub := multiblock.NewListeners(nil)

	var deltas []CamouflageDelta
	h := NewHatch(w, eastFace, hub, HatchOptions{Sink: CamouflageSinkFunc(func(d CamouflageDelta) { deltas = append(deltas, d) })})
	w.SetBlockWithTile(eastFace, block.GreenhouseHatchOutBlockID, h)

	var events []multiblock.Event
	hub.Subscribe(func(ev multiblock.Event) { events = append(events, ev) })

	stone := Item{ID: "minecraft:stone"}
	h.SetCamouflageBlock(h.CamouflageType(), stone)
	h.SetCamouflageBlock(h.CamouflageType(), stone)

	require.Len(t, events, 1, "повторная установка не должна порождать событие")
	assert.Equal(t, multiblock.EventCamouflageChange, events[0].Type)
	change, ok := events[0].Payload.(CamouflageChange)
	require.True(t, ok)
	assert.Equal(t, stone, change.Item)
	assert.Len(t, deltas, 1)
	assert.Equal(t, stone, h.CamouflageBlock(CamouflageDefault))

	h.SetCamouflageBlock(CamouflageDefault, Item{ID: "minecraft:dirt"})
	assert.Len(t, events, 2)
}

func TestHatch_RemoteForwardsRequest(t *testing.T) {
	w := world.NewMemoryWorld(true)
	net := &recordingNetwork{}
	h := NewHatch(w, eastFace, nil, HatchOptions{Network: net})
	w.SetBlockWithTile(eastFace, block.GreenhouseGlassBlockID, h)

	assert.Equal(t, CamouflageGlass, h.CamouflageType())
	assert.True(t, h.CanHandleType(CamouflageGlass))

	glass := Item{ID: "minecraft:stained_glass", Damage: 3}
	h.SetCamouflageBlock(CamouflageGlass, glass)
	h.SetCamouflageBlock(CamouflageGlass, glass)
	require.Len(t, net.requests, 1)
	assert.Equal(t, CamouflageRequest{Pos: eastFace, Type: CamouflageGlass, Item: glass}, net.requests[0])

	// Дельта от авторитетной стороны не порождает встречный запрос
	applied := h.ApplyCamouflageDelta(CamouflageDelta{Pos: eastFace, Type: CamouflageGlass, Item: Item{ID: "minecraft:glass"}})
	assert.True(t, applied)
	assert.Len(t, net.requests, 1)
	assert.False(t, h.ApplyCamouflageDelta(CamouflageDelta{Pos: westFace, Item: Item{ID: "x"}}))
}

func TestHatch_Persistence(t *testing.T) {
	w := world.NewMemoryWorld(false)
	h := NewHatch(w, eastFace, nil, HatchOptions{})
	w.SetBlockWithTile(eastFace, block.GreenhouseHatchOutBlockID, h)

	owner := Owner{ID: uuid.New(), Name: "gardener"}
	h.SetOwner(owner)
	h.SetCamouflageBlock(CamouflageDefault, Item{ID: "minecraft:brick", Damage: 1})

	data, err := record.Marshal(h.WriteTo(record.New()))
	require.NoError(t, err)
	rec, err := record.Unmarshal(data)
	require.NoError(t, err)

	restored := NewHatch(w, eastFace, nil, HatchOptions{})
	require.NoError(t, restored.ReadFrom(rec))
	assert.Equal(t, h.CamouflageBlock(CamouflageDefault), restored.CamouflageBlock(CamouflageDefault))
	got, ok := restored.Owner()
	require.True(t, ok)
	assert.Equal(t, owner, got)

	bad := record.New()
	badOwner := record.New()
	badOwner.SetString("id", "not-a-uuid")
	bad.SetRecord("owner", badOwner)
	assert.Error(t, NewHatch(w, eastFace, nil, HatchOptions{}).ReadFrom(bad))
}

func TestHatch_DescriptionGoesThroughSetter(t *testing.T) {
	w := world.NewMemoryWorld(false)
	src := NewHatch(w, eastFace, nil, HatchOptions{})
	w.SetBlockWithTile(eastFace, block.GreenhouseHatchOutBlockID, src)
	src.SetCamouflageBlock(CamouflageDefault, Item{ID: "minecraft:log"})

	hub := multiblock.NewListeners(nil)
	events := 0
	hub.Subscribe(func(multiblock.Event) { events++ })

	replica := NewHatch(w, eastFace, hub, HatchOptions{})
	desc := src.EncodeDescription(record.New())
	replica.DecodeDescription(desc)
	replica.DecodeDescription(desc)

	assert.Equal(t, Item{ID: "minecraft:log"}, replica.CamouflageBlock(CamouflageDefault))
	assert.Equal(t, 1, events)
}

func TestClimatizer_HeaterWarmsInterior(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	tiles := buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{bottomCenter: block.GreenhouseHeaterBlockID}, HatchOptions{})

	gc, ok := ControllerFor(a, bottomCenter)
	require.True(t, ok)
	heater := tiles[bottomCenter].(*Climatizer)
	assert.True(t, gc.Region().HasSource(heater.ClimateSource().SourceID()))

	gc.Region().UpdateClimate(20)
	// Нагреватель +5 на расстоянии 1 при радиусе 4: 15 + 5·(1 − 1/5) = 19
	assert.InDelta(t, 19.0, gc.Temperature(), 0.001)

	heater.SetActive(false)
	gc.Region().UpdateClimate(20)
	assert.InDelta(t, 15.0, gc.Temperature(), 0.001)

	w.RemoveBlock(eastFace)
	require.NoError(t, a.OnBlockChanged(eastFace))
	assert.Empty(t, gc.Region().Sources(), "разборка убирает источники")
	assert.True(t, gc.ErrorLogic().Contains(StateNotAssembled))
}

func TestClimatizer_Kinds(t *testing.T) {
	w := world.NewMemoryWorld(false)
	kinds := map[block.BlockID]climate.SourceKind{
		block.GreenhouseFanBlockID:       climate.KindCooler,
		block.GreenhouseHeaterBlockID:    climate.KindHeater,
		block.GreenhouseDryerBlockID:     climate.KindDehumidifier,
		block.GreenhouseSprinklerBlockID: climate.KindHumidifier,
	}
	for id, want := range kinds {
		c := NewClimatizer(w, vec.Vec3{}, id, nil)
		src := c.ClimateSource().(*climate.BlockSource)
		assert.Equal(t, want, src.Kind(), "блок %d", id)
		assert.Equal(t, 4, src.Range())
	}
}

type recordingLogic struct {
	changes []ChangeType
}

func (l *recordingLogic) Name() string { return "recording" }
func (l *recordingLogic) OnEvent(change ChangeType, _ interface{}) {
	l.changes = append(l.changes, change)
}
func (l *recordingLogic) Work()                                   {}
func (l *recordingLogic) WriteTo(rec record.Record) record.Record { return rec }
func (l *recordingLogic) ReadFrom(record.Record) error            { return nil }

func TestController_ChangeFanOut(t *testing.T) {
	w := world.NewMemoryWorld(false)
	logic := &recordingLogic{}
	a := newTestAssembler(w, ControllerConfig{
		Logics: []LogicFactory{func(*Controller) Logic { return logic }},
	})
	tiles := buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{
		bottomCenter: block.GreenhouseHeaterBlockID,
		eastFace:     block.GreenhouseHatchOutBlockID,
	}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	tiles[eastFace].(*Hatch).SetCamouflageBlock(CamouflageDefault, Item{ID: "minecraft:stone"})
	gc.Region().UpdateClimate(20)
	gc.SetCamouflageBlock(CamouflageGlass, Item{ID: "minecraft:glass"})
	gc.SetCamouflageBlock(CamouflageGlass, Item{ID: "minecraft:glass"})
	w.RemoveBlock(eastFace)
	require.NoError(t, a.OnBlockChanged(eastFace))

	assert.Equal(t, []ChangeType{ChangeAssembled, ChangeCamouflage, ChangeClimate, ChangeCamouflage, ChangeBroken}, logic.changes)
}

func TestController_CamouflageDefaults(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	assert.True(t, gc.CanHandleType(CamouflageGlass))
	assert.False(t, gc.CanHandleType("wood"))
	assert.Equal(t, gc.DefaultCamouflageBlock(CamouflageDefault), gc.CamouflageBlock(CamouflageDefault))
}

func TestController_ClimateAdjustment(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	gc.AddTemperatureChange(3, -5, 5)
	gc.AddTemperatureChange(3, -5, 5)
	gc.AddHumidityChange(-7, -5, 5)
	assert.Equal(t, climate.Climate{Temperature: 5, Humidity: -5}, gc.Adjustment())

	gc.Region().UpdateClimate(20)
	assert.InDelta(t, 20.0, gc.Temperature(), 0.001)
	assert.InDelta(t, 45.0, gc.Humidity(), 0.001)
}

func TestIrrigation_Cycle(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	l, ok := gc.Logic("irrigation")
	require.True(t, ok)
	irrigation := l.(*IrrigationLogic)

	// Пустой бак: после цикла выставляется ошибка
	for i := 0; i < 20; i++ {
		gc.Tick()
	}
	assert.True(t, gc.ErrorLogic().Contains(StateNoWater))
	assert.False(t, irrigation.IsIrrigating())

	assert.Equal(t, 100, irrigation.Fill(100))
	for i := 0; i < 20; i++ {
		gc.Tick()
	}
	assert.True(t, irrigation.IsIrrigating())
	assert.Equal(t, 90, irrigation.Water())
	assert.False(t, gc.ErrorLogic().Contains(StateNoWater))
	assert.True(t, gc.Region().HasSource(irrigation.ClimateSource().SourceID()))

	gc.Region().UpdateClimate(20)
	assert.InDelta(t, 60.0, gc.Humidity(), 0.001)

	// Порог достигнут: увлажнитель снимается, вода не расходуется
	for i := 0; i < 20; i++ {
		gc.Tick()
	}
	assert.False(t, irrigation.IsIrrigating())
	assert.Equal(t, 90, irrigation.Water())
	assert.Empty(t, gc.Region().Sources())
}

func TestClimateRegulation_Errors(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{Ambient: climate.ConstantAmbient{Temperature: 40, Humidity: 10}})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	gc.Tick()
	assert.True(t, gc.ErrorLogic().Contains(StateTooHot))
	assert.True(t, gc.ErrorLogic().Contains(StateTooArid))
	assert.False(t, gc.ErrorLogic().Contains(StateTooCold))

	l, _ := gc.Logic("climate_regulation")
	l.(*ClimateRegulationLogic).SetTargets(ClimateTargets{MinTemperature: 0, MaxTemperature: 50, MinHumidity: 0, MaxHumidity: 100})
	assert.False(t, gc.ErrorLogic().Contains(StateTooHot))
	assert.False(t, gc.ErrorLogic().Contains(StateTooArid))
}

func TestController_Persistence(t *testing.T) {
	w := world.NewMemoryWorld(false)
	sched := climate.NewScheduler(nil)
	a := newTestAssembler(w, ControllerConfig{Scheduler: sched})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{bottomCenter: block.GreenhouseHeaterBlockID}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)
	assert.Equal(t, 1, sched.Len())

	l, _ := gc.Logic("irrigation")
	irrigation := l.(*IrrigationLogic)
	irrigation.Fill(500)
	for i := 0; i < 20; i++ {
		gc.Tick()
	}
	require.True(t, irrigation.IsIrrigating())
	gc.AddTemperatureChange(2, -10, 10)
	gc.SetCamouflageBlock(CamouflageGlass, Item{ID: "minecraft:glass"})
	sched.Tick(context.Background(), 20)
	saved := gc.WriteTo(record.New())
	data, err := record.Marshal(saved)
	require.NoError(t, err)

	// Та же геометрия в другом мире: идентификатор совпадает, состояние восстанавливается из записи
	w2 := world.NewMemoryWorld(false)
	sched2 := climate.NewScheduler(nil)
	a2 := newTestAssembler(w2, ControllerConfig{Scheduler: sched2})
	buildGreenhouse(t, w2, a2, map[vec.Vec3]block.BlockID{bottomCenter: block.GreenhouseHeaterBlockID}, HatchOptions{})

	rebuilt, ok := ControllerFor(a2, eastFace)
	require.True(t, ok)
	require.NotSame(t, gc, rebuilt)
	assert.Equal(t, gc.Region().ID(), rebuilt.Region().ID())

	rec, err := record.Unmarshal(data)
	require.NoError(t, err)
	require.NoError(t, rebuilt.ReadFrom(rec))

	assert.InDelta(t, float64(gc.Temperature()), float64(rebuilt.Temperature()), 0.0001)
	assert.InDelta(t, float64(gc.Humidity()), float64(rebuilt.Humidity()), 0.0001)
	assert.Equal(t, climate.Climate{Temperature: 2}, rebuilt.Adjustment())
	assert.Equal(t, Item{ID: "minecraft:glass"}, rebuilt.CamouflageBlock(CamouflageGlass))

	rl, _ := rebuilt.Logic("irrigation")
	assert.Equal(t, 490, rl.(*IrrigationLogic).Water())
	assert.True(t, rl.(*IrrigationLogic).IsIrrigating())
	assert.Empty(t, rebuilt.Region().PendingSources(), "источники разрешаются заново")
	assert.Len(t, rebuilt.Region().Sources(), 2)

	_, scheduled := sched2.Region(rebuilt.Region().ID())
	assert.True(t, scheduled)
	assert.Equal(t, 1, sched2.Len())
}

// prepareState заполняет бак, меняет маскировку и сдвиг климата
func prepareState(t *testing.T, gc *Controller) *IrrigationLogic {
	t.Helper()
	l, ok := gc.Logic("irrigation")
	require.True(t, ok)
	irrigation := l.(*IrrigationLogic)
	require.Equal(t, 500, irrigation.Fill(500))
	gc.SetCamouflageBlock(CamouflageGlass, Item{ID: "mod:custom"})
	gc.AddTemperatureChange(4, -10, 10)
	return irrigation
}

func TestController_UnchangedMemberKeepsState(t *testing.T) {
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)
	id := gc.Multiblock().ID()
	irrigation := prepareState(t, gc)

	broken := 0
	a.Hub().Subscribe(func(ev multiblock.Event) {
		if ev.Type == multiblock.EventBroken {
			broken++
		}
	})

	require.NoError(t, a.OnBlockChanged(eastFace))

	same, ok := ControllerFor(a, eastFace)
	require.True(t, ok)
	assert.Same(t, gc, same)
	assert.Equal(t, id, same.Multiblock().ID())
	assert.Zero(t, broken)
	assert.Equal(t, 500, irrigation.Water())
	assert.Equal(t, Item{ID: "mod:custom"}, gc.CamouflageBlock(CamouflageGlass))
	assert.Equal(t, climate.Climate{Temperature: 4}, gc.Adjustment())
}

func TestController_StateSurvivesNeighbourPlaceAndRemove(t *testing.T) {
	w := world.NewMemoryWorld(false)
	sched := climate.NewScheduler(nil)
	a := newTestAssembler(w, ControllerConfig{Scheduler: sched})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)
	id := gc.Multiblock().ID()
	irrigation := prepareState(t, gc)

	outside := vec.Vec3{X: 3, Y: 1, Z: 1}
	w.SetBlockWithTile(outside, block.GreenhouseGlassBlockID, NewTile(w, outside, block.GreenhouseGlassBlockID, a.Hub(), HatchOptions{}))
	require.NoError(t, a.OnBlockChanged(outside))
	_, ok = ControllerFor(a, eastFace)
	assert.False(t, ok, "оболочка с выступом не собирается")
	assert.True(t, gc.ErrorLogic().Contains(StateNotAssembled))
	assert.Zero(t, sched.Len())

	w.RemoveBlock(outside)
	require.NoError(t, a.OnBlockChanged(outside))

	revived, ok := ControllerFor(a, eastFace)
	require.True(t, ok)
	assert.Same(t, gc, revived)
	assert.Equal(t, id, revived.Multiblock().ID())
	assert.Equal(t, 500, irrigation.Water())
	assert.Equal(t, Item{ID: "mod:custom"}, gc.CamouflageBlock(CamouflageGlass))
	assert.Equal(t, climate.Climate{Temperature: 4}, gc.Adjustment())
	assert.False(t, gc.ErrorLogic().Contains(StateNotAssembled))
	_, scheduled := sched.Region(gc.Region().ID())
	assert.True(t, scheduled)
}

func TestController_CamouflageSinkAndForwarding(t *testing.T) {
	glass := Item{ID: "minecraft:tinted_glass"}

	var deltas []CamouflageDelta
	w := world.NewMemoryWorld(false)
	a := newTestAssembler(w, ControllerConfig{CamouflageSink: CamouflageSinkFunc(func(d CamouflageDelta) { deltas = append(deltas, d) })})
	buildGreenhouse(t, w, a, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	gc, ok := ControllerFor(a, eastFace)
	require.True(t, ok)

	gc.SetCamouflageBlock(CamouflageGlass, glass)
	gc.SetCamouflageBlock(CamouflageGlass, glass)
	require.Len(t, deltas, 1)
	assert.Equal(t, CamouflageDelta{Pos: vec.Vec3{}, Type: CamouflageGlass, Item: glass, Controller: true}, deltas[0])

	net := &recordingNetwork{}
	rw := world.NewMemoryWorld(true)
	ra := newTestAssembler(rw, ControllerConfig{Network: net})
	buildGreenhouse(t, rw, ra, map[vec.Vec3]block.BlockID{}, HatchOptions{})
	replica, ok := ControllerFor(ra, eastFace)
	require.True(t, ok)

	replica.SetCamouflageBlock(CamouflageGlass, glass)
	require.Len(t, net.requests, 1)
	assert.Equal(t, CamouflageRequest{Pos: vec.Vec3{}, Type: CamouflageGlass, Item: glass, Controller: true}, net.requests[0])

	// Дельта авторитетной стороны применяется без встречного запроса
	other := Item{ID: "minecraft:glass"}
	assert.True(t, replica.ApplyCamouflageDelta(CamouflageDelta{Type: CamouflageGlass, Item: other, Controller: true}))
	assert.False(t, replica.ApplyCamouflageDelta(CamouflageDelta{Type: CamouflageGlass, Item: other, Controller: true}))
	assert.False(t, replica.ApplyCamouflageDelta(CamouflageDelta{Type: CamouflageGlass, Item: glass}), "дельта люка контроллеру не адресована")
	assert.Equal(t, other, replica.CamouflageBlock(CamouflageGlass))
	assert.Len(t, net.requests, 1)
}

func TestClimatizer_DecodedMetadata(t *testing.T) {
	w := world.NewMemoryWorld(false)
	pos := vec.Vec3{X: 4}
	w.SetBlock(pos, block.GreenhouseHeaterBlockID)
	// так метаданные выглядят после NBT
	w.SetBlockMetadata(pos, "power", float32(-3))
	w.SetBlockMetadata(pos, "range", int32(6))

	c := NewClimatizer(w, pos, block.GreenhouseHeaterBlockID, nil)
	src := c.ClimateSource().(*climate.BlockSource)
	assert.Equal(t, 6, src.Range())
	assert.Equal(t, climate.KindCooler, src.Kind())
}
