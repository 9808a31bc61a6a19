package climate

import (
	"errors"
	"sort"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
)

// ErrInvalidRecord запись региона не может быть восстановлена
var ErrInvalidRecord = errors.New("climate: некорректная запись региона")

// RegionConfig параметры создания региона
type RegionConfig struct {
	ID             string
	TicksPerUpdate int
	Ambient        Ambient
	Resolver       SourceResolver
	Sink           DeltaSink
}

// Region ограниченный объём с агрегированным климатом.
// Регион не планирует себя сам: хост вызывает UpdateClimate с периодом TicksPerUpdate.
// Все изменения выполняются в потоке симуляции хоста; блокировок нет.
type Region struct {
	id             string
	world          world.World
	ambient        Ambient
	resolver       SourceResolver
	sink           DeltaSink
	ticksPerUpdate int

	hasBounds bool
	minPos    vec.Vec3
	maxPos    vec.Vec3

	positions map[vec.Vec3]*Position
	others    map[vec.Vec3]struct{}
	sources   map[string]Source
	pending   map[string]struct{} // идентификаторы, не восстановленные при загрузке

	state Climate
}

// NewRegion создаёт регион; скаляры начинаются с фонового климата
func NewRegion(w world.World, cfg RegionConfig) *Region {
	if cfg.TicksPerUpdate <= 0 {
		cfg.TicksPerUpdate = 20
	}
	if cfg.Ambient == nil {
		cfg.Ambient = ConstantAmbient{Temperature: 15, Humidity: 50}
	}

	r := &Region{
		id:             cfg.ID,
		world:          w,
		ambient:        cfg.Ambient,
		resolver:       cfg.Resolver,
		sink:           cfg.Sink,
		ticksPerUpdate: cfg.TicksPerUpdate,
		positions:      make(map[vec.Vec3]*Position),
		others:         make(map[vec.Vec3]struct{}),
		sources:        make(map[string]Source),
		pending:        make(map[string]struct{}),
	}
	r.state = r.ambient.Baseline(r.center())
	return r
}

// ID возвращает идентификатор региона
func (r *Region) ID() string {
	return r.id
}

// World возвращает мир, которому принадлежит регион
func (r *Region) World() world.World {
	return r.world
}

// TicksPerUpdate возвращает настроенный период обновления
func (r *Region) TicksPerUpdate() int {
	return r.ticksPerUpdate
}

// SetSink задаёт получателя дельт (транспорт синхронизации)
func (r *Region) SetSink(sink DeltaSink) {
	r.sink = sink
}

// SetResolver задаёт функцию восстановления источников
func (r *Region) SetResolver(resolver SourceResolver) {
	r.resolver = resolver
}

// Temperature значение на момент последнего UpdateClimate
func (r *Region) Temperature() float32 {
	return r.state.Temperature
}

// Humidity значение на момент последнего UpdateClimate
func (r *Region) Humidity() float32 {
	return r.state.Humidity
}

// Climate возвращает оба скаляра
func (r *Region) Climate() Climate {
	return r.state
}

// SetBounds задаёт границы региона и удаляет отсчёты и координаты, вышедшие за них
func (r *Region) SetBounds(minPos, maxPos vec.Vec3) {
	r.hasBounds = true
	r.minPos = vec.Min(minPos, maxPos)
	r.maxPos = vec.Max(minPos, maxPos)

	for pos := range r.positions {
		if !r.inBounds(pos) {
			delete(r.positions, pos)
		}
	}
	for pos := range r.others {
		if !r.inBounds(pos) {
			delete(r.others, pos)
		}
	}
}

// Bounds возвращает границы; ok=false, если регион не ограничен
func (r *Region) Bounds() (minPos, maxPos vec.Vec3, ok bool) {
	return r.minPos, r.maxPos, r.hasBounds
}

func (r *Region) inBounds(pos vec.Vec3) bool {
	return !r.hasBounds || pos.Within(r.minPos, r.maxPos)
}

func (r *Region) center() vec.Vec3 {
	if !r.hasBounds {
		return vec.Vec3{}
	}
	return vec.Vec3{
		X: (r.minPos.X + r.maxPos.X) / 2,
		Y: (r.minPos.Y + r.maxPos.Y) / 2,
		Z: (r.minPos.Z + r.maxPos.Z) / 2,
	}
}

// Sample возвращает отсчёт в координате, создавая его при первом обращении.
// Координата вне границ даёт false.
func (r *Region) Sample(pos vec.Vec3) (Position, bool) {
	if !r.inBounds(pos) {
		return Position{}, false
	}
	p, ok := r.positions[pos]
	if !ok {
		base := r.ambient.Baseline(pos)
		p = &Position{Pos: pos, Temperature: base.Temperature, Humidity: base.Humidity}
		r.positions[pos] = p
	}
	return *p, true
}

// PositionAt возвращает существующий отсчёт без создания
func (r *Region) PositionAt(pos vec.Vec3) (Position, bool) {
	p, ok := r.positions[pos]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions возвращает копию карты отсчётов
func (r *Region) Positions() map[vec.Vec3]Position {
	out := make(map[vec.Vec3]Position, len(r.positions))
	for pos, p := range r.positions {
		out[pos] = *p
	}
	return out
}

// AddOtherPosition отмечает координату как принадлежащую региону без отсчёта (например, стену)
func (r *Region) AddOtherPosition(pos vec.Vec3) bool {
	if !r.inBounds(pos) {
		return false
	}
	r.others[pos] = struct{}{}
	return true
}

// RemoveOtherPosition снимает отметку с координаты
func (r *Region) RemoveOtherPosition(pos vec.Vec3) {
	delete(r.others, pos)
}

// OtherPositions возвращает отсортированный список прочих координат
func (r *Region) OtherPositions() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(r.others))
	for pos := range r.others {
		out = append(out, pos)
	}
	vec.SortVec3(out)
	return out
}

// AddSource добавляет источник; повторное добавление не удваивает вклад
func (r *Region) AddSource(src Source) {
	if src == nil {
		return
	}
	id := src.SourceID()
	if _, exists := r.sources[id]; exists {
		logging.Trace("регион %s: источник %s уже добавлен", r.id, id)
	}
	r.sources[id] = src
	delete(r.pending, id)
}

// RemoveSource удаляет источник; отсутствующий источник игнорируется
func (r *Region) RemoveSource(src Source) {
	if src == nil {
		return
	}
	delete(r.sources, src.SourceID())
	delete(r.pending, src.SourceID())
}

// HasSource проверяет наличие источника по идентификатору
func (r *Region) HasSource(id string) bool {
	_, ok := r.sources[id]
	return ok
}

// Sources возвращает источники, отсортированные по идентификатору
func (r *Region) Sources() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, src := range r.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID() < out[j].SourceID() })
	return out
}

// PendingSources идентификаторы источников, ещё не восстановленных после загрузки
func (r *Region) PendingSources() []string {
	out := make([]string, 0, len(r.pending))
	for id := range r.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// UpdateClimate продвигает агрегацию на ticks тиков.
// ticks <= 0 ничего не меняет; на клиентской реплике значения приходят только через ApplyDelta.
// Источники читаются из снимка, сделанного в начале вызова, а результаты
// записываются целиком после расчёта всех значений.
func (r *Region) UpdateClimate(ticks int) {
	if ticks <= 0 {
		return
	}
	if r.world != nil && r.world.IsRemote() {
		return
	}

	fraction := float64(ticks) / float64(r.ticksPerUpdate)
	if fraction > 1 {
		fraction = 1
	}

	active := r.activeSnapshot()

	keys := make([]vec.Vec3, 0, len(r.positions))
	for pos := range r.positions {
		keys = append(keys, pos)
	}
	vec.SortVec3(keys)

	next := make([]Climate, len(keys))
	var sumT, sumH float64
	for i, pos := range keys {
		target := targetAt(r.ambient.Baseline(pos), pos, active)
		sumT += float64(target.Temperature)
		sumH += float64(target.Humidity)

		cur := r.positions[pos]
		next[i] = Climate{
			Temperature: approach(cur.Temperature, target.Temperature, fraction),
			Humidity:    approach(cur.Humidity, target.Humidity, fraction),
		}
	}

	var regionTarget Climate
	if len(keys) > 0 {
		n := float64(len(keys))
		regionTarget = clampClimate(Climate{Temperature: float32(sumT / n), Humidity: float32(sumH / n)})
	} else {
		regionTarget = regionTargetWithoutPositions(r.ambient.Baseline(r.center()), active)
	}

	newState := Climate{
		Temperature: approach(r.state.Temperature, regionTarget.Temperature, fraction),
		Humidity:    approach(r.state.Humidity, regionTarget.Humidity, fraction),
	}

	for i, pos := range keys {
		p := r.positions[pos]
		p.Temperature = next[i].Temperature
		p.Humidity = next[i].Humidity
	}

	changed := newState != r.state
	r.state = newState

	if changed && r.sink != nil {
		r.sink.PublishClimate(Delta{RegionID: r.id, Temperature: newState.Temperature, Humidity: newState.Humidity})
	}
}

// activeSnapshot копия активных источников в порядке идентификаторов
func (r *Region) activeSnapshot() []Source {
	all := r.Sources()
	active := all[:0]
	for _, src := range all {
		if src.IsActive() {
			active = append(active, src)
		}
	}
	return active
}

// Clear разбирает регион: удаляет отсчёты, прочие координаты и источники
func (r *Region) Clear() {
	r.positions = make(map[vec.Vec3]*Position)
	r.others = make(map[vec.Vec3]struct{})
	r.sources = make(map[string]Source)
	r.pending = make(map[string]struct{})
	r.state = r.ambient.Baseline(r.center())
}
