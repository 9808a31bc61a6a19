package multiblock

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/metrics"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("greenhouse-sim/multiblock")

// AssemblerConfig параметры ассемблера
type AssemblerConfig struct {
	Rules       Rules
	NewDelegate DelegateFactory
	Hub         *Listeners // Общий реестр событий; nil: создаётся новый
	Metrics     *metrics.Metrics
}

// Assembler отслеживает изменения блоков и собирает/разбирает конструкции одного типа.
// Все вызовы выполняются в потоке симуляции хоста.
type Assembler struct {
	world       world.World
	rules       Rules
	newDelegate DelegateFactory
	hub         *Listeners
	metrics     *metrics.Metrics
	log         *logging.Logger

	owners      map[vec.Vec3]*Controller
	controllers map[string]*Controller
	dormant     map[vec.Vec3]*Controller // бывшие члены разобранных контроллеров
	lastFailure error
}

// NewAssembler создаёт ассемблер для мира
func NewAssembler(w world.World, cfg AssemblerConfig) *Assembler {
	hub := cfg.Hub
	if hub == nil {
		hub = NewListeners(nil)
	}
	return &Assembler{
		world:       w,
		rules:       cfg.Rules,
		newDelegate: cfg.NewDelegate,
		hub:         hub,
		metrics:     cfg.Metrics,
		log:         logging.GetMultiblockLogger(),
		owners:      make(map[vec.Vec3]*Controller),
		controllers: make(map[string]*Controller),
		dormant:     make(map[vec.Vec3]*Controller),
	}
}

// Hub общий реестр событий всех контроллеров ассемблера
func (a *Assembler) Hub() *Listeners {
	return a.hub
}

// Rules правила сборки
func (a *Assembler) Rules() Rules {
	return a.rules
}

// LastFailure причина последней неудачной сборки (nil после успешной)
func (a *Assembler) LastFailure() error {
	return a.lastFailure
}

// ControllerAt контроллер, которому принадлежит координата
func (a *Assembler) ControllerAt(pos vec.Vec3) (*Controller, bool) {
	c, ok := a.owners[pos]
	return c, ok
}

// Controller контроллер по идентификатору
func (a *Assembler) Controller(id string) (*Controller, bool) {
	c, ok := a.controllers[id]
	return c, ok
}

// Controllers собранные контроллеры в порядке опорных координат
func (a *Assembler) Controllers() []*Controller {
	out := make([]*Controller, 0, len(a.controllers))
	for _, c := range a.controllers {
		out = append(out, c)
	}
	sortControllers(out)
	return out
}

func sortControllers(list []*Controller) {
	sort.Slice(list, func(i, j int) bool { return list[i].reference.Less(list[j].reference) })
}

// candidate проверяет, может ли координата войти в конструкцию
func (a *Assembler) candidate(pos vec.Vec3) (Component, bool) {
	b, ok := a.world.BlockAt(pos)
	if !ok {
		return nil, false
	}
	t, ok := a.world.TileAt(pos)
	if !ok {
		return nil, false
	}
	comp, ok := t.(Component)
	if !ok {
		return nil, false
	}
	if a.rules.IsMember != nil && !a.rules.IsMember(b, t) {
		return nil, false
	}
	return comp, true
}

// OnBlockChanged обрабатывает появление, удаление или замену блока.
// Член, у которого не изменился тайл, ничего не запускает. Иначе затронутые контроллеры
// разбираются и выполняется попытка сборки из их бывших членов, изменённой координаты
// и её свободных соседей-кандидатов. Разобранный здесь контроллер остаётся спящим:
// если его бывшие члены снова соберутся, используется тот же контроллер вместе с делегатом.
// Неудачная сборка ошибкой не считается: ошибка возвращается только при нарушении
// инвариантов (ErrNoMembers).
func (a *Assembler) OnBlockChanged(pos vec.Vec3) error {
	comp, isCandidate := a.candidate(pos)
	owner := a.owners[pos]

	if owner != nil && isCandidate {
		if cur, ok := owner.members[pos]; ok && cur == comp {
			return nil
		}
	}
	if !isCandidate {
		delete(a.dormant, pos)
	}

	ctx, span := tracer.Start(context.Background(), "multiblock.OnBlockChanged")
	defer span.End()
	span.SetAttributes(attribute.String("pos", pos.String()))

	affected := make(map[string]*Controller)
	if owner != nil {
		affected[owner.id] = owner
	}
	if isCandidate {
		for _, n := range pos.Neighbors() {
			if o := a.owners[n]; o != nil {
				affected[o.id] = o
			}
		}
	}

	var seeds []vec.Vec3
	if isCandidate {
		seeds = append(seeds, pos)
	}
	for _, n := range pos.Neighbors() {
		if _, ok := a.candidate(n); ok && a.owners[n] == nil {
			seeds = append(seeds, n)
		}
	}
	if len(affected) == 0 && len(seeds) == 0 {
		return nil
	}

	var result error
	if owner != nil {
		delete(a.owners, pos)
		if cur, ok := owner.members[pos]; ok {
			cur.AttachController(nil)
		}
		if err := owner.detach(pos); err != nil {
			result = err
			span.RecordError(err)
			a.log.Warn("%v: конструкция будет разобрана", err)
		}
	}

	ordered := make([]*Controller, 0, len(affected))
	for _, c := range affected {
		ordered = append(ordered, c)
	}
	sortControllers(ordered)

	for _, c := range ordered {
		former := c.Members()
		seeds = append(seeds, former...)
		a.disassemble(c)
		for _, p := range former {
			a.dormant[p] = c
		}
	}
	a.assembleFrom(ctx, seeds)
	return result
}

// Dormant число спящих контроллеров, ожидающих пересборки
func (a *Assembler) Dormant() int {
	seen := make(map[*Controller]struct{})
	for _, c := range a.dormant {
		seen[c] = struct{}{}
	}
	return len(seen)
}

// revive спящий контроллер, которому принадлежал один из членов (в порядке координат)
func (a *Assembler) revive(members map[vec.Vec3]Component) *Controller {
	positions := make([]vec.Vec3, 0, len(members))
	for pos := range members {
		positions = append(positions, pos)
	}
	vec.SortVec3(positions)

	for _, pos := range positions {
		c, ok := a.dormant[pos]
		if !ok {
			continue
		}
		for p, d := range a.dormant {
			if d == c {
				delete(a.dormant, p)
			}
		}
		return c
	}
	return nil
}

// Disassemble принудительно разбирает контроллер (например, при выгрузке области)
func (a *Assembler) Disassemble(c *Controller) {
	if c == nil {
		return
	}
	a.disassemble(c)
}

// Verify проверяет инварианты всех контроллеров и разбирает нарушителей
func (a *Assembler) Verify() error {
	var errs []error
	for _, c := range a.Controllers() {
		if err := c.CheckIntegrity(); err != nil {
			errs = append(errs, err)
			a.disassemble(c)
		}
	}
	return errors.Join(errs...)
}

// TryAssemble пытается собрать конструкцию, содержащую seed, и возвращает причину неудачи
func (a *Assembler) TryAssemble(seed vec.Vec3) (*Controller, error) {
	if c, ok := a.owners[seed]; ok {
		return c, nil
	}
	if _, ok := a.candidate(seed); !ok {
		return nil, fmt.Errorf("multiblock: %s не может входить в конструкцию %q", seed, a.rules.Name)
	}
	return a.tryAssemble(context.Background(), seed, make(map[vec.Vec3]struct{}))
}

func (a *Assembler) assembleFrom(ctx context.Context, seeds []vec.Vec3) {
	vec.SortVec3(seeds)
	visited := make(map[vec.Vec3]struct{})
	for _, seed := range seeds {
		if _, seen := visited[seed]; seen {
			continue
		}
		if a.owners[seed] != nil {
			continue
		}
		if _, ok := a.candidate(seed); !ok {
			continue
		}
		_, _ = a.tryAssemble(ctx, seed, visited)
	}
}

func (a *Assembler) tryAssemble(ctx context.Context, seed vec.Vec3, visited map[vec.Vec3]struct{}) (*Controller, error) {
	_, span := tracer.Start(ctx, "multiblock.Assemble")
	defer span.End()

	members, minCoord, maxCoord, err := a.scan(seed, visited)
	if err == nil {
		err = a.rules.check(members, minCoord, maxCoord)
	}
	span.SetAttributes(attribute.Int("members", len(members)))
	if err != nil {
		a.lastFailure = err
		a.metrics.AssemblyAttempt("failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.log.Debug("сборка %q от %s не удалась: %v", a.rules.Name, seed, err)
		return nil, err
	}

	c := a.revive(members)
	revived := c != nil
	if !revived {
		c = newController(a.world, a.hub)
	}
	c.setState(Assembling)
	c.install(members, minCoord, maxCoord)
	c.id = ControllerID(a.rules.Name, c.reference)
	if c.delegate == nil && a.newDelegate != nil {
		c.delegate = a.newDelegate(c)
	}
	for pos, comp := range members {
		a.owners[pos] = c
		comp.AttachController(c)
	}
	a.controllers[c.id] = c
	c.setState(Assembled)

	if c.delegate != nil {
		c.delegate.OnAssembled(c)
	}
	for _, comp := range c.Components() {
		comp.OnMachineAssembled(c, minCoord, maxCoord)
	}

	a.lastFailure = nil
	a.metrics.AssemblyAttempt("assembled")
	a.metrics.SetControllers(len(a.controllers))
	a.log.Info("🏗️ Конструкция %q собрана: контроллер %s, %d членов, %s..%s (повторно: %t)",
		a.rules.Name, c.id, len(members), minCoord, maxCoord, revived)

	c.Publish(Event{Type: EventAssembled, Controller: c, Source: c.reference})
	a.metrics.StructureEvent(EventAssembled.String())
	return c, nil
}

// scan обходит связную (по граням) область кандидатов от seed не дальше лимита
func (a *Assembler) scan(seed vec.Vec3, visited map[vec.Vec3]struct{}) (map[vec.Vec3]Component, vec.Vec3, vec.Vec3, error) {
	limit := a.rules.maxScan()
	members := make(map[vec.Vec3]Component)
	minCoord, maxCoord := seed, seed

	queue := []vec.Vec3{seed}
	visited[seed] = struct{}{}

	for len(queue) > 0 {
		pos := queue[0]
		queue = queue[1:]

		comp, ok := a.candidate(pos)
		if !ok {
			continue
		}
		if o := a.owners[pos]; o != nil {
			return members, minCoord, maxCoord, fmt.Errorf("%w: %s принадлежит %s", ErrOverlap, pos, o.id)
		}

		members[pos] = comp
		if len(members) > limit {
			return members, minCoord, maxCoord, fmt.Errorf("%w: более %d блоков", ErrScanLimit, limit)
		}
		minCoord = vec.Min(minCoord, pos)
		maxCoord = vec.Max(maxCoord, pos)

		for _, n := range pos.Neighbors() {
			if _, seen := visited[n]; seen {
				continue
			}
			if _, ok := a.candidate(n); !ok {
				continue
			}
			visited[n] = struct{}{}
			queue = append(queue, n)
		}
	}
	return members, minCoord, maxCoord, nil
}

// disassemble разбирает контроллер: оставшиеся члены получают OnMachineBroken,
// затем делегат и слушатели узнают о разборке
func (a *Assembler) disassemble(c *Controller) {
	if c.state != Assembled {
		return
	}
	c.setState(Disassembling)

	for _, pos := range c.Members() {
		comp := c.members[pos]
		if a.owners[pos] == c {
			delete(a.owners, pos)
		}
		comp.OnMachineBroken()
		comp.AttachController(nil)
	}
	if c.delegate != nil {
		c.delegate.OnDisassembled(c)
	}

	c.Publish(Event{Type: EventBroken, Controller: c, Source: c.reference})
	a.metrics.StructureEvent(EventBroken.String())

	c.install(make(map[vec.Vec3]Component), c.minCoord, c.maxCoord)
	c.setState(Unassembled)
	delete(a.controllers, c.id)
	a.metrics.SetControllers(len(a.controllers))
	a.log.Info("🧱 Конструкция %q разобрана: контроллер %s", a.rules.Name, c.id)
}
