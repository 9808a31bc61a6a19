package multiblock

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
)

// Delegate расширение контроллера конкретным типом конструкции (например, теплицей).
// Вызывается ассемблером после сборки и перед окончательной разборкой.
type Delegate interface {
	OnAssembled(c *Controller)
	OnDisassembled(c *Controller)
}

// DelegateFactory создаёт делегата для нового контроллера
type DelegateFactory func(c *Controller) Delegate

// Controller единая точка управления собранной конструкцией.
// Набор членов и границы заменяются целиком, частично обновлённым контроллер не бывает.
// Идентификатор выводится из имени правил и опорной координаты, поэтому авторитетный мир
// и реплика с одинаковой геометрией получают одинаковые идентификаторы.
type Controller struct {
	id        string
	world     world.World
	state     AssemblyState
	reference vec.Vec3

	members  map[vec.Vec3]Component
	minCoord vec.Vec3
	maxCoord vec.Vec3

	listeners *Listeners
	delegate  Delegate
}

func newController(w world.World, hub *Listeners) *Controller {
	return &Controller{
		world:     w,
		state:     Unassembled,
		members:   make(map[vec.Vec3]Component),
		listeners: NewListeners(hub),
	}
}

// ID идентификатор контроллера: "<правила>@x,y,z" опорной координаты
func (c *Controller) ID() string {
	return c.id
}

// ControllerID идентификатор контроллера конструкции name с опорной координатой ref
func ControllerID(name string, ref vec.Vec3) string {
	return fmt.Sprintf("%s@%d,%d,%d", name, ref.X, ref.Y, ref.Z)
}

// World мир конструкции
func (c *Controller) World() world.World {
	return c.world
}

// State текущее состояние
func (c *Controller) State() AssemblyState {
	return c.state
}

// IsAssembled собрана ли конструкция
func (c *Controller) IsAssembled() bool {
	return c.state == Assembled
}

// Reference опорная координата (лексикографически наименьший член)
func (c *Controller) Reference() vec.Vec3 {
	return c.reference
}

// Bounds ограничивающая коробка членов
func (c *Controller) Bounds() (minCoord, maxCoord vec.Vec3) {
	return c.minCoord, c.maxCoord
}

// MemberCount число членов
func (c *Controller) MemberCount() int {
	return len(c.members)
}

// Member возвращает член в координате
func (c *Controller) Member(pos vec.Vec3) (Component, bool) {
	comp, ok := c.members[pos]
	return comp, ok
}

// Contains проверяет принадлежность координаты конструкции
func (c *Controller) Contains(pos vec.Vec3) bool {
	_, ok := c.members[pos]
	return ok
}

// Members координаты членов в лексикографическом порядке
func (c *Controller) Members() []vec.Vec3 {
	out := make([]vec.Vec3, 0, len(c.members))
	for pos := range c.members {
		out = append(out, pos)
	}
	vec.SortVec3(out)
	return out
}

// Components члены в порядке координат
func (c *Controller) Components() []Component {
	positions := c.Members()
	out := make([]Component, 0, len(positions))
	for _, pos := range positions {
		out = append(out, c.members[pos])
	}
	return out
}

// Delegate делегат конкретного типа конструкции (может быть nil)
func (c *Controller) Delegate() Delegate {
	return c.delegate
}

// Listeners реестр слушателей контроллера
func (c *Controller) Listeners() *Listeners {
	return c.listeners
}

// Subscribe подписывает на события контроллера
func (c *Controller) Subscribe(fn Listener) int {
	return c.listeners.Subscribe(fn)
}

// Publish рассылает событие слушателям контроллера, затем общему реестру
func (c *Controller) Publish(ev Event) {
	if ev.Controller == nil {
		ev.Controller = c
	}
	c.listeners.Publish(ev)
}

// CheckIntegrity проверяет инварианты собранной конструкции
func (c *Controller) CheckIntegrity() error {
	if c.state == Assembled && len(c.members) == 0 {
		return fmt.Errorf("контроллер %s: %w", c.id, ErrNoMembers)
	}
	return nil
}

func (c *Controller) setState(to AssemblyState) {
	if !CanTransition(c.state, to) {
		logging.Warn("контроллер %s: недопустимый переход %s -> %s", c.id, c.state, to)
	}
	c.state = to
}

// install атомарно заменяет набор членов и границы
func (c *Controller) install(members map[vec.Vec3]Component, minCoord, maxCoord vec.Vec3) {
	positions := make([]vec.Vec3, 0, len(members))
	for pos := range members {
		positions = append(positions, pos)
	}
	vec.SortVec3(positions)

	c.members = members
	c.minCoord = minCoord
	c.maxCoord = maxCoord
	if len(positions) > 0 {
		c.reference = positions[0]
	}
}

// detach удаляет член; ErrNoMembers, если членов не осталось
func (c *Controller) detach(pos vec.Vec3) error {
	if _, ok := c.members[pos]; !ok {
		return nil
	}
	members := make(map[vec.Vec3]Component, len(c.members)-1)
	for p, comp := range c.members {
		if p != pos {
			members[p] = comp
		}
	}
	c.members = members
	if len(members) == 0 {
		return fmt.Errorf("контроллер %s: %w", c.id, ErrNoMembers)
	}
	return nil
}
