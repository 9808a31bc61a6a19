package multiblock

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// EventType тип структурного события
type EventType uint8

const (
	EventAssembled EventType = iota
	EventBroken
	EventCamouflageChange
	EventClimateChange
)

// String возвращает имя типа события
func (t EventType) String() string {
	switch t {
	case EventAssembled:
		return "assembled"
	case EventBroken:
		return "broken"
	case EventCamouflageChange:
		return "camouflage_change"
	case EventClimateChange:
		return "climate_change"
	default:
		return "unknown"
	}
}

// Event структурное событие. Controller может быть nil для несобранного тайла.
type Event struct {
	Type       EventType
	Controller *Controller
	Source     vec.Vec3    // Координата тайла-источника события
	Payload    interface{} // Данные события (например, смена маскировки)
}

// Listener получает события синхронно
type Listener func(ev Event)

type subscription struct {
	id int
	fn Listener
}

// Listeners реестр слушателей с синхронной упорядоченной доставкой.
// После своих подписчиков событие передаётся родительскому реестру.
type Listeners struct {
	nextID int
	subs   []subscription
	parent *Listeners
}

// NewListeners создаёт реестр; parent может быть nil
func NewListeners(parent *Listeners) *Listeners {
	return &Listeners{parent: parent}
}

// Subscribe добавляет слушателя и возвращает идентификатор подписки
func (l *Listeners) Subscribe(fn Listener) int {
	l.nextID++
	l.subs = append(l.subs, subscription{id: l.nextID, fn: fn})
	return l.nextID
}

// Unsubscribe удаляет подписку; неизвестный идентификатор игнорируется
func (l *Listeners) Unsubscribe(id int) {
	for i, s := range l.subs {
		if s.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

// Len возвращает число подписок
func (l *Listeners) Len() int {
	return len(l.subs)
}

// Publish доставляет событие подписчикам в порядке подписки, затем родителю
func (l *Listeners) Publish(ev Event) {
	if l == nil {
		return
	}
	subs := make([]subscription, len(l.subs))
	copy(subs, l.subs)
	for _, s := range subs {
		s.fn(ev)
	}
	l.parent.Publish(ev)
}
