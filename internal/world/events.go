package world

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// EventType определяет тип события
type EventType uint8

const (
	EventTypeBlockSet    EventType = iota // Установка блока
	EventTypeBlockRemove                  // Удаление блока
	EventTypeBlockChange                  // Изменение метаданных блока
	EventTypeTileChange                   // Установка или удаление тайла
)

// String возвращает имя типа события
func (t EventType) String() string {
	switch t {
	case EventTypeBlockSet:
		return "block_set"
	case EventTypeBlockRemove:
		return "block_remove"
	case EventTypeBlockChange:
		return "block_change"
	case EventTypeTileChange:
		return "tile_change"
	default:
		return "unknown"
	}
}

// BlockEvent представляет событие, связанное с блоком
type BlockEvent struct {
	EventType EventType
	Position  vec.Vec3 // Мировые координаты блока
	Block     Block    // Блок после изменения
	Previous  Block    // Блок до изменения
}

// BlockListener получает события изменения блоков
type BlockListener func(ev BlockEvent)
