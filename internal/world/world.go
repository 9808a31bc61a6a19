package world

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Tile представляет тайл (состояние с логикой), привязанный к координате блока.
// Конкретные возможности тайла проверяются приведением к интерфейсам.
type Tile interface {
	Pos() vec.Vec3
}

// World описывает мир-хост, который использует ядро симуляции.
// Ядро только читает мир и помечает координаты изменёнными; геометрию оно не меняет.
type World interface {
	// BlockAt возвращает блок в координате; false означает пустоту, а не ошибку.
	BlockAt(pos vec.Vec3) (Block, bool)

	// TileAt возвращает тайл в координате; false означает отсутствие тайла.
	TileAt(pos vec.Vec3) (Tile, bool)

	// MarkDirty помечает координату как требующую сохранения/синхронизации.
	MarkDirty(pos vec.Vec3)

	// NotifyNeighbors оповещает соседей координаты об изменении состояния.
	NotifyNeighbors(pos vec.Vec3)

	// IsRemote возвращает true для клиентской реплики мира.
	IsRemote() bool
}
