package block

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// BlockAPI определяет интерфейс для взаимодействия блоков с миром.
// Блоки читают и изменяют только свои метаданные и уведомляют соседей.
type BlockAPI interface {
	// GetBlockID возвращает идентификатор блока в указанной позиции.
	GetBlockID(pos vec.Vec3) BlockID

	// GetBlockMetadata возвращает значение метаданных блока по ключу.
	GetBlockMetadata(pos vec.Vec3, key string) interface{}

	// SetBlockMetadata устанавливает значение метаданных блока по ключу.
	SetBlockMetadata(pos vec.Vec3, key string, value interface{})

	// NotifyNeighbors оповещает соседние блоки об изменении.
	NotifyNeighbors(pos vec.Vec3)
}
