package world

import (
	"sync"

	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// MemoryWorld простая реализация World в памяти.
// Используется встраивающим хостом для тестов и демонстраций.
type MemoryWorld struct {
	mu            sync.RWMutex
	blocks        map[vec.Vec3]Block
	tiles         map[vec.Vec3]Tile
	dirty         map[vec.Vec3]struct{}
	notifications map[vec.Vec3]int
	listeners     []BlockListener
	remote        bool
}

// NewMemoryWorld создаёт пустой мир; remote=true для клиентской реплики
func NewMemoryWorld(remote bool) *MemoryWorld {
	return &MemoryWorld{
		blocks:        make(map[vec.Vec3]Block),
		tiles:         make(map[vec.Vec3]Tile),
		dirty:         make(map[vec.Vec3]struct{}),
		notifications: make(map[vec.Vec3]int),
		remote:        remote,
	}
}

// OnBlockChange подписывает слушателя на изменения блоков.
// Слушатели вызываются синхронно в порядке подписки.
func (w *MemoryWorld) OnBlockChange(l BlockListener) {
	w.mu.Lock()
	w.listeners = append(w.listeners, l)
	w.mu.Unlock()
}

// SetBlock устанавливает блок без тайла
func (w *MemoryWorld) SetBlock(pos vec.Vec3, id block.BlockID) {
	w.SetBlockWithTile(pos, id, nil)
}

// SetBlockWithTile устанавливает блок и его тайл, затем оповещает слушателей
func (w *MemoryWorld) SetBlockWithTile(pos vec.Vec3, id block.BlockID, tile Tile) {
	b := NewBlock(id)

	w.mu.Lock()
	prev := w.blocks[pos]
	w.blocks[pos] = b
	if tile != nil {
		w.tiles[pos] = tile
	} else {
		delete(w.tiles, pos)
	}
	w.dirty[pos] = struct{}{}
	w.mu.Unlock()

	if behavior, ok := block.Get(id); ok {
		behavior.OnPlace(w, pos)
	}

	w.fire(BlockEvent{EventType: EventTypeBlockSet, Position: pos, Block: b, Previous: prev})
}

// RemoveBlock удаляет блок и тайл в координате
func (w *MemoryWorld) RemoveBlock(pos vec.Vec3) {
	w.mu.Lock()
	prev, existed := w.blocks[pos]
	delete(w.blocks, pos)
	delete(w.tiles, pos)
	w.dirty[pos] = struct{}{}
	w.mu.Unlock()

	if !existed {
		return
	}

	if behavior, ok := block.Get(prev.ID); ok {
		behavior.OnBreak(w, pos)
	}

	w.fire(BlockEvent{EventType: EventTypeBlockRemove, Position: pos, Block: NewBlock(block.AirBlockID), Previous: prev})
}

func (w *MemoryWorld) fire(ev BlockEvent) {
	w.mu.RLock()
	listeners := make([]BlockListener, len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// BlockAt реализует World
func (w *MemoryWorld) BlockAt(pos vec.Vec3) (Block, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[pos]
	return b, ok
}

// TileAt реализует World
func (w *MemoryWorld) TileAt(pos vec.Vec3) (Tile, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.tiles[pos]
	return t, ok
}

// MarkDirty реализует World
func (w *MemoryWorld) MarkDirty(pos vec.Vec3) {
	w.mu.Lock()
	w.dirty[pos] = struct{}{}
	w.mu.Unlock()
}

// NotifyNeighbors реализует World и block.BlockAPI
func (w *MemoryWorld) NotifyNeighbors(pos vec.Vec3) {
	w.mu.Lock()
	for _, n := range pos.Neighbors() {
		w.notifications[n]++
	}
	w.mu.Unlock()
}

// IsRemote реализует World
func (w *MemoryWorld) IsRemote() bool {
	return w.remote
}

// GetBlockID реализует block.BlockAPI
func (w *MemoryWorld) GetBlockID(pos vec.Vec3) block.BlockID {
	b, ok := w.BlockAt(pos)
	if !ok {
		return block.AirBlockID
	}
	return b.ID
}

// GetBlockMetadata реализует block.BlockAPI
func (w *MemoryWorld) GetBlockMetadata(pos vec.Vec3, key string) interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[pos]
	if !ok {
		return nil
	}
	return b.Payload[key]
}

// SetBlockMetadata реализует block.BlockAPI
func (w *MemoryWorld) SetBlockMetadata(pos vec.Vec3, key string, value interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.blocks[pos]
	if !ok {
		return
	}
	if b.Payload == nil {
		b.Payload = make(map[string]interface{})
		w.blocks[pos] = b
	}
	b.Payload[key] = value
	w.dirty[pos] = struct{}{}
}

// TakeDirty возвращает отсортированные изменённые координаты и очищает набор
func (w *MemoryWorld) TakeDirty() []vec.Vec3 {
	w.mu.Lock()
	out := make([]vec.Vec3, 0, len(w.dirty))
	for pos := range w.dirty {
		out = append(out, pos)
	}
	w.dirty = make(map[vec.Vec3]struct{})
	w.mu.Unlock()

	vec.SortVec3(out)
	return out
}

// Notifications возвращает число оповещений, полученных координатой
func (w *MemoryWorld) Notifications(pos vec.Vec3) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.notifications[pos]
}

// BlockCount возвращает число непустых блоков
func (w *MemoryWorld) BlockCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}
