package multiblock

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
	"github.com/annel0/greenhouse-sim/internal/world"
	"github.com/annel0/greenhouse-sim/internal/world/block"
)

// MetaAssembled ключ метаданных блока: входит ли блок в собранную конструкцию
const MetaAssembled = "assembled"

// Component тайл, который может входить в конструкцию.
// Членом считается тайл из World.TileAt, реализующий этот интерфейс.
type Component interface {
	world.Tile

	// Controller возвращает контроллер, которому принадлежит компонент (nil вне конструкции)
	Controller() *Controller
	// AttachController привязывает или отвязывает (nil) контроллер
	AttachController(c *Controller)

	// OnMachineAssembled вызывается для каждого члена после успешной сборки
	OnMachineAssembled(c *Controller, minCoord, maxCoord vec.Vec3)
	// OnMachineBroken вызывается для каждого оставшегося члена при разборке
	OnMachineBroken()
}

// TileBase базовая реализация Component для встраивания в конкретные тайлы
type TileBase struct {
	pos        vec.Vec3
	world      world.World
	hub        *Listeners
	controller *Controller
}

// NewTileBase создаёт базу тайла; hub получает события тайла вне конструкции (может быть nil)
func NewTileBase(w world.World, pos vec.Vec3, hub *Listeners) TileBase {
	return TileBase{pos: pos, world: w, hub: hub}
}

// Pos координата тайла
func (t *TileBase) Pos() vec.Vec3 {
	return t.pos
}

// World мир тайла
func (t *TileBase) World() world.World {
	return t.world
}

// Controller текущий контроллер
func (t *TileBase) Controller() *Controller {
	return t.controller
}

// AttachController привязывает контроллер
func (t *TileBase) AttachController(c *Controller) {
	t.controller = c
}

// IsConnected входит ли тайл в собранную конструкцию
func (t *TileBase) IsConnected() bool {
	return t.controller != nil && t.controller.State() == Assembled
}

// Publish отправляет событие через контроллер, а вне конструкции через общий реестр
func (t *TileBase) Publish(ev Event) {
	if ev.Controller == nil {
		ev.Controller = t.controller
	}
	if t.controller != nil {
		t.controller.Publish(ev)
		return
	}
	t.hub.Publish(ev)
}

// MarkDirty помечает координату тайла и оповещает соседей
func (t *TileBase) MarkDirty() {
	if t.world == nil {
		return
	}
	t.world.MarkDirty(t.pos)
	t.world.NotifyNeighbors(t.pos)
}

// OnMachineAssembled отмечает блок собранным и помечает тайл изменённым
func (t *TileBase) OnMachineAssembled(c *Controller, minCoord, maxCoord vec.Vec3) {
	t.setAssembledFlag(true)
	t.MarkDirty()
}

// OnMachineBroken снимает отметку сборки и помечает тайл изменённым
func (t *TileBase) OnMachineBroken() {
	t.setAssembledFlag(false)
	t.MarkDirty()
}

// setAssembledFlag пишет метаданные "assembled", если мир даёт доступ к ним
func (t *TileBase) setAssembledFlag(assembled bool) {
	if api, ok := t.world.(block.BlockAPI); ok {
		api.SetBlockMetadata(t.pos, MetaAssembled, assembled)
	}
}

// IsAssembledBlock читает отметку сборки из метаданных блока
func IsAssembledBlock(api block.BlockAPI, pos vec.Vec3) bool {
	v, _ := api.GetBlockMetadata(pos, MetaAssembled).(bool)
	return v
}
