package greenhouse

import (
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Типы маскировки
const (
	CamouflageDefault = "default"
	CamouflageGlass   = "glass"
)

// Item идентичность предмета маскировки. Пустой ID означает отсутствие маскировки.
type Item struct {
	ID     string `json:"id"`
	Damage int    `json:"damage,omitempty"`
}

// IsEmpty проверяет отсутствие предмета
func (i Item) IsEmpty() bool {
	return i.ID == ""
}

// WriteTo записывает предмет в запись
func (i Item) WriteTo(rec record.Record) record.Record {
	rec.SetString("id", i.ID)
	rec.SetInt("Count", 1)
	rec.SetInt("Damage", i.Damage)
	return rec
}

// ReadItem читает предмет из записи
func ReadItem(rec record.Record) Item {
	return Item{ID: rec.GetString("id"), Damage: rec.GetInt("Damage")}
}

// CamouflageHandler владелец маскировки (люк или контроллер теплицы)
type CamouflageHandler interface {
	CamouflageBlock(typ string) Item
	DefaultCamouflageBlock(typ string) Item
	SetCamouflageBlock(typ string, item Item)
	CanHandleType(typ string) bool
}

// CamouflageChange данные события EventCamouflageChange
type CamouflageChange struct {
	Type   string
	Item   Item
	Source vec.Vec3
}

// CamouflageRequest запрос реплики на смену маскировки авторитетной стороной.
// Controller=true адресует маскировку контроллера теплицы, которому принадлежит Pos.
type CamouflageRequest struct {
	Pos        vec.Vec3 `json:"pos"`
	Type       string   `json:"type"`
	Item       Item     `json:"item"`
	Controller bool     `json:"controller,omitempty"`
}

// CamouflageDelta изменение маскировки, которое авторитетная сторона рассылает репликам
type CamouflageDelta struct {
	Pos        vec.Vec3 `json:"pos"`
	Type       string   `json:"type"`
	Item       Item     `json:"item"`
	Controller bool     `json:"controller,omitempty"`
}

// Network сетевой коллаборатор реплики
type Network interface {
	SendCamouflageRequest(req CamouflageRequest) error
}

// CamouflageSink получатель дельт маскировки на авторитетной стороне
type CamouflageSink interface {
	PublishCamouflage(d CamouflageDelta)
}

// CamouflageSinkFunc адаптер функции к CamouflageSink
type CamouflageSinkFunc func(d CamouflageDelta)

// PublishCamouflage реализует CamouflageSink
func (f CamouflageSinkFunc) PublishCamouflage(d CamouflageDelta) { f(d) }
