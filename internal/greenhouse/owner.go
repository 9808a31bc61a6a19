package greenhouse

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/google/uuid"
)

// Owner профиль игрока-владельца
type Owner struct {
	ID   uuid.UUID
	Name string
}

// WriteTo записывает профиль
func (o Owner) WriteTo(rec record.Record) record.Record {
	rec.SetString("id", o.ID.String())
	rec.SetString("name", o.Name)
	return rec
}

// ReadOwner восстанавливает профиль из записи
func ReadOwner(rec record.Record) (Owner, error) {
	id, err := uuid.Parse(rec.GetString("id"))
	if err != nil {
		return Owner{}, fmt.Errorf("владелец: %w", err)
	}
	return Owner{ID: id, Name: rec.GetString("name")}, nil
}
