package eventbus

import (
	"context"
	"encoding/json"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/multiblock"
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// StructureMessage полезная нагрузка StructureEvent
type StructureMessage struct {
	Type       string          `json:"type"`
	Controller string          `json:"controller,omitempty"`
	Reference  *vec.Vec3       `json:"reference,omitempty"`
	Source     vec.Vec3        `json:"source"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// NewStructureMessage переводит структурное событие в сообщение шины
func NewStructureMessage(ev multiblock.Event) (StructureMessage, error) {
	msg := StructureMessage{Type: ev.Type.String(), Source: ev.Source}
	if ev.Controller != nil {
		ref := ev.Controller.Reference()
		msg.Controller = ev.Controller.ID()
		msg.Reference = &ref
	}
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			return StructureMessage{}, err
		}
		msg.Payload = raw
	}
	return msg, nil
}

// BridgeStructureEvents пересылает события реестра слушателей в шину.
// Публикация идёт с низким приоритетом: при переполнении буфера событие отбрасывается,
// поток симуляции не блокируется. Возвращает идентификатор подписки в hub.
func BridgeStructureEvents(ctx context.Context, hub *multiblock.Listeners, bus EventBus, source string) int {
	log := logging.GetEventBusLogger()
	return hub.Subscribe(func(ev multiblock.Event) {
		msg, err := NewStructureMessage(ev)
		if err != nil {
			log.Warn("структурное событие %s не сериализуется: %v", ev.Type, err)
			return
		}
		data, err := json.Marshal(msg)
		if err != nil {
			log.Warn("структурное событие %s не сериализуется: %v", ev.Type, err)
			return
		}
		env := NewEnvelope(source, TypeStructure, 4, data)
		if err := bus.Publish(ctx, env); err != nil {
			log.Warn("публикация %s: %v", env.ID, err)
		}
	})
}
