package climate

import (
	"context"
	"sort"
	"time"

	"github.com/annel0/greenhouse-sim/internal/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Scheduler вспомогательный планировщик для хоста: на каждом тике обновляет регионы,
// чей период кратен номеру тика. Собственных горутин и таймеров у него нет.
type Scheduler struct {
	regions map[string]*Region
	metrics *metrics.Metrics
}

// NewScheduler создаёт планировщик; m может быть nil
func NewScheduler(m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		regions: make(map[string]*Region),
		metrics: m,
	}
}

// Add регистрирует регион; регион с тем же ID заменяется
func (s *Scheduler) Add(r *Region) {
	s.regions[r.ID()] = r
	s.metrics.SetRegions(len(s.regions))
}

// Remove снимает регион с планирования
func (s *Scheduler) Remove(id string) {
	delete(s.regions, id)
	s.metrics.SetRegions(len(s.regions))
}

// Region возвращает регион по идентификатору
func (s *Scheduler) Region(id string) (*Region, bool) {
	r, ok := s.regions[id]
	return r, ok
}

// Len возвращает число регионов
func (s *Scheduler) Len() int {
	return len(s.regions)
}

// Tick обновляет регионы, для которых tick кратен их TicksPerUpdate.
// Возвращает число обновлённых регионов. Регионы обходятся в порядке идентификаторов.
func (s *Scheduler) Tick(ctx context.Context, tick uint64) int {
	_, span := otel.Tracer("greenhouse-sim/climate").Start(ctx, "climate.Tick")
	defer span.End()

	started := time.Now()

	ids := make([]string, 0, len(s.regions))
	for id := range s.regions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updated := 0
	for _, id := range ids {
		r := s.regions[id]
		tpu := uint64(r.TicksPerUpdate())
		if tick%tpu != 0 {
			continue
		}
		r.UpdateClimate(r.TicksPerUpdate())
		s.metrics.ClimateUpdated()
		updated++
	}

	span.SetAttributes(attribute.Int64("tick", int64(tick)), attribute.Int("regions.updated", updated))
	s.metrics.ObserveTick(time.Since(started))
	return updated
}
