package climate

import (
	"fmt"

	"github.com/annel0/greenhouse-sim/internal/logging"
	"github.com/annel0/greenhouse-sim/internal/record"
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Ключи записи региона
const (
	keyID             = "id"
	keyTicksPerUpdate = "ticksPerUpdate"
	keyTemperature    = "temperature"
	keyHumidity       = "humidity"
	keyPositions      = "positions"
	keyOthers         = "others"
	keySources        = "sources"
	keyBounds         = "bounds"
)

// WriteTo записывает регион в запись: отсчёты, прочие координаты, идентификаторы
// источников (живых и ожидающих) и кэшированные скаляры.
func (r *Region) WriteTo(rec record.Record) record.Record {
	rec.SetString(keyID, r.id)
	rec.SetInt(keyTicksPerUpdate, r.ticksPerUpdate)
	rec.SetFloat(keyTemperature, r.state.Temperature)
	rec.SetFloat(keyHumidity, r.state.Humidity)

	keys := make([]vec.Vec3, 0, len(r.positions))
	for pos := range r.positions {
		keys = append(keys, pos)
	}
	vec.SortVec3(keys)

	positions := make([]record.Record, 0, len(keys))
	for _, pos := range keys {
		p := r.positions[pos]
		entry := record.New()
		entry.SetPos(pos)
		entry.SetFloat(keyTemperature, p.Temperature)
		entry.SetFloat(keyHumidity, p.Humidity)
		positions = append(positions, entry)
	}
	rec.SetRecordList(keyPositions, positions)

	others := make([]record.Record, 0, len(r.others))
	for _, pos := range r.OtherPositions() {
		entry := record.New()
		entry.SetPos(pos)
		others = append(others, entry)
	}
	rec.SetRecordList(keyOthers, others)

	ids := make([]string, 0, len(r.sources)+len(r.pending))
	for _, src := range r.Sources() {
		ids = append(ids, src.SourceID())
	}
	ids = append(ids, r.PendingSources()...)
	rec.SetStringList(keySources, ids)

	if r.hasBounds {
		bounds := record.New()
		minRec := record.New()
		minRec.SetPos(r.minPos)
		maxRec := record.New()
		maxRec.SetPos(r.maxPos)
		bounds.SetRecord("min", minRec)
		bounds.SetRecord("max", maxRec)
		rec.SetRecord(keyBounds, bounds)
	}

	return rec
}

// ReadFrom восстанавливает регион из записи, сделанной WriteTo.
// Источники восстанавливаются через SourceResolver; не найденные остаются ожидающими.
func (r *Region) ReadFrom(rec record.Record) error {
	tpu := rec.GetInt(keyTicksPerUpdate)
	if tpu <= 0 {
		return fmt.Errorf("%w: ticksPerUpdate=%d", ErrInvalidRecord, tpu)
	}

	r.Clear()
	if rec.HasKey(keyID) {
		r.id = rec.GetString(keyID)
	}
	r.ticksPerUpdate = tpu
	r.hasBounds = false

	if rec.HasKey(keyBounds) {
		bounds := rec.GetRecord(keyBounds)
		r.SetBounds(bounds.GetRecord("min").GetPos(), bounds.GetRecord("max").GetPos())
	}

	for _, entry := range rec.GetRecordList(keyPositions) {
		pos := entry.GetPos()
		if !r.inBounds(pos) {
			logging.Debug("регион %s: отсчёт %s вне границ пропущен", r.id, pos)
			continue
		}
		r.positions[pos] = &Position{
			Pos:         pos,
			Temperature: entry.GetFloat(keyTemperature),
			Humidity:    entry.GetFloat(keyHumidity),
		}
	}

	for _, entry := range rec.GetRecordList(keyOthers) {
		r.AddOtherPosition(entry.GetPos())
	}

	for _, id := range rec.GetStringList(keySources) {
		if r.resolver != nil {
			if src, ok := r.resolver(id); ok && src != nil {
				r.sources[src.SourceID()] = src
				continue
			}
		}
		r.pending[id] = struct{}{}
	}

	r.state = Climate{
		Temperature: rec.GetFloat(keyTemperature),
		Humidity:    rec.GetFloat(keyHumidity),
	}
	return nil
}
