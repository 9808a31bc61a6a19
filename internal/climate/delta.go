package climate

// Delta описание изменения скаляров региона на авторитетной стороне.
// Транспорт упаковывает его в сообщение; в байты ядро не сериализует.
type Delta struct {
	RegionID    string  `json:"region_id"`
	Temperature float32 `json:"temperature"`
	Humidity    float32 `json:"humidity"`
}

// DeltaSink получатель дельт климата
type DeltaSink interface {
	PublishClimate(d Delta)
}

// DeltaSinkFunc адаптер функции к DeltaSink
type DeltaSinkFunc func(d Delta)

// PublishClimate реализует DeltaSink
func (f DeltaSinkFunc) PublishClimate(d Delta) { f(d) }

// ApplyDelta применяет дельту на реплике. Дельта другого региона игнорируется.
func (r *Region) ApplyDelta(d Delta) bool {
	if d.RegionID != r.id {
		return false
	}
	r.state = clampClimate(Climate{Temperature: d.Temperature, Humidity: d.Humidity})
	return true
}
