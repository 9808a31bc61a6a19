package climate

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

// Effect вклад источника в климат: смещение температуры (°C) и влажности (%)
type Effect struct {
	Temperature float32
	Humidity    float32
}

// Source излучатель, возмущающий климат региона.
// Регион хранит только ссылку: временем жизни источника управляет создавший его тайл.
type Source interface {
	// SourceID устойчивый идентификатор; регион хранит источники как множество по нему.
	SourceID() string
	Pos() vec.Vec3
	Effect() Effect
	// Range радиус действия в блоках (расстояние Чебышёва)
	Range() int
	IsActive() bool
}

// SourceResolver восстанавливает живой источник по идентификатору при загрузке региона
type SourceResolver func(id string) (Source, bool)

// SourceKind вид блочного источника
type SourceKind uint8

const (
	KindHeater SourceKind = iota
	KindCooler
	KindHumidifier
	KindDehumidifier
)

// String возвращает имя вида
func (k SourceKind) String() string {
	switch k {
	case KindHeater:
		return "heater"
	case KindCooler:
		return "cooler"
	case KindHumidifier:
		return "humidifier"
	case KindDehumidifier:
		return "dehumidifier"
	default:
		return "unknown"
	}
}

// BlockSource источник, привязанный к блоку (нагреватель, охладитель, увлажнитель, осушитель)
type BlockSource struct {
	id     string
	pos    vec.Vec3
	kind   SourceKind
	power  float32
	rng    int
	active bool
}

// NewBlockSource создаёт активный источник. power задаётся по модулю, знак определяет kind.
func NewBlockSource(id string, pos vec.Vec3, kind SourceKind, power float32, rng int) *BlockSource {
	if power < 0 {
		power = -power
	}
	if rng < 0 {
		rng = 0
	}
	return &BlockSource{id: id, pos: pos, kind: kind, power: power, rng: rng, active: true}
}

func (s *BlockSource) SourceID() string { return s.id }
func (s *BlockSource) Pos() vec.Vec3    { return s.pos }
func (s *BlockSource) Range() int       { return s.rng }
func (s *BlockSource) IsActive() bool   { return s.active }
func (s *BlockSource) Kind() SourceKind { return s.kind }
func (s *BlockSource) Power() float32   { return s.power }

// SetActive включает или выключает источник
func (s *BlockSource) SetActive(active bool) {
	s.active = active
}

// Effect возвращает вклад с учётом вида
func (s *BlockSource) Effect() Effect {
	switch s.kind {
	case KindHeater:
		return Effect{Temperature: s.power}
	case KindCooler:
		return Effect{Temperature: -s.power}
	case KindHumidifier:
		return Effect{Humidity: s.power}
	case KindDehumidifier:
		return Effect{Humidity: -s.power}
	default:
		return Effect{}
	}
}
