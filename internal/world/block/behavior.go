package block

import (
	"github.com/annel0/greenhouse-sim/internal/vec"
)

type Metadata map[string]interface{}

// GreenhouseType вариант блока теплицы
type GreenhouseType uint8

const (
	GreenhouseNone GreenhouseType = iota
	GreenhousePlain
	GreenhouseGlass
	GreenhouseGearbox
	GreenhouseControl
	GreenhouseHatchInput
	GreenhouseHatchOutput
	GreenhouseFan
	GreenhouseHeater
	GreenhouseDryer
	GreenhouseSprinkler
)

// String возвращает имя варианта
func (t GreenhouseType) String() string {
	switch t {
	case GreenhousePlain:
		return "plain"
	case GreenhouseGlass:
		return "glass"
	case GreenhouseGearbox:
		return "gearbox"
	case GreenhouseControl:
		return "control"
	case GreenhouseHatchInput:
		return "hatch_input"
	case GreenhouseHatchOutput:
		return "hatch_output"
	case GreenhouseFan:
		return "fan"
	case GreenhouseHeater:
		return "heater"
	case GreenhouseDryer:
		return "dryer"
	case GreenhouseSprinkler:
		return "sprinkler"
	default:
		return "none"
	}
}

// IsHatch проверяет, является ли вариант люком
func (t GreenhouseType) IsHatch() bool {
	return t == GreenhouseHatchInput || t == GreenhouseHatchOutput
}

// IsClimatizer проверяет, влияет ли вариант на климат
func (t GreenhouseType) IsClimatizer() bool {
	switch t {
	case GreenhouseFan, GreenhouseHeater, GreenhouseDryer, GreenhouseSprinkler:
		return true
	default:
		return false
	}
}

// BlockBehavior определяет поведение блока
type BlockBehavior interface {
	ID() BlockID
	Name() string
	// GreenhouseType возвращает GreenhouseNone для блоков, не входящих в теплицу
	GreenhouseType() GreenhouseType
	OnPlace(api BlockAPI, pos vec.Vec3)
	OnBreak(api BlockAPI, pos vec.Vec3)
	CreateMetadata() Metadata
}

// TypeOf возвращает вариант теплицы для ID блока
func TypeOf(id BlockID) GreenhouseType {
	behavior, ok := Get(id)
	if !ok {
		return GreenhouseNone
	}
	return behavior.GreenhouseType()
}
