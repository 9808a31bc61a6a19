package multiblock

// AssemblyState состояние конструкции:
// Unassembled -> Assembling -> Assembled -> Disassembling -> Unassembled
type AssemblyState uint8

const (
	Unassembled AssemblyState = iota
	Assembling
	Assembled
	Disassembling
)

// String возвращает имя состояния
func (s AssemblyState) String() string {
	switch s {
	case Unassembled:
		return "unassembled"
	case Assembling:
		return "assembling"
	case Assembled:
		return "assembled"
	case Disassembling:
		return "disassembling"
	default:
		return "unknown"
	}
}

// CanTransition проверяет допустимость перехода
func CanTransition(from, to AssemblyState) bool {
	switch from {
	case Unassembled:
		return to == Assembling
	case Assembling:
		return to == Assembled || to == Unassembled
	case Assembled:
		return to == Disassembling
	case Disassembling:
		return to == Unassembled
	default:
		return false
	}
}
