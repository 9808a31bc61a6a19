package greenhouse

import "sort"

// ErrorState код состояния ошибки теплицы
type ErrorState string

const (
	StateTooHot       ErrorState = "too_hot"
	StateTooCold      ErrorState = "too_cold"
	StateTooHumid     ErrorState = "too_humid"
	StateTooArid      ErrorState = "too_arid"
	StateNoWater      ErrorState = "no_water"
	StateNotAssembled ErrorState = "not_assembled"
)

// ErrorLogic набор активных состояний ошибок
type ErrorLogic struct {
	states map[ErrorState]struct{}
}

// NewErrorLogic создаёт пустой набор
func NewErrorLogic() *ErrorLogic {
	return &ErrorLogic{states: make(map[ErrorState]struct{})}
}

// SetCondition включает или снимает состояние и возвращает condition
func (e *ErrorLogic) SetCondition(condition bool, state ErrorState) bool {
	if condition {
		e.states[state] = struct{}{}
	} else {
		delete(e.states, state)
	}
	return condition
}

// Contains проверяет наличие состояния
func (e *ErrorLogic) Contains(state ErrorState) bool {
	_, ok := e.states[state]
	return ok
}

// HasErrors есть ли хотя бы одно состояние
func (e *ErrorLogic) HasErrors() bool {
	return len(e.states) > 0
}

// States состояния в алфавитном порядке
func (e *ErrorLogic) States() []ErrorState {
	out := make([]ErrorState, 0, len(e.states))
	for s := range e.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear снимает все состояния
func (e *ErrorLogic) Clear() {
	e.states = make(map[ErrorState]struct{})
}
