package multiblock

import "errors"

// Нарушения инвариантов: возвращаются хосту, который обычно принудительно разбирает конструкцию.
var (
	// ErrNoMembers контроллер остался без членов
	ErrNoMembers = errors.New("multiblock: контроллер без членов")
	// ErrNotConnectable тайл без внешнего направления использован как подключаемый
	ErrNotConnectable = errors.New("multiblock: у тайла нет внешнего направления")
)

// Причины неудачной сборки. Наружу не пробрасываются: сборка молча откатывается,
// а причина доступна через Assembler.LastFailure.
var (
	ErrScanLimit = errors.New("multiblock: превышен лимит обхода")
	ErrTooSmall  = errors.New("multiblock: конструкция слишком мала")
	ErrTooLarge  = errors.New("multiblock: конструкция слишком велика")
	ErrShape     = errors.New("multiblock: неверная форма")
	ErrOverlap   = errors.New("multiblock: пересечение с чужим контроллером")
)
