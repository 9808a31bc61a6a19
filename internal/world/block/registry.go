package block

import "sort"

var registry = make(map[BlockID]BlockBehavior)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registry[id] = behavior
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	behavior, exists := registry[id]
	return behavior, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// Registered возвращает отсортированный список зарегистрированных ID
func Registered() []BlockID {
	ids := make([]BlockID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID   BlockID = iota // 0
	DirtBlockID                 // 1
	StoneBlockID                // 2

	// Блоки теплицы (начиная с 300)
	GreenhousePlainBlockID     BlockID = 300
	GreenhouseGlassBlockID     BlockID = 301
	GreenhouseGearboxBlockID   BlockID = 302
	GreenhouseControlBlockID   BlockID = 303
	GreenhouseHatchInBlockID   BlockID = 304
	GreenhouseHatchOutBlockID  BlockID = 305
	GreenhouseFanBlockID       BlockID = 310
	GreenhouseHeaterBlockID    BlockID = 311
	GreenhouseDryerBlockID     BlockID = 312
	GreenhouseSprinklerBlockID BlockID = 313
)
