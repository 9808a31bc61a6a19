package implementations

import "github.com/annel0/greenhouse-sim/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.DirtBlockID, &TerrainBehavior{id: block.DirtBlockID, name: "Dirt"})
	block.Register(block.StoneBlockID, &TerrainBehavior{id: block.StoneBlockID, name: "Stone"})

	// Каркас и люки теплицы
	frame := []*GreenhouseBehavior{
		{id: block.GreenhousePlainBlockID, name: "Greenhouse", gtype: block.GreenhousePlain},
		{id: block.GreenhouseGlassBlockID, name: "Greenhouse Glass", gtype: block.GreenhouseGlass},
		{id: block.GreenhouseGearboxBlockID, name: "Greenhouse Gearbox", gtype: block.GreenhouseGearbox},
		{id: block.GreenhouseControlBlockID, name: "Greenhouse Controller", gtype: block.GreenhouseControl},
		{id: block.GreenhouseHatchInBlockID, name: "Greenhouse Hatch (in)", gtype: block.GreenhouseHatchInput},
		{id: block.GreenhouseHatchOutBlockID, name: "Greenhouse Hatch (out)", gtype: block.GreenhouseHatchOutput},
	}
	for _, b := range frame {
		block.Register(b.id, b)
	}

	// Климатизаторы: мощность в градусах/процентах, радиус в блоках
	climatizers := []*ClimatizerBehavior{
		{id: block.GreenhouseFanBlockID, name: "Greenhouse Fan", gtype: block.GreenhouseFan, power: -2, rng: 4},
		{id: block.GreenhouseHeaterBlockID, name: "Greenhouse Heater", gtype: block.GreenhouseHeater, power: 5, rng: 4},
		{id: block.GreenhouseDryerBlockID, name: "Greenhouse Dryer", gtype: block.GreenhouseDryer, power: -10, rng: 4},
		{id: block.GreenhouseSprinklerBlockID, name: "Greenhouse Sprinkler", gtype: block.GreenhouseSprinkler, power: 10, rng: 4},
	}
	for _, b := range climatizers {
		block.Register(b.id, b)
	}
}
