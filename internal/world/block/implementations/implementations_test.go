package implementations

import (
	"testing"

	"github.com/annel0/greenhouse-sim/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestRegistry_GreenhouseVariants(t *testing.T) {
	cases := map[block.BlockID]block.GreenhouseType{
		block.AirBlockID:                 block.GreenhouseNone,
		block.DirtBlockID:                block.GreenhouseNone,
		block.GreenhousePlainBlockID:     block.GreenhousePlain,
		block.GreenhouseGlassBlockID:     block.GreenhouseGlass,
		block.GreenhouseHatchOutBlockID:  block.GreenhouseHatchOutput,
		block.GreenhouseHeaterBlockID:    block.GreenhouseHeater,
		block.GreenhouseSprinklerBlockID: block.GreenhouseSprinkler,
	}

	for id, want := range cases {
		assert.True(t, block.IsValidBlockID(id), "блок %d должен быть зарегистрирован", id)
		assert.Equal(t, want, block.TypeOf(id), "неверный вариант для блока %d", id)
	}

	assert.Equal(t, block.GreenhouseNone, block.TypeOf(block.BlockID(9999)), "неизвестный блок не входит в теплицу")
}

func TestClimatizer_Metadata(t *testing.T) {
	behavior, ok := block.Get(block.GreenhouseHeaterBlockID)
	assert.True(t, ok)

	meta := behavior.CreateMetadata()
	assert.Equal(t, 5.0, meta["power"])
	assert.Equal(t, 4, meta["range"])
	assert.True(t, behavior.GreenhouseType().IsClimatizer())
}
