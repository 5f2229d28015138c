package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstabilityIndices(t *testing.T) {
	s, err := Parse(testTable)
	require.NoError(t, err)

	idx := s.InstabilityIndices()
	assert.InDelta(t, 25.7, mustGet(t, idx.K), 1e-9)
	assert.InDelta(t, 49.4, mustGet(t, idx.TotalTotals), 1e-9)
	assert.InDelta(t, 16.82, mustGet(t, idx.TQ), 1e-9)
	assert.InDelta(t, -9.5, mustGet(t, idx.EP), 1e-9)
}

func TestInstabilityIndices_MissingLevelIsIndependent(t *testing.T) {
	// No 700 hPa level: K and TQ need it, TT and EP do not.
	idx := convectiveSounding().InstabilityIndices()
	assert.False(t, idx.K.Valid())
	assert.False(t, idx.TQ.Valid())
	assert.InDelta(t, 55.0, mustGet(t, idx.TotalTotals), 1e-9)
	assert.InDelta(t, -5.0, mustGet(t, idx.EP), 1e-9)
}

func TestPrecipitableWater(t *testing.T) {
	t.Run("integrates from the bottom level", func(t *testing.T) {
		s, err := Parse(testTable)
		require.NoError(t, err)
		assert.InDelta(t, 28.5111, mustGet(t, s.PrecipitableWater()), 1e-3)
	})

	t.Run("derived moisture profile", func(t *testing.T) {
		assert.InDelta(t, 26.5023, mustGet(t, convectiveSounding().PrecipitableWater()), 1e-3)
	})

	t.Run("stops at the first level without mixing ratio", func(t *testing.T) {
		ls := levels(convectiveRows...)
		ls[1].MixingRatio = None()
		assert.True(t, NewSounding(ls).PrecipitableWater().Equal(0))
	})

	t.Run("absent without bottom mixing ratio", func(t *testing.T) {
		s := NewSounding(withoutMoisture(levels(convectiveRows...)))
		assert.False(t, s.PrecipitableWater().Valid())
	})
}

func TestThicknessAndTerrain(t *testing.T) {
	s, err := Parse(testTable)
	require.NoError(t, err)
	assert.True(t, s.Thickness().Equal(5734))
	assert.True(t, s.TerrainHeight().Equal(329))

	assert.True(t, convectiveSounding().Thickness().Equal(5500))
	assert.True(t, convectiveSounding().TerrainHeight().Equal(0))
}
