package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSounding_BottomIndex(t *testing.T) {
	full := levels(convectiveRows...)
	partial := Level{Pressure: Some(1013), Height: Some(-50)}

	tests := []struct {
		name     string
		levels   []Level
		expected int
		ok       bool
	}{
		{"complete first record", full, 0, true},
		{"partial first record skipped", append([]Level{partial}, full...), 1, true},
		{"only one record skipped", append([]Level{partial, partial}, full...), 1, true},
		{"single partial record kept", []Level{partial}, 0, true},
		{"second record without pressure", append([]Level{partial, {Height: Some(0)}}, full...), -1, false},
		{"empty", nil, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := NewSounding(tt.levels).BottomIndex()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, idx)
		})
	}
}

func TestSounding_BottomPressureFromTable(t *testing.T) {
	s, err := Parse(testTable)
	require.NoError(t, err)
	assert.True(t, s.BottomPressure().Equal(974))
	assert.True(t, s.TerrainHeight().Equal(329))
}

func TestSounding_MostUnstable(t *testing.T) {
	t.Run("surface is most unstable", func(t *testing.T) {
		assert.True(t, convectiveSounding().MostUnstablePressure().Equal(1000))
	})

	t.Run("ties go to the higher level", func(t *testing.T) {
		rows := append([]obs(nil), convectiveRows...)
		rows[1].te = rows[0].te
		assert.True(t, NewSounding(levels(rows...)).MostUnstablePressure().Equal(850))
	})

	t.Run("levels above the search depth are ignored", func(t *testing.T) {
		rows := append([]obs(nil), convectiveRows...)
		rows[2].te = 400 // 500 hPa is more than 255 hPa above the bottom
		assert.True(t, NewSounding(levels(rows...)).MostUnstablePressure().Equal(1000))
	})

	t.Run("scan stops at missing theta-e", func(t *testing.T) {
		ls := levels(
			obs{1000, 0, 20, 15, 200, 10, 300},
			obs{850, 1500, 10, 5, 230, 25, 0},
			obs{800, 2000, 8, 2, 235, 28, 500},
			obs{500, 5500, -20, -30, 250, 40, 320},
		)
		ls[1].ThetaE = None()
		assert.True(t, NewSounding(ls).MostUnstablePressure().Equal(1000))
	})

	t.Run("within range of the table bottom", func(t *testing.T) {
		s, err := Parse(testTable)
		require.NoError(t, err)
		mu := mustGet(t, s.MostUnstablePressure())
		bottom := mustGet(t, s.BottomPressure())
		assert.LessOrEqual(t, mu, bottom)
		assert.GreaterOrEqual(t, mu, bottom-255)
		assert.Equal(t, 974.0, mu)
	})
}

func TestSounding_LevelAt(t *testing.T) {
	s := convectiveSounding()

	l, ok := s.LevelAt(850)
	require.True(t, ok)
	assert.True(t, l.Height.Equal(1500))

	_, ok = s.LevelAt(851)
	assert.False(t, ok, "no interpolation")
}

func TestSounding_DerivedParcels(t *testing.T) {
	s := convectiveSounding()

	for i := 0; i < 5; i++ {
		assert.True(t, s.Derived(i).LCLPressure.Valid(), "level %d", i)
	}
	// Nothing above 100 hPa to lift into.
	assert.Equal(t, Parcel{}, s.Derived(5))

	// Levels are not mutated by the derived pass.
	assert.Equal(t, levels(convectiveRows...), s.Levels())
}

func TestSounding_DerivedStopsAtIncompleteLevel(t *testing.T) {
	ls := levels(convectiveRows...)
	ls[2].Dewpoint = None()
	s := NewSounding(ls)

	assert.True(t, s.Derived(0).CAPE.Valid())
	assert.True(t, s.Derived(1).CAPE.Valid())
	assert.False(t, s.Derived(2).CAPE.Valid())
	assert.False(t, s.Derived(3).CAPE.Valid(), "pass stops at the first incomplete level")
}

func TestSounding_MarshalJSON(t *testing.T) {
	ls := levels(convectiveRows[:2]...)
	ls[1].WindSpeed = None()
	data, err := json.Marshal(NewSounding(ls))
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, 1000.0, rows[0]["pressure"])
	assert.Nil(t, rows[1]["wind_speed"])
	assert.Contains(t, rows[0], "parcel")
}
