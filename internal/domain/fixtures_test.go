package domain

import (
	"github.com/couchcryptid/storm-sounding-service/internal/meteo"
)

const testHeader = `
-----------------------------------------------------------------------------
   PRES   HGHT   TEMP   DWPT   RELH   MIXR   DRCT   SKNT   THTA   THTE   THTV
    hPa     m      C      C      %    g/kg    deg   knot     K      K      K
-----------------------------------------------------------------------------
`

// testTable is an archive table whose first record is a below-ground level.
const testTable = testHeader +
	` 1000.0    106
  974.0    329   24.4   18.4     69  13.93    175     13  299.8  341.2
  925.0    766   21.2   16.2     73  12.62    200     25  300.9  338.9
  850.0   1484   17.0    9.0     59   8.67    225     30  303.8  330.5
  700.0   3126    5.4   -6.6     42   3.45    240     35  308.5  319.8
  500.0   5840  -11.7  -33.7     15   0.38    250     45  319.6  321.0
  300.0   9580  -38.1  -53.1     19   0.05    255     60  331.4  331.6
  250.0  10780  -47.5  -60.5     21   0.03    255     70  334.2  334.3
  200.0  12090  -54.3  -66.3     21   0.01    260     75  347.0  347.1
  150.0  13720  -59.1  -71.1     19   0.01    265     60  368.8  368.9
  100.0  16300  -66.5  -79.5     13   0.00    270     30  407.0  407.0
`

// obs is a compact level description; humidity and mixing ratio are derived
// from the dewpoint.
type obs struct {
	p, h, t, td, dir, spd, te float64
}

func (o obs) level() Level {
	w := meteo.MixingRatio(meteo.SaturationVaporPressure(o.td), o.p) * 1000
	return Level{
		Pressure:         Some(o.p),
		Height:           Some(o.h),
		Temperature:      Some(o.t),
		Dewpoint:         Some(o.td),
		RelativeHumidity: Some(meteo.RelativeHumidity(o.t, o.p, w)),
		MixingRatio:      Some(w),
		WindDirection:    Some(o.dir),
		WindSpeed:        Some(o.spd),
		ThetaE:           Some(o.te),
	}
}

func levels(rows ...obs) []Level {
	out := make([]Level, len(rows))
	for i, r := range rows {
		out[i] = r.level()
	}
	return out
}

// convectiveRows is a warm, moist boundary layer under a cooling column
// that reaches 100 hPa.
var convectiveRows = []obs{
	{1000, 0, 20, 15, 200, 10, 330},
	{850, 1500, 10, 5, 230, 25, 325},
	{500, 5500, -20, -30, 250, 40, 320},
	{300, 9200, -45, -55, 260, 55, 330},
	{200, 11800, -55, -65, 265, 60, 345},
	{100, 16500, -60, -75, 270, 40, 400},
}

func convectiveSounding() *Sounding {
	return NewSounding(levels(convectiveRows...))
}

// withWind replaces every wind in rows.
func withWind(rows []obs, dir, spd float64) []obs {
	out := append([]obs(nil), rows...)
	for i := range out {
		out[i].dir = dir
		out[i].spd = spd
	}
	return out
}

// withoutMoisture drops dewpoint, humidity and mixing ratio from every level.
func withoutMoisture(ls []Level) []Level {
	for i := range ls {
		ls[i].Dewpoint = None()
		ls[i].RelativeHumidity = None()
		ls[i].MixingRatio = None()
	}
	return ls
}
