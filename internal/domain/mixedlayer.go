package domain

import (
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-sounding-service/internal/meteo"
)

// Mixed layer depths above the bottom level [hPa].
const (
	MixedLayerDeep    = 90.0
	MixedLayerShallow = 30.0
)

// MixedLayerStart averages temperature and mixing ratio over the lowest
// depth hPa and returns the start state of a parcel at the layer midpoint.
// The dewpoint is rebuilt from the averaged values, but every level the
// layer touches must report one; otherwise the start is empty.
func (s *Sounding) MixedLayerStart(depth float64) ParcelStart {
	if s.bottom < 0 {
		return ParcelStart{}
	}
	bottom := s.levels[s.bottom]
	c, ok := newCursor(s.levels, bottom, s.bottom, mixedLayerUsable)
	if !ok {
		return ParcelStart{}
	}

	pBottom := pressureOf(bottom)
	center := pBottom - depth/2

	var temps, ratios []float64
	var h Float
	for i := 0; ; i++ {
		p := stepPressure(pBottom, i)
		if p < pBottom-depth-pressureEps {
			break
		}
		if !c.seek(p) {
			return ParcelStart{}
		}
		temps = append(temps, c.value(p, fTemperature))
		ratios = append(ratios, c.value(p, fMixingRatio))
		if !h.Valid() && p <= center+pressureEps {
			h = Some(c.value(p, fHeight))
		}
	}
	if !h.Valid() {
		return ParcelStart{}
	}

	t := stat.Mean(temps, nil)
	w := stat.Mean(ratios, nil)
	rh := meteo.RelativeHumidity(t, center, w)
	return ParcelStart{
		Temperature: Some(t),
		Dewpoint:    Some(meteo.Dewpoint(t, rh)),
		Pressure:    Some(center),
		MixingRatio: Some(w),
		Height:      h,
	}
}

// MixedLayerParcel lifts the mixed-layer parcel of the given depth.
func (s *Sounding) MixedLayerParcel(depth float64) Parcel {
	return s.Ascend(s.MixedLayerStart(depth))
}
