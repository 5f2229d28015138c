package domain

import (
	"gonum.org/v1/gonum/integrate"

	"github.com/couchcryptid/storm-sounding-service/internal/meteo"
)

// Mandatory levels used by the fixed-level indices [hPa].
const (
	p1000 = 1000.0
	p850  = 850.0
	p700  = 700.0
	p500  = 500.0
)

// Indices are the fixed-level instability indices. Each is absent when one
// of its mandatory-level inputs is missing.
type Indices struct {
	K           Float
	TotalTotals Float
	TQ          Float
	EP          Float
}

// InstabilityIndices computes the K, Total Totals, TQ and EP indices from
// the 850, 700 and 500 hPa levels.
func (s *Sounding) InstabilityIndices() Indices {
	t850 := s.fieldAt(p850, fTemperature)
	td850 := s.fieldAt(p850, fDewpoint)
	t700 := s.fieldAt(p700, fTemperature)
	td700 := s.fieldAt(p700, fDewpoint)
	t500 := s.fieldAt(p500, fTemperature)
	te850 := s.fieldAt(p850, fThetaE)
	te500 := s.fieldAt(p500, fThetaE)

	var idx Indices
	if v, ok := All(t850, td850, t700, td700, t500); ok {
		idx.K = Some(v[0] - v[4] + v[1] - (v[2] - v[3]))
	}
	if v, ok := All(t850, td850, t500); ok {
		idx.TotalTotals = Some(v[0] + v[1] - 2*v[2])
	}
	if v, ok := All(t850, td850, t700); ok {
		idx.TQ = Some(v[0] + v[1] - 1.7*v[2])
	}
	idx.EP = Sub(te500, te850)
	return idx
}

// PrecipitableWater integrates the mixing ratio over pressure from the
// bottom level up to the first level without pressure or mixing ratio and
// returns millimetres of water. It is absent when the bottom level has no
// mixing ratio.
func (s *Sounding) PrecipitableWater() Float {
	if s.bottom < 0 {
		return None()
	}
	if !s.levels[s.bottom].MixingRatio.Valid() {
		return None()
	}

	// integrate.Trapezoidal wants ascending abscissae, so integrate over −p.
	var xs, ws []float64
	for _, l := range s.levels[s.bottom:] {
		v, ok := All(l.Pressure, l.MixingRatio)
		if !ok {
			break
		}
		if n := len(xs); n > 0 && -v[0] < xs[n-1] {
			break
		}
		xs = append(xs, -v[0])
		ws = append(ws, v[1])
	}
	if len(xs) < 2 {
		return Some(0)
	}
	return Some(integrate.Trapezoidal(xs, ws) / (meteo.PrecipitableWaterScale * meteo.Gravity))
}

// Thickness returns the 1000-500 hPa thickness [m].
func (s *Sounding) Thickness() Float {
	return Sub(s.fieldAt(p500, fHeight), s.fieldAt(p1000, fHeight))
}

// TerrainHeight returns the height of the bottom level [m].
func (s *Sounding) TerrainHeight() Float {
	if s.bottom < 0 {
		return None()
	}
	return s.levels[s.bottom].Height
}
