package domain

import (
	"math"

	"github.com/couchcryptid/storm-sounding-service/internal/meteo"
)

const (
	// ascentTopPressure is where every parcel ascent ends [hPa].
	ascentTopPressure = 100.0

	// liftedIndexPressure is where the lifted index is sampled [hPa].
	liftedIndexPressure = 500.0
)

// Parcel holds the results of lifting one parcel. Either all four values
// are present or, when the ascent could not be completed, all are absent.
// LiftedIndex is additionally absent for parcels starting above 500 hPa.
type Parcel struct {
	LCLPressure Float `json:"lcl_pressure"` // hPa
	CAPE        Float `json:"cape"`         // J/kg
	CIN         Float `json:"cin"`          // J/kg
	LiftedIndex Float `json:"lifted_index"` // °C
}

// Ascend lifts a parcel from start to 100 hPa in 0.1 hPa steps against the
// sounding's environment. Below the LCL the parcel cools linearly to the LCL
// temperature; above it, along the moist adiabat.
//
// CAPE integrates positive buoyancy over the whole ascent. CIN integrates
// negative buoyancy only until buoyancy first turns positive and is 0 when
// it never does. A missing start field, running out of levels or meeting a
// level without temperature, mixing ratio or height leaves every output absent.
func (s *Sounding) Ascend(start ParcelStart) Parcel {
	vals, ok := All(start.Temperature, start.Dewpoint, start.Pressure, start.MixingRatio, start.Height)
	if !ok || s.bottom < 0 {
		return Parcel{}
	}
	t0, td, p0, w0, h0 := vals[0], vals[1], vals[2], vals[3], vals[4]

	plcl := meteo.LCLPressure(t0, td, p0)
	tlcl := meteo.LCLTemperature(t0, td)
	if !finite(plcl) || !finite(tlcl) {
		return Parcel{}
	}

	gradient := pressureStep * (t0 - tlcl) / (p0 - plcl)
	if p0 <= plcl {
		gradient = moistGradient(t0, p0)
	}

	c, ok := s.ascentCursor(p0, Level{
		Pressure:    Some(p0),
		Temperature: Some(t0),
		MixingRatio: Some(w0),
		Height:      Some(h0),
	})
	if !ok {
		return Parcel{}
	}

	var (
		cape, cin, cinRun float64
		part, partOld     float64
		positive          bool
		li                Float
	)
	t := t0
	tdk := meteo.ToKelvin(td)
	for i := 0; ; i++ {
		p := stepPressure(p0, i)
		if p < ascentTopPressure-pressureEps {
			break
		}
		if !c.seek(p) {
			return Parcel{}
		}

		t -= gradient
		tk := meteo.ToKelvin(t)
		var tvParcel float64
		if p < plcl {
			tvParcel = meteo.VirtualFromDewpoint(tk, tk, p)
		} else {
			tvParcel = meteo.VirtualFromDewpoint(tk, tdk, p)
		}

		tEnv := c.value(p, fTemperature)
		wEnv := c.value(p, fMixingRatio)
		tvEnv := meteo.Virtual(meteo.ToKelvin(tEnv), wEnv/1000)
		buoyancy := tvParcel - tvEnv

		partOld = part
		part = buoyancy / tvEnv
		dz := c.value(p, fHeight) - c.value(p+pressureStep, fHeight)
		layer := meteo.Gravity * 0.5 * (partOld + part) * dz

		if part > 0 {
			cape += layer
			if !positive {
				positive = true
				cin = cinRun
			}
		} else {
			cinRun += layer
		}

		if !li.Valid() && p <= liftedIndexPressure+pressureEps && p >= liftedIndexPressure-pressureStep-pressureEps {
			li = Some(-buoyancy)
		}

		if p <= plcl {
			gradient = moistGradient(t, p)
		}
	}

	return Parcel{
		LCLPressure: Some(plcl),
		CAPE:        Some(cape),
		CIN:         Some(cin),
		LiftedIndex: li,
	}
}

// ascentCursor brackets the start pressure between the start state and the
// first level above it.
func (s *Sounding) ascentCursor(p0 float64, start Level) (*cursor, bool) {
	idx := s.bottom
	for ; idx < len(s.levels); idx++ {
		p, ok := s.levels[idx].Pressure.Get()
		if !ok {
			return nil, false
		}
		if p < p0 {
			break
		}
	}
	return newCursor(s.levels, start, idx, thermoUsable)
}

// moistGradient is the saturated temperature decrease over one step.
func moistGradient(t, p float64) float64 {
	return 10 * meteo.GammaW(t, p-pressureStep/2, 100)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
