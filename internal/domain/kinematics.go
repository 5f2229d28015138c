package domain

import (
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/storm-sounding-service/internal/meteo"
)

// Storm motion layer and deviation from the mean wind.
const (
	meanWindBottom = 850.0
	meanWindTop    = 300.0

	// Mean winds below slowMeanWind kt deviate more.
	slowMeanWind = 15.0
	slowReduce   = 0.25
	slowRotate   = 30.0
	fastReduce   = 0.20
	fastRotate   = 20.0
)

// Helicity depths above the bottom level [hPa].
const (
	HelicityShallow = 90.0
	HelicityDeep    = 255.0
)

// StormMotion is the estimated storm motion vector in knots.
type StormMotion struct {
	U float64
	V float64
}

// SpeedMS returns the storm speed in m/s.
func (m StormMotion) SpeedMS() float64 {
	return meteo.KnotsToMetersPerSecond(meteo.WindSpeed(m.U, m.V))
}

// Direction returns the direction the storm moves from, in [0, 360).
func (m StormMotion) Direction() float64 {
	return meteo.NormalizeDirection(meteo.WindDirection(m.U, m.V))
}

// EstimateStormMotion derives storm motion from the 850-300 hPa mean wind:
// slow mean winds are reduced by 25% and veered 30°, faster ones by 20% and
// 20°. With legacyWrap, directions past 360° wrap as 360−d instead of
// modulo 360, reproducing historical output.
func (s *Sounding) EstimateStormMotion(legacyWrap bool) (StormMotion, bool) {
	if s.bottom < 0 {
		return StormMotion{}, false
	}
	bottom := s.levels[s.bottom]
	c, ok := newCursor(s.levels, bottom, s.bottom, windUsable)
	if !ok {
		return StormMotion{}, false
	}

	var us, vs []float64
	pBottom := pressureOf(bottom)
	for i := 0; ; i++ {
		p := stepPressure(pBottom, i)
		if p < meanWindTop-pressureEps {
			break
		}
		if !c.seek(p) {
			return StormMotion{}, false
		}
		if p > meanWindBottom+pressureEps {
			continue
		}
		u, v := meteo.WindComponents(c.value(p, fWindSpeed), c.value(p, fWindDirection))
		us = append(us, u)
		vs = append(vs, v)
	}
	if len(us) == 0 {
		return StormMotion{}, false
	}

	meanU := stat.Mean(us, nil)
	meanV := stat.Mean(vs, nil)

	reduce, rotate := fastReduce, fastRotate
	if meteo.WindSpeed(meanU, meanV) < slowMeanWind {
		reduce, rotate = slowReduce, slowRotate
	}
	u := (1 - reduce) * meanU
	v := (1 - reduce) * meanV

	speed := meteo.WindSpeed(u, v)
	direction := meteo.WindDirection(u, v) + rotate
	if direction > 360 {
		if legacyWrap {
			direction = 360 - direction
		} else {
			direction = meteo.NormalizeDirection(direction)
		}
	}

	su, sv := meteo.WindComponents(speed, direction)
	return StormMotion{U: su, V: sv}, true
}

// Helicity integrates storm-relative helicity [m²/s²] over the lowest depth
// hPa, pairing consecutive 0.1 hPa wind samples.
func (s *Sounding) Helicity(depth float64, m StormMotion) Float {
	if s.bottom < 0 {
		return None()
	}
	bottom := s.levels[s.bottom]
	c, ok := newCursor(s.levels, bottom, s.bottom, windUsable)
	if !ok {
		return None()
	}

	su := meteo.KnotsToMetersPerSecond(m.U)
	sv := meteo.KnotsToMetersPerSecond(m.V)

	var srh, uOld, vOld float64
	pBottom := pressureOf(bottom)
	for i := 0; ; i++ {
		p := stepPressure(pBottom, i)
		if p < pBottom-depth-pressureEps {
			break
		}
		if !c.seek(p) {
			return None()
		}
		speed := meteo.KnotsToMetersPerSecond(c.value(p, fWindSpeed))
		u, v := meteo.WindComponents(speed, c.value(p, fWindDirection))
		if i > 0 {
			du := u - uOld
			dv := v - vOld
			uBar := 0.5 * (u + uOld)
			vBar := 0.5 * (v + vOld)
			srh += -dv*(uBar-su) + du*(vBar-sv)
		}
		uOld, vOld = u, v
	}
	return Some(srh)
}
