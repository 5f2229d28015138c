package domain

import "github.com/couchcryptid/storm-sounding-service/internal/meteo"

const (
	// pressureStep is the vertical integration step [hPa].
	pressureStep = 0.1

	// pressureEps absorbs rounding when comparing stepped pressures.
	pressureEps = 1e-6
)

// stepPressure returns the i-th pressure of a scan starting at start.
// Deriving it from the index keeps long scans free of accumulated drift.
func stepPressure(start float64, i int) float64 {
	return start - float64(i)*pressureStep
}

// cursor walks the levels upward, keeping the pair of levels that bracket
// the current pressure. It only moves forward.
type cursor struct {
	levels []Level
	idx    int // index of next in levels
	prev   Level
	next   Level
	usable func(Level) bool
}

// newCursor starts a scan with the given lower bracket and levels[idx] as the
// upper one. It reports false when levels[idx] is missing or unusable.
func newCursor(levels []Level, prev Level, idx int, usable func(Level) bool) (*cursor, bool) {
	if idx < 0 || idx >= len(levels) || !usable(levels[idx]) {
		return nil, false
	}
	return &cursor{
		levels: levels,
		idx:    idx,
		prev:   prev,
		next:   levels[idx],
		usable: usable,
	}, true
}

// seek advances until the upper bracket's pressure is at most p. It
// reports false when the levels run out or a level lacks a required field.
func (c *cursor) seek(p float64) bool {
	for p < pressureOf(c.next)-pressureEps {
		c.idx++
		if c.idx >= len(c.levels) || !c.usable(c.levels[c.idx]) {
			return false
		}
		c.prev = c.next
		c.next = c.levels[c.idx]
	}
	return true
}

// value interpolates field at p between the bracketing levels. Both levels
// passed the usable check, so the field is assumed present.
func (c *cursor) value(p float64, field func(Level) Float) float64 {
	pp := pressureOf(c.prev)
	np := pressureOf(c.next)
	pv, _ := field(c.prev).Get()
	nv, _ := field(c.next).Get()
	if pp == np {
		return nv
	}
	return meteo.Interpolate(pp, np, pv, nv, p)
}

func pressureOf(l Level) float64 {
	p, _ := l.Pressure.Get()
	return p
}

// field accessors used by the scans.
func fTemperature(l Level) Float { return l.Temperature }
func fDewpoint(l Level) Float { return l.Dewpoint }
func fThetaE(l Level) Float { return l.ThetaE }
func fMixingRatio(l Level) Float { return l.MixingRatio }
func fHeight(l Level) Float { return l.Height }
func fWindSpeed(l Level) Float { return l.WindSpeed }
func fWindDirection(l Level) Float { return l.WindDirection }

// thermoUsable reports whether a level can bracket temperature, moisture and
// height interpolation.
func thermoUsable(l Level) bool {
	_, ok := All(l.Pressure, l.Temperature, l.MixingRatio, l.Height)
	return ok
}

// mixedLayerUsable additionally requires an observed dewpoint.
func mixedLayerUsable(l Level) bool {
	return thermoUsable(l) && l.Dewpoint.Valid()
}

// windUsable reports whether a level can bracket wind interpolation.
func windUsable(l Level) bool {
	_, ok := All(l.Pressure, l.WindSpeed, l.WindDirection)
	return ok
}
