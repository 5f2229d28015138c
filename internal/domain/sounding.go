package domain

import "encoding/json"

const (
	// derivedTopPressure is the highest level that gets a derived parcel.
	derivedTopPressure = 100.0

	// muDepth bounds the most-unstable search above the bottom level [hPa].
	muDepth = 255.0
)

// Sounding is an ordered, pressure-descending column of levels plus the
// parcel results derived for each level. It is immutable once built.
type Sounding struct {
	levels  []Level
	bottom  int // -1 when no level has a pressure
	derived map[int]Parcel
}

// NewSounding copies the levels, resolves the bottom level and lifts a
// parcel from every level between the bottom and 100 hPa.
func NewSounding(levels []Level) *Sounding {
	s := &Sounding{
		levels:  append([]Level(nil), levels...),
		derived: make(map[int]Parcel),
	}
	s.bottom = resolveBottom(s.levels)
	s.deriveParcels()
	return s
}

// resolveBottom skips a leading partial record, at most one.
func resolveBottom(levels []Level) int {
	if len(levels) == 0 {
		return -1
	}
	idx := 0
	if !levels[0].Complete() && len(levels) > 1 {
		idx = 1
	}
	if !levels[idx].Pressure.Valid() {
		return -1
	}
	return idx
}

// deriveParcels stops at the first level above 100 hPa or the first level
// that cannot start an ascent.
func (s *Sounding) deriveParcels() {
	if s.bottom < 0 {
		return
	}
	for i := s.bottom; i < len(s.levels); i++ {
		l := s.levels[i]
		p, ok := l.Pressure.Get()
		if !ok || p < derivedTopPressure {
			return
		}
		if _, ok := All(l.Temperature, l.Dewpoint, l.MixingRatio, l.Height); !ok {
			return
		}
		s.derived[i] = s.Ascend(StartFromLevel(l))
	}
}

// Levels returns a copy of the levels in parse order.
func (s *Sounding) Levels() []Level {
	return append([]Level(nil), s.levels...)
}

// Len returns the number of levels.
func (s *Sounding) Len() int { return len(s.levels) }

// Level returns the i-th level.
func (s *Sounding) Level(i int) Level { return s.levels[i] }

// Derived returns the parcel lifted from the i-th level. Levels outside the
// derived range yield an absent parcel.
func (s *Sounding) Derived(i int) Parcel { return s.derived[i] }

// BottomIndex returns the index of the bottom level.
func (s *Sounding) BottomIndex() (int, bool) {
	return s.bottom, s.bottom >= 0
}

// BottomPressure returns the pressure of the bottom level.
func (s *Sounding) BottomPressure() Float {
	if s.bottom < 0 {
		return None()
	}
	return s.levels[s.bottom].Pressure
}

// MostUnstableIndex returns the index of the level with the highest θe in
// the lowest 255 hPa. Ties go to the higher level. The scan stops early at a
// level without pressure or without θe.
func (s *Sounding) MostUnstableIndex() (int, bool) {
	bottom, ok := s.BottomPressure().Get()
	if !ok {
		return -1, false
	}

	best := -1
	var maxThetaE float64
	for i, l := range s.levels {
		p, ok := l.Pressure.Get()
		if !ok || p < bottom-muDepth {
			break
		}
		if p > bottom {
			continue
		}
		te, ok := l.ThetaE.Get()
		if !ok {
			break
		}
		if best < 0 || te >= maxThetaE {
			best = i
			maxThetaE = te
		}
	}
	return best, best >= 0
}

// MostUnstablePressure returns the pressure of the most unstable level.
func (s *Sounding) MostUnstablePressure() Float {
	i, ok := s.MostUnstableIndex()
	if !ok {
		return None()
	}
	return s.levels[i].Pressure
}

// LevelAt returns the first level whose pressure is exactly p.
func (s *Sounding) LevelAt(p float64) (Level, bool) {
	for _, l := range s.levels {
		if l.Pressure.Equal(p) {
			return l, true
		}
	}
	return Level{}, false
}

// fieldAt returns a field of the level at exactly p, absent if no such level.
func (s *Sounding) fieldAt(p float64, field func(Level) Float) Float {
	l, ok := s.LevelAt(p)
	if !ok {
		return None()
	}
	return field(l)
}

// DerivedLevel is a level together with the parcel lifted from it.
type DerivedLevel struct {
	Level
	Parcel Parcel `json:"parcel"`
}

// Rows pairs every level with its derived parcel, in parse order.
func (s *Sounding) Rows() []DerivedLevel {
	rows := make([]DerivedLevel, len(s.levels))
	for i, l := range s.levels {
		rows[i] = DerivedLevel{Level: l, Parcel: s.derived[i]}
	}
	return rows
}

// MarshalJSON encodes the sounding as its list of derived rows.
func (s *Sounding) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Rows())
}
