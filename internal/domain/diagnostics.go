package domain

// Options tunes Diagnose.
type Options struct {
	// LegacyStormWrap reproduces the historical 360−d storm direction wrap.
	LegacyStormWrap bool
}

// DiagnosticResult is the full set of diagnostics for one sounding.
type DiagnosticResult struct {
	TerrainHeight        Float `json:"terrain_height"`         // m
	Thickness            Float `json:"thickness_1000_500"`     // m
	PrecipitableWater    Float `json:"precipitable_water"`     // mm
	TotalTotals          Float `json:"total_totals"`           // K
	KIndex               Float `json:"k_index"`                // K
	TQIndex              Float `json:"tq_index"`               // K
	ThompsonIndex        Float `json:"thompson_index"`         // K
	EPIndex              Float `json:"ep_index"`               // K
	StormMotionSpeed     Float `json:"storm_motion_speed"`     // m/s
	StormMotionDirection Float `json:"storm_motion_direction"` // deg
	Helicity90           Float `json:"helicity_0_90"`          // J/kg
	Helicity255          Float `json:"helicity_0_255"`         // J/kg
	MostUnstablePressure Float `json:"most_unstable_pressure"` // hPa

	SurfaceBased Parcel `json:"surface_based"`
	MostUnstable Parcel `json:"most_unstable"`
	MixedLayer90 Parcel `json:"mixed_layer_90"`
	MixedLayer30 Parcel `json:"mixed_layer_30"`
}

// Diagnose computes every diagnostic for s. Each value is independently
// optional; no missing input fails the whole result.
func Diagnose(s *Sounding, opts Options) DiagnosticResult {
	var r DiagnosticResult

	r.TerrainHeight = s.TerrainHeight()
	r.Thickness = s.Thickness()
	r.PrecipitableWater = s.PrecipitableWater()

	idx := s.InstabilityIndices()
	r.TotalTotals = idx.TotalTotals
	r.KIndex = idx.K
	r.TQIndex = idx.TQ
	r.EPIndex = idx.EP

	if i, ok := s.BottomIndex(); ok {
		r.SurfaceBased = s.Derived(i)
	}
	if i, ok := s.MostUnstableIndex(); ok {
		r.MostUnstablePressure = s.levels[i].Pressure
		r.MostUnstable = s.Derived(i)
	}
	r.MixedLayer90 = s.MixedLayerParcel(MixedLayerDeep)
	r.MixedLayer30 = s.MixedLayerParcel(MixedLayerShallow)
	r.ThompsonIndex = Sub(r.KIndex, r.MixedLayer30.LiftedIndex)

	if m, ok := s.EstimateStormMotion(opts.LegacyStormWrap); ok {
		r.StormMotionSpeed = Some(m.SpeedMS())
		r.StormMotionDirection = Some(m.Direction())
		r.Helicity90 = s.Helicity(HelicityShallow, m)
		r.Helicity255 = s.Helicity(HelicityDeep, m)
	}
	return r
}
