// Package meteo holds the thermodynamic and kinematic formulas used by the
// sounding diagnostics. Every function is pure and works on plain float64
// values; handling of missing observations belongs to the caller.
//
// Units follow the upper-air archive: pressure in hPa, temperature in °C
// unless a parameter name says Kelvin, mixing ratio in kg/kg unless noted,
// wind speed in knots.
package meteo

import "math"

const (
	// Gravity is standard gravitational acceleration [m/s²].
	Gravity = 9.80665

	// KnotsToMS converts knots to metres per second.
	KnotsToMS = 0.514444

	// KelvinOffset converts °C to K. The archive tooling uses 273.16.
	KelvinOffset = 273.16

	// StandardPressure is the potential temperature reference [hPa].
	StandardPressure = 1000.0

	// Kappa is R/cp for dry air.
	Kappa = 0.286

	// LCLExponent is the inverse Poisson exponent used for the LCL pressure.
	LCLExponent = 3.48

	// Magnus coefficients for saturation vapour pressure.
	magnusA = 17.67
	magnusB = 243.5

	// CpDry is the specific heat of dry air at constant pressure [J/(kg·K)].
	CpDry = 1005.0

	// Epsilon is the ratio of molecular weights of water vapour and dry air.
	Epsilon = 0.622

	// geoOffset maps mathematical angles to meteorological wind direction.
	geoOffset = 270.0

	// PrecipitableWaterScale is the empirical divisor (×g) that turns
	// Σ w[g/kg]·Δp[hPa] into millimetres of water.
	PrecipitableWaterScale = 9.97

	degToRad = math.Pi / 180
)

// ToKelvin converts °C to K.
func ToKelvin(c float64) float64 { return c + KelvinOffset }

// KnotsToMetersPerSecond converts a wind speed in knots to m/s.
func KnotsToMetersPerSecond(kt float64) float64 {
	return kt * KnotsToMS
}

// LCLTemperature returns the lifted condensation level temperature [°C]
// for a parcel with temperature t and dewpoint td [°C].
func LCLTemperature(t, td float64) float64 {
	tk := ToKelvin(t)
	tdk := ToKelvin(td)
	partA := 1 / (tdk - 56)
	partB := math.Log(tk/tdk) / 800
	return 1/(partA+partB) + 56 - KelvinOffset
}

// LCLPressure returns the lifted condensation level pressure [hPa] for a
// parcel starting at pressure p.
func LCLPressure(t, td, p float64) float64 {
	tlclK := ToKelvin(LCLTemperature(t, td))
	theta := ToKelvin(t) * math.Pow(StandardPressure/p, Kappa)
	return StandardPressure * math.Pow(tlclK/theta, LCLExponent)
}

// Virtual returns the virtual temperature [K] for temperature tk [K] and
// mixing ratio w [kg/kg].
func Virtual(tk, w float64) float64 {
	return tk * (1 + 0.6*w)
}

// VirtualFromDewpoint returns the virtual temperature [K] of air at tk [K]
// whose moisture is given by the dewpoint tdk [K] at pressure p.
func VirtualFromDewpoint(tk, tdk, p float64) float64 {
	w := MixingRatio(SaturationVaporPressure(tdk-KelvinOffset), p)
	return Virtual(tk, w)
}

// MixingRatio returns the mixing ratio [kg/kg] for vapour pressure e at
// total pressure p [hPa].
func MixingRatio(e, p float64) float64 {
	return Epsilon * e / (p - 0.377*e)
}

// SaturationVaporPressure returns the saturation vapour pressure [hPa] over
// water at t [°C].
func SaturationVaporPressure(t float64) float64 {
	return 6.112 * math.Exp(magnusA*t/(t+magnusB))
}

// RelativeHumidity returns relative humidity [%] for temperature t [°C],
// pressure p [hPa] and mixing ratio w [g/kg].
func RelativeHumidity(t, p, w float64) float64 {
	ws := MixingRatio(SaturationVaporPressure(t), p)
	return 100 * ((w / 1000) / ws)
}

// Dewpoint returns the dewpoint [°C] for temperature t [°C] and relative
// humidity rh [%].
func Dewpoint(t, rh float64) float64 {
	part := math.Log(rh/100) + (magnusA*t)/(magnusB+t)
	return (magnusB * part) / (magnusA - part)
}

// LatentHeat returns the latent heat of condensation [J/kg] at t [°C].
func LatentHeat(t float64) float64 {
	return 1000 * (2502.2 - 2.43089*t)
}

// GammaW returns the moist adiabatic lapse rate [K/Pa] at t [°C] and
// pressure p [hPa] for relative humidity rh [%].
func GammaW(t, p, rh float64) float64 {
	tk := ToKelvin(t)
	ws := MixingRatio(SaturationVaporPressure(t), p)
	w := rh * ws / 100
	tv := Virtual(tk, w)
	latent := LatentHeat(t)
	rd := Kappa * 1000
	partA := 1.0 + latent*ws/(rd*tk)
	partB := 1.0 + Epsilon*latent*latent*ws/(CpDry*rd*tk*tk)
	density := 100 * p / (rd * tv)
	return (partA / partB) / (CpDry * density)
}

// Interpolate linearly interpolates a value at pressure p between
// (p0, v0) and (p1, v1).
func Interpolate(p0, p1, v0, v1, p float64) float64 {
	coeff := (p0 - p) / (p0 - p1)
	return v0 - coeff*(v0-v1)
}

// WindComponents splits a wind given as speed and meteorological direction
// into u (eastward) and v (northward) components. Calm winds are treated as
// 0.01 so the direction survives averaging.
func WindComponents(speed, direction float64) (u, v float64) {
	if speed <= 0 {
		speed = 0.01
	}
	angle := degToRad * (geoOffset - direction)
	return speed * math.Cos(angle), speed * math.Sin(angle)
}

// WindSpeed returns the magnitude of the (u, v) vector.
func WindSpeed(u, v float64) float64 {
	return math.Hypot(u, v)
}

// WindDirection returns the meteorological direction of the (u, v) vector.
// The result lies in (90, 450]; callers normalize when they need [0, 360).
func WindDirection(u, v float64) float64 {
	return geoOffset - math.Atan2(v, u)/degToRad
}

// NormalizeDirection folds a direction into [0, 360).
func NormalizeDirection(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}
