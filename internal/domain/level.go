package domain

import "github.com/couchcryptid/storm-sounding-service/internal/meteo"

// Level is one pressure level of a sounding as published by the archive.
type Level struct {
	Pressure         Float `json:"pressure"`          // hPa
	Height           Float `json:"height"`            // m above sea level
	Temperature      Float `json:"temperature"`       // °C
	Dewpoint         Float `json:"dewpoint"`          // °C
	RelativeHumidity Float `json:"relative_humidity"` // %
	MixingRatio      Float `json:"mixing_ratio"`      // g/kg
	WindDirection    Float `json:"wind_direction"`    // deg
	WindSpeed        Float `json:"wind_speed"`        // kt
	ThetaE           Float `json:"theta_e"`           // K
}

// Complete reports whether every observed field is present.
func (l Level) Complete() bool {
	_, ok := All(
		l.Pressure, l.Height, l.Temperature, l.Dewpoint, l.RelativeHumidity,
		l.MixingRatio, l.WindDirection, l.WindSpeed, l.ThetaE,
	)
	return ok
}

// WindSpeedMS returns the wind speed in m/s.
func (l Level) WindSpeedMS() Float {
	return l.WindSpeed.Map(meteo.KnotsToMetersPerSecond)
}

// ParcelStart is the initial state of a lifted parcel.
type ParcelStart struct {
	Temperature Float // °C
	Dewpoint    Float // °C
	Pressure    Float // hPa
	MixingRatio Float // g/kg
	Height      Float // m
}

// StartFromLevel builds a parcel start state from a level's own observations.
func StartFromLevel(l Level) ParcelStart {
	return ParcelStart{
		Temperature: l.Temperature,
		Dewpoint:    l.Dewpoint,
		Pressure:    l.Pressure,
		MixingRatio: l.MixingRatio,
		Height:      l.Height,
	}
}
