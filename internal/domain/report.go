package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the yyyymmddhh form of an observation time.
const TimeLayout = "2006010215"

// stationRe accepts WMO block/station numbers and ICAO identifiers.
var stationRe = regexp.MustCompile(`^[A-Z0-9]{3,6}$`)

// reportNamespace seeds the name-based report IDs.
var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("http://weather.uwyo.edu/upperair/sounding.html"))

// Request identifies one sounding: a station and a synoptic observation time.
type Request struct {
	Station string
	Time    time.Time
}

// String returns "station@yyyymmddhh".
func (r Request) String() string {
	return r.Station + "@" + r.Time.Format(TimeLayout)
}

// ParseRequest validates a station code and a yyyymmddhh observation time.
func ParseRequest(station, ts string) (Request, error) {
	station = strings.ToUpper(strings.TrimSpace(station))
	if !stationRe.MatchString(station) {
		return Request{}, fmt.Errorf("%w: station %q", ErrInvalidRequest, station)
	}
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(ts), time.UTC)
	if err != nil {
		return Request{}, fmt.Errorf("%w: time %q: expected yyyymmddhh", ErrInvalidRequest, ts)
	}
	return Request{Station: station, Time: t}, nil
}

// SoundingFetcher retrieves the raw level table of a sounding.
type SoundingFetcher interface {
	Fetch(ctx context.Context, req Request) (string, error)
}

// StationInfo describes a station from the catalog.
type StationInfo struct {
	ID        string  `json:"id" yaml:"id"`
	ICAO      string  `json:"icao,omitempty" yaml:"icao"`
	Name      string  `json:"name" yaml:"name"`
	Lat       float64 `json:"lat" yaml:"lat"`
	Lon       float64 `json:"lon" yaml:"lon"`
	Elevation float64 `json:"elevation" yaml:"elevation"` // m
}

// Report is a diagnosed sounding ready for rendering or publishing.
type Report struct {
	ID          string           `json:"id"`
	Station     string           `json:"station"`
	StationInfo *StationInfo     `json:"station_info,omitempty"`
	ObservedAt  time.Time        `json:"observed_at"`
	ComputedAt  time.Time        `json:"computed_at"`
	Sounding    *Sounding        `json:"levels"`
	Diagnostics DiagnosticResult `json:"diagnostics"`
}

// NewReport wraps a sounding and its diagnostics. The ID depends only on
// the station and observation time.
func NewReport(req Request, s *Sounding, d DiagnosticResult) Report {
	return Report{
		ID:          ReportID(req),
		Station:     req.Station,
		ObservedAt:  req.Time.UTC(),
		ComputedAt:  clock.Now().UTC(),
		Sounding:    s,
		Diagnostics: d,
	}
}

// ReportID returns the deterministic ID of the report for req.
func ReportID(req Request) string {
	name := req.Station + "|" + req.Time.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(reportNamespace, []byte(name)).String()
}
