// Package render formats a diagnosed sounding as the fixed-width text report:
// a five-line banner, one row per level, then the diagnostic values.
//
// The level table uses the archive's slot layout, so the rendered text parses
// back with domain.Parse.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/storm-sounding-service/internal/domain"
)

// Source is the default first banner line.
const Source = "Data from https://weather.uwyo.edu/upperair/sounding.html"

const rule = "=================================================================================================="

const (
	columnNames = "   PRES    HGT   TEMP   DWPT   RELH   MIXR   DRCT   SKNT    SMS   THTE   PLCL   CAPE    CIN   LFTX"
	columnUnits = "    HPA      M      C      C      %   G/KG    DEG   KNOT    M/S      K    HPA   J/KG   J/KG      C"
)

// column is one table column: how to read it from a row and how many
// decimals to print.
type column struct {
	value    func(domain.DerivedLevel) domain.Float
	decimals int
}

var columns = []column{
	{func(r domain.DerivedLevel) domain.Float { return r.Pressure }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.Height }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.Temperature }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.Dewpoint }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.RelativeHumidity }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.MixingRatio }, 2},
	{func(r domain.DerivedLevel) domain.Float { return r.WindDirection }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.WindSpeed }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.WindSpeedMS() }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.ThetaE }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.Parcel.LCLPressure }, 1},
	{func(r domain.DerivedLevel) domain.Float { return r.Parcel.CAPE }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.Parcel.CIN }, 0},
	{func(r domain.DerivedLevel) domain.Float { return r.Parcel.LiftedIndex }, 1},
}

// Banner returns the five banner lines with source as the first one.
func Banner(source string) string {
	return strings.Join([]string{source, rule, columnNames, columnUnits, rule}, "\n") + "\n"
}

// Row formats one level. Absent values are left blank.
func Row(r domain.DerivedLevel) string {
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(slot(c.value(r), c.decimals))
	}
	return b.String()
}

func slot(f domain.Float, decimals int) string {
	v, ok := f.Get()
	if !ok {
		return strings.Repeat(" ", domain.SlotWidth)
	}
	return fmt.Sprintf("%*s", domain.SlotWidth, strconv.FormatFloat(v, 'f', decimals, 64))
}

// value formats a diagnostic without padding.
func value(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// line is one "Label [unit]: value" entry of the diagnostic block.
type line struct {
	label    string
	value    domain.Float
	decimals int
}

func diagnosticLines(d domain.DiagnosticResult) []line {
	lines := []line{
		{"Terrain height [m]", d.TerrainHeight, 1},
		{"1000 hPa to 500 hPa thickness[m]", d.Thickness, 0},
		{"Precipitable water [mm]", d.PrecipitableWater, 2},
		{"Total totals index [K]", d.TotalTotals, 1},
		{"K index [K]", d.KIndex, 1},
		{"TQ index [K]", d.TQIndex, 1},
		{"Thompson index [K]", d.ThompsonIndex, 1},
		{"EP index [K]", d.EPIndex, 1},
		{"Storm Motion Speed [m/s]", d.StormMotionSpeed, 1},
		{"Storm Motion Direction [deg]", d.StormMotionDirection, 0},
		{"0-90 hPa above ground Storm relative helicity [J/kg]", d.Helicity90, 2},
		{"0-255 hPa above ground Storm relative helicity [J/kg]", d.Helicity255, 2},
	}
	lines = append(lines, parcelLines(d.MixedLayer30,
		"Pressure of lifted condensation level [hPa]",
		"Convective available potential energy [J/kg]",
		"Convective inhibition [J/kg]",
		"Lifted index [C]")...)
	lines = append(lines, parcelLines(d.SurfaceBased,
		"Pressure of lifted condensation level (Surface-based) [hPa]",
		"Surface-based Convective available potential energy [J/kg]",
		"Surface-based Convective inhibition [J/kg]",
		"Surface-based Lifted index [C]")...)
	lines = append(lines, line{"Pressure of most unstable layer [hPa]", d.MostUnstablePressure, 1})
	lines = append(lines, parcelLines(d.MostUnstable,
		"Pressure of lifted condensation level (Most Unstable) [hPa]",
		"Most Unstable Convective available potential energy [J/kg]",
		"Most Unstable Convective inhibition [J/kg]",
		"Most Unstable Lifted index [C]")...)
	lines = append(lines, parcelLines(d.MixedLayer90,
		"Pressure of lifted condensation level (Mixed layer) [hPa]",
		"Mixed Layer Convective available potential energy [J/kg]",
		"Mixed layer Convective inhibition [J/kg]",
		"Mixed layer Lifted index [C]")...)
	return lines
}

func parcelLines(p domain.Parcel, lcl, cape, cin, li string) []line {
	return []line{
		{lcl, p.LCLPressure, 1},
		{cape, p.CAPE, 2},
		{cin, p.CIN, 2},
		{li, p.LiftedIndex, 2},
	}
}

// Write renders the full report for s and d to w.
func Write(w io.Writer, source string, s *domain.Sounding, d domain.DiagnosticResult) error {
	var b strings.Builder
	b.WriteString(Banner(source))
	for _, r := range s.Rows() {
		b.WriteString(Row(r))
		b.WriteByte('\n')
	}
	b.WriteString("\nDIAGNOSTIC VALUES:\n")
	for _, l := range diagnosticLines(d) {
		v, ok := l.value.Get()
		if !ok {
			continue
		}
		b.WriteString(l.label)
		b.WriteString(": ")
		b.WriteString(value(v, l.decimals))
		b.WriteByte('\n')
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Report renders a report, naming the station and observation time in the
// banner source line.
func Report(w io.Writer, r domain.Report) error {
	return Write(w, ReportSource(r), r.Sounding, r.Diagnostics)
}

// ReportSource is the banner source line for a report.
func ReportSource(r domain.Report) string {
	src := Source + " station " + r.Station
	if r.StationInfo != nil && r.StationInfo.Name != "" {
		src += " (" + r.StationInfo.Name + ")"
	}
	return src + " at " + r.ObservedAt.UTC().Format("2006-01-02 15Z")
}
