// Package domain models upper-air soundings and the stability and kinematic
// diagnostics computed from them.
//
// # Data Source
//
// Soundings come from the University of Wyoming upper-air archive
// (http://weather.uwyo.edu/upperair/sounding.html) in its TEXT:LIST form.
// The fetch adapter extracts the fixed-width table between <PRE> and </PRE>;
// this package only ever sees that table.
//
// # Table Conventions
//
// Header: five lines (station banner, rule, column names, units, rule).
// Records start on the sixth line.
//
// Records: 7-character right-justified slots at byte offsets
//
//	0  PRES  hPa
//	7  HGT   m above sea level
//	14 TEMP  °C
//	21 DWPT  °C
//	28 RELH  %
//	35 MIXR  g/kg
//	42 DRCT  deg
//	49 SKNT  knot
//	56 THTA  (skipped)
//	63 THTE  K
//
// A blank or unparseable slot is absent, never zero. The archive leaves the
// upper part of the table with empty humidity and wind columns, and the very
// first record is sometimes a partial surface report; see [Sounding.BottomIndex].
// Both "." and "," are accepted as the decimal separator.
//
// # Ordering
//
// Records are pressure-descending (surface first). Every vertical scan in this
// package walks the levels with a cursor that brackets the current pressure
// between two observed levels and interpolates linearly in pressure.
//
// # Parcels
//
// A parcel is lifted from a start state (T, Td, P, w, h) in 0.1 hPa steps up to
// 100 hPa. Four start states are used per sounding: surface-based (bottom
// level), most unstable (maximum θe in the lowest 255 hPa), and two mixed
// layers (lowest 90 and 30 hPa averaged). See [Sounding.Ascend] and
// [Sounding.MixedLayerStart].
//
// # ID Generation
//
// Report IDs are name-based UUIDs (SHA-1) of station|observation time, so the
// same sounding always maps to the same ID. See [NewReport].
package domain
