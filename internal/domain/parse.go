package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// HeaderLines is the number of banner lines preceding the level records.
	HeaderLines = 5

	// SlotWidth is the width of every fixed-width column.
	SlotWidth = 7
)

// slot offsets of the observed fields. Offset 56 (THTA) is not read.
const (
	offPressure = 0
	offHeight   = 7
	offTemp     = 14
	offDewpoint = 21
	offRH       = 28
	offMixing   = 35
	offDir      = 42
	offSpeed    = 49
	offThetaE   = 63
)

// Parse reads a fixed-width sounding table into a Sounding. Unparseable
// slots become absent values; the only failure is a table without records.
func Parse(raw string) (*Sounding, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) <= HeaderLines {
		return nil, fmt.Errorf("parse sounding: %w", ErrNoRecords)
	}

	var levels []Level
	for _, line := range lines[HeaderLines:] {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		levels = append(levels, parseRecord(line))
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("parse sounding: %w", ErrNoRecords)
	}
	return NewSounding(levels), nil
}

// parseRecord extracts the slots in offset order. A record too short for a
// slot leaves that slot and every later one absent.
func parseRecord(line string) Level {
	var l Level
	fields := []struct {
		offset int
		dst    *Float
	}{
		{offPressure, &l.Pressure},
		{offHeight, &l.Height},
		{offTemp, &l.Temperature},
		{offDewpoint, &l.Dewpoint},
		{offRH, &l.RelativeHumidity},
		{offMixing, &l.MixingRatio},
		{offDir, &l.WindDirection},
		{offSpeed, &l.WindSpeed},
		{offThetaE, &l.ThetaE},
	}
	for _, f := range fields {
		if len(line)-f.offset < SlotWidth {
			break
		}
		*f.dst = parseSlot(line[f.offset : f.offset+SlotWidth])
	}
	return l
}

// parseSlot parses one slot, accepting "," as decimal separator.
func parseSlot(s string) Float {
	s = strings.TrimSpace(s)
	if s == "" {
		return None()
	}
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return None()
	}
	return Some(v)
}
