package domain

import "errors"

var (
	// ErrNoRecords is returned by Parse when the text holds no level records.
	ErrNoRecords = errors.New("sounding has no level records")

	// ErrNoData is returned by fetchers when the archive has no sounding for
	// the requested station and time.
	ErrNoData = errors.New("no sounding data")

	// ErrInvalidRequest is returned when a station code or observation time
	// cannot be used to request a sounding.
	ErrInvalidRequest = errors.New("invalid sounding request")
)
