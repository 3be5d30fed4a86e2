package domain

import (
	"math"
	"strconv"
	"strings"
)

const (
	// FillValue is the ARGO "no data" placeholder.
	FillValue = 99999.0
	// lowerFill is the exclusive lower bound of usable values.
	lowerFill = -999.0
)

// IsValid reports whether a raw scalar is numeric and not a fill value.
func IsValid(raw string) bool {
	_, ok := ParseValid(raw)
	return ok
}

// ParseValid parses a raw scalar, returning false for null, non-numeric,
// or fill values.
func ParseValid(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if isNull(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if !ValidValue(v) {
		return 0, false
	}
	return v, true
}

// ValidValue applies the fill-value rules to an already numeric value.
func ValidValue(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v != FillValue && v > lowerFill
}

// ValidCoordinate reports whether lat/lon are physically possible. Longitudes
// are accepted in both the [-180, 180] and [0, 360] conventions.
func ValidCoordinate(lat, lon float64) bool {
	if !ValidValue(lat) || !ValidValue(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 360
}

// NewPosition validates and normalizes a coordinate pair.
func NewPosition(lat, lon float64) (Position, bool) {
	if !ValidCoordinate(lat, lon) {
		return Position{}, false
	}
	return Position{Latitude: lat, Longitude: normalizeLongitude(lon)}, true
}

// normalizeLongitude maps (180, 360] onto (-180, 0].
func normalizeLongitude(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}
