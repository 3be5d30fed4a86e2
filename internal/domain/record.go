package domain

import (
	"sort"
	"strings"
	"time"
)

// Row is one record of a delimited-text export, keyed by its source column
// names. It is opaque: stages read it only through Resolve.
type Row struct {
	values map[string]string
	folded map[string]string
}

// NewRow wraps a column-to-value mapping. When several columns differ only
// by case, the lexically first one wins the case-insensitive lookup.
func NewRow(values map[string]string) Row {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	folded := make(map[string]string, len(values))
	for _, k := range keys {
		fk := strings.ToLower(strings.TrimSpace(k))
		if _, ok := folded[fk]; !ok {
			folded[fk] = values[k]
		}
	}
	return Row{values: values, folded: folded}
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.values) }

// RawRow is a Row after alias resolution and validity filtering. Pointer
// fields are nil when the source value was absent or failed IsValid.
type RawRow struct {
	FloatID     string // empty when no identity column is present
	ProfileKey  string
	Latitude    *float64
	Longitude   *float64
	Pressure    *float64
	Temperature *float64
	Salinity    *float64
	Date        time.Time
	CycleNumber int
	Direction   Direction
	QualityFlag string
	PositionQC  string
}

// Position returns the row's coordinates when they pass ValidCoordinate,
// with the longitude normalized into [-180, 180].
func (r RawRow) Position() (Position, bool) {
	if r.Latitude == nil || r.Longitude == nil {
		return Position{}, false
	}
	return NewPosition(*r.Latitude, *r.Longitude)
}

// ProfileGroup is the ordered set of rows of one file sharing a float id
// and a profile key. FloatID is empty when the export has no identity column.
type ProfileGroup struct {
	FloatID string
	Key     string
	Rows    []RawRow
}

// Position is a WGS-84 latitude/longitude pair in degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FloatStatus is the operational state of a float.
type FloatStatus string

const (
	FloatActive   FloatStatus = "active"
	FloatInactive FloatStatus = "inactive"
)

// Direction is the vertical sampling direction of a profile.
type Direction string

const (
	Ascending  Direction = "A"
	Descending Direction = "D"
)

// DefaultPlatformType labels floats whose export carries no platform type.
const DefaultPlatformType = "ARGO_FLOAT"

// FloatRecord is the canonical record of one float, upserted across files.
type FloatRecord struct {
	FloatID         string      `json:"float_id"`
	WMONumber       string      `json:"wmo_number"`
	LastPosition    Position    `json:"last_position"`
	Status          FloatStatus `json:"status"`
	PlatformType    string      `json:"platform_type"`
	DeploymentDate  time.Time   `json:"deployment_date"`
	LastProfileDate time.Time   `json:"last_profile_date"`
}

// ProfileRecord is one vertical sampling cycle of a float.
type ProfileRecord struct {
	ProfileID   string    `json:"profile_id"`
	FloatID     string    `json:"float_id"`
	ProfileKey  string    `json:"profile_key"`
	SourceFile  string    `json:"source_file"`
	ProfileDate time.Time `json:"profile_date"`
	CycleNumber int       `json:"cycle_number"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Direction   Direction `json:"profile_direction"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// MeasurementRecord is a single pressure/temperature/salinity sample.
type MeasurementRecord struct {
	ProfileID   string   `json:"profile_id"`
	Pressure    float64  `json:"pressure"`
	Temperature float64  `json:"temperature"`
	Salinity    *float64 `json:"salinity,omitempty"`
	Depth       float64  `json:"depth"`
	QualityFlag string   `json:"quality_flag"`
}

// TrajectoryPoint is one recorded position of a float.
type TrajectoryPoint struct {
	FloatID         string    `json:"float_id"`
	Timestamp       time.Time `json:"timestamp"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	LocationQuality string    `json:"location_quality"`
}

// ProfileSummary holds per-profile means over valid measurements.
type ProfileSummary struct {
	ProfileID        string    `json:"profile_id"`
	ProfileDate      time.Time `json:"profile_date"`
	CycleNumber      int       `json:"cycle_number"`
	MeasurementCount int       `json:"measurement_count"`
	MeanPressure     *float64  `json:"mean_pressure,omitempty"`
	MeanTemperature  *float64  `json:"mean_temperature,omitempty"`
	MeanSalinity     *float64  `json:"mean_salinity,omitempty"`
}

// ProfileDocument is a profile together with its measurements, the unit
// published downstream.
type ProfileDocument struct {
	Profile      ProfileRecord       `json:"profile"`
	Measurements []MeasurementRecord `json:"measurements"`
}
