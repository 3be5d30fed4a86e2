package index

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// BBox is a closed latitude/longitude rectangle.
type BBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// NewBBox builds a box from two corners given in any order.
func NewBBox(lat1, lon1, lat2, lon2 float64) BBox {
	return BBox{
		MinLat: min(lat1, lat2), MaxLat: max(lat1, lat2),
		MinLon: min(lon1, lon2), MaxLon: max(lon1, lon2),
	}
}

// Contains reports whether p lies inside the box, edges included. Stored
// longitudes are in [-180, 180]; a box written in the [0, 360] convention
// also matches western longitudes through their +360 equivalent, which
// covers boxes spanning the antimeridian.
func (b BBox) Contains(p domain.Position) bool {
	if p.Latitude < b.MinLat || p.Latitude > b.MaxLat {
		return false
	}
	return b.containsLon(p.Longitude) || (p.Longitude < 0 && b.containsLon(p.Longitude+360))
}

func (b BBox) containsLon(lon float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon
}

// ParseBBox reads "lat1,lon1,lat2,lon2".
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("bbox %q: want lat1,lon1,lat2,lon2", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("bbox %q: %w", s, err)
		}
		v[i] = f
	}
	for _, lat := range []float64{v[0], v[2]} {
		if !(lat >= -90 && lat <= 90) {
			return BBox{}, fmt.Errorf("bbox %q: latitude %g outside [-90, 90]", s, lat)
		}
	}
	for _, lon := range []float64{v[1], v[3]} {
		if !(lon >= -180 && lon <= 360) {
			return BBox{}, fmt.Errorf("bbox %q: longitude %g outside [-180, 360]", s, lon)
		}
	}
	return NewBBox(v[0], v[1], v[2], v[3]), nil
}

// DateRange is an inclusive time interval. A zero bound is open.
type DateRange struct {
	From, To time.Time
}

// Contains reports whether t falls within the range. A zero t never matches.
func (d DateRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	if !d.From.IsZero() && t.Before(d.From) {
		return false
	}
	if !d.To.IsZero() && t.After(d.To) {
		return false
	}
	return true
}

// ParseDateRange reads optional start and end bounds, each either a date
// ("2006-01-02") or an RFC 3339 timestamp. A date-only end covers its whole
// day. It returns nil when both bounds are empty.
func ParseDateRange(start, end string) (*DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}
	var dr DateRange
	if start != "" {
		t, _, err := parseBound(start)
		if err != nil {
			return nil, fmt.Errorf("start: %w", err)
		}
		dr.From = t
	}
	if end != "" {
		t, dateOnly, err := parseBound(end)
		if err != nil {
			return nil, fmt.Errorf("end: %w", err)
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		dr.To = t
	}
	if !dr.From.IsZero() && !dr.To.IsZero() && dr.From.After(dr.To) {
		return nil, errors.New("start is after end")
	}
	return &dr, nil
}

func parseBound(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q", s)
	}
	return t.UTC(), false, nil
}

// ParseStatus reads "active" or "inactive". Empty means no filter.
func ParseStatus(s string) (*domain.FloatStatus, error) {
	switch st := domain.FloatStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return nil, nil
	case domain.FloatActive, domain.FloatInactive:
		return &st, nil
	default:
		return nil, fmt.Errorf("invalid status %q", s)
	}
}

// ParseFloatIDs reads a comma-separated id list, dropping blanks.
func ParseFloatIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// FloatFilter is an AND of optional predicates over FloatRecords.
type FloatFilter struct {
	Status    *domain.FloatStatus
	DateRange *DateRange // tests LastProfileDate
	BBox      *BBox      // tests LastPosition
	FloatIDs  []string   // empty means all floats
}

// Match reports whether f satisfies every predicate that is set.
func (ff FloatFilter) Match(f domain.FloatRecord) bool {
	if ff.Status != nil && f.Status != *ff.Status {
		return false
	}
	if ff.DateRange != nil && !ff.DateRange.Contains(f.LastProfileDate) {
		return false
	}
	if ff.BBox != nil && !ff.BBox.Contains(f.LastPosition) {
		return false
	}
	if len(ff.FloatIDs) > 0 && !slices.Contains(ff.FloatIDs, f.FloatID) {
		return false
	}
	return true
}
