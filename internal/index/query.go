package index

import (
	"slices"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// ListFloats returns the floats matching every predicate set in f, in
// first-seen order.
func (idx *Index) ListFloats(f FloatFilter) []domain.FloatRecord {
	out := make([]domain.FloatRecord, 0)
	for _, fr := range idx.floats.All() {
		if f.Match(fr) {
			out = append(out, fr)
		}
	}
	return out
}

// Float returns one float's record.
func (idx *Index) Float(floatID string) (domain.FloatRecord, bool) {
	return idx.floats.Get(floatID)
}

// ProfilesForFloat returns a float's profiles in ingestion order.
func (idx *Index) ProfilesForFloat(floatID string) []domain.ProfileRecord {
	positions := idx.byFloat[floatID]
	out := make([]domain.ProfileRecord, 0, len(positions))
	for _, i := range positions {
		out = append(out, idx.profiles[i])
	}
	return out
}

// Documents returns every profile with its measurements, in ingestion order.
func (idx *Index) Documents() []domain.ProfileDocument {
	out := make([]domain.ProfileDocument, 0, len(idx.profiles))
	for _, p := range idx.profiles {
		out = append(out, domain.ProfileDocument{
			Profile:      p,
			Measurements: cloneMeasurements(idx.measurements[p.ProfileID]),
		})
	}
	return out
}

// TrajectoryForFloat returns a float's positions in ingestion order.
func (idx *Index) TrajectoryForFloat(floatID string) []domain.TrajectoryPoint {
	pts := idx.trajectories[floatID]
	if pts == nil {
		return []domain.TrajectoryPoint{}
	}
	return slices.Clone(pts)
}

// MeasurementsForProfile returns the measurements of one profile.
func (idx *Index) MeasurementsForProfile(profileID string) []domain.MeasurementRecord {
	ms := idx.measurements[profileID]
	if ms == nil {
		return []domain.MeasurementRecord{}
	}
	return cloneMeasurements(ms)
}

// SummaryForFloat returns per-profile means for a float's profiles.
func (idx *Index) SummaryForFloat(floatID string) []domain.ProfileSummary {
	profiles := idx.ProfilesForFloat(floatID)
	out := make([]domain.ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, domain.Summarize(p, idx.measurements[p.ProfileID]))
	}
	return out
}

// SpatialResult is the answer to a spatial query.
type SpatialResult struct {
	Count    int      `json:"count"`
	FloatIDs []string `json:"float_ids"`
}

// SpatialQuery returns the floats whose last position is inside bbox and,
// when dr is set, whose last profile date is within dr.
func (idx *Index) SpatialQuery(bbox BBox, dr *DateRange) SpatialResult {
	floats := idx.ListFloats(FloatFilter{BBox: &bbox, DateRange: dr})
	ids := make([]string, 0, len(floats))
	for _, f := range floats {
		ids = append(ids, f.FloatID)
	}
	return SpatialResult{Count: len(ids), FloatIDs: ids}
}

// cloneMeasurements copies records deeply so callers cannot reach the
// index's salinity values through the returned pointers.
func cloneMeasurements(ms []domain.MeasurementRecord) []domain.MeasurementRecord {
	out := slices.Clone(ms)
	for i := range out {
		if s := out[i].Salinity; s != nil {
			v := *s
			out[i].Salinity = &v
		}
	}
	return out
}
