package index

import (
	"time"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// Registry keeps exactly one FloatRecord per float id, in first-seen order.
// It is owned by a single ingestion writer and is not safe for concurrent
// mutation.
type Registry struct {
	floats map[string]*domain.FloatRecord
	order  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{floats: make(map[string]*domain.FloatRecord)}
}

// Upsert creates the float on first sight, otherwise overwrites its last
// position. Invalid positions are rejected and leave the registry unchanged.
func (r *Registry) Upsert(floatID string, pos domain.Position) bool {
	if floatID == "" || !domain.ValidCoordinate(pos.Latitude, pos.Longitude) {
		return false
	}
	if f, ok := r.floats[floatID]; ok {
		f.LastPosition = pos
		return true
	}
	r.floats[floatID] = &domain.FloatRecord{
		FloatID:        floatID,
		WMONumber:      floatID,
		LastPosition:   pos,
		Status:         domain.FloatActive,
		PlatformType:   domain.DefaultPlatformType,
		DeploymentDate: domain.DefaultDate,
	}
	r.order = append(r.order, floatID)
	return true
}

// Observe records a profile of the float: it becomes active and its last
// profile date advances if profileDate is later.
func (r *Registry) Observe(floatID string, profileDate time.Time) {
	f, ok := r.floats[floatID]
	if !ok {
		return
	}
	f.Status = domain.FloatActive
	if profileDate.After(f.LastProfileDate) {
		f.LastProfileDate = profileDate
	}
}

// Position returns the last known position of a float.
func (r *Registry) Position(floatID string) (domain.Position, bool) {
	f, ok := r.floats[floatID]
	if !ok {
		return domain.Position{}, false
	}
	return f.LastPosition, true
}

// Get returns a copy of the float's record.
func (r *Registry) Get(floatID string) (domain.FloatRecord, bool) {
	f, ok := r.floats[floatID]
	if !ok {
		return domain.FloatRecord{}, false
	}
	return *f, true
}

// All returns copies of every record in first-seen order.
func (r *Registry) All() []domain.FloatRecord {
	out := make([]domain.FloatRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.floats[id])
	}
	return out
}

// Len returns the number of floats.
func (r *Registry) Len() int { return len(r.order) }

// MarkInactive flips floats whose last profile predates cutoff to inactive
// and returns how many changed.
func (r *Registry) MarkInactive(cutoff time.Time) int {
	n := 0
	for _, id := range r.order {
		f := r.floats[id]
		if f.Status == domain.FloatActive && f.LastProfileDate.Before(cutoff) {
			f.Status = domain.FloatInactive
			n++
		}
	}
	return n
}

// newestProfileDate is the latest LastProfileDate across all floats.
func (r *Registry) newestProfileDate() time.Time {
	var newest time.Time
	for _, f := range r.floats {
		if f.LastProfileDate.After(newest) {
			newest = f.LastProfileDate
		}
	}
	return newest
}
