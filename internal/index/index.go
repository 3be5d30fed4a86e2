// Package index holds the float registry and the in-memory query index built
// from one ingestion run.
//
// An Index is assembled by a single Writer, sealed by Finish, and is
// read-only afterwards: concurrent queries need no locking. Re-ingestion
// builds a fresh Index and swaps it in whole.
package index

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// Index is the queryable result of one ingestion run.
type Index struct {
	floats       *Registry
	profiles     []domain.ProfileRecord
	byFloat      map[string][]int
	byProfile    map[string]int
	measurements map[string][]domain.MeasurementRecord
	trajectories map[string][]domain.TrajectoryPoint
	builtAt      time.Time
}

func newIndex() *Index {
	return &Index{
		floats:       NewRegistry(),
		byFloat:      make(map[string][]int),
		byProfile:    make(map[string]int),
		measurements: make(map[string][]domain.MeasurementRecord),
		trajectories: make(map[string][]domain.TrajectoryPoint),
	}
}

// Empty returns an index with no data.
func Empty() *Index {
	idx := newIndex()
	idx.builtAt = domain.Now()
	return idx
}

func (idx *Index) add(e Entities) {
	p := e.Profile
	if i, ok := idx.byProfile[p.ProfileID]; ok {
		// Same float, day, and key seen again (e.g. a .csv and a .tsv export
		// of one day): the later file replaces the earlier profile.
		idx.profiles[i] = p
	} else {
		idx.byProfile[p.ProfileID] = len(idx.profiles)
		idx.byFloat[p.FloatID] = append(idx.byFloat[p.FloatID], len(idx.profiles))
		idx.profiles = append(idx.profiles, p)
	}
	idx.measurements[p.ProfileID] = e.Measurements
	idx.trajectories[p.FloatID] = append(idx.trajectories[p.FloatID], e.Trajectory)
}

// Counts summarizes the size of an index.
type Counts struct {
	Floats           int `json:"floats"`
	Profiles         int `json:"profiles"`
	Measurements     int `json:"measurements"`
	TrajectoryPoints int `json:"trajectory_points"`
}

// Counts returns the number of entities of each kind.
func (idx *Index) Counts() Counts {
	c := Counts{Floats: idx.floats.Len(), Profiles: len(idx.profiles)}
	for _, ms := range idx.measurements {
		c.Measurements += len(ms)
	}
	for _, ts := range idx.trajectories {
		c.TrajectoryPoints += len(ts)
	}
	return c
}

// BuiltAt is when Finish sealed the index.
func (idx *Index) BuiltAt() time.Time { return idx.builtAt }

// Writer applies parsed files to a new Index. Files must be applied in
// discovery order: later observations win.
type Writer struct {
	idx     *Index
	builder *Builder
	logger  *slog.Logger
}

// NewWriter starts a new, empty index.
func NewWriter(logger *slog.Logger) *Writer {
	idx := newIndex()
	return &Writer{
		idx:     idx,
		builder: NewBuilder(idx.floats, logger),
		logger:  logger,
	}
}

// FileStats reports what one file contributed.
type FileStats struct {
	Groups        int
	GroupsSkipped int
	Profiles      int
	Measurements  int
	RowsDropped   int // rows without valid pressure and temperature
}

// Apply builds and indexes every group of one file.
func (w *Writer) Apply(file SourceFile, groups []domain.ProfileGroup) FileStats {
	var st FileStats
	for _, g := range groups {
		st.Groups++
		floatID, resolved := FloatIdentity(file, g)
		if !resolved {
			w.logger.Debug("synthesized float id", "float_id", floatID, "profile_key", g.Key)
		}
		e, ok := w.builder.Build(floatID, file, g)
		if !ok {
			st.GroupsSkipped++
			continue
		}
		w.idx.add(e)
		st.Profiles++
		st.Measurements += len(e.Measurements)
		st.RowsDropped += len(g.Rows) - len(e.Measurements)
	}
	return st
}

// Finish derives float status and seals the index. Floats whose last
// profile is more than inactiveAfter older than the newest profile of the
// run become inactive; zero disables this. The Writer must not be used
// afterwards.
func (w *Writer) Finish(inactiveAfter time.Duration) *Index {
	idx := w.idx
	if inactiveAfter > 0 {
		if newest := idx.floats.newestProfileDate(); !newest.IsZero() {
			n := idx.floats.MarkInactive(newest.Add(-inactiveAfter))
			if n > 0 {
				w.logger.Info("marked floats inactive", "count", n, "inactive_after", inactiveAfter)
			}
		}
	}
	idx.builtAt = domain.Now()
	w.idx = nil
	return idx
}
