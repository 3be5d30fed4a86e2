package index

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

// SourceFile identifies the file a profile group came from.
type SourceFile struct {
	Path string
	Date time.Time // from the file name, DefaultDate when absent
}

// Entities is what one profile group contributes to the index.
type Entities struct {
	Profile      domain.ProfileRecord
	Measurements []domain.MeasurementRecord
	Trajectory   domain.TrajectoryPoint
}

// Builder turns profile groups into entities, upserting the registry as it
// goes.
type Builder struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBuilder creates a Builder over registry.
func NewBuilder(registry *Registry, logger *slog.Logger) *Builder {
	return &Builder{registry: registry, logger: logger}
}

// FloatIdentity returns the float a group belongs to, synthesizing one from
// the file date and profile key when the export has no identity column.
func FloatIdentity(file SourceFile, group domain.ProfileGroup) (string, bool) {
	if group.FloatID != "" {
		return group.FloatID, true
	}
	return domain.SyntheticFloatID(file.Date, group.Key), false
}

// Build produces the profile, measurements, and trajectory point of a group.
// It returns false, emitting nothing, when the first row has no valid
// coordinate and the float has no prior position.
func (b *Builder) Build(floatID string, file SourceFile, group domain.ProfileGroup) (Entities, bool) {
	if len(group.Rows) == 0 {
		return Entities{}, false
	}
	rep := group.Rows[0]

	pos, ok := rep.Position()
	if !ok {
		prior, known := b.registry.Position(floatID)
		if !known {
			b.logger.Warn("skipping profile without valid position",
				"file", filepath.Base(file.Path),
				"float_id", floatID,
				"profile_key", group.Key,
			)
			return Entities{}, false
		}
		b.logger.Debug("using prior float position",
			"file", filepath.Base(file.Path),
			"float_id", floatID,
			"profile_key", group.Key,
		)
		pos = prior
	}

	b.registry.Upsert(floatID, pos)
	b.registry.Observe(floatID, rep.Date)

	profileID := domain.ProfileID(floatID, file.Date, group.Key)
	return Entities{
		Profile: domain.ProfileRecord{
			ProfileID:   profileID,
			FloatID:     floatID,
			ProfileKey:  group.Key,
			SourceFile:  filepath.Base(file.Path),
			ProfileDate: rep.Date,
			CycleNumber: rep.CycleNumber,
			Latitude:    pos.Latitude,
			Longitude:   pos.Longitude,
			Direction:   rep.Direction,
			IngestedAt:  domain.Now(),
		},
		Measurements: domain.BuildMeasurements(profileID, group.Rows),
		Trajectory: domain.TrajectoryPoint{
			FloatID:         floatID,
			Timestamp:       rep.Date,
			Latitude:        pos.Latitude,
			Longitude:       pos.Longitude,
			LocationQuality: rep.PositionQC,
		},
	}, true
}
