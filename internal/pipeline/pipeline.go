package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/argo-float-etl/internal/adapter/source"
	"github.com/couchcryptid/argo-float-etl/internal/domain"
	"github.com/couchcryptid/argo-float-etl/internal/index"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
)

// Report summarizes one ingestion run.
type Report struct {
	FilesDiscovered int           `json:"files_discovered"`
	FilesIngested   int           `json:"files_ingested"`
	FilesFailed     int           `json:"files_failed"`
	RowsRead        int           `json:"rows_read"`
	RowsDropped     int           `json:"rows_dropped"`
	GroupsSkipped   int           `json:"groups_skipped"`
	Profiles        int           `json:"profiles"`
	Measurements    int           `json:"measurements"`
	Floats          int           `json:"floats"`
	Duration        time.Duration `json:"duration"`
}

// Ingester builds a fresh index from every export in a source directory.
// Files are parsed in parallel and applied by a single writer in discovery
// order, so later files win position updates.
type Ingester struct {
	sourceDir     string
	workers       int
	inactiveAfter time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// NewIngester creates an Ingester reading sourceDir with up to workers
// parallel parsers.
func NewIngester(sourceDir string, workers int, inactiveAfter time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Ingester {
	return &Ingester{
		sourceDir:     sourceDir,
		workers:       max(workers, 1),
		inactiveAfter: inactiveAfter,
		logger:        logger,
		metrics:       metrics,
	}
}

type parsedFile struct {
	rows   int
	groups []domain.ProfileGroup
	err    error
}

// Ingest runs one full ingestion. The only error besides context
// cancellation wraps source.ErrSourceDir; unreadable or malformed files are
// logged, counted, and skipped.
func (in *Ingester) Ingest(ctx context.Context) (*index.Index, Report, error) {
	start := time.Now()
	in.metrics.IngestRunning.Set(1)
	defer in.metrics.IngestRunning.Set(0)

	files, err := source.Discover(in.sourceDir)
	if err != nil {
		return nil, Report{}, err
	}
	rep := Report{FilesDiscovered: len(files)}
	in.metrics.FilesDiscovered.Add(float64(len(files)))
	in.logger.Info("ingestion started", "source_dir", in.sourceDir, "files", len(files), "workers", in.workers)

	// Every slot receives exactly one result, even after cancellation.
	slots := make([]chan parsedFile, len(files))
	for i := range slots {
		slots[i] = make(chan parsedFile, 1)
	}
	var g errgroup.Group
	g.SetLimit(in.workers)
	go func() {
		for i, f := range files {
			g.Go(func() error {
				slots[i] <- parseFile(ctx, f)
				return nil
			})
		}
	}()

	w := index.NewWriter(in.logger)
	for i, f := range files {
		pf := <-slots[i]
		if pf.err != nil {
			if ctx.Err() == nil {
				in.logger.Warn("skipping source file", "file", f.Path, "error", pf.err)
				in.metrics.FilesFailed.Inc()
				rep.FilesFailed++
			}
			continue
		}
		st := w.Apply(index.SourceFile{Path: f.Path, Date: f.Date}, pf.groups)
		rep.FilesIngested++
		rep.RowsRead += pf.rows
		rep.RowsDropped += st.RowsDropped
		rep.GroupsSkipped += st.GroupsSkipped
		rep.Profiles += st.Profiles
		rep.Measurements += st.Measurements
		in.recordFile(pf.rows, st)
		in.logger.Debug("file ingested", "file", f.Name(), "rows", pf.rows, "profiles", st.Profiles)
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, rep, err
	}

	idx := w.Finish(in.inactiveAfter)
	rep.Floats = idx.Counts().Floats
	rep.Duration = time.Since(start)
	in.metrics.FloatsIndexed.Set(float64(rep.Floats))
	in.metrics.IngestDuration.Observe(rep.Duration.Seconds())

	in.logger.Info("ingestion complete",
		"files_ingested", rep.FilesIngested,
		"files_failed", rep.FilesFailed,
		"rows_read", rep.RowsRead,
		"rows_dropped", rep.RowsDropped,
		"groups_skipped", rep.GroupsSkipped,
		"profiles", rep.Profiles,
		"measurements", rep.Measurements,
		"floats", rep.Floats,
		"duration", rep.Duration,
	)
	return idx, rep, nil
}

func (in *Ingester) recordFile(rows int, st index.FileStats) {
	in.metrics.FilesIngested.Inc()
	in.metrics.RowsRead.Add(float64(rows))
	in.metrics.RowsDropped.Add(float64(st.RowsDropped))
	in.metrics.GroupsSkipped.Add(float64(st.GroupsSkipped))
	in.metrics.ProfilesBuilt.Add(float64(st.Profiles))
	in.metrics.Measurements.Add(float64(st.Measurements))
}

// parseFile reads, decodes, and groups one file. It touches no shared state.
func parseFile(ctx context.Context, f source.File) parsedFile {
	if err := ctx.Err(); err != nil {
		return parsedFile{err: err}
	}
	rows, err := source.Read(f.Path)
	if err != nil {
		return parsedFile{err: err}
	}
	name := strings.ToLower(f.Name())
	raw := make([]domain.RawRow, 0, len(rows))
	for _, r := range rows {
		raw = append(raw, domain.DecodeRow(r, name))
	}
	return parsedFile{rows: len(rows), groups: domain.GroupProfiles(raw)}
}
