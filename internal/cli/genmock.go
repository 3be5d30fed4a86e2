package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
	"github.com/couchcryptid/argo-float-etl/internal/pipeline"
)

// mockLayout is one export dialect: a file extension, a delimiter, the column
// names it uses, and how it spells the profile date.
type mockLayout struct {
	ext     string
	comma   rune
	columns [11]string
	date    func(time.Time) string
}

// Column order: float, profile, cycle, date, lat, lon, position qc, pressure,
// temperature, salinity, qc.
var mockLayouts = []mockLayout{
	{
		ext: "csv", comma: ',',
		columns: [11]string{"PLATFORM_NUMBER", "PROFILE", "CYCLE_NUMBER", "JULD", "LATITUDE", "LONGITUDE", "POSITION_QC", "PRES", "TEMP", "PSAL", "TEMP_QC"},
		date: func(t time.Time) string {
			return strconv.FormatFloat(t.Sub(domain.ArgoEpoch).Hours()/24, 'f', 6, 64)
		},
	},
	{
		ext: "tsv", comma: '\t',
		columns: [11]string{"platform_number", "profile", "cycle_number", "date", "lat", "lon", "position_qc", "pressure", "temperature", "salinity", "qc"},
		date:    func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
	},
	{
		ext: "txt", comma: ';',
		columns: [11]string{"WMO", "N_PROF", "CYCLE", "REFERENCE_DATE_TIME", "LAT", "LON", "LOCATION_QUALITY", "PRESSURE", "TEMPERATURE", "SALINITY", "QC"},
		date:    func(t time.Time) string { return t.Format("20060102150405") },
	},
}

type genMockOptions struct {
	Out    string
	Floats int
	Days   int
	Levels int
	Start  string
	Seed   uint64
}

func newGenMockCommand(stdout io.Writer) *cobra.Command {
	var opts genMockOptions
	cmd := &cobra.Command{
		Use:   "genmock",
		Short: "Generate synthetic profile exports for tests and demos.",
		Long: `
Writes one YYYYMMDD_prof file per day into --out. Consecutive days rotate
through CSV, TSV, and semicolon-separated TXT exports with different column
spellings. A few salinity values are fill values or blank. The generated
directory is then ingested and the run report printed, for updating test
assertions.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := generateMock(opts); err != nil {
				return err
			}
			rep, err := ingestReport(cmd.Context(), opts.Out)
			if err != nil {
				return err
			}
			return writeJSON(stdout, rep)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.Out, "out", "o", "data/mock", "Directory to write exports into.")
	flags.IntVar(&opts.Floats, "floats", 5, "Number of floats.")
	flags.IntVar(&opts.Days, "days", 10, "Number of daily export files.")
	flags.IntVar(&opts.Levels, "levels", 6, "Pressure levels per profile.")
	flags.StringVar(&opts.Start, "start", "2020-11-01", "Date of the first export.")
	flags.Uint64Var(&opts.Seed, "seed", 1, "Random seed.")
	return cmd
}

type mockFloat struct {
	id       string
	lat, lon float64
}

func generateMock(opts genMockOptions) error {
	if opts.Floats < 1 || opts.Days < 1 || opts.Levels < 1 {
		return fmt.Errorf("floats, days, and levels must be positive")
	}
	start, err := time.Parse("2006-01-02", opts.Start)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed)) //nolint:gosec // synthetic data
	floats := make([]mockFloat, opts.Floats)
	for i := range floats {
		floats[i] = mockFloat{
			id:  strconv.Itoa(2900001 + i),
			lat: rng.Float64()*120 - 60,
			lon: rng.Float64()*360 - 180,
		}
	}

	for day := range opts.Days {
		date := start.AddDate(0, 0, day)
		layout := mockLayouts[day%len(mockLayouts)]
		name := fmt.Sprintf("%s_prof.%s", date.Format("20060102"), layout.ext)
		if err := writeMockFile(filepath.Join(opts.Out, name), layout, date, day+1, floats, opts.Levels, rng); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// writeMockFile writes one export to path. The file is closed exactly once,
// and a close failure is reported when nothing else failed first.
func writeMockFile(path string, layout mockLayout, date time.Time, cycle int, floats []mockFloat, levels int, rng *rand.Rand) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err := fmt.Fprintf(f, "# synthetic ARGO profiles for %s\n", date.Format("2006-01-02")); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	w.Comma = layout.comma
	if err := w.Write(layout.columns[:]); err != nil {
		return err
	}

	for i := range floats {
		fl := &floats[i]
		fl.lat = clamp(fl.lat+rng.NormFloat64()*0.3, -89.9, 89.9)
		fl.lon = clamp(fl.lon+rng.NormFloat64()*0.3, -179.9, 179.9)
		at := date.Add(time.Duration(rng.IntN(24*60)) * time.Minute)

		surface := 18 + rng.Float64()*12
		for lvl := range levels {
			pres := float64(lvl*lvl*10) + 5 + rng.Float64()
			temp := surface - 0.02*pres + rng.NormFloat64()*0.1
			rec := []string{
				fl.id, strconv.Itoa(i), strconv.Itoa(cycle), layout.date(at),
				fmtMock(fl.lat), fmtMock(fl.lon), "1",
				fmtMock(pres), fmtMock(temp), mockSalinity(rng), "1",
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func mockSalinity(rng *rand.Rand) string {
	switch p := rng.Float64(); {
	case p < 0.05:
		return strconv.FormatFloat(domain.FillValue, 'f', -1, 64)
	case p < 0.10:
		return ""
	default:
		return fmtMock(34 + rng.Float64()*2)
	}
}

func fmtMock(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func ingestReport(ctx context.Context, dir string) (pipeline.Report, error) {
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	ing := pipeline.NewIngester(dir, 4, 0, slog.New(slog.DiscardHandler), metrics)
	_, rep, err := ing.Ingest(ctx)
	return rep, err
}
