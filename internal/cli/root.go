// Package cli implements argoctl, the operator command line for inspecting
// a directory of ARGO profile exports without running the service.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/couchcryptid/argo-float-etl/internal/index"
	"github.com/couchcryptid/argo-float-etl/internal/observability"
	"github.com/couchcryptid/argo-float-etl/internal/pipeline"
)

// options holds the settings shared by every query command.
type options struct {
	SourceDir     string
	Workers       int
	InactiveAfter time.Duration
	LogLevel      string

	stderr io.Writer
}

// NewRootCommand builds the argoctl command tree.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stderr: stderr}
	rc := &cobra.Command{
		Use:   "argoctl",
		Short: "Query ARGO float profile exports from the command line.",
		Long: `argoctl ingests a directory of ARGO profile exports (YYYYMMDD_prof.csv and
friends) into an in-memory index and answers one query against it.

Settings come from flags, then environment variables (SOURCE_DIR,
INGEST_WORKERS, INACTIVE_AFTER, LOG_LEVEL), then an optional YAML config file.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setAllConfig(viper.New(), cmd.Root().PersistentFlags())
		},
	}

	flags := rc.PersistentFlags()
	flags.StringP("config", "c", "", "YAML configuration file to read from.")
	flags.StringVarP(&opts.SourceDir, "source-dir", "d", "./data", "Directory of profile exports.")
	flags.IntVar(&opts.Workers, "ingest-workers", 4, "Files parsed concurrently.")
	flags.DurationVar(&opts.InactiveAfter, "inactive-after", 720*time.Hour, "Age after which a float is inactive; 0 disables.")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level written to stderr.")

	rc.AddCommand(newFloatsCommand(opts, stdout))
	rc.AddCommand(newSpatialCommand(opts, stdout))
	rc.AddCommand(newExportCommand(opts, stdout))
	rc.AddCommand(newProfilesCommand(opts, stdout))
	rc.AddCommand(newTrajectoryCommand(opts, stdout))
	rc.AddCommand(newMeasurementsCommand(opts, stdout))
	rc.AddCommand(newSummaryCommand(opts, stdout))
	rc.AddCommand(newGenMockCommand(stdout))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// setAllConfig reads every shared flag from, in priority order, the command line,
// the environment, and the config file. Environment names are the upper-cased
// flag names with dashes replaced by underscores.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	validKeys := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validKeys[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read configuration file %q: %w", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validKeys[key] {
				return fmt.Errorf("invalid option in configuration file: %s", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		if err := f.Value.Set(v.GetString(f.Name)); err != nil {
			flagErr = fmt.Errorf("invalid %s: %w", f.Name, err)
		}
	})
	return flagErr
}

func (o *options) logger() *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(o.LogLevel)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: lvl}))
}

// loadIndex ingests the source directory once.
func (o *options) loadIndex(ctx context.Context) (*index.Index, error) {
	if o.Workers < 1 {
		return nil, fmt.Errorf("invalid ingest-workers: must be at least 1")
	}
	metrics := observability.NewMetricsWithRegistry(prometheus.NewRegistry())
	ing := pipeline.NewIngester(o.SourceDir, o.Workers, o.InactiveAfter, o.logger(), metrics)
	idx, _, err := ing.Ingest(ctx)
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
