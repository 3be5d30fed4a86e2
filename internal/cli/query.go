package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/argo-float-etl/internal/index"
)

func newFloatsCommand(opts *options, stdout io.Writer) *cobra.Command {
	var status, start, end, bbox, ids string
	cmd := &cobra.Command{
		Use:   "floats",
		Short: "List floats, optionally filtered.",
		Long: `
Lists float records in first-seen order. Every filter is optional and all
set filters must match:

	--status    active or inactive
	--start     earliest last-profile date (YYYY-MM-DD or RFC 3339)
	--end       latest last-profile date
	--bbox      lat1,lon1,lat2,lon2 box containing the last position
	--float-id  comma-separated ids
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				filter index.FloatFilter
				err    error
			)
			if filter.Status, err = index.ParseStatus(status); err != nil {
				return err
			}
			if filter.DateRange, err = index.ParseDateRange(start, end); err != nil {
				return err
			}
			if bbox != "" {
				b, err := index.ParseBBox(bbox)
				if err != nil {
					return err
				}
				filter.BBox = &b
			}
			filter.FloatIDs = index.ParseFloatIDs(ids)

			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(stdout, idx.ListFloats(filter))
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&status, "status", "", "Float status filter.")
	flags.StringVar(&start, "start", "", "Start of the last-profile date range.")
	flags.StringVar(&end, "end", "", "End of the last-profile date range.")
	flags.StringVar(&bbox, "bbox", "", "Bounding box lat1,lon1,lat2,lon2.")
	flags.StringVar(&ids, "float-id", "", "Comma-separated float ids.")
	return cmd
}

func newSpatialCommand(opts *options, stdout io.Writer) *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "spatial LAT1,LON1,LAT2,LON2",
		Short: "Count floats last seen inside a bounding box.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bbox, err := index.ParseBBox(args[0])
			if err != nil {
				return err
			}
			dr, err := index.ParseDateRange(start, end)
			if err != nil {
				return err
			}
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(stdout, idx.SpatialQuery(bbox, dr))
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start of the last-profile date range.")
	cmd.Flags().StringVar(&end, "end", "", "End of the last-profile date range.")
	return cmd
}

func newExportCommand(opts *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "export FLOAT_ID",
		Short: "Write a float's measurements as CSV.",
		Long: `
Writes every measurement of the float's profiles to stdout. The format is:

	float_id,profile_id,pressure,temperature,salinity

Missing salinity is an empty field. An unknown float prints only the header.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			return idx.ExportFloatCSV(stdout, args[0])
		},
	}
}

// sequenceQuery builds a command that prints the sequence query returns for
// its single id argument.
func sequenceQuery[T any](opts *options, stdout io.Writer, use, short string, query func(*index.Index, string) []T) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := opts.loadIndex(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(stdout, query(idx, args[0]))
		},
	}
}

func newProfilesCommand(opts *options, stdout io.Writer) *cobra.Command {
	return sequenceQuery(opts, stdout, "profiles FLOAT_ID", "List a float's profiles.", (*index.Index).ProfilesForFloat)
}

func newTrajectoryCommand(opts *options, stdout io.Writer) *cobra.Command {
	return sequenceQuery(opts, stdout, "trajectory FLOAT_ID", "List a float's trajectory points.", (*index.Index).TrajectoryForFloat)
}

func newMeasurementsCommand(opts *options, stdout io.Writer) *cobra.Command {
	return sequenceQuery(opts, stdout, "measurements PROFILE_ID", "List the measurements of one profile.", (*index.Index).MeasurementsForProfile)
}

func newSummaryCommand(opts *options, stdout io.Writer) *cobra.Command {
	return sequenceQuery(opts, stdout, "summary FLOAT_ID", "Summarize a float's profiles.", (*index.Index).SummaryForFloat)
}
