package cli

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/couchcryptid/flood-status-service/internal/adapter/hydromet"
	"github.com/couchcryptid/flood-status-service/internal/config"
	"github.com/couchcryptid/flood-status-service/internal/observability"
	"github.com/couchcryptid/flood-status-service/internal/scraper"
	"github.com/spf13/cobra"
)

type getFlags struct {
	report              bool
	lakeLevels          bool
	riverConditions     bool
	floodgateOperations bool
}

func (f getFlags) none() bool {
	return !f.report && !f.lakeLevels && !f.riverConditions && !f.floodgateOperations
}

func newGetCmd() *cobra.Command {
	var flags getFlags

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch flood status data and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGet(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.report, "report", false, "fetch the full flood operations report")
	cmd.Flags().BoolVar(&flags.lakeLevels, "lake-levels", false, "fetch current lake levels")
	cmd.Flags().BoolVar(&flags.riverConditions, "river-conditions", false, "fetch current river conditions")
	cmd.Flags().BoolVar(&flags.floodgateOperations, "floodgate-operations", false, "fetch floodgate operations")

	return cmd
}

func runGet(cmd *cobra.Command, flags getFlags) error {
	if flags.none() {
		return errors.New("specify at least one of --report, --lake-levels, --river-conditions, --floodgate-operations")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := hydromet.NewClient(cfg.HydrometBaseURL, cfg.HydrometTimeout, metrics, logger)
	svc := scraper.New(client, nil, logger, metrics, cfg.ScrapeInterval)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if flags.report {
		report := svc.FullReport(ctx)
		if report.Empty() {
			return errors.New("no flood status data available: every endpoint failed")
		}
		if err := printJSON(out, report); err != nil {
			return err
		}
	}
	if flags.lakeLevels {
		levels, err := svc.LakeLevels(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(out, levels); err != nil {
			return err
		}
	}
	if flags.riverConditions {
		conditions, err := svc.RiverConditions(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(out, conditions); err != nil {
			return err
		}
	}
	if flags.floodgateOperations {
		ops, err := svc.FloodgateOperations(ctx)
		if err != nil {
			return err
		}
		if err := printJSON(out, ops); err != nil {
			return err
		}
	}

	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
