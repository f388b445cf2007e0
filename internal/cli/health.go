package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raphaelgruber/ymfactory/internal/metrics"
)

var healthStats bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend and its dependencies",
	Long: `Check the backend health endpoint. Exits non-zero when the backend
is unreachable or reports itself degraded.

With --stats, the three job lists are fetched as well and the client
request timings are printed.

Examples:
  ymf health
  ymf health --stats`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthStats, "stats", false, "probe the job endpoints and show request timings")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	h, err := apiClient.Health(ctx)
	if err != nil {
		return fmt.Errorf("check health: %w", err)
	}

	fmt.Fprintf(out, "Backend: %s (%s)\n", h.Status, apiClient.BaseURL())
	fmt.Fprintf(out, "  Database: %s\n", h.Database)
	fmt.Fprintf(out, "  Redis: %s\n", h.Redis)
	fmt.Fprintf(out, "  CometAPI: %s\n", h.CometAPI)

	if healthStats {
		// Probes run independently; a failing list does not cancel the rest.
		var g errgroup.Group
		errs := make([]error, 3)
		g.Go(func() error {
			_, errs[0] = apiClient.Research().ListJobs(ctx)
			return nil
		})
		g.Go(func() error {
			_, errs[1] = apiClient.Curation().ListJobs(ctx)
			return nil
		})
		g.Go(func() error {
			_, errs[2] = apiClient.Production().ListJobs(ctx)
			return nil
		})
		_ = g.Wait()
		probeErr := errors.Join(errs...)

		fmt.Fprintln(out)
		printStats(out, collector.Snapshot())
		if probeErr != nil {
			return fmt.Errorf("probe job endpoints: %w", probeErr)
		}
	}

	if !h.OK() {
		return fmt.Errorf("backend degraded: status %q", h.Status)
	}
	return nil
}

func printStats(out io.Writer, s metrics.Snapshot) {
	requests, errs := s.Total()
	fmt.Fprintf(out, "Client Statistics (%d requests, %d errors)\n", requests, errs)
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	if len(s.Operations) == 0 {
		fmt.Fprintln(out, "No requests recorded")
		return
	}
	fmt.Fprintf(out, "%-24s %6s %6s %8s %8s %8s\n", "OPERATION", "COUNT", "ERRORS", "AVG MS", "MIN MS", "MAX MS")
	for _, op := range s.Operations {
		fmt.Fprintf(out, "%-24s %6d %6d %8.1f %8d %8d\n",
			op.Op, op.Count, op.Errors, op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
	}
}
