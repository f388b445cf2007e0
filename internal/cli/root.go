// Package cli provides the command-line interface for ymf.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/raphaelgruber/ymfactory/internal/client"
	"github.com/raphaelgruber/ymfactory/internal/config"
	"github.com/raphaelgruber/ymfactory/internal/metrics"
	"github.com/raphaelgruber/ymfactory/internal/query"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool
	apiURL  string

	// Global config, set up before every command
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	collector  *metrics.Collector
	apiClient  *client.Client
	cache      *query.Cache
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ymf",
	Short: "YM Factory pipeline dashboard",
	Long: `ymf drives the YM Factory content pipeline: research a topic, curate
the discovered videos into a creative brief, and produce scene images and
soundtrack songs from it.

Run without arguments in a terminal to open the dashboard, or use the
subcommands for scripting.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		cfg = config.Load()
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		collector = metrics.NewCollector()
		cache = query.NewCache()

		// The dashboard owns the screen and sets up its own logger.
		if isDashboard(cmd) {
			return nil
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		apiClient = newClient(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stdoutIsTerminal() {
			return cmd.Help()
		}
		return runDashboard(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command context, which stops --watch loops.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend API base URL (overrides YMF_API_URL)")

	// Add subcommands
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(curationCmd)
	rootCmd.AddCommand(productionCmd)
	rootCmd.AddCommand(healthCmd)
}

func newClient(l *slog.Logger) *client.Client {
	return client.New(cfg.APIURL,
		client.WithTimeout(cfg.ClientTimeout),
		client.WithSlowRequestThreshold(cfg.SlowRequestThreshold),
		client.WithLogger(l),
		client.WithMetrics(collector),
	)
}

func intervals() query.Intervals {
	return query.Intervals{List: cfg.ListPollInterval, Detail: cfg.DetailPollInterval}
}

func isDashboard(cmd *cobra.Command) bool {
	if cmd.Name() == "dashboard" {
		return true
	}
	return !cmd.HasParent() && stdoutIsTerminal()
}

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
