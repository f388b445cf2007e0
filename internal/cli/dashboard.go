package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/ymfactory/internal/config"
	"github.com/raphaelgruber/ymfactory/internal/prefs"
	"github.com/raphaelgruber/ymfactory/internal/settings"
	"github.com/raphaelgruber/ymfactory/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the full-screen pipeline dashboard",
	Long: `Open the full-screen dashboard with the Overview, Research, Curation,
Production and Settings pages. This is the default when ymf runs in a
terminal without arguments.

Keys:
  1-5, tab     switch pages
  L            toggle the log panel
  q, ctrl+c    quit

Examples:
  ymf
  ymf dashboard --api-url http://backend:8000/api`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !stdoutIsTerminal() {
		return fmt.Errorf("dashboard needs a terminal; use the research, curation and production commands instead")
	}

	panel := ui.NewLineBuffer(0)
	logger, logCleanup = config.SetupDashboardLogger(cfg.LogFile, cfg.LogLevel, panel)
	apiClient = newClient(logger)

	prefsPath := cfg.PrefsFile
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger.Info("dashboard starting", "api_url", apiClient.BaseURL(), "pid", os.Getpid())

	return ui.Run(ui.Dependencies{
		Client:      apiClient,
		Cache:       cache,
		Intervals:   intervals(),
		Credentials: settings.SimulatedStore{Logger: logger},
		Prefs:       prefs.Open(prefsPath, logger),
		Metrics:     collector,
		Logs:        panel,
		Logger:      logger,
	})
}
