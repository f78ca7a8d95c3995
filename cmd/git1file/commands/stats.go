package commands

import (
	"github.com/spf13/cobra"

	"github.com/git1file/git1file/display"
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/preview"
	"github.com/git1file/git1file/render"
)

// StatsCmd shows the live preview for one repository
var StatsCmd = &cobra.Command{
	Use:   "stats <source>",
	Short: "Show repository statistics",
	Long: `Ask the ingestion service for the statistics the window previews while
typing: file count, size, top languages, markdown share, branch and commit.

Examples:
  git1file stats https://github.com/user/repo
  git1file stats ./local/checkout --mode full
  git1file stats user/repo --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	StatsCmd.Flags().StringP("mode", "m", "", "Ingestion mode forwarded to the service (default from config)")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	fetcher := preview.New(client, preview.Config{
		Timeout: cfg.PreviewTimeout(),
		Logger:  logger.ComponentLogger("preview"),
	})

	mode := ingest.Mode(flagOr(cmd, "mode", cfg.Ingest.Mode))
	result := fetcher.Fetch(cmd.Context(), fetcher.Begin(), args[0], mode)
	if result.Err != nil {
		return errors.WithHint(
			errors.Wrap(result.Err, "stats unavailable"),
			"check the source and that the service is reachable (git1file health)")
	}

	view := display.NewTerminalView()
	view.Out = cmd.OutOrStdout()
	view.Err = cmd.OutOrStdout()
	view.JSON = display.ShouldOutputJSON(cmd)
	view.ShowStats(render.StatCards(*result.Snapshot), *result.Snapshot)
	return nil
}
