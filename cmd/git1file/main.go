package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/git1file/git1file/cmd/git1file/commands"
	"github.com/git1file/git1file/logger"
)

var rootCmd = &cobra.Command{
	Use:   "git1file",
	Short: "git1file - turn a git repository into a single LLM-ready file",
	Long: `git1file - turn a git repository into a single LLM-ready file.

git1file talks to a git1file ingestion service: it previews repository
statistics while you type, submits the repository for ingestion and lets
you copy or save the result.

Available commands:
  ui      - Open the desktop window
  ingest  - Ingest a repository from the terminal
  stats   - Show repository statistics
  health  - Check the ingestion service
  am      - Manage client configuration ("I am")
  version - Show version information

Examples:
  git1file ui                                    # Open the window
  git1file ingest https://github.com/user/repo   # Print the repository as plain text
  git1file ingest user/repo -f json -o out/      # Save JSON output into out/
  git1file stats user/repo                       # Preview statistics
  git1file am show                               # Show current configuration`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().String("url", "", "Ingestion service base URL (overrides service.base_url)")

	// Add commands
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.HealthCmd)
	rootCmd.AddCommand(commands.IngestCmd)
	rootCmd.AddCommand(commands.StatsCmd)
	rootCmd.AddCommand(commands.UICmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
