package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/git1file/git1file/am"
	"github.com/git1file/git1file/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage git1file client configuration",
	Long: `am - Manage git1file client configuration ("I am")

Display and manage the client configuration: which ingestion service to
talk to, preview tuning, form defaults and export naming.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (GIT1FILE_* prefix)
3. .env in the working directory
4. Project config (./git1file.toml, searched upward)
5. User config (~/.git1file/am.toml)
6. System config (/etc/git1file/config.toml)
7. Default values

Examples:
  git1file am show                    # Show current configuration
  git1file am show --format json      # Show configuration in JSON format
  git1file am get service.base_url    # Get specific config value
  git1file am validate                # Validate current configuration
  git1file am init                    # Write ./git1file.toml with defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current git1file configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., service.base_url, preview.debounce_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current git1file configuration is valid",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists all configuration files in order of precedence, showing
which ones were loaded and which are missing.`,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a configuration file with default values",
	Long: `Write a commented configuration file holding the default values.

The file defaults to ./git1file.toml. An existing file is only replaced
with --force, and the previous version is kept as .back1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var (
	configFormat string
	initForce    bool
	initUser     bool
)

func init() {
	// Add flags
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file (a backup is kept)")
	amInitCmd.Flags().BoolVar(&initUser, "user", false, "Write the user config (~/.git1file/am.toml) instead")

	// Add subcommands
	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# git1file configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# git1file configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	v := am.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	// Load validates as well; a failure here is the answer
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	// Load first so LoadedFiles reflects the current cascade
	if _, err := am.Load(); err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	loaded := am.LoadedFiles()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]  Built-in defaults")
	fmt.Fprintln(out, "  2. [SYSTEM]   /etc/git1file/config.toml")
	fmt.Fprintln(out, "  3. [USER]     ~/.git1file/am.toml")
	fmt.Fprintf(out, "  4. [PROJECT]  ./%s (searches up directories)\n", am.ProjectConfigName)
	fmt.Fprintln(out, "  5. [DOTENV]   ./.env")
	fmt.Fprintln(out, "  6. [ENV]      GIT1FILE_* environment variables")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Files checked:")
	for _, path := range am.CandidateFiles() {
		status := "missing"
		if slices.Contains(loaded, path) {
			status = "loaded"
		} else if _, err := os.Stat(path); err == nil {
			status = "unreadable"
		}
		fmt.Fprintf(out, "  %-10s %s\n", status, path)
	}
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path, err := initPath(args)
	if err != nil {
		return err
	}
	if err := am.WriteTemplate(path, initForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

func initPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if initUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to locate home directory")
		}
		return filepath.Join(home, ".git1file", "am.toml"), nil
	}
	return am.ProjectConfigName, nil
}
