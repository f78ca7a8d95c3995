package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/git1file/git1file/am"
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/render"
)

// loadConfig loads the client configuration and applies the global --url
// override. The cached config is copied so the override stays local.
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	loaded, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	cfg := *loaded

	if override, _ := cmd.Flags().GetString("url"); strings.TrimSpace(override) != "" {
		cfg.Service.BaseURL = strings.TrimSpace(override)
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid --url")
		}
	}
	return &cfg, nil
}

// newClient builds the ingestion client for cfg
func newClient(cfg *am.Config) (*ingest.Client, error) {
	return ingest.NewClient(ingest.Config{
		BaseURL:      cfg.Service.BaseURL,
		Timeout:      cfg.ServiceTimeout(),
		MaxRedirects: cfg.Service.MaxRedirects,
		Logger:       logger.ComponentLogger("ingest"),
	})
}

// renderOptions returns the output naming and number formatting for cfg
func renderOptions(cfg *am.Config) render.Options {
	return render.Options{
		Prefix: cfg.Export.Prefix,
		Locale: cfg.UI.Locale,
	}
}

// flagOr returns the string flag when it was set and fallback otherwise
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

// boolFlagOr returns the bool flag when it was set and fallback otherwise
func boolFlagOr(cmd *cobra.Command, name string, fallback bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return fallback
}
