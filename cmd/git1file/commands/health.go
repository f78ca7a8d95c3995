package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/git1file/git1file/display"
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/version"
)

// HealthCmd checks the ingestion service
var HealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the ingestion service",
	Long: `Query the ingestion service's health endpoint and check that its version
is one this client supports.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.PreviewTimeout())
	defer cancel()

	health, err := client.Health(ctx)
	if err != nil {
		return errors.Wrapf(err, "service at %s is not reachable", client.BaseURL())
	}
	compatErr := version.CheckService(health.Version)

	if display.ShouldOutputJSON(cmd) {
		doc := struct {
			URL        string `json:"url"`
			Status     string `json:"status"`
			Version    string `json:"version"`
			Compatible bool   `json:"compatible"`
		}{client.BaseURL(), health.Status, health.Version, compatErr == nil}
		data, err := display.MarshalJSON(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		out := cmd.OutOrStdout()
		if health.Healthy() {
			pterm.Success.WithWriter(out).Printfln("%s is %s (version %s)", client.BaseURL(), health.Status, versionLabel(health.Version))
		} else {
			pterm.Warning.WithWriter(out).Printfln("%s reports status %q", client.BaseURL(), health.Status)
		}
	}

	if compatErr != nil {
		return compatErr
	}
	if !health.Healthy() {
		return errors.Newf("service status is %q", health.Status)
	}
	return nil
}

func versionLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
