package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/git1file/git1file/am"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/session"
	"github.com/git1file/git1file/webui"
)

// UICmd opens the desktop window
var UICmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the desktop window",
	Long: `Open the git1file window: type a local path or git URL to preview its
statistics, analyze it, then copy or download the output.

Preview tuning (preview.*) is reloaded when the config file changes.
Set metrics.addr to expose Prometheus metrics while the window is open.

The window needs a build with the webview tag:
  go build -tags webview ./cmd/git1file`,
	Args: cobra.NoArgs,
	RunE: runUI,
}

func init() {
	UICmd.Flags().Bool("debug", false, "Enable the web inspector")
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	log := logger.ComponentLogger("ui")

	win, err := webui.Open(webui.Options{
		Title:  cfg.UI.Title,
		Width:  cfg.UI.Width,
		Height: cfg.UI.Height,
		Debug:  boolFlagOr(cmd, "debug", cfg.UI.Debug),
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	reg := prometheus.NewRegistry()
	bridge := webui.NewBridge(win)
	ctrl, err := session.New(session.Config{
		Service:              client,
		View:                 bridge,
		Dispatcher:           win,
		Saver:                bridge,
		Debounce:             cfg.DebounceInterval(),
		MinSourceLength:      cfg.Preview.MinSourceLength,
		PreviewTimeout:       cfg.PreviewTimeout(),
		MaxRequestsPerMinute: cfg.Preview.MaxRequestsPerMinute,
		Render:               renderOptions(cfg),
		Metrics:              session.NewMetrics(reg),
		Logger:               logger.ComponentLogger("session"),
	})
	if err != nil {
		return err
	}

	defaults := webui.FormInput{
		Format:   cfg.Ingest.Format,
		Mode:     cfg.Ingest.Mode,
		Compress: cfg.Ingest.Compress,
	}
	if err := webui.Bind(win, ctrl, func() { bridge.SetDefaults(defaults) }); err != nil {
		return err
	}

	if stop := watchConfig(win, ctrl); stop != nil {
		defer stop()
	}

	if cfg.Metrics.Addr != "" {
		_, shutdown, err := serveMetrics(cfg.Metrics.Addr, reg, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	log.Infow("window opened", "service", client.BaseURL())
	win.Run()

	// the UI loop has stopped, so nothing else touches the controller
	ctrl.Close()
	log.Infow("window closed")
	return nil
}

// watchConfig reapplies preview tuning when the highest-precedence config
// file changes. It returns nil when no config file is in use.
func watchConfig(dispatcher session.Dispatcher, ctrl *session.Controller) func() {
	files := am.LoadedFiles()
	if len(files) == 0 {
		return nil
	}
	path := files[len(files)-1]
	log := logger.ComponentLogger("config")

	watcher, err := am.NewConfigWatcher(path, log)
	if err != nil {
		log.Warnw("config reload disabled", logger.FieldError, err)
		return nil
	}
	watcher.OnReload(func(c *am.Config) error {
		dispatcher.Dispatch(func() {
			ctrl.Reconfigure(c.DebounceInterval(), c.Preview.MinSourceLength, c.Preview.MaxRequestsPerMinute)
		})
		return nil
	})
	watcher.Start()

	return func() {
		if err := watcher.Stop(); err != nil {
			log.Debugw("config watcher stop failed", logger.FieldError, err)
		}
	}
}
