package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/git1file/git1file/display"
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/render"
	"github.com/git1file/git1file/session"
)

// IngestCmd runs one submission from the terminal
var IngestCmd = &cobra.Command{
	Use:   "ingest <source>",
	Short: "Ingest a repository from the terminal",
	Long: `Submit a repository to the ingestion service and print the flattened
output. The same session logic as the window runs underneath: the output
can be copied to the clipboard or saved, and the markdown-only export can
be saved next to it.

Examples:
  git1file ingest https://github.com/user/repo
  git1file ingest user/repo -f json -o out/          # save out/git1file-repo.json
  git1file ingest user/repo --include-markdown --copy
  git1file ingest user/repo -o out/ --markdown -q    # save both, print nothing`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	IngestCmd.Flags().StringP("format", "f", "", "Output format: plain, markdown, json, xml (default from config)")
	IngestCmd.Flags().StringP("mode", "m", "", "Ingestion mode forwarded to the service (default from config)")
	IngestCmd.Flags().Bool("compress", true, "Ask the service to compress the output")
	IngestCmd.Flags().Bool("include-markdown", false, "Include markdown documents")
	IngestCmd.Flags().StringP("output", "o", "", "Save the output into this directory")
	IngestCmd.Flags().Bool("markdown", false, "Also save the markdown-only export (into --output or export.dir)")
	IngestCmd.Flags().Bool("copy", false, "Copy the output to the clipboard (OSC 52)")
	IngestCmd.Flags().BoolP("quiet", "q", false, "Do not print the output itself")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	opts := ingest.Options{
		Source:          args[0],
		Format:          ingest.Format(flagOr(cmd, "format", cfg.Ingest.Format)),
		Mode:            ingest.Mode(flagOr(cmd, "mode", cfg.Ingest.Mode)),
		Compress:        boolFlagOr(cmd, "compress", cfg.Ingest.Compress),
		IncludeMarkdown: boolFlagOr(cmd, "include-markdown", cfg.Ingest.IncludeMarkdown),
	}

	outputDir, _ := cmd.Flags().GetString("output")
	saveMarkdown, _ := cmd.Flags().GetBool("markdown")
	copyOutput, _ := cmd.Flags().GetBool("copy")
	quiet, _ := cmd.Flags().GetBool("quiet")

	exportDir := outputDir
	if exportDir == "" {
		exportDir = cfg.Export.Dir
	}

	terminal := display.NewTerminalView()
	terminal.Out = cmd.OutOrStdout()
	terminal.Err = cmd.ErrOrStderr()
	terminal.JSON = display.ShouldOutputJSON(cmd)
	terminal.Quiet = quiet
	terminal.Spinner = cmd.ErrOrStderr() == os.Stderr

	run := newHeadless(terminal, exportDir)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return run.ingest(ctx, session.Config{
		Service: client,
		Render:  renderOptions(cfg),
		Logger:  logger.ComponentLogger("session"),
	}, opts, headlessActions{
		download: outputDir != "",
		markdown: saveMarkdown,
		copy:     copyOutput,
	})
}

type headlessActions struct {
	download bool
	markdown bool
	copy     bool
}

// headless drives a session on a private loop and turns the asynchronous
// view callbacks into blocking waits
type headless struct {
	view    *headlessView
	saver   *render.DirSaver
	loop    *session.Loop
	results chan struct{}
	notices chan string
	saved   chan string
}

func newHeadless(view session.View, exportDir string) *headless {
	h := &headless{
		results: make(chan struct{}, 4),
		notices: make(chan string, 4),
		saved:   make(chan string, 4),
	}
	h.view = &headlessView{View: view, h: h}
	h.saver = render.NewDirSaver(exportDir)
	h.saver.Saved = func(path string) { signalNonBlocking(h.saved, path) }
	return h
}

func (h *headless) ingest(ctx context.Context, cfg session.Config, opts ingest.Options, actions headlessActions) error {
	h.loop = session.NewLoop()
	defer h.loop.Close()

	cfg.View = h.view
	cfg.Dispatcher = h.loop
	cfg.Saver = h.saver
	ctrl, err := session.New(cfg)
	if err != nil {
		return err
	}
	defer h.loop.Call(ctrl.Close)

	if err := h.call(func() error { return ctrl.Submit(opts) }); err != nil {
		return err
	}
	if err := h.await(ctx, h.results); err != nil {
		return err
	}

	if actions.copy {
		if err := h.call(ctrl.CopyOutput); err != nil {
			return err
		}
	}
	if actions.download {
		if err := h.call(ctrl.DownloadOutput); err != nil {
			return err
		}
		if err := h.awaitSaved(ctx); err != nil {
			return err
		}
	}
	if actions.markdown {
		if err := h.call(ctrl.DownloadMarkdown); err != nil {
			return err
		}
		if err := h.awaitSaved(ctx); err != nil {
			return err
		}
	}
	return nil
}

// call runs fn on the loop and returns its error
func (h *headless) call(fn func() error) error {
	var err error
	if !h.loop.Call(func() { err = fn() }) {
		return errors.New("session closed")
	}
	return err
}

// await blocks until ch fires, a notice arrives or ctx ends. A notice has
// already been shown, so it is returned without further context.
func (h *headless) await(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case msg := <-h.notices:
		return errors.New(msg)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *headless) awaitSaved(ctx context.Context) error {
	select {
	case path := <-h.saved:
		logger.Debugw("export saved", logger.FieldFilename, path)
		return nil
	case msg := <-h.notices:
		return errors.New(msg)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// headlessView forwards to the terminal and reports the events the
// headless run waits on
type headlessView struct {
	session.View
	h *headless
}

// ShowStats drops the preview that follows a result; a headless run prints
// only the submission's output
func (v *headlessView) ShowStats(cards []render.StatCard, snapshot ingest.StatsSnapshot) {}

func (v *headlessView) ShowResults(result render.Rendered) {
	v.View.ShowResults(result)
	signalNonBlocking(v.h.results, struct{}{})
}

func (v *headlessView) Notify(message string) {
	v.View.Notify(message)
	signalNonBlocking(v.h.notices, message)
}

func signalNonBlocking[T any](ch chan T, value T) {
	select {
	case ch <- value:
	default:
	}
}
