// Package session is the git1file client controller: it owns the visible
// state, debounces the live stats preview, runs submissions and drives a
// View.
//
// The controller is single-threaded. Its event handlers (SourceChanged,
// Submit, CopyOutput, ...) must be called on the Dispatcher goroutine, and
// every View call happens there too. Network calls run on worker goroutines
// and post their completions back through the Dispatcher.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/git1file/git1file/debounce"
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/logger"
	"github.com/git1file/git1file/preview"
	"github.com/git1file/git1file/render"
)

// DefaultMinSourceLength is the shortest input that triggers a preview
const DefaultMinSourceLength = 3

// Messages shown through View.Notify for local failures
const (
	MsgCopyFailed   = "Copy failed. Copy manually."
	MsgExportFailed = "Download failed."
)

// Service is the ingestion service as the controller uses it
type Service interface {
	preview.StatsSource
	Ingest(ctx context.Context, opts ingest.Options) (string, error)
	IngestMarkdown(ctx context.Context, opts ingest.Options) (string, error)
}

// Config wires a Controller
type Config struct {
	Service    Service
	View       View
	Dispatcher Dispatcher
	Saver      render.Saver

	Debounce             time.Duration // 0 = debounce.DefaultInterval
	MinSourceLength      int           // 0 = DefaultMinSourceLength
	PreviewTimeout       time.Duration // 0 = preview.DefaultTimeout
	MaxRequestsPerMinute int           // preview throttle, 0 = unlimited
	Render               render.Options

	Metrics *Metrics           // nil = no metrics
	Logger  *zap.SugaredLogger // nil = nop logger

	// AfterFunc replaces the debounce timer factory
	AfterFunc debounce.AfterFunc
}

// Controller is the UI state machine
type Controller struct {
	service    Service
	view       View
	dispatcher Dispatcher
	saver      render.Saver
	fetcher    *preview.Fetcher
	debouncer  *debounce.Debouncer
	renderOpts render.Options
	metrics    *Metrics
	logger     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// owned by the dispatcher goroutine
	state           State
	minSourceLength int
	source          string
	mode            ingest.Mode
	lastSubmit      ingest.Options
	markdownPending bool
	closed          bool
}

// New creates a controller in PhaseIdle with the stats panel hidden
func New(cfg Config) (*Controller, error) {
	if cfg.Service == nil {
		return nil, errors.New("session: service is required")
	}
	if cfg.View == nil {
		return nil, errors.New("session: view is required")
	}
	if cfg.Dispatcher == nil {
		return nil, errors.New("session: dispatcher is required")
	}
	if cfg.Saver == nil {
		cfg.Saver = render.NewDirSaver(".")
	}

	interval := cfg.Debounce
	if interval <= 0 {
		interval = debounce.DefaultInterval
	}
	minLen := cfg.MinSourceLength
	if minLen <= 0 {
		minLen = DefaultMinSourceLength
	}

	log := logger.OrNop(cfg.Logger)
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		service:    cfg.Service,
		view:       cfg.View,
		dispatcher: cfg.Dispatcher,
		saver:      cfg.Saver,
		renderOpts: cfg.Render,
		metrics:    cfg.Metrics,
		logger:     log,
		ctx:        ctx,
		cancel:     cancel,

		minSourceLength: minLen,
	}

	c.fetcher = preview.New(cfg.Service, preview.Config{
		Timeout:              cfg.PreviewTimeout,
		MaxRequestsPerMinute: cfg.MaxRequestsPerMinute,
		Logger:               log.Named("preview"),
	})

	var opts []debounce.Option
	if cfg.AfterFunc != nil {
		opts = append(opts, debounce.WithAfterFunc(cfg.AfterFunc))
	}
	c.debouncer = debounce.New(interval, func() {
		c.post(c.previewDue)
	}, opts...)

	return c, nil
}

// State returns a copy of the current state
func (c *Controller) State() State {
	return c.state
}

// SourceChanged handles an edit of the source field or the mode selector.
// Input shorter than the minimum length clears the stats panel at once;
// anything else re-arms the preview timer.
func (c *Controller) SourceChanged(text string, mode ingest.Mode) {
	if c.closed {
		return
	}
	c.source = strings.TrimSpace(text)
	c.mode = mode

	if utf8.RuneCountInString(c.source) < c.minSourceLength {
		c.debouncer.Cancel()
		c.fetcher.Invalidate()
		c.hideStats()
		return
	}

	c.debouncer.Trigger()
}

// Submit starts an ingestion. It returns errors.ErrBusy without touching
// the view while another submission is loading.
func (c *Controller) Submit(opts ingest.Options) error {
	if c.closed {
		return errors.New("session closed")
	}
	if c.state.Phase == PhaseLoading {
		c.metrics.submission(OutcomeRejected)
		return errors.ErrBusy
	}
	opts.Source = strings.TrimSpace(opts.Source)
	if err := opts.Validate(); err != nil {
		c.view.Notify(errors.UserMessage(err))
		return err
	}

	c.enterLoading()
	c.lastSubmit = opts
	c.source, c.mode = opts.Source, opts.Mode

	log := c.logger.With(
		logger.FieldSource, opts.Source,
		logger.FieldFormat, string(opts.Format),
		logger.FieldMode, string(opts.Mode),
	)
	log.Infow("ingestion submitted")

	start := time.Now()
	c.goWorker(func(ctx context.Context) {
		content, err := c.service.Ingest(ctx, opts)
		c.post(func() {
			c.metrics.submitDuration(time.Since(start).Seconds())
			if err != nil {
				log.Warnw("ingestion failed",
					logger.FieldError, err,
					logger.FieldDurationMS, time.Since(start).Milliseconds(),
				)
				c.metrics.submission(OutcomeError)
				c.fail(errors.UserMessage(err))
				return
			}
			c.metrics.submission(OutcomeSuccess)
			c.succeed(opts, content)
			log.Infow("ingestion completed",
				logger.FieldSize, len(content),
				logger.FieldTokens, c.state.Result.Tokens,
				logger.FieldDurationMS, time.Since(start).Milliseconds(),
			)
		})
	})
	return nil
}

// IncludeMarkdownAndResubmit repeats the last submission with markdown
// documents included.
func (c *Controller) IncludeMarkdownAndResubmit() error {
	if c.lastSubmit.Source == "" {
		return errors.ErrNoResults
	}
	opts := c.lastSubmit
	opts.IncludeMarkdown = true
	return c.Submit(opts)
}

// CopyOutput writes the current output to the clipboard
func (c *Controller) CopyOutput() error {
	result, err := c.currentResult()
	if err != nil {
		return err
	}
	if err := c.view.WriteClipboard(result.Artifact.Content); err != nil {
		c.logger.Warnw("clipboard write failed", logger.FieldError, err)
		c.view.Notify(MsgCopyFailed)
		return errors.Wrap(err, "copy failed")
	}
	return nil
}

// DownloadOutput exports the current output through the saver
func (c *Controller) DownloadOutput() error {
	result, err := c.currentResult()
	if err != nil {
		return err
	}
	return c.export(result.Artifact)
}

// DownloadMarkdown requests the markdown-only export of the last submitted
// source and saves it. A second call while one is pending returns
// errors.ErrBusy.
func (c *Controller) DownloadMarkdown() error {
	if c.closed {
		return errors.New("session closed")
	}
	if c.markdownPending {
		return errors.ErrBusy
	}
	opts := c.lastSubmit
	if opts.Source == "" {
		return errors.ErrNoResults
	}

	c.markdownPending = true
	log := c.logger.With(logger.FieldSource, opts.Source)

	c.goWorker(func(ctx context.Context) {
		content, err := c.service.IngestMarkdown(ctx, opts)
		c.post(func() {
			c.markdownPending = false
			if err != nil {
				log.Warnw("markdown export failed", logger.FieldError, err)
				c.metrics.markdown(OutcomeError)
				c.view.Notify(errors.UserMessage(err))
				return
			}
			artifact := render.Artifact{
				Content:  content,
				Format:   ingest.FormatMarkdown,
				Filename: render.MarkdownFilename(c.renderOpts.Prefix, opts.Source),
			}
			if err := c.export(artifact); err != nil {
				c.metrics.markdown(OutcomeError)
				return
			}
			c.metrics.markdown(OutcomeSuccess)
		})
	})
	return nil
}

// Reconfigure applies new preview tuning. Zero values keep the defaults.
func (c *Controller) Reconfigure(interval time.Duration, minSourceLength, maxRequestsPerMinute int) {
	if interval <= 0 {
		interval = debounce.DefaultInterval
	}
	if minSourceLength <= 0 {
		minSourceLength = DefaultMinSourceLength
	}
	c.debouncer.SetInterval(interval)
	c.minSourceLength = minSourceLength
	c.fetcher.SetRateLimit(maxRequestsPerMinute)

	c.logger.Infow("preview settings reloaded",
		"debounce", interval,
		"min_source_length", minSourceLength,
		"max_requests_per_minute", maxRequestsPerMinute,
	)
}

// Close cancels in-flight requests, stops the timer and waits for workers.
// Completions arriving afterwards are dropped.
func (c *Controller) Close() {
	c.closed = true
	c.cancel()
	c.debouncer.Stop()
	c.fetcher.Invalidate()
	c.wg.Wait()
}

// previewDue runs when the debounce timer fires. The timer may fire after a
// shortening SourceChanged was queued, so the length threshold is checked again.
func (c *Controller) previewDue() {
	if c.closed || c.state.Phase == PhaseLoading {
		return
	}
	if utf8.RuneCountInString(c.source) < c.minSourceLength {
		return
	}
	c.startPreview(c.source, c.mode)
}

func (c *Controller) startPreview(source string, mode ingest.Mode) {
	tok := c.fetcher.Begin()
	c.metrics.previewIssued()

	c.goWorker(func(ctx context.Context) {
		result := c.fetcher.Fetch(ctx, tok, source, mode)
		c.post(func() { c.applyStats(result) })
	})
}

// applyStats writes a preview result unless a newer one was issued
func (c *Controller) applyStats(result preview.Result) {
	if !c.fetcher.Current(result.Token) || result.Skipped {
		c.metrics.stats(StatsSuperseded)
		c.logger.Debugw("stale preview discarded", logger.FieldSeq, uint64(result.Token))
		return
	}

	if !result.Visible() {
		c.metrics.stats(StatsHidden)
		c.hideStats()
		return
	}

	c.metrics.stats(StatsApplied)
	snapshot := *result.Snapshot
	c.state.Stats = &snapshot
	c.view.ShowStats(render.StatCards(snapshot), snapshot)
}

func (c *Controller) enterLoading() {
	c.setPhase(PhaseLoading)
	c.state.Result = nil
	c.state.Err = ""

	c.view.SetBusy(true)
	c.view.HideResults()
	c.hideStats()

	c.fetcher.Invalidate()
	c.debouncer.Cancel()
}

func (c *Controller) succeed(opts ingest.Options, content string) {
	rendered := render.Render(content, opts.Format, opts.Source, c.renderOpts)

	c.setPhase(PhaseResults)
	c.state.Result = &rendered
	c.view.SetBusy(false)
	c.view.ShowResults(rendered)
	c.hideStats()

	c.startPreview(opts.Source, opts.Mode)
}

func (c *Controller) fail(message string) {
	c.setPhase(PhaseError)
	c.state.Err = message
	c.view.Notify(message)

	c.view.SetBusy(false)
	c.setPhase(PhaseIdle)
}

func (c *Controller) export(artifact render.Artifact) error {
	if err := render.Export(c.saver, artifact); err != nil {
		c.logger.Warnw("export failed",
			logger.FieldFilename, artifact.Filename,
			logger.FieldError, err,
		)
		c.view.Notify(MsgExportFailed + " " + errors.UserMessage(err))
		return err
	}
	c.logger.Infow("output exported",
		logger.FieldFilename, artifact.Filename,
		logger.FieldSize, len(artifact.Content),
	)
	return nil
}

func (c *Controller) currentResult() (*render.Rendered, error) {
	if c.state.Phase != PhaseResults || c.state.Result == nil {
		return nil, errors.ErrNoResults
	}
	return c.state.Result, nil
}

func (c *Controller) hideStats() {
	c.state.Stats = nil
	c.view.HideStats()
}

func (c *Controller) setPhase(p Phase) {
	if c.state.Phase != p {
		c.logger.Debugw("state transition", logger.FieldState, p.String(), "from", c.state.Phase.String())
	}
	c.state.Phase = p
}

// goWorker runs fn on a worker goroutine tracked by Close
func (c *Controller) goWorker(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

// post hands fn to the dispatcher unless the controller is closing
func (c *Controller) post(fn func()) {
	if c.ctx.Err() != nil {
		return
	}
	c.dispatcher.Dispatch(func() {
		if c.closed {
			return
		}
		fn()
	})
}
