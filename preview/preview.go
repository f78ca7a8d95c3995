// Package preview fetches the live stats preview and decides which results
// may still reach the screen.
//
// Each fetch is tagged with a sequence token from Begin. A result is only
// worth applying while its token is Current; a later Begin or Invalidate
// supersedes it. Superseded requests are never aborted, their results are
// simply discarded.
package preview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/logger"
)

// DefaultTimeout caps a single stats request
const DefaultTimeout = 30 * time.Second

// Token identifies one issued preview request
type Token uint64

// StatsSource is the part of the ingestion client the fetcher needs
type StatsSource interface {
	Stats(ctx context.Context, source string, mode ingest.Mode) (ingest.StatsSnapshot, error)
}

// Result is the normalized outcome of one fetch.
// A nil Snapshot means the stats panel should be hidden.
type Result struct {
	Token    Token
	Source   string
	Mode     ingest.Mode
	Snapshot *ingest.StatsSnapshot
	Skipped  bool  // superseded while throttled, no request was sent
	Err      error // cause of a hidden result, already logged
}

// Visible reports whether the result carries stats to show
func (r Result) Visible() bool {
	return r.Snapshot != nil
}

// Config configures a Fetcher
type Config struct {
	Timeout              time.Duration      // per-request cap; 0 = DefaultTimeout
	MaxRequestsPerMinute int                // 0 = unlimited
	Logger               *zap.SugaredLogger // nil = nop logger
}

// Fetcher issues stats requests and owns the sequence token
type Fetcher struct {
	source  StatsSource
	seq     atomic.Uint64
	timeout time.Duration
	logger  *zap.SugaredLogger

	mu      sync.Mutex
	limiter *rate.Limiter
}

// New creates a fetcher over source
func New(source StatsSource, cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	f := &Fetcher{
		source:  source,
		timeout: timeout,
		logger:  logger.OrNop(cfg.Logger),
	}
	f.SetRateLimit(cfg.MaxRequestsPerMinute)
	return f
}

// Begin issues a new token, superseding every earlier one
func (f *Fetcher) Begin() Token {
	return Token(f.seq.Add(1))
}

// Current reports whether no token was issued after tok
func (f *Fetcher) Current(tok Token) bool {
	return Token(f.seq.Load()) == tok
}

// Invalidate supersedes everything in flight without issuing a fetch
func (f *Fetcher) Invalidate() {
	f.seq.Add(1)
}

// SetRateLimit changes the client-side throttle. 0 or less disables it.
func (f *Fetcher) SetRateLimit(perMinute int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if perMinute <= 0 {
		f.limiter = nil
		return
	}
	f.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
}

func (f *Fetcher) currentLimiter() *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limiter
}

// Fetch queries stats for source and normalizes the outcome. It never
// returns an error: a 400 hides the panel silently, any other failure is
// logged and hides the panel.
func (f *Fetcher) Fetch(ctx context.Context, tok Token, source string, mode ingest.Mode) Result {
	result := Result{Token: tok, Source: source, Mode: mode}
	log := f.logger.With(logger.FieldSeq, uint64(tok), logger.FieldSource, source, logger.FieldMode, string(mode))

	if limiter := f.currentLimiter(); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			result.Skipped = true
			result.Err = err
			return result
		}
		if !f.Current(tok) {
			log.Debugw("preview superseded while throttled")
			result.Skipped = true
			return result
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	snapshot, err := f.source.Stats(ctx, source, mode)
	if err != nil {
		result.Err = err
		switch {
		case errors.IsBadRequest(err):
			log.Debugw("preview rejected by service", logger.FieldError, errors.UserMessage(err))
		case errors.Is(err, context.Canceled):
			log.Debugw("preview cancelled")
		default:
			log.Warnw("stats preview failed", logger.FieldError, err)
		}
		return result
	}

	log.Debugw("preview fetched",
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	result.Snapshot = &snapshot
	return result
}
