package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/git1file/git1file/debounce"
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/render"
)

// recordingView records every call made by the controller
type recordingView struct {
	mu        sync.Mutex
	calls     []string
	busy      bool
	stats     *ingest.StatsSnapshot
	cards     []render.StatCard
	result    *render.Rendered
	notices   []string
	clipboard string
	clipErr   error
}

func (v *recordingView) record(call string) {
	v.calls = append(v.calls, call)
}

func (v *recordingView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busy = busy
	v.record(fmt.Sprintf("SetBusy(%t)", busy))
}

func (v *recordingView) ShowStats(cards []render.StatCard, snapshot ingest.StatsSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = &snapshot
	v.cards = cards
	v.record("ShowStats(" + snapshot.Name + ")")
}

func (v *recordingView) HideStats() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = nil
	v.record("HideStats")
}

func (v *recordingView) ShowResults(result render.Rendered) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = &result
	v.record("ShowResults")
}

func (v *recordingView) HideResults() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = nil
	v.record("HideResults")
}

func (v *recordingView) Notify(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, message)
	v.record("Notify")
}

func (v *recordingView) WriteClipboard(text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("WriteClipboard")
	if v.clipErr != nil {
		return v.clipErr
	}
	v.clipboard = text
	return nil
}

func (v *recordingView) snapshot() (calls []string, notices []string, stats *ingest.StatsSnapshot, busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...), append([]string(nil), v.notices...), v.stats, v.busy
}

func (v *recordingView) statsName() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return ""
	}
	return v.stats.Name
}

func (v *recordingView) hasResult() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result != nil
}

func (v *recordingView) noticeCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.notices)
}

// fakeService answers from per-source gates so tests control arrival order
type fakeService struct {
	mu           sync.Mutex
	statsCalls   []string
	ingestCalls  []ingest.Options
	mdCalls      []ingest.Options
	statsGates   map[string]chan struct{}
	statsErr     error
	ingestGate   chan struct{}
	ingestResult string
	ingestErr    error
	mdGate       chan struct{}
	mdResult     string
	mdErr        error
}

func newFakeService() *fakeService {
	return &fakeService{statsGates: make(map[string]chan struct{})}
}

// gate makes Stats for source block until the returned func is called
func (s *fakeService) gate(source string) func() {
	ch := make(chan struct{})
	s.mu.Lock()
	s.statsGates[source] = ch
	s.mu.Unlock()
	return func() { close(ch) }
}

func (s *fakeService) Stats(ctx context.Context, source string, mode ingest.Mode) (ingest.StatsSnapshot, error) {
	s.mu.Lock()
	s.statsCalls = append(s.statsCalls, source)
	gate := s.statsGates[source]
	err := s.statsErr
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ingest.StatsSnapshot{}, ctx.Err()
		}
	}
	if err != nil {
		return ingest.StatsSnapshot{}, err
	}
	return ingest.StatsSnapshot{Name: source, TotalFiles: len(source)}, nil
}

func (s *fakeService) Ingest(ctx context.Context, opts ingest.Options) (string, error) {
	s.mu.Lock()
	s.ingestCalls = append(s.ingestCalls, opts)
	gate := s.ingestGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.ingestResult, s.ingestErr
}

func (s *fakeService) IngestMarkdown(ctx context.Context, opts ingest.Options) (string, error) {
	s.mu.Lock()
	s.mdCalls = append(s.mdCalls, opts)
	gate := s.mdGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.mdResult, s.mdErr
}

func (s *fakeService) statsCallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statsCalls)
}

func (s *fakeService) ingestCallList() []ingest.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ingest.Options(nil), s.ingestCalls...)
}

// manualClock arms timers that only fire on demand
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs the live timers and reports how many fired
func (c *manualClock) fire() int {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()

	fired := 0
	for _, t := range timers {
		t.mu.Lock()
		live := !t.stopped
		t.stopped = true
		t.mu.Unlock()
		if live {
			fired++
			t.f()
		}
	}
	return fired
}

// recordingSaver records the export protocol
type recordingSaver struct {
	mu       sync.Mutex
	prompted []string
	contents []string
	released int
	err      error
}

func (s *recordingSaver) Stage(blob render.Blob) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents = append(s.contents, string(blob.Data))
	return fmt.Sprintf("ref-%d", len(s.contents)), nil
}

func (s *recordingSaver) Prompt(ref, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompted = append(s.prompted, filename)
	return s.err
}

func (s *recordingSaver) Release(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
}

func (s *recordingSaver) promptedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompted...)
}

type harness struct {
	t       *testing.T
	ctrl    *Controller
	loop    *Loop
	view    *recordingView
	service *fakeService
	clock   *manualClock
	saver   *recordingSaver
	metrics *Metrics
}

func newHarness(t *testing.T, service *fakeService) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		loop:    NewLoop(),
		view:    &recordingView{},
		service: service,
		clock:   &manualClock{},
		saver:   &recordingSaver{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}

	ctrl, err := New(Config{
		Service:    service,
		View:       h.view,
		Dispatcher: h.loop,
		Saver:      h.saver,
		Metrics:    h.metrics,
		Logger:     zaptest.NewLogger(t).Sugar(),
		AfterFunc:  h.clock.AfterFunc,
	})
	require.NoError(t, err)
	h.ctrl = ctrl

	t.Cleanup(func() {
		h.loop.Call(ctrl.Close)
		h.loop.Close()
	})
	return h
}

// do runs fn on the dispatcher and waits for it
func (h *harness) do(fn func()) {
	h.t.Helper()
	require.True(h.t, h.loop.Call(fn))
}

func (h *harness) state() State {
	var s State
	h.do(func() { s = h.ctrl.State() })
	return s
}

func (h *harness) submit(opts ingest.Options) error {
	var err error
	h.do(func() { err = h.ctrl.Submit(opts) })
	return err
}

func (h *harness) typeSource(text string) {
	h.do(func() { h.ctrl.SourceChanged(text, ingest.ModeSmart) })
}
