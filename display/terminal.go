package display

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"

	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/render"
)

// TerminalView renders controller state on a terminal. Output content goes
// to Out; spinners, stats and notices go to Err so the content can be piped.
type TerminalView struct {
	Out io.Writer
	Err io.Writer

	// JSON emits results and stats as JSON documents on Out
	JSON bool
	// Quiet suppresses the content itself (used when it is only exported)
	Quiet bool
	// Spinner shows a spinner while busy
	Spinner bool

	mu       sync.Mutex
	spinner  *pterm.SpinnerPrinter
	stats    *ingest.StatsSnapshot
	result   *render.Rendered
	notices  []string
	busyText string
}

// NewTerminalView writes to stdout/stderr
func NewTerminalView() *TerminalView {
	return &TerminalView{
		Out:      os.Stdout,
		Err:      os.Stderr,
		Spinner:  true,
		busyText: "Analyzing repository...",
	}
}

// SetBusyText changes the spinner message
func (v *TerminalView) SetBusyText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.busyText = text
}

func (v *TerminalView) SetBusy(busy bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if busy {
		if v.Spinner && v.spinner == nil && !v.JSON {
			v.spinner, _ = pterm.DefaultSpinner.WithWriter(v.Err).Start(v.busyText)
		}
		return
	}
	if v.spinner != nil {
		_ = v.spinner.Stop()
		v.spinner = nil
	}
}

func (v *TerminalView) ShowStats(cards []render.StatCard, snapshot ingest.StatsSnapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = &snapshot

	if v.JSON {
		v.writeJSON(struct {
			Stats ingest.StatsSnapshot `json:"stats"`
			Cards []render.StatCard    `json:"cards"`
		}{snapshot, cards})
		return
	}

	data := pterm.TableData{{"Stat", "Value"}}
	for _, card := range cards {
		data = append(data, []string{card.Label, card.Value})
	}
	title := "Repository stats"
	if snapshot.Name != "" {
		title += ": " + snapshot.Name
	}
	fmt.Fprint(v.Err, pterm.DefaultSection.Sprint(title))
	if table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
		fmt.Fprintln(v.Err, table)
	}
}

func (v *TerminalView) HideStats() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = nil
}

func (v *TerminalView) ShowResults(result render.Rendered) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = &result

	if v.JSON {
		v.writeJSON(struct {
			Filename string `json:"filename"`
			Format   string `json:"format"`
			Tokens   int    `json:"tokens"`
			Size     string `json:"size"`
			Content  string `json:"content,omitempty"`
		}{
			Filename: result.Artifact.Filename,
			Format:   string(result.Artifact.Format),
			Tokens:   result.Tokens,
			Size:     result.SizeLabel,
			Content:  contentUnlessQuiet(result.Artifact.Content, v.Quiet),
		})
		return
	}

	if !v.Quiet {
		fmt.Fprint(v.Out, result.Display)
		if n := len(result.Display); n > 0 && result.Display[n-1] != '\n' {
			fmt.Fprintln(v.Out)
		}
	}
	pterm.Success.WithWriter(v.Err).Printfln("Estimated tokens: %s  Size: %s", result.TokenLabel, result.SizeLabel)
}

func contentUnlessQuiet(content string, quiet bool) string {
	if quiet {
		return ""
	}
	return content
}

func (v *TerminalView) HideResults() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.result = nil
}

func (v *TerminalView) Notify(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, message)

	if v.spinner != nil {
		_ = v.spinner.Stop()
		v.spinner = nil
	}
	pterm.Error.WithWriter(v.Err).Println(message)
}

// WriteClipboard asks the terminal to set the clipboard with an OSC 52
// escape sequence. Terminals without OSC 52 support ignore it.
func (v *TerminalView) WriteClipboard(text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	seq := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\a"
	if _, err := io.WriteString(v.Err, seq); err != nil {
		return err
	}
	pterm.Info.WithWriter(v.Err).Println("Output copied to clipboard")
	return nil
}

// Notices returns the messages shown so far
func (v *TerminalView) Notices() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.notices...)
}

// Stats returns the snapshot currently shown, or nil
func (v *TerminalView) Stats() *ingest.StatsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// Result returns the result currently shown, or nil
func (v *TerminalView) Result() *render.Rendered {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

func (v *TerminalView) writeJSON(doc interface{}) {
	enc := json.NewEncoder(v.Out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(doc)
}
