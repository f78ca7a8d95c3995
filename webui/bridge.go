// Package webui hosts the git1file controller in a native webview window.
//
// Bridge translates View and Saver calls into JavaScript evaluated in the
// page, and Bind exposes the controller's event handlers to the page. The
// window itself only exists in builds with the webview tag.
package webui

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/render"
)

// Evaluator runs JavaScript in the page. Calls happen on the UI thread.
type Evaluator interface {
	Eval(js string)
}

// Bridge implements session.View and render.Saver over an Evaluator
type Bridge struct {
	eval Evaluator

	mu     sync.Mutex
	nextID int
}

// NewBridge returns a bridge evaluating into e
func NewBridge(e Evaluator) *Bridge {
	return &Bridge{eval: e}
}

// call evaluates git1file.<fn>(args...) with JSON-encoded arguments
func (b *Bridge) call(fn string, args ...interface{}) {
	js := "window.git1file." + fn + "("
	for i, arg := range args {
		if i > 0 {
			js += ","
		}
		data, err := json.Marshal(arg)
		if err != nil {
			data = []byte("null")
		}
		js += string(data)
	}
	b.eval.Eval(js + ")")
}

type resultPayload struct {
	Display  string `json:"display"`
	Tokens   string `json:"tokens"`
	Size     string `json:"size"`
	Filename string `json:"filename"`
}

// SetDefaults preselects the form controls. The source field is left alone.
func (b *Bridge) SetDefaults(form FormInput) { b.call("setDefaults", form) }

func (b *Bridge) SetBusy(busy bool) { b.call("setBusy", busy) }

func (b *Bridge) ShowStats(cards []render.StatCard, snapshot ingest.StatsSnapshot) {
	if cards == nil {
		cards = []render.StatCard{}
	}
	b.call("showStats", cards)
}

func (b *Bridge) HideStats() { b.call("hideStats") }

func (b *Bridge) ShowResults(result render.Rendered) {
	b.call("showResults", resultPayload{
		Display:  result.Display,
		Tokens:   result.TokenLabel,
		Size:     result.SizeLabel,
		Filename: result.Artifact.Filename,
	})
}

func (b *Bridge) HideResults() { b.call("hideResults") }

func (b *Bridge) Notify(message string) { b.call("notify", message) }

// WriteClipboard hands the text to the page's clipboard API. Failures are
// reported by the page itself.
func (b *Bridge) WriteClipboard(text string) error {
	b.call("copy", text)
	return nil
}

// Stage turns the blob into an object URL held by the page
func (b *Bridge) Stage(blob render.Blob) (string, error) {
	b.mu.Lock()
	b.nextID++
	ref := "blob-" + strconv.Itoa(b.nextID)
	b.mu.Unlock()

	b.call("stage", ref, base64.StdEncoding.EncodeToString(blob.Data), blob.ContentType)
	return ref, nil
}

// Prompt triggers the page's download of ref as filename
func (b *Bridge) Prompt(ref, filename string) error {
	b.call("prompt", ref, filename)
	return nil
}

// Release revokes the object URL
func (b *Bridge) Release(ref string) {
	b.call("release", ref)
}
