//go:build webview

package webui

import (
	webview "github.com/webview/webview_go"

	"github.com/git1file/git1file/errors"
)

type nativeWindow struct {
	w webview.WebView
}

// Open creates the window and loads the page. Call it on the main goroutine.
func Open(opts Options) (Window, error) {
	w := webview.New(opts.Debug)
	if w == nil {
		return nil, errors.New("failed to create webview window")
	}

	title := opts.Title
	if title == "" {
		title = "git1file"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = 1200
	}
	if height <= 0 {
		height = 860
	}

	w.SetTitle(title)
	w.SetSize(width, height, webview.HintNone)
	return &nativeWindow{w: w}, nil
}

func (n *nativeWindow) Eval(js string) { n.w.Eval(js) }

func (n *nativeWindow) Bind(name string, f interface{}) error { return n.w.Bind(name, f) }

func (n *nativeWindow) Dispatch(fn func()) { n.w.Dispatch(fn) }

// Run loads the page and blocks. Bindings must be registered first.
func (n *nativeWindow) Run() {
	n.w.SetHtml(Page())
	n.w.Run()
}

func (n *nativeWindow) Terminate() { n.w.Terminate() }

func (n *nativeWindow) Destroy() { n.w.Destroy() }
