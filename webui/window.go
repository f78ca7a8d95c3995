package webui

import (
	"github.com/git1file/git1file/errors"
	"github.com/git1file/git1file/session"
)

// ErrUnsupported is returned by Open in builds without the webview tag
var ErrUnsupported = errors.New("webview support not compiled in")

// Options configures the window
type Options struct {
	Title  string
	Width  int
	Height int
	Debug  bool // enables the web inspector
}

// Window is a native window showing the embedded page. Dispatch posts to the
// UI thread, which is also where bound functions run.
type Window interface {
	Evaluator
	Binder
	session.Dispatcher

	// Run blocks on the UI loop until the window closes
	Run()
	// Terminate closes the window from any goroutine
	Terminate()
	Destroy()
}
