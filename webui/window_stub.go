//go:build !webview

package webui

import "github.com/git1file/git1file/errors"

// Open always fails without the webview build tag
func Open(opts Options) (Window, error) {
	return nil, errors.WithHint(ErrUnsupported, "rebuild with: go build -tags webview ./cmd/git1file")
}
