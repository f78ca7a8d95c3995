package webui

import _ "embed"

//go:embed assets/index.html
var indexHTML string

// Page returns the embedded single-page UI
func Page() string {
	return indexHTML
}
