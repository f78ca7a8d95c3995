// Package render turns raw ingestion output into what the user sees and
// saves: display text, token and size labels, stat cards and export files.
package render

import (
	"bytes"
	"encoding/json"

	"github.com/git1file/git1file/ingest"
)

// Artifact is one downloadable output
type Artifact struct {
	Content  string
	Format   ingest.Format
	Filename string
}

// Rendered is an artifact prepared for display
type Rendered struct {
	Artifact   Artifact
	Display    string
	Tokens     int
	TokenLabel string
	SizeLabel  string
}

// Options tunes rendering
type Options struct {
	Prefix string // filename base; "" = DefaultPrefix
	Locale string // BCP 47 tag for the token label; "" = en
}

// Render prepares content returned for source in format
func Render(content string, format ingest.Format, source string, opts Options) Rendered {
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}

	tokens := TokenEstimate(content)
	return Rendered{
		Artifact: Artifact{
			Content:  content,
			Format:   format,
			Filename: ArtifactFilename(opts.Prefix, source, format),
		},
		Display:    DisplayText(content, format),
		Tokens:     tokens,
		TokenLabel: TokenLabel(tokens, locale),
		SizeLabel:  SizeLabel(int64(len(content))),
	}
}

// DisplayText indents valid JSON output; everything else is shown verbatim
func DisplayText(content string, format ingest.Format) string {
	if format != ingest.FormatJSON {
		return content
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(content), "", "  "); err != nil {
		return content
	}
	return buf.String()
}
