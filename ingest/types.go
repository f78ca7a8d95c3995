package ingest

import (
	"strings"

	"github.com/git1file/git1file/errors"
)

// Format selects the shape of the flattened output
type Format string

const (
	FormatPlain    Format = "plain"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatXML      Format = "xml"
)

// Mode is forwarded to the service unchanged
type Mode string

const (
	ModeSmart Mode = "smart"
	ModeFull  Mode = "full"
)

// Options is the full option set of one submission
type Options struct {
	Source          string
	Format          Format
	Mode            Mode
	IncludeMarkdown bool
	Compress        bool
}

// Validate rejects options that cannot be sent at all
func (o Options) Validate() error {
	if strings.TrimSpace(o.Source) == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrInvalidRequest, "source is required"),
			"enter a local path or a git URL",
		)
	}
	return nil
}

// Language is one entry of the per-language breakdown
type Language struct {
	Name       string `json:"name"`
	Files      int    `json:"files"`
	Characters int64  `json:"characters,omitempty"`
}

// StatsSnapshot is the live preview of a repository. Each fetch replaces
// the previous snapshot wholesale.
type StatsSnapshot struct {
	Name               string     `json:"name,omitempty"`
	TotalFiles         int        `json:"total_files"`
	TotalCharacters    int64      `json:"total_characters"`
	Languages          []Language `json:"languages"`
	MarkdownFiles      int        `json:"markdown_files"`
	MarkdownCharacters int64      `json:"markdown_characters"`
	GitBranch          string     `json:"git_branch,omitempty"`
	GitCommit          string     `json:"git_commit,omitempty"`
}

// Health is the service's health report
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Healthy reports whether the service considers itself healthy
func (h Health) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok"
}

// ingestRequest is the wire body of both ingest endpoints.
// IncludeMarkdown is omitted entirely for the markdown export.
type ingestRequest struct {
	Source          string `json:"source"`
	Format          Format `json:"format"`
	Mode            Mode   `json:"mode"`
	IncludeMarkdown *bool  `json:"include_markdown,omitempty"`
	Compress        bool   `json:"compress"`
}

// errorBody is the service's error envelope
type errorBody struct {
	Detail interface{} `json:"detail"`
}
