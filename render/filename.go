package render

import (
	"strings"

	"github.com/git1file/git1file/ingest"
)

// DefaultPrefix starts every exported filename
const DefaultPrefix = "git1file"

// Extension maps a format to its file extension. plain is written as .txt;
// every other format uses its own name.
func Extension(format ingest.Format) string {
	if format == ingest.FormatPlain || format == "" {
		return "txt"
	}
	return string(format)
}

// RepoName is the last path segment of source with trailing slashes and a
// ".git" suffix removed, or "repository" when nothing is left.
func RepoName(source string) string {
	s := strings.TrimSpace(source)
	s = strings.TrimRight(s, "/\\")
	if i := strings.LastIndexAny(s, "/\\:"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, ".git")
	if s == "" {
		return "repository"
	}
	return s
}

// Filename builds "<prefix>.<ext>"
func Filename(prefix string, format ingest.Format) string {
	return prefix + "." + Extension(format)
}

// ArtifactFilename names the main download: "<base>-<repo>.<ext>"
func ArtifactFilename(base, source string, format ingest.Format) string {
	return Filename(artifactPrefix(base, source), format)
}

// MarkdownFilename names the markdown export: "<base>-<repo>-markdown.md"
func MarkdownFilename(base, source string) string {
	return artifactPrefix(base, source) + "-markdown.md"
}

func artifactPrefix(base, source string) string {
	if base == "" {
		base = DefaultPrefix
	}
	return base + "-" + RepoName(source)
}
