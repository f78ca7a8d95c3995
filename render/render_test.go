package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/git1file/git1file/ingest"
)

func TestTokenEstimate(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 4000), 1000},
		{strings.Repeat("x", 4001), 1001},
		{"日本語日本語", 2},
		{"é", 1},
		{"😀😀", 1},
		{"😀😀😀", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, TokenEstimate(tt.input), "len %d", len(tt.input))
	}
}

func TestTokenLabel(t *testing.T) {
	assert.Equal(t, "0", TokenLabel(0, "en"))
	assert.Equal(t, "1,234,567", TokenLabel(1234567, "en"))
	assert.Equal(t, "1.234.567", TokenLabel(1234567, "de"))
	assert.Equal(t, "1,234", TokenLabel(1234, "not a locale"))
}

func TestSizeLabel(t *testing.T) {
	tests := []struct {
		n        int64
		expected string
	}{
		{0, "0 Bytes"},
		{-5, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1100, "1.07 KB"},
		{1048576, "1 MB"},
		{1024 * 1024 * 1024, "1 GB"},
		{5 * 1024 * 1024 * 1024 * 1024, "5 TB"},
		{2048 * 1024 * 1024 * 1024 * 1024, "2048 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SizeLabel(tt.n))
		})
	}
}

func TestRepoName(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"https://github.com/org/project", "project"},
		{"https://github.com/org/project.git", "project"},
		{"https://github.com/org/project/", "project"},
		{"git@github.com:org/project.git", "project"},
		{"./local/repo", "repo"},
		{`C:\src\repo`, "repo"},
		{"project", "project"},
		{"", "repository"},
		{"/", "repository"},
		{".git", "repository"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.expected, RepoName(tt.source))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "out.txt", Filename("out", ingest.FormatPlain))
	assert.Equal(t, "out.json", Filename("out", ingest.FormatJSON))
	assert.Equal(t, "out.markdown", Filename("out", ingest.FormatMarkdown))
	assert.Equal(t, "out.xml", Filename("out", ingest.FormatXML))

	assert.Equal(t, "git1file-project.txt", ArtifactFilename("", "https://github.com/org/project.git", ingest.FormatPlain))
	assert.Equal(t, "export-project.json", ArtifactFilename("export", "./project/", ingest.FormatJSON))
	assert.Equal(t, "git1file-project-markdown.md", MarkdownFilename("", "https://github.com/org/project"))
}

func TestRender(t *testing.T) {
	content := `{"files":[{"path":"main.go"}]}`
	r := Render(content, ingest.FormatJSON, "https://github.com/org/project", Options{})

	assert.Equal(t, content, r.Artifact.Content, "artifact keeps raw content")
	assert.Equal(t, "git1file-project.json", r.Artifact.Filename)
	assert.Contains(t, r.Display, "\n  \"files\"")
	assert.Equal(t, TokenEstimate(content), r.Tokens)
	assert.Equal(t, "8", r.TokenLabel)
	assert.Equal(t, "30 Bytes", r.SizeLabel)
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "{not json", DisplayText("{not json", ingest.FormatJSON))
	assert.Equal(t, `{"a":1}`, DisplayText(`{"a":1}`, ingest.FormatPlain))
	assert.Equal(t, "{\n  \"a\": 1\n}", DisplayText(`{"a":1}`, ingest.FormatJSON))
}

func TestStatCards(t *testing.T) {
	snapshot := ingest.StatsSnapshot{
		TotalFiles:      42,
		TotalCharacters: 1536,
		Languages: []ingest.Language{
			{Name: "Go", Files: 30},
			{Name: "Markdown", Files: 8},
			{Name: "YAML", Files: 4},
		},
		MarkdownFiles:      8,
		MarkdownCharacters: 2048,
		GitBranch:          "main",
		GitCommit:          "0123456789abcdef",
	}

	assert.Equal(t, []StatCard{
		{Value: "42", Label: "Files"},
		{Value: "1.5 KB", Label: "Size"},
		{Value: "3", Label: "Languages"},
		{Value: "30", Label: "Go"},
		{Value: "8", Label: "Markdown"},
		{Value: "8", Label: "Markdown (2 KB)"},
		{Value: "main", Label: "Branch"},
		{Value: "0123456", Label: "Commit"},
	}, StatCards(snapshot))
}

func TestStatCards_Minimal(t *testing.T) {
	cards := StatCards(ingest.StatsSnapshot{TotalFiles: 1, TotalCharacters: 10})
	assert.Len(t, cards, 3)
	assert.Equal(t, "0", cards[2].Value)
}
