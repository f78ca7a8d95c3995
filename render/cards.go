package render

import (
	"strconv"

	"github.com/git1file/git1file/ingest"
)

// StatCard is one tile of the stats panel
type StatCard struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// StatCards lays out a snapshot: files, size, language count, the two
// largest languages, markdown info, then branch and commit when known.
func StatCards(s ingest.StatsSnapshot) []StatCard {
	cards := []StatCard{
		{Value: strconv.Itoa(s.TotalFiles), Label: "Files"},
		{Value: SizeLabel(s.TotalCharacters), Label: "Size"},
		{Value: strconv.Itoa(len(s.Languages)), Label: "Languages"},
	}

	for i, lang := range s.Languages {
		if i == 2 {
			break
		}
		cards = append(cards, StatCard{Value: strconv.Itoa(lang.Files), Label: lang.Name})
	}

	if s.MarkdownFiles > 0 {
		cards = append(cards, StatCard{
			Value: strconv.Itoa(s.MarkdownFiles),
			Label: "Markdown (" + SizeLabel(s.MarkdownCharacters) + ")",
		})
	}

	if s.GitBranch != "" {
		cards = append(cards, StatCard{Value: s.GitBranch, Label: "Branch"})
	}
	if s.GitCommit != "" {
		commit := s.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		cards = append(cards, StatCard{Value: commit, Label: "Commit"})
	}

	return cards
}
