package session

import (
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/render"
)

// View is the presentation the controller drives. Every method is called on
// the dispatcher goroutine.
type View interface {
	// SetBusy disables the submit trigger and shows the busy indicator
	SetBusy(busy bool)

	ShowStats(cards []render.StatCard, snapshot ingest.StatsSnapshot)
	HideStats()

	ShowResults(result render.Rendered)
	HideResults()

	// Notify shows a blocking message to the user
	Notify(message string)

	WriteClipboard(text string) error
}
