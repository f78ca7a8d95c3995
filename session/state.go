package session

import (
	"github.com/git1file/git1file/ingest"
	"github.com/git1file/git1file/render"
)

// Phase is the submission lifecycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResults
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseResults:
		return "results"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the controller's single source of truth. Stats visibility is
// independent of the phase.
type State struct {
	Phase  Phase
	Result *render.Rendered      // set in PhaseResults
	Err    string                // set in PhaseError
	Stats  *ingest.StatsSnapshot // nil = stats panel hidden
}

// Busy reports whether a submission is in flight
func (s State) Busy() bool {
	return s.Phase == PhaseLoading
}
