package tasks

import (
	"fmt"

	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
)

// ProgressUpdate represents a progress event during a check run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, the [URLResult] for CheckURL
}

// Operation phase enumeration
type Phase int

const (
	StartRun Phase = iota
	CheckURL
)

func (p Phase) String() string {
	switch p {
	case StartRun:
		return "start_run"
	case CheckURL:
		return "check_url"
	default:
		return ""
	}
}

func checkStartedUpdate(total int, kind models.CheckKind) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartRun,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Checking %s for %d URL(s)...", kind, total),
	}
}

func checkCompletedUpdate(step, total int, res URLResult) ProgressUpdate {
	mark := "✓"
	if res.Severity != ladder.OK {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   CheckURL,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s %s", step, total, mark, res.Severity, res.URL),
		Data:    res,
	}
}
