package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ImportLines Phase = iota
	ImportDone
	ExportShelf
)

func (p Phase) String() string {
	switch p {
	case ImportLines:
		return "import_lines"
	case ImportDone:
		return "import_done"
	case ExportShelf:
		return "export_shelf"
	default:
		return ""
	}
}

func importStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportLines,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d lines...", total),
	}
}

func importLineUpdate(step, total int, line string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportLines,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, line),
	}
}

func importDoneUpdate(result *ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    result.Total,
		Total:   result.Total,
		Message: result.Summary(),
		Data:    result,
	}
}

func exportUpdate(count int, format, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportShelf,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exported %d items as %s to %s", count, format, path),
	}
}
