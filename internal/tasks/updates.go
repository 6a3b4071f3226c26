package tasks

import (
	"fmt"

	"github.com/desertthunder/topten/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchMovie Phase = iota
	SaveMovie
	ImportFailed
	ImportDone
)

func (p Phase) String() string {
	switch p {
	case FetchMovie:
		return "fetch_movie"
	case SaveMovie:
		return "save_movie"
	case ImportFailed:
		return "import_failed"
	case ImportDone:
		return "import_done"
	default:
		return ""
	}
}

func fetchMovieUpdate(step, total int, externalID int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching TMDB movie %d...", externalID),
		Data:    externalID,
	}
}

func saveMovieUpdate(step, total int, movie *models.Movie) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveMovie,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Added %s", movie),
		Data:    movie,
	}
}

func importFailedUpdate(step, total int, externalID int64, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to import %d: %v", externalID, err),
		Data:    err,
	}
}

func importDoneUpdate(imported, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportDone,
		Step:    imported,
		Total:   total,
		Message: fmt.Sprintf("Imported %d of %d movies", imported, total),
	}
}
