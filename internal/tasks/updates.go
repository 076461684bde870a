package tasks

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchGenres Phase = iota
	FetchPages
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchGenres:
		return "fetch_genres"
	case FetchPages:
		return "fetch_pages"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func fetchingGenresUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    1,
		Total:   1,
		Message: "Fetching genre catalog...",
	}
}

func foundGenresUpdate(genres []models.Genre) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchGenres,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d genres", len(genres)),
		Data:    genres,
	}
}

func pageLoadedUpdate(filter *models.Genre, page int, items int) ProgressUpdate {
	total := 0
	if filter != nil {
		total = filter.Count
	}
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    items,
		Total:   total,
		Message: fmt.Sprintf("%s: page %d loaded (%d movies so far)", label(filter), page, items),
	}
}

func exportCompletedUpdate(step, total int, res GenreExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d movies) → %s", step, total, res.Genre, res.Count, res.Path),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res GenreExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Genre, res.Err),
		Data:    res,
	}
}

func label(filter *models.Genre) string {
	if filter == nil {
		return models.AllGenresName
	}
	return filter.Name
}
