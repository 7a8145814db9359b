package tasklist

import (
	"time"

	"github.com/Gadeoli/todoapp-mobile/pkg/types"
)

// MaxDateFormat documents the shape of the ?date= filter
const MaxDateFormat = "YYYY-MM-DD HH:mm:ss"

// endOfDay is appended after formatting: 2 and 3 are layout tokens.
const endOfDay = " 23:59:59"

// State is the persisted preference blob
type State struct {
	ShowDoneTasks bool `json:"showDoneTasks"`
}

// DefaultState is used when nothing has been persisted yet
func DefaultState() State {
	return State{ShowDoneTasks: true}
}

// MaxDate returns the last second of the day daysAhead days after now
func MaxDate(now time.Time, daysAhead int) string {
	return now.AddDate(0, 0, daysAhead).Format("2006-01-02") + endOfDay
}

// Visible derives the displayed tasks. With showDone every task is kept;
// otherwise only pending ones, in their original order. The result never
// aliases tasks.
func Visible(tasks []types.Task, showDone bool) []types.Task {
	visible := make([]types.Task, 0, len(tasks))
	for _, t := range tasks {
		if showDone || t.DoneAt == nil {
			visible = append(visible, t)
		}
	}
	return visible
}
