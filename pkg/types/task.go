package types

import "time"

// Task represents a task as returned by the task service
type Task struct {
	ID         int64      `json:"id" yaml:"id"`
	Desc       string     `json:"desc" yaml:"desc"`
	EstimateAt time.Time  `json:"estimateAt" yaml:"estimate_at"`
	DoneAt     *time.Time `json:"doneAt" yaml:"done_at"` // nil while pending
	UserID     int64      `json:"userId,omitempty" yaml:"user_id,omitempty"`
}

// Done reports whether the service has marked the task as completed
func (t Task) Done() bool {
	return t.DoneAt != nil
}

// Draft holds the input of the add-task surface
type Draft struct {
	Desc string
	Date time.Time
}
