package tracing

import "time"

// A TaskStep represents a milestone in the processing of task
type TaskStep struct {
	Time time.Time `json:"time"`
	What string    `json:"what"`
}

// A Task is a piece of work a domain performs, such as one compositor
// frame.
type Task struct {
	ID        string     `json:"id"`
	ParentID  string     `json:"parent_id"`
	Kind      string     `json:"kind"`
	What      string     `json:"what"`
	Location  string     `json:"location"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Steps     []TaskStep `json:"steps"`
	Detail    any        `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a TaskFilter that accepts every task.
func AllTasks(Task) bool {
	return true
}

// KindIs returns a TaskFilter accepting tasks of the given kind.
func KindIs(kind string) TaskFilter {
	return func(t Task) bool {
		return t.Kind == kind
	}
}
