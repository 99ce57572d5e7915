// Package remote defines the wire types and the backend-agnostic interface
// for the task tracker's remote store.
package remote

import "time"

// TaskList represents a named collection of tasks.
type TaskList struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`

	// Tasks is the server-ordered task sequence. Present on list
	// responses from GET /api/task-lists; absent on update responses.
	Tasks []Task `json:"tasks,omitempty"`
}

// Task represents a single task item owned by exactly one list.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	ListID      int        `json:"task_list_id,omitempty"`
}

// TaskToggle is the partial response from POST /api/tasks/{id}/toggle.
// Only these fields change on a toggle; everything else on the task is
// left untouched by the caller.
type TaskToggle struct {
	ID        int        `json:"id"`
	Completed bool       `json:"completed"`
	UpdatedAt *time.Time `json:"updated_at"`
}
