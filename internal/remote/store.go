package remote

import "context"

// Store defines the operations the remote task store exposes.
// All REST calls go through this interface; the synchronizer never
// touches HTTP directly.
type Store interface {
	// ListTaskLists returns every task list with its nested tasks,
	// in server order.
	ListTaskLists(ctx context.Context) ([]TaskList, error)

	// CreateTaskList creates a new list and returns the stored copy.
	CreateTaskList(ctx context.Context, name, description string) (TaskList, error)

	// UpdateTaskList updates a list's name and description.
	// The returned list carries no task sequence.
	UpdateTaskList(ctx context.Context, id int, name, description string) (TaskList, error)

	// DeleteTaskList deletes a list and all of its tasks.
	DeleteTaskList(ctx context.Context, id int) error

	// CreateTask creates a task in the given list and returns the
	// stored copy.
	CreateTask(ctx context.Context, listID int, title, description string) (Task, error)

	// UpdateTask replaces a task's title, description and completed
	// flag, returning the full updated task.
	UpdateTask(ctx context.Context, id int, title, description string, completed bool) (Task, error)

	// ToggleTask flips a task's completed flag and returns only the
	// fields the server changed.
	ToggleTask(ctx context.Context, id int) (TaskToggle, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id int) error
}
