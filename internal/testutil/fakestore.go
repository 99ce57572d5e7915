// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tasktrack/internal/remote"
)

// FakeStore is an in-memory implementation of remote.Store for testing.
// It mimics the real server's response shapes: list updates come back
// without task sequences, toggles return only the changed fields.
type FakeStore struct {
	mu     sync.Mutex
	lists  []remote.TaskList
	nextID int

	// Now supplies timestamps; defaults to time.Now.
	Now func() time.Time

	// Calls counts invocations per method name.
	Calls map[string]int

	// Error injection per method.
	ListTaskListsErr  error
	CreateTaskListErr error
	UpdateTaskListErr error
	DeleteTaskListErr error
	CreateTaskErr     error
	UpdateTaskErr     error
	ToggleTaskErr     error
	DeleteTaskErr     error

	// CreateTaskGate, when non-nil, blocks CreateTask until the gate is
	// closed or receives. Used to hold a request in flight.
	CreateTaskGate chan struct{}

	// ToggleTaskGate, when non-nil, holds ToggleTask's response until
	// the gate is closed or receives.
	ToggleTaskGate chan struct{}
}

// NewFakeStore creates an empty fake store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		nextID: 1,
		Now:    time.Now,
		Calls:  make(map[string]int),
	}
}

// SeedList adds a list directly, bypassing call counting.
func (f *FakeStore) SeedList(name, description string) remote.TaskList {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := remote.TaskList{
		ID:          f.takeID(),
		Name:        name,
		Description: description,
		CreatedAt:   f.Now().UTC(),
		Tasks:       []remote.Task{},
	}
	f.lists = append(f.lists, list)
	return list
}

// SeedTask adds a task to a seeded list, bypassing call counting.
func (f *FakeStore) SeedTask(listID int, title string, completed bool) remote.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := remote.Task{
		ID:        f.takeID(),
		Title:     title,
		Completed: completed,
		CreatedAt: f.Now().UTC(),
		ListID:    listID,
	}
	for i := range f.lists {
		if f.lists[i].ID == listID {
			f.lists[i].Tasks = append(f.lists[i].Tasks, task)
			break
		}
	}
	return task
}

// ListTaskLists implements remote.Store.
func (f *FakeStore) ListTaskLists(ctx context.Context) ([]remote.TaskList, error) {
	f.count("ListTaskLists")
	if f.ListTaskListsErr != nil {
		return nil, f.ListTaskListsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]remote.TaskList, len(f.lists))
	for i, list := range f.lists {
		copied := list
		copied.Tasks = append([]remote.Task(nil), list.Tasks...)
		// The list endpoint never includes task_list_id on nested tasks.
		for j := range copied.Tasks {
			copied.Tasks[j].ListID = 0
		}
		out[i] = copied
	}
	return out, nil
}

// CreateTaskList implements remote.Store.
func (f *FakeStore) CreateTaskList(ctx context.Context, name, description string) (remote.TaskList, error) {
	f.count("CreateTaskList")
	if f.CreateTaskListErr != nil {
		return remote.TaskList{}, f.CreateTaskListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := remote.TaskList{
		ID:          f.takeID(),
		Name:        name,
		Description: description,
		CreatedAt:   f.Now().UTC(),
		Tasks:       []remote.Task{},
	}
	f.lists = append(f.lists, list)
	return list, nil
}

// UpdateTaskList implements remote.Store. Like the real server, the
// response carries no task sequence.
func (f *FakeStore) UpdateTaskList(ctx context.Context, id int, name, description string) (remote.TaskList, error) {
	f.count("UpdateTaskList")
	if f.UpdateTaskListErr != nil {
		return remote.TaskList{}, f.UpdateTaskListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		if f.lists[i].ID == id {
			now := f.Now().UTC()
			f.lists[i].Name = name
			f.lists[i].Description = description
			f.lists[i].UpdatedAt = &now
			resp := f.lists[i]
			resp.Tasks = nil
			return resp, nil
		}
	}
	return remote.TaskList{}, notFoundf("list %d", id)
}

// DeleteTaskList implements remote.Store.
func (f *FakeStore) DeleteTaskList(ctx context.Context, id int) error {
	f.count("DeleteTaskList")
	if f.DeleteTaskListErr != nil {
		return f.DeleteTaskListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		if f.lists[i].ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			return nil
		}
	}
	return notFoundf("list %d", id)
}

// CreateTask implements remote.Store.
func (f *FakeStore) CreateTask(ctx context.Context, listID int, title, description string) (remote.Task, error) {
	f.count("CreateTask")
	if f.CreateTaskGate != nil {
		<-f.CreateTaskGate
	}
	if f.CreateTaskErr != nil {
		return remote.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		if f.lists[i].ID == listID {
			task := remote.Task{
				ID:          f.takeID(),
				Title:       title,
				Description: description,
				CreatedAt:   f.Now().UTC(),
				ListID:      listID,
			}
			f.lists[i].Tasks = append(f.lists[i].Tasks, task)
			return task, nil
		}
	}
	return remote.Task{}, notFoundf("list %d", listID)
}

// UpdateTask implements remote.Store.
func (f *FakeStore) UpdateTask(ctx context.Context, id int, title, description string, completed bool) (remote.Task, error) {
	f.count("UpdateTask")
	if f.UpdateTaskErr != nil {
		return remote.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.findTask(id)
	if !ok {
		return remote.Task{}, notFoundf("task %d", id)
	}
	now := f.Now().UTC()
	task.Title = title
	task.Description = description
	task.Completed = completed
	task.UpdatedAt = &now
	return *task, nil
}

// ToggleTask implements remote.Store.
func (f *FakeStore) ToggleTask(ctx context.Context, id int) (remote.TaskToggle, error) {
	f.count("ToggleTask")
	if f.ToggleTaskErr != nil {
		return remote.TaskToggle{}, f.ToggleTaskErr
	}
	f.mu.Lock()
	task, ok := f.findTask(id)
	if !ok {
		f.mu.Unlock()
		return remote.TaskToggle{}, notFoundf("task %d", id)
	}
	now := f.Now().UTC()
	task.Completed = !task.Completed
	task.UpdatedAt = &now
	resp := remote.TaskToggle{ID: task.ID, Completed: task.Completed, UpdatedAt: &now}
	f.mu.Unlock()
	if f.ToggleTaskGate != nil {
		<-f.ToggleTaskGate
	}
	return resp, nil
}

// DeleteTask implements remote.Store.
func (f *FakeStore) DeleteTask(ctx context.Context, id int) error {
	f.count("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lists {
		for j := range f.lists[i].Tasks {
			if f.lists[i].Tasks[j].ID == id {
				f.lists[i].Tasks = append(f.lists[i].Tasks[:j], f.lists[i].Tasks[j+1:]...)
				return nil
			}
		}
	}
	return notFoundf("task %d", id)
}

// CallCount returns how many times the named method ran.
func (f *FakeStore) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

func (f *FakeStore) count(method string) {
	f.mu.Lock()
	f.Calls[method]++
	f.mu.Unlock()
}

// takeID hands out the next id. Callers must hold mu.
func (f *FakeStore) takeID() int {
	id := f.nextID
	f.nextID++
	return id
}

// findTask locates a task across all lists. Callers must hold mu.
func (f *FakeStore) findTask(id int) (*remote.Task, bool) {
	for i := range f.lists {
		for j := range f.lists[i].Tasks {
			if f.lists[i].Tasks[j].ID == id {
				return &f.lists[i].Tasks[j], true
			}
		}
	}
	return nil, false
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("not found: "+format, args...)
}
