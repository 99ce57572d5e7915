// Package mirror holds the client-side mirror of the remote task store
// and keeps it consistent with server responses.
//
// The mirror is never authoritative: every mutation is a round trip, and
// local state changes only after the server confirms. A failed request
// leaves prior state untouched. Tasks are stored once, keyed by id, with
// per-list ordering kept separately; the "current tasks" view is derived
// from those two structures, so a task can never go stale in one view
// while updated in another.
package mirror

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"tasktrack/internal/remote"
)

// opClass identifies an operation class for in-flight guarding. A second
// call of the same class while one is outstanding is rejected with
// ErrInFlight before any network traffic.
type opClass string

const (
	opLoad       opClass = "load"
	opCreateList opClass = "create-list"
	opUpdateList opClass = "update-list"
	opDeleteList opClass = "delete-list"
	opCreateTask opClass = "create-task"
	opUpdateTask opClass = "update-task"
	opToggleTask opClass = "toggle-task"
	opDeleteTask opClass = "delete-task"
)

// Snapshot is an immutable copy of the mirror's state, safe to hand to a
// renderer. Lists carry their task sequences in server order.
type Snapshot struct {
	Lists     []remote.TaskList
	CurrentID int
	Tasks     []remote.Task
}

// Mirror owns the local mirror of the remote store. All methods are safe
// for concurrent use; network calls run outside the state lock and merges
// are applied in response order.
type Mirror struct {
	store     remote.Store
	selection SelectionStore
	onChange  func(Snapshot)

	mu       sync.Mutex
	inflight map[opClass]bool
	lists    []remote.TaskList   // metadata only; task sequences live in order
	tasks    map[int]remote.Task // single source of truth, keyed by id
	order    map[int][]int       // list id -> task ids in server order
	current  int                 // current list id; 0 means none
}

// New creates a mirror backed by the given remote store. selection may be
// nil, in which case the selected list is not persisted across sessions.
func New(store remote.Store, selection SelectionStore) *Mirror {
	return &Mirror{
		store:     store,
		selection: selection,
		inflight:  make(map[opClass]bool),
		tasks:     make(map[int]remote.Task),
		order:     make(map[int][]int),
	}
}

// SetOnChange registers a callback invoked with a fresh snapshot after
// every successful state-changing operation. The callback runs outside
// the state lock.
func (m *Mirror) SetOnChange(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// LoadLists fetches the full list set and replaces the mirror's contents.
// Selection is restored in this order: the currently selected id if still
// present, the persisted id if valid, the first list, none.
func (m *Mirror) LoadLists(ctx context.Context) error {
	m.mu.Lock()
	if !m.begin(opLoad) {
		m.mu.Unlock()
		return ErrInFlight
	}
	m.mu.Unlock()

	lists, err := m.store.ListTaskLists(ctx)

	m.mu.Lock()
	m.end(opLoad)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	m.replaceAll(lists)
	m.restoreSelection()
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// SelectList makes the list with the given id current and persists the
// choice for the next session. No network call is involved.
func (m *Mirror) SelectList(id int) error {
	m.mu.Lock()
	if _, ok := m.listIndex(id); !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: list %d", ErrNotFound, id)
	}
	m.current = id
	snap := m.snapshot()
	m.mu.Unlock()

	if m.selection != nil {
		// Best effort: the in-memory selection is already applied.
		_ = m.selection.Save(id)
	}
	m.notify(snap)
	return nil
}

// CreateList creates a list on the server, appends the returned list to
// the mirror and selects it.
func (m *Mirror) CreateList(ctx context.Context, name, description string) (remote.TaskList, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return remote.TaskList{}, fmt.Errorf("%w: list name cannot be empty", ErrValidation)
	}

	m.mu.Lock()
	if !m.begin(opCreateList) {
		m.mu.Unlock()
		return remote.TaskList{}, ErrInFlight
	}
	m.mu.Unlock()

	created, err := m.store.CreateTaskList(ctx, name, description)

	m.mu.Lock()
	m.end(opCreateList)
	if err != nil {
		m.mu.Unlock()
		return remote.TaskList{}, err
	}

	meta := created
	meta.Tasks = nil
	m.lists = append(m.lists, meta)
	m.order[created.ID] = nil
	m.current = created.ID
	snap := m.snapshot()
	m.mu.Unlock()

	if m.selection != nil {
		_ = m.selection.Save(created.ID)
	}
	m.notify(snap)
	return created, nil
}

// UpdateList updates a list's name and description, merging the server
// response shallowly into the matching entry. Task membership is not
// affected.
func (m *Mirror) UpdateList(ctx context.Context, id int, name, description string) (remote.TaskList, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return remote.TaskList{}, fmt.Errorf("%w: list name cannot be empty", ErrValidation)
	}

	m.mu.Lock()
	if _, ok := m.listIndex(id); !ok {
		m.mu.Unlock()
		return remote.TaskList{}, fmt.Errorf("%w: list %d", ErrNotFound, id)
	}
	if !m.begin(opUpdateList) {
		m.mu.Unlock()
		return remote.TaskList{}, ErrInFlight
	}
	m.mu.Unlock()

	updated, err := m.store.UpdateTaskList(ctx, id, name, description)

	m.mu.Lock()
	m.end(opUpdateList)
	if err != nil {
		m.mu.Unlock()
		return remote.TaskList{}, err
	}

	if i, ok := m.listIndex(id); ok {
		mergeListMeta(&m.lists[i], updated)
		updated = m.lists[i]
	}
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return updated, nil
}

// DeleteList deletes a list and its tasks. If the deleted list was
// current, the selection is cleared both in memory and in the persisted
// store.
func (m *Mirror) DeleteList(ctx context.Context, id int) error {
	m.mu.Lock()
	if _, ok := m.listIndex(id); !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: list %d", ErrNotFound, id)
	}
	if !m.begin(opDeleteList) {
		m.mu.Unlock()
		return ErrInFlight
	}
	m.mu.Unlock()

	err := m.store.DeleteTaskList(ctx, id)

	m.mu.Lock()
	m.end(opDeleteList)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	wasCurrent := m.current == id
	if i, ok := m.listIndex(id); ok {
		m.lists = append(m.lists[:i], m.lists[i+1:]...)
	}
	for _, taskID := range m.order[id] {
		delete(m.tasks, taskID)
	}
	delete(m.order, id)
	if wasCurrent {
		m.current = 0
	}
	snap := m.snapshot()
	m.mu.Unlock()

	if wasCurrent && m.selection != nil {
		_ = m.selection.Clear()
	}
	m.notify(snap)
	return nil
}

// CreateTask creates a task in the given list and appends the server's
// copy to that list's sequence.
func (m *Mirror) CreateTask(ctx context.Context, listID int, title, description string) (remote.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return remote.Task{}, fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	}

	m.mu.Lock()
	if _, ok := m.listIndex(listID); !ok {
		m.mu.Unlock()
		return remote.Task{}, fmt.Errorf("%w: list %d", ErrNotFound, listID)
	}
	if !m.begin(opCreateTask) {
		m.mu.Unlock()
		return remote.Task{}, ErrInFlight
	}
	m.mu.Unlock()

	created, err := m.store.CreateTask(ctx, listID, title, description)

	m.mu.Lock()
	m.end(opCreateTask)
	if err != nil {
		m.mu.Unlock()
		return remote.Task{}, err
	}

	if created.ListID == 0 {
		created.ListID = listID
	}
	// The list may have been deleted while the request was outstanding;
	// in that case the response is dropped.
	if _, ok := m.listIndex(listID); ok {
		m.tasks[created.ID] = created
		m.order[listID] = append(m.order[listID], created.ID)
	}
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return created, nil
}

// UpdateTask replaces the matching task with the full server response,
// keeping its position in the owning list's sequence.
func (m *Mirror) UpdateTask(ctx context.Context, id int, title, description string, completed bool) (remote.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return remote.Task{}, fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	}

	m.mu.Lock()
	prev, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return remote.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if !m.begin(opUpdateTask) {
		m.mu.Unlock()
		return remote.Task{}, ErrInFlight
	}
	m.mu.Unlock()

	updated, err := m.store.UpdateTask(ctx, id, title, description, completed)

	m.mu.Lock()
	m.end(opUpdateTask)
	if err != nil {
		m.mu.Unlock()
		return remote.Task{}, err
	}

	if updated.ListID == 0 {
		updated.ListID = prev.ListID
	}
	if _, ok := m.tasks[id]; ok {
		m.tasks[id] = updated
	}
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return updated, nil
}

// ToggleTask flips a task's completed flag. Only the two fields the
// server returns (completed, updated_at) are applied; everything else on
// the task stays as it was.
func (m *Mirror) ToggleTask(ctx context.Context, id int) (remote.Task, error) {
	m.mu.Lock()
	prev, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return remote.Task{}, fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if !m.begin(opToggleTask) {
		m.mu.Unlock()
		return remote.Task{}, ErrInFlight
	}
	m.mu.Unlock()

	toggle, err := m.store.ToggleTask(ctx, id)

	m.mu.Lock()
	m.end(opToggleTask)
	if err != nil {
		m.mu.Unlock()
		return remote.Task{}, err
	}

	// The task may have been deleted while the request was outstanding;
	// the toggle still applies to the pre-call copy handed back.
	task, present := m.tasks[id]
	if !present {
		task = prev
	}
	task.Completed = toggle.Completed
	task.UpdatedAt = toggle.UpdatedAt
	if present {
		m.tasks[id] = task
	}
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return task, nil
}

// DeleteTask removes a task from the mirror after the server confirms
// the deletion.
func (m *Mirror) DeleteTask(ctx context.Context, id int) error {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: task %d", ErrNotFound, id)
	}
	if !m.begin(opDeleteTask) {
		m.mu.Unlock()
		return ErrInFlight
	}
	m.mu.Unlock()

	err := m.store.DeleteTask(ctx, id)

	m.mu.Lock()
	m.end(opDeleteTask)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	delete(m.tasks, id)
	ids := m.order[task.ListID]
	for i, taskID := range ids {
		if taskID == id {
			m.order[task.ListID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	snap := m.snapshot()
	m.mu.Unlock()

	m.notify(snap)
	return nil
}

// Lists returns all known lists in server order, task sequences included.
func (m *Mirror) Lists() []remote.TaskList {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.denormalizedLists()
}

// CurrentList returns the current list, or ok=false when none is selected.
func (m *Mirror) CurrentList() (remote.TaskList, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.listIndex(m.current)
	if !ok {
		return remote.TaskList{}, false
	}
	list := m.lists[i]
	list.Tasks = m.tasksOf(list.ID)
	return list, true
}

// CurrentTasks returns the current list's tasks in server order. The
// slice is derived from the task map, so it always reflects the latest
// merged state.
func (m *Mirror) CurrentTasks() []remote.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasksOf(m.current)
}

// Task looks up a task by id anywhere in the mirror.
func (m *Mirror) Task(id int) (remote.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	return task, ok
}

// Snapshot returns a copy of the full mirror state for rendering.
func (m *Mirror) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

// begin marks an operation class as in flight. Callers must hold mu.
func (m *Mirror) begin(op opClass) bool {
	if m.inflight[op] {
		return false
	}
	m.inflight[op] = true
	return true
}

// end releases an operation class. Callers must hold mu.
func (m *Mirror) end(op opClass) {
	delete(m.inflight, op)
}

// replaceAll rebuilds the mirror from a freshly loaded list set.
// Callers must hold mu.
func (m *Mirror) replaceAll(lists []remote.TaskList) {
	m.lists = make([]remote.TaskList, 0, len(lists))
	m.tasks = make(map[int]remote.Task)
	m.order = make(map[int][]int)

	for _, list := range lists {
		ids := make([]int, 0, len(list.Tasks))
		for _, task := range list.Tasks {
			// The list endpoint omits task_list_id on nested tasks.
			task.ListID = list.ID
			m.tasks[task.ID] = task
			ids = append(ids, task.ID)
		}
		m.order[list.ID] = ids

		meta := list
		meta.Tasks = nil
		m.lists = append(m.lists, meta)
	}
}

// restoreSelection re-establishes the current list after a load: keep the
// in-memory selection when still valid, else the persisted id, else the
// first list, else none. Callers must hold mu.
func (m *Mirror) restoreSelection() {
	if _, ok := m.listIndex(m.current); ok {
		return
	}
	m.current = 0

	if m.selection != nil {
		if id, ok, err := m.selection.Load(); err == nil && ok {
			if _, present := m.listIndex(id); present {
				m.current = id
				return
			}
		}
	}
	if len(m.lists) > 0 {
		m.current = m.lists[0].ID
	}
}

// listIndex finds a list's position by id. Callers must hold mu.
func (m *Mirror) listIndex(id int) (int, bool) {
	for i := range m.lists {
		if m.lists[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// tasksOf derives a list's task sequence. Callers must hold mu.
func (m *Mirror) tasksOf(listID int) []remote.Task {
	ids := m.order[listID]
	tasks := make([]remote.Task, 0, len(ids))
	for _, id := range ids {
		if task, ok := m.tasks[id]; ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// denormalizedLists copies the list metadata with task sequences filled
// in. Callers must hold mu.
func (m *Mirror) denormalizedLists() []remote.TaskList {
	lists := make([]remote.TaskList, len(m.lists))
	for i, list := range m.lists {
		list.Tasks = m.tasksOf(list.ID)
		lists[i] = list
	}
	return lists
}

// snapshot builds a Snapshot. Callers must hold mu.
func (m *Mirror) snapshot() Snapshot {
	return Snapshot{
		Lists:     m.denormalizedLists(),
		CurrentID: m.current,
		Tasks:     m.tasksOf(m.current),
	}
}

// notify invokes the change callback, if any, outside the state lock.
func (m *Mirror) notify(snap Snapshot) {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

// mergeListMeta applies an update response onto an existing list entry.
// The server may omit fields; only what it sends is taken, and the task
// sequence is never part of an update response.
func mergeListMeta(dst *remote.TaskList, src remote.TaskList) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	// Update responses always carry description, and empty is a valid
	// value (a cleared description), so it is taken as-is.
	dst.Description = src.Description
	if !src.CreatedAt.IsZero() {
		dst.CreatedAt = src.CreatedAt
	}
	if src.UpdatedAt != nil {
		dst.UpdatedAt = src.UpdatedAt
	}
}
