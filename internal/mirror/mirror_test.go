package mirror_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/mirror"
	"tasktrack/internal/testutil"
)

// memSelection is an in-memory SelectionStore recording its calls.
type memSelection struct {
	id     int
	ok     bool
	saves  int
	clears int
}

func (s *memSelection) Load() (int, bool, error) { return s.id, s.ok, nil }

func (s *memSelection) Save(id int) error {
	s.id = id
	s.ok = true
	s.saves++
	return nil
}

func (s *memSelection) Clear() error {
	s.id = 0
	s.ok = false
	s.clears++
	return nil
}

func newLoaded(t *testing.T) (*mirror.Mirror, *testutil.FakeStore, *memSelection) {
	t.Helper()
	fake := testutil.NewFakeStore()
	sel := &memSelection{}
	m := mirror.New(fake, sel)
	return m, fake, sel
}

func TestLoadListsSelectsFirstListWhenNothingPersisted(t *testing.T) {
	m, fake, _ := newLoaded(t)
	work := fake.SeedList("Work", "")

	require.NoError(t, m.LoadLists(context.Background()))

	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, work.ID, current.ID)
}

func TestLoadListsRestoresPersistedSelection(t *testing.T) {
	fake := testutil.NewFakeStore()
	fake.SeedList("Work", "")
	home := fake.SeedList("Home", "")
	sel := &memSelection{id: home.ID, ok: true}
	m := mirror.New(fake, sel)

	require.NoError(t, m.LoadLists(context.Background()))

	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, home.ID, current.ID)
}

func TestLoadListsFallsBackWhenPersistedIDIsStale(t *testing.T) {
	fake := testutil.NewFakeStore()
	work := fake.SeedList("Work", "")
	sel := &memSelection{id: 999, ok: true}
	m := mirror.New(fake, sel)

	require.NoError(t, m.LoadLists(context.Background()))

	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, work.ID, current.ID)
}

func TestLoadListsNoListsMeansNoSelection(t *testing.T) {
	m, _, _ := newLoaded(t)

	require.NoError(t, m.LoadLists(context.Background()))

	_, ok := m.CurrentList()
	assert.False(t, ok)
	assert.Empty(t, m.Lists())
}

func TestLoadListsFailureLeavesStateUnchanged(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	fake.SeedTask(list.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))

	fake.ListTaskListsErr = errors.New("boom")
	err := m.LoadLists(context.Background())
	require.Error(t, err)

	assert.Len(t, m.Lists(), 1)
	assert.Len(t, m.CurrentTasks(), 1)
}

func TestSelectListSucceedsForEveryLoadedList(t *testing.T) {
	m, fake, sel := newLoaded(t)
	ids := []int{
		fake.SeedList("Work", "").ID,
		fake.SeedList("Home", "").ID,
		fake.SeedList("Errands", "").ID,
	}
	require.NoError(t, m.LoadLists(context.Background()))

	for _, id := range ids {
		require.NoError(t, m.SelectList(id))
		current, ok := m.CurrentList()
		require.True(t, ok)
		assert.Equal(t, id, current.ID)
		assert.Equal(t, id, sel.id)
	}
}

func TestSelectListUnknownIDFails(t *testing.T) {
	m, fake, _ := newLoaded(t)
	fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	err := m.SelectList(42)
	assert.ErrorIs(t, err, mirror.ErrNotFound)
}

func TestCreateListEmptyNameNeverCallsServer(t *testing.T) {
	for _, desc := range []string{"", "some description", "   "} {
		m, fake, _ := newLoaded(t)
		require.NoError(t, m.LoadLists(context.Background()))

		_, err := m.CreateList(context.Background(), "   ", desc)
		assert.ErrorIs(t, err, mirror.ErrValidation)
		assert.Zero(t, fake.CallCount("CreateTaskList"))
		assert.Empty(t, m.Lists())
	}
}

func TestCreateListAppendsAndSelects(t *testing.T) {
	m, fake, sel := newLoaded(t)
	fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	created, err := m.CreateList(context.Background(), "Groceries", "weekly run")
	require.NoError(t, err)

	lists := m.Lists()
	require.Len(t, lists, 2)
	assert.Equal(t, created.ID, lists[1].ID)
	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, created.ID, current.ID)
	assert.Equal(t, created.ID, sel.id)
}

func TestUpdateListEmptyNameIsLocalValidation(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "old desc")
	require.NoError(t, m.LoadLists(context.Background()))

	_, err := m.UpdateList(context.Background(), list.ID, "", "desc")
	assert.ErrorIs(t, err, mirror.ErrValidation)
	assert.Zero(t, fake.CallCount("UpdateTaskList"))

	lists := m.Lists()
	require.Len(t, lists, 1)
	assert.Equal(t, "Work", lists[0].Name)
	assert.Equal(t, "old desc", lists[0].Description)
}

func TestUpdateListMergesWithoutTouchingTasks(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	fake.SeedTask(list.ID, "Buy milk", false)
	fake.SeedTask(list.ID, "Call plumber", true)
	require.NoError(t, m.LoadLists(context.Background()))

	updated, err := m.UpdateList(context.Background(), list.ID, "Office", "renamed")
	require.NoError(t, err)
	assert.Equal(t, "Office", updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	// The update response has no task sequence; membership survives.
	lists := m.Lists()
	require.Len(t, lists, 1)
	assert.Equal(t, "Office", lists[0].Name)
	assert.Len(t, lists[0].Tasks, 2)
	assert.Len(t, m.CurrentTasks(), 2)
}

func TestUpdateListCanClearDescription(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "old desc")
	require.NoError(t, m.LoadLists(context.Background()))

	updated, err := m.UpdateList(context.Background(), list.ID, "Work", "")
	require.NoError(t, err)
	assert.Empty(t, updated.Description)

	lists := m.Lists()
	require.Len(t, lists, 1)
	assert.Empty(t, lists[0].Description)
}

func TestUpdateListKeepsCurrentReference(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))
	require.NoError(t, m.SelectList(list.ID))

	_, err := m.UpdateList(context.Background(), list.ID, "Office", "")
	require.NoError(t, err)

	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, "Office", current.Name)
}

func TestDeleteListClearsSelectionOnlyWhenCurrent(t *testing.T) {
	m, fake, sel := newLoaded(t)
	work := fake.SeedList("Work", "")
	home := fake.SeedList("Home", "")
	fake.SeedTask(work.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))
	require.NoError(t, m.SelectList(work.ID))

	// Deleting a non-current list leaves the selection alone.
	require.NoError(t, m.DeleteList(context.Background(), home.ID))
	assert.Zero(t, sel.clears)
	current, ok := m.CurrentList()
	require.True(t, ok)
	assert.Equal(t, work.ID, current.ID)

	// Deleting the current list clears memory and persisted selection,
	// and its tasks leave the flat view.
	require.NoError(t, m.DeleteList(context.Background(), work.ID))
	assert.Equal(t, 1, sel.clears)
	_, ok = m.CurrentList()
	assert.False(t, ok)
	assert.Empty(t, m.CurrentTasks())
	assert.Empty(t, m.Lists())
}

func TestDeleteListFailureLeavesStateUnchanged(t *testing.T) {
	m, fake, _ := newLoaded(t)
	work := fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	fake.DeleteTaskListErr = errors.New("boom")
	err := m.DeleteList(context.Background(), work.ID)
	require.Error(t, err)
	assert.Len(t, m.Lists(), 1)
}

func TestCreateTaskEmptyTitleNeverCallsServer(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	_, err := m.CreateTask(context.Background(), list.ID, "  ", "desc")
	assert.ErrorIs(t, err, mirror.ErrValidation)
	assert.Zero(t, fake.CallCount("CreateTask"))
	assert.Empty(t, m.CurrentTasks())
}

func TestCreateTaskUnknownListFailsBeforeNetwork(t *testing.T) {
	m, fake, _ := newLoaded(t)
	fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	_, err := m.CreateTask(context.Background(), 42, "Buy milk", "")
	assert.ErrorIs(t, err, mirror.ErrNotFound)
	assert.Zero(t, fake.CallCount("CreateTask"))
}

func TestCreateTaskAppearsOnceInBothViews(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	created, err := m.CreateTask(context.Background(), list.ID, "Buy milk", "")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)

	flat := m.CurrentTasks()
	require.Len(t, flat, 1)
	assert.Equal(t, created.ID, flat[0].ID)

	lists := m.Lists()
	require.Len(t, lists, 1)
	require.Len(t, lists[0].Tasks, 1)
	assert.Equal(t, created.ID, lists[0].Tasks[0].ID)
}

func TestCreateTaskSingleFlight(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	require.NoError(t, m.LoadLists(context.Background()))

	gate := make(chan struct{})
	fake.CreateTaskGate = gate

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := m.CreateTask(context.Background(), list.ID, "first", "")
		assert.NoError(t, err)
	}()

	// Wait for the first request to be in flight.
	require.Eventually(t, func() bool {
		return fake.CallCount("CreateTask") == 1
	}, time.Second, time.Millisecond)

	_, err := m.CreateTask(context.Background(), list.ID, "second", "")
	assert.ErrorIs(t, err, mirror.ErrInFlight)

	close(gate)
	wg.Wait()

	assert.Equal(t, 1, fake.CallCount("CreateTask"))
	assert.Len(t, m.CurrentTasks(), 1)
}

func TestUpdateTaskFullyReplaces(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	task := fake.SeedTask(list.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))

	updated, err := m.UpdateTask(context.Background(), task.ID, "Buy oat milk", "from the corner shop", true)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.Equal(t, "from the corner shop", updated.Description)
	assert.True(t, updated.Completed)

	flat := m.CurrentTasks()
	require.Len(t, flat, 1)
	assert.Equal(t, updated, flat[0])

	lists := m.Lists()
	require.Len(t, lists[0].Tasks, 1)
	assert.Equal(t, updated, lists[0].Tasks[0])
}

func TestUpdateTaskEmptyTitleNeverCallsServer(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	task := fake.SeedTask(list.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))

	_, err := m.UpdateTask(context.Background(), task.ID, "", "", false)
	assert.ErrorIs(t, err, mirror.ErrValidation)
	assert.Zero(t, fake.CallCount("UpdateTask"))

	flat := m.CurrentTasks()
	require.Len(t, flat, 1)
	assert.Equal(t, "Buy milk", flat[0].Title)
}

func TestToggleTaskChangesOnlyCompletedAndUpdatedAt(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	fake.SeedTask(list.ID, "Buy milk", false)
	task := fake.SeedTask(list.ID, "Call plumber", false)
	require.NoError(t, m.LoadLists(context.Background()))

	before, ok := m.Task(task.ID)
	require.True(t, ok)

	toggled, err := m.ToggleTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.NotNil(t, toggled.UpdatedAt)

	// Everything else is untouched, in both views.
	for _, got := range []struct {
		name string
		task func() (int, string, string, time.Time)
	}{
		{"flat", func() (int, string, string, time.Time) {
			tasks := m.CurrentTasks()
			return tasks[1].ID, tasks[1].Title, tasks[1].Description, tasks[1].CreatedAt
		}},
		{"nested", func() (int, string, string, time.Time) {
			lists := m.Lists()
			nested := lists[0].Tasks[1]
			return nested.ID, nested.Title, nested.Description, nested.CreatedAt
		}},
	} {
		id, title, desc, createdAt := got.task()
		assert.Equal(t, before.ID, id, got.name)
		assert.Equal(t, before.Title, title, got.name)
		assert.Equal(t, before.Description, desc, got.name)
		assert.Equal(t, before.CreatedAt, createdAt, got.name)
	}

	flat := m.CurrentTasks()
	assert.True(t, flat[1].Completed)
	lists := m.Lists()
	assert.True(t, lists[0].Tasks[1].Completed)
}

func TestToggleTaskSurvivesConcurrentDelete(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	task := fake.SeedTask(list.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))

	gate := make(chan struct{})
	fake.ToggleTaskGate = gate

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		toggled, err := m.ToggleTask(context.Background(), task.ID)
		// The deleted task is not resurrected, but the caller still
		// gets a real task back, not a zero value.
		assert.NoError(t, err)
		assert.Equal(t, task.ID, toggled.ID)
		assert.Equal(t, "Buy milk", toggled.Title)
		assert.True(t, toggled.Completed)
	}()

	// Wait until the store has applied the toggle, which means the
	// response is computed and held at the gate.
	require.Eventually(t, func() bool {
		lists, err := fake.ListTaskLists(context.Background())
		return err == nil && lists[0].Tasks[0].Completed
	}, time.Second, time.Millisecond)

	require.NoError(t, m.DeleteTask(context.Background(), task.ID))
	close(gate)
	wg.Wait()

	_, ok := m.Task(task.ID)
	assert.False(t, ok)
	assert.Empty(t, m.CurrentTasks())
}

func TestToggleTaskFailureLeavesTaskUnchanged(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	task := fake.SeedTask(list.ID, "Buy milk", false)
	require.NoError(t, m.LoadLists(context.Background()))

	fake.ToggleTaskErr = errors.New("boom")
	_, err := m.ToggleTask(context.Background(), task.ID)
	require.Error(t, err)

	got, ok := m.Task(task.ID)
	require.True(t, ok)
	assert.False(t, got.Completed)
	assert.Nil(t, got.UpdatedAt)
}

func TestDeleteTaskRemovesFromBothViews(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	first := fake.SeedTask(list.ID, "Buy milk", false)
	second := fake.SeedTask(list.ID, "Call plumber", false)
	require.NoError(t, m.LoadLists(context.Background()))

	require.NoError(t, m.DeleteTask(context.Background(), first.ID))

	flat := m.CurrentTasks()
	require.Len(t, flat, 1)
	assert.Equal(t, second.ID, flat[0].ID)

	lists := m.Lists()
	require.Len(t, lists[0].Tasks, 1)
	assert.Equal(t, second.ID, lists[0].Tasks[0].ID)

	_, ok := m.Task(first.ID)
	assert.False(t, ok)
}

func TestOperationsFireOnChange(t *testing.T) {
	m, fake, _ := newLoaded(t)
	list := fake.SeedList("Work", "")
	task := fake.SeedTask(list.ID, "Buy milk", false)

	var snaps []mirror.Snapshot
	m.SetOnChange(func(snap mirror.Snapshot) {
		snaps = append(snaps, snap)
	})

	ctx := context.Background()
	require.NoError(t, m.LoadLists(ctx))
	_, err := m.ToggleTask(ctx, task.ID)
	require.NoError(t, err)
	require.NoError(t, m.DeleteTask(ctx, task.ID))

	require.Len(t, snaps, 3)
	assert.True(t, snaps[1].Tasks[0].Completed)
	assert.Empty(t, snaps[2].Tasks)
}

func TestValidationFailureDoesNotFireOnChange(t *testing.T) {
	m, fake, _ := newLoaded(t)
	fake.SeedList("Work", "")

	fired := 0
	m.SetOnChange(func(mirror.Snapshot) { fired++ })

	ctx := context.Background()
	require.NoError(t, m.LoadLists(ctx))
	_, err := m.CreateList(ctx, "", "")
	require.Error(t, err)

	assert.Equal(t, 1, fired) // only the load
}
