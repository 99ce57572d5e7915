package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tasktrack/internal/remote"
)

// Storage errors surfaced to the handlers.
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
)

// DB persists task lists and tasks in SQLite.
type DB struct {
	db *sql.DB
}

// OpenDB opens (and if necessary creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func OpenDB(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	d := &DB{db: db}
	if err := d.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func sqliteDSN(dbPath string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	if dbPath == ":memory:" {
		return "file::memory:?" + q.Encode()
	}
	return "file:" + dbPath + "?" + q.Encode()
}

func (d *DB) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS task_lists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT DEFAULT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT DEFAULT NULL,
	task_list_id INTEGER NOT NULL REFERENCES task_lists(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(task_list_id);`
	_, err := d.db.Exec(ddl)
	return err
}

// ListTaskLists returns all lists with their task sequences, ordered by id.
func (d *DB) ListTaskLists(ctx context.Context) ([]remote.TaskList, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM task_lists ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []remote.TaskList
	index := make(map[int]int)
	for rows.Next() {
		list, err := scanTaskList(rows)
		if err != nil {
			return nil, err
		}
		list.Tasks = []remote.Task{}
		index[list.ID] = len(lists)
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	taskRows, err := d.db.QueryContext(ctx,
		`SELECT id, title, description, completed, created_at, updated_at, task_list_id FROM tasks ORDER BY id;`)
	if err != nil {
		return nil, err
	}
	defer taskRows.Close()

	for taskRows.Next() {
		task, err := scanTask(taskRows)
		if err != nil {
			return nil, err
		}
		if i, ok := index[task.ListID]; ok {
			lists[i].Tasks = append(lists[i].Tasks, task)
		}
	}
	return lists, taskRows.Err()
}

// GetTaskList returns one list without its task sequence.
func (d *DB) GetTaskList(ctx context.Context, id int) (remote.TaskList, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM task_lists WHERE id = ?;`, id)
	list, err := scanTaskList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return remote.TaskList{}, ErrNotFound
	}
	return list, err
}

// CreateTaskList inserts a new list. The name must be unique.
func (d *DB) CreateTaskList(ctx context.Context, name, description string) (remote.TaskList, error) {
	if taken, err := d.nameTaken(ctx, name, 0); err != nil {
		return remote.TaskList{}, err
	} else if taken {
		return remote.TaskList{}, ErrDuplicateName
	}

	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO task_lists (name, description, created_at) VALUES (?, ?, ?);`,
		name, description, formatTime(now))
	if err != nil {
		return remote.TaskList{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return remote.TaskList{}, err
	}
	return remote.TaskList{
		ID:          int(id),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		Tasks:       []remote.Task{},
	}, nil
}

// UpdateTaskList updates a list's name and description.
func (d *DB) UpdateTaskList(ctx context.Context, id int, name, description string) (remote.TaskList, error) {
	if _, err := d.GetTaskList(ctx, id); err != nil {
		return remote.TaskList{}, err
	}
	if taken, err := d.nameTaken(ctx, name, id); err != nil {
		return remote.TaskList{}, err
	} else if taken {
		return remote.TaskList{}, ErrDuplicateName
	}

	now := time.Now().UTC()
	_, err := d.db.ExecContext(ctx,
		`UPDATE task_lists SET name = ?, description = ?, updated_at = ? WHERE id = ?;`,
		name, description, formatTime(now), id)
	if err != nil {
		return remote.TaskList{}, err
	}
	return d.GetTaskList(ctx, id)
}

// DeleteTaskList removes a list; its tasks go with it via the cascade.
func (d *DB) DeleteTaskList(ctx context.Context, id int) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM task_lists WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CreateTask inserts a task into the given list.
func (d *DB) CreateTask(ctx context.Context, listID int, title, description string) (remote.Task, error) {
	if _, err := d.GetTaskList(ctx, listID); err != nil {
		return remote.Task{}, err
	}

	now := time.Now().UTC()
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, created_at, task_list_id) VALUES (?, ?, ?, ?);`,
		title, description, formatTime(now), listID)
	if err != nil {
		return remote.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return remote.Task{}, err
	}
	return remote.Task{
		ID:          int(id),
		Title:       title,
		Description: description,
		CreatedAt:   now,
		ListID:      listID,
	}, nil
}

// GetTask returns one task.
func (d *DB) GetTask(ctx context.Context, id int) (remote.Task, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, title, description, completed, created_at, updated_at, task_list_id FROM tasks WHERE id = ?;`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return remote.Task{}, ErrNotFound
	}
	return task, err
}

// UpdateTask applies the non-nil fields to a task and returns the full
// updated row.
func (d *DB) UpdateTask(ctx context.Context, id int, title, description *string, completed *bool) (remote.Task, error) {
	task, err := d.GetTask(ctx, id)
	if err != nil {
		return remote.Task{}, err
	}

	if title != nil {
		task.Title = *title
	}
	if description != nil {
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}
	now := time.Now().UTC()
	task.UpdatedAt = &now

	_, err = d.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ?, updated_at = ? WHERE id = ?;`,
		task.Title, task.Description, boolToInt(task.Completed), formatTime(now), id)
	if err != nil {
		return remote.Task{}, err
	}
	return task, nil
}

// ToggleTask flips a task's completed flag and returns the updated row.
func (d *DB) ToggleTask(ctx context.Context, id int) (remote.Task, error) {
	task, err := d.GetTask(ctx, id)
	if err != nil {
		return remote.Task{}, err
	}

	task.Completed = !task.Completed
	now := time.Now().UTC()
	task.UpdatedAt = &now

	_, err = d.db.ExecContext(ctx,
		`UPDATE tasks SET completed = ?, updated_at = ? WHERE id = ?;`,
		boolToInt(task.Completed), formatTime(now), id)
	if err != nil {
		return remote.Task{}, err
	}
	return task, nil
}

// DeleteTask removes one task.
func (d *DB) DeleteTask(ctx context.Context, id int) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// nameTaken reports whether another list (id != exclude) already uses name.
func (d *DB) nameTaken(ctx context.Context, name string, exclude int) (bool, error) {
	var id int
	err := d.db.QueryRowContext(ctx,
		`SELECT id FROM task_lists WHERE name = ? AND id != ?;`, name, exclude).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTaskList(s scanner) (remote.TaskList, error) {
	var (
		list      remote.TaskList
		createdAt string
		updatedAt sql.NullString
	)
	if err := s.Scan(&list.ID, &list.Name, &list.Description, &createdAt, &updatedAt); err != nil {
		return remote.TaskList{}, err
	}
	var err error
	if list.CreatedAt, err = parseTime(createdAt); err != nil {
		return remote.TaskList{}, err
	}
	if list.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return remote.TaskList{}, err
	}
	return list, nil
}

func scanTask(s scanner) (remote.Task, error) {
	var (
		task      remote.Task
		completed int
		createdAt string
		updatedAt sql.NullString
	)
	if err := s.Scan(&task.ID, &task.Title, &task.Description, &completed, &createdAt, &updatedAt, &task.ListID); err != nil {
		return remote.Task{}, err
	}
	task.Completed = completed != 0
	var err error
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return remote.Task{}, err
	}
	if task.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return remote.Task{}, err
	}
	return task, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
