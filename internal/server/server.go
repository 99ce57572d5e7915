// Package server implements the task tracker's REST store: the JSON
// contract the client synchronizer depends on, backed by SQLite.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"tasktrack/internal/mirror"
	"tasktrack/internal/remote"
	"tasktrack/internal/render"
)

// Server serves the REST API and a rendered index page.
type Server struct {
	db     *DB
	logger *slog.Logger
}

// New creates a server over the given database. logger may be nil.
func New(db *DB, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{db: db, logger: logger}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.Methods(http.MethodGet).Path("/api/task-lists").HandlerFunc(s.getTaskLists)
	r.Methods(http.MethodPost).Path("/api/task-lists").HandlerFunc(s.createTaskList)
	r.Methods(http.MethodPut).Path("/api/task-lists/{id:[0-9]+}").HandlerFunc(s.updateTaskList)
	r.Methods(http.MethodDelete).Path("/api/task-lists/{id:[0-9]+}").HandlerFunc(s.deleteTaskList)
	r.Methods(http.MethodPost).Path("/api/task-lists/{id:[0-9]+}/tasks").HandlerFunc(s.createTask)
	r.Methods(http.MethodPut).Path("/api/tasks/{id:[0-9]+}").HandlerFunc(s.updateTask)
	r.Methods(http.MethodPost).Path("/api/tasks/{id:[0-9]+}/toggle").HandlerFunc(s.toggleTask)
	r.Methods(http.MethodDelete).Path("/api/tasks/{id:[0-9]+}").HandlerFunc(s.deleteTask)
	r.Methods(http.MethodGet).Path("/").HandlerFunc(s.index)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, req)
		s.logger.Info("handled",
			"method", req.Method,
			"url", req.URL.String(),
			"duration", m.Duration,
			"status", m.Code)
	})
}

// index serves a server-rendered snapshot of all lists, with the first
// list shown as current.
func (s *Server) index(w http.ResponseWriter, req *http.Request) {
	lists, err := s.db.ListTaskLists(req.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	snap := mirror.Snapshot{Lists: lists}
	if len(lists) > 0 {
		snap.CurrentID = lists[0].ID
		snap.Tasks = lists[0].Tasks
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(render.HTML(snap)))
}

func (s *Server) getTaskLists(w http.ResponseWriter, req *http.Request) {
	lists, err := s.db.ListTaskLists(req.Context())
	if err != nil {
		s.internalError(w, err)
		return
	}
	if lists == nil {
		lists = []remote.TaskList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) createTaskList(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name        *string `json:"name"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Name == nil {
		writeError(w, http.StatusBadRequest, "Task list name is required")
		return
	}
	name := strings.TrimSpace(*body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Task list name cannot be empty")
		return
	}

	list, err := s.db.CreateTaskList(req.Context(), name, strings.TrimSpace(body.Description))
	if errors.Is(err, ErrDuplicateName) {
		writeError(w, http.StatusBadRequest, "Task list with this name already exists")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) updateTaskList(w http.ResponseWriter, req *http.Request) {
	id := pathID(req)

	// An unknown id is a 404 regardless of what the body holds.
	if _, err := s.db.GetTaskList(req.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task list not found")
		} else {
			s.internalError(w, err)
		}
		return
	}

	var body struct {
		Name        *string `json:"name"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Name == nil {
		writeError(w, http.StatusBadRequest, "Task list name is required")
		return
	}
	name := strings.TrimSpace(*body.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Task list name cannot be empty")
		return
	}

	list, err := s.db.UpdateTaskList(req.Context(), id, name, strings.TrimSpace(body.Description))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task list not found")
	case errors.Is(err, ErrDuplicateName):
		writeError(w, http.StatusBadRequest, "Task list with this name already exists")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) deleteTaskList(w http.ResponseWriter, req *http.Request) {
	err := s.db.DeleteTaskList(req.Context(), pathID(req))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task list not found")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task list deleted successfully"})
	}
}

func (s *Server) createTask(w http.ResponseWriter, req *http.Request) {
	listID := pathID(req)

	if _, err := s.db.GetTaskList(req.Context(), listID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task list not found")
		} else {
			s.internalError(w, err)
		}
		return
	}

	var body struct {
		Title       *string `json:"title"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Title == nil {
		writeError(w, http.StatusBadRequest, "Task title is required")
		return
	}
	title := strings.TrimSpace(*body.Title)
	if title == "" {
		writeError(w, http.StatusBadRequest, "Task title cannot be empty")
		return
	}

	task, err := s.db.CreateTask(req.Context(), listID, title, strings.TrimSpace(body.Description))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task list not found")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusCreated, task)
	}
}

func (s *Server) updateTask(w http.ResponseWriter, req *http.Request) {
	id := pathID(req)

	if _, err := s.db.GetTask(req.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
		} else {
			s.internalError(w, err)
		}
		return
	}

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Completed   *bool   `json:"completed"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			writeError(w, http.StatusBadRequest, "Task title cannot be empty")
			return
		}
		body.Title = &title
	}
	if body.Description != nil {
		desc := strings.TrimSpace(*body.Description)
		body.Description = &desc
	}

	task, err := s.db.UpdateTask(req.Context(), id, body.Title, body.Description, body.Completed)
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, task)
	}
}

func (s *Server) toggleTask(w http.ResponseWriter, req *http.Request) {
	task, err := s.db.ToggleTask(req.Context(), pathID(req))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, remote.TaskToggle{
			ID:        task.ID,
			Completed: task.Completed,
			UpdatedAt: task.UpdatedAt,
		})
	}
}

func (s *Server) deleteTask(w http.ResponseWriter, req *http.Request) {
	err := s.db.DeleteTask(req.Context(), pathID(req))
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found")
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("storage failure", "err", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// pathID extracts the {id} route variable. The route pattern guarantees
// it is numeric.
func pathID(req *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(req)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
