package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/backend/httpapi"
)

// recordingServer captures the last request for assertions.
type recordingServer struct {
	method string
	path   string
	body   map[string]any

	status   int
	response string
}

func (r *recordingServer) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.method = req.Method
		r.path = req.URL.Path
		r.body = nil
		if data, _ := io.ReadAll(req.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &r.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(r.status)
		_, _ = w.Write([]byte(r.response))
	}
}

func TestListTaskLists(t *testing.T) {
	rec := &recordingServer{
		status: http.StatusOK,
		response: `[{"id":1,"name":"Work","description":"","created_at":"2024-03-01T12:00:00Z",
			"tasks":[{"id":4,"title":"Buy milk","description":"","completed":false,"created_at":"2024-03-01T12:00:00Z","updated_at":null}]}]`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	lists, err := client.ListTaskLists(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/task-lists", rec.path)
	require.Len(t, lists, 1)
	assert.Equal(t, "Work", lists[0].Name)
	require.Len(t, lists[0].Tasks, 1)
	assert.Equal(t, "Buy milk", lists[0].Tasks[0].Title)
	assert.Nil(t, lists[0].Tasks[0].UpdatedAt)
}

func TestCreateTaskListSendsNameAndDescription(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusCreated,
		response: `{"id":3,"name":"Groceries","description":"weekly","created_at":"2024-03-01T12:00:00Z","tasks":[]}`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	list, err := client.CreateTaskList(context.Background(), "Groceries", "weekly")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/task-lists", rec.path)
	assert.Equal(t, map[string]any{"name": "Groceries", "description": "weekly"}, rec.body)
	assert.Equal(t, 3, list.ID)
}

func TestUpdateTaskTargetsTaskPath(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusOK,
		response: `{"id":7,"title":"Buy oat milk","description":"","completed":true,"created_at":"2024-03-01T12:00:00Z","updated_at":"2024-03-02T09:00:00Z","task_list_id":1}`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	task, err := client.UpdateTask(context.Background(), 7, "Buy oat milk", "", true)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/tasks/7", rec.path)
	assert.Equal(t, map[string]any{"title": "Buy oat milk", "description": "", "completed": true}, rec.body)
	assert.True(t, task.Completed)
	assert.Equal(t, 1, task.ListID)
}

func TestToggleTaskSendsNoBody(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusOK,
		response: `{"id":7,"completed":true,"updated_at":"2024-03-02T09:00:00Z"}`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	toggle, err := client.ToggleTask(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/tasks/7/toggle", rec.path)
	assert.Nil(t, rec.body)
	assert.True(t, toggle.Completed)
	require.NotNil(t, toggle.UpdatedAt)
}

func TestDeleteIgnoresResponseBody(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusOK,
		response: `{"message":"Task deleted successfully"}`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	require.NoError(t, client.DeleteTask(context.Background(), 7))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/tasks/7", rec.path)
}

func TestServerErrorFieldBecomesMessage(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusBadRequest,
		response: `{"error":"Task list name cannot be empty"}`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	_, err := client.CreateTaskList(context.Background(), "", "")
	require.Error(t, err)

	var apiErr *httpapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Task list name cannot be empty", apiErr.Message)
}

func TestNonJSONErrorBodyGetsGenericMessage(t *testing.T) {
	rec := &recordingServer{
		status:   http.StatusBadGateway,
		response: `upstream exploded`,
	}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	client := httpapi.New(srv.URL)
	err := client.DeleteTaskList(context.Background(), 1)
	require.Error(t, err)

	var apiErr *httpapi.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "request failed")
}
