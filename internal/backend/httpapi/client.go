// Package httpapi implements the remote.Store interface over the task
// tracker's JSON REST contract.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasktrack/internal/remote"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// maxErrorBody caps how much of an error response body is read.
	maxErrorBody = 1 << 16
)

// APIError is a non-2xx response from the server. Message is the
// server-provided "error" field when the body carries one, otherwise a
// generic fallback.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client implements remote.Store against a task tracker server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. "http://localhost:4000").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListTaskLists implements remote.Store.
func (c *Client) ListTaskLists(ctx context.Context) ([]remote.TaskList, error) {
	var lists []remote.TaskList
	if err := c.do(ctx, http.MethodGet, "/api/task-lists", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// CreateTaskList implements remote.Store.
func (c *Client) CreateTaskList(ctx context.Context, name, description string) (remote.TaskList, error) {
	body := map[string]string{"name": name, "description": description}
	var list remote.TaskList
	if err := c.do(ctx, http.MethodPost, "/api/task-lists", body, &list); err != nil {
		return remote.TaskList{}, err
	}
	return list, nil
}

// UpdateTaskList implements remote.Store.
func (c *Client) UpdateTaskList(ctx context.Context, id int, name, description string) (remote.TaskList, error) {
	body := map[string]string{"name": name, "description": description}
	var list remote.TaskList
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/task-lists/%d", id), body, &list); err != nil {
		return remote.TaskList{}, err
	}
	return list, nil
}

// DeleteTaskList implements remote.Store. The response body is ignored.
func (c *Client) DeleteTaskList(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/task-lists/%d", id), nil, nil)
}

// CreateTask implements remote.Store.
func (c *Client) CreateTask(ctx context.Context, listID int, title, description string) (remote.Task, error) {
	body := map[string]string{"title": title, "description": description}
	var task remote.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/task-lists/%d/tasks", listID), body, &task); err != nil {
		return remote.Task{}, err
	}
	return task, nil
}

// UpdateTask implements remote.Store.
func (c *Client) UpdateTask(ctx context.Context, id int, title, description string, completed bool) (remote.Task, error) {
	body := map[string]any{
		"title":       title,
		"description": description,
		"completed":   completed,
	}
	var task remote.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), body, &task); err != nil {
		return remote.Task{}, err
	}
	return task, nil
}

// ToggleTask implements remote.Store.
func (c *Client) ToggleTask(ctx context.Context, id int) (remote.TaskToggle, error) {
	var toggle remote.TaskToggle
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/toggle", id), nil, &toggle); err != nil {
		return remote.TaskToggle{}, err
	}
	return toggle, nil
}

// DeleteTask implements remote.Store. The response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

// do issues one request and decodes a 2xx response into out (when out is
// non-nil). Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx response into an *APIError, preferring the
// server's "error" field when the body is JSON.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("request failed: %s", resp.Status),
	}
}

// wrapTransportError rewrites low-level transport failures into
// user-friendly messages.
func wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return err
}
