// Package client is a Go client for the TaskHub API. It keeps a local
// copy of the caller's task list and reconciles it after every
// mutation, so callers can render from the snapshot without refetching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Task mirrors the API's task representation.
type Task struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Overdue reports whether the task's due date has passed and the task
// is still open.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// OptionalString mirrors the API's tri-state dueDate field: a nil
// *OptionalString is omitted from the body, Null marshals as JSON
// null, and anything else marshals as a string.
type OptionalString struct {
	Null  bool
	Value string
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// OptValue returns an OptionalString carrying v.
func OptValue(v string) *OptionalString {
	return &OptionalString{Value: v}
}

// OptNull returns an OptionalString that marshals as explicit null,
// which the API treats as "clear the stored value".
func OptNull() *OptionalString {
	return &OptionalString{Null: true}
}

// UpdateTaskRequest is a partial update: nil fields are left out of
// the request body and keep their stored values. Use OptNull (or the
// empty string) for DueDate to clear a stored due date.
type UpdateTaskRequest struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Completed   *bool           `json:"completed,omitempty"`
	Priority    *string         `json:"priority,omitempty"`
	DueDate     *OptionalString `json:"dueDate,omitempty"`
}

// APIError carries the server's error message and status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to the TaskHub API and owns an in-memory task list.
// All methods serialize on one mutex, including across the network
// round-trip: two racing mutations cannot interleave their local
// reconciliation, so the snapshot always reflects a response the
// server actually sent. A failed call leaves the snapshot untouched.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client

	mu    sync.Mutex
	tasks []Task

	// stateMu guards the flags below separately from mu, so Loading
	// and Err stay observable while a Load holds mu across its
	// round-trip.
	stateMu sync.Mutex
	loading bool
	lastErr error
}

// New returns a client for the API at baseURL authenticating with the
// given bearer token. httpc may be nil, in which case a client with a
// 30 second timeout is used.
func New(baseURL, token string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   httpc,
	}
}

// Tasks returns a copy of the current snapshot.
func (c *Client) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Loading reports whether a Load call is in flight.
func (c *Client) Loading() bool {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.loading
}

// Err returns the error from the most recent Load, if any.
func (c *Client) Err() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.lastErr
}

func (c *Client) setLoading(loading bool) {
	c.stateMu.Lock()
	c.loading = loading
	c.stateMu.Unlock()
}

func (c *Client) setErr(err error) {
	c.stateMu.Lock()
	c.lastErr = err
	c.stateMu.Unlock()
}

// Load fetches the full task list and replaces the snapshot wholesale.
func (c *Client) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setLoading(true)
	defer c.setLoading(false)
	c.setErr(nil)

	var body struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &body); err != nil {
		c.setErr(err)
		return err
	}

	c.tasks = body.Tasks
	return nil
}

// CreateTask posts a new task and appends the server's version to the
// snapshot. The list is not re-sorted; a later Load restores server
// order.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var body struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &body); err != nil {
		return nil, err
	}

	c.tasks = append(c.tasks, body.Task)
	return &body.Task, nil
}

// UpdateTask sends a partial update and replaces the matching snapshot
// entry with the server's version.
func (c *Client) UpdateTask(ctx context.Context, id uint, req UpdateTaskRequest) (*Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.updateLocked(ctx, id, req)
}

func (c *Client) updateLocked(ctx context.Context, id uint, req UpdateTaskRequest) (*Task, error) {
	var body struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), req, &body); err != nil {
		return nil, err
	}

	for i := range c.tasks {
		if c.tasks[i].ID == id {
			c.tasks[i] = body.Task
			break
		}
	}
	return &body.Task, nil
}

// DeleteTask deletes the task and removes it from the snapshot.
func (c *Client) DeleteTask(ctx context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil); err != nil {
		return err
	}

	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	return nil
}

// ToggleComplete flips the completion flag of a task known to the
// snapshot. Unknown ids are a no-op.
func (c *Client) ToggleComplete(ctx context.Context, id uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current *Task
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			current = &c.tasks[i]
			break
		}
	}
	if current == nil {
		return nil
	}

	completed := !current.Completed
	_, err := c.updateLocked(ctx, id, UpdateTaskRequest{Completed: &completed})
	return err
}

// do issues one request and decodes the response into out when the
// status is 2xx. Non-2xx responses become an *APIError carrying the
// server's message when the body has one.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
