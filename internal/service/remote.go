package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"todolist/internal/models"
)

// RequestIDHeader carries a per-request correlation id to the backend.
const RequestIDHeader = "X-Request-Id"

var _ TaskService = (*Remote)(nil)

// Remote talks to the task HTTP API.
type Remote struct {
	baseURL string
	client  *http.Client
}

// RemoteOption configures a Remote client.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) {
		r.client = c
	}
}

// NewRemote creates a client for the API rooted at baseURL, for example
// http://localhost:8080/api.
func NewRemote(baseURL string, opts ...RemoteOption) (*Remote, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("service: invalid API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("service: API URL must be http or https, got %q", baseURL)
	}

	r := &Remote{
		baseURL: strings.TrimRight(u.String(), "/"),
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// List calls GET /tasks, adding ?status when filtering.
func (r *Remote) List(ctx context.Context, status models.Status) ([]models.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}

	tasks := make([]models.Task, 0)
	if err := r.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get calls GET /tasks/{id}.
func (r *Remote) Get(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := r.do(ctx, http.MethodGet, taskPath(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create calls POST /tasks.
func (r *Remote) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := r.do(ctx, http.MethodPost, "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update calls PUT /tasks/{id}.
func (r *Remote) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := r.do(ctx, http.MethodPut, taskPath(id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Complete calls PATCH /tasks/{id}/complete.
func (r *Remote) Complete(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := r.do(ctx, http.MethodPatch, taskPath(id)+"/complete", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus calls PATCH /tasks/{id}/status.
func (r *Remote) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Task, error) {
	var task models.Task
	body := models.StatusRequest{Status: status}
	if err := r.do(ctx, http.MethodPatch, taskPath(id)+"/status", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete calls DELETE /tasks/{id}.
func (r *Remote) Delete(ctx context.Context, id int64) error {
	return r.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// do sends one request and decodes the JSON response into out (if non-nil).
// Every failure comes back as a *models.TaskError.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return models.NewTransportError("Failed to encode request", 0, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return models.NewTransportError(err.Error(), 0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return models.NewTransportError(err.Error(), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRemoteError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewTransportError("Failed to decode response", resp.StatusCode, err)
	}
	return nil
}

// decodeRemoteError maps a non-2xx response onto the error taxonomy,
// preferring the message the backend put in the body.
func decodeRemoteError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(data, &payload)

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	if message == "" {
		message = models.MsgUnexpectedError
	}

	return &models.TaskError{
		Kind:    models.KindForStatus(resp.StatusCode),
		Message: message,
		Code:    resp.StatusCode,
	}
}
