package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"todolist/internal/kv"
	"todolist/internal/models"
)

// DefaultStorageKey is the key the collection is stored under.
const DefaultStorageKey = "todolist_tasks"

const tasksSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "title", "status", "createdAt"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"title": {"type": "string", "pattern": "\\S"},
			"description": {"type": ["string", "null"]},
			"status": {"enum": ["PENDING", "IN_PROGRESS", "COMPLETED", "CANCELLED"]},
			"createdAt": {"type": "string", "minLength": 1},
			"updatedAt": {"type": ["string", "null"]}
		}
	}
}`

var tasksSchemaCompiled = jsonschema.MustCompileString("todolist-tasks.schema.json", tasksSchema)

var _ TaskService = (*Local)(nil)

// Local keeps the whole task collection as one JSON array in a key-value
// store and enforces the lifecycle rules itself, as there is no server.
type Local struct {
	mu     sync.Mutex
	store  kv.KV
	key    string
	logger *log.Logger
	opts   options
}

// NewLocal creates a Local service persisting under key. An empty key uses
// DefaultStorageKey.
func NewLocal(store kv.KV, key string, logger *log.Logger, opts ...Option) (*Local, error) {
	if store == nil {
		return nil, fmt.Errorf("service: kv store is nil")
	}
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Local{store: store, key: key, logger: logger, opts: newOptions(opts)}, nil
}

// List returns tasks in insertion order, optionally only those with status.
func (l *Local) List(ctx context.Context, status models.Status) ([]models.Task, error) {
	if status != "" {
		if err := checkStatus(status); err != nil {
			return nil, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if status == "" || task.Status == status {
			result = append(result, task)
		}
	}
	return result, nil
}

// Get returns the task with id.
func (l *Local) Get(ctx context.Context, id int64) (*models.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, models.NewNotFoundError(id)
	}
	task := tasks[i]
	return &task, nil
}

// Create appends a pending task with the next free id.
func (l *Local) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	task := models.Task{
		Status:    models.StatusPending,
		CreatedAt: l.opts.now(),
	}
	if err := applyEdit(&task, req); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.load(ctx)
	if err != nil {
		return nil, err
	}

	task.ID = nextID(tasks)
	tasks = append(tasks, task)
	if err := l.save(ctx, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update replaces the title and description of a task that is not cancelled.
func (l *Local) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	if _, err := models.NormalizeTitle(req.Title); err != nil {
		return nil, err
	}
	return l.mutate(ctx, id, func(task *models.Task) error {
		if err := checkEditable(task); err != nil {
			return err
		}
		return applyEdit(task, req)
	})
}

// Complete marks a task completed unless it is cancelled.
func (l *Local) Complete(ctx context.Context, id int64) (*models.Task, error) {
	return l.mutate(ctx, id, func(task *models.Task) error {
		if err := checkCompletable(task); err != nil {
			return err
		}
		task.Status = models.StatusCompleted
		return nil
	})
}

// UpdateStatus moves a task that is not cancelled to status.
func (l *Local) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Task, error) {
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	return l.mutate(ctx, id, func(task *models.Task) error {
		if err := checkStatusChange(task); err != nil {
			return err
		}
		task.Status = status
		return nil
	})
}

// Delete removes a task that is neither completed nor cancelled.
func (l *Local) Delete(ctx context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return models.NewNotFoundError(id)
	}
	if err := checkDeletable(&tasks[i]); err != nil {
		return err
	}

	tasks = append(tasks[:i], tasks[i+1:]...)
	return l.save(ctx, tasks)
}

// mutate applies change to a copy of the stored task and only writes the
// collection back when change succeeds.
func (l *Local) mutate(ctx context.Context, id int64, change func(*models.Task) error) (*models.Task, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tasks, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, models.NewNotFoundError(id)
	}

	task := tasks[i]
	if err := change(&task); err != nil {
		return nil, err
	}
	now := l.opts.now()
	task.UpdatedAt = &now

	tasks[i] = task
	if err := l.save(ctx, tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// load reads the collection. Missing or corrupt data is replaced by the
// example tasks, which are written back immediately.
func (l *Local) load(ctx context.Context) ([]models.Task, error) {
	data, err := l.store.Get(ctx, l.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			return nil, models.NewTransportError("Failed to read tasks from storage", 0, err)
		}
		l.logger.Info("no stored tasks, seeding examples", "key", l.key)
		return l.reseed(ctx)
	}

	tasks, err := decodeTasks(data)
	if err != nil {
		l.logger.Warn("stored tasks are unreadable, seeding examples", "key", l.key, "err", err)
		return l.reseed(ctx)
	}
	return tasks, nil
}

func (l *Local) reseed(ctx context.Context) ([]models.Task, error) {
	tasks := seedTasks(l.opts.now())
	if err := l.save(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (l *Local) save(ctx context.Context, tasks []models.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return models.NewTransportError("Failed to encode tasks", 0, err)
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return models.NewTransportError("Failed to write tasks to storage", 0, err)
	}
	return nil
}

func decodeTasks(data []byte) ([]models.Task, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := tasksSchemaCompiled.Validate(raw); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	tasks := make([]models.Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for i := range tasks {
		if err := tasks[i].Validate(); err != nil {
			return nil, fmt.Errorf("task %d: %w", tasks[i].ID, err)
		}
	}
	return tasks, nil
}

func indexOf(tasks []models.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(tasks []models.Task) int64 {
	var highest int64
	for _, task := range tasks {
		if task.ID > highest {
			highest = task.ID
		}
	}
	return highest + 1
}

func seedTasks(now time.Time) []models.Task {
	day := 24 * time.Hour
	ptr := func(s string) *string { return &s }
	at := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	return []models.Task{
		{
			ID:          1,
			Title:       "Study clean architecture",
			Description: ptr("Review clean architecture concepts for the backend"),
			Status:      models.StatusPending,
			CreatedAt:   now.Add(-day),
		},
		{
			ID:          2,
			Title:       "Write unit tests",
			Description: ptr("Cover the task use cases with tests"),
			Status:      models.StatusInProgress,
			CreatedAt:   now.Add(-2 * day),
			UpdatedAt:   at(12 * time.Hour),
		},
		{
			ID:          3,
			Title:       "Document the REST API",
			Description: ptr("Describe every endpoint and its error responses"),
			Status:      models.StatusCompleted,
			CreatedAt:   now.Add(-3 * day),
			UpdatedAt:   at(day),
		},
	}
}
