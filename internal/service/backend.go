package service

import (
	"context"
	"fmt"

	"todolist/internal/models"
	"todolist/internal/store"
)

var _ TaskService = (*Backend)(nil)

// Backend enforces the task lifecycle rules on top of a SQL store. It is
// what the HTTP API serves.
type Backend struct {
	store store.Store
	opts  options
}

// NewBackend creates a Backend over s.
func NewBackend(s store.Store, opts ...Option) (*Backend, error) {
	if s == nil {
		return nil, fmt.Errorf("service: store is nil")
	}
	return &Backend{store: s, opts: newOptions(opts)}, nil
}

// List returns stored tasks newest first, optionally only those with status.
func (b *Backend) List(ctx context.Context, status models.Status) ([]models.Task, error) {
	if status != "" {
		if err := checkStatus(status); err != nil {
			return nil, err
		}
	}
	tasks, err := b.store.ListTasks(ctx, status)
	if err != nil {
		return nil, storageError(err)
	}
	return tasks, nil
}

// Get returns the task with id.
func (b *Backend) Get(ctx context.Context, id int64) (*models.Task, error) {
	task, err := b.store.GetTask(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return task, nil
}

// Create stores a new pending task.
func (b *Backend) Create(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	task := &models.Task{
		Status:    models.StatusPending,
		CreatedAt: b.opts.now(),
	}
	if err := applyEdit(task, req); err != nil {
		return nil, err
	}

	if err := b.store.CreateTask(ctx, task); err != nil {
		return nil, storageError(err)
	}
	return task, nil
}

// Update replaces the title and description of a task that is not cancelled.
func (b *Backend) Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error) {
	if _, err := models.NormalizeTitle(req.Title); err != nil {
		return nil, err
	}
	return b.mutate(ctx, id, func(task *models.Task) error {
		if err := checkEditable(task); err != nil {
			return err
		}
		return applyEdit(task, req)
	})
}

// Complete marks a task completed unless it is cancelled.
func (b *Backend) Complete(ctx context.Context, id int64) (*models.Task, error) {
	return b.mutate(ctx, id, func(task *models.Task) error {
		if err := checkCompletable(task); err != nil {
			return err
		}
		task.Status = models.StatusCompleted
		return nil
	})
}

// UpdateStatus moves a task that is not cancelled to status.
func (b *Backend) UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Task, error) {
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	return b.mutate(ctx, id, func(task *models.Task) error {
		if err := checkStatusChange(task); err != nil {
			return err
		}
		task.Status = status
		return nil
	})
}

// Delete removes a task that is neither completed nor cancelled.
func (b *Backend) Delete(ctx context.Context, id int64) error {
	task, err := b.store.GetTask(ctx, id)
	if err != nil {
		return storageError(err)
	}
	if err := checkDeletable(task); err != nil {
		return err
	}
	if err := b.store.DeleteTask(ctx, id); err != nil {
		return storageError(err)
	}
	return nil
}

// mutate loads the task, applies change and persists it with a fresh updatedAt.
func (b *Backend) mutate(ctx context.Context, id int64, change func(*models.Task) error) (*models.Task, error) {
	task, err := b.store.GetTask(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}

	if err := change(task); err != nil {
		return nil, err
	}

	now := b.opts.now()
	task.UpdatedAt = &now
	if err := b.store.UpdateTask(ctx, task); err != nil {
		return nil, storageError(err)
	}
	return task, nil
}

// storageError passes TaskErrors through and classifies everything else as
// a transport failure.
func storageError(err error) error {
	if _, ok := models.AsTaskError(err); ok {
		return err
	}
	return models.NewTransportError(err.Error(), 0, err)
}
