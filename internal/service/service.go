// Package service defines the task persistence contract and its
// implementations: Backend (SQL store behind the HTTP API), Local (a
// serialized collection in a key-value store) and Remote (HTTP client).
package service

import (
	"context"
	"time"

	"todolist/internal/models"
)

// TaskService is the persistence contract shared by every implementation.
// All failures are *models.TaskError values.
type TaskService interface {
	// List returns tasks matching status, or every task when status is empty.
	List(ctx context.Context, status models.Status) ([]models.Task, error)
	Get(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, req models.TaskRequest) (*models.Task, error)
	Update(ctx context.Context, id int64, req models.TaskRequest) (*models.Task, error)
	Complete(ctx context.Context, id int64) (*models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
}

// Option configures Backend and Local.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used to stamp createdAt/updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
