package store

import (
	"context"

	"todolist/internal/models"
)

// Store defines the interface for data persistence operations.
// Lifecycle rules are not enforced here; see service.Backend.
type Store interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	// ListTasks returns tasks newest first. An empty status returns all tasks.
	ListTasks(ctx context.Context, status models.Status) ([]models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id int64) error

	// Lifecycle
	Close() error
}
