// Package tasklist holds the session's view of the task list and wraps every
// mutation with refresh and user notification.
package tasklist

import (
	"context"
	"strings"
	"sync"

	"todolist/internal/models"
	"todolist/internal/service"
)

// Notifier receives the outcome of each operation.
type Notifier interface {
	ShowSuccess(message string)
	ShowError(title, message string)
}

const errorTitle = "Error"

// Fallbacks used when a failure carries no message of its own.
const (
	msgLoadFailed     = "Failed to load tasks"
	msgCreateFailed   = "Failed to create task"
	msgUpdateFailed   = "Failed to update task"
	msgCompleteFailed = "Failed to complete task"
	msgStatusFailed   = "Failed to change task status"
	msgDeleteFailed   = "Failed to delete task"
)

const msgAlreadyCompleted = "Task is already completed"

// Column is one status lane of the board view.
type Column struct {
	Status models.Status
	Tasks  []models.Task
}

// Store owns the loaded tasks and the active status filter. Operations are
// serialized so a slow response can never overwrite a newer one.
type Store struct {
	svc    service.TaskService
	notify Notifier

	ops sync.Mutex

	mu     sync.RWMutex
	tasks  []models.Task
	filter models.Status
}

// New creates a Store. Nothing is loaded until Refresh is called.
func New(svc service.TaskService, notify Notifier) *Store {
	if notify == nil {
		notify = discardNotifier{}
	}
	return &Store{svc: svc, notify: notify}
}

// Tasks returns a copy of the loaded tasks.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Filter returns the active status filter; empty means all tasks.
func (s *Store) Filter() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Find looks a task up in the loaded view.
func (s *Store) Find(id int64) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, task := range s.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return models.Task{}, false
}

// Columns groups the loaded tasks by status, in status order, keeping list
// order inside each column.
func (s *Store) Columns() []Column {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cols := make([]Column, len(models.Statuses))
	index := make(map[models.Status]int, len(models.Statuses))
	for i, status := range models.Statuses {
		cols[i].Status = status
		index[status] = i
	}
	for _, task := range s.tasks {
		if i, ok := index[task.Status]; ok {
			cols[i].Tasks = append(cols[i].Tasks, task)
		}
	}
	return cols
}

// Refresh reloads the tasks matching the current filter.
func (s *Store) Refresh(ctx context.Context) bool {
	s.ops.Lock()
	defer s.ops.Unlock()
	return s.reload(ctx)
}

// SetFilter changes the status filter and reloads. An empty status clears it.
func (s *Store) SetFilter(ctx context.Context, status models.Status) bool {
	s.ops.Lock()
	defer s.ops.Unlock()

	s.mu.Lock()
	s.filter = status
	s.mu.Unlock()
	return s.reload(ctx)
}

func (s *Store) Create(ctx context.Context, title, description string) bool {
	return s.run(ctx, "Task created successfully", msgCreateFailed, func() error {
		_, err := s.svc.Create(ctx, models.TaskRequest{Title: title, Description: description})
		return err
	})
}

func (s *Store) Update(ctx context.Context, id int64, title, description string) bool {
	return s.run(ctx, "Task updated successfully", msgUpdateFailed, func() error {
		if task, ok := s.Find(id); ok && !task.CanBeEdited() {
			return models.NewConflictError(models.MsgUpdateCancelled)
		}
		_, err := s.svc.Update(ctx, id, models.TaskRequest{Title: title, Description: description})
		return err
	})
}

func (s *Store) Complete(ctx context.Context, id int64) bool {
	return s.run(ctx, "Task completed successfully", msgCompleteFailed, func() error {
		if task, ok := s.Find(id); ok && !task.CanBeCompleted() {
			if task.Status == models.StatusCompleted {
				return models.NewConflictError(msgAlreadyCompleted)
			}
			return models.NewConflictError(models.MsgCompleteCancelled)
		}
		_, err := s.svc.Complete(ctx, id)
		return err
	})
}

func (s *Store) ChangeStatus(ctx context.Context, id int64, status models.Status) bool {
	return s.run(ctx, "Task status updated successfully", msgStatusFailed, func() error {
		if task, ok := s.Find(id); ok && !task.CanChangeStatus() {
			return models.NewConflictError(models.MsgStatusCancelled)
		}
		_, err := s.svc.UpdateStatus(ctx, id, status)
		return err
	})
}

func (s *Store) Delete(ctx context.Context, id int64) bool {
	return s.run(ctx, "Task deleted successfully", msgDeleteFailed, func() error {
		if task, ok := s.Find(id); ok && !task.CanBeDeleted() {
			if task.Status == models.StatusCompleted {
				return models.NewConflictError(models.MsgDeleteCompleted)
			}
			return models.NewConflictError(models.MsgDeleteCancelled)
		}
		return s.svc.Delete(ctx, id)
	})
}

// run executes one mutation. On success the list is reloaded before the
// success notice; on failure the loaded tasks are left as they were.
func (s *Store) run(ctx context.Context, success, fallback string, op func() error) bool {
	s.ops.Lock()
	defer s.ops.Unlock()

	if err := op(); err != nil {
		s.notify.ShowError(errorTitle, messageOf(err, fallback))
		return false
	}
	s.reload(ctx)
	s.notify.ShowSuccess(success)
	return true
}

func (s *Store) reload(ctx context.Context) bool {
	s.mu.RLock()
	filter := s.filter
	s.mu.RUnlock()

	tasks, err := s.svc.List(ctx, filter)
	if err != nil {
		s.notify.ShowError(errorTitle, messageOf(err, msgLoadFailed))
		return false
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return true
}

func messageOf(err error, fallback string) string {
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

type discardNotifier struct{}

func (discardNotifier) ShowSuccess(string)       {}
func (discardNotifier) ShowError(string, string) {}
