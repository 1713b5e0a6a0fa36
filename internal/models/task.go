package models

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Statuses lists every status in board column order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// OverdueAfter is how long a task may stay pending before it is overdue.
const OverdueAfter = 7 * 24 * time.Hour

// ParseStatus converts user or wire input into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", NewValidationError("status must be one of PENDING, IN_PROGRESS, COMPLETED or CANCELLED")
	}
	return status, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Label returns a human readable name for the status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Task represents a single unit of work.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

// TaskRequest is the payload for creating or editing a task.
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// StatusRequest is the payload for changing a task's status.
type StatusRequest struct {
	Status Status `json:"status"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError(MsgTitleRequired)
	}

	if !t.Status.Valid() {
		return NewValidationError("status must be one of PENDING, IN_PROGRESS, COMPLETED or CANCELLED")
	}

	return nil
}

// DescriptionText returns the description or an empty string.
func (t *Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// CanBeEdited reports whether title and description may change.
func (t *Task) CanBeEdited() bool {
	return t.Status != StatusCancelled
}

// CanChangeStatus reports whether the task may move to another status.
// Once cancelled a task is frozen.
func (t *Task) CanChangeStatus() bool {
	return t.Status != StatusCancelled
}

// CanBeCompleted reports whether marking the task complete is meaningful.
func (t *Task) CanBeCompleted() bool {
	return t.Status == StatusPending || t.Status == StatusInProgress
}

// CanBeDeleted reports whether the task may be removed.
func (t *Task) CanBeDeleted() bool {
	return t.Status != StatusCompleted && t.Status != StatusCancelled
}

// IsOverdue returns true if the task has been pending for longer than OverdueAfter.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Status != StatusPending || t.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(t.CreatedAt) > OverdueAfter
}

// NormalizeTitle trims the title and rejects blank input.
func NormalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", NewValidationError(MsgTitleRequired)
	}
	return title, nil
}

// NormalizeDescription maps blank descriptions to nil.
func NormalizeDescription(description string) *string {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil
	}
	return &description
}
