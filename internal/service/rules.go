package service

import (
	"todolist/internal/models"
)

func checkEditable(task *models.Task) error {
	if !task.CanBeEdited() {
		return models.NewConflictError(models.MsgUpdateCancelled)
	}
	return nil
}

func checkCompletable(task *models.Task) error {
	if task.Status == models.StatusCancelled {
		return models.NewConflictError(models.MsgCompleteCancelled)
	}
	return nil
}

func checkStatusChange(task *models.Task) error {
	if !task.CanChangeStatus() {
		return models.NewConflictError(models.MsgStatusCancelled)
	}
	return nil
}

func checkDeletable(task *models.Task) error {
	switch task.Status {
	case models.StatusCompleted:
		return models.NewConflictError(models.MsgDeleteCompleted)
	case models.StatusCancelled:
		return models.NewConflictError(models.MsgDeleteCancelled)
	}
	return nil
}

func checkStatus(status models.Status) error {
	if !status.Valid() {
		return models.NewValidationError("status must be one of PENDING, IN_PROGRESS, COMPLETED or CANCELLED")
	}
	return nil
}

// applyEdit validates req and writes it onto task.
func applyEdit(task *models.Task, req models.TaskRequest) error {
	title, err := models.NormalizeTitle(req.Title)
	if err != nil {
		return err
	}
	task.Title = title
	task.Description = models.NormalizeDescription(req.Description)
	return nil
}
