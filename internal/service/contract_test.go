package service_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/handlers"
	"todolist/internal/kv"
	"todolist/internal/models"
	"todolist/internal/service"
	"todolist/internal/store"
)

func newBackend(t *testing.T) service.TaskService {
	t.Helper()
	s, err := store.NewSQLiteStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc, err := service.NewBackend(s)
	require.NoError(t, err)
	return svc
}

func newLocal(t *testing.T) service.TaskService {
	t.Helper()
	svc, err := service.NewLocal(kv.NewMemory(), "", log.New(io.Discard))
	require.NoError(t, err)
	return svc
}

func newRemote(t *testing.T) service.TaskService {
	t.Helper()
	backend := newBackend(t)
	srv := httptest.NewServer(handlers.NewRouter(handlers.New(backend, log.New(io.Discard))))
	t.Cleanup(srv.Close)

	svc, err := service.NewRemote(srv.URL + "/api/")
	require.NoError(t, err)
	return svc
}

func TestTaskServiceContract(t *testing.T) {
	impls := map[string]func(*testing.T) service.TaskService{
		"backend": newBackend,
		"local":   newLocal,
		"remote":  newRemote,
	}

	for name, newSvc := range impls {
		t.Run(name, func(t *testing.T) {
			runContractTests(t, newSvc)
		})
	}
}

func runContractTests(t *testing.T, newSvc func(*testing.T) service.TaskService) {
	ctx := context.Background()

	t.Run("create starts pending and appears in list", func(t *testing.T) {
		svc := newSvc(t)

		task, err := svc.Create(ctx, models.TaskRequest{Title: "  Buy milk ", Description: "2 liters"})
		require.NoError(t, err)
		assert.NotZero(t, task.ID)
		assert.Equal(t, "Buy milk", task.Title)
		assert.Equal(t, "2 liters", task.DescriptionText())
		assert.Equal(t, models.StatusPending, task.Status)
		assert.Nil(t, task.UpdatedAt)
		assert.False(t, task.CreatedAt.IsZero())

		all, err := svc.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, ids(all), task.ID)
	})

	t.Run("create rejects blank title", func(t *testing.T) {
		svc := newSvc(t)
		before, err := svc.List(ctx, "")
		require.NoError(t, err)

		for _, title := range []string{"", "   ", "\t\n"} {
			_, err := svc.Create(ctx, models.TaskRequest{Title: title})
			require.Error(t, err)
			assert.True(t, models.IsValidation(err), "title %q: got %v", title, err)
			assert.Equal(t, models.MsgTitleRequired, err.Error())
		}

		after, err := svc.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, ids(before), ids(after))
	})

	t.Run("get returns what was created", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Round trip"})
		require.NoError(t, err)

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Title, got.Title)
		assert.Nil(t, got.Description)
		assert.Equal(t, created.Status, got.Status)
		assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("missing ids are not found", func(t *testing.T) {
		svc := newSvc(t)
		const missing = 999999

		_, err := svc.Get(ctx, missing)
		assert.True(t, models.IsNotFound(err), "get: %v", err)

		_, err = svc.Update(ctx, missing, models.TaskRequest{Title: "x"})
		assert.True(t, models.IsNotFound(err), "update: %v", err)

		_, err = svc.Complete(ctx, missing)
		assert.True(t, models.IsNotFound(err), "complete: %v", err)

		_, err = svc.UpdateStatus(ctx, missing, models.StatusInProgress)
		assert.True(t, models.IsNotFound(err), "status: %v", err)

		err = svc.Delete(ctx, missing)
		assert.True(t, models.IsNotFound(err), "delete: %v", err)
		assert.Equal(t, "Task with id 999999 not found", err.Error())
	})

	t.Run("update replaces title and description", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Old", Description: "old"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, models.TaskRequest{Title: "New"})
		require.NoError(t, err)
		assert.Equal(t, "New", updated.Title)
		assert.Nil(t, updated.Description)
		require.NotNil(t, updated.UpdatedAt)
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})

	t.Run("update validates title before lookup", func(t *testing.T) {
		svc := newSvc(t)
		_, err := svc.Update(ctx, 999999, models.TaskRequest{Title: " "})
		assert.True(t, models.IsValidation(err), "got %v", err)
	})

	t.Run("complete stamps updatedAt", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Finish"})
		require.NoError(t, err)

		done, err := svc.Complete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, done.Status)
		require.NotNil(t, done.UpdatedAt)
		assert.False(t, done.UpdatedAt.Before(done.CreatedAt))
	})

	t.Run("status change moves between columns", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Move me"})
		require.NoError(t, err)

		moved, err := svc.UpdateStatus(ctx, created.ID, models.StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, moved.Status)

		back, err := svc.UpdateStatus(ctx, created.ID, models.StatusPending)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, back.Status)
	})

	t.Run("cancelled tasks reject every mutation", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Doomed", Description: "keep"})
		require.NoError(t, err)
		cancelled, err := svc.UpdateStatus(ctx, created.ID, models.StatusCancelled)
		require.NoError(t, err)

		_, err = svc.Update(ctx, created.ID, models.TaskRequest{Title: "Changed"})
		assert.True(t, models.IsConflict(err), "update: %v", err)
		assert.Equal(t, models.MsgUpdateCancelled, err.Error())

		_, err = svc.Complete(ctx, created.ID)
		assert.True(t, models.IsConflict(err), "complete: %v", err)
		assert.Equal(t, models.MsgCompleteCancelled, err.Error())

		_, err = svc.UpdateStatus(ctx, created.ID, models.StatusPending)
		assert.True(t, models.IsConflict(err), "status: %v", err)
		assert.Equal(t, models.MsgStatusCancelled, err.Error())

		err = svc.Delete(ctx, created.ID)
		assert.True(t, models.IsConflict(err), "delete: %v", err)
		assert.Equal(t, models.MsgDeleteCancelled, err.Error())

		got, err := svc.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCancelled, got.Status)
		assert.Equal(t, "Doomed", got.Title)
		assert.Equal(t, "keep", got.DescriptionText())
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, cancelled.UpdatedAt.Equal(*got.UpdatedAt))
	})

	t.Run("completed tasks cannot be deleted", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Done"})
		require.NoError(t, err)
		_, err = svc.Complete(ctx, created.ID)
		require.NoError(t, err)

		err = svc.Delete(ctx, created.ID)
		assert.True(t, models.IsConflict(err), "got %v", err)
		assert.Equal(t, models.MsgDeleteCompleted, err.Error())

		_, err = svc.Get(ctx, created.ID)
		assert.NoError(t, err)
	})

	t.Run("delete removes the task", func(t *testing.T) {
		svc := newSvc(t)
		created, err := svc.Create(ctx, models.TaskRequest{Title: "Temporary"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, created.ID))

		_, err = svc.Get(ctx, created.ID)
		assert.True(t, models.IsNotFound(err))

		all, err := svc.List(ctx, "")
		require.NoError(t, err)
		assert.NotContains(t, ids(all), created.ID)
	})

	t.Run("filtered list is the ordered subset", func(t *testing.T) {
		svc := newSvc(t)
		a, err := svc.Create(ctx, models.TaskRequest{Title: "A"})
		require.NoError(t, err)
		_, err = svc.Create(ctx, models.TaskRequest{Title: "B"})
		require.NoError(t, err)
		_, err = svc.UpdateStatus(ctx, a.ID, models.StatusInProgress)
		require.NoError(t, err)

		all, err := svc.List(ctx, "")
		require.NoError(t, err)

		for _, status := range models.Statuses {
			filtered, err := svc.List(ctx, status)
			require.NoError(t, err)

			var want []int64
			for _, task := range all {
				if task.Status == status {
					want = append(want, task.ID)
				}
			}
			assert.Equal(t, want, ids(filtered), "status %s", status)
		}
	})

	t.Run("list rejects unknown status", func(t *testing.T) {
		svc := newSvc(t)
		_, err := svc.List(ctx, models.Status("DONE"))
		assert.True(t, models.IsValidation(err), "got %v", err)
	})
}

func ids(tasks []models.Task) []int64 {
	var out []int64
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}
