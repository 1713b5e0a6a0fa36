package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todolist/internal/models"
	"todolist/internal/service"
	"todolist/internal/tasklist"
	"todolist/internal/ui"
)

// withStore opens the configured service and runs fn against a Store that
// reports to the command's stdout and stderr, and to the debug log.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *tasklist.Store, svc service.TaskService) error) error {
	svc, closeFn, err := a.openService()
	if err != nil {
		return err
	}
	defer closeFn()

	notify := tasklist.MultiNotifier{
		tasklist.ConsoleNotifier{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()},
		tasklist.LogNotifier{Logger: a.logger, Level: log.DebugLevel},
	}
	return fn(cmd.Context(), tasklist.New(svc, notify), svc)
}

// result converts a Store outcome into the command's exit status.
func result(ok bool) error {
	if !ok {
		return errReported
	}
	return nil
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func newListCommand(a *app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter models.Status
			if status != "" {
				parsed, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				filter = parsed
			}

			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				if !s.SetFilter(ctx, filter) {
					return errReported
				}
				printTasks(cmd.OutOrStdout(), s.Tasks(), time.Now())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only show tasks with this status")
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, _ *tasklist.Store, svc service.TaskService) error {
				task, err := svc.Get(ctx, id)
				if err != nil {
					return err
				}
				printTask(cmd.OutOrStdout(), task)
				return nil
			})
		},
	}
}

func newAddCommand(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				return result(s.Create(ctx, args[0], description))
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a task's title and description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				if !s.Refresh(ctx) {
					return errReported
				}
				desc := description
				if !cmd.Flags().Changed("description") {
					if task, ok := s.Find(id); ok {
						desc = task.DescriptionText()
					}
				}
				return result(s.Update(ctx, id, title, desc))
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description; omit to keep the current one, empty clears it")
	cmd.MarkFlagRequired("title")
	return cmd
}

func newCompleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				if !s.Refresh(ctx) {
					return errReported
				}
				return result(s.Complete(ctx, id))
			})
		},
	}
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a task to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				if !s.Refresh(ctx) {
					return errReported
				}
				return result(s.ChangeStatus(ctx, id, status))
			})
		},
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *tasklist.Store, _ service.TaskService) error {
				if !s.Refresh(ctx) {
					return errReported
				}
				return result(s.Delete(ctx, id))
			})
		},
	}
}

func newBoardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Open the interactive task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := a.openService()
			if err != nil {
				return err
			}
			defer closeFn()
			return ui.RunBoard(cmd.Context(), svc)
		},
	}
}

func printTasks(w io.Writer, tasks []models.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tCREATED")
	for _, task := range tasks {
		title := task.Title
		if task.IsOverdue(now) {
			title += " (overdue)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", task.ID, task.Status, title, task.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printTask(w io.Writer, task *models.Task) {
	fmt.Fprintf(w, "#%d %s\n", task.ID, task.Title)
	fmt.Fprintf(w, "Status:      %s\n", task.Status.Label())
	if desc := task.DescriptionText(); desc != "" {
		fmt.Fprintf(w, "Description: %s\n", desc)
	}
	fmt.Fprintf(w, "Created:     %s\n", task.CreatedAt.Local().Format(time.RFC3339))
	if task.UpdatedAt != nil {
		fmt.Fprintf(w, "Updated:     %s\n", task.UpdatedAt.Local().Format(time.RFC3339))
	}
}
