package cli

import (
	"fmt"
	"strings"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/spf13/cobra"
)

type taskFlags struct {
	title          string
	description    string
	status         string
	priority       string
	due            string
	assigneeID     string
	assigneeName   string
	assigneeAvatar string

	clearDue bool
	unassign bool
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "task title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&f.status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&f.due, "due", "", "due date as YYYY-MM-DD")
	cmd.Flags().StringVar(&f.assigneeID, "assignee-id", "", "assignee user id")
	cmd.Flags().StringVar(&f.assigneeName, "assignee-name", "", "assignee display name")
	cmd.Flags().StringVar(&f.assigneeAvatar, "assignee-avatar", "", "assignee avatar URL")
}

func (f *taskFlags) dueDate() (*entity.Date, error) {
	if f.due == "" {
		return nil, nil
	}
	d, err := entity.ParseDate(f.due)
	if err != nil {
		return nil, &entity.ValidationError{Field: "dueDate", Reason: "must be YYYY-MM-DD"}
	}
	return &d, nil
}

func (f *taskFlags) assignee() *entity.Assignee {
	if f.assigneeID == "" {
		return nil
	}
	return &entity.Assignee{ID: f.assigneeID, Name: f.assigneeName, Avatar: f.assigneeAvatar}
}

func (f *taskFlags) draft() (entity.TaskDraft, error) {
	due, err := f.dueDate()
	if err != nil {
		return entity.TaskDraft{}, err
	}
	return entity.TaskDraft{
		Title:       f.title,
		Description: f.description,
		Status:      entity.Status(f.status),
		Priority:    entity.Priority(f.priority),
		Assignee:    f.assignee(),
		DueDate:     due,
	}, nil
}

// patch берет только явно заданные флаги
func (f *taskFlags) patch(cmd *cobra.Command) (entity.TaskPatch, error) {
	var p entity.TaskPatch
	changed := cmd.Flags().Changed
	if changed("title") {
		p.Title = &f.title
	}
	if changed("description") {
		p.Description = &f.description
	}
	if changed("status") {
		s := entity.Status(f.status)
		p.Status = &s
	}
	if changed("priority") {
		pr := entity.Priority(f.priority)
		p.Priority = &pr
	}
	if changed("due") {
		due, err := f.dueDate()
		if err != nil {
			return p, err
		}
		p.DueDate = due
	}
	if changed("assignee-id") {
		p.Assignee = f.assignee()
	} else if changed("assignee-name") || changed("assignee-avatar") {
		return p, &entity.ValidationError{Field: "assignee", Reason: "requires --assignee-id"}
	}
	p.ClearDueDate = f.clearDue
	p.ClearAssignee = f.unassign
	return p, nil
}

func (a *app) addCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && f.title == "" {
				f.title = args[0]
			}
			draft, err := f.draft()
			if err != nil {
				return err
			}
			task, err := a.store.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Created task.")
			return printTask(a.out(), task)
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) editCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := f.patch(cmd)
			if err != nil {
				return err
			}
			task, err := a.store.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out(), "Updated task.")
			return printTask(a.out(), task)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().BoolVar(&f.unassign, "unassign", false, "remove the assignee")
	return cmd
}

func (a *app) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a task to another status column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := entity.Status(strings.ToLower(args[1]))
			task, err := a.store.MoveStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Moved %q to %s.\n", task.Title, task.Status)
			return nil
		},
	}
}

func (a *app) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Deleted task %s.\n", args[0])
			return nil
		},
	}
}
