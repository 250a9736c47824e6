package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/St1cky1/taskboard/internal/entity"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func dueString(t entity.Task) string {
	if !t.HasDueDate() {
		return "-"
	}
	return t.DueDate.Format("2006-01-02")
}

func assigneeString(t entity.Task) string {
	if t.Assignee == nil {
		return "-"
	}
	if t.Assignee.Name != "" {
		return t.Assignee.Name
	}
	return t.Assignee.ID
}

func printTasks(w io.Writer, tasks []entity.Task) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "No tasks.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tASSIGNEE\tTITLE")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Status, t.Priority, dueString(t), assigneeString(t), t.Title)
	}
	return tw.Flush()
}

func printTask(w io.Writer, t entity.Task) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority:\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Assignee:\t%s\n", assigneeString(t))
	fmt.Fprintf(tw, "Due:\t%s\n", dueString(t))
	return tw.Flush()
}

func columnTitle(s entity.Status) string {
	switch s {
	case entity.StatusTodo:
		return "TO DO"
	case entity.StatusInProgress:
		return "IN PROGRESS"
	case entity.StatusDone:
		return "DONE"
	}
	return strings.ToUpper(string(s))
}
