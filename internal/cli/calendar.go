package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

func (a *app) calendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show tasks by due date for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.opts.Now()
			ref := now
			if month != "" {
				parsed, err := time.ParseInLocation("2006-01", month, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --month %q, expected YYYY-MM", month)
				}
				ref = parsed
			}

			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			tasks := a.store.Tasks()

			w := a.out()
			fmt.Fprintln(w, ref.Format("January 2006"))
			tw := newTable(w)
			empty := true
			for _, day := range usecase.MonthDays(ref) {
				due := usecase.ByDueDate(tasks, day)
				if len(due) == 0 {
					continue
				}
				empty = false
				titles := make([]string, 0, len(due))
				for _, t := range due {
					titles = append(titles, fmt.Sprintf("%s [%s]", t.Title, t.Status))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", day.Format("02"), day.Format("Mon"), strings.Join(titles, "; "))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if empty {
				fmt.Fprintln(w, "No tasks due this month.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func (a *app) upcomingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show the nearest due tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			return printTasks(a.out(), usecase.Upcoming(a.store.Tasks(), a.opts.Now(), limit))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum number of tasks, 0 for all")
	return cmd
}
