package cli

import (
	"errors"
	"fmt"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/St1cky1/taskboard/internal/usecase"
	"github.com/spf13/cobra"
)

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "report",
		Aliases: []string{"stats"},
		Short:   "Show counts, completion rate and distributions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			tasks := a.store.Tasks()
			w := a.out()

			counts := usecase.Counts(tasks)
			tw := newTable(w)
			fmt.Fprintf(tw, "Total tasks:\t%d\n", counts.Total)
			fmt.Fprintf(tw, "Completed:\t%d\n", counts.Done)
			fmt.Fprintf(tw, "In progress:\t%d\n", counts.InProgress)
			fmt.Fprintf(tw, "To do:\t%d\n", counts.Todo)
			fmt.Fprintf(tw, "Overdue:\t%d\n", usecase.Overdue(tasks, a.opts.Now()))
			fmt.Fprintf(tw, "Completion rate:\t%d%%\n", usecase.CompletionRate(tasks))
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(w, "\nBy status")
			tw = newTable(w)
			for _, share := range usecase.StatusDistribution(tasks) {
				fmt.Fprintf(tw, "  %s\t%d\t%d%%\n", share.Status, share.Count, share.Percent)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(w, "\nBy priority")
			prio := usecase.PriorityDistribution(tasks)
			tw = newTable(w)
			for _, p := range entity.Priorities {
				fmt.Fprintf(tw, "  %s\t%d\t%d%%\n", p, prio.Count(p), prio.Percent(p))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			stats, err := usecase.PerAssignee(tasks)
			if err != nil && !errors.Is(err, entity.ErrMissingAssignee) {
				return err
			}
			fmt.Fprintln(w, "\nBy assignee")
			tw = newTable(w)
			fmt.Fprintln(tw, "  ASSIGNEE\tTOTAL\tDONE\tRATE")
			for _, s := range stats {
				name := s.Assignee.Name
				if name == "" {
					name = s.Assignee.ID
				}
				fmt.Fprintf(tw, "  %s\t%d\t%d\t%d%%\n", name, s.Total, s.Completed, s.Rate)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if err != nil {
				a.log.WithError(err).Warn("задачи без исполнителя не попали в отчет")
				fmt.Fprintf(w, "  (%v)\n", err)
			}
			return nil
		},
	}
}

func (a *app) dashboardCmd() *cobra.Command {
	var recent int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show task counts and the most recent tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Load(cmd.Context()); err != nil {
				return err
			}
			tasks := a.store.Tasks()
			w := a.out()

			counts := usecase.Counts(tasks)
			fmt.Fprintf(w, "Total %d  |  To do %d  |  In progress %d  |  Done %d\n",
				counts.Total, counts.Todo, counts.InProgress, counts.Done)

			fmt.Fprintln(w, "\nRecent tasks")
			return printTasks(w, usecase.Recent(tasks, recent))
		},
	}
	cmd.Flags().IntVarP(&recent, "recent", "n", 5, "number of recent tasks")
	return cmd
}
