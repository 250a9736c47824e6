package cli

import (
	"fmt"

	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	status   string
	priority string
	assignee string
	search   string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.status, "status", entity.FilterAll, "status filter: all, todo, in-progress, done")
	cmd.Flags().StringVar(&f.priority, "priority", entity.FilterAll, "priority filter: all, low, medium, high")
	cmd.Flags().StringVar(&f.assignee, "assignee", entity.FilterAll, "assignee id, or all")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "case-insensitive text in title or description")
}

func (f *filterFlags) validate() error {
	if f.status != entity.FilterAll && !entity.Status(f.status).Valid() {
		return &entity.ValidationError{Field: "status", Reason: "must be one of all, todo, in-progress, done"}
	}
	if f.priority != entity.FilterAll && !entity.Priority(f.priority).Valid() {
		return &entity.ValidationError{Field: "priority", Reason: "must be one of all, low, medium, high"}
	}
	return nil
}

// loadFiltered загружает задачи и выставляет фильтры стора
func (a *app) loadFiltered(cmd *cobra.Command, f *filterFlags) error {
	if err := f.validate(); err != nil {
		return err
	}
	if err := a.store.Load(cmd.Context()); err != nil {
		return err
	}
	a.store.SetFilter(entity.Filter{
		Status:   entity.Status(f.status),
		Priority: entity.Priority(f.priority),
		Assignee: f.assignee,
	})
	a.store.SetSearchQuery(f.search)
	return nil
}

func (a *app) listCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks matching filters and search",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadFiltered(cmd, &f); err != nil {
				return err
			}
			visible := a.store.Visible()
			if err := printTasks(a.out(), visible); err != nil {
				return err
			}
			a.filterHint(len(visible))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

// filterHint напоминает, что часть задач скрыта фильтрами или поиском
func (a *app) filterHint(shown int) {
	if a.store.Filter().IsDefault() && a.store.SearchQuery() == "" {
		return
	}
	fmt.Fprintf(a.out(), "(filtered: %d of %d tasks)\n", shown, a.store.Len())
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task as stored on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.store.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printTask(a.out(), task)
		},
	}
}

func (a *app) boardCmd() *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show tasks grouped into status columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadFiltered(cmd, &f); err != nil {
				return err
			}
			w := a.out()
			shown := 0
			for i, col := range a.store.Board().Columns() {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s (%d)\n", columnTitle(col.Status), len(col.Tasks))
				for _, t := range col.Tasks {
					fmt.Fprintf(w, "  [%s] %s  %s\n", t.Priority, t.Title, t.ID)
				}
				shown += len(col.Tasks)
			}
			a.filterHint(shown)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
