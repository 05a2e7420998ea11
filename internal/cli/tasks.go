package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/storage"
	"github.com/spf13/cobra"
)

const storeTimeout = 5 * time.Second

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a task to the To do column",
	Long: `Add a task. Flags fill the remaining fields.

Due dates accept:
  2026-03-01 14:30   local date and time
  2026-03-01         end of that day
  01/03/2026         day/month/year
  2h, in 3 days      relative to now`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		form, err := formFromFlags(cmd, strings.Join(args, " "))
		if err != nil {
			return err
		}
		task, err := model.NewFromForm(form, time.Now())
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, storeTimeout)
		defer cancel()
		if err := a.store.Create(ctx, task); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "added %s %s\n", shortID(task.ID), task.Title)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "ls [query]",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Long:    "List tasks in board order, optionally filtered by text, priority or status and paged with --limit/--offset.",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		filter, err := listFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		tasks, err := a.listTasks(cmd, filter)
		if err != nil {
			return err
		}
		tasks = model.Filter(tasks, query, model.PriorityFilterAll)

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			printf(out, "No tasks found. Use 'thetask add \"title\"' to create one.\n")
			return nil
		}
		now := time.Now()
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		printf(w, "ID\tSTATUS\tPRIORITY\tTITLE\tDUE\tTAGS\n")
		for _, t := range tasks {
			due := model.FormatDue(t)
			if t.IsOverdue(now) {
				due += " (overdue)"
			}
			printf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				shortID(t.ID), t.Status.Label(), t.Priority, truncate(t.Title, 40), due, strings.Join(t.Tags, ","))
		}
		return w.Flush()
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <id> <status>",
	Aliases: []string{"mv"},
	Short:   "Move a task to another column",
	Long:    "Move a task to todo, in_progress, done or blocked.",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := findTask(a.store, args[0])
		if err != nil {
			return err
		}
		status, err := model.ParseStatus(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, storeTimeout)
		defer cancel()
		if err := a.store.SetStatus(ctx, task.ID, status); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "moved %s to %s\n", shortID(task.ID), status.Label())
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a task",
	Long:  "Edit a task. Only the flags given are changed; --due \"\" clears the deadline.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		existing, err := findTask(a.store, args[0])
		if err != nil {
			return err
		}
		form := model.FormFromTask(existing)
		flags := cmd.Flags()
		if flags.Changed("title") {
			form.Title, _ = flags.GetString("title")
		}
		if flags.Changed("description") {
			form.Description, _ = flags.GetString("description")
		}
		if flags.Changed("tags") {
			form.Tags, _ = flags.GetString("tags")
		}
		if flags.Changed("priority") {
			raw, _ := flags.GetString("priority")
			if form.Priority, err = model.ParsePriority(raw); err != nil {
				return err
			}
		}
		if flags.Changed("status") {
			raw, _ := flags.GetString("status")
			if form.Status, err = model.ParseStatus(raw); err != nil {
				return err
			}
		}
		if flags.Changed("due") {
			raw, _ := flags.GetString("due")
			if form.Due, err = model.ParseDue(raw, time.Now()); err != nil {
				return err
			}
		}

		next, err := model.ApplyForm(existing, form)
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, storeTimeout)
		defer cancel()
		if err := a.store.Update(ctx, next); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "updated %s %s\n", shortID(next.ID), next.Title)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := findTask(a.store, args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, storeTimeout)
		defer cancel()
		if err := a.store.Delete(ctx, task.ID); err != nil {
			return err
		}
		printf(cmd.OutOrStdout(), "deleted %s %s\n", shortID(task.ID), task.Title)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity analytics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		sum := model.Summarize(a.store.Snapshot(), time.Now(), time.Local)
		out := cmd.OutOrStdout()
		printf(out, "tasks: %d  done: %d  completion: %d%%\n\n", sum.Total, sum.Done, sum.CompletionRate)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		printf(w, "STATUS\tCOUNT\n")
		for _, c := range sum.Status {
			printf(w, "%s\t%d\n", c.Status.Label(), c.Count)
		}
		printf(w, "\nPRIORITY\tTASKS\tDONE\n")
		for i, c := range sum.PriorityLoad {
			printf(w, "%s\t%d\t%d\n", c.Priority, c.Count, sum.PriorityCompletion[i].Count)
		}
		printf(w, "\nDAY\tCREATED\tCOMPLETED\n")
		for _, d := range sum.Week {
			printf(w, "%s\t%d\t%d\n", d.Day.Format("Mon 02 Jan"), d.Created, d.Completed)
		}
		return w.Flush()
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar <id>",
	Aliases: []string{"cal"},
	Short:   "Print a Google Calendar link for a task's deadline",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := findTask(a.store, args[0])
		if err != nil {
			return err
		}
		url, ok := model.CalendarURL(task)
		if !ok {
			return fmt.Errorf("task %s has no due date", shortID(task.ID))
		}
		printf(cmd.OutOrStdout(), "%s\n", url)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{addCmd, editCmd} {
		c.Flags().StringP("description", "d", "", "task description")
		c.Flags().StringP("priority", "p", "", "Low, Medium, High or Critical")
		c.Flags().StringP("status", "s", "", "todo, in_progress, done or blocked")
		c.Flags().StringP("tags", "t", "", "comma separated tags")
		c.Flags().String("due", "", "due date")
	}
	editCmd.Flags().String("title", "", "new title")

	listCmd.Flags().StringP("priority", "p", "all", "only this priority (or all)")
	listCmd.Flags().StringP("status", "s", "", "only this column")
	listCmd.Flags().Int("limit", 0, "show at most this many tasks")
	listCmd.Flags().Int("offset", 0, "skip this many tasks first")
}

func listFilterFromFlags(cmd *cobra.Command) (storage.TaskListFilter, error) {
	flags := cmd.Flags()
	var filter storage.TaskListFilter
	filter.Limit, _ = flags.GetInt("limit")
	filter.Offset, _ = flags.GetInt("offset")
	if filter.Limit < 0 || filter.Offset < 0 {
		return storage.TaskListFilter{}, errors.New("limit and offset must not be negative")
	}
	rawPriority, _ := flags.GetString("priority")
	pf, err := model.ParsePriorityFilter(rawPriority)
	if err != nil {
		return storage.TaskListFilter{}, err
	}
	if pf != model.PriorityFilterAll {
		filter.Priority = string(pf)
	}
	if rawStatus, _ := flags.GetString("status"); rawStatus != "" {
		status, err := model.ParseStatus(rawStatus)
		if err != nil {
			return storage.TaskListFilter{}, err
		}
		filter.Status = string(status)
	}
	return filter, nil
}

// listTasks reads through the backend's filtered query when it has one. Unreadable stored
// data lists as empty, the same way the Store opens it.
func (a *app) listTasks(cmd *cobra.Command, filter storage.TaskListFilter) ([]model.Task, error) {
	lister, ok := a.backend.(storage.Lister)
	if !ok {
		return nil, fmt.Errorf("storage backend %q cannot list tasks", a.cfg.StoreKind)
	}
	ctx, cancel := commandContext(cmd, storeTimeout)
	defer cancel()
	tasks, err := lister.ListTasks(ctx, filter)
	if errors.Is(err, storage.ErrCorrupt) {
		a.log.WithError(err).Warn("stored tasks unreadable, listing nothing")
		return []model.Task{}, nil
	}
	return tasks, err
}

func formFromFlags(cmd *cobra.Command, title string) (model.TaskForm, error) {
	flags := cmd.Flags()
	form := model.TaskForm{Title: title}
	form.Description, _ = flags.GetString("description")
	form.Tags, _ = flags.GetString("tags")

	var err error
	if raw, _ := flags.GetString("priority"); raw != "" {
		if form.Priority, err = model.ParsePriority(raw); err != nil {
			return model.TaskForm{}, err
		}
	}
	if raw, _ := flags.GetString("status"); raw != "" {
		if form.Status, err = model.ParseStatus(raw); err != nil {
			return model.TaskForm{}, err
		}
	}
	if raw, _ := flags.GetString("due"); raw != "" {
		if form.Due, err = model.ParseDue(raw, time.Now()); err != nil {
			return model.TaskForm{}, err
		}
	}
	return form, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
