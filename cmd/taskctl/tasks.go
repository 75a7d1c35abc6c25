package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/St1cky1/task-manager/internal/board"
	"github.com/St1cky1/task-manager/internal/entity"
	"github.com/spf13/cobra"
)

func parseTaskID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

// parseCategory: "" или "none" снимает категорию
func parseCategory(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "none" || raw == "null" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("invalid category id %q", raw)
	}
	return &id, nil
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, open first, by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.board()
			if err := b.Load(cmd.Context()); err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), a.output, b.Snapshot().Tasks)
		},
	}
}

// formFlags - общие флаги add/edit, которые заполняют board.Form
type formFlags struct {
	description string
	priority    string
	date        string
	clock       string
	category    string
	completed   bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.priority, "priority", "p", "", "priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&f.date, "due", "", "due date, YYYY-MM-DD (\"none\" clears it)")
	cmd.Flags().StringVar(&f.clock, "at", "", "due time, HH:MM (default midnight)")
	cmd.Flags().StringVarP(&f.category, "category", "c", "", "category id")
	cmd.Flags().BoolVar(&f.completed, "done", false, "mark as completed")
}

func (f *formFlags) apply(cmd *cobra.Command, form *board.Form) error {
	flags := cmd.Flags()
	if flags.Changed("description") {
		form.Description = f.description
	}
	if flags.Changed("priority") {
		p, err := entity.ParsePriority(f.priority)
		if err != nil {
			return err
		}
		form.Priority = p
	}
	if flags.Changed("due") {
		form.Date = f.date
		if f.date == "none" {
			form.Date, form.Time = "", ""
		}
	}
	if flags.Changed("at") {
		form.Time = f.clock
	}
	if flags.Changed("category") {
		cat, err := parseCategory(f.category)
		if err != nil {
			return err
		}
		form.CategoryID = cat
	}
	if flags.Changed("done") {
		form.Completed = f.completed
	}
	return nil
}

func addCmd(a *app) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := board.NewForm()
			form.Title = strings.Join(args, " ")
			if err := flags.apply(cmd, form); err != nil {
				return err
			}
			if !form.CanSave() {
				return board.ErrTitleRequired
			}

			b := a.board()
			if err := b.Save(cmd.Context(), form); err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), a.output, b.Snapshot().Tasks)
		},
	}
	flags.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var (
		flags formFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			task, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}

			form := board.EditForm(*task)
			if cmd.Flags().Changed("title") {
				form.Title = title
			}
			if err := flags.apply(cmd, form); err != nil {
				return err
			}

			b := a.board()
			if err := b.Save(cmd.Context(), form); err != nil {
				return err
			}
			// категория не входит в полное обновление, меняем отдельным запросом
			if cmd.Flags().Changed("category") {
				if err := b.SetCategory(cmd.Context(), id, form.CategoryID); err != nil {
					return err
				}
			}
			updated, err := a.api.GetTask(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeTask(cmd.OutOrStdout(), a.output, *updated)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	flags.register(cmd)
	return cmd
}

// boardAction загружает список, применяет изменение и печатает обновлённый список
func boardAction(cmd *cobra.Command, a *app, action func(b *board.Board) error) error {
	b := a.board()
	if err := b.Load(cmd.Context()); err != nil {
		return err
	}
	if err := action(b); err != nil {
		return err
	}
	return writeTasks(cmd.OutOrStdout(), a.output, b.Snapshot().Tasks)
}

func toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the completed flag of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return boardAction(cmd, a, func(b *board.Board) error {
				return b.Toggle(cmd.Context(), id)
			})
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			return boardAction(cmd, a, func(b *board.Board) error {
				return b.Delete(cmd.Context(), id)
			})
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <TODO|IN_PROGRESS|COMPLETED>",
		Short: "Set the workflow status of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			status, err := entity.ParseStatus(args[1])
			if err != nil {
				return err
			}
			return boardAction(cmd, a, func(b *board.Board) error {
				return b.SetStatus(cmd.Context(), id, status)
			})
		},
	}
}

func categoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category <id> <category-id|none>",
		Short: "Move a task to a category or clear it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			cat, err := parseCategory(args[1])
			if err != nil {
				return err
			}
			return boardAction(cmd, a, func(b *board.Board) error {
				return b.SetCategory(cmd.Context(), id, cat)
			})
		},
	}
}

func searchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search tasks by title",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			tasks, err := a.api.SearchTasks(cmd.Context(), query)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), a.output, tasks)
		},
	}
}

func filterCmd(a *app) *cobra.Command {
	var category, priority, status, from, to, sort string
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Filter and sort tasks",
		Long: `Filter tasks; all given conditions must match.

Examples:
  taskctl filter --priority HIGH --status TODO
  taskctl filter --from 2024-01-01 --to 2024-01-31 --sort priority,desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var f entity.TaskFilter
			var err error
			if f.CategoryID, err = parseCategory(category); err != nil {
				return err
			}
			if priority != "" {
				if f.Priority, err = entity.ParsePriority(priority); err != nil {
					return err
				}
			}
			if status != "" {
				if f.Status, err = entity.ParseStatus(status); err != nil {
					return err
				}
			}
			if f.From, err = parseDay(from, false); err != nil {
				return err
			}
			if f.To, err = parseDay(to, true); err != nil {
				return err
			}
			if f.SortField, f.SortDesc, err = entity.ParseSort(sort); err != nil {
				return err
			}

			tasks, err := a.api.FilterTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), a.output, tasks)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "category id")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (LOW, MEDIUM, HIGH)")
	cmd.Flags().StringVar(&status, "status", "", "status (TODO, IN_PROGRESS, COMPLETED)")
	cmd.Flags().StringVar(&from, "from", "", "due on or after, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "due on or before, YYYY-MM-DD")
	cmd.Flags().StringVar(&sort, "sort", "dueDate,asc", "sort field and direction")
	return cmd
}

// parseDay переводит локальный день в момент времени; для верхней границы - конец дня
func parseDay(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	if endOfDay {
		d = d.AddDate(0, 0, 1).Add(-time.Second)
	}
	return &d, nil
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the audit trail of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			history, err := a.api.TaskHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			return writeHistory(cmd.OutOrStdout(), a.output, history)
		},
	}
}
