package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/St1cky1/task-manager/internal/entity"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

// taskView - плоское представление задачи для вывода
type taskView struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Priority    string `yaml:"priority"`
	Status      string `yaml:"status"`
	Completed   bool   `yaml:"completed"`
	DueDate     string `yaml:"dueDate,omitempty"`
	CategoryID  string `yaml:"categoryId,omitempty"`
}

func viewOf(t entity.Task) taskView {
	v := taskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Completed:   t.Completed,
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.Local().Format("2006-01-02 15:04")
	}
	if t.CategoryID != nil {
		v.CategoryID = strconv.FormatInt(*t.CategoryID, 10)
	}
	return v
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func writeTasks(w io.Writer, format string, tasks []entity.Task) error {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = viewOf(t)
	}
	if format == outputYAML {
		return writeYAML(w, views)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tSTATUS\tPRIORITY\tDUE\tCATEGORY\tTITLE")
	for _, v := range views {
		done := " "
		if v.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, done, v.Status, v.Priority, dash(v.DueDate), dash(v.CategoryID), v.Title)
	}
	return tw.Flush()
}

func writeTask(w io.Writer, format string, t entity.Task) error {
	if format == outputYAML {
		return writeYAML(w, viewOf(t))
	}
	return writeTasks(w, format, []entity.Task{t})
}

func writeCategories(w io.Writer, format string, items []entity.Category) error {
	if format == outputYAML {
		return writeYAML(w, items)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range items {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

type auditView struct {
	Action    string `yaml:"action"`
	ChangedAt string `yaml:"changedAt"`
	Changes   string `yaml:"changes,omitempty"`
}

func writeHistory(w io.Writer, format string, history []entity.TaskAudit) error {
	views := make([]auditView, len(history))
	for i, h := range history {
		views[i] = auditView{Action: string(h.Action), ChangedAt: h.ChangedAt.Local().Format(time.DateTime)}
		if h.Changes != nil {
			views[i].Changes = *h.Changes
		}
	}
	if format == outputYAML {
		return writeYAML(w, views)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tCHANGES")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", v.ChangedAt, v.Action, dash(v.Changes))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
