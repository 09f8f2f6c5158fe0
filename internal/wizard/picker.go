// Package wizard holds the interactive terminal forms of the CLI.
package wizard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spboyer/benchboard/internal/models"
	"golang.org/x/term"
)

// PickTasks runs an interactive multi-select over tasks and returns the
// chosen task IDs in catalog order. preselected IDs start checked.
func PickTasks(in io.Reader, out io.Writer, tasks []models.Task, preselected []string) ([]string, error) {
	if len(tasks) == 0 {
		return nil, errors.New("no tasks to choose from")
	}
	selected := append([]string(nil), preselected...)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Tasks to rank").
				Description("Models are only ranked if they have results on every selected task").
				Options(TaskOptions(tasks, preselected)...).
				Value(&selected).
				Filterable(true).
				Validate(func(ids []string) error {
					if len(ids) == 0 {
						return fmt.Errorf("select at least one task")
					}
					return nil
				}),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("task picker failed: %w", err)
	}
	return inCatalogOrder(tasks, selected), nil
}

// TaskOptions builds the picker options, labelled with each task's family
// and document type.
func TaskOptions(tasks []models.Task, preselected []string) []huh.Option[string] {
	pre := make(map[string]bool, len(preselected))
	for _, id := range preselected {
		pre[id] = true
	}
	opts := make([]huh.Option[string], len(tasks))
	for i, t := range tasks {
		opts[i] = huh.NewOption(TaskLabel(t), t.ID).Selected(pre[t.ID])
	}
	return opts
}

// TaskLabel renders a task as "Name (family, document type)".
func TaskLabel(t models.Task) string {
	name := t.Name
	if name == "" {
		name = t.ID
	}
	var facets []string
	for _, f := range []string{t.Family, t.DocumentType} {
		if f != "" {
			facets = append(facets, f)
		}
	}
	if len(facets) == 0 {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, strings.Join(facets, ", "))
}

func inCatalogOrder(tasks []models.Task, ids []string) []string {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, t := range tasks {
		if want[t.ID] {
			out = append(out, t.ID)
		}
	}
	return out
}
