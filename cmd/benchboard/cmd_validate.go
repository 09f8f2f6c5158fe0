package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spboyer/benchboard/internal/store"
	"github.com/spboyer/benchboard/internal/validation"
	"github.com/spf13/cobra"
)

// fileReport is the validation outcome of one data file.
type fileReport struct {
	Path   string   `json:"path"`
	Kind   string   `json:"kind"`
	Errors []string `json:"errors,omitempty"`
}

func newValidateCommand(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check task and evaluation run files against their schemas",
		Long: `Check every task file and evaluation run file against its JSON schema.

Task files are tasks/*.json, *.yaml and *.yml. Run files are
eval_runs/<task_id>/*.json, optionally compressed as .json.gz or .json.zst.
Run directories without a matching task are reported as warnings.

Exits with code 1 when any file is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			reports, taskIDs, err := validateTasks(cfg.TasksDir())
			if err != nil {
				return err
			}
			runReports, orphans, err := validateRuns(cfg.EvalRunsDir(), taskIDs)
			if err != nil {
				return err
			}
			reports = append(reports, runReports...)

			invalid := 0
			for _, r := range reports {
				if len(r.Errors) > 0 {
					invalid++
				}
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				if err := writeJSON(out, reports); err != nil {
					return err
				}
			} else {
				printValidation(out, reports, orphans, invalid)
			}
			if invalid > 0 {
				return &InvalidDataError{Files: invalid}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")

	return cmd
}

// validateTasks checks every task file and returns the task ids it found.
func validateTasks(dir string) ([]fileReport, map[string]bool, error) {
	entries, err := readDirIfExists(dir)
	if err != nil {
		return nil, nil, err
	}
	ids := make(map[string]bool)
	var reports []fileReport
	for _, e := range entries {
		if e.IsDir() || !store.IsTaskFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		r := fileReport{Path: path, Kind: "task"}
		data, err := store.ReadDataFile(path)
		if err != nil {
			r.Errors = []string{err.Error()}
		} else {
			r.Errors = validation.ValidateTaskBytes(data)
			if id := taskIDOf(path); id != "" {
				ids[id] = true
			}
		}
		reports = append(reports, r)
	}
	return reports, ids, nil
}

// validateRuns checks every run file under dir. It also returns the run
// directories that have no matching task.
func validateRuns(dir string, taskIDs map[string]bool) ([]fileReport, []string, error) {
	entries, err := readDirIfExists(dir)
	if err != nil {
		return nil, nil, err
	}
	var (
		reports []fileReport
		orphans []string
	)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !taskIDs[e.Name()] {
			orphans = append(orphans, e.Name())
		}
		sub := filepath.Join(dir, e.Name())
		files, err := os.ReadDir(sub)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", sub, err)
		}
		for _, f := range files {
			if f.IsDir() || !store.IsRunFile(f.Name()) {
				continue
			}
			path := filepath.Join(sub, f.Name())
			r := fileReport{Path: path, Kind: "run"}
			data, err := store.ReadDataFile(path)
			if err != nil {
				r.Errors = []string{err.Error()}
			} else {
				r.Errors = validation.ValidateRunBytes(data)
			}
			reports = append(reports, r)
		}
	}
	sort.Strings(orphans)
	return reports, orphans, nil
}

// taskIDOf returns the task_id a task file declares, or "" when it cannot
// be decoded.
func taskIDOf(path string) string {
	task, err := store.ReadTaskFile(path)
	if err != nil {
		return ""
	}
	return task.ID
}

func readDirIfExists(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	return entries, nil
}

func printValidation(w io.Writer, reports []fileReport, orphans []string, invalid int) {
	for _, r := range reports {
		if len(r.Errors) == 0 {
			fmt.Fprintf(w, "✓ %s\n", r.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", r.Path)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "    %s\n", e)
		}
	}
	for _, id := range orphans {
		fmt.Fprintf(w, "⚠ eval_runs/%s has no matching task\n", id)
	}
	fmt.Fprintf(w, "\n%s file(s) checked, %s invalid\n", formatCount(len(reports)), formatCount(invalid))
}
