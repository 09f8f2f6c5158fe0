package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spboyer/benchboard/internal/store"
	"github.com/spboyer/benchboard/internal/webapi"
	"github.com/spf13/cobra"
)

func newRankCommand(g *globalFlags) *cobra.Command {
	var (
		format    string
		failEmpty bool
	)

	cmd := &cobra.Command{
		Use:   "rank <task-id>",
		Short: "Show the leaderboard for one task",
		Long: `Show the leaderboard for one task.

Runs are ordered by the task's primary metric in its declared direction and
numbered by position. Every resubmission appears as its own row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, fs, err := g.openStore()
			if err != nil {
				return err
			}

			board, err := webapi.TaskLeaderboard(cmd.Context(), fs, args[0])
			if errors.Is(err, store.ErrTaskNotFound) {
				return fmt.Errorf("task %q not found", args[0])
			}
			if err != nil {
				return err
			}
			if failEmpty && len(board.Leaderboard) == 0 {
				return &EmptyLeaderboardError{Message: fmt.Sprintf("task %q has no submissions", args[0])}
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return writeJSON(out, board)
			}
			printTaskLeaderboard(out, board)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")
	cmd.Flags().BoolVar(&failEmpty, "fail-empty", false, "Exit with code 1 when the task has no submissions")

	return cmd
}

func printTaskLeaderboard(w io.Writer, board *webapi.TaskLeaderboardResponse) {
	task := board.Task
	fmt.Fprintf(w, "%s (%s)\n", task.Name, task.ID)
	metric, ok := task.PrimaryMetric()
	if !ok {
		fmt.Fprintln(w, "Task declares no metrics.")
		return
	}
	fmt.Fprintf(w, "Ranked by %s (%s), %s submissions\n\n", metric.Name, metric.Direction, formatCount(board.TotalSubmissions))
	if len(board.Leaderboard) == 0 {
		fmt.Fprintln(w, "No submissions yet.")
		return
	}

	headers := []string{"RANK", "MODEL", "SUBMITTER"}
	for _, m := range task.Metrics {
		headers = append(headers, m.Name)
	}
	right := []int{0}
	for i := range task.Metrics {
		right = append(right, 3+i)
	}
	t := newTable(headers...).alignRight(right...)
	for _, e := range board.Leaderboard {
		row := []string{formatCount(e.Rank), e.ModelName, orDash(e.Submitter)}
		for _, m := range task.Metrics {
			row = append(row, formatScore(e.MetricValue(m.Name)))
		}
		t.add(row...)
	}
	t.render(w)
}
