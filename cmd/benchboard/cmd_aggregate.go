package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spboyer/benchboard/internal/models"
	"github.com/spboyer/benchboard/internal/store"
	"github.com/spboyer/benchboard/internal/webapi"
	"github.com/spboyer/benchboard/internal/wizard"
	"github.com/spf13/cobra"
)

func newAggregateCommand(g *globalFlags) *cobra.Command {
	var (
		sel         store.Selection
		format      string
		failEmpty   bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate [task-id...]",
		Short: "Rank models across a selection of tasks",
		Long: `Rank models across a selection of tasks.

Tasks are chosen by --family, else --tag, else --doc-type, else the task ids
given as arguments, else every task. With --interactive a picker lets you
adjust the selection first.

Only models with a run on every selected task are ranked. Per-task ranks are
computed among those models, ties share a rank, and models are ordered by
their mean rank.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, fs, err := g.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sel.TaskIDs = args
			ids, err := fs.SelectTaskIDs(ctx, sel)
			if err != nil {
				return err
			}
			if interactive {
				tasks, err := fs.ListTasks(ctx)
				if err != nil {
					return err
				}
				ids, err = wizard.PickTasks(cmd.InOrStdin(), cmd.ErrOrStderr(), tasks, ids)
				if err != nil {
					return err
				}
			}

			board, err := webapi.AggregateView(ctx, fs, ids, slog.Default())
			if err != nil {
				return err
			}
			if failEmpty && len(board) == 0 {
				return &EmptyLeaderboardError{Message: fmt.Sprintf("no model has submissions for all %d selected tasks", len(ids))}
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return writeJSON(out, webapi.AggregateResponse{TaskIDs: ids, Leaderboard: board})
			}
			printAggregate(out, ids, board)
			return nil
		},
	}

	cmd.Flags().StringVar(&sel.Family, "family", "", "Select the tasks of this family")
	cmd.Flags().StringVar(&sel.Tag, "tag", "", "Select the tasks carrying this tag")
	cmd.Flags().StringVar(&sel.DocumentType, "doc-type", "", "Select the tasks with this document type")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")
	cmd.Flags().BoolVar(&failEmpty, "fail-empty", false, "Exit with code 1 when no model covers every selected task")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the tasks interactively")

	return cmd
}

func printAggregate(w io.Writer, ids []string, board []models.AggregateEntry) {
	fmt.Fprintf(w, "Aggregate over %s task(s)\n\n", formatCount(len(ids)))
	if len(board) == 0 {
		fmt.Fprintln(w, "No model has submissions for every selected task.")
		return
	}
	t := newTable("RANK", "MODEL", "SUBMITTER", "AVG RANK", "WINS", "AVG SCORE", "AVG METRIC", "TASKS", "SUBMISSIONS").
		alignRight(0, 3, 4, 5, 6, 7, 8)
	for _, e := range board {
		t.add(
			formatCount(e.Rank),
			e.Model,
			orDash(e.Submitter),
			printer.Sprintf("%.2f", e.AvgRank),
			formatCount(e.Wins),
			formatScore(e.AvgNormalizedScore),
			formatScore(e.AvgRawMetric),
			fmt.Sprintf("%d/%d", e.NumTasks, e.TotalTasks),
			formatCount(e.NumSubmissions),
		)
	}
	t.render(w)
}
