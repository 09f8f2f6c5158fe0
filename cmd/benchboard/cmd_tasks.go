package main

import (
	"fmt"
	"strings"

	"github.com/spboyer/benchboard/internal/store"
	"github.com/spf13/cobra"
)

func newTasksCommand(g *globalFlags) *cobra.Command {
	var (
		sel    store.Selection
		format string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List benchmark tasks and their submission counts",
		Long: `List benchmark tasks sorted by name.

--family, --tag and --doc-type narrow the list; when several are given a
task must match all of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			_, fs, err := g.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			tasks, err := fs.MatchTasks(ctx, sel)
			if err != nil {
				return err
			}
			summaries, err := fs.TaskSummaries(ctx, tasks)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == formatJSON {
				return writeJSON(out, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			t := newTable("ID", "NAME", "FAMILY", "DOC TYPE", "TAGS", "SUBMISSIONS").alignRight(5)
			for _, s := range summaries {
				t.add(s.ID, s.Name, orDash(s.Family), orDash(s.DocumentType),
					orDash(strings.Join(s.Tags, ",")), formatCount(s.SubmissionCount))
			}
			t.render(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&sel.Family, "family", "", "Only tasks in this family")
	cmd.Flags().StringVar(&sel.Tag, "tag", "", "Only tasks carrying this tag")
	cmd.Flags().StringVar(&sel.DocumentType, "doc-type", "", "Only tasks with this document type")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")

	return cmd
}
