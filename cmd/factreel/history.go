package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"factreel/internal/storage"
	"factreel/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const factColumnWidth = 40

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(root.dbPath, zap.NewNop())
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of runs to show")
	return cmd
}

func printHistory(w io.Writer, runs []types.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tSTATUS\tSEGMENTS\tDURATION\tFACT\tDETAIL")
	for _, run := range runs {
		detail := run.OutputPath
		if run.Status == types.RunFailed {
			detail = fmt.Sprintf("%s: %s", run.FailStage, run.FailReason)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1fs\t%s\t%s\n",
			run.RunId,
			time.UnixMilli(run.CreateTime).Format(time.DateTime),
			run.Status,
			run.SegmentCount,
			run.Duration,
			truncate(run.Fact, factColumnWidth),
			detail,
		)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
