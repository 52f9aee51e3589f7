package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/nameparse/internal/model"
	"github.com/sells-group/nameparse/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List stored batch runs, or show one run and its unparsed rows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if len(args) == 1 {
			limit, _ := cmd.Flags().GetInt("unparsed-limit")
			return showRun(ctx, cmd.OutOrStdout(), st, args[0], limit)
		}

		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		return listRuns(ctx, cmd.OutOrStdout(), st, store.RunFilter{
			Status: model.RunStatus(status),
			Limit:  limit,
		})
	},
}

func init() {
	runsCmd.Flags().String("status", "", "filter by run status (running, complete, failed)")
	runsCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsCmd.Flags().Int("unparsed-limit", 20, "max unparsed rows to show for one run")
	rootCmd.AddCommand(runsCmd)
}

func listRuns(ctx context.Context, out io.Writer, st store.Store, filter store.RunFilter) error {
	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return eris.Wrap(err, "runs list")
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "No runs found.")
		return nil
	}
	formatRunsList(out, runs)
	return nil
}

func showRun(ctx context.Context, out io.Writer, st store.Store, id string, limit int) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return eris.Wrap(err, "runs show")
	}
	unparsed, err := st.ListResults(ctx, id, true, limit)
	if err != nil {
		return eris.Wrap(err, "runs show")
	}
	formatRunDetail(out, *run, unparsed)
	return nil
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tSEEN\tPARSED\tRATE\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t------\t------\t----\t------\t----\t-------")

	for _, r := range runs {
		src := r.Source
		if len(src) > 40 {
			src = "..." + src[len(src)-37:]
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.1f%%\t%s\n",
			truncateID(r.ID),
			src,
			r.Status,
			r.Seen,
			r.Parsed,
			r.ParseRate()*100,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// formatRunDetail writes one run followed by its unparsed rows.
func formatRunDetail(out io.Writer, r model.Run, unparsed []model.NameRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "ID:\t%s\n", r.ID)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", r.Source)
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	_, _ = fmt.Fprintf(w, "Seen:\t%d\n", r.Seen)
	_, _ = fmt.Fprintf(w, "Parsed:\t%d (%.1f%%)\n", r.Parsed, r.ParseRate()*100)
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second))
	if r.Error != "" {
		_, _ = fmt.Fprintf(w, "Error:\t%s\n", r.Error)
	}
	_ = w.Flush()

	if len(unparsed) == 0 {
		return
	}

	_, _ = fmt.Fprintf(out, "\nUnparsed rows (%d shown):\n", len(unparsed))
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tORIGINAL\tCLEANED")
	for _, rec := range unparsed {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Row, rec.Original, rec.Cleaned)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
