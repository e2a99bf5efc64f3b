package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/CTAG07/dummytext/pkg/runlog"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var (
		statsDB string
		limit   int
	)

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs from the stats database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("stats-db") {
				if v := os.Getenv(envStatsDB); v != "" {
					statsDB = v
				}
			}
			if statsDB == "" {
				return errors.New("no stats database given, use --stats-db or " + envStatsDB)
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}

			db, err := openStatsDB(statsDB)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()
			if err = runlog.SetupSchema(db); err != nil {
				return err
			}
			store, err := runlog.NewStore(db)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			runs, err := store.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			summary, err := store.Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to summarize runs: %w", err)
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "RUN\tSTARTED\tINPUT\tNODES\tSPLITS\tCONFIG\tSEED\tCORPUS")
			for _, run := range runs {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					run.ID.String()[:8],
					run.StartedAt.Format(time.DateTime),
					humanize.Bytes(uint64(run.InputBytes)),
					humanize.Comma(int64(run.Nodes)),
					humanize.Comma(run.Splits),
					runConfig(run),
					run.Seed,
					shortDigest(run.CorpusDigest),
				)
			}
			if err = tw.Flush(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "%s runs over %s corpora, %s symbols ingested, largest graph %s nodes\n",
				humanize.Comma(summary.Runs),
				humanize.Comma(summary.DistinctCorpora),
				humanize.Comma(summary.TotalSymbols),
				humanize.Comma(summary.MaxNodes),
			)
			return err
		},
	}

	runsCmd.Flags().StringVar(&statsDB, "stats-db", "", "SQLite file runs were recorded in")
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show, newest first")
	return runsCmd
}

func runConfig(run runlog.Run) string {
	config := fmt.Sprintf("s=%d r=%d l=%d n=%d", run.MinVisits, run.MinRemaining, run.Length, run.NormalizeThreshold)
	if run.GoBack {
		config += " go-back"
	}
	return config
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
