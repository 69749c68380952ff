package commands

import (
	"fmt"
	"os"
	"strconv"
	"time"
	"umami-loadtest/internal/loadtest"
	"umami-loadtest/internal/results"
	"umami-loadtest/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsDb *string

func init() {
	runsDb = runsCmd.Flags().String("db", "", "The results database, defaults to the database of the config.")
	rootCmd.AddCommand(runsCmd)
}

func msCell(d time.Duration) string {
	return fmt.Sprintf("%.1f", float64(d.Microseconds())/1000)
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	return t
}

var runsCmd = &cobra.Command{
	Use:   "runs [--db <path/to/results.db>] [run_id]",
	Short: "Lists saved runs, or prints the results of one run.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		path := *runsDb
		if path == "" {
			cfg, err := loadtest.LoadConfig(*configPath)
			if err != nil {
				serviceutil.Fatal("failed to read config", err)
			}
			path = cfg.Database
		}
		if path == "" {
			serviceutil.Fatal("no results database", fmt.Errorf("pass --db or set database in %s", *configPath))
		}

		store, err := results.Open(ctx, path)
		if err != nil {
			serviceutil.Fatal("failed to open results db", err)
		}
		defer store.Close()

		if len(args) == 0 {
			runs, err := store.Runs(ctx)
			if err != nil {
				serviceutil.Fatal("failed to list runs", err)
			}
			t := newTable("Runs")
			t.AppendHeader(table.Row{"ID", "Started", "Elapsed", "Host", "Users", "Seed"})
			for _, run := range runs {
				t.AppendRow(table.Row{
					run.ID,
					run.StartedAt.Format(time.DateTime),
					run.Elapsed,
					run.Host,
					run.Users,
					run.Seed,
				})
			}
			t.Render()
			return
		}

		runId, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			serviceutil.Fatal("invalid run id", err)
		}
		rows, err := store.Stats(ctx, runId)
		if err != nil {
			serviceutil.Fatal("failed to read stats", err)
		}
		t := newTable(fmt.Sprintf("Run %d", runId))
		t.AppendHeader(table.Row{"Kind", "Name", "# reqs", "# fails", "Avg (ms)", "Min (ms)", "Max (ms)", "p50", "p95", "p99"})
		for _, row := range rows {
			t.AppendRow(table.Row{
				row.Kind, row.Name, row.Count, row.Failures,
				msCell(row.Avg), msCell(row.Min), msCell(row.Max),
				msCell(row.P50), msCell(row.P95), msCell(row.P99),
			})
		}
		t.Render()

		failures, err := store.Failures(ctx, runId)
		if err != nil {
			serviceutil.Fatal("failed to read failures", err)
		}
		if len(failures) == 0 {
			return
		}
		t = newTable("Failures")
		t.AppendHeader(table.Row{"# occurrences", "Name", "Reason"})
		for _, f := range failures {
			t.AppendRow(table.Row{f.Count, f.Name, f.Reason})
		}
		t.Render()
	},
}
