package commands

import (
	"context"
	"log/slog"
	"os"
	"time"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/loadtest"
	"umami-loadtest/internal/results"
	"umami-loadtest/internal/transport"
	"umami-loadtest/internal/visit"
	"umami-loadtest/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	runHost      *string
	runUsers     *int
	runHatchRate *float64
	runTime      *time.Duration
	runDb        *string
)

func init() {
	runHost = runCmd.Flags().String("host", loadtest.DefaultHost, "The site to load test.")
	runUsers = runCmd.Flags().IntP("users", "u", 10, "The number of concurrent users.")
	runHatchRate = runCmd.Flags().Float64P("hatch-rate", "r", 1, "How many users are started per second.")
	runTime = runCmd.Flags().DurationP("run-time", "t", time.Minute, "How long the test runs, 0 runs until Ctrl+C.")
	runDb = runCmd.Flags().String("db", "", "The sqlite database to save the results to.")
	rootCmd.AddCommand(runCmd)
}

// loadConfig reads the config file and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) loadtest.Config {
	cfg, err := loadtest.LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = *runHost
	}
	if flags.Changed("users") {
		cfg.Users = *runUsers
	}
	if flags.Changed("hatch-rate") {
		cfg.HatchRate = *runHatchRate
	}
	if flags.Changed("run-time") {
		cfg.RunTimeSeconds = int(runTime.Seconds())
	}
	if flags.Changed("db") {
		cfg.Database = *runDb
	}

	if err := cfg.Validate(); err != nil {
		serviceutil.Fatal("invalid config", err)
	}
	return cfg
}

func newFetcherFactory(opts transport.Options) loadtest.FetcherFactory {
	return func(tel telemetry.API) (visit.Fetcher, error) {
		client, err := transport.New(opts, tel)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

var runCmd = &cobra.Command{
	Use:   "run [--host <url>] [--users <n>] [--hatch-rate <n>] [--run-time <duration>] [--db <path/to/results.db>]",
	Short: "Runs the load test and prints a report.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig(cmd)
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		t, err := telemetry.Setup(ctx, "umami-loadtest", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("setup telemetry", err)
		}
		defer t.Shutdown(context.Background())

		tel := telemetry.SlogAPI{}
		telemetry.InstrumentPerfStats(ctx, tel, 10*time.Second)

		meters, err := telemetry.NewMeters()
		if err != nil {
			serviceutil.Fatal("failed to create meters", err)
		}
		plan, err := loadtest.UmamiPlan(cfg.TaskSets)
		if err != nil {
			serviceutil.Fatal("invalid task sets", err)
		}

		slog.Info(
			"starting load test",
			"host", cfg.Host,
			"users", cfg.Users,
			"hatch_rate", cfg.HatchRate,
			"run_time", cfg.RunTime(),
			"seed", cfg.Seed,
		)
		runner := loadtest.NewRunner(
			plan,
			cfg.RunnerOptions(),
			newFetcherFactory(cfg.TransportOptions()),
			meters,
			tel,
		)
		report, err := runner.Run(ctx)
		report.Render(os.Stdout)
		if err != nil {
			serviceutil.Fatal("load test stopped early", err)
		}

		if cfg.Database == "" {
			return
		}
		store, err := results.Open(context.Background(), cfg.Database)
		if err != nil {
			serviceutil.Fatal("failed to open results db", err)
		}
		defer store.Close()
		runId, err := store.SaveReport(context.Background(), cfg.Host, cfg.Seed, report)
		if err != nil {
			serviceutil.Fatal("failed to save results", err)
		}
		slog.Info("saved results", "db", cfg.Database, "run", runId)
	},
}
