package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "loadtest.json5", "The config file to read, loadtest.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request.")
}

var rootCmd = &cobra.Command{
	Use:   "umami-loadtest",
	Short: "umami-loadtest is a load generator for the Drupal Umami demo site.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(*verbose)
	},
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
