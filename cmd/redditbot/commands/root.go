package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"redditbot/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose  bool
	dumpHttp string
)

var tel telemetry.API = telemetry.SlogAPI{}

var otelSetup telemetry.Telemetry

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")
	rootCmd.PersistentFlags().StringVar(&dumpHttp, "dump-http", "", "Write every http exchange to files in this directory.")
}

var rootCmd = &cobra.Command{
	Use:          "redditbot",
	Short:        "redditbot scans subreddits for relevant posts, answers its inbox and publishes template posts.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, verbose)

		var err error
		otelSetup, err = telemetry.SetupFromEnv(cmd.Context(), "redditbot")
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("no telemetry.json5 found, telemetry export disabled")
		} else if err != nil {
			slog.Warn("failed to setup telemetry export", "err", err)
		}

		if dumpHttp != "" {
			out, err := telemetry.NewFilesystemOutput(dumpHttp)
			if err != nil {
				slog.Warn("failed to prepare http dump directory", "dir", dumpHttp, "err", err)
				return
			}
			slog.Debug("dumping http exchanges", "dir", out.Dir())
			telemetry.SetHttpOutput(out)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otelSetup.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
