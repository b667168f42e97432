package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codepomodoro/internal/platform"
	"codepomodoro/internal/ui/view"
)

const appName = view.AppName

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
	address    string
	logger     *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "codepomodoro",
		Short:         "Pomodoro focus timer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			slog.SetDefault(logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "settings file (default <config dir>/CodePomodoro/settings.yaml)")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the state database")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.address, "address", platform.ControlAddress(appName), "control address of the running instance")

	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newControlCmds(opts)...)
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newQuickStartCmd(opts))
	root.AddCommand(newSettingsCmd(opts))
	root.AddCommand(newAutostartCmd())
	return root
}

func newLogger(out io.Writer, level string) (*slog.Logger, error) {
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: parsed})), nil
}
