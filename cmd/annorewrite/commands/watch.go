package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
	"github.com/Sumatoshi-tech/annorewrite/pkg/watch"
)

// WatchCommand rewrites Java files whenever they change.
type WatchCommand struct {
	global  *GlobalOptions
	flags   rewriteFlags
	initial bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(global *GlobalOptions) *cobra.Command {
	wc := &WatchCommand{global: global}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Rewrite Java files as they change",
		Long: `Watch the given paths (default: the current directory) and apply the
recipe to every changed Java file once the tree has been quiet for
watch.debounce. Changes are always written. Stop with Ctrl-C.`,
		RunE: wc.run,
	}

	wc.flags.register(cmd)
	cmd.Flags().BoolVar(&wc.initial, "initial", false, "rewrite every selected file once before watching")

	return cmd
}

func (wc *WatchCommand) run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cmd, wc.global, &wc.flags, observability.ModeWatch, true)
	if err != nil {
		return err
	}

	return errors.Join(wc.watch(ctx, s, args), s.close(context.WithoutCancel(cmd.Context())))
}

func (wc *WatchCommand) watch(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	if wc.initial {
		report, err := discoverAndRun(ctx, s, args)
		if report != nil {
			wc.print(s, report)
		}

		if err != nil {
			return err
		}
	}

	w, err := watch.New(args, s.patterns, func(ctx context.Context, paths []string) {
		report, runErr := s.runner.Run(ctx, paths)
		if report != nil {
			wc.print(s, report)
		}

		if runErr != nil && ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "rewrite batch failed", "error", runErr)
		}
	},
		watch.WithDebounce(s.cfg.Watch.Debounce),
		watch.WithLogger(s.logger),
	)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "watching for changes", "paths", args, "recipe", s.runner.Recipe().Name)

	return w.Run(ctx)
}

func (wc *WatchCommand) print(s *session, report *runner.Report) {
	for _, f := range report.Files {
		if f.Diff != "" {
			writeDiff(s.out, f.Diff)
		}
	}

	writeFileNotes(s.errOut, report)

	if report.Pending() > 0 && !wc.global.Quiet {
		writeSummary(s.errOut, report, true)
	}
}
