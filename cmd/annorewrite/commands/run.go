package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
	"github.com/Sumatoshi-tech/annorewrite/pkg/runner"
)

// ErrFilesFailed is returned when at least one file could not be processed.
var ErrFilesFailed = errors.New("some files failed")

// RunCommand rewrites Java sources in place or previews the changes.
type RunCommand struct {
	global *GlobalOptions
	flags  rewriteFlags
	write  bool
	dryRun bool
	noDiff bool
}

// NewRunCommand creates the run command.
func NewRunCommand(global *GlobalOptions) *cobra.Command {
	rc := &RunCommand{global: global}

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Apply a recipe to Java sources",
		Long: `Apply a recipe to every selected Java file under the given paths
(default: the current directory).

Files are written back only when run.write is set in the configuration
or --write is given; otherwise the run prints a diff of what would change.`,
		RunE: rc.run,
	}

	rc.flags.register(cmd)
	cmd.Flags().BoolVar(&rc.write, "write", false, "write rewritten files back to disk")
	cmd.Flags().BoolVarP(&rc.dryRun, "dry-run", "n", false, "never write, only report")
	cmd.Flags().BoolVar(&rc.noDiff, "no-diff", false, "do not print diffs")
	cmd.MarkFlagsMutuallyExclusive("write", "dry-run")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(rc.global)
	if err != nil {
		return err
	}

	write := cfg.Run.Write
	if cmd.Flags().Changed("write") {
		write = rc.write
	}

	if rc.dryRun {
		write = false
	}

	s, err := newSession(cmd, rc.global, &rc.flags, observability.ModeRun, write)
	if err != nil {
		return err
	}

	report, runErr := discoverAndRun(cmd.Context(), s, args)
	if report != nil {
		rc.render(s, report, runErr == nil)
	}

	return errors.Join(runErr, failedFiles(report), s.close(context.WithoutCancel(cmd.Context())))
}

func (rc *RunCommand) render(s *session, report *runner.Report, complete bool) {
	if !rc.noDiff && s.cfg.Run.Diff {
		for _, f := range report.Files {
			if f.Diff != "" {
				writeDiff(s.out, f.Diff)
			}
		}
	}

	writeFileNotes(s.errOut, report)

	if complete && !rc.global.Quiet {
		writeSummary(s.errOut, report, s.write)
	}
}

func discoverAndRun(ctx context.Context, s *session, args []string) (*runner.Report, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	paths, err := runner.Discover(ctx, args, s.patterns)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "discovered files", "files", len(paths), "recipe", s.runner.Recipe().Name)

	return s.runner.Run(ctx, paths)
}

func failedFiles(report *runner.Report) error {
	if report == nil || report.Count(observability.FileFailed) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrFilesFailed, report.Err())
}
