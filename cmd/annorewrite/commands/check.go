package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/observability"
)

// ErrPendingRewrites is returned by check when files would be modified.
var ErrPendingRewrites = errors.New("rewrites pending")

// CheckCommand reports files a recipe would modify without writing them.
type CheckCommand struct {
	global *GlobalOptions
	flags  rewriteFlags
}

// NewCheckCommand creates the check command.
func NewCheckCommand(global *GlobalOptions) *cobra.Command {
	cc := &CheckCommand{global: global}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report files with pending rewrites",
		Long: `Run a recipe without writing and list every file it would change.

Exits with a non-zero status when rewrites are pending or a file failed,
which makes it suitable as a CI gate.`,
		RunE: cc.run,
	}

	cc.flags.register(cmd)

	return cmd
}

func (cc *CheckCommand) run(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, cc.global, &cc.flags, observability.ModeCheck, false)
	if err != nil {
		return err
	}

	report, runErr := discoverAndRun(cmd.Context(), s, args)

	var pending error

	if report != nil {
		writeCheckTable(s.out, report)
		writeFileNotes(s.errOut, report)

		if n := report.Pending(); n > 0 {
			pending = fmt.Errorf("%w: %d of %d files", ErrPendingRewrites, n, len(report.Files))
		}
	}

	return errors.Join(runErr, failedFiles(report), pending, s.close(context.WithoutCancel(cmd.Context())))
}
