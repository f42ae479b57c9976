package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/version"
)

// NewRootCommand assembles the annorewrite command tree.
func NewRootCommand() *cobra.Command {
	global := &GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "annorewrite",
		Short: "Structural rewrites of Java annotations",
		Long: `annorewrite applies declarative recipes to Java sources. The builtin
recipes migrate Swagger 1.x @ApiResponse(response = T.class,
responseContainer = "List") annotations to the OpenAPI 3 content form.

Commands:
  run       Apply a recipe, printing or writing the changes
  check     List pending rewrites, failing when there are any
  watch     Rewrite files as they change
  recipes   List, validate and describe recipes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if global.NoColor {
				color.NoColor = true //nolint:reassign // library switch
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "config file (default is ./annorewrite.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&global.Quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&global.NoColor, "no-color", false, "disable colored output")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewRunCommand(global))
	rootCmd.AddCommand(NewCheckCommand(global))
	rootCmd.AddCommand(NewWatchCommand(global))
	rootCmd.AddCommand(NewRecipesCommand(global))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
