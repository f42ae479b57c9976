package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/annorewrite/pkg/javasrc"
	"github.com/Sumatoshi-tech/annorewrite/pkg/recipe"
)

// NewRecipesCommand creates the recipes command group.
func NewRecipesCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Inspect and validate recipes",
	}

	cmd.AddCommand(recipesListCmd(global))
	cmd.AddCommand(recipesValidateCmd())
	cmd.AddCommand(recipesSchemaCmd())

	return cmd
}

func recipesListCmd(global *GlobalOptions) *cobra.Command {
	var recipeFile string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List builtin recipes and those of the configured recipe file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("recipe-file") {
				cfg.Recipe.File = recipeFile
			}

			registry, err := loadRegistry(cfg, slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}

			writeRecipeTable(cmd.OutOrStdout(), registry.List())

			return nil
		},
	}

	cmd.Flags().StringVar(&recipeFile, "recipe-file", "", "additional recipe file")

	return cmd
}

func recipesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate recipe files against the schema and compile them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := javasrc.NewParser()
			if err != nil {
				return err
			}

			var errs []error

			for _, path := range args {
				recipes, loadErr := recipe.LoadFile(path, parser, recipe.CompileOptions{})
				if loadErr != nil {
					reportInvalidRecipe(cmd, path, loadErr)
					errs = append(errs, loadErr)

					continue
				}

				statusOK.Fprintf(cmd.OutOrStdout(), "%s is valid (%d recipes)\n", path, len(recipes))
			}

			return errors.Join(errs...)
		},
	}
}

func reportInvalidRecipe(cmd *cobra.Command, path string, err error) {
	out := cmd.OutOrStdout()

	statusError.Fprintf(out, "%s is invalid\n", path)

	var verr *recipe.ValidationError
	if !errors.As(err, &verr) {
		statusError.Fprintf(out, "  - %v\n", err)

		return
	}

	for _, problem := range verr.Problems {
		statusError.Fprintf(out, "  - %s\n", problem)
	}
}

func recipesSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of recipe files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), string(recipe.SchemaJSON))

			return err
		},
	}
}
