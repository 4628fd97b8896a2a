package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
)

func newImportIngredientsCommand(a *app) *cobra.Command {
	var (
		file    string
		replace bool
	)

	cmd := &cobra.Command{
		Use:   "import-ingredients",
		Short: "Load ingredients from a CSV file",
		Long: `Load ingredients from a CSV file with a header row and two columns:
name and measurement unit. Existing ingredients with the same name get the
new unit. With --replace, ingredients missing from the file are removed as
well, except those some recipe still uses.

Examples:
  catalog import-ingredients
  catalog import-ingredients --file /srv/ingredients.csv --replace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file, err)
			}
			defer f.Close()

			rows, err := service.ParseIngredientCSV(f)
			if err != nil {
				return err
			}

			n, err := service.ImportIngredients(cmd.Context(), a.db, rows, replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d ingredients\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "data/ingredients.csv", "CSV file to import")
	cmd.Flags().BoolVar(&replace, "replace", false, "remove ingredients missing from the file unless a recipe uses them")

	return cmd
}
