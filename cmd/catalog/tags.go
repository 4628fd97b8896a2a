package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func newImportTagsCommand(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import-tags",
		Short: "Create tags from a JSON file",
		Long: `Create tags from a JSON array of {"name", "slug", "color"} objects.
Tags that clash with an existing name, slug or color are skipped.

Examples:
  catalog import-tags --file data/tags.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			var inputs []types.TagInput
			if err := json.Unmarshal(data, &inputs); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}

			tags := service.NewTagService(a.db, nil)
			created, skipped := 0, 0
			for _, input := range inputs {
				if _, err := tags.Create(cmd.Context(), input); err != nil {
					var conflict *service.ConflictError
					if errors.As(err, &conflict) {
						cmd.PrintErrf("skipping %q: %s\n", input.Slug, conflict.Message)
						skipped++
						continue
					}
					return fmt.Errorf("tag %q: %w", input.Slug, err)
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d tags, skipped %d\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "data/tags.json", "JSON file to import")

	return cmd
}
