// Command catalog administers the ingredient and tag catalogs.
//
//	catalog migrate
//	catalog import-ingredients --file data/ingredients.csv --replace
//	catalog import-tags --file data/tags.json
package main

import (
	"os"

	"github.com/pageza/foodgram/backend/internal/logging"
)

func main() {
	if err := newRootCommand(&app{}).Execute(); err != nil {
		logging.Error().Err(err).Msg("catalog command failed")
		os.Exit(1)
	}
}
