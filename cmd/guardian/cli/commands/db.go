package commands

import (
	"github.com/spf13/cobra"

	"github.com/anchore/clio"
)

const (
	jsonOutputFormat = "json"
	textOutputFormat = "text"
)

func DB(app clio.Application) *cobra.Command {
	db := &cobra.Command{
		Use:   "db",
		Short: "taxonomy database operations",
	}

	db.AddCommand(
		DBImportTaxonomy(app),
		DBImportCountries(app),
		DBStatus(app),
	)

	return db
}
