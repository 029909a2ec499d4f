package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchore/clio"
)

func Root(app clio.Application) *cobra.Command {
	return app.SetupRootCommand(&cobra.Command{
		Use:   app.ID().Name,
		Short: "Import and inspect the vulnerability rating taxonomy and CWE catalog",
		Long: fmt.Sprintf(`Import and inspect the vulnerability rating taxonomy and CWE catalog.

Build or refresh the taxonomy database from a VRT document, its CVSS and CWE mappings and MITRE CWE views:
    %[1]s db import-taxonomy --vrt vrt.json --cvss cvss_v3.json --cwe-mapping cwe.json --cwe-catalog 699.xml

Load the country reference data:
    %[1]s db import-countries --file countries.json
`, app.ID().Name),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	})
}
