package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/cmd/guardian/cli/options"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/guardian/taxonomy"
	"github.com/guardian-sec/guardian/internal/bus"
	"github.com/guardian-sec/guardian/internal/log"
)

type dbImportTaxonomyOptions struct {
	DB       options.Database `yaml:"db" json:"db" mapstructure:"db"`
	Taxonomy options.Taxonomy `yaml:"taxonomy" json:"taxonomy" mapstructure:"taxonomy"`
}

func DBImportTaxonomy(app clio.Application) *cobra.Command {
	opts := &dbImportTaxonomyOptions{
		DB:       options.DefaultDatabase(app.ID()),
		Taxonomy: options.DefaultTaxonomy(),
	}

	cmd := &cobra.Command{
		Use:   "import-taxonomy",
		Short: "Import the VRT tree, its CVSS and CWE mappings and CWE view catalogs into the database",
		Long: `Import the VRT tree, its CVSS and CWE mappings and CWE view catalogs into the database.
The import runs in a single transaction: any failure leaves the database untouched. Running the
import again with the same inputs is a no-op; CWE references that cannot be resolved are reported
as warnings and never fail the import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDBImportTaxonomy(cmd.Context(), *opts)
		},
	}

	return app.SetupCommand(cmd, opts)
}

func runDBImportTaxonomy(ctx context.Context, opts dbImportTaxonomyOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.DB.ToStoreConfig()
	store, err := v1.NewWriter(cfg)
	if err != nil {
		return fmt.Errorf("unable to open taxonomy database: %w", err)
	}
	defer log.CloseAndLogError(store, cfg.DBFilePath())

	log.WithFields("vrt", opts.Taxonomy.VRT, "catalogs", len(opts.Taxonomy.CWECatalogs)).Info("importing taxonomy")
	res, err := taxonomy.NewImporter(opts.Taxonomy.ToImporterConfig(), store).Run(ctx)
	if err != nil {
		return err
	}

	bus.Report(renderImportResult(res))
	for _, w := range res.Warnings {
		bus.Notify(w)
	}
	return nil
}

func renderImportResult(res *taxonomy.Result) string {
	rows := [][]string{
		{"weaknesses", strconv.Itoa(res.WeaknessesCreated), strconv.Itoa(res.WeaknessesExisting)},
		{"categories", strconv.Itoa(res.CategoriesCreated), strconv.Itoa(res.CategoriesExisting)},
		{"vrt leaves", strconv.Itoa(res.LeavesCreated), strconv.Itoa(res.LeavesUpdated)},
	}

	sb := &strings.Builder{}
	table := newTable(sb, []string{"Record", "New", "Existing"})
	table.AppendBulk(rows)
	table.Render()

	if n := len(res.Warnings); n > 0 {
		fmt.Fprintf(sb, "\n%d unresolved weakness reference(s)\n", n)
	}
	return sb.String()
}

func newTable(w io.Writer, columns []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetHeader(columns)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}
