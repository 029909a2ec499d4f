package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/cmd/guardian/cli/options"
	"github.com/guardian-sec/guardian/guardian/bootstrap"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/internal/bus"
	"github.com/guardian-sec/guardian/internal/log"
)

type dbImportCountriesOptions struct {
	DB        options.Database  `yaml:"db" json:"db" mapstructure:"db"`
	Countries options.Countries `yaml:"countries" json:"countries" mapstructure:"countries"`
}

func DBImportCountries(app clio.Application) *cobra.Command {
	opts := &dbImportCountriesOptions{
		DB: options.DefaultDatabase(app.ID()),
	}

	cmd := &cobra.Command{
		Use:   "import-countries",
		Short: "Load the country reference data into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDBImportCountries(cmd.Context(), *opts)
		},
	}

	return app.SetupCommand(cmd, opts)
}

func runDBImportCountries(ctx context.Context, opts dbImportCountriesOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := opts.DB.ToStoreConfig()
	store, err := v1.NewWriter(cfg)
	if err != nil {
		return fmt.Errorf("unable to open taxonomy database: %w", err)
	}
	defer log.CloseAndLogError(store, cfg.DBFilePath())

	n, err := bootstrap.LoadCountries(ctx, opts.Countries.Filesystem(), opts.Countries.File, store)
	if err != nil {
		return err
	}

	bus.Report(fmt.Sprintf("%d countries loaded from %s", n, opts.Countries.File))
	return nil
}
