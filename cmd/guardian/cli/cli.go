package cli

import (
	"github.com/spf13/cobra"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/cmd/guardian/cli/commands"
	"github.com/guardian-sec/guardian/cmd/guardian/internal/ui"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/internal/bus"
	"github.com/guardian-sec/guardian/internal/log"
)

func Application(id clio.Identification) clio.Application {
	app, _ := create(id)
	return app
}

func Command(id clio.Identification) *cobra.Command {
	_, cmd := create(id)
	return cmd
}

func create(id clio.Identification) (clio.Application, *cobra.Command) {
	clioCfg := clio.NewSetupConfig(id).
		WithGlobalConfigFlag().   // add persistent -c <path> for reading an application config from
		WithGlobalLoggingFlags(). // add persistent -v and -q flags tied to the logging config
		WithConfigInRootHelp().   // --help on the root command renders the full application config in the help text
		WithUIConstructor(
			// imports are batch operations: there is no interactive UI, only the final reports and notifications
			func(cfg clio.Config) (*clio.UICollection, error) {
				return clio.NewUICollection(ui.None(cfg.Log.Quiet)), nil
			},
		).
		WithInitializers(
			func(state *clio.State) error {
				// clio is setting up and providing the bus and logger to the application. Once loaded,
				// we can hoist them into the internal packages for global use.
				bus.Set(state.Bus)
				log.Set(state.Logger)
				return nil
			},
		)

	app := clio.New(*clioCfg)

	rootCmd := commands.Root(app)

	// add sub-commands
	rootCmd.AddCommand(
		commands.DB(app),
		clio.VersionCommand(id, dbVersion),
		clio.ConfigCommand(app, nil),
	)

	return app, rootCmd
}

func dbVersion() (string, any) {
	return "Supported DB Schema", v1.SchemaVersion.String()
}
