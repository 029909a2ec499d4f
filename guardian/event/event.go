package event

import "github.com/wagoodman/go-partybus"

const (
	typePrefix    = "guardian"
	cliTypePrefix = typePrefix + "-cli"

	// TaxonomyImportStarted is a partybus event that occurs when the taxonomy import begins
	TaxonomyImportStarted partybus.EventType = typePrefix + "-taxonomy-import-started"

	// CountryImportStarted is a partybus event that occurs when the country reference data load begins
	CountryImportStarted partybus.EventType = typePrefix + "-country-import-started"

	// Events exclusively for the CLI //////////////////////////////////////////////////////

	// CLIReport is a partybus event that occurs when an analysis result is ready for final presentation to stdout
	CLIReport partybus.EventType = cliTypePrefix + "-report"

	// CLINotification is a partybus event that occurs when auxiliary information is ready for presentation to stderr
	CLINotification partybus.EventType = cliTypePrefix + "-notification"

	// CLIExit is a partybus event that occurs when an analysis result is ready for final presentation
	CLIExit partybus.EventType = cliTypePrefix + "-exit-event"
)
