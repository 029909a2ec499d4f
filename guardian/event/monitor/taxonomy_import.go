package monitor

import "github.com/wagoodman/go-progress"

// TaxonomyImport tracks a single taxonomy import run. Stager reports the current phase (views, weaknesses,
// categories, vrt) while the monitorables count records as they are reconciled.
type TaxonomyImport struct {
	Stager             progress.Stager
	StageProgress      progress.Progressable
	WeaknessesImported progress.Monitorable
	CategoriesImported progress.Monitorable
	LeavesImported     progress.Monitorable
	Warnings           progress.Monitorable
}

type CountryImport struct {
	CountriesImported progress.Progressable
}
