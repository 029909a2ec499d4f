package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/guardian/event"
	"github.com/guardian-sec/guardian/guardian/event/monitor"
	"github.com/guardian-sec/guardian/internal/bus"
	"github.com/guardian-sec/guardian/internal/file"
	"github.com/guardian-sec/guardian/internal/log"
)

const (
	SourceVRT        = "vrt"
	SourceCVSS       = "cvss"
	SourceCWEMapping = "cwe-mapping"
	SourceCWECatalog = "cwe-catalog"
)

// Config names the input files of a taxonomy import. Only VRTPath is required.
type Config struct {
	VRTPath         string
	CVSSPath        string
	CWEMappingPath  string
	CWECatalogPaths []string

	// FS is the filesystem the inputs are read from (defaults to the OS filesystem)
	FS afero.Fs
}

func (c Config) Validate() error {
	if c.VRTPath == "" {
		return errors.New("no VRT document path given")
	}
	return nil
}

func (c Config) fs() afero.Fs {
	if c.FS == nil {
		return afero.NewOsFs()
	}
	return c.FS
}

type Importer struct {
	config Config
	store  v1.ReadWriter
}

func NewImporter(cfg Config, store v1.ReadWriter) *Importer {
	return &Importer{
		config: cfg,
		store:  store,
	}
}

type inputs struct {
	vrt      *VRTDocument
	cvss     *SideDocument
	cwe      *SideDocument
	catalogs []*CWECatalog
	sources  []v1.ImportSource
}

// Run reads every input and merges it into the store within a single transaction: views are seeded, weaknesses
// and categories of every catalog imported, then the VRT tree. Any error rolls back the whole run.
func (i *Importer) Run(ctx context.Context) (*Result, error) {
	if err := i.config.Validate(); err != nil {
		return nil, err
	}

	in, err := i.load()
	if err != nil {
		return nil, err
	}

	// the document is validated before anything is written
	if err := in.vrt.Validate(); err != nil {
		return nil, err
	}
	releaseDate, err := in.vrt.ReleaseDate()
	if err != nil {
		return nil, err
	}

	mon := newImportMonitor()
	defer mon.stageProgress.SetCompleted()
	publishImportStarted(mon)

	result := &Result{monitor: mon}
	start := time.Now()

	err = i.store.Transaction(ctx, func(rw v1.ReadWriter) error {
		mon.stage.Set("seeding views")
		seeded, err := rw.SeedViews()
		if err != nil {
			return err
		}
		result.ViewsSeeded = seeded
		mon.stageProgress.Increment()

		if err := ctx.Err(); err != nil {
			return err
		}

		mon.stage.Set("importing CWE catalogs")
		if err := ImportCWECatalogs(rw, in.catalogs, result); err != nil {
			return err
		}
		mon.stageProgress.Increment()

		if err := ctx.Err(); err != nil {
			return err
		}

		mon.stage.Set("importing VRT")
		if err := ImportVRTTree(rw, in.vrt, in.cvss, in.cwe, result); err != nil {
			return err
		}
		mon.stageProgress.Increment()

		mon.stage.Set("recording import sources")
		for _, src := range in.sources {
			if _, err := rw.RecordImportSource(src); err != nil {
				return err
			}
		}
		if err := rw.SetDBMetadata(releaseDate); err != nil {
			return err
		}
		mon.stageProgress.Increment()
		return nil
	})
	if err != nil {
		mon.stageProgress.SetError(err)
		return nil, fmt.Errorf("taxonomy import failed: %w", err)
	}

	mon.stage.Set("complete")
	log.WithFields(
		"weaknesses", result.WeaknessesCreated,
		"categories", result.CategoriesCreated,
		"leaves", result.LeavesCreated+result.LeavesUpdated,
		"warnings", len(result.Warnings),
		"took", time.Since(start),
	).Info("taxonomy import complete")

	return result, nil
}

func (i *Importer) load() (*inputs, error) {
	fs := i.config.fs()
	in := &inputs{}
	now := time.Now().UTC()

	record := func(name, path string, version *string) error {
		digest, err := file.DigestFile(fs, path)
		if err != nil {
			return err
		}
		in.sources = append(in.sources, v1.ImportSource{
			Name:       name,
			Path:       path,
			Digest:     digest,
			Version:    version,
			ImportedAt: now,
		})
		return nil
	}

	vrt, err := readFile(fs, i.config.VRTPath, ReadVRTDocument)
	if err != nil {
		return nil, err
	}
	in.vrt = vrt
	var vrtVersion *string
	if vrt.Metadata.ReleaseDate != "" {
		vrtVersion = &vrt.Metadata.ReleaseDate
	}
	if err := record(SourceVRT, i.config.VRTPath, vrtVersion); err != nil {
		return nil, err
	}

	if i.config.CVSSPath != "" {
		if in.cvss, err = readFile(fs, i.config.CVSSPath, ReadSideDocument); err != nil {
			return nil, err
		}
		if err := record(SourceCVSS, i.config.CVSSPath, nil); err != nil {
			return nil, err
		}
	}

	if i.config.CWEMappingPath != "" {
		if in.cwe, err = readFile(fs, i.config.CWEMappingPath, ReadSideDocument); err != nil {
			return nil, err
		}
		if err := record(SourceCWEMapping, i.config.CWEMappingPath, nil); err != nil {
			return nil, err
		}
	}

	for _, path := range i.config.CWECatalogPaths {
		catalog, err := readFile(fs, path, ReadCWECatalog)
		if err != nil {
			return nil, err
		}
		// header problems are reported before the import starts
		if _, _, err := catalog.View(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		in.catalogs = append(in.catalogs, catalog)
		if err := record(SourceCWECatalog, path, catalog.version()); err != nil {
			return nil, err
		}
	}

	return in, nil
}

func readFile[T any](fs afero.Fs, path string, read func(io.Reader) (*T, error)) (*T, error) {
	fh, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer log.CloseAndLogError(fh, path)

	v, err := read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func newImportMonitor() *importMonitor {
	return &importMonitor{
		stage:         progress.NewAtomicStage("reading inputs"),
		stageProgress: progress.NewManual(4),
		weaknesses:    progress.NewManual(-1),
		categories:    progress.NewManual(-1),
		leaves:        progress.NewManual(-1),
		warnings:      progress.NewManual(-1),
	}
}

func publishImportStarted(mon *importMonitor) {
	bus.Publish(partybus.Event{
		Type: event.TaxonomyImportStarted,
		Value: monitor.TaxonomyImport{
			Stager:             progress.Stager(mon.stage),
			StageProgress:      progress.Progressable(mon.stageProgress),
			WeaknessesImported: progress.Monitorable(mon.weaknesses),
			CategoriesImported: progress.Monitorable(mon.categories),
			LeavesImported:     progress.Monitorable(mon.leaves),
			Warnings:           progress.Monitorable(mon.warnings),
		},
	})
}
