package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
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

const SourceCountries = "countries"

type countryEntry struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	Default     bool   `json:"default"`
	SvgImage    string `json:"svg_image"`
}

func (e countryEntry) code() string {
	if e.Code != "" {
		return strings.TrimSpace(e.Code)
	}
	return strings.TrimSpace(e.CountryCode)
}

func readCountries(fs afero.Fs, path string) ([]countryEntry, error) {
	fh, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open countries file: %w", err)
	}
	defer log.CloseAndLogError(fh, path)

	var entries []countryEntry
	if err := json.NewDecoder(fh).Decode(&entries); err != nil {
		return nil, fmt.Errorf("unable to decode countries file %q: %w", path, err)
	}

	var errs error
	for i, e := range entries {
		if e.code() == "" {
			errs = multierror.Append(errs, fmt.Errorf("country #%d (%q) has no code", i, e.Name))
		}
		if strings.TrimSpace(e.Name) == "" {
			errs = multierror.Append(errs, fmt.Errorf("country #%d (%q) has no name", i, e.code()))
		}
	}
	if errs != nil {
		return nil, fmt.Errorf("invalid countries file %q: %w", path, errs)
	}
	return entries, nil
}

// LoadCountries upserts every country of the JSON array at path by country code, returning the number of records
// written. The load happens in a single transaction.
func LoadCountries(ctx context.Context, fs afero.Fs, path string, store v1.ReadWriter) (int, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	entries, err := readCountries(fs, path)
	if err != nil {
		return 0, err
	}

	digest, err := file.DigestFile(fs, path)
	if err != nil {
		return 0, err
	}

	prog := progress.NewManual(int64(len(entries)))
	defer prog.SetCompleted()
	bus.Publish(partybus.Event{
		Type: event.CountryImportStarted,
		Value: monitor.CountryImport{
			CountriesImported: progress.Progressable(prog),
		},
	})

	var created int
	err = store.Transaction(ctx, func(rw v1.ReadWriter) error {
		for _, e := range entries {
			_, isNew, err := rw.UpsertCountry(v1.Country{
				Name:     strings.TrimSpace(e.Name),
				Code:     e.code(),
				Phone:    e.Phone,
				Default:  e.Default,
				SvgImage: e.SvgImage,
			})
			if err != nil {
				return err
			}
			if isNew {
				created++
			}
			prog.Increment()
		}

		_, err := rw.RecordImportSource(v1.ImportSource{
			Name:       SourceCountries,
			Path:       path,
			Digest:     digest,
			ImportedAt: time.Now().UTC(),
		})
		return err
	})
	if err != nil {
		prog.SetError(err)
		return 0, fmt.Errorf("unable to load countries: %w", err)
	}

	log.WithFields("countries", len(entries), "new", created).Info("loaded countries")
	return len(entries), nil
}
