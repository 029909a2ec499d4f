package options

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/guardian/taxonomy"
	"github.com/guardian-sec/guardian/internal/file"
)

// Taxonomy names the input files of a taxonomy import.
type Taxonomy struct {
	VRT         string   `yaml:"vrt" json:"vrt" mapstructure:"vrt"`
	CVSS        string   `yaml:"cvss" json:"cvss" mapstructure:"cvss"`
	CWEMapping  string   `yaml:"cwe-mapping" json:"cwe-mapping" mapstructure:"cwe-mapping"`
	CWECatalogs []string `yaml:"cwe-catalogs" json:"cwe-catalogs" mapstructure:"cwe-catalogs"`

	fs afero.Fs
}

var _ interface {
	clio.FlagAdder
	clio.FieldDescriber
	clio.PostLoader
} = (*Taxonomy)(nil)

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{}
}

func (cfg *Taxonomy) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&cfg.VRT, "vrt", "", "path to the VRT document")
	flags.StringVarP(&cfg.CVSS, "cvss", "", "path to the VRT to CVSS v3 mapping document")
	flags.StringVarP(&cfg.CWEMapping, "cwe-mapping", "", "path to the VRT to CWE mapping document")
	flags.StringArrayVarP(&cfg.CWECatalogs, "cwe-catalog", "", "path to a CWE view catalog (XML), may be given multiple times")
}

func (cfg *Taxonomy) DescribeFields(descriptions clio.FieldDescriptionSet) {
	descriptions.Add(&cfg.VRT, `path to the VRT document (required)`)
	descriptions.Add(&cfg.CVSS, `path to the VRT to CVSS v3 mapping document`)
	descriptions.Add(&cfg.CWEMapping, `path to the VRT to CWE mapping document`)
	descriptions.Add(&cfg.CWECatalogs, `paths to CWE view catalogs (XML); all weaknesses are imported before any category`)
}

func (cfg *Taxonomy) PostLoad() error {
	if cfg.VRT == "" {
		return fmt.Errorf("no VRT document configured (set taxonomy.vrt or --vrt)")
	}

	var errs error
	for _, p := range cfg.paths() {
		if !file.Exists(cfg.filesystem(), p) {
			errs = multierror.Append(errs, fmt.Errorf("input file not found: %q", p))
		}
	}
	return errs
}

func (cfg Taxonomy) paths() []string {
	var paths []string
	for _, p := range append([]string{cfg.VRT, cfg.CVSS, cfg.CWEMapping}, cfg.CWECatalogs...) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func (cfg Taxonomy) filesystem() afero.Fs {
	if cfg.fs == nil {
		return afero.NewOsFs()
	}
	return cfg.fs
}

func (cfg Taxonomy) ToImporterConfig() taxonomy.Config {
	return taxonomy.Config{
		VRTPath:         cfg.VRT,
		CVSSPath:        cfg.CVSS,
		CWEMappingPath:  cfg.CWEMapping,
		CWECatalogPaths: cfg.CWECatalogs,
		FS:              cfg.fs,
	}
}
