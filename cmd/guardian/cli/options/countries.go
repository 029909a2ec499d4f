package options

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/anchore/clio"
	"github.com/guardian-sec/guardian/internal/file"
)

type Countries struct {
	File string `yaml:"file" json:"file" mapstructure:"file"`

	fs afero.Fs
}

var _ interface {
	clio.FlagAdder
	clio.PostLoader
} = (*Countries)(nil)

func (cfg *Countries) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&cfg.File, "file", "f", "path to the countries JSON document")
}

func (cfg *Countries) PostLoad() error {
	if cfg.File == "" {
		return fmt.Errorf("no countries file configured (set countries.file or --file)")
	}
	if !file.Exists(cfg.Filesystem(), cfg.File) {
		return fmt.Errorf("countries file not found: %q", cfg.File)
	}
	return nil
}

func (cfg Countries) Filesystem() afero.Fs {
	if cfg.fs == nil {
		return afero.NewOsFs()
	}
	return cfg.fs
}
