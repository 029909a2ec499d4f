package options

import (
	"fmt"
	"path"
	"strings"

	"github.com/adrg/xdg"

	"github.com/anchore/clio"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
)

type Database struct {
	Dir   string `yaml:"dir" json:"dir" mapstructure:"dir"`
	Debug bool   `yaml:"debug" json:"debug" mapstructure:"debug"`
}

var _ interface {
	clio.FieldDescriber
	clio.PostLoader
} = (*Database)(nil)

func DefaultDatabase(id clio.Identification) Database {
	return Database{
		Dir: path.Join(xdg.DataHome, id.Name, "db"),
	}
}

func (cfg *Database) DescribeFields(descriptions clio.FieldDescriptionSet) {
	descriptions.Add(&cfg.Dir, `directory holding the taxonomy database`)
	descriptions.Add(&cfg.Debug, `log every SQL statement issued against the database`)
}

func (cfg *Database) PostLoad() error {
	cfg.Dir = strings.TrimSpace(cfg.Dir)
	if cfg.Dir == "" {
		return fmt.Errorf("no database directory configured")
	}
	return nil
}

func (cfg Database) ToStoreConfig() v1.Config {
	return v1.Config{
		DBDirPath: cfg.Dir,
		Debug:     cfg.Debug,
	}
}
