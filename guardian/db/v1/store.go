package v1

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/guardian/db/internal/gormadapter"
	"github.com/guardian-sec/guardian/internal/log"
)

type store struct {
	*dbMetadataStore
	*importSourceStore
	*cvssStore
	*cweStore
	*vrtStore
	*countryStore
	db     *gorm.DB
	config Config
	write  bool
}

// TableCount is the number of rows held by a single table.
type TableCount struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

func newStore(cfg Config, write bool) (*store, error) {
	var path string
	if cfg.DBDirPath != "" {
		path = cfg.DBFilePath()
		if !write {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("no database found at %q: %w", path, err)
			}
		}
	}

	opts := []gormadapter.Option{
		gormadapter.WithDebug(cfg.Debug),
	}
	if write {
		opts = append(opts, gormadapter.WithWritable(true, Models()))
	}

	db, err := gormadapter.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	return bindStore(db, cfg, write), nil
}

func bindStore(db *gorm.DB, cfg Config, write bool) *store {
	return &store{
		dbMetadataStore:   newDBMetadataStore(db),
		importSourceStore: newImportSourceStore(db),
		cvssStore:         newCvssStore(db),
		cweStore:          newCweStore(db),
		vrtStore:          newVrtStore(db),
		countryStore:      newCountryStore(db),
		db:                db,
		config:            cfg,
		write:             write,
	}
}

func (s *store) Transaction(ctx context.Context, fn func(ReadWriter) error) error {
	if !s.write {
		return fmt.Errorf("cannot start a write transaction on a read-only store")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bindStore(tx, s.config, s.write))
	})
}

// TableCounts reports the row count of every table, ordered by table name.
func (s *store) TableCounts() ([]TableCount, error) {
	var counts []TableCount
	for _, m := range Models() {
		stmt := &gorm.Statement{DB: s.db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("unable to resolve table for %T: %w", m, err)
		}

		var count int64
		if err := s.db.Model(m).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("unable to count rows in %q: %w", stmt.Schema.Table, err)
		}
		counts = append(counts, TableCount{Table: stmt.Schema.Table, Count: count})
	}

	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Table < counts[j].Table
	})
	return counts, nil
}

// Close releases the underlying connection pool.
func (s *store) Close() error {
	log.Debug("closing store")

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("unable to get DB connection pool: %w", err)
	}
	return sqlDB.Close()
}
