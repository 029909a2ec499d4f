package v1

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/internal/log"
)

type ImportSourceStoreWriter interface {
	RecordImportSource(src ImportSource) (*ImportSource, error)
}

type ImportSourceStoreReader interface {
	GetImportSource(name, path string) (*ImportSource, error)
	AllImportSources() ([]ImportSource, error)
}

type importSourceStore struct {
	db *gorm.DB
}

func newImportSourceStore(db *gorm.DB) *importSourceStore {
	return &importSourceStore{
		db: db,
	}
}

// RecordImportSource creates or refreshes the record for the (name, path) pair of the given source.
func (s *importSourceStore) RecordImportSource(src ImportSource) (*ImportSource, error) {
	log.WithFields("name", src.Name, "path", src.Path, "digest", src.Digest).Trace("recording import source")

	if src.ImportedAt.IsZero() {
		src.ImportedAt = time.Now().UTC()
	}

	existing, err := s.GetImportSource(src.Name, src.Path)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.db.Create(&src).Error; err != nil {
			return nil, fmt.Errorf("failed to create import source record (name=%q, path=%q): %w", src.Name, src.Path, err)
		}
		return &src, nil
	}

	err = s.db.Model(existing).Updates(map[string]any{
		"digest":      src.Digest,
		"version":     src.Version,
		"imported_at": src.ImportedAt,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update import source record (name=%q, path=%q): %w", src.Name, src.Path, err)
	}

	existing.Digest = src.Digest
	existing.Version = src.Version
	existing.ImportedAt = src.ImportedAt
	return existing, nil
}

// GetImportSource returns nil when the source was never imported.
func (s *importSourceStore) GetImportSource(name, path string) (*ImportSource, error) {
	var sources []ImportSource
	result := s.db.Where("name = ? AND path = ?", name, path).Limit(1).Find(&sources)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch import source (name=%q, path=%q): %w", name, path, result.Error)
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return &sources[0], nil
}

func (s *importSourceStore) AllImportSources() ([]ImportSource, error) {
	log.Trace("fetching all import source records")

	var sources []ImportSource
	result := s.db.Order("name").Order("path").Find(&sources)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch all import sources: %w", result.Error)
	}
	return sources, nil
}
