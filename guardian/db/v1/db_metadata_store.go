package v1

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/internal/log"
)

type DBMetadataStoreWriter interface {
	SetDBMetadata(vrtReleaseDate *time.Time) error
}

type DBMetadataStoreReader interface {
	GetDBMetadata() (*DBMetadata, error)
}

type dbMetadataStore struct {
	db *gorm.DB
}

func newDBMetadataStore(db *gorm.DB) *dbMetadataStore {
	return &dbMetadataStore{
		db: db,
	}
}

func (s *dbMetadataStore) GetDBMetadata() (*DBMetadata, error) {
	log.Trace("fetching DB metadata record")

	var model DBMetadata

	result := s.db.First(&model)
	return &model, result.Error
}

func (s *dbMetadataStore) SetDBMetadata(vrtReleaseDate *time.Time) error {
	log.WithFields("vrt-release", vrtReleaseDate).Trace("writing DB metadata record")

	if err := s.db.Unscoped().Where("true").Delete(&DBMetadata{}).Error; err != nil {
		return fmt.Errorf("failed to delete existing DB metadata record: %w", err)
	}

	ts := time.Now().UTC()
	if vrtReleaseDate != nil {
		rd := vrtReleaseDate.UTC()
		vrtReleaseDate = &rd
	}
	instance := &DBMetadata{
		BuildTimestamp: &ts,
		VrtReleaseDate: vrtReleaseDate,
		Model:          ModelVersion,
		Revision:       Revision,
		Addition:       Addition,
	}

	if err := s.db.Create(instance).Error; err != nil {
		return fmt.Errorf("failed to create DB metadata record: %w", err)
	}

	return nil
}
