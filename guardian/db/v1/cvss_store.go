package v1

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/guardian/vulnerability"
	"github.com/guardian-sec/guardian/internal/cvss"
	"github.com/guardian-sec/guardian/internal/log"
)

type CvssStoreWriter interface {
	UpsertCvss(v cvss.Vector) (*Cvss, bool, error)
}

type CvssStoreReader interface {
	GetCvss(vector string) (*Cvss, error)
}

type cvssStore struct {
	db *gorm.DB
}

func newCvssStore(db *gorm.DB) *cvssStore {
	return &cvssStore{
		db: db,
	}
}

// UpsertCvss stores the scored vector, refreshing score and severity when the exact vector string already exists.
func (s *cvssStore) UpsertCvss(v cvss.Vector) (*Cvss, bool, error) {
	existing, err := s.GetCvss(v.BaseVector)
	if err != nil {
		return nil, false, err
	}

	severity := severityColumn(v.BaseSeverity)

	if existing != nil {
		err := s.db.Model(existing).Updates(map[string]any{
			"base_score":    v.BaseScore,
			"base_severity": severity,
		}).Error
		if err != nil {
			return nil, false, fmt.Errorf("failed to update cvss record (vector=%q): %w", v.BaseVector, err)
		}
		existing.BaseScore = v.BaseScore
		existing.BaseSeverity = severity
		return existing, false, nil
	}

	log.WithFields("vector", v.BaseVector, "score", v.BaseScore).Trace("creating cvss record")

	record := &Cvss{
		BaseScore:    v.BaseScore,
		BaseSeverity: severity,
		BaseVector:   v.BaseVector,
	}
	if err := s.db.Create(record).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create cvss record (vector=%q): %w", v.BaseVector, err)
	}
	return record, true, nil
}

// GetCvss returns nil when no record exists for the exact vector string.
func (s *cvssStore) GetCvss(vector string) (*Cvss, error) {
	var records []Cvss
	if err := s.db.Where("base_vector = ?", vector).Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cvss record (vector=%q): %w", vector, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func severityColumn(sev vulnerability.Severity) *vulnerability.Severity {
	if sev == vulnerability.UnknownSeverity {
		return nil
	}
	return &sev
}
