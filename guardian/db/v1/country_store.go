package v1

import (
	"fmt"

	"gorm.io/gorm"
)

type CountryStoreWriter interface {
	UpsertCountry(c Country) (*Country, bool, error)
}

type CountryStoreReader interface {
	GetCountry(code string) (*Country, error)
	AllCountries() ([]Country, error)
}

type countryStore struct {
	db *gorm.DB
}

func newCountryStore(db *gorm.DB) *countryStore {
	return &countryStore{
		db: db,
	}
}

// UpsertCountry creates the country or refreshes every attribute of the country with the same code.
func (s *countryStore) UpsertCountry(c Country) (*Country, bool, error) {
	existing, err := s.GetCountry(c.Code)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		if err := s.db.Create(&c).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create country (code=%q): %w", c.Code, err)
		}
		return &c, true, nil
	}

	err = s.db.Model(existing).Updates(map[string]any{
		"name":       c.Name,
		"phone":      c.Phone,
		"is_default": c.Default,
		"svg_image":  c.SvgImage,
	}).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to update country (code=%q): %w", c.Code, err)
	}

	existing.Name = c.Name
	existing.Phone = c.Phone
	existing.Default = c.Default
	existing.SvgImage = c.SvgImage
	return existing, false, nil
}

// GetCountry returns nil when no country has the code.
func (s *countryStore) GetCountry(code string) (*Country, error) {
	var countries []Country
	if err := s.db.Where("code = ?", code).Limit(1).Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch country (code=%q): %w", code, err)
	}
	if len(countries) == 0 {
		return nil, nil
	}
	return &countries[0], nil
}

func (s *countryStore) AllCountries() ([]Country, error) {
	var countries []Country
	if err := s.db.Order("name").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch countries: %w", err)
	}
	return countries, nil
}
