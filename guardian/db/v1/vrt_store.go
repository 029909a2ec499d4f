package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/internal/log"
)

type VrtStoreWriter interface {
	UpsertVrtCategory(vrtID, name string, releaseDate *time.Time) (*VrtCategory, bool, error)
	UpsertVrtSubCategory(vrtID, name string, releaseDate *time.Time) (*VrtSubCategory, bool, error)
	UpsertVrtVariant(vrtID, name string, releaseDate *time.Time) (*VrtVariant, bool, error)
	CreateLeaf(leaf *Vrt) error
	UpdateLeaf(leaf *Vrt, cvssID *uuid.UUID, releaseDate *time.Time) error
	LinkLeafWeakness(leafID, weaknessID uuid.UUID) (bool, error)
}

type VrtStoreReader interface {
	GetVrtCategory(vrtID string) (*VrtCategory, error)
	GetVrtSubCategory(vrtID string) (*VrtSubCategory, error)
	GetVrtVariant(vrtID string) (*VrtVariant, error)
	GetLeaf(key LeafKey) (*Vrt, error)
	AllLeaves() ([]Vrt, error)
	LeafWeaknesses(leafID uuid.UUID) ([]CweNode, error)
}

type vrtStore struct {
	db *gorm.DB
}

func newVrtStore(db *gorm.DB) *vrtStore {
	return &vrtStore{
		db: db,
	}
}

// vrtRecord is satisfied by pointers to each of the VRT hierarchy levels.
type vrtRecord[T any] interface {
	*T
	node() *VrtNode
}

// upsertVrtNode finds the record by its VRT ID and refreshes the name and release date, or creates it.
func upsertVrtNode[T any, P vrtRecord[T]](db *gorm.DB, vrtID, name string, releaseDate *time.Time) (*T, bool, error) {
	existing, err := getVrtNode[T](db, vrtID)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		n := P(existing).node()
		err := db.Model(P(existing)).Updates(map[string]any{
			"name":         name,
			"release_date": releaseDate,
		}).Error
		if err != nil {
			return nil, false, fmt.Errorf("failed to update %T (vrt_id=%q): %w", existing, vrtID, err)
		}
		n.Name = name
		n.ReleaseDate = releaseDate
		return existing, false, nil
	}

	record := new(T)
	n := P(record).node()
	n.VrtID = vrtID
	n.Name = name
	n.ReleaseDate = releaseDate

	if err := db.Create(P(record)).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create %T (vrt_id=%q): %w", record, vrtID, err)
	}
	return record, true, nil
}

func getVrtNode[T any](db *gorm.DB, vrtID string) (*T, error) {
	var records []T
	if err := db.Where("vrt_id = ?", vrtID).Limit(1).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch %T (vrt_id=%q): %w", records, vrtID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *vrtStore) UpsertVrtCategory(vrtID, name string, releaseDate *time.Time) (*VrtCategory, bool, error) {
	return upsertVrtNode[VrtCategory](s.db, vrtID, name, releaseDate)
}

func (s *vrtStore) UpsertVrtSubCategory(vrtID, name string, releaseDate *time.Time) (*VrtSubCategory, bool, error) {
	return upsertVrtNode[VrtSubCategory](s.db, vrtID, name, releaseDate)
}

func (s *vrtStore) UpsertVrtVariant(vrtID, name string, releaseDate *time.Time) (*VrtVariant, bool, error) {
	return upsertVrtNode[VrtVariant](s.db, vrtID, name, releaseDate)
}

// GetVrtCategory returns nil when no category carries the VRT ID.
func (s *vrtStore) GetVrtCategory(vrtID string) (*VrtCategory, error) {
	return getVrtNode[VrtCategory](s.db, vrtID)
}

func (s *vrtStore) GetVrtSubCategory(vrtID string) (*VrtSubCategory, error) {
	return getVrtNode[VrtSubCategory](s.db, vrtID)
}

func (s *vrtStore) GetVrtVariant(vrtID string) (*VrtVariant, error) {
	return getVrtNode[VrtVariant](s.db, vrtID)
}

// GetLeaf finds the leaf for the exact key. Absent key components only match absent columns, so a key with no
// sub-category never matches a leaf that has one. Returns nil when there is no such leaf.
func (s *vrtStore) GetLeaf(key LeafKey) (*Vrt, error) {
	query := s.db.Where("category_id = ?", key.CategoryID)
	query = whereNullable(query, "sub_category_id", key.SubCategoryID)
	query = whereNullable(query, "variant_id", key.VariantID)
	query = whereNullable(query, "priority", key.Priority)

	var leaves []Vrt
	if err := query.Limit(1).Find(&leaves).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch vrt leaf (%s): %w", key.pathKey(), err)
	}
	if len(leaves) == 0 {
		return nil, nil
	}
	return &leaves[0], nil
}

func whereNullable[V any](query *gorm.DB, column string, value *V) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}

func (s *vrtStore) CreateLeaf(leaf *Vrt) error {
	log.WithFields("path", leaf.Key().pathKey()).Trace("creating vrt leaf")

	if err := s.db.Create(leaf).Error; err != nil {
		return fmt.Errorf("failed to create vrt leaf (%s): %w", leaf.Key().pathKey(), err)
	}
	return nil
}

// UpdateLeaf refreshes the CVSS reference and release date of an existing leaf.
func (s *vrtStore) UpdateLeaf(leaf *Vrt, cvssID *uuid.UUID, releaseDate *time.Time) error {
	err := s.db.Model(leaf).Updates(map[string]any{
		"cvss_id":      cvssID,
		"release_date": releaseDate,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update vrt leaf (%s): %w", leaf.PathKey, err)
	}
	leaf.CvssID = cvssID
	leaf.ReleaseDate = releaseDate
	return nil
}

// LinkLeafWeakness adds the weakness to the leaf's cross references unless already present.
func (s *vrtStore) LinkLeafWeakness(leafID, weaknessID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&VrtCweMapping{}).
		Where("vrt_id = ? AND cwe_node_id = ?", leafID, weaknessID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check vrt cwe mapping: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := s.db.Create(&VrtCweMapping{VrtID: leafID, CweNodeID: weaknessID}).Error; err != nil {
		return false, fmt.Errorf("failed to create vrt cwe mapping: %w", err)
	}
	return true, nil
}

// AllLeaves returns every leaf with its hierarchy records and CVSS score loaded.
func (s *vrtStore) AllLeaves() ([]Vrt, error) {
	var leaves []Vrt
	result := s.db.Preload("Category").Preload("SubCategory").Preload("Variant").Preload("Cvss").
		Order("path_key").
		Find(&leaves)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch vrt leaves: %w", result.Error)
	}
	return leaves, nil
}

// LeafWeaknesses returns the weakness nodes cross referenced by the leaf, ordered by CWE ID.
func (s *vrtStore) LeafWeaknesses(leafID uuid.UUID) ([]CweNode, error) {
	var nodes []CweNode
	result := s.db.
		Joins("JOIN vrt_cwe_mapping ON vrt_cwe_mapping.cwe_node_id = cwe_node.id").
		Where("vrt_cwe_mapping.vrt_id = ?", leafID).
		Order("cwe_node.cwe_id").
		Find(&nodes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch weaknesses for vrt leaf (id=%s): %w", leafID, result.Error)
	}
	return nodes, nil
}
