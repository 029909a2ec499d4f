package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/guardian/vulnerability"
	"github.com/guardian-sec/guardian/internal/schemaver"
)

func Models() []any {
	return []any{
		// non-domain info
		&DBMetadata{},
		&ImportSource{},

		// scoring
		&Cvss{},

		// CWE catalog graph
		&CweNode{},
		&CweView{},
		&CweCategory{},
		&CweWeakness{},
		&CweRelationship{},

		// VRT taxonomy
		&VrtCategory{},
		&VrtSubCategory{},
		&VrtVariant{},
		&Vrt{},
		&VrtCweMapping{}, // join on weakness nodes

		// reference data
		&Country{},
	}
}

// Timestamps are maintained by gorm on create and on every update.
type Timestamps struct {
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	LastModifiedAt time.Time `gorm:"column:last_modified_at;autoUpdateTime"`
}

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// non-domain info //////////////////////////////////////////////////////

type DBMetadata struct {
	BuildTimestamp *time.Time `gorm:"column:build_timestamp;not null"`
	// VrtReleaseDate is the release date declared by the imported VRT document, NULL when it declares none
	VrtReleaseDate *time.Time `gorm:"column:vrt_release_date"`
	Model          int        `gorm:"column:model;not null"`
	Revision       int        `gorm:"column:revision;not null"`
	Addition       int        `gorm:"column:addition;not null"`
}

func (m DBMetadata) SchemaVersion() schemaver.SchemaVer {
	return schemaver.New(m.Model, m.Revision, m.Addition)
}

// ImportSource records the state of a single input file the last time it was imported.
type ImportSource struct {
	ID uuid.UUID `gorm:"column:id;type:text;primaryKey"`

	// Name is the kind of input (e.g. "vrt", "cwe-catalog")
	Name string `gorm:"column:name;not null;uniqueIndex:import_source_name_path_idx,priority:1"`

	Path string `gorm:"column:path;not null;uniqueIndex:import_source_name_path_idx,priority:2"`

	// Digest is a self describing hash of the file contents (e.g. xxh64:123... not 123...)
	Digest string `gorm:"column:digest;not null"`

	// Version is the release date or catalog version declared by the file, when there is one
	Version *string `gorm:"column:version"`

	ImportedAt time.Time `gorm:"column:imported_at;not null"`

	Timestamps
}

func (s *ImportSource) BeforeCreate(_ *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// scoring //////////////////////////////////////////////////////

// Cvss is a scored CVSS vector, unique by its canonical vector string.
type Cvss struct {
	ID           uuid.UUID               `gorm:"column:id;type:text;primaryKey"`
	BaseScore    float64                 `gorm:"column:base_score;not null"`
	BaseSeverity *vulnerability.Severity `gorm:"column:base_severity"` // NULL when the score is 0
	BaseVector   string                  `gorm:"column:base_vector;not null;uniqueIndex"`

	Timestamps
}

func (c *Cvss) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// CWE catalog graph //////////////////////////////////////////////////////

// CweNode is the shared identity of every CWE entry. The kind-specific attributes live in the variant tables
// (CweView, CweCategory, CweWeakness) which share the node ID. CWE IDs are only unique per kind.
type CweNode struct {
	ID      uuid.UUID    `gorm:"column:id;type:text;primaryKey"`
	Kind    CweKind      `gorm:"column:kind;not null;uniqueIndex:cwe_node_kind_cwe_id_idx,priority:1"`
	CweID   int          `gorm:"column:cwe_id;not null;uniqueIndex:cwe_node_kind_cwe_id_idx,priority:2"`
	Name    string       `gorm:"column:name;not null"`
	Version *string      `gorm:"column:version"` // catalog version, e.g. "4.10"
	Mapping MappingUsage `gorm:"column:mapping;not null"`

	Timestamps
}

func (n *CweNode) BeforeCreate(_ *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

func (n CweNode) String() string {
	return fmt.Sprintf("%s(CWE-%d)", n.Kind, n.CweID)
}

type CweView struct {
	NodeID    uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Node      *CweNode  `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	ViewType  ViewType  `gorm:"column:view_type;not null"`
	Objective string    `gorm:"column:objective"`
}

type CweCategory struct {
	NodeID  uuid.UUID      `gorm:"column:id;type:text;primaryKey"`
	Node    *CweNode       `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	Status  CategoryStatus `gorm:"column:status;not null"`
	Summary string         `gorm:"column:summary"`
}

type CweWeakness struct {
	NodeID      uuid.UUID      `gorm:"column:id;type:text;primaryKey"`
	Node        *CweNode       `gorm:"foreignKey:NodeID;constraint:OnDelete:CASCADE"`
	Status      WeaknessStatus `gorm:"column:status;not null"`
	Description string         `gorm:"column:description"`
	Abstraction Abstraction    `gorm:"column:abstraction;not null"`
}

// CweEntry is a node together with its kind-specific payload; exactly one of View, Category or Weakness is set
// (none for base nodes).
type CweEntry struct {
	Node     CweNode
	View     *CweView
	Category *CweCategory
	Weakness *CweWeakness
}

// CweRelationship is a directed edge between two CWE nodes. At most one edge exists for an ordered pair.
type CweRelationship struct {
	ID            uuid.UUID          `gorm:"column:id;type:text;primaryKey"`
	SourceID      uuid.UUID          `gorm:"column:source_id;type:text;not null;uniqueIndex:cwe_relationship_pair_idx,priority:1"`
	Source        *CweNode           `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE"`
	DestinationID uuid.UUID          `gorm:"column:destination_id;type:text;not null;uniqueIndex:cwe_relationship_pair_idx,priority:2;index"`
	Destination   *CweNode           `gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE"`
	Nature        RelationshipNature `gorm:"column:nature;not null"`
	Ordinal       *Ordinal           `gorm:"column:ordinal"`

	Timestamps
}

func (r *CweRelationship) BeforeCreate(_ *gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// VRT taxonomy //////////////////////////////////////////////////////

// VrtNode holds the attributes shared by the three VRT hierarchy levels. The levels are not linked to each
// other, the hierarchy is only expressed through Vrt leaves.
type VrtNode struct {
	ID          uuid.UUID  `gorm:"column:id;type:text;primaryKey"`
	VrtID       string     `gorm:"column:vrt_id;not null;uniqueIndex"`
	Name        string     `gorm:"column:name;not null;uniqueIndex"`
	ReleaseDate *time.Time `gorm:"column:release_date"`

	Timestamps
}

func (n *VrtNode) BeforeCreate(_ *gorm.DB) error {
	assignID(&n.ID)
	return nil
}

type VrtCategory struct {
	VrtNode
}

type VrtSubCategory struct {
	VrtNode
}

type VrtVariant struct {
	VrtNode
}

func (c *VrtCategory) node() *VrtNode    { return &c.VrtNode }
func (c *VrtSubCategory) node() *VrtNode { return &c.VrtNode }
func (c *VrtVariant) node() *VrtNode     { return &c.VrtNode }

// Vrt is a leaf binding a hierarchy path (and optional priority) to a CVSS score and CWE weaknesses.
type Vrt struct {
	ID uuid.UUID `gorm:"column:id;type:text;primaryKey"`

	CategoryID    uuid.UUID       `gorm:"column:category_id;type:text;not null;index"`
	Category      *VrtCategory    `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	SubCategoryID *uuid.UUID      `gorm:"column:sub_category_id;type:text"`
	SubCategory   *VrtSubCategory `gorm:"foreignKey:SubCategoryID;constraint:OnDelete:CASCADE"`
	VariantID     *uuid.UUID      `gorm:"column:variant_id;type:text"`
	Variant       *VrtVariant     `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	Priority      *int            `gorm:"column:priority"`

	// PathKey is the leaf key with absent components replaced by a sentinel, so that the unique index treats
	// missing components as equal (plain SQL uniqueness never collides NULLs)
	PathKey string `gorm:"column:path_key;not null;uniqueIndex"`

	CvssID *uuid.UUID `gorm:"column:cvss_id;type:text"`
	Cvss   *Cvss      `gorm:"foreignKey:CvssID;constraint:OnDelete:SET NULL"`

	ReleaseDate *time.Time `gorm:"column:release_date"`

	Timestamps
}

func (v *Vrt) BeforeCreate(_ *gorm.DB) error {
	assignID(&v.ID)
	v.PathKey = v.Key().pathKey()
	return nil
}

func (v Vrt) Key() LeafKey {
	return LeafKey{
		CategoryID:    v.CategoryID,
		SubCategoryID: v.SubCategoryID,
		VariantID:     v.VariantID,
		Priority:      v.Priority,
	}
}

// LeafKey identifies a Vrt leaf. Absent components are nil and only match absent components.
type LeafKey struct {
	CategoryID    uuid.UUID
	SubCategoryID *uuid.UUID
	VariantID     *uuid.UUID
	Priority      *int
}

const absentComponent = "-"

func (k LeafKey) pathKey() string {
	sub, variant, priority := absentComponent, absentComponent, absentComponent
	if k.SubCategoryID != nil {
		sub = k.SubCategoryID.String()
	}
	if k.VariantID != nil {
		variant = k.VariantID.String()
	}
	if k.Priority != nil {
		priority = fmt.Sprintf("%d", *k.Priority)
	}
	return fmt.Sprintf("%s/%s/%s/%s", k.CategoryID, sub, variant, priority)
}

type VrtCweMapping struct {
	VrtID     uuid.UUID `gorm:"column:vrt_id;type:text;primaryKey"`
	Vrt       *Vrt      `gorm:"foreignKey:VrtID;constraint:OnDelete:CASCADE"`
	CweNodeID uuid.UUID `gorm:"column:cwe_node_id;type:text;primaryKey;index"`
	CweNode   *CweNode  `gorm:"foreignKey:CweNodeID;constraint:OnDelete:CASCADE"`
}

// reference data //////////////////////////////////////////////////////

type Country struct {
	ID       uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Name     string    `gorm:"column:name;not null;uniqueIndex"`
	Code     string    `gorm:"column:code;not null;uniqueIndex"`
	Phone    string    `gorm:"column:phone"`
	Default  bool      `gorm:"column:is_default;not null;default:false"`
	SvgImage string    `gorm:"column:svg_image"`

	Timestamps
}

func (c *Country) BeforeCreate(_ *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
