package v1

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/scylladb/go-set/iset"
	"gorm.io/gorm"

	"github.com/guardian-sec/guardian/internal/log"
)

// ErrMissingWeakness is returned when a category names a member weakness that is not in the catalog.
var ErrMissingWeakness = errors.New("missing weakness")

type CweStoreWriter interface {
	SeedViews() (bool, error)
	UpsertWeakness(w Weakness, parentView *CweNode) (*CweNode, bool, error)
	UpsertCategory(c Category, parentView *CweNode) (*CweNode, bool, error)
}

type CweStoreReader interface {
	GetCweNode(kind CweKind, cweID int) (*CweNode, error)
	FindWeaknesses(cweID int) ([]CweNode, error)
	GetCweEntry(id uuid.UUID) (*CweEntry, error)
	CweRelationships(nodeID uuid.UUID) ([]CweRelationship, error)
	CountCweNodes(kinds ...CweKind) (int64, error)
}

// Weakness is a catalog weakness entry as read from a source file.
type Weakness struct {
	CweID       int
	Name        string
	Version     *string
	Status      WeaknessStatus
	Description string
	Abstraction Abstraction
	Mapping     MappingUsage
}

// Category is a catalog category entry as read from a source file. Members are the CWE IDs of the weaknesses
// grouped by the category.
type Category struct {
	CweID   int
	Name    string
	Version *string
	Status  CategoryStatus
	Summary string
	Mapping MappingUsage
	Members []int
}

type seedView struct {
	cweID     int
	name      string
	objective string
}

var seedViews = []seedView{
	{
		cweID:     1000,
		name:      "Research Concepts",
		objective: "This view is intended to facilitate research into weaknesses, including their inter-dependencies, and can be leveraged to systematically identify theoretical gaps within CWE. It is mainly organized according to abstractions of behaviors instead of how they can be detected, where they appear in code, or when they are introduced in the development life cycle. By design, this view is expected to include every weakness within CWE.",
	},
	{
		cweID:     1194,
		name:      "Hardware Design",
		objective: "This view organizes weaknesses around concepts that are frequently used or encountered in hardware design. Accordingly, this view can align closely with the perspectives of designers, manufacturers, educators, and assessment vendors. It provides a variety of categories that are intended to simplify navigation, browsing, and mapping.",
	},
	{
		cweID:     699,
		name:      "Software Development",
		objective: "This view organizes weaknesses around concepts that are frequently used or encountered in software development. This includes all aspects of the software development lifecycle including both architecture and implementation. Accordingly, this view can align closely with the perspectives of architects, developers, educators, and assessment vendors. It provides a variety of categories that are intended to simplify navigation, browsing, and mapping.",
	},
}

type cweStore struct {
	db *gorm.DB
}

func newCweStore(db *gorm.DB) *cweStore {
	return &cweStore{
		db: db,
	}
}

// SeedViews inserts the fixed set of views when the catalog holds no nodes at all, returning whether anything
// was written.
func (s *cweStore) SeedViews() (bool, error) {
	count, err := s.CountCweNodes()
	if err != nil {
		return false, err
	}
	if count > 0 {
		log.WithFields("nodes", count).Trace("catalog already populated, not seeding views")
		return false, nil
	}

	for _, v := range seedViews {
		node := &CweNode{
			Kind:    CweKindView,
			CweID:   v.cweID,
			Name:    v.name,
			Mapping: MappingProhibited,
		}
		if err := s.db.Create(node).Error; err != nil {
			return false, fmt.Errorf("failed to seed view CWE-%d: %w", v.cweID, err)
		}

		view := &CweView{
			NodeID:    node.ID,
			ViewType:  ViewTypeGraph,
			Objective: v.objective,
		}
		if err := s.db.Create(view).Error; err != nil {
			return false, fmt.Errorf("failed to seed view CWE-%d: %w", v.cweID, err)
		}
	}

	log.WithFields("views", len(seedViews)).Debug("seeded CWE views")
	return true, nil
}

// UpsertWeakness creates the weakness when it does not exist yet. Attributes of an existing weakness are left
// untouched, however the primary membership edge to the parent view is always ensured.
func (s *cweStore) UpsertWeakness(w Weakness, parentView *CweNode) (*CweNode, bool, error) {
	if parentView == nil {
		return nil, false, fmt.Errorf("no parent view given for weakness CWE-%d", w.CweID)
	}

	node, err := s.GetCweNode(CweKindWeakness, w.CweID)
	if err != nil {
		return nil, false, err
	}

	var created bool
	if node == nil {
		node = &CweNode{
			Kind:    CweKindWeakness,
			CweID:   w.CweID,
			Name:    w.Name,
			Version: w.Version,
			Mapping: w.Mapping,
		}
		if err := s.db.Create(node).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create weakness CWE-%d: %w", w.CweID, err)
		}

		payload := &CweWeakness{
			NodeID:      node.ID,
			Status:      w.Status,
			Description: w.Description,
			Abstraction: w.Abstraction,
		}
		if err := s.db.Create(payload).Error; err != nil {
			return nil, false, fmt.Errorf("failed to create weakness CWE-%d: %w", w.CweID, err)
		}
		created = true
	}

	primary := OrdinalPrimary
	if _, err := s.ensureRelationship(node, parentView, NatureMemberOfPrimary, &primary); err != nil {
		return nil, false, err
	}

	return node, created, nil
}

// UpsertCategory creates the category, its primary membership edge to the parent view and one belongs_to
// edge per member weakness. An existing category is returned as-is without touching any edge.
func (s *cweStore) UpsertCategory(c Category, parentView *CweNode) (*CweNode, bool, error) {
	if parentView == nil {
		return nil, false, fmt.Errorf("no parent view given for category CWE-%d", c.CweID)
	}

	existing, err := s.GetCweNode(CweKindCategory, c.CweID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	// resolve every member before writing anything
	var members []*CweNode
	seen := iset.New()
	for _, id := range c.Members {
		if seen.Has(id) {
			continue
		}
		seen.Add(id)

		member, err := s.GetCweNode(CweKindWeakness, id)
		if err != nil {
			return nil, false, err
		}
		if member == nil {
			return nil, false, fmt.Errorf("%w: CWE-%d (member of category CWE-%d)", ErrMissingWeakness, id, c.CweID)
		}
		members = append(members, member)
	}

	node := &CweNode{
		Kind:    CweKindCategory,
		CweID:   c.CweID,
		Name:    c.Name,
		Version: c.Version,
		Mapping: c.Mapping,
	}
	if err := s.db.Create(node).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create category CWE-%d: %w", c.CweID, err)
	}

	payload := &CweCategory{
		NodeID:  node.ID,
		Status:  c.Status,
		Summary: c.Summary,
	}
	if err := s.db.Create(payload).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create category CWE-%d: %w", c.CweID, err)
	}

	primary := OrdinalPrimary
	if _, err := s.ensureRelationship(node, parentView, NatureMemberOfPrimary, &primary); err != nil {
		return nil, false, err
	}

	for _, member := range members {
		// the weakness is the source so that the child is always the source of an edge
		if _, err := s.ensureRelationship(member, node, NatureBelongsTo, nil); err != nil {
			return nil, false, err
		}
	}

	return node, true, nil
}

func (s *cweStore) ensureRelationship(source, destination *CweNode, nature RelationshipNature, ordinal *Ordinal) (bool, error) {
	var count int64
	err := s.db.Model(&CweRelationship{}).
		Where("source_id = ? AND destination_id = ?", source.ID, destination.ID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check relationship %s -> %s: %w", source, destination, err)
	}
	if count > 0 {
		return false, nil
	}

	edge := &CweRelationship{
		SourceID:      source.ID,
		DestinationID: destination.ID,
		Nature:        nature,
		Ordinal:       ordinal,
	}
	if err := s.db.Create(edge).Error; err != nil {
		return false, fmt.Errorf("failed to create relationship %s -%s-> %s: %w", source, nature, destination, err)
	}
	return true, nil
}

// GetCweNode returns nil when no node of the given kind carries the CWE ID.
func (s *cweStore) GetCweNode(kind CweKind, cweID int) (*CweNode, error) {
	var nodes []CweNode
	result := s.db.Where("kind = ? AND cwe_id = ?", kind, cweID).Limit(1).Find(&nodes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch %s CWE-%d: %w", kind, cweID, result.Error)
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return &nodes[0], nil
}

// FindWeaknesses returns every weakness node carrying the CWE ID.
func (s *cweStore) FindWeaknesses(cweID int) ([]CweNode, error) {
	var nodes []CweNode
	result := s.db.Where("kind = ? AND cwe_id = ?", CweKindWeakness, cweID).Find(&nodes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find weaknesses for CWE-%d: %w", cweID, result.Error)
	}
	return nodes, nil
}

func (s *cweStore) GetCweEntry(id uuid.UUID) (*CweEntry, error) {
	var entry CweEntry
	if err := s.db.Where("id = ?", id).First(&entry.Node).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch CWE node (id=%s): %w", id, err)
	}

	var err error
	switch entry.Node.Kind {
	case CweKindView:
		entry.View = &CweView{}
		err = s.db.Where("id = ?", id).First(entry.View).Error
	case CweKindCategory:
		entry.Category = &CweCategory{}
		err = s.db.Where("id = ?", id).First(entry.Category).Error
	case CweKindWeakness:
		entry.Weakness = &CweWeakness{}
		err = s.db.Where("id = ?", id).First(entry.Weakness).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s payload for %s: %w", entry.Node.Kind, entry.Node, err)
	}

	return &entry, nil
}

// CweRelationships returns every edge touching the node, in either direction, with both endpoints loaded.
func (s *cweStore) CweRelationships(nodeID uuid.UUID) ([]CweRelationship, error) {
	var edges []CweRelationship
	result := s.db.Preload("Source").Preload("Destination").
		Where("source_id = ? OR destination_id = ?", nodeID, nodeID).
		Order("nature").Order("created_at").
		Find(&edges)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch relationships (node=%s): %w", nodeID, result.Error)
	}
	return edges, nil
}

// CountCweNodes counts nodes of the given kinds, or of every kind when none are given.
func (s *cweStore) CountCweNodes(kinds ...CweKind) (int64, error) {
	query := s.db.Model(&CweNode{})
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count CWE nodes: %w", err)
	}
	return count, nil
}
