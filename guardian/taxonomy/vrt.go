package taxonomy

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// VRTDocument is the Bugcrowd Vulnerability Rating Taxonomy: categories, their sub-categories and their variants.
type VRTDocument struct {
	Content  []VRTNode   `json:"content"`
	Metadata VRTMetadata `json:"metadata"`
}

type VRTMetadata struct {
	ReleaseDate string `json:"release_date"`
}

// VRTNode is an entry at any level of the taxonomy.
type VRTNode struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Priority *int      `json:"priority"`
	Type     string    `json:"type"`
	Children []VRTNode `json:"children"`
}

// node type discriminators, one per level of the taxonomy
const (
	VRTTypeCategory    = "category"
	VRTTypeSubCategory = "subcategory"
	VRTTypeVariant     = "variant"
)

var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func ReadVRTDocument(r io.Reader) (*VRTDocument, error) {
	var doc VRTDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("unable to decode VRT document: %w", err)
	}
	return &doc, nil
}

// ReleaseDate returns nil when the document does not declare a release date.
func (d VRTDocument) ReleaseDate() (*time.Time, error) {
	raw := strings.TrimSpace(d.Metadata.ReleaseDate)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: unable to parse release date %q", ErrInvalidVRT, raw)
}

// Validate reports every structural problem of the document at once.
func (d VRTDocument) Validate() error {
	var errs error

	if _, err := d.ReleaseDate(); err != nil {
		errs = multierror.Append(errs, err)
	}

	if len(d.Content) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: no categories", ErrInvalidVRT))
	}

	for _, category := range d.Content {
		if category.Priority != nil {
			errs = multierror.Append(errs, fmt.Errorf("%w: category %q declares priority %d, priorities are only allowed on leaves", ErrInvalidVRT, category.ID, *category.Priority))
		}
		errs = validateNode(errs, category, category.ID, VRTTypeCategory)
		for _, sub := range category.Children {
			path := category.ID + "." + sub.ID
			errs = validateNode(errs, sub, path, VRTTypeSubCategory)
			for _, variant := range sub.Children {
				errs = validateNode(errs, variant, path+"."+variant.ID, VRTTypeVariant)
				if len(variant.Children) > 0 {
					errs = multierror.Append(errs, fmt.Errorf("%w: variant %q has children, the taxonomy is limited to three levels", ErrInvalidVRT, path+"."+variant.ID))
				}
			}
		}
	}

	return errs
}

func validateNode(errs error, n VRTNode, path, nodeType string) error {
	if n.Type != nodeType {
		errs = multierror.Append(errs, fmt.Errorf("%w: entry %q has type %q, expected %q", ErrInvalidVRT, path, n.Type, nodeType))
	}
	if strings.TrimSpace(n.ID) == "" {
		errs = multierror.Append(errs, fmt.Errorf("%w: entry %q has no id", ErrInvalidVRT, path))
	}
	if strings.TrimSpace(n.Name) == "" {
		errs = multierror.Append(errs, fmt.Errorf("%w: entry %q has no name", ErrInvalidVRT, path))
	}
	return errs
}

// LeafPath addresses a node of the taxonomy by the IDs of each level; deeper levels are empty when not requested.
type LeafPath struct {
	CategoryID    string
	SubCategoryID string
	VariantID     string
}

func (p LeafPath) String() string {
	parts := []string{p.CategoryID}
	if p.SubCategoryID != "" {
		parts = append(parts, p.SubCategoryID)
	}
	if p.VariantID != "" {
		parts = append(parts, p.VariantID)
	}
	return strings.Join(parts, ".")
}
