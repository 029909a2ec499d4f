package taxonomy

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// SideDocument is shaped like the VRT tree and supplies an auxiliary value per node, correlated by ID.
type SideDocument struct {
	Content []SideNode `json:"content"`
}

// SideNode carries the values a side file may attach to a taxonomy node. A nil field means the node does not
// declare the value and inherits it from its ancestors.
type SideNode struct {
	ID       string     `json:"id"`
	CVSSv3   *string    `json:"cvss_v3,omitempty"`
	CWE      []string   `json:"cwe,omitempty"`
	Children []SideNode `json:"children,omitempty"`
}

func ReadSideDocument(r io.Reader) (*SideDocument, error) {
	var doc SideDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("unable to decode side document: %w", err)
	}
	return &doc, nil
}

// lineage returns the chain of side nodes addressed by the path, starting at the category. Descent stops at the
// first level that is not requested, has no children, or has no entry for the requested ID. An empty lineage
// means the category itself is unknown.
func lineage(content []SideNode, path LeafPath) ([]*SideNode, error) {
	category, err := matchSibling(content, path.CategoryID)
	if err != nil || category == nil {
		return nil, err
	}
	chain := []*SideNode{category}

	current := category
	for _, id := range []string{path.SubCategoryID, path.VariantID} {
		if id == "" || len(current.Children) == 0 {
			break
		}
		next, err := matchSibling(current.Children, id)
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		chain = append(chain, next)
		current = next
	}

	return chain, nil
}

func matchSibling(siblings []SideNode, id string) (*SideNode, error) {
	var match *SideNode
	var count int
	for i := range siblings {
		if siblings[i].ID != id {
			continue
		}
		count++
		if match == nil {
			match = &siblings[i]
		}
	}
	if count > 1 {
		return nil, fmt.Errorf("%w: %d entries with id %q", ErrAmbiguousMatch, count, id)
	}
	return match, nil
}

// resolveSideValue returns the value of the deepest node in the lineage that declares it (variant, then
// sub-category, then category). The boolean is false when no node in the chain declares the value.
func resolveSideValue[T any](doc *SideDocument, path LeafPath, get func(SideNode) (T, bool)) (T, bool, error) {
	var zero T
	if doc == nil {
		return zero, false, nil
	}

	chain, err := lineage(doc.Content, path)
	if err != nil {
		return zero, false, fmt.Errorf("unable to resolve %q: %w", path, err)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		if v, ok := get(*chain[i]); ok {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// ResolveCVSS returns the CVSS v3 vector that applies to the path. Blank vectors are skipped, so the nearest
// ancestor with a vector applies.
func ResolveCVSS(doc *SideDocument, path LeafPath) (string, bool, error) {
	return resolveSideValue(doc, path, func(n SideNode) (string, bool) {
		// a blank vector is the same as no vector
		if n.CVSSv3 == nil || strings.TrimSpace(*n.CVSSv3) == "" {
			return "", false
		}
		return *n.CVSSv3, true
	})
}

// ResolveCWEs returns the CWE references that apply to the path.
func ResolveCWEs(doc *SideDocument, path LeafPath) ([]string, bool, error) {
	return resolveSideValue(doc, path, func(n SideNode) ([]string, bool) {
		return n.CWE, n.CWE != nil
	})
}
