package taxonomy

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/internal/log"
)

var viewHeaderPattern = regexp.MustCompile(`^VIEW LIST: CWE-(\d+): (.+)$`)

// CWECatalog is a MITRE CWE XML catalog restricted to the entries of a single view.
type CWECatalog struct {
	XMLName    xml.Name      `xml:"http://cwe.mitre.org/cwe-7 Weakness_Catalog"`
	Name       string        `xml:"Name,attr"`
	Version    string        `xml:"Version,attr"`
	Weaknesses []cweWeakness `xml:"Weaknesses>Weakness"`
	Categories []cweCategory `xml:"Categories>Category"`
}

type cweWeakness struct {
	ID          int    `xml:"ID,attr"`
	Name        string `xml:"Name,attr"`
	Abstraction string `xml:"Abstraction,attr"`
	Status      string `xml:"Status,attr"`
	Description string `xml:"Description"`
	Usage       string `xml:"Mapping_Notes>Usage"`
}

type cweCategory struct {
	ID      int         `xml:"ID,attr"`
	Name    string      `xml:"Name,attr"`
	Status  string      `xml:"Status,attr"`
	Summary string      `xml:"Summary"`
	Usage   string      `xml:"Mapping_Notes>Usage"`
	Members []cweMember `xml:"Relationships>Has_Member"`
}

type cweMember struct {
	CweID int `xml:"CWE_ID,attr"`
}

func ReadCWECatalog(r io.Reader) (*CWECatalog, error) {
	var catalog CWECatalog
	if err := xml.NewDecoder(r).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCatalog, err)
	}
	return &catalog, nil
}

// View returns the CWE ID and name of the view the catalog was exported for, as declared by the catalog name.
func (c CWECatalog) View() (int, string, error) {
	match := viewHeaderPattern.FindStringSubmatch(strings.TrimSpace(c.Name))
	if match == nil {
		return 0, "", fmt.Errorf("%w: catalog name %q does not identify a view", ErrMalformedCatalog, c.Name)
	}
	id, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, "", fmt.Errorf("%w: catalog name %q: %v", ErrMalformedCatalog, c.Name, err)
	}
	return id, match[2], nil
}

func (c CWECatalog) version() *string {
	v := strings.TrimSpace(c.Version)
	if v == "" {
		return nil
	}
	return &v
}

func (c CWECatalog) weaknesses() ([]v1.Weakness, error) {
	var out []v1.Weakness
	for _, w := range c.Weaknesses {
		status, err := v1.ParseWeaknessStatus(w.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: weakness CWE-%d: %v", ErrMalformedCatalog, w.ID, err)
		}
		abstraction, err := v1.ParseAbstraction(w.Abstraction)
		if err != nil {
			return nil, fmt.Errorf("%w: weakness CWE-%d: %v", ErrMalformedCatalog, w.ID, err)
		}
		mapping, err := v1.ParseMappingUsage(w.Usage)
		if err != nil {
			return nil, fmt.Errorf("%w: weakness CWE-%d: %v", ErrMalformedCatalog, w.ID, err)
		}

		out = append(out, v1.Weakness{
			CweID:       w.ID,
			Name:        w.Name,
			Version:     c.version(),
			Status:      status,
			Description: strings.TrimSpace(w.Description),
			Abstraction: abstraction,
			Mapping:     mapping,
		})
	}
	return out, nil
}

func (c CWECatalog) categories() ([]v1.Category, error) {
	var out []v1.Category
	for _, cat := range c.Categories {
		status, err := v1.ParseCategoryStatus(cat.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: category CWE-%d: %v", ErrMalformedCatalog, cat.ID, err)
		}
		mapping, err := v1.ParseMappingUsage(cat.Usage)
		if err != nil {
			return nil, fmt.Errorf("%w: category CWE-%d: %v", ErrMalformedCatalog, cat.ID, err)
		}

		var members []int
		for _, m := range cat.Members {
			members = append(members, m.CweID)
		}

		out = append(out, v1.Category{
			CweID:   cat.ID,
			Name:    cat.Name,
			Version: c.version(),
			Status:  status,
			Summary: strings.TrimSpace(cat.Summary),
			Mapping: mapping,
			Members: members,
		})
	}
	return out, nil
}

// ImportCWECatalogs merges the catalogs into the store. Views are expected to be seeded already. Weaknesses of
// every catalog are imported before any category, since a category may group weaknesses exported with another
// view.
func ImportCWECatalogs(store v1.ReadWriter, catalogs []*CWECatalog, result *Result) error {
	if result == nil {
		result = &Result{}
	}

	views := make([]*v1.CweNode, len(catalogs))
	for i, catalog := range catalogs {
		view, err := parentView(store, catalog)
		if err != nil {
			return err
		}
		views[i] = view
	}

	for i, catalog := range catalogs {
		weaknesses, err := catalog.weaknesses()
		if err != nil {
			return err
		}
		for _, w := range weaknesses {
			_, created, err := store.UpsertWeakness(w, views[i])
			if err != nil {
				return err
			}
			result.recordWeakness(created)
		}
		log.WithFields("view", views[i].CweID, "weaknesses", len(weaknesses)).Debug("imported CWE weaknesses")
	}

	for i, catalog := range catalogs {
		categories, err := catalog.categories()
		if err != nil {
			return err
		}
		for _, c := range categories {
			_, created, err := store.UpsertCategory(c, views[i])
			if err != nil {
				return err
			}
			result.recordCategory(created)
		}
		log.WithFields("view", views[i].CweID, "categories", len(categories)).Debug("imported CWE categories")
	}

	return nil
}

func parentView(store v1.Reader, catalog *CWECatalog) (*v1.CweNode, error) {
	id, name, err := catalog.View()
	if err != nil {
		return nil, err
	}
	view, err := store.GetCweNode(v1.CweKindView, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, fmt.Errorf("%w: view CWE-%d (%s) is not a known view", ErrMalformedCatalog, id, name)
	}
	return view, nil
}
