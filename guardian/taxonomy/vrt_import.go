package taxonomy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scylladb/go-set/strset"

	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/internal/cvss"
	"github.com/guardian-sec/guardian/internal/log"
)

var cweReferencePattern = regexp.MustCompile(`(?i)^CWE-(\d+)$`)

type vrtImport struct {
	store       v1.ReadWriter
	cvssSide    *SideDocument
	cweSide     *SideDocument
	releaseDate *time.Time
	result      *Result
}

type leafTarget struct {
	path        LeafPath
	category    *v1.VrtCategory
	subCategory *v1.VrtSubCategory
	variant     *v1.VrtVariant
	priority    *int
}

// ImportVRTTree upserts every category, sub-category and variant of the document and materializes one leaf per
// terminal node of the tree, attaching the CVSS vector and CWE weaknesses resolved from the side documents.
// Either side document may be nil.
func ImportVRTTree(store v1.ReadWriter, doc *VRTDocument, cvssSide, cweSide *SideDocument, result *Result) error {
	if result == nil {
		result = &Result{}
	}
	if doc == nil {
		return fmt.Errorf("%w: no document", ErrInvalidVRT)
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	releaseDate, err := doc.ReleaseDate()
	if err != nil {
		return err
	}

	imp := vrtImport{
		store:       store,
		cvssSide:    cvssSide,
		cweSide:     cweSide,
		releaseDate: releaseDate,
		result:      result,
	}

	for _, c := range doc.Content {
		if err := imp.importCategory(c); err != nil {
			return err
		}
	}
	return nil
}

func (i vrtImport) importCategory(c VRTNode) error {
	category, _, err := i.store.UpsertVrtCategory(c.ID, c.Name, i.releaseDate)
	if err != nil {
		return err
	}

	if len(c.Children) == 0 {
		return i.createOrUpdateLeaf(leafTarget{
			path:     LeafPath{CategoryID: c.ID},
			category: category,
		})
	}

	for _, sc := range c.Children {
		subCategory, _, err := i.store.UpsertVrtSubCategory(sc.ID, sc.Name, i.releaseDate)
		if err != nil {
			return err
		}

		if len(sc.Children) == 0 {
			err := i.createOrUpdateLeaf(leafTarget{
				path:        LeafPath{CategoryID: c.ID, SubCategoryID: sc.ID},
				category:    category,
				subCategory: subCategory,
				priority:    sc.Priority,
			})
			if err != nil {
				return err
			}
			continue
		}

		for _, v := range sc.Children {
			variant, _, err := i.store.UpsertVrtVariant(v.ID, v.Name, i.releaseDate)
			if err != nil {
				return err
			}
			err = i.createOrUpdateLeaf(leafTarget{
				path:        LeafPath{CategoryID: c.ID, SubCategoryID: sc.ID, VariantID: v.ID},
				category:    category,
				subCategory: subCategory,
				variant:     variant,
				priority:    v.Priority,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (i vrtImport) createOrUpdateLeaf(t leafTarget) error {
	cvssID, err := i.resolveCvss(t.path)
	if err != nil {
		return err
	}

	key := v1.LeafKey{
		CategoryID: t.category.ID,
		Priority:   t.priority,
	}
	if t.subCategory != nil {
		key.SubCategoryID = &t.subCategory.ID
	}
	if t.variant != nil {
		key.VariantID = &t.variant.ID
	}

	leaf, err := i.store.GetLeaf(key)
	if err != nil {
		return err
	}

	if leaf != nil {
		if err := i.store.UpdateLeaf(leaf, cvssID, i.releaseDate); err != nil {
			return err
		}
		i.result.recordLeaf(false)
	} else {
		leaf = &v1.Vrt{
			CategoryID:    key.CategoryID,
			SubCategoryID: key.SubCategoryID,
			VariantID:     key.VariantID,
			Priority:      key.Priority,
			CvssID:        cvssID,
			ReleaseDate:   i.releaseDate,
		}
		if err := i.store.CreateLeaf(leaf); err != nil {
			return err
		}
		i.result.recordLeaf(true)
	}

	return i.linkWeaknesses(leaf, t.path)
}

func (i vrtImport) resolveCvss(path LeafPath) (*uuid.UUID, error) {
	vector, ok, err := ResolveCVSS(i.cvssSide, path)
	if err != nil || !ok {
		return nil, err
	}

	scored, err := cvss.NormalizeCVSS3(vector)
	if err != nil {
		return nil, fmt.Errorf("invalid CVSS vector for %q: %w", path, err)
	}
	if scored == nil {
		return nil, nil
	}

	record, _, err := i.store.UpsertCvss(*scored)
	if err != nil {
		return nil, err
	}
	return &record.ID, nil
}

func (i vrtImport) linkWeaknesses(leaf *v1.Vrt, path LeafPath) error {
	refs, ok, err := ResolveCWEs(i.cweSide, path)
	if err != nil || !ok {
		return err
	}

	seen := strset.New()
	for _, ref := range refs {
		match := cweReferencePattern.FindStringSubmatch(strings.TrimSpace(ref))
		if match == nil {
			log.WithFields("vrt", path, "reference", ref).Debug("ignoring non-CWE reference")
			continue
		}

		id, err := strconv.Atoi(match[1])
		if err != nil {
			i.result.warn(fmt.Sprintf("%s: unusable CWE reference %q", path, ref), "vrt", path, "reference", ref)
			continue
		}

		token := fmt.Sprintf("CWE-%d", id)
		if seen.Has(token) {
			continue
		}
		seen.Add(token)

		weaknesses, err := i.store.FindWeaknesses(id)
		if err != nil {
			return err
		}

		switch len(weaknesses) {
		case 0:
			i.result.warn(fmt.Sprintf("%s: no weakness found for %s", path, token), "vrt", path, "cwe", token)
		case 1:
			if _, err := i.store.LinkLeafWeakness(leaf.ID, weaknesses[0].ID); err != nil {
				return err
			}
		default:
			i.result.warn(fmt.Sprintf("%s: %d weaknesses found for %s", path, len(weaknesses), token), "vrt", path, "cwe", token)
		}
	}
	return nil
}
