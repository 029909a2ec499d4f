package taxonomy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
)

func TestReadCWECatalog(t *testing.T) {
	catalog := readCatalogFixture(t, "cwe-699.xml")

	id, name, err := catalog.View()
	require.NoError(t, err)
	assert.Equal(t, 699, id)
	assert.Equal(t, "Software Development", name)
	assert.Equal(t, "4.10", catalog.Version)

	weaknesses, err := catalog.weaknesses()
	require.NoError(t, err)
	require.Len(t, weaknesses, 1)
	assert.Equal(t, 79, weaknesses[0].CweID)
	assert.Equal(t, v1.AbstractionBase, weaknesses[0].Abstraction)
	assert.Equal(t, v1.MappingAllowed, weaknesses[0].Mapping)
	assert.Equal(t, v1.WeaknessStable, weaknesses[0].Status)
	require.NotNil(t, weaknesses[0].Version)
	assert.Equal(t, "4.10", *weaknesses[0].Version)
	assert.True(t, strings.HasPrefix(weaknesses[0].Description, "The product does not neutralize"))

	categories, err := catalog.categories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, 1215, categories[0].CweID)
	assert.Equal(t, []int{20, 79}, categories[0].Members)
	assert.Equal(t, v1.CategoryDraft, categories[0].Status)
	assert.Equal(t, v1.MappingProhibited, categories[0].Mapping)
}

func TestReadCWECatalog_classAbstraction(t *testing.T) {
	weaknesses, err := readCatalogFixture(t, "cwe-1000.xml").weaknesses()
	require.NoError(t, err)
	require.Len(t, weaknesses, 1)
	assert.Equal(t, v1.AbstractionClass, weaknesses[0].Abstraction)
	assert.Equal(t, v1.MappingDiscouraged, weaknesses[0].Mapping)
}

func TestReadCWECatalog_wrongNamespace(t *testing.T) {
	_, err := ReadCWECatalog(strings.NewReader(`<Weakness_Catalog Name="VIEW LIST: CWE-699: Software Development" xmlns="http://cwe.mitre.org/cwe-6"/>`))
	require.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestCWECatalog_View(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		expectedID int
		wantErr    require.ErrorAssertionFunc
	}{
		{name: "view list", header: "VIEW LIST: CWE-1000: Research Concepts", expectedID: 1000},
		{name: "surrounding whitespace", header: "  VIEW LIST: CWE-1194: Hardware Design ", expectedID: 1194},
		{name: "full catalog", header: "CWE", wantErr: require.Error},
		{name: "missing name", header: "VIEW LIST: CWE-699", wantErr: require.Error},
		{name: "lower case", header: "view list: cwe-699: Software Development", wantErr: require.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			id, _, err := CWECatalog{Name: tt.header}.View()
			tt.wantErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, ErrMalformedCatalog)
				return
			}
			assert.Equal(t, tt.expectedID, id)
		})
	}
}

func TestCWECatalog_badEnumerations(t *testing.T) {
	catalog := CWECatalog{
		Name:       "VIEW LIST: CWE-699: Software Development",
		Weaknesses: []cweWeakness{{ID: 1, Name: "w", Abstraction: "Base", Status: "Stable", Usage: "Whenever"}},
	}
	_, err := catalog.weaknesses()
	require.ErrorIs(t, err, ErrMalformedCatalog)

	catalog = CWECatalog{
		Name:       "VIEW LIST: CWE-699: Software Development",
		Categories: []cweCategory{{ID: 2, Name: "c", Status: "Stable", Usage: "Prohibited"}},
	}
	_, err = catalog.categories()
	require.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestImportCWECatalogs(t *testing.T) {
	s := newSeededStore(t)

	// the category in the first catalog groups a weakness exported with the second one
	catalogs := []*CWECatalog{
		readCatalogFixture(t, "cwe-699.xml"),
		readCatalogFixture(t, "cwe-1000.xml"),
	}

	result := &Result{}
	require.NoError(t, ImportCWECatalogs(s, catalogs, result))
	assert.Equal(t, 2, result.WeaknessesCreated)
	assert.Equal(t, 1, result.CategoriesCreated)

	counts := tableCounts(t, s)
	assert.Equal(t, int64(6), counts["cwe_node"])
	assert.Equal(t, int64(5), counts["cwe_relationship"])

	improper, err := s.GetCweNode(v1.CweKindWeakness, 20)
	require.NoError(t, err)
	edges, err := s.CweRelationships(improper.ID)
	require.NoError(t, err)

	destinations := map[v1.RelationshipNature]int{}
	for _, e := range edges {
		destinations[e.Nature] = e.Destination.CweID
	}
	assert.Equal(t, map[v1.RelationshipNature]int{
		v1.NatureBelongsTo:       1215,
		v1.NatureMemberOfPrimary: 1000,
	}, destinations)

	// a second run is a no-op
	again := &Result{}
	require.NoError(t, ImportCWECatalogs(s, catalogs, again))
	assert.Zero(t, again.WeaknessesCreated)
	assert.Equal(t, 2, again.WeaknessesExisting)
	assert.Equal(t, 1, again.CategoriesExisting)
	assert.Equal(t, counts, tableCounts(t, s))
}

func TestImportCWECatalogs_unseededView(t *testing.T) {
	s := newSeededStore(t)

	catalog := &CWECatalog{Name: "VIEW LIST: CWE-1400: Comprehensive Categorization for Software Assurance Trends"}
	err := ImportCWECatalogs(s, []*CWECatalog{catalog}, nil)
	require.ErrorIs(t, err, ErrMalformedCatalog)
}

func TestImportCWECatalogs_missingWeakness(t *testing.T) {
	s := newSeededStore(t)

	catalog := &CWECatalog{
		Name: "VIEW LIST: CWE-699: Software Development",
		Categories: []cweCategory{{
			ID:      1215,
			Name:    "Data Validation Issues",
			Status:  "Draft",
			Usage:   "Prohibited",
			Members: []cweMember{{CweID: 9999}},
		}},
	}
	err := ImportCWECatalogs(s, []*CWECatalog{catalog}, nil)
	require.ErrorIs(t, err, v1.ErrMissingWeakness)
}
