package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardian-sec/guardian/cmd/guardian/cli/options"
	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
	"github.com/guardian-sec/guardian/guardian/taxonomy"
)

func TestRenderImportResult(t *testing.T) {
	got := renderImportResult(&taxonomy.Result{
		WeaknessesCreated:  2,
		CategoriesExisting: 1,
		LeavesCreated:      5,
		Warnings:           []string{"x: no weakness found for CWE-9999"},
	})

	for _, want := range []string{"RECORD", "NEW", "EXISTING", "weaknesses", "categories", "vrt leaves", "1 unresolved weakness reference(s)"} {
		assert.Contains(t, got, want)
	}

	clean := renderImportResult(&taxonomy.Result{})
	assert.NotContains(t, clean, "unresolved")
}

func TestRunDBImportTaxonomy(t *testing.T) {
	testdata := filepath.Join("..", "..", "..", "..", "guardian", "taxonomy", "testdata")
	if _, err := os.Stat(filepath.Join(testdata, "vrt.json")); err != nil {
		t.Skip("taxonomy fixtures not available")
	}

	dbDir := t.TempDir()
	opts := dbImportTaxonomyOptions{
		DB: options.Database{Dir: dbDir},
		Taxonomy: options.Taxonomy{
			VRT:        filepath.Join(testdata, "vrt.json"),
			CVSS:       filepath.Join(testdata, "cvss_v3.json"),
			CWEMapping: filepath.Join(testdata, "cwe.json"),
			CWECatalogs: []string{
				filepath.Join(testdata, "cwe-1000.xml"),
				filepath.Join(testdata, "cwe-699.xml"),
			},
		},
	}

	require.NoError(t, runDBImportTaxonomy(context.Background(), opts))
	// a second run over the same inputs converges
	require.NoError(t, runDBImportTaxonomy(context.Background(), opts))

	status := readDBStatus(v1.Config{DBDirPath: dbDir})
	require.NoError(t, status.Err)
	assert.Len(t, status.Sources, 5)
}
