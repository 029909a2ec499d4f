package options

import (
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anchore/clio"
)

func TestDefaultDatabase(t *testing.T) {
	db := DefaultDatabase(clio.Identification{Name: "guardian"})
	assert.Contains(t, db.Dir, "guardian")
	assert.Equal(t, "db", path.Base(db.ToStoreConfig().DBDirPath))

	blank := Database{Dir: "  "}
	require.Error(t, blank.PostLoad())
}

func TestTaxonomy_PostLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/in/vrt.json", "/in/cvss.json", "/in/cwe-699.xml"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("{}"), 0o644))
	}

	tests := []struct {
		name    string
		cfg     Taxonomy
		wantErr require.ErrorAssertionFunc
	}{
		{
			name:    "vrt is required",
			cfg:     Taxonomy{CVSS: "/in/cvss.json"},
			wantErr: require.Error,
		},
		{
			name:    "only vrt",
			cfg:     Taxonomy{VRT: "/in/vrt.json"},
			wantErr: require.NoError,
		},
		{
			name: "all inputs present",
			cfg: Taxonomy{
				VRT:         "/in/vrt.json",
				CVSS:        "/in/cvss.json",
				CWECatalogs: []string{"/in/cwe-699.xml"},
			},
			wantErr: require.NoError,
		},
		{
			name: "missing catalog",
			cfg: Taxonomy{
				VRT:         "/in/vrt.json",
				CWECatalogs: []string{"/in/cwe-699.xml", "/in/cwe-1000.xml"},
			},
			wantErr: require.Error,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.fs = fs
			tt.wantErr(t, tt.cfg.PostLoad())
		})
	}
}

func TestTaxonomy_ToImporterConfig(t *testing.T) {
	cfg := Taxonomy{
		VRT:         "vrt.json",
		CWEMapping:  "cwe.json",
		CWECatalogs: []string{"a.xml", "b.xml"},
	}
	got := cfg.ToImporterConfig()
	assert.Equal(t, "vrt.json", got.VRTPath)
	assert.Empty(t, got.CVSSPath)
	assert.Equal(t, "cwe.json", got.CWEMappingPath)
	assert.Equal(t, []string{"a.xml", "b.xml"}, got.CWECatalogPaths)
	assert.Equal(t, []string{"vrt.json", "cwe.json", "a.xml", "b.xml"}, cfg.paths())
}

func TestCountries_PostLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/countries.json", []byte("[]"), 0o644))

	require.Error(t, (&Countries{fs: fs}).PostLoad())
	require.Error(t, (&Countries{File: "/missing.json", fs: fs}).PostLoad())
	require.NoError(t, (&Countries{File: "/countries.json", fs: fs}).PostLoad())
}
