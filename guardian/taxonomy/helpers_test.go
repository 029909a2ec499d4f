package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	v1 "github.com/guardian-sec/guardian/guardian/db/v1"
)

func newTestStore(t *testing.T) v1.ReadWriter {
	t.Helper()
	s, err := v1.NewWriter(v1.Config{DBDirPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func newSeededStore(t *testing.T) v1.ReadWriter {
	t.Helper()
	s := newTestStore(t)
	_, err := s.SeedViews()
	require.NoError(t, err)
	return s
}

func tableCounts(t *testing.T, s v1.Reader) map[string]int64 {
	t.Helper()
	counts, err := s.TableCounts()
	require.NoError(t, err)

	out := make(map[string]int64)
	for _, c := range counts {
		out[c.Table] = c.Count
	}
	return out
}

func readCatalogFixture(t *testing.T, name string) *CWECatalog {
	t.Helper()
	fh, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer fh.Close()

	catalog, err := ReadCWECatalog(fh)
	require.NoError(t, err)
	return catalog
}

func readVRTFixtures(t *testing.T) (*VRTDocument, *SideDocument, *SideDocument) {
	t.Helper()

	open := func(name string) *os.File {
		fh, err := os.Open(filepath.Join("testdata", name))
		require.NoError(t, err)
		t.Cleanup(func() { _ = fh.Close() })
		return fh
	}

	doc, err := ReadVRTDocument(open("vrt.json"))
	require.NoError(t, err)
	cvssSide, err := ReadSideDocument(open("cvss_v3.json"))
	require.NoError(t, err)
	cweSide, err := ReadSideDocument(open("cwe.json"))
	require.NoError(t, err)

	return doc, cvssSide, cweSide
}
