package v1

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guardian-sec/guardian/internal/cvss"
)

func setupTestStore(t testing.TB, d ...string) *store {
	var dir string
	switch len(d) {
	case 0:
		dir = t.TempDir()
	case 1:
		dir = d[0]
	default:
		t.Fatal("too many arguments")
	}

	s, err := newStore(Config{
		DBDirPath: dir,
	}, true)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func setupSeededStore(t testing.TB) *store {
	s := setupTestStore(t)
	seeded, err := s.SeedViews()
	require.NoError(t, err)
	require.True(t, seeded)
	return s
}

func TestStore_TransactionRollback(t *testing.T) {
	s := setupTestStore(t)

	boom := errors.New("boom")
	err := s.Transaction(context.Background(), func(rw ReadWriter) error {
		if _, err := rw.SeedViews(); err != nil {
			return err
		}
		if _, _, err := rw.UpsertVrtCategory("xss", "Cross-Site Scripting (XSS)", nil); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	counts, err := s.TableCounts()
	require.NoError(t, err)
	for _, c := range counts {
		assert.Zerof(t, c.Count, "table %q should be empty after rollback", c.Table)
	}
}

func TestStore_TransactionCommit(t *testing.T) {
	s := setupTestStore(t)

	err := s.Transaction(context.Background(), func(rw ReadWriter) error {
		_, _, err := rw.UpsertCvss(cvss.Vector{BaseScore: 9.8, BaseVector: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"})
		return err
	})
	require.NoError(t, err)

	got, err := s.GetCvss("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 9.8, got.BaseScore)
}

func TestStore_TableCounts(t *testing.T) {
	s := setupSeededStore(t)

	counts, err := s.TableCounts()
	require.NoError(t, err)
	require.Len(t, counts, len(Models()))

	byTable := make(map[string]int64)
	for _, c := range counts {
		byTable[c.Table] = c.Count
	}
	assert.Equal(t, int64(3), byTable["cwe_node"])
	assert.Equal(t, int64(3), byTable["cwe_view"])
	assert.Equal(t, int64(0), byTable["vrt"])

	for i := 1; i < len(counts); i++ {
		assert.Less(t, counts[i-1].Table, counts[i].Table)
	}
}

func TestNewReader(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		_, err := NewReader(Config{DBDirPath: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
	})

	t.Run("existing database", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(Config{DBDirPath: dir})
		require.NoError(t, err)
		_, err = w.SeedViews()
		require.NoError(t, err)
		require.NoError(t, w.SetDBMetadata(nil))
		require.NoError(t, w.Close())

		r, err := NewReader(Config{DBDirPath: dir})
		require.NoError(t, err)
		defer r.Close()

		count, err := r.CountCweNodes(CweKindView)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}
