package v1

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRef(i int) *int {
	return &i
}

func TestVrtStore_UpsertVrtCategory(t *testing.T) {
	s := setupTestStore(t)

	first := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)

	created, isNew, err := s.UpsertVrtCategory("server_security_misconfiguration", "Server Security Misconfiguration", &first)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEqual(t, uuid.Nil, created.ID)

	updated, isNew, err := s.UpsertVrtCategory("server_security_misconfiguration", "Server Misconfiguration", &second)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, updated.ID)

	got, err := s.GetVrtCategory("server_security_misconfiguration")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Server Misconfiguration", got.Name)
	require.NotNil(t, got.ReleaseDate)
	assert.True(t, second.Equal(*got.ReleaseDate))

	missing, err := s.GetVrtCategory("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestVrtStore_levelsAreIndependent(t *testing.T) {
	s := setupTestStore(t)

	// the same VRT ID may appear at different levels
	c, _, err := s.UpsertVrtCategory("other", "Other", nil)
	require.NoError(t, err)
	sc, _, err := s.UpsertVrtSubCategory("other", "Other", nil)
	require.NoError(t, err)
	v, _, err := s.UpsertVrtVariant("other", "Other", nil)
	require.NoError(t, err)

	assert.NotEqual(t, c.ID, sc.ID)
	assert.NotEqual(t, sc.ID, v.ID)

	gotSub, err := s.GetVrtSubCategory("other")
	require.NoError(t, err)
	assert.Equal(t, sc.ID, gotSub.ID)

	gotVariant, err := s.GetVrtVariant("other")
	require.NoError(t, err)
	assert.Equal(t, v.ID, gotVariant.ID)
}

func TestVrtStore_GetLeaf_nullAware(t *testing.T) {
	s := setupTestStore(t)

	category, _, err := s.UpsertVrtCategory("broken_authentication", "Broken Authentication", nil)
	require.NoError(t, err)
	sub, _, err := s.UpsertVrtSubCategory("weak_login", "Weak Login Function", nil)
	require.NoError(t, err)

	// only a deeper leaf exists
	deep := &Vrt{CategoryID: category.ID, SubCategoryID: &sub.ID, Priority: intRef(3)}
	require.NoError(t, s.CreateLeaf(deep))

	tests := []struct {
		name     string
		key      LeafKey
		expected *uuid.UUID
	}{
		{
			name: "category only does not match a deeper leaf",
			key:  LeafKey{CategoryID: category.ID},
		},
		{
			name: "sub-category without priority does not match a prioritized leaf",
			key:  LeafKey{CategoryID: category.ID, SubCategoryID: &sub.ID},
		},
		{
			name:     "exact key",
			key:      LeafKey{CategoryID: category.ID, SubCategoryID: &sub.ID, Priority: intRef(3)},
			expected: &deep.ID,
		},
		{
			name: "different priority",
			key:  LeafKey{CategoryID: category.ID, SubCategoryID: &sub.ID, Priority: intRef(4)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.GetLeaf(tt.key)
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, got.ID)
		})
	}
}

func TestVrtStore_CreateLeaf_nullCollision(t *testing.T) {
	s := setupTestStore(t)

	category, _, err := s.UpsertVrtCategory("other", "Other", nil)
	require.NoError(t, err)

	first := &Vrt{CategoryID: category.ID}
	require.NoError(t, s.CreateLeaf(first))
	assert.Equal(t, category.ID.String()+"/-/-/-", first.PathKey)

	// the database itself rejects a second leaf with the same (absent) components
	require.Error(t, s.CreateLeaf(&Vrt{CategoryID: category.ID}))

	// while a leaf with a distinct priority is accepted
	require.NoError(t, s.CreateLeaf(&Vrt{CategoryID: category.ID, Priority: intRef(5)}))

	var count int64
	require.NoError(t, s.db.Model(&Vrt{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestVrtStore_UpdateLeaf(t *testing.T) {
	s := setupTestStore(t)

	category, _, err := s.UpsertVrtCategory("other", "Other", nil)
	require.NoError(t, err)
	score, _, err := s.UpsertCvss(scoredVector("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:N/I:N/A:N", 0))
	require.NoError(t, err)

	leaf := &Vrt{CategoryID: category.ID}
	require.NoError(t, s.CreateLeaf(leaf))

	released := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateLeaf(leaf, &score.ID, &released))

	leaves, err := s.AllLeaves()
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.NotNil(t, leaves[0].Cvss)
	assert.Equal(t, score.ID, leaves[0].Cvss.ID)
	require.NotNil(t, leaves[0].Category)
	assert.Equal(t, "Other", leaves[0].Category.Name)
	assert.Nil(t, leaves[0].SubCategory)

	// clearing the score
	require.NoError(t, s.UpdateLeaf(leaf, nil, &released))
	got, err := s.GetLeaf(leaf.Key())
	require.NoError(t, err)
	assert.Nil(t, got.CvssID)
}

func TestVrtStore_LinkLeafWeakness(t *testing.T) {
	s := setupSeededStore(t)
	view := researchView(t, s)

	weakness, _, err := s.UpsertWeakness(xssWeakness(), view)
	require.NoError(t, err)
	category, _, err := s.UpsertVrtCategory("cross_site_scripting_xss", "Cross-Site Scripting (XSS)", nil)
	require.NoError(t, err)
	leaf := &Vrt{CategoryID: category.ID}
	require.NoError(t, s.CreateLeaf(leaf))

	linked, err := s.LinkLeafWeakness(leaf.ID, weakness.ID)
	require.NoError(t, err)
	assert.True(t, linked)

	linked, err = s.LinkLeafWeakness(leaf.ID, weakness.ID)
	require.NoError(t, err)
	assert.False(t, linked)

	nodes, err := s.LeafWeaknesses(leaf.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 79, nodes[0].CweID)
}

func TestVrtStore_deleteCategoryCascadesLeaves(t *testing.T) {
	s := setupTestStore(t)

	category, _, err := s.UpsertVrtCategory("other", "Other", nil)
	require.NoError(t, err)
	require.NoError(t, s.CreateLeaf(&Vrt{CategoryID: category.ID}))

	require.NoError(t, s.db.Delete(&VrtCategory{VrtNode: VrtNode{ID: category.ID}}).Error)

	leaves, err := s.AllLeaves()
	require.NoError(t, err)
	assert.Empty(t, leaves)
}
