package taxonomy

import (
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRef(i int) *int {
	return &i
}

func TestVRTDocument_Validate(t *testing.T) {
	tests := []struct {
		name       string
		doc        VRTDocument
		wantErr    require.ErrorAssertionFunc
		wantErrors int
	}{
		{
			name: "valid",
			doc: VRTDocument{
				Content: []VRTNode{
					{ID: "other", Name: "Other", Type: VRTTypeCategory},
					{ID: "xss", Name: "XSS", Type: VRTTypeCategory, Children: []VRTNode{
						{ID: "flash", Name: "Flash", Type: VRTTypeSubCategory, Priority: intRef(4)},
					}},
				},
			},
		},
		{
			name: "category priority",
			doc: VRTDocument{
				Content: []VRTNode{
					{ID: "other", Name: "Other", Type: VRTTypeCategory, Priority: intRef(3)},
				},
			},
			wantErr:    require.Error,
			wantErrors: 1,
		},
		{
			name: "every problem is reported",
			doc: VRTDocument{
				Metadata: VRTMetadata{ReleaseDate: "last tuesday"},
				Content: []VRTNode{
					{ID: "other", Name: "Other", Type: VRTTypeCategory, Priority: intRef(3)},
					{ID: "xss", Type: VRTTypeCategory, Children: []VRTNode{
						{ID: "", Name: "Flash", Type: VRTTypeSubCategory},
					}},
				},
			},
			wantErr:    require.Error,
			wantErrors: 4,
		},
		{
			name:       "no categories",
			doc:        VRTDocument{},
			wantErr:    require.Error,
			wantErrors: 1,
		},
		{
			name: "too deep",
			doc: VRTDocument{
				Content: []VRTNode{
					{ID: "a", Name: "A", Type: VRTTypeCategory, Children: []VRTNode{
						{ID: "b", Name: "B", Type: VRTTypeSubCategory, Children: []VRTNode{
							{ID: "c", Name: "C", Type: VRTTypeVariant, Children: []VRTNode{{ID: "d", Name: "D"}}},
						}},
					}},
				},
			},
			wantErr:    require.Error,
			wantErrors: 1,
		},
		{
			name: "type does not match the level",
			doc: VRTDocument{
				Content: []VRTNode{
					{ID: "a", Name: "A", Type: VRTTypeVariant, Children: []VRTNode{
						{ID: "b", Name: "B", Type: VRTTypeCategory, Children: []VRTNode{
							{ID: "c", Name: "C", Type: VRTTypeVariant},
						}},
					}},
				},
			},
			wantErr:    require.Error,
			wantErrors: 2,
		},
		{
			name: "missing type",
			doc: VRTDocument{
				Content: []VRTNode{
					{ID: "other", Name: "Other"},
				},
			},
			wantErr:    require.Error,
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			err := tt.doc.Validate()
			tt.wantErr(t, err)
			if err == nil {
				return
			}
			assert.ErrorIs(t, err, ErrInvalidVRT)

			var merr *multierror.Error
			require.ErrorAs(t, err, &merr)
			assert.Len(t, merr.Errors, tt.wantErrors)
		})
	}
}

func TestVRTDocument_ReleaseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected *time.Time
		wantErr  require.ErrorAssertionFunc
	}{
		{input: "", expected: nil},
		{input: "2024-01-15T00:00:00+00:00", expected: timeRef(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{input: "2024-01-15T10:30:00+02:00", expected: timeRef(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC))},
		{input: "2024-01-15T10:30:00", expected: timeRef(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))},
		{input: "2024-01-15", expected: timeRef(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))},
		{input: "15/01/2024", wantErr: require.Error},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if tt.wantErr == nil {
				tt.wantErr = require.NoError
			}
			got, err := VRTDocument{Metadata: VRTMetadata{ReleaseDate: tt.input}}.ReleaseDate()
			tt.wantErr(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "expected %s got %s", tt.expected, got)
		})
	}
}

func TestReadVRTDocument(t *testing.T) {
	doc, err := ReadVRTDocument(strings.NewReader(`{"content":[{"id":"other","name":"Other","type":"category","priority":null}],"metadata":{"release_date":"2024-01-15"}}`))
	require.NoError(t, err)
	require.Len(t, doc.Content, 1)
	assert.Nil(t, doc.Content[0].Priority)
	assert.Equal(t, "category", doc.Content[0].Type)

	_, err = ReadVRTDocument(strings.NewReader(`{"content": [`))
	require.Error(t, err)
}

func TestLeafPath_String(t *testing.T) {
	assert.Equal(t, "xss", LeafPath{CategoryID: "xss"}.String())
	assert.Equal(t, "xss.stored", LeafPath{CategoryID: "xss", SubCategoryID: "stored"}.String())
	assert.Equal(t, "xss.stored.admin", LeafPath{CategoryID: "xss", SubCategoryID: "stored", VariantID: "admin"}.String())
}

func timeRef(t time.Time) *time.Time {
	return &t
}
