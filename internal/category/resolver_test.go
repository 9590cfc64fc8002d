package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

func testCatalog() model.Catalog {
	return model.Catalog{
		{
			ID:   1,
			Name: "Food",
			Subcategories: []model.Subcategory{
				{ID: 11, CategoryID: 1, Name: "Restaurant"},
				{ID: 12, CategoryID: 1, Name: "Cafe"},
			},
		},
		{
			ID:   2,
			Name: "Travel",
			Subcategories: []model.Subcategory{
				{ID: 21, CategoryID: 2, Name: "Fuel"},
			},
		},
		{ID: 3, Name: "Other"},
	}
}

func TestResolveCategoryChain(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name   string
		ref    model.CategoryRef
		wantID int64
	}{
		{
			name:   "explicit identifier wins",
			ref:    model.CategoryRefByID(2),
			wantID: 2,
		},
		{
			name:   "unknown identifier falls through to Other",
			ref:    model.CategoryRefByID(99),
			wantID: 3,
		},
		{
			name:   "exact name match",
			ref:    model.CategoryRefByName("Travel"),
			wantID: 2,
		},
		{
			name:   "case-insensitive name match",
			ref:    model.CategoryRefByName("fOOd"),
			wantID: 1,
		},
		{
			name:   "name match trims whitespace",
			ref:    model.CategoryRefByName("  Food  "),
			wantID: 1,
		},
		{
			name:   "unknown name falls back to Other",
			ref:    model.CategoryRefByName("Útiköltség"),
			wantID: 3,
		},
		{
			name:   "unresolved reference falls back to Other",
			ref:    model.CategoryRef{},
			wantID: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.ref, model.CategoryRef{}, catalog)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, res.Category.ID)
			assert.Nil(t, res.Subcategory)
		})
	}
}

func TestResolveFallsBackToFirstEntryWithoutOther(t *testing.T) {
	catalog := model.Catalog{
		{ID: 5, Name: "Groceries"},
		{ID: 6, Name: "Shopping"},
	}

	res, err := Resolve(model.CategoryRefByName("Útiköltség"), model.CategoryRef{}, catalog)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Category.ID)
}

func TestResolveSubcategory(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name      string
		catRef    model.CategoryRef
		subRef    model.CategoryRef
		wantSubID int64
		wantCatID int64
		wantUnset bool
	}{
		{
			name:      "explicit subcategory identifier in chosen category",
			catRef:    model.CategoryRefByID(1),
			subRef:    model.CategoryRefByID(12),
			wantSubID: 12,
			wantCatID: 1,
		},
		{
			name:      "identifier from another category is rejected",
			catRef:    model.CategoryRefByID(1),
			subRef:    model.CategoryRefByID(21),
			wantUnset: true,
			wantCatID: 1,
		},
		{
			name:      "case-insensitive subcategory name",
			catRef:    model.CategoryRefByName("food"),
			subRef:    model.CategoryRefByName("restaurant"),
			wantSubID: 11,
			wantCatID: 1,
		},
		{
			name:      "unknown subcategory name leaves it unset",
			catRef:    model.CategoryRefByID(1),
			subRef:    model.CategoryRefByName("Bakery"),
			wantUnset: true,
			wantCatID: 1,
		},
		{
			name:      "no subcategory hint",
			catRef:    model.CategoryRefByID(2),
			subRef:    model.CategoryRef{},
			wantUnset: true,
			wantCatID: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.catRef, tt.subRef, catalog)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCatID, res.Category.ID)
			if tt.wantUnset {
				assert.Nil(t, res.Subcategory)
			} else {
				require.NotNil(t, res.Subcategory)
				assert.Equal(t, tt.wantSubID, res.Subcategory.ID)
			}
		})
	}
}

func TestResolveEmptyCatalog(t *testing.T) {
	_, err := Resolve(model.CategoryRefByName("Food"), model.CategoryRef{}, model.Catalog{})
	assert.ErrorIs(t, err, common.ErrEmptyCatalog)
}

func TestResolveAlwaysTerminatesWithCategory(t *testing.T) {
	catalog := testCatalog()

	malformed := []string{"", "   ", "ŰÚÖÜÓ", "123", "!!!", "other"}
	for _, name := range malformed {
		res, err := Resolve(model.CategoryRefByName(name), model.CategoryRef{}, catalog)
		require.NoError(t, err)
		assert.NotZero(t, res.Category.ID, "name %q must still resolve", name)
	}
}
