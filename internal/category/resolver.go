// Package category resolves free-form category hints against the
// authoritative catalog.
//
// Extraction output carries categories as explicit identifiers, free-text
// names in any language, or nothing at all. Resolution applies a fixed
// fallback chain ending in a default bucket, so every item ends up with a
// valid category as long as the catalog is non-empty.
package category

import (
	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

// Resolution is the outcome of resolving one item's category hints.
// Category is always set; Subcategory may be nil.
type Resolution struct {
	Subcategory *model.Subcategory
	Category    model.Category
}

// Resolve maps a category reference and a subcategory reference onto the
// catalog. Category fallback chain, first match wins:
//
//  1. explicit identifier present in the catalog
//  2. case-insensitive name match (trimmed)
//  3. the entry literally named "Other"
//  4. the first catalog entry
//
// Subcategory resolution only runs once a category is chosen: an explicit
// identifier must belong to that category, otherwise a case-insensitive
// name match is tried; no match leaves the subcategory unset, which is not
// an error.
//
// Returns ErrEmptyCatalog when the catalog has zero entries. That is a
// configuration failure, not a per-item one.
func Resolve(catRef, subRef model.CategoryRef, catalog model.Catalog) (Resolution, error) {
	if len(catalog) == 0 {
		return Resolution{}, common.ErrEmptyCatalog
	}

	chosen := resolveCategory(catRef, catalog)
	res := Resolution{Category: *chosen}

	if sub := resolveSubcategory(subRef, chosen); sub != nil {
		res.Subcategory = sub
	}

	return res, nil
}

func resolveCategory(ref model.CategoryRef, catalog model.Catalog) *model.Category {
	if id, ok := ref.ID(); ok {
		if cat := catalog.ByID(id); cat != nil {
			return cat
		}
	}

	if name, ok := ref.Name(); ok {
		if cat := catalog.ByName(name); cat != nil {
			return cat
		}
	}

	if other := catalog.ByName("Other"); other != nil {
		return other
	}

	return &catalog[0]
}

func resolveSubcategory(ref model.CategoryRef, cat *model.Category) *model.Subcategory {
	if id, ok := ref.ID(); ok {
		if sub := cat.SubcategoryByID(id); sub != nil {
			return sub
		}
	}

	if name, ok := ref.Name(); ok {
		if sub := cat.SubcategoryByName(name); sub != nil {
			return sub
		}
	}

	return nil
}
