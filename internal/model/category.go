package model

import (
	"strconv"
	"strings"
	"time"
)

// Category is one entry of the flat category catalog.
type Category struct {
	CreatedAt     time.Time
	Name          string
	Color         string
	Subcategories []Subcategory
	ID            int64
	IsActive      bool
}

// Subcategory belongs to exactly one category.
type Subcategory struct {
	Name       string
	ID         int64
	CategoryID int64
}

// Catalog is a read-only snapshot of the category catalog in canonical
// (storage) ordering.
type Catalog []Category

// ByID returns the category with the given identifier, or nil.
func (c Catalog) ByID(id int64) *Category {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}
	return nil
}

// ByName returns the category whose name matches case-insensitively after
// trimming, or nil.
func (c Catalog) ByName(name string) *Category {
	name = strings.TrimSpace(name)
	for i := range c {
		if strings.EqualFold(c[i].Name, name) {
			return &c[i]
		}
	}
	return nil
}

// SubcategoryByID returns the subcategory of cat with the given identifier,
// or nil if it does not belong to cat.
func (cat *Category) SubcategoryByID(id int64) *Subcategory {
	for i := range cat.Subcategories {
		if cat.Subcategories[i].ID == id {
			return &cat.Subcategories[i]
		}
	}
	return nil
}

// SubcategoryByName returns the subcategory of cat whose name matches
// case-insensitively after trimming, or nil.
func (cat *Category) SubcategoryByName(name string) *Subcategory {
	name = strings.TrimSpace(name)
	for i := range cat.Subcategories {
		if strings.EqualFold(cat.Subcategories[i].Name, name) {
			return &cat.Subcategories[i]
		}
	}
	return nil
}

type categoryRefKind int

const (
	refUnresolved categoryRefKind = iota
	refByID
	refByName
)

// CategoryRef is a tagged reference to a category or subcategory: resolved
// by identifier, carried as a free-text name, or absent entirely. Extraction
// output is full of optional category hints; modeling them as a union keeps
// the resolver's fallback chain exhaustive instead of scattering nil checks.
type CategoryRef struct {
	name string
	id   int64
	kind categoryRefKind
}

// CategoryRefByID references a catalog entry by its stable identifier.
func CategoryRefByID(id int64) CategoryRef {
	return CategoryRef{kind: refByID, id: id}
}

// CategoryRefByName carries a free-text name to be matched against the catalog.
// An empty or blank name yields an unresolved reference.
func CategoryRefByName(name string) CategoryRef {
	if strings.TrimSpace(name) == "" {
		return CategoryRef{}
	}
	return CategoryRef{kind: refByName, name: name}
}

// ID returns the explicit identifier, if this reference carries one.
func (r CategoryRef) ID() (int64, bool) {
	return r.id, r.kind == refByID
}

// Name returns the free-text name, if this reference carries one.
func (r CategoryRef) Name() (string, bool) {
	return r.name, r.kind == refByName
}

// Unresolved reports whether the reference carries neither an identifier nor
// a name.
func (r CategoryRef) Unresolved() bool {
	return r.kind == refUnresolved
}

func (r CategoryRef) String() string {
	switch r.kind {
	case refByID:
		return "id:" + strconv.FormatInt(r.id, 10)
	case refByName:
		return "name:" + r.name
	default:
		return "unresolved"
	}
}
