package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provenance records which raw candidates a merged item was built from.
type Provenance string

// Provenance values.
const (
	ProvenanceReceipt   Provenance = "receipt"
	ProvenanceStatement Provenance = "statement"
	ProvenanceMerged    Provenance = "merged"
)

// MergedItem is the working unit of a reconciliation session: one
// real-world transaction, possibly backed by one or two raw candidates.
// Items are mutable during the review phase and are never persisted
// directly; only their resolved projection becomes an expense at commit.
type MergedItem struct {
	Date          time.Time
	ID            string
	Merchant      string
	Description   string
	CategoryName  string
	SubcatName    string
	Receipt       *RawCandidate
	Statement     *RawCandidate
	Amount        decimal.Decimal
	CategoryID    int64
	SubcategoryID int64
	Currency      Currency
	PaymentMethod PaymentMethod
	Provenance    Provenance
}

// CategoryRef derives the category reference commit-time resolution should
// use: the explicit identifier when the item has been resolved or edited,
// otherwise whatever free-text name it carries.
func (m *MergedItem) CategoryRef() CategoryRef {
	if m.CategoryID != 0 {
		return CategoryRefByID(m.CategoryID)
	}
	return CategoryRefByName(m.CategoryName)
}

// SubcategoryRef derives the subcategory reference for commit-time resolution.
func (m *MergedItem) SubcategoryRef() CategoryRef {
	if m.SubcategoryID != 0 {
		return CategoryRefByID(m.SubcategoryID)
	}
	return CategoryRefByName(m.SubcatName)
}

// RawItemsText joins the receipt's extracted line items for persistence,
// or returns "" when the item has no receipt backing.
func (m *MergedItem) RawItemsText() string {
	if m.Receipt == nil || len(m.Receipt.LineItems) == 0 {
		return ""
	}
	return strings.Join(m.Receipt.LineItems, "\n")
}
