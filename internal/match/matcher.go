// Package match pairs receipt-origin candidates against statement-origin
// candidates, producing the merged working set of a reconciliation session.
package match

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
)

// AmountTolerance is how far a receipt total and a statement amount may
// diverge and still describe the same transaction. Currency-minor-unit
// agnostic; treat as given policy.
var AmountTolerance = decimal.RequireFromString("0.10")

// Match partitions the two candidate batches into merged, statement-only
// and receipt-only items.
//
// For each statement candidate, the not-yet-consumed receipt candidates are
// scanned in batch order for the first one with the same calendar date, the
// same currency, and an amount within AmountTolerance. Matching is
// first-found, not best-found: among equally valid receipts the earliest in
// the batch wins. Consumed receipts are tracked in an explicit bitset over
// candidate indices so the scan never mutates what it iterates.
//
// Merged items prefer receipt fields for merchant, description and payment
// method; receipts are more precise than statement memo lines. Both
// provenance references are retained.
//
// The result is sorted by date descending, stable within equal dates.
func Match(receipts, statements []model.RawCandidate) []*model.MergedItem {
	items := make([]*model.MergedItem, 0, len(receipts)+len(statements))
	consumed := make([]bool, len(receipts))

	for si := range statements {
		stmt := &statements[si]

		ri := findReceipt(receipts, consumed, stmt)
		if ri >= 0 {
			consumed[ri] = true
			items = append(items, mergePair(&receipts[ri], stmt))
			continue
		}

		items = append(items, fromStatement(stmt))
	}

	for ri := range receipts {
		if !consumed[ri] {
			items = append(items, fromReceipt(&receipts[ri]))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	return items
}

// findReceipt returns the index of the first unconsumed receipt matching
// the statement candidate, or -1.
func findReceipt(receipts []model.RawCandidate, consumed []bool, stmt *model.RawCandidate) int {
	for i := range receipts {
		if consumed[i] {
			continue
		}
		r := &receipts[i]
		if !model.SameDay(r.Date, stmt.Date) {
			continue
		}
		if r.Currency != stmt.Currency {
			continue
		}
		if r.Amount.Sub(stmt.Amount).Abs().GreaterThanOrEqual(AmountTolerance) {
			continue
		}
		return i
	}
	return -1
}

func mergePair(receipt, stmt *model.RawCandidate) *model.MergedItem {
	item := &model.MergedItem{
		ID:            uuid.NewString(),
		Provenance:    model.ProvenanceMerged,
		Date:          model.DateOnly(receipt.Date),
		Amount:        receipt.Amount,
		Currency:      receipt.Currency,
		Merchant:      receipt.Merchant,
		Description:   receipt.Description,
		PaymentMethod: receipt.PaymentMethod,
		Receipt:       receipt,
		Statement:     stmt,
	}

	item.CategoryName, item.SubcatName = hintNames(receipt, stmt)

	if item.Merchant == "" {
		item.Merchant = stmt.Merchant
	}
	if item.Description == "" {
		item.Description = stmt.Description
	}
	if item.PaymentMethod == "" {
		item.PaymentMethod = model.PaymentCard
	}

	return item
}

func fromStatement(stmt *model.RawCandidate) *model.MergedItem {
	merchant := stmt.Merchant
	if merchant == "" {
		merchant = "Unknown"
	}

	payment := stmt.PaymentMethod
	if payment == "" {
		// A statement row implies card or wire; cash never reaches the bank.
		payment = model.PaymentCard
	}

	item := &model.MergedItem{
		ID:            uuid.NewString(),
		Provenance:    model.ProvenanceStatement,
		Date:          model.DateOnly(stmt.Date),
		Amount:        stmt.Amount,
		Currency:      stmt.Currency,
		Merchant:      merchant,
		Description:   stmt.Description,
		PaymentMethod: payment,
		Statement:     stmt,
	}

	if name, ok := stmt.Category.Name(); ok {
		item.CategoryName = name
	}
	if name, ok := stmt.Subcategory.Name(); ok {
		item.SubcatName = name
	}

	return item
}

func fromReceipt(receipt *model.RawCandidate) *model.MergedItem {
	payment := receipt.PaymentMethod
	if payment == "" {
		payment = model.PaymentCash
	}

	item := &model.MergedItem{
		ID:            uuid.NewString(),
		Provenance:    model.ProvenanceReceipt,
		Date:          model.DateOnly(receipt.Date),
		Amount:        receipt.Amount,
		Currency:      receipt.Currency,
		Merchant:      receipt.Merchant,
		Description:   receipt.Description,
		PaymentMethod: payment,
		Receipt:       receipt,
	}

	if name, ok := receipt.Category.Name(); ok {
		item.CategoryName = name
	}
	if name, ok := receipt.Subcategory.Name(); ok {
		item.SubcatName = name
	}

	return item
}

// hintNames picks category hints for a merged pair: the receipt's hint when
// it has one, otherwise the statement's.
func hintNames(receipt, stmt *model.RawCandidate) (category, subcategory string) {
	if name, ok := receipt.Category.Name(); ok {
		category = name
	} else if name, ok := stmt.Category.Name(); ok {
		category = name
	}

	if name, ok := receipt.Subcategory.Name(); ok {
		subcategory = name
	} else if name, ok := stmt.Subcategory.Name(); ok {
		subcategory = name
	}

	return category, subcategory
}
