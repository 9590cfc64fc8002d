package match

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aronveress/tripledger/internal/model"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func receipt(date, amount string, cur model.Currency, merchant string) model.RawCandidate {
	return model.RawCandidate{
		Origin:   model.OriginReceipt,
		Date:     day(date),
		Amount:   decimal.RequireFromString(amount),
		Currency: cur,
		Merchant: merchant,
	}
}

func statement(date, amount string, cur model.Currency, merchant string) model.RawCandidate {
	return model.RawCandidate{
		Origin:   model.OriginStatement,
		Date:     day(date),
		Amount:   decimal.RequireFromString(amount),
		Currency: cur,
		Merchant: merchant,
	}
}

func TestMatchMergesWithinTolerance(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "45.50", model.CurrencyEUR, "Konoba Dalmatino"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "45.45", model.CurrencyEUR, "KONOBA D. SPLIT"),
	}

	items := Match(receipts, statements)

	require.Len(t, items, 1)
	assert.Equal(t, model.ProvenanceMerged, items[0].Provenance)
	assert.Equal(t, "Konoba Dalmatino", items[0].Merchant)
	assert.True(t, items[0].Amount.Equal(decimal.RequireFromString("45.50")))
	assert.NotNil(t, items[0].Receipt)
	assert.NotNil(t, items[0].Statement)
}

func TestMatchDifferentDatesStaySeparate(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "10.00", model.CurrencyUSD, "Diner"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-17", "10.00", model.CurrencyUSD, "DINER LLC"),
	}

	items := Match(receipts, statements)

	require.Len(t, items, 2)
	// Sorted date-descending: the statement row (08-17) comes first.
	assert.Equal(t, model.ProvenanceStatement, items[0].Provenance)
	assert.Equal(t, model.ProvenanceReceipt, items[1].Provenance)
}

func TestMatchDifferentCurrenciesStaySeparate(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "10.00", model.CurrencyEUR, "Shop"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "10.00", model.CurrencyUSD, "SHOP"),
	}

	items := Match(receipts, statements)
	require.Len(t, items, 2)
}

func TestMatchToleranceBoundary(t *testing.T) {
	tests := []struct {
		name       string
		stmtAmount string
		wantMerged bool
	}{
		{"difference under tolerance merges", "45.41", true},
		{"difference exactly at tolerance stays separate", "45.40", false},
		{"difference over tolerance stays separate", "45.39", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			receipts := []model.RawCandidate{
				receipt("2024-08-16", "45.50", model.CurrencyEUR, "Konoba"),
			}
			statements := []model.RawCandidate{
				statement("2024-08-16", tt.stmtAmount, model.CurrencyEUR, ""),
			}

			items := Match(receipts, statements)
			if tt.wantMerged {
				require.Len(t, items, 1)
				assert.Equal(t, model.ProvenanceMerged, items[0].Provenance)
			} else {
				require.Len(t, items, 2)
			}
		})
	}
}

func TestMatchFirstFoundWins(t *testing.T) {
	// Two receipts both eligible for the single statement row; the one
	// earliest in the receipt batch must be consumed.
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "20.00", model.CurrencyEUR, "First Cafe"),
		receipt("2024-08-16", "20.05", model.CurrencyEUR, "Second Cafe"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "20.00", model.CurrencyEUR, "CAFE"),
	}

	items := Match(receipts, statements)

	require.Len(t, items, 2)
	var merged, leftover *model.MergedItem
	for _, item := range items {
		switch item.Provenance {
		case model.ProvenanceMerged:
			merged = item
		case model.ProvenanceReceipt:
			leftover = item
		}
	}
	require.NotNil(t, merged)
	require.NotNil(t, leftover)
	assert.Equal(t, "First Cafe", merged.Merchant)
	assert.Equal(t, "Second Cafe", leftover.Merchant)
}

func TestMatchConsumesEachReceiptOnce(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "15.00", model.CurrencyEUR, "Bakery"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "15.00", model.CurrencyEUR, "BAKERY 1"),
		statement("2024-08-16", "15.01", model.CurrencyEUR, "BAKERY 2"),
	}

	items := Match(receipts, statements)

	require.Len(t, items, 2)
	mergedCount := 0
	for _, item := range items {
		if item.Provenance == model.ProvenanceMerged {
			mergedCount++
		}
	}
	assert.Equal(t, 1, mergedCount, "a receipt may back exactly one merged item")
}

func TestMatchEmptyInputs(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "5.00", model.CurrencyHUF, "Kiosk"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-15", "9.00", model.CurrencyHUF, "ABC"),
	}

	t.Run("no statements yields receipt-only set", func(t *testing.T) {
		items := Match(receipts, nil)
		require.Len(t, items, 1)
		assert.Equal(t, model.ProvenanceReceipt, items[0].Provenance)
	})

	t.Run("no receipts yields statement-only set", func(t *testing.T) {
		items := Match(nil, statements)
		require.Len(t, items, 1)
		assert.Equal(t, model.ProvenanceStatement, items[0].Provenance)
	})

	t.Run("both empty yields empty output", func(t *testing.T) {
		items := Match(nil, nil)
		assert.Empty(t, items)
	})
}

func TestMatchOutputSortedByDateDescending(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-14", "1.00", model.CurrencyEUR, "A"),
		receipt("2024-08-18", "2.00", model.CurrencyEUR, "B"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "3.00", model.CurrencyEUR, "C"),
		statement("2024-08-16", "4.00", model.CurrencyEUR, "D"),
	}

	items := Match(receipts, statements)

	require.Len(t, items, 4)
	assert.Equal(t, "B", items[0].Merchant)
	// Equal dates keep emission order: statements C then D.
	assert.Equal(t, "C", items[1].Merchant)
	assert.Equal(t, "D", items[2].Merchant)
	assert.Equal(t, "A", items[3].Merchant)
}

func TestMatchIsDeterministic(t *testing.T) {
	receipts := []model.RawCandidate{
		receipt("2024-08-16", "45.50", model.CurrencyEUR, "Konoba"),
		receipt("2024-08-16", "12.00", model.CurrencyEUR, "Gelato"),
		receipt("2024-08-17", "30.00", model.CurrencyUSD, "Museum"),
	}
	statements := []model.RawCandidate{
		statement("2024-08-16", "45.45", model.CurrencyEUR, "KONOBA"),
		statement("2024-08-16", "12.05", model.CurrencyEUR, "GELATERIA"),
		statement("2024-08-18", "99.00", model.CurrencyHUF, "HOTEL"),
	}

	first := Match(receipts, statements)
	second := Match(receipts, statements)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Provenance, second[i].Provenance)
		assert.Equal(t, first[i].Merchant, second[i].Merchant)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
		assert.Equal(t, first[i].Currency, second[i].Currency)
		assert.True(t, first[i].Date.Equal(second[i].Date))
	}
}

func TestMergedItemPrefersReceiptFields(t *testing.T) {
	r := receipt("2024-08-16", "45.50", model.CurrencyEUR, "Konoba Dalmatino")
	r.Description = "Dinner for two"
	r.PaymentMethod = model.PaymentCash
	r.Category = model.CategoryRefByName("Food")
	r.LineItems = []string{"Fish Soup: 12.00", "Grilled Squid: 22.00"}

	s := statement("2024-08-16", "45.45", model.CurrencyEUR, "KONOBA D. SPLIT")
	s.Description = "POS purchase 4528"
	s.Category = model.CategoryRefByName("Other")

	items := Match([]model.RawCandidate{r}, []model.RawCandidate{s})

	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "Konoba Dalmatino", item.Merchant)
	assert.Equal(t, "Dinner for two", item.Description)
	assert.Equal(t, model.PaymentCash, item.PaymentMethod)
	assert.Equal(t, "Food", item.CategoryName)
	assert.Equal(t, "Fish Soup: 12.00\nGrilled Squid: 22.00", item.RawItemsText())
}
