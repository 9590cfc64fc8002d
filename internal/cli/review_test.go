package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/session"
	"github.com/aronveress/tripledger/internal/testutil"
)

type receiptExtractorFunc func(ctx context.Context, image []byte, mimeType string, catalog model.Catalog) (*model.RawCandidate, error)

func (f receiptExtractorFunc) ExtractReceipt(ctx context.Context, image []byte, mimeType string, catalog model.Catalog) (*model.RawCandidate, error) {
	return f(ctx, image, mimeType, catalog)
}

type statementExtractorFunc func(ctx context.Context, content string, catalog model.Catalog) ([]model.RawCandidate, error)

func (f statementExtractorFunc) ExtractStatement(ctx context.Context, content string, catalog model.Catalog) ([]model.RawCandidate, error) {
	return f(ctx, content, catalog)
}

func reviewSession(t *testing.T) (*session.Session, *model.Trip) {
	t.Helper()
	ctx := context.Background()

	store := testutil.SetupTestDB(t)
	trip := testutil.CreateTestTrip(t, store)

	receipt := receiptExtractorFunc(func(_ context.Context, _ []byte, _ string, _ model.Catalog) (*model.RawCandidate, error) {
		return &model.RawCandidate{
			Origin:        model.OriginReceipt,
			Date:          time.Date(2024, 8, 16, 0, 0, 0, 0, time.UTC),
			Merchant:      "Konoba Dalmatino",
			Amount:        decimal.RequireFromString("45.50"),
			Currency:      model.CurrencyEUR,
			PaymentMethod: model.PaymentCard,
			Category:      model.CategoryRefByName("Food"),
		}, nil
	})
	statement := statementExtractorFunc(func(_ context.Context, _ string, _ model.Catalog) ([]model.RawCandidate, error) {
		return []model.RawCandidate{{
			Origin:   model.OriginStatement,
			Date:     time.Date(2024, 8, 17, 0, 0, 0, 0, time.UTC),
			Merchant: "TOMMY MARKET",
			Amount:   decimal.RequireFromString("125.00"),
			Currency: model.CurrencyEUR,
		}}, nil
	})

	sess := session.New(store, receipt, statement)
	require.NoError(t, sess.SelectTrip(ctx, trip.ID))
	require.NoError(t, sess.AddReceipt("konoba.jpg", []byte("img"), "image/jpeg"))
	require.NoError(t, sess.SetStatement("statement text"))
	require.NoError(t, sess.Process(ctx))
	return sess, trip
}

func TestReviewCommit(t *testing.T) {
	sess, trip := reviewSession(t)

	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader("c\n"), &out)

	result, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.CreatedCount)
	assert.Equal(t, session.StateCommitted, sess.State())
	assert.Contains(t, out.String(), "committed 2 expenses")
}

func TestReviewQuit(t *testing.T) {
	sess, trip := reviewSession(t)

	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader("q\n"), &out)

	result, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, session.StateReview, sess.State())
}

func TestReviewRemoveThenCommit(t *testing.T) {
	sess, trip := reviewSession(t)

	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader("r 1\nc\n"), &out)

	result, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.CreatedCount)
}

func TestReviewUnknownCommand(t *testing.T) {
	sess, trip := reviewSession(t)

	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader("frobnicate\nq\n"), &out)

	_, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "unknown command")
}

func TestReviewEditMerchant(t *testing.T) {
	sess, trip := reviewSession(t)

	// Edit item 1: keep every field except merchant, then commit.
	script := "e 1\n\nTommy d.o.o.\n\n\n\n\n\n\nc\n"
	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader(script), &out)

	result, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	require.NotNil(t, result)

	items := sess.Items()
	require.NotEmpty(t, items)
	assert.Equal(t, "Tommy d.o.o.", items[0].Merchant)
}

func TestReviewValidationFailureHighlights(t *testing.T) {
	sess, trip := reviewSession(t)

	items := sess.Items()
	require.NoError(t, sess.UpdateItem(items[0].ID, func(m *model.MergedItem) {
		m.Merchant = ""
	}))

	var out bytes.Buffer
	reviewer := NewReviewer(strings.NewReader("c\nq\n"), &out)

	result, err := reviewer.Review(context.Background(), sess, trip)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Contains(t, out.String(), "item 0")
	assert.Equal(t, session.StateReview, sess.State())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "very long…", truncate("very long merchant name", 10))
}
