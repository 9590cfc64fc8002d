package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/model"
)

// receiptPayload is the wire shape the receipt prompt asks the model for.
type receiptPayload struct {
	Merchant      string      `json:"merchant"`
	Date          string      `json:"date"`
	Currency      string      `json:"currency"`
	Category      string      `json:"category"`
	Subcategory   string      `json:"subcategory"`
	Description   string      `json:"description"`
	PaymentType   string      `json:"paymentType"`
	RawItems      []string    `json:"rawItems"`
	OriginalItems []string    `json:"originalItems"`
	Amount        json.Number `json:"amount"`
}

// statementPayload is the wire shape the statement prompt asks the model for.
type statementPayload struct {
	Transactions []statementRow `json:"transactions"`
}

type statementRow struct {
	Date        string      `json:"date"`
	Currency    string      `json:"currency"`
	Merchant    *string     `json:"merchant"`
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Subcategory *string     `json:"subcategory"`
	Amount      json.Number `json:"amount"`
}

// cleanModelJSON strips markdown fences and any prose surrounding the JSON
// body. Models occasionally ignore the "no markdown" instruction.
func cleanModelJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	// Trim anything before the first brace/bracket and after the last.
	start := strings.IndexAny(text, "{[")
	if start > 0 {
		text = text[start:]
	}
	end := strings.LastIndexAny(text, "}]")
	if end >= 0 && end < len(text)-1 {
		text = text[:end+1]
	}

	return text
}

// decodeReceipt turns a model response into one receipt-origin candidate.
func decodeReceipt(text string) (*model.RawCandidate, error) {
	var payload receiptPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from model: %v", common.ErrExtractionFailed, err)
	}

	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q", common.ErrExtractionFailed, payload.Date)
	}

	amount, err := decimal.NewFromString(payload.Amount.String())
	if err != nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: bad amount %q", common.ErrExtractionFailed, payload.Amount)
	}

	cur := model.Currency(strings.ToUpper(strings.TrimSpace(payload.Currency)))
	if !cur.Valid() {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownCurrency, payload.Currency)
	}

	payment := model.PaymentMethod(payload.PaymentType)
	if !payment.Valid() {
		payment = model.PaymentCash
	}

	return &model.RawCandidate{
		Origin:        model.OriginReceipt,
		Date:          model.DateOnly(date),
		Amount:        amount,
		Currency:      cur,
		Merchant:      strings.TrimSpace(payload.Merchant),
		Category:      model.CategoryRefByName(payload.Category),
		Subcategory:   model.CategoryRefByName(payload.Subcategory),
		Description:   strings.TrimSpace(payload.Description),
		PaymentMethod: payment,
		LineItems:     payload.RawItems,
		OriginalItems: payload.OriginalItems,
	}, nil
}

// decodeStatement turns a model response into statement-origin candidates.
// Malformed rows are dropped with a warning; one bad row never discards the
// rest of the document.
func decodeStatement(text string) ([]model.RawCandidate, error) {
	var payload statementPayload
	if err := json.Unmarshal([]byte(cleanModelJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from model: %v", common.ErrExtractionFailed, err)
	}

	candidates := make([]model.RawCandidate, 0, len(payload.Transactions))
	for i, row := range payload.Transactions {
		candidate, err := decodeStatementRow(row)
		if err != nil {
			slog.Warn("dropping malformed statement row", "row", i, "error", err)
			continue
		}
		candidates = append(candidates, *candidate)
	}

	return candidates, nil
}

func decodeStatementRow(row statementRow) (*model.RawCandidate, error) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return nil, fmt.Errorf("bad date %q", row.Date)
	}

	amount, err := decimal.NewFromString(row.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("bad amount %q", row.Amount)
	}
	amount = amount.Abs()
	if amount.Sign() == 0 {
		return nil, fmt.Errorf("zero amount")
	}

	cur := model.Currency(strings.ToUpper(strings.TrimSpace(row.Currency)))
	if !cur.Valid() {
		return nil, fmt.Errorf("unknown currency %q", row.Currency)
	}

	candidate := &model.RawCandidate{
		Origin:   model.OriginStatement,
		Date:     model.DateOnly(date),
		Amount:   amount,
		Currency: cur,
	}

	if row.Merchant != nil {
		candidate.Merchant = strings.TrimSpace(*row.Merchant)
	}
	if row.Description != nil {
		candidate.Description = strings.TrimSpace(*row.Description)
	}
	if row.Category != nil {
		candidate.Category = model.CategoryRefByName(*row.Category)
	}
	if row.Subcategory != nil {
		candidate.Subcategory = model.CategoryRefByName(*row.Subcategory)
	}

	return candidate, nil
}
