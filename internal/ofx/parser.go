// Package ofx parses OFX/QFX bank exports into statement-origin candidates,
// bypassing the AI statement extractor for banks that offer structured
// downloads.
package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseStatement parses an OFX/QFX file into statement-origin candidates.
// Credits (deposits, refunds) are skipped; only money leaving the account
// becomes an expense candidate. Transactions in unsupported currencies are
// dropped with a warning.
func (p *Parser) ParseStatement(reader io.Reader) ([]model.RawCandidate, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var candidates []model.RawCandidate
	var skipped int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			cands, n := p.processStatement(stmt.BankTranList, currencyOf(stmt.CurDef))
			candidates = append(candidates, cands...)
			skipped += n
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			cands, n := p.processStatement(stmt.BankTranList, currencyOf(stmt.CurDef))
			candidates = append(candidates, cands...)
			skipped += n
		}
	}

	slog.Info("Parsed OFX file",
		"candidates", len(candidates),
		"skipped", skipped)

	return candidates, nil
}

func (p *Parser) processStatement(list *ofxgo.TransactionList, cur model.Currency) ([]model.RawCandidate, int) {
	if list == nil {
		return nil, 0
	}

	var candidates []model.RawCandidate
	var skipped int

	for _, ofxTx := range list.Transactions {
		candidate, ok := p.convertTransaction(ofxTx, cur)
		if !ok {
			skipped++
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, skipped
}

// convertTransaction converts one OFX transaction to a statement candidate.
// The second return value is false when the row is not an expense in a
// supported currency.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, cur model.Currency) (model.RawCandidate, bool) {
	if !cur.Valid() {
		slog.Warn("Skipping transaction in unsupported currency", "currency", cur)
		return model.RawCandidate{}, false
	}

	// OFX uses negative amounts for debits; only those are expenses.
	amountFloat, _ := ofxTx.TrnAmt.Float64()
	if amountFloat >= 0 {
		return model.RawCandidate{}, false
	}

	amount := decimal.NewFromFloat(-amountFloat)

	candidate := model.RawCandidate{
		Origin:        model.OriginStatement,
		Date:          model.DateOnly(ofxTx.DtPosted.Time),
		Amount:        amount,
		Currency:      cur,
		Merchant:      p.extractMerchantName(ofxTx),
		Description:   strings.TrimSpace(string(ofxTx.Memo)),
		PaymentMethod: model.PaymentCard,
	}

	return candidate, true
}

func currencyOf(curdef ofxgo.CurrSymbol) model.Currency {
	return model.Currency(strings.ToUpper(strings.TrimSpace(curdef.String())))
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}

	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
