package ofx

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aronveress/tripledger/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240820120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240801120000[0:GMT]
<DTEND>20240831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240816120000[0:GMT]
<TRNAMT>-45.45
<FITID>2024081601
<NAME>KONOBA D. SPLIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240817120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024081701
<NAME>POS PURCHASE TOMMY MARKET
<MEMO>Card ending 4528
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240818120000[0:GMT]
<TRNAMT>200.00
<FITID>2024081801
<NAME>REFUND BOOKING.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240831120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseStatement(t *testing.T) {
	parser := NewParser()

	candidates, err := parser.ParseStatement(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)

	// The refund (credit) is not an expense candidate.
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, model.OriginStatement, first.Origin)
	assert.Equal(t, "2024-08-16", first.Date.Format("2006-01-02"))
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("45.45")))
	assert.Equal(t, model.CurrencyEUR, first.Currency)
	assert.Equal(t, "KONOBA D. SPLIT", first.Merchant)
	assert.Equal(t, model.PaymentCard, first.PaymentMethod)

	second := candidates[1]
	assert.Equal(t, "TOMMY MARKET", second.Merchant, "POS prefix should be stripped")
	assert.Equal(t, "Card ending 4528", second.Description)
}

func TestParseStatementInvalidFile(t *testing.T) {
	parser := NewParser()

	_, err := parser.ParseStatement(strings.NewReader("this is not an OFX file"))
	assert.Error(t, err)
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	t.Run("fixes mixed-case severity", func(t *testing.T) {
		input := "<SEVERITY>Info</SEVERITY>"
		assert.Equal(t, "<SEVERITY>INFO</SEVERITY>", parser.preprocessOFX(input))
	})

	t.Run("closes unterminated tags", func(t *testing.T) {
		input := "<STMTTRN\n<TRNTYPE>DEBIT"
		processed := parser.preprocessOFX(input)
		assert.Contains(t, processed, "<STMTTRN>")
	})

	t.Run("trims leading blank lines", func(t *testing.T) {
		input := "\n\n  OFXHEADER:100"
		assert.Equal(t, "OFXHEADER:100", parser.preprocessOFX(input))
	})
}

func TestIsGenericDescription(t *testing.T) {
	assert.True(t, isGenericDescription("DEBIT"))
	assert.True(t, isGenericDescription("card purchase"))
	assert.False(t, isGenericDescription("KONOBA D. SPLIT"))
}
