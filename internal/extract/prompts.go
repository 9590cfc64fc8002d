package extract

import (
	"strings"

	"github.com/aronveress/tripledger/internal/model"
)

const receiptPrompt = `You are a receipt scanner for a holiday expense tracking application.

Analyze the receipt image and extract the following information:
- merchant: The store/business name
- date: The transaction date in ISO 8601 format (YYYY-MM-DD)
- amount: The total amount (as a number)
- currency: Detect the currency (EUR, USD, HUF, or HRK)
  * EUR for eurozone countries (€ symbol, "EUR" text)
  * USD for United States ($ symbol, "USD" text)
  * HUF for Hungary (Ft symbol, "HUF" text, "forint")
  * HRK for pre-euro Croatia (kn symbol, "kuna")
  * If uncertain, infer from country/language context
- category: One of the available categories listed below
- subcategory: One of the chosen category's subcategories, if one fits
- description: Brief summary of items purchased (3-5 words)
- paymentType: "CASH", "CARD", or "WIRE_TRANSFER". Default to "CASH" if unclear.
- rawItems: An array of strings, one per line item with its price, TRANSLATED TO ENGLISH. Format: "Item Name: Price".
- originalItems: The same line items IN ORIGINAL LANGUAGE as printed on the receipt.

CRITICAL: Return ONLY a valid JSON object with these exact fields. No markdown, no explanations.

Example response:
{
  "merchant": "Konoba Dalmatino",
  "date": "2024-08-16",
  "amount": 45.50,
  "currency": "EUR",
  "category": "Food",
  "description": "Dinner for two",
  "paymentType": "CASH",
  "rawItems": ["Fish Soup: 12.00", "Grilled Squid: 22.00", "Wine: 6.50", "Water: 5.00"],
  "originalItems": ["Riblja Juha: 12.00", "Lignje na žaru: 22.00", "Vino: 6.50", "Voda: 5.00"]
}`

const statementPrompt = `You are an advanced bank statement and financial document parser.
Your task is to extract a list of transactions from the provided raw text, CSV, or PDF content.

For each transaction, extract:
- date: YYYY-MM-DD format. If the year is missing, infer it from context.
- amount: The absolute numeric value.
- currency: EUR, USD, HUF, or HRK.
- merchant: The name of the other party (store, person, company), or null.
- description: A brief description, reference, or note about the purchase, or null.
- category: Map the transaction to one of the "Available Categories" below.
  If the document has its own category column (e.g. "Kategória"), the
  semantic match is priority #1: "Útiköltség" -> "Travel", "Élelmiszer" -> "Food".
  If no exact or semantic match exists, use "Other".
- subcategory: The mapped subcategory of the chosen category, if the document names one, else null.

PARSING RULES:
1. Recognize headers in any language ("Kategória" -> category, "Partner" -> merchant, "Összeg" -> amount).
2. For CSV input respect the column mapping, tolerate empty columns and quoted values containing commas.
3. When a row carries both a source and a target amount, prefer the operating
   currency of the transaction (what was spent at the merchant), not what the
   bank deducted at home.
4. Ignore header lines, summary lines (totals, opening balance), empty lines
   and failed transactions.

OUTPUT FORMAT:
Return ONLY a valid JSON object with a "transactions" key containing an array of these objects.`

// catalogPrompt renders the category catalog the way the extraction models
// expect it: one line per category with its subcategories.
func catalogPrompt(catalog model.Catalog) string {
	var b strings.Builder
	b.WriteString("Available Categories and Subcategories:\n")

	for _, cat := range catalog {
		b.WriteString("- ")
		b.WriteString(cat.Name)
		b.WriteString(": [")
		for i, sub := range cat.Subcategories {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sub.Name)
		}
		b.WriteString("]\n")
	}

	b.WriteString("\nStrictly use the names provided above.\n")
	return b.String()
}
