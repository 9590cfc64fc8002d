package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aronveress/tripledger/internal/common"
	"github.com/aronveress/tripledger/internal/currency"
	"github.com/aronveress/tripledger/internal/model"
	"github.com/aronveress/tripledger/internal/service"
	"github.com/aronveress/tripledger/internal/session"
)

// Reviewer drives the interactive review loop of a reconciliation session:
// show the merged batch, let the user edit or drop items, then commit.
type Reviewer struct {
	in  *NonBlockingReader
	out io.Writer
}

// NewReviewer creates a reviewer reading commands from in and rendering to out.
func NewReviewer(in io.Reader, out io.Writer) *Reviewer {
	return &Reviewer{
		in:  NewNonBlockingReader(in),
		out: out,
	}
}

// Review runs the loop until the batch is committed or abandoned. It
// returns the commit result, or (nil, nil) when the user quits without
// committing.
func (r *Reviewer) Review(ctx context.Context, sess *session.Session, trip *model.Trip) (*service.CommitResult, error) {
	highlight := -1

	for {
		r.renderBatch(sess, trip, highlight)
		highlight = -1

		fmt.Fprint(r.out, FormatPrompt("[c]ommit  [e]dit <n>  [r]emove <n>  [q]uit"))
		line, err := r.in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputCancelled) {
				return nil, nil
			}
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "c", "commit":
			result, err := sess.Commit(ctx)
			if err != nil {
				var verr *common.ValidationError
				if errors.As(err, &verr) {
					highlight = verr.Index
				}
				fmt.Fprintln(r.out, FormatError(err.Error()))
				continue
			}
			fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf(
				"committed %d expenses, %s total",
				result.CreatedCount,
				currency.Format(result.TotalHUF, model.HomeCurrency, false))))
			return result, nil

		case "e", "edit":
			item, ok := r.pickItem(sess, fields)
			if !ok {
				continue
			}
			if err := r.editItem(ctx, sess, item); err != nil {
				return nil, err
			}

		case "r", "remove":
			item, ok := r.pickItem(sess, fields)
			if !ok {
				continue
			}
			if err := sess.RemoveItem(item.ID); err != nil {
				fmt.Fprintln(r.out, FormatError(err.Error()))
			}

		case "q", "quit":
			fmt.Fprintln(r.out, SubtleStyle.Render("batch abandoned, nothing saved"))
			return nil, nil

		default:
			fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("unknown command %q", fields[0])))
		}
	}
}

func (r *Reviewer) pickItem(sess *session.Session, fields []string) (*model.MergedItem, bool) {
	items := sess.Items()
	if len(fields) < 2 {
		fmt.Fprintln(r.out, FormatWarning("which item? e.g. \"edit 2\""))
		return nil, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 1 || n > len(items) {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("item number must be 1-%d", len(items))))
		return nil, false
	}
	return items[n-1], true
}

func (r *Reviewer) renderBatch(sess *session.Session, trip *model.Trip, highlight int) {
	items := sess.Items()

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, FormatTitle(fmt.Sprintf("%s — %d items to reconcile", trip.Name, len(items))))

	for _, warning := range sess.Warnings() {
		fmt.Fprintln(r.out, FormatWarning(warning))
	}

	header := fmt.Sprintf("%3s  %-10s  %-24s  %12s  %12s  %-16s  %-4s  %s",
		"#", "DATE", "MERCHANT", "AMOUNT", "HUF", "CATEGORY", "SRC", "PAY")
	fmt.Fprintln(r.out, TableHeaderStyle.Render(header))

	rates := trip.Rates()
	for i, item := range items {
		categoryLabel := item.CategoryName
		if item.SubcatName != "" {
			categoryLabel += "/" + item.SubcatName
		}
		if categoryLabel == "" {
			categoryLabel = "?"
		}

		homeLabel := "?"
		if home, err := currency.ToHome(item.Amount, item.Currency, rates); err == nil {
			homeLabel = currency.Format(home, model.HomeCurrency, false)
		}

		row := fmt.Sprintf("%3d  %-10s  %-24s  %12s  %12s  %-16s  %-4s  %s",
			i+1,
			item.Date.Format("2006-01-02"),
			truncate(item.Merchant, 24),
			currency.Format(item.Amount, item.Currency, true),
			homeLabel,
			truncate(categoryLabel, 16),
			provenanceBadge(item.Provenance),
			item.PaymentMethod)

		if i == highlight {
			fmt.Fprintln(r.out, HighlightStyle.Render(row))
		} else {
			fmt.Fprintln(r.out, row)
		}
	}
	fmt.Fprintln(r.out)
}

// editItem walks through the editable fields one prompt each; an empty
// answer keeps the current value. Edits are validated at commit, not here.
func (r *Reviewer) editItem(ctx context.Context, sess *session.Session, item *model.MergedItem) error {
	edits := []struct {
		label   string
		current string
		apply   func(*model.MergedItem, string) error
	}{
		{"date (YYYY-MM-DD)", item.Date.Format("2006-01-02"), func(m *model.MergedItem, v string) error {
			date, err := time.Parse("2006-01-02", v)
			if err != nil {
				return fmt.Errorf("invalid date %q", v)
			}
			m.Date = date
			return nil
		}},
		{"merchant", item.Merchant, func(m *model.MergedItem, v string) error {
			m.Merchant = v
			return nil
		}},
		{"description", item.Description, func(m *model.MergedItem, v string) error {
			m.Description = v
			return nil
		}},
		{"amount", item.Amount.String(), func(m *model.MergedItem, v string) error {
			amount, err := decimal.NewFromString(v)
			if err != nil {
				return fmt.Errorf("invalid amount %q", v)
			}
			m.Amount = amount
			return nil
		}},
		{"currency (HUF/EUR/USD/HRK)", string(item.Currency), func(m *model.MergedItem, v string) error {
			cur := model.Currency(strings.ToUpper(v))
			if !cur.Valid() {
				return fmt.Errorf("unknown currency %q", v)
			}
			m.Currency = cur
			return nil
		}},
		{"payment (CASH/CARD/WIRE_TRANSFER)", string(item.PaymentMethod), func(m *model.MergedItem, v string) error {
			payment := model.PaymentMethod(strings.ToUpper(v))
			if !payment.Valid() {
				return fmt.Errorf("unknown payment method %q", v)
			}
			m.PaymentMethod = payment
			return nil
		}},
		{"category", item.CategoryName, func(m *model.MergedItem, v string) error {
			// Clearing the pinned identifiers makes commit re-resolve the
			// name against the live catalog.
			m.CategoryName = v
			m.CategoryID = 0
			m.SubcategoryID = 0
			return nil
		}},
		{"subcategory", item.SubcatName, func(m *model.MergedItem, v string) error {
			m.SubcatName = v
			m.SubcategoryID = 0
			return nil
		}},
	}

	for _, edit := range edits {
		fmt.Fprint(r.out, FormatPrompt(fmt.Sprintf("%s [%s]", edit.label, edit.current)))
		answer, err := r.in.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, ErrInputCancelled) {
				return nil
			}
			return err
		}
		if answer == "" {
			continue
		}

		apply := edit.apply
		var applyErr error
		if err := sess.UpdateItem(item.ID, func(m *model.MergedItem) {
			applyErr = apply(m, answer)
		}); err != nil {
			return err
		}
		if applyErr != nil {
			fmt.Fprintln(r.out, FormatWarning(applyErr.Error()))
		}
	}

	return nil
}

func provenanceBadge(p model.Provenance) string {
	switch p {
	case model.ProvenanceMerged:
		return "R+S"
	case model.ProvenanceReceipt:
		return "R"
	case model.ProvenanceStatement:
		return "S"
	default:
		return "?"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
