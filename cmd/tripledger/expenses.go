package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aronveress/tripledger/internal/cli"
	"github.com/aronveress/tripledger/internal/currency"
	"github.com/aronveress/tripledger/internal/model"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List and record expenses",
	}

	cmd.AddCommand(expensesListCmd())
	cmd.AddCommand(expensesAddCmd())

	return cmd
}

func expensesListCmd() *cobra.Command {
	var tripID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a trip's expenses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			expenses, err := store.ListExpenses(ctx, tripID)
			if err != nil {
				return err
			}
			if len(expenses) == 0 {
				fmt.Println(cli.SubtleStyle.Render("no expenses for this trip"))
				return nil
			}

			catalog, err := store.GetCatalog(ctx)
			if err != nil {
				return err
			}

			header := fmt.Sprintf("%5s  %-10s  %-24s  %12s  %12s  %-16s  %s",
				"ID", "DATE", "MERCHANT", "AMOUNT", "HUF", "CATEGORY", "PAY")
			fmt.Println(cli.TableHeaderStyle.Render(header))

			for i := range expenses {
				e := &expenses[i]

				categoryLabel := "?"
				if cat := catalog.ByID(e.CategoryID); cat != nil {
					categoryLabel = cat.Name
					if sub := cat.SubcategoryByID(e.SubcategoryID); sub != nil {
						categoryLabel += "/" + sub.Name
					}
				}

				merchant := e.Merchant
				if len(merchant) > 24 {
					merchant = merchant[:23] + "…"
				}

				fmt.Printf("%5d  %-10s  %-24s  %12s  %12s  %-16s  %s\n",
					e.ID,
					e.Date.Format("2006-01-02"),
					merchant,
					currency.Format(e.AmountOriginal, e.Currency, true),
					currency.Format(e.AmountHUF, model.HomeCurrency, false),
					categoryLabel,
					e.PaymentMethod)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&tripID, "trip", 0, "trip id")
	_ = cmd.MarkFlagRequired("trip")

	return cmd
}

func expensesAddCmd() *cobra.Command {
	var (
		tripID       int64
		dateStr      string
		merchant     string
		description  string
		amountStr    string
		currencyCode string
		categoryName string
		subName      string
		paymentStr   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record one expense by hand",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			date, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				return fmt.Errorf("invalid --date %q: %w", dateStr, err)
			}

			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amountStr, err)
			}

			cur := model.Currency(strings.ToUpper(currencyCode))
			if !cur.Valid() {
				return fmt.Errorf("unknown currency %q", currencyCode)
			}

			payment := model.PaymentMethod(strings.ToUpper(paymentStr))
			if !payment.Valid() {
				return fmt.Errorf("unknown payment method %q", paymentStr)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			trip, err := store.GetTrip(ctx, tripID)
			if err != nil {
				return err
			}

			cat, err := store.GetCategoryByName(ctx, categoryName)
			if err != nil {
				return err
			}

			expense := &model.Expense{
				TripID:         trip.ID,
				CategoryID:     cat.ID,
				Date:           date,
				Merchant:       merchant,
				Description:    description,
				PaymentMethod:  payment,
				AmountOriginal: amount,
				Currency:       cur,
				Provenance:     model.ProvenanceReceipt,
			}

			if subName != "" {
				sub := cat.SubcategoryByName(subName)
				if sub == nil {
					return fmt.Errorf("category %q has no subcategory %q", cat.Name, subName)
				}
				expense.SubcategoryID = sub.ID
			}

			expense.AmountHUF, err = currency.ToHome(amount, cur, trip.Rates())
			if err != nil {
				return err
			}

			created, err := store.CreateExpense(ctx, expense)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"recorded %s at %s (id %d)",
				currency.Format(created.AmountOriginal, created.Currency, true),
				created.Merchant, created.ID)))
			return nil
		},
	}

	cmd.Flags().Int64Var(&tripID, "trip", 0, "trip id")
	cmd.Flags().StringVar(&dateStr, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name")
	cmd.Flags().StringVar(&description, "description", "", "free-form note")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount in the original currency")
	cmd.Flags().StringVar(&currencyCode, "currency", "HUF", "currency code (HUF, EUR, USD, HRK)")
	cmd.Flags().StringVar(&categoryName, "category", "", "category name")
	cmd.Flags().StringVar(&subName, "subcategory", "", "subcategory name")
	cmd.Flags().StringVar(&paymentStr, "payment", "CASH", "payment method (CASH, CARD, WIRE_TRANSFER)")
	_ = cmd.MarkFlagRequired("trip")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("merchant")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func reportCmd() *cobra.Command {
	var tripID int64

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Budget-vs-actual breakdown for a trip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			trip, err := store.GetTrip(ctx, tripID)
			if err != nil {
				return err
			}

			totals, err := store.CategoryTotals(ctx, trip.ID)
			if err != nil {
				return err
			}

			spent, err := store.TripSpentHUF(ctx, trip.ID)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(trip.Name))

			for _, row := range totals {
				fmt.Printf("  %-20s %14s\n", row.Category,
					currency.Format(row.SpentHUF, model.HomeCurrency, false))
			}

			fmt.Println()
			fmt.Printf("  %-20s %14s\n", cli.BoldStyle.Render("Total"),
				currency.Format(spent, model.HomeCurrency, false))

			if trip.BudgetHUF > 0 {
				budget := decimal.NewFromInt(trip.BudgetHUF)
				remaining := budget.Sub(spent)
				line := fmt.Sprintf("  %-20s %14s of %s", "Remaining",
					currency.Format(remaining, model.HomeCurrency, false),
					currency.Format(budget, model.HomeCurrency, false))
				if remaining.Sign() < 0 {
					fmt.Println(cli.ErrorStyle.Render(line + "  (over budget)"))
				} else {
					fmt.Println(cli.SuccessStyle.Render(line))
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&tripID, "trip", 0, "trip id")
	_ = cmd.MarkFlagRequired("trip")

	return cmd
}
