package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/aronveress/tripledger/internal/cli"
	"github.com/aronveress/tripledger/internal/currency"
	"github.com/aronveress/tripledger/internal/model"
)

func tripsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trips",
		Short: "Manage trips and their fixed exchange rates",
	}

	cmd.AddCommand(tripsCreateCmd())
	cmd.AddCommand(tripsListCmd())
	cmd.AddCommand(tripsShowCmd())
	cmd.AddCommand(tripsSetRatesCmd())

	return cmd
}

func tripsCreateCmd() *cobra.Command {
	var (
		countryCode string
		startDate   string
		endDate     string
		budgetHUF   int64
		rateEUR     string
		rateUSD     string
		rateHRK     string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			start, err := time.Parse("2006-01-02", startDate)
			if err != nil {
				return fmt.Errorf("invalid --start date %q: %w", startDate, err)
			}

			trip := &model.Trip{
				Name:        args[0],
				CountryCode: countryCode,
				StartDate:   start,
				BudgetHUF:   budgetHUF,
			}

			if endDate != "" {
				end, err := time.Parse("2006-01-02", endDate)
				if err != nil {
					return fmt.Errorf("invalid --end date %q: %w", endDate, err)
				}
				trip.EndDate = &end
			}

			if trip.RateEURToHUF, err = decimal.NewFromString(rateEUR); err != nil {
				return fmt.Errorf("invalid --rate-eur %q: %w", rateEUR, err)
			}
			if trip.RateUSDToHUF, err = decimal.NewFromString(rateUSD); err != nil {
				return fmt.Errorf("invalid --rate-usd %q: %w", rateUSD, err)
			}
			if trip.RateHRKToHUF, err = decimal.NewFromString(rateHRK); err != nil {
				return fmt.Errorf("invalid --rate-hrk %q: %w", rateHRK, err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			created, err := store.CreateTrip(ctx, trip)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("created trip %q (id %d)", created.Name, created.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&countryCode, "country", "", "ISO country code, e.g. HR")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&budgetHUF, "budget", 0, "trip budget in HUF")
	cmd.Flags().StringVar(&rateEUR, "rate-eur", "", "fixed EUR→HUF rate, e.g. 395")
	cmd.Flags().StringVar(&rateUSD, "rate-usd", "", "fixed USD→HUF rate")
	cmd.Flags().StringVar(&rateHRK, "rate-hrk", "", "fixed HRK→HUF rate")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("rate-eur")
	_ = cmd.MarkFlagRequired("rate-usd")
	_ = cmd.MarkFlagRequired("rate-hrk")

	return cmd
}

func tripsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trips with budget and spend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			trips, err := store.ListTrips(ctx)
			if err != nil {
				return err
			}
			if len(trips) == 0 {
				fmt.Println(cli.SubtleStyle.Render("no trips yet; create one with \"tripledger trips create\""))
				return nil
			}

			header := fmt.Sprintf("%4s  %-20s  %-7s  %-10s  %14s  %14s",
				"ID", "NAME", "COUNTRY", "START", "BUDGET", "SPENT")
			fmt.Println(cli.TableHeaderStyle.Render(header))

			for i := range trips {
				trip := &trips[i]
				spent, err := store.TripSpentHUF(ctx, trip.ID)
				if err != nil {
					return err
				}

				budget := "—"
				if trip.BudgetHUF > 0 {
					budget = currency.Format(decimal.NewFromInt(trip.BudgetHUF), model.HomeCurrency, false)
				}

				fmt.Printf("%4d  %-20s  %-7s  %-10s  %14s  %14s\n",
					trip.ID, trip.Name, trip.CountryCode,
					trip.StartDate.Format("2006-01-02"),
					budget,
					currency.Format(spent, model.HomeCurrency, false))
			}
			return nil
		},
	}
}

func tripsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <trip-id>",
		Short: "Show one trip's details, rates and budget position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tripID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid trip id %q", args[0])
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

			spent, err := store.TripSpentHUF(ctx, trip.ID)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle(trip.Name))
			fmt.Printf("  Country:  %s\n", trip.CountryCode)
			dates := trip.StartDate.Format("2006-01-02")
			if trip.EndDate != nil {
				dates += " – " + trip.EndDate.Format("2006-01-02")
			}
			fmt.Printf("  Dates:    %s\n", dates)
			fmt.Printf("  Rates:    1 EUR = %s HUF, 1 USD = %s HUF, 1 HRK = %s HUF\n",
				trip.RateEURToHUF, trip.RateUSDToHUF, trip.RateHRKToHUF)
			fmt.Printf("  Spent:    %s\n", currency.Format(spent, model.HomeCurrency, false))

			if trip.BudgetHUF > 0 {
				budget := decimal.NewFromInt(trip.BudgetHUF)
				fmt.Printf("  Budget:   %s\n", currency.Format(budget, model.HomeCurrency, false))
				remaining := budget.Sub(spent)
				line := fmt.Sprintf("  Remaining: %s", currency.Format(remaining, model.HomeCurrency, false))
				if remaining.Sign() < 0 {
					fmt.Println(cli.ErrorStyle.Render(line + "  (over budget)"))
				} else {
					fmt.Println(cli.SuccessStyle.Render(line))
				}
			}
			return nil
		},
	}
}

func tripsSetRatesCmd() *cobra.Command {
	var (
		rateEUR string
		rateUSD string
		rateHRK string
	)

	cmd := &cobra.Command{
		Use:   "set-rates <trip-id>",
		Short: "Change a trip's fixed exchange rates (only before any expenses exist)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			tripID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid trip id %q", args[0])
			}

			eur, err := decimal.NewFromString(rateEUR)
			if err != nil {
				return fmt.Errorf("invalid --eur %q: %w", rateEUR, err)
			}
			usd, err := decimal.NewFromString(rateUSD)
			if err != nil {
				return fmt.Errorf("invalid --usd %q: %w", rateUSD, err)
			}
			hrk, err := decimal.NewFromString(rateHRK)
			if err != nil {
				return fmt.Errorf("invalid --hrk %q: %w", rateHRK, err)
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UpdateTripRates(ctx, tripID, eur, usd, hrk); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("updated rates for trip %d", tripID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&rateEUR, "eur", "", "fixed EUR→HUF rate")
	cmd.Flags().StringVar(&rateUSD, "usd", "", "fixed USD→HUF rate")
	cmd.Flags().StringVar(&rateHRK, "hrk", "", "fixed HRK→HUF rate")
	_ = cmd.MarkFlagRequired("eur")
	_ = cmd.MarkFlagRequired("usd")
	_ = cmd.MarkFlagRequired("hrk")

	return cmd
}
