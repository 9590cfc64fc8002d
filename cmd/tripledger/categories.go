package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/aronveress/tripledger/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage the expense category catalog",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesAddSubCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories and their subcategories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			catalog, err := store.GetCatalog(ctx)
			if err != nil {
				return err
			}

			for i := range catalog {
				cat := &catalog[i]
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(cat.Color)).Render("●")
				fmt.Printf("%s %s (id %d)\n", swatch, cli.BoldStyle.Render(cat.Name), cat.ID)
				for _, sub := range cat.Subcategories {
					fmt.Printf("   └ %s (id %d)\n", sub.Name, sub.ID)
				}
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(ctx, args[0], color)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("created category %q (id %d)", cat.Name, cat.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "#E5E7EB", "display color (hex)")

	return cmd
}

func categoriesAddSubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-sub <category> <name>",
		Short: "Add a subcategory under an existing category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}

			sub, err := store.CreateSubcategory(ctx, cat.ID, args[1])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("created %s/%s (id %d)", cat.Name, sub.Name, sub.ID)))
			return nil
		},
	}
}
