package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/herbwise/basil/internal/categorize"
	"github.com/herbwise/basil/internal/cli"
	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/enrich"
	"github.com/herbwise/basil/internal/normalize"
	"github.com/herbwise/basil/internal/suggest"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the product catalog",
	}

	cmd.AddCommand(catalogListCmd())
	cmd.AddCommand(catalogAddCmd())
	cmd.AddCommand(catalogSimilarCmd())

	return cmd
}

func catalogListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all catalog products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			products, err := a.store.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Catalog (%d products)", len(products))))
			for _, p := range products {
				line := fmt.Sprintf("%-28s %-12s", p.CanonicalName, p.Category)
				if p.LastKnownPrice != nil {
					line += fmt.Sprintf("  $%.2f", *p.LastKnownPrice)
				}
				fmt.Fprintln(os.Stdout, line)
			}
			return nil
		},
	}
}

func catalogAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> [category]",
		Short: "Register a product, categorizing it when no category is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			name := normalize.Name(args[0])

			var category string
			if len(args) == 2 {
				category = args[1]
			} else {
				category = categorize.New(a.seeds.Categories).Classify(name, nil)
				if category == categorize.FallbackCategory {
					category = enrichedCategory(cmd.Context(), a, name, category)
				}
			}

			product, err := a.store.GetOrCreateProduct(cmd.Context(), name, category)
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("%s → %s (id %d)", product.CanonicalName, product.Category, product.ID)))
			return nil
		},
	}
}

// enrichedCategory consults the optional enrichment collaborator when the
// keyword chain could only produce the fallback bucket. Any failure keeps
// the keyword answer.
func enrichedCategory(ctx context.Context, a *app, name, fallback string) string {
	client, err := enrich.New(a.cfg.Enrichment)
	if err != nil {
		if !errors.Is(err, common.ErrEnrichmentDisabled) {
			slog.Warn("enrichment unavailable", "error", err)
		}
		return fallback
	}

	category, err := client.SuggestCategory(ctx, name, a.seeds.CategoryNames())
	if err != nil {
		slog.Warn("enrichment failed, keeping keyword category", "item", name, "error", err)
		return fallback
	}
	return category
}

func catalogSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <name>",
		Short: "Find items in purchase history similar to a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetInt64("user")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			history, err := a.store.ListPurchases(cmd.Context(), userID, historySince())
			if err != nil {
				return err
			}

			items := suggest.SimilarItems(history, args[0], 5)
			if len(items) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No similar items in history."))
				return nil
			}
			for _, item := range items {
				fmt.Printf("%-28s %.2f\n", item.Name, item.Similarity)
			}
			return nil
		},
	}

	cmd.Flags().Int64("user", 1, "user whose history to search")
	return cmd
}
