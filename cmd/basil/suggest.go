package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/herbwise/basil/internal/cli"
	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/normalize"
	"github.com/herbwise/basil/internal/suggest"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest what to buy next, ranked from purchase history",
		RunE:  runSuggest,
	}

	cmd.Flags().Int64("user", 1, "user to suggest for")
	cmd.Flags().StringSlice("list", nil, "items already on the shopping list (comma-separated)")
	cmd.Flags().Int("top", 0, "number of suggestions (default from config)")

	return cmd
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	userID, _ := cmd.Flags().GetInt64("user")
	listItems, _ := cmd.Flags().GetStringSlice("list")
	top, _ := cmd.Flags().GetInt("top")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	history, err := a.store.ListPurchases(ctx, userID, historySince())
	if err != nil {
		return err
	}

	active, err := resolveActiveList(cmd, a, listItems)
	if err != nil {
		return err
	}

	cfg := a.cfg.Suggest
	if top > 0 {
		cfg.TopN = top
	}

	engine := suggest.New(cfg)
	suggestions := engine.Suggest(history, active, time.Now())

	fmt.Println(cli.TitleStyle.Render("Shopping suggestions"))
	cli.RenderSuggestions(os.Stdout, suggestions)

	if next, ok := suggest.NextTrip(history); ok {
		fmt.Println(cli.SubtleStyle.Render(
			fmt.Sprintf("next shopping trip around %s", next.Format("Mon, Jan 2"))))
	}

	return nil
}

// resolveActiveList maps shopping-list names to catalog product IDs,
// skipping names the catalog has never seen.
func resolveActiveList(cmd *cobra.Command, a *app, names []string) ([]int64, error) {
	var ids []int64
	for _, name := range names {
		product, err := a.store.GetProductByName(cmd.Context(), normalize.Name(name))
		if errors.Is(err, common.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, product.ID)
	}
	return ids, nil
}
