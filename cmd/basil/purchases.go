package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/herbwise/basil/internal/categorize"
	"github.com/herbwise/basil/internal/cli"
	"github.com/herbwise/basil/internal/common"
	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/normalize"
)

func purchasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purchases",
		Short: "Record and inspect purchase history",
	}

	cmd.AddCommand(purchasesAddCmd())
	cmd.AddCommand(purchasesImportCmd())
	cmd.AddCommand(purchasesStatsCmd())

	return cmd
}

func purchasesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Record a single purchase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetInt64("user")
			quantity, _ := cmd.Flags().GetFloat64("quantity")
			unit, _ := cmd.Flags().GetString("unit")
			price, _ := cmd.Flags().GetFloat64("price")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			name := normalize.Name(args[0])
			category := categorize.New(a.seeds.Categories).Classify(name, nil)

			product, err := a.store.GetOrCreateProduct(cmd.Context(), name, category)
			if err != nil {
				return err
			}

			event := model.PurchaseEvent{
				UserID:    userID,
				ProductID: product.ID,
				Name:      product.CanonicalName,
				Quantity:  quantity,
				Unit:      unit,
				Category:  product.Category,
				Timestamp: time.Now(),
			}
			if cmd.Flags().Changed("price") {
				event.Price = &price
			}

			if err := a.store.RecordPurchase(cmd.Context(), &event); err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Recorded %s %g %s", product.CanonicalName, quantity, unit)))
			return nil
		},
	}

	cmd.Flags().Int64("user", 1, "user to record the purchase for")
	cmd.Flags().Float64("quantity", 1, "purchased quantity")
	cmd.Flags().String("unit", "unit", "quantity unit")
	cmd.Flags().Float64("price", 0, "price paid")
	return cmd
}

func purchasesImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Bulk-import purchase history from a CSV file",
		Long: `Import purchase history from a CSV file with a header row of:

    date,name,quantity,unit,price,category

date is YYYY-MM-DD; price and category may be empty. Unknown products are
registered in the catalog as they appear.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetInt64("user")

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			rows, err := readImportRows(args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("%w: no rows in %s", common.ErrNoContent, args[0])
			}

			categorizer := categorize.New(a.seeds.Categories)
			bar := progressbar.Default(int64(len(rows)), "importing")

			imported := 0
			for _, row := range rows {
				if err := importOne(cmd, a, categorizer, userID, row); err != nil {
					fmt.Fprintln(os.Stderr, cli.WarningStyle.Render(
						fmt.Sprintf("skipping %q: %v", row.name, err)))
				} else {
					imported++
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Println(cli.SuccessStyle.Render(
				fmt.Sprintf("Imported %d of %d purchases", imported, len(rows))))
			return nil
		},
	}

	cmd.Flags().Int64("user", 1, "user to import the history for")
	return cmd
}

type importRow struct {
	date     time.Time
	name     string
	quantity float64
	unit     string
	price    *float64
	category string
}

func readImportRows(path string) ([]importRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "name"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("%w: CSV missing %q column", common.ErrInvalidConfig, required)
		}
	}

	var rows []importRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		row, err := parseImportRow(record, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseImportRow(record []string, col map[string]int) (importRow, error) {
	field := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return importRow{}, fmt.Errorf("bad date %q: %w", field("date"), err)
	}

	name := field("name")
	if name == "" {
		return importRow{}, fmt.Errorf("empty name")
	}

	row := importRow{
		date:     date,
		name:     name,
		quantity: 1,
		unit:     "unit",
		category: field("category"),
	}

	if q := field("quantity"); q != "" {
		row.quantity, err = strconv.ParseFloat(q, 64)
		if err != nil {
			return importRow{}, fmt.Errorf("bad quantity %q: %w", q, err)
		}
	}
	if u := field("unit"); u != "" {
		row.unit = u
	}
	if p := field("price"); p != "" {
		price, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return importRow{}, fmt.Errorf("bad price %q: %w", p, err)
		}
		row.price = &price
	}
	return row, nil
}

func importOne(cmd *cobra.Command, a *app, categorizer *categorize.Categorizer, userID int64, row importRow) error {
	name := normalize.Name(row.name)

	category := row.category
	if category == "" {
		category = categorizer.Classify(name, nil)
	}

	product, err := a.store.GetOrCreateProduct(cmd.Context(), name, category)
	if err != nil {
		return err
	}

	return a.store.RecordPurchase(cmd.Context(), &model.PurchaseEvent{
		UserID:    userID,
		ProductID: product.ID,
		Name:      product.CanonicalName,
		Quantity:  row.quantity,
		Unit:      row.unit,
		Price:     row.price,
		Category:  product.Category,
		Timestamp: row.date,
	})
}

func purchasesStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize purchase history for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			if len(history) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No purchases recorded."))
				return nil
			}

			renderStats(history)
			return nil
		},
	}

	cmd.Flags().Int64("user", 1, "user whose history to summarize")
	return cmd
}

func renderStats(history []model.PurchaseEvent) {
	products := make(map[int64]string)
	counts := make(map[int64]int)
	categories := make(map[string]int)
	var spent float64

	for _, ev := range history {
		products[ev.ProductID] = ev.Name
		counts[ev.ProductID]++
		categories[ev.Category]++
		if ev.Price != nil {
			spent += *ev.Price
		}
	}

	fmt.Println(cli.TitleStyle.Render("Purchase history"))
	fmt.Printf("Purchases:        %d\n", len(history))
	fmt.Printf("Distinct products: %d\n", len(products))
	fmt.Printf("Total spent:      $%.2f\n", spent)
	fmt.Printf("First purchase:   %s\n", history[0].Timestamp.Format("2006-01-02"))
	fmt.Printf("Last purchase:    %s\n", history[len(history)-1].Timestamp.Format("2006-01-02"))

	fmt.Println(cli.BoldStyle.Render("\nBy category"))
	for _, name := range sortedKeys(categories) {
		fmt.Printf("%-14s %d\n", name, categories[name])
	}

	type productCount struct {
		name  string
		count int
	}
	top := make([]productCount, 0, len(counts))
	for id, count := range counts {
		top = append(top, productCount{name: products[id], count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].count != top[j].count {
			return top[i].count > top[j].count
		}
		return top[i].name < top[j].name
	})
	if len(top) > 5 {
		top = top[:5]
	}

	fmt.Println(cli.BoldStyle.Render("\nMost purchased"))
	for _, p := range top {
		fmt.Printf("%-28s %d\n", p.name, p.count)
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
