package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/herbwise/basil/internal/cli"
	"github.com/herbwise/basil/internal/model"
	"github.com/herbwise/basil/internal/ocr"
	"github.com/herbwise/basil/internal/pipeline"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract structured items from shopping text or a receipt image",
		Long: `Extract parses free-form shopping text ("2kg apples, 1L milk, bread")
or an OCR-scanned receipt image into structured purchase records, matching
each item against the product catalog.`,
		RunE: runExtract,
	}

	cmd.Flags().String("image", "", "receipt image to run through OCR instead of text arguments")
	cmd.Flags().Int64("user", 1, "user recording the purchase")
	cmd.Flags().Bool("save", false, "record extracted items as purchases")
	cmd.Flags().Bool("yes", false, "skip confirmation prompts when saving")

	_ = viper.BindPFlag("extract.user", cmd.Flags().Lookup("user"))

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	imagePath, _ := cmd.Flags().GetString("image")
	userID, _ := cmd.Flags().GetInt64("user")
	save, _ := cmd.Flags().GetBool("save")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	raw, err := buildInput(cmd, args, imagePath)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	snapshot, err := a.catalogSnapshot(ctx)
	if err != nil {
		return err
	}

	lastPurchased, err := a.store.LastPurchaseTimes(ctx, userID)
	if err != nil {
		return err
	}

	p := pipeline.New(a.seeds, a.cfg, a.store)
	result, err := p.Extract(ctx, raw, snapshot, lastPurchased)
	if err != nil {
		return err
	}

	fmt.Println(cli.TitleStyle.Render("Extracted items"))
	cli.RenderItems(os.Stdout, result)

	if !save || len(result.Items) == 0 {
		return nil
	}

	if !assumeYes && !cli.Confirm(os.Stdin, os.Stdout, fmt.Sprintf("Record %d purchase(s)?", len(result.Items))) {
		fmt.Println(cli.SubtleStyle.Render("Nothing recorded."))
		return nil
	}

	return recordItems(cmd, a, userID, result)
}

// buildInput assembles the RawInput from either text arguments or an OCR
// run over a receipt image.
func buildInput(cmd *cobra.Command, args []string, imagePath string) (model.RawInput, error) {
	if imagePath == "" {
		if len(args) == 0 {
			return model.RawInput{}, fmt.Errorf("provide shopping text or --image")
		}
		return model.RawInput{
			Text:             strings.Join(args, " "),
			Source:           model.SourceManual,
			SourceConfidence: 1.0,
		}, nil
	}

	engine := ocr.NewTesseract(viper.GetString("ocr.binary"), viper.GetString("ocr.language"))
	res, err := engine.Recognize(cmd.Context(), imagePath)
	if err != nil {
		return model.RawInput{}, fmt.Errorf("OCR failed: %w", err)
	}

	return model.RawInput{
		Text:             res.Text,
		Source:           model.SourceOCR,
		SourceConfidence: res.Confidence,
	}, nil
}

func recordItems(cmd *cobra.Command, a *app, userID int64, result *pipeline.Result) error {
	ctx := cmd.Context()
	now := time.Now()

	recorded := 0
	for _, item := range result.Items {
		product, err := a.store.GetOrCreateProduct(ctx, item.Name, item.Category)
		if err != nil {
			return fmt.Errorf("failed to resolve product %q: %w", item.Name, err)
		}

		event := model.PurchaseEvent{
			UserID:    userID,
			ProductID: product.ID,
			Name:      product.CanonicalName,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Price:     item.Price,
			Category:  product.Category,
			Timestamp: now,
		}
		if err := a.store.RecordPurchase(ctx, &event); err != nil {
			return fmt.Errorf("failed to record %q: %w", item.Name, err)
		}
		recorded++
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Recorded %d purchase(s).", recorded)))
	return nil
}
