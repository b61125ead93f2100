package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"printquote/api"
	"printquote/core/quote"
)

var (
	quoteFile   string
	quoteFormat string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a job specification",
	Long: `Price a job specification against the rate catalog.

The request is a JSON file, for example:

  {
    "book_size": "A5",
    "paper_type": "Cream 80gsm",
    "interior_color": "B/W",
    "cover_type": "Soft",
    "page_count": 200,
    "copies": 500,
    "include_design": true,
    "margin_percent": "20"
  }`,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteFile, "file", "f", "", "JSON request file (required)")
	quoteCmd.Flags().StringVar(&quoteFormat, "format", "table", "output format (table, json)")
	_ = quoteCmd.MarkFlagRequired("file")
}

func runQuote(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(quoteFile)
	if err != nil {
		return fmt.Errorf("read request file: %w", err)
	}

	var dto api.QuoteRequest
	if err := json.Unmarshal(data, &dto); err != nil {
		return fmt.Errorf("parse request file: %w", err)
	}
	req, err := dto.ToDomain()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	bd, err := quote.ComputeQuote(cat, req)
	if err != nil {
		return err
	}

	if quoteFormat == "json" {
		out, err := json.MarshalIndent(api.NewQuoteResponse("", cat, bd), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printBreakdown(bd)
	return nil
}

func printBreakdown(bd *quote.Breakdown) {
	fmt.Println("Book specifications")
	fmt.Printf("  %-22s %14s\n", "Paper", bd.PaperCost)
	fmt.Printf("  %-22s %14s\n", "Toner", bd.TonerCost)
	fmt.Printf("  %-22s %14s\n", "Cover", bd.CoverCost)
	fmt.Printf("  %-22s %14s\n", "Finishing", bd.FinishingCost)
	fmt.Printf("  %-22s %14s\n", "Packaging", bd.PackagingCost)
	fmt.Println("Additional services")
	fmt.Printf("  %-22s %14s\n", "Design", bd.DesignCost)
	fmt.Printf("  %-22s %14s\n", "ISBN", bd.ISBNCost)
	fmt.Printf("  %-22s %14s\n", "BHR", bd.BHRCost)
	fmt.Printf("  %-22s %14s\n", "Others", bd.OthersCost)
	fmt.Println("Totals")
	fmt.Printf("  %-22s %14s\n", "Raw cost", bd.RawCost)
	fmt.Printf("  %-22s %14s  (%s%%)\n", "Margin", bd.MarginAmount, bd.MarginPercent)
	fmt.Printf("  %-22s %14s  (%s%%)\n", "Discount", bd.DiscountAmount.Neg(), bd.DiscountPercent)
	fmt.Printf("  %-22s %14s\n", "Final total", bd.FinalTotal)

	if bd.HasWarnings() {
		fmt.Println()
		fmt.Println("Warnings (missing rates priced at zero):")
		for _, w := range bd.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
