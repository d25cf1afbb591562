package foodlog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up product nutrition by barcode",
}

var (
	lookupMode   string
	lookupAmount float64
	lookupJSON   bool
)

type lookupNutrientJSON struct {
	Key        string   `json:"key"`
	Unit       string   `json:"unit"`
	Per100g    float64  `json:"per_100g"`
	PerServing *float64 `json:"per_serving,omitempty"`
	Amount     float64  `json:"amount"`
}

type lookupJSONOutput struct {
	Barcode          string               `json:"barcode"`
	Name             string               `json:"name"`
	Brand            string               `json:"brand,omitempty"`
	Source           string               `json:"source"`
	ServingSizeGrams float64              `json:"serving_size_g,omitempty"`
	PortionMode      string               `json:"portion_mode"`
	PortionAmount    float64              `json:"portion_amount"`
	Calories         float64              `json:"calories"`
	Nutrients        []lookupNutrientJSON `json:"nutrients"`
}

var lookupBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Show nutrition for a barcode without logging it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return withLedger(func(sqldb *sql.DB, ledger *service.Ledger) error {
			lookup := newProductLookup(sqldb, ledger, cfg, newLogger(cmd.ErrOrStderr()))
			outcome := <-lookup.ResolveAsync(cmd.Context(), args[0])
			if outcome.Err != nil {
				return outcome.Err
			}
			result := outcome.Result

			portion, err := portionFor(result, lookupMode, lookupAmount)
			if err != nil {
				return err
			}
			amounts := service.Convert(result.Profiles, portion)

			if lookupJSON {
				out := lookupJSONOutput{
					Barcode:          result.Barcode,
					Name:             result.Name,
					Brand:            result.Brand,
					Source:           string(result.Source),
					ServingSizeGrams: result.ServingSizeGrams,
					PortionMode:      string(portion.Mode),
					PortionAmount:    portion.Multiplier,
					Calories:         service.TotalCalories(result.Profiles, portion),
				}
				for _, p := range result.Profiles.Profiles() {
					n := lookupNutrientJSON{
						Key:     string(p.Key()),
						Unit:    p.Key().Unit(),
						Per100g: p.ValuePerGram() * 100,
						Amount:  amounts[p.Key()],
					}
					if v, ok := p.ValuePerServing(); ok {
						n.PerServing = &v
					}
					out.Nutrients = append(out.Nutrients, n)
				}
				b, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal lookup json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Product: %s\n", result.Name)
			if result.Brand != "" {
				fmt.Fprintf(w, "Brand: %s\n", result.Brand)
			}
			fmt.Fprintf(w, "Barcode: %s (%s)\n", result.Barcode, result.Source)
			if result.ServingSizeGrams > 0 {
				fmt.Fprintf(w, "Serving: %.0f g\n", result.ServingSizeGrams)
			}
			fmt.Fprintf(w, "Portion: %s\n", describePortion(portion))

			rows := make([][]string, 0, result.Profiles.Len())
			for _, p := range result.Profiles.Profiles() {
				perServing := "-"
				if v, ok := p.ValuePerServing(); ok {
					perServing = service.FormatAmount(p.Key(), v)
				}
				rows = append(rows, []string{
					p.Key().Label(),
					service.FormatAmount(p.Key(), amounts[p.Key()]),
					service.FormatAmount(p.Key(), p.ValuePerGram()*100),
					perServing,
				})
			}
			fmt.Fprint(w, render.Table{
				Headers: []string{"Nutrient", "Portion", "Per 100 g", "Per serving"},
				Rows:    rows,
			}.String())
			return nil
		})
	},
}

func describePortion(spec service.PortionSpec) string {
	if spec.Mode == service.PortionByServing {
		if spec.Multiplier == 1 {
			return "1 serving"
		}
		return fmt.Sprintf("%g servings", spec.Multiplier)
	}
	return fmt.Sprintf("%g g", spec.Multiplier)
}

var lookupCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached product lookups",
}

var lookupCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached products",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.NewSQLProductCache(sqldb).List(100)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Product cache is empty")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.Barcode,
					item.Name,
					item.FetchedAt.Local().Format("2006-01-02 15:04"),
					item.ExpiresAt.Local().Format("2006-01-02"),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Table{
				Headers: []string{"Barcode", "Name", "Fetched", "Expires"},
				Rows:    rows,
			}.String())
			return nil
		})
	},
}

var lookupCachePurgeCmd = &cobra.Command{
	Use:   "purge [barcode]",
	Short: "Remove one cached product, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		barcode := ""
		if len(args) == 1 {
			barcode = strings.TrimSpace(args[0])
		}
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.NewSQLProductCache(sqldb).Purge(barcode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached product(s)\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupBarcodeCmd, lookupCacheCmd)
	lookupCacheCmd.AddCommand(lookupCacheListCmd, lookupCachePurgeCmd)

	lookupBarcodeCmd.Flags().StringVar(&lookupMode, "mode", "", "Portion mode: weight or serving")
	lookupBarcodeCmd.Flags().Float64Var(&lookupAmount, "amount", 0, "Grams (weight mode) or servings (serving mode)")
	lookupBarcodeCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output JSON")
}
