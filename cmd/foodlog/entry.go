package foodlog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage food entries",
}

var (
	entryName     string
	entryCalories int
	entryCarbs    float64
	entryProtein  float64
	entryFat      float64
	entryMeal     string
	entryBarcode  string
	entryMode     string
	entryAmount   float64
)

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an entry manually or from a barcode lookup",
	Example: `  foodlog entry add --meal snacks --name Apple --calories 52 --carbs 14 --protein 0.3 --fat 0.2
  foodlog entry add --meal breakfast --barcode 7038010009457 --mode serving --amount 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		meal, err := model.ParseMealType(entryMeal)
		if err != nil {
			return err
		}
		return withLedger(func(sqldb *sql.DB, ledger *service.Ledger) error {
			var draft service.EntryDraft
			if strings.TrimSpace(entryBarcode) != "" {
				draft, err = draftFromBarcode(cmd, sqldb, ledger, meal)
			} else {
				draft, err = manualDraft(cmd, meal, "")
			}
			if err != nil {
				return err
			}
			entry, err := ledger.Insert(draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d kcal) to %s as %s\n", entry.Name, entry.Calories, entry.MealType, entry.ID)
			return nil
		})
	},
}

func manualDraft(cmd *cobra.Command, meal model.MealType, barcode string) (service.EntryDraft, error) {
	if !cmd.Flags().Changed("calories") {
		return service.EntryDraft{}, fmt.Errorf("--calories is required for manual entries")
	}
	return service.EntryDraft{
		Name:     entryName,
		Calories: entryCalories,
		CarbsG:   entryCarbs,
		ProteinG: entryProtein,
		FatG:     entryFat,
		Barcode:  barcode,
		MealType: meal,
	}, nil
}

var manualValueFlags = []string{"calories", "carbs", "protein", "fat"}

// draftFromBarcode resolves the barcode and scales the product to the
// requested portion. When the lookup fails and manual values were given,
// those are logged instead. A malformed barcode is not kept on the entry.
func draftFromBarcode(cmd *cobra.Command, sqldb *sql.DB, ledger *service.Ledger, meal model.MealType) (service.EntryDraft, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return service.EntryDraft{}, err
	}
	log := newLogger(cmd.ErrOrStderr())
	lookup := newProductLookup(sqldb, ledger, cfg, log)

	outcome := <-lookup.ResolveAsync(cmd.Context(), entryBarcode)
	if outcome.Err != nil {
		var lErr *service.LookupError
		if errors.As(outcome.Err, &lErr) && strings.TrimSpace(entryName) != "" && cmd.Flags().Changed("calories") {
			log.Warn("%v; logging manual values instead", outcome.Err)
			barcode := strings.TrimSpace(entryBarcode)
			if lErr.Reason == service.LookupInvalidBarcode {
				barcode = ""
			}
			return manualDraft(cmd, meal, barcode)
		}
		return service.EntryDraft{}, fmt.Errorf("%w (pass --name and --calories to log it manually)", outcome.Err)
	}

	result := outcome.Result
	ignored := make([]string, 0, len(manualValueFlags))
	for _, name := range manualValueFlags {
		if cmd.Flags().Changed(name) {
			ignored = append(ignored, "--"+name)
		}
	}
	if len(ignored) > 0 {
		log.Warn("barcode %s resolved from %s; ignoring %s", result.Barcode, result.Source, strings.Join(ignored, ", "))
	}
	portion, err := portionFor(result, entryMode, entryAmount)
	if err != nil {
		return service.EntryDraft{}, err
	}
	name := result.Name
	if strings.TrimSpace(entryName) != "" {
		name = entryName
	}
	return service.DraftFromProfiles(name, result.Barcode, meal, result.Profiles, portion)
}

// portionFor applies --mode and --amount over the lookup's default portion.
func portionFor(result service.LookupResult, modeFlag string, amount float64) (service.PortionSpec, error) {
	spec := result.DefaultPortion()
	if strings.TrimSpace(modeFlag) != "" {
		mode, err := service.ParsePortionMode(modeFlag)
		if err != nil {
			return service.PortionSpec{}, err
		}
		if mode != spec.Mode {
			spec.Mode = mode
			spec.Multiplier = 1
			if mode == service.PortionByWeight {
				spec.Multiplier = 100
			}
		}
	}
	if amount != 0 {
		spec.Multiplier = amount
	}
	spec.ServingSizeGrams = result.ServingSizeGrams
	return spec, result.CheckPortion(spec)
}

var (
	listDate string
	listMeal string
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries for a day, grouped by meal",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateOrToday(listDate)
		if err != nil {
			return err
		}
		meals := model.MealTypes
		if strings.TrimSpace(listMeal) != "" {
			meal, err := model.ParseMealType(listMeal)
			if err != nil {
				return err
			}
			meals = []model.MealType{meal}
		}
		return withLedger(func(_ *sql.DB, ledger *service.Ledger) error {
			rows := make([][]string, 0)
			for _, meal := range meals {
				for _, e := range ledger.EntriesForMeal(date, meal) {
					rows = append(rows, entryRow(e))
				}
			}
			if len(rows) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No entries on %s\n", date.Format("2006-01-02"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Table{
				Title:   date.Format("Monday 2006-01-02"),
				Headers: entryHeaders,
				Rows:    rows,
			}.String())
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(_ *sql.DB, ledger *service.Ledger) error {
			if err := ledger.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %s\n", strings.TrimSpace(args[0]))
			return nil
		})
	},
}

var entrySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search logged entries by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withLedger(func(_ *sql.DB, ledger *service.Ledger) error {
			found := ledger.SearchByName(query)
			if len(found) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No entries match %q\n", query)
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, e := range found {
				rows = append(rows, entryRow(e))
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Table{Headers: entryHeaders, Rows: rows}.String())
			return nil
		})
	},
}

var entryHeaders = []string{"Name", "Meal", "Logged", "kcal", "Carbs", "Protein", "Fat", "ID"}

func entryRow(e model.FoodEntry) []string {
	return []string{
		e.Name,
		string(e.MealType),
		e.CreatedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", e.Calories),
		formatGrams(e.CarbsG),
		formatGrams(e.ProteinG),
		formatGrams(e.FatG),
		e.ID,
	}
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryDeleteCmd, entrySearchCmd)

	entryAddCmd.Flags().StringVar(&entryName, "name", "", "Food name (overrides the looked-up name)")
	entryAddCmd.Flags().IntVar(&entryCalories, "calories", 0, "Calories (kcal)")
	entryAddCmd.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbohydrates in grams")
	entryAddCmd.Flags().Float64Var(&entryProtein, "protein", 0, "Protein in grams")
	entryAddCmd.Flags().Float64Var(&entryFat, "fat", 0, "Fat in grams")
	entryAddCmd.Flags().StringVar(&entryMeal, "meal", "", "Meal: breakfast, lunch, dinner, or snacks")
	entryAddCmd.Flags().StringVar(&entryBarcode, "barcode", "", "Look up nutrition by barcode")
	entryAddCmd.Flags().StringVar(&entryMode, "mode", "", "Portion mode for barcode entries: weight or serving")
	entryAddCmd.Flags().Float64Var(&entryAmount, "amount", 0, "Grams (weight mode) or servings (serving mode)")
	_ = entryAddCmd.MarkFlagRequired("meal")

	entryListCmd.Flags().StringVar(&listDate, "date", "", "Date YYYY-MM-DD (default today)")
	entryListCmd.Flags().StringVar(&listMeal, "meal", "", "Only show one meal")
}
