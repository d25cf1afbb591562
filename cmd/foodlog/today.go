package foodlog

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake, macros, and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseDateOrToday(todayDate)
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return withLedger(func(sqldb *sql.DB, ledger *service.Ledger) error {
			goal, err := service.GoalCaloriesOn(sqldb, target.Format("2006-01-02"))
			if err != nil {
				return err
			}
			status := service.TodaySummary(ledger, target, goal, cfg.Profile.MacroSplit())
			if todayJSON {
				b, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal today json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, render.Title("Today "+status.Date))
			over := status.IntakeCalories > status.GoalCalories
			fmt.Fprintf(w, "Calories: %d / %d kcal %s\n", status.IntakeCalories, status.GoalCalories, render.ProgressBar(status.Progress, 24, over))
			if status.RemainingCalories >= 0 {
				fmt.Fprintf(w, "Remaining: %d kcal\n", status.RemainingCalories)
			} else {
				fmt.Fprintln(w, render.Warn(fmt.Sprintf("Over by: %d kcal", -status.RemainingCalories)))
			}
			fmt.Fprintln(w, render.Muted(status.Message))

			fmt.Fprint(w, render.Table{
				Headers: []string{"Macro", "Eaten", "Goal"},
				Rows: [][]string{
					{"Carbs", formatGrams(status.CarbsG), formatGrams(status.GoalCarbsG)},
					{"Protein", formatGrams(status.ProteinG), formatGrams(status.GoalProteinG)},
					{"Fat", formatGrams(status.FatG), formatGrams(status.GoalFatG)},
				},
			}.String())

			rows := make([][]string, 0, len(status.Meals))
			for _, m := range status.Meals {
				rows = append(rows, []string{string(m.MealType), fmt.Sprintf("%d", m.Entries), fmt.Sprintf("%d", m.Calories)})
			}
			fmt.Fprint(w, render.Table{Headers: []string{"Meal", "Entries", "kcal"}, Rows: rows}.String())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
}
