package foodlog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var (
	statsDays int
	statsEnd  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show daily calorie totals for recent days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays <= 0 || statsDays > 366 {
			return fmt.Errorf("--days must be between 1 and 366")
		}
		end, err := parseDateOrToday(statsEnd)
		if err != nil {
			return err
		}
		return withLedger(func(sqldb *sql.DB, ledger *service.Ledger) error {
			goal, err := service.GoalCaloriesOn(sqldb, end.Format("2006-01-02"))
			if err != nil {
				return err
			}
			series := ledger.DailyCalories(end, statsDays)

			peak := float64(goal)
			total := 0
			values := make([]float64, 0, len(series))
			for _, d := range series {
				total += d.Calories
				values = append(values, float64(d.Calories))
				if float64(d.Calories) > peak {
					peak = float64(d.Calories)
				}
			}

			rows := make([][]string, 0, len(series))
			for _, d := range series {
				rows = append(rows, []string{
					d.Date.Format("Mon 01-02"),
					fmt.Sprintf("%d", d.Calories),
					render.Bar(float64(d.Calories), peak, 30),
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, render.Table{
				Title:   fmt.Sprintf("Last %d days", statsDays),
				Headers: []string{"Day", "kcal", ""},
				Rows:    rows,
			}.String())
			fmt.Fprintf(w, "Trend: %s\n", render.Sparkline(values))
			fmt.Fprintf(w, "Average: %d kcal/day (goal %d)\n", total/len(series), goal)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Number of days to include")
	statsCmd.Flags().StringVar(&statsEnd, "date", "", "Last day YYYY-MM-DD (default today)")
}
