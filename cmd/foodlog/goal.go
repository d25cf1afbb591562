package foodlog

import (
	"database/sql"
	"fmt"

	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage the daily calorie goal",
}

var (
	goalCalories int
	goalDate     string
)

var goalSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the daily calorie goal from an effective date",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.SetGoalInput{Calories: goalCalories, EffectiveDate: goalDate}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetGoal(sqldb, in); err != nil {
				return err
			}
			if in.EffectiveDate == "" {
				in.EffectiveDate = "today"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set goal of %d kcal effective %s\n", in.Calories, in.EffectiveDate)
			return nil
		})
	},
}

var currentGoalDate string

var goalCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the goal in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goal, err := service.CurrentGoal(sqldb, currentGoalDate)
			if err != nil {
				return err
			}
			if goal == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No goal configured (using default %d kcal)\n", service.DefaultDailyCalorieGoal)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Effective: %s\nCalories: %d\n", goal.EffectiveDate, goal.Calories)
			return nil
		})
	},
}

var goalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show goal history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			goals, err := service.GoalHistory(sqldb)
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No goals set")
				return nil
			}
			rows := make([][]string, 0, len(goals))
			for _, g := range goals {
				rows = append(rows, []string{g.EffectiveDate, fmt.Sprintf("%d", g.Calories)})
			}
			fmt.Fprint(cmd.OutOrStdout(), render.Table{Headers: []string{"Effective", "kcal"}, Rows: rows}.String())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	goalCmd.AddCommand(goalSetCmd, goalCurrentCmd, goalHistoryCmd)

	goalSetCmd.Flags().IntVar(&goalCalories, "calories", 0, "Daily calorie goal")
	goalSetCmd.Flags().StringVar(&goalDate, "date", "", "Effective date YYYY-MM-DD (default today)")
	_ = goalSetCmd.MarkFlagRequired("calories")

	goalCurrentCmd.Flags().StringVar(&currentGoalDate, "date", "", "Date YYYY-MM-DD (default today)")
}
