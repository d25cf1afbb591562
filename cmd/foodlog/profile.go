package foodlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/foodlog/internal/config"
	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/render"
	"github.com/saadjs/foodlog/internal/service"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage body metrics and compute a recommended calorie goal",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		p := cfg.Profile
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Config: %s\n", path)
		fmt.Fprint(w, render.Table{
			Headers: []string{"Setting", "Value"},
			Rows: [][]string{
				{"Sex", orUnset(p.Sex)},
				{"Age", orUnset(intOrEmpty(p.Age))},
				{"Height", orUnset(floatOrEmpty(p.HeightCm, "cm"))},
				{"Weight", orUnset(floatOrEmpty(p.WeightKg, "kg"))},
				{"Activity", p.Activity},
				{"Weight goal", p.WeightGoal},
				{"Macro split", fmt.Sprintf("C %.0f%% / P %.0f%% / F %.0f%%", p.CarbPct, p.ProteinPct, p.FatPct)},
			},
		}.String())
		return nil
	},
}

var (
	profileSex        string
	profileAge        int
	profileHeight     float64
	profileWeight     float64
	profileActivity   string
	profileWeightGoal string
	profileCarbPct    float64
	profileProteinPct float64
	profileFatPct     float64
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile settings; only the given flags change",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyProfileFlags(cmd, &cfg.Profile); err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile to %s\n", path)
		return nil
	},
}

func applyProfileFlags(cmd *cobra.Command, p *config.ProfileConfig) error {
	flags := cmd.Flags()
	if flags.Changed("sex") {
		sex, err := model.ParseSex(profileSex)
		if err != nil {
			return err
		}
		p.Sex = string(sex)
	}
	if flags.Changed("age") {
		if profileAge < 0 {
			return fmt.Errorf("age must be >= 0")
		}
		p.Age = profileAge
	}
	if flags.Changed("height") {
		if profileHeight <= 0 {
			return fmt.Errorf("height must be > 0")
		}
		p.HeightCm = profileHeight
	}
	if flags.Changed("weight") {
		if profileWeight <= 0 {
			return fmt.Errorf("weight must be > 0")
		}
		p.WeightKg = profileWeight
	}
	if flags.Changed("activity") {
		level, err := service.ParseActivityLevel(profileActivity)
		if err != nil {
			return err
		}
		p.Activity = string(level)
	}
	if flags.Changed("weight-goal") {
		goal, err := service.ParseWeightGoal(profileWeightGoal)
		if err != nil {
			return err
		}
		p.WeightGoal = string(goal)
	}
	pcts := []struct {
		flag  string
		value float64
		dst   *float64
	}{
		{"carb-pct", profileCarbPct, &p.CarbPct},
		{"protein-pct", profileProteinPct, &p.ProteinPct},
		{"fat-pct", profileFatPct, &p.FatPct},
	}
	for _, pct := range pcts {
		if !flags.Changed(pct.flag) {
			continue
		}
		if pct.value < 0 || pct.value > 100 {
			return fmt.Errorf("--%s must be between 0 and 100", pct.flag)
		}
		*pct.dst = pct.value
	}
	return nil
}

var profileApply bool

var profileComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Compute BMR, TDEE, and a recommended calorie goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		gp, err := cfg.Profile.GoalProfile()
		if err != nil {
			return err
		}
		targets := service.ComputeGoals(gp)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "BMR: %.0f kcal\n", targets.BMR)
		fmt.Fprintf(w, "TDEE: %.0f kcal\n", targets.TDEE)
		fmt.Fprintf(w, "Recommended: %d kcal/day\n", targets.Calories)
		fmt.Fprintf(w, "Macros: C %d g | P %d g | F %d g\n", targets.CarbsG, targets.ProteinG, targets.FatG)
		if warning := service.MacroSplitWarning(gp); warning != "" {
			fmt.Fprintln(w, render.Warn("Warning: "+warning))
		}
		if !profileApply {
			return nil
		}
		return withDB(func(sqldb *sql.DB) error {
			today := time.Now().Format("2006-01-02")
			if err := service.SetGoal(sqldb, service.SetGoalInput{Calories: targets.Calories, EffectiveDate: today}); err != nil {
				return err
			}
			fmt.Fprintf(w, "Set goal of %d kcal effective %s\n", targets.Calories, today)
			return nil
		})
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func intOrEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func floatOrEmpty(v float64, unit string) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%g %s", v, unit)
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileComputeCmd)

	profileSetCmd.Flags().StringVar(&profileSex, "sex", "", "male or female")
	profileSetCmd.Flags().IntVar(&profileAge, "age", 0, "Age in years")
	profileSetCmd.Flags().Float64Var(&profileHeight, "height", 0, "Height in cm")
	profileSetCmd.Flags().Float64Var(&profileWeight, "weight", 0, "Weight in kg")
	profileSetCmd.Flags().StringVar(&profileActivity, "activity", "", "sedentary, light, moderate, high, or extreme")
	profileSetCmd.Flags().StringVar(&profileWeightGoal, "weight-goal", "", "maintain, lose-0.25, lose-0.5, gain-0.25, or gain-0.5")
	profileSetCmd.Flags().Float64Var(&profileCarbPct, "carb-pct", 0, "Carbohydrate share of calories in percent")
	profileSetCmd.Flags().Float64Var(&profileProteinPct, "protein-pct", 0, "Protein share of calories in percent")
	profileSetCmd.Flags().Float64Var(&profileFatPct, "fat-pct", 0, "Fat share of calories in percent")

	profileComputeCmd.Flags().BoolVar(&profileApply, "apply", false, "Also set the recommended calories as today's goal")
}
