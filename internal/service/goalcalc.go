package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/saadjs/foodlog/internal/model"
)

const MinRecommendedCalories = 1200

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityHigh      ActivityLevel = "high"
	ActivityExtreme   ActivityLevel = "extreme"
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary: 1.2,
	ActivityLight:     1.375,
	ActivityModerate:  1.55,
	ActivityHigh:      1.725,
	ActivityExtreme:   1.9,
}

func ParseActivityLevel(value string) (ActivityLevel, error) {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := activityMultipliers[level]; !ok {
		return "", fmt.Errorf("unknown activity level %q (expected sedentary, light, moderate, high, or extreme)", value)
	}
	return level, nil
}

type WeightGoal string

const (
	WeightGoalMaintain WeightGoal = "maintain"
	WeightGoalLoseSlow WeightGoal = "lose-0.25"
	WeightGoalLoseFast WeightGoal = "lose-0.5"
	WeightGoalGainSlow WeightGoal = "gain-0.25"
	WeightGoalGainFast WeightGoal = "gain-0.5"
)

// kcal per day
var weightGoalAdjustments = map[WeightGoal]float64{
	WeightGoalMaintain: 0,
	WeightGoalLoseSlow: -275,
	WeightGoalLoseFast: -550,
	WeightGoalGainSlow: 275,
	WeightGoalGainFast: 550,
}

func ParseWeightGoal(value string) (WeightGoal, error) {
	goal := WeightGoal(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := weightGoalAdjustments[goal]; !ok {
		return "", fmt.Errorf("unknown weight goal %q (expected maintain, lose-0.25, lose-0.5, gain-0.25, or gain-0.5)", value)
	}
	return goal, nil
}

type GoalProfile struct {
	Sex        model.Sex
	Age        int
	HeightCm   float64
	WeightKg   float64
	Activity   ActivityLevel
	WeightGoal WeightGoal
	CarbPct    float64
	ProteinPct float64
	FatPct     float64
}

func (p GoalProfile) Validate() error {
	if p.Sex != model.SexMale && p.Sex != model.SexFemale {
		return fmt.Errorf("sex must be male or female")
	}
	if p.Age < 0 {
		return fmt.Errorf("age must be >= 0")
	}
	if !(p.HeightCm > 0) {
		return fmt.Errorf("height must be > 0")
	}
	if !(p.WeightKg > 0) {
		return fmt.Errorf("weight must be > 0")
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return fmt.Errorf("unknown activity level %q", p.Activity)
	}
	if _, ok := weightGoalAdjustments[p.WeightGoal]; !ok {
		return fmt.Errorf("unknown weight goal %q", p.WeightGoal)
	}
	pcts := []struct {
		name  string
		value float64
	}{{"carb", p.CarbPct}, {"protein", p.ProteinPct}, {"fat", p.FatPct}}
	for _, pct := range pcts {
		if pct.value < 0 || pct.value > 100 {
			return fmt.Errorf("%s percentage must be between 0 and 100", pct.name)
		}
	}
	return nil
}

type GoalTargets struct {
	BMR      float64
	TDEE     float64
	Calories int
	CarbsG   int
	ProteinG int
	FatG     int
}

// ComputeGoals derives daily calorie and macro targets using Mifflin-St Jeor
// and the activity multiplier. It is pure; unknown tiers contribute a
// multiplier of 0 and an adjustment of 0, so call Validate first.
func ComputeGoals(p GoalProfile) GoalTargets {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	bmr := base - 161
	if p.Sex == model.SexMale {
		bmr = base + 5
	}
	tdee := bmr * activityMultipliers[p.Activity]
	calories := int(math.Round(tdee + weightGoalAdjustments[p.WeightGoal]))
	if calories < MinRecommendedCalories {
		calories = MinRecommendedCalories
	}
	carbs, protein, fat := MacroGrams(calories, p.CarbPct, p.ProteinPct, p.FatPct)
	return GoalTargets{
		BMR:      bmr,
		TDEE:     tdee,
		Calories: calories,
		CarbsG:   int(math.Round(carbs)),
		ProteinG: int(math.Round(protein)),
		FatG:     int(math.Round(fat)),
	}
}

// MacroGrams splits a calorie budget by percentage using 4 kcal/g for carbs
// and protein and 9 kcal/g for fat.
func MacroGrams(calories int, carbPct, proteinPct, fatPct float64) (carbsG, proteinG, fatG float64) {
	kcal := float64(calories)
	return kcal * carbPct / 100 / 4, kcal * proteinPct / 100 / 4, kcal * fatPct / 100 / 9
}

// MacroSplitWarning is non-empty when the percentages do not add up to 100.
// The split is still used as given.
func MacroSplitWarning(p GoalProfile) string {
	sum := p.CarbPct + p.ProteinPct + p.FatPct
	if math.Abs(sum-100) < 0.01 {
		return ""
	}
	return fmt.Sprintf("macro percentages add up to %.0f%%, not 100%%", sum)
}
