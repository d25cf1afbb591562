package service

import (
	"math"
	"time"

	"github.com/saadjs/foodlog/internal/model"
)

// MacroSplit is the share of calories, in percent, assigned to each macro.
type MacroSplit struct {
	CarbPct    float64
	ProteinPct float64
	FatPct     float64
}

var DefaultMacroSplit = MacroSplit{CarbPct: 40, ProteinPct: 30, FatPct: 30}

type MealStatus struct {
	MealType model.MealType `json:"meal_type"`
	Entries  int            `json:"entries"`
	Calories int            `json:"calories"`
}

type TodayStatus struct {
	Date              string       `json:"date"`
	IntakeCalories    int          `json:"intake_calories"`
	CarbsG            float64      `json:"carbs_g"`
	ProteinG          float64      `json:"protein_g"`
	FatG              float64      `json:"fat_g"`
	GoalCalories      int          `json:"goal_calories"`
	GoalCarbsG        float64      `json:"goal_carbs_g"`
	GoalProteinG      float64      `json:"goal_protein_g"`
	GoalFatG          float64      `json:"goal_fat_g"`
	RemainingCalories int          `json:"remaining_calories"`
	Progress          float64      `json:"progress"`
	Message           string       `json:"message"`
	Meals             []MealStatus `json:"meals"`
}

// TodaySummary aggregates one day of the ledger against a calorie goal.
// Progress is clamped to [0, 1]; a goal below 1 is treated as 1.
func TodaySummary(l *Ledger, date time.Time, goalCalories int, split MacroSplit) TodayStatus {
	entries := l.EntriesOn(date)
	local := date.In(l.Location())
	status := TodayStatus{
		Date:           local.Format("2006-01-02"),
		IntakeCalories: l.TotalCalories(date),
		CarbsG:         l.TotalMacro(date, MacroCarbs),
		ProteinG:       l.TotalMacro(date, MacroProtein),
		FatG:           l.TotalMacro(date, MacroFat),
		GoalCalories:   goalCalories,
	}
	goal := math.Max(float64(goalCalories), 1)
	status.GoalCarbsG = goal * split.CarbPct / 100 / 4
	status.GoalProteinG = goal * split.ProteinPct / 100 / 4
	status.GoalFatG = goal * split.FatPct / 100 / 9
	status.RemainingCalories = goalCalories - status.IntakeCalories

	ratio := float64(status.IntakeCalories) / goal
	status.Progress = math.Min(math.Max(ratio, 0), 1)
	status.Message = ProgressMessage(ratio)

	for _, meal := range model.MealTypes {
		ms := MealStatus{MealType: meal}
		for _, e := range entries {
			if e.MealType == meal {
				ms.Entries++
				ms.Calories += e.Calories
			}
		}
		status.Meals = append(status.Meals, ms)
	}
	return status
}

// ProgressMessage picks an encouragement line for an unclamped intake/goal
// ratio.
func ProgressMessage(ratio float64) string {
	switch {
	case ratio < 0.5:
		return "Good start! Keep logging."
	case ratio < 0.9:
		return "Nice pace, almost there."
	case ratio < 1.1:
		return "Nailed it! Today's goal reached."
	default:
		return "Over the goal, fine if it was planned."
	}
}
