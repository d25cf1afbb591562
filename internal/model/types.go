package model

import (
	"fmt"
	"strings"
	"time"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

// MealTypes lists meal categories in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnacks}

func ParseMealType(value string) (MealType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "breakfast", "frokost":
		return MealBreakfast, nil
	case "lunch", "lunsj":
		return MealLunch, nil
	case "dinner", "middag":
		return MealDinner, nil
	case "snacks", "snack":
		return MealSnacks, nil
	default:
		return "", fmt.Errorf("unknown meal type %q (expected breakfast, lunch, dinner, or snacks)", value)
	}
}

func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return true
	}
	return false
}

// FoodEntry is one logged consumption record. Entries are never updated in
// place; a correction is a delete followed by a new insert.
type FoodEntry struct {
	ID        string
	Name      string
	Calories  int
	CarbsG    float64
	ProteinG  float64
	FatG      float64
	Barcode   string
	MealType  MealType
	CreatedAt time.Time
}

type Goal struct {
	ID            int64
	Calories      int
	EffectiveDate string
	CreatedAt     time.Time
}

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

func ParseSex(value string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return SexMale, nil
	case "female", "f":
		return SexFemale, nil
	default:
		return "", fmt.Errorf("unknown sex %q (expected male or female)", value)
	}
}
