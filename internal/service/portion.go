package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/saadjs/foodlog/internal/model"
)

type PortionMode string

const (
	PortionByWeight  PortionMode = "weight"
	PortionByServing PortionMode = "serving"
)

func ParsePortionMode(value string) (PortionMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "weight", "gram", "grams", "g":
		return PortionByWeight, nil
	case "serving", "servings", "portion":
		return PortionByServing, nil
	default:
		return "", fmt.Errorf("unknown portion mode %q (expected weight or serving)", value)
	}
}

// PortionSpec is how much the user ate. Multiplier is grams for
// PortionByWeight and a serving count for PortionByServing. A
// ServingSizeGrams of 0 means the serving size is unknown.
type PortionSpec struct {
	Mode             PortionMode
	Multiplier       float64
	ServingSizeGrams float64
}

func (s PortionSpec) Validate() error {
	if s.Mode != PortionByWeight && s.Mode != PortionByServing {
		return validationf("portion mode", "must be weight or serving, got %q", s.Mode)
	}
	if !(s.Multiplier > 0) || math.IsInf(s.Multiplier, 0) {
		return validationf("portion amount", "must be > 0")
	}
	if s.ServingSizeGrams < 0 {
		return validationf("serving size", "must be >= 0")
	}
	return nil
}

// Amount converts a nutrient density into the consumed amount.
//
// By serving, a declared positive per-serving value wins; otherwise a known
// serving size is used; otherwise the multiplier is treated as grams.
func Amount(profile NutrientProfile, spec PortionSpec) float64 {
	if spec.Mode == PortionByServing {
		if perServing, ok := profile.ValuePerServing(); ok && perServing > 0 {
			return perServing * spec.Multiplier
		}
		if spec.ServingSizeGrams > 0 {
			return profile.ValuePerGram() * spec.ServingSizeGrams * spec.Multiplier
		}
	}
	return profile.ValuePerGram() * spec.Multiplier
}

// TotalCalories returns the consumed energy, or 0 when the set has no energy
// profile.
func TotalCalories(set ProfileSet, spec PortionSpec) float64 {
	energy, ok := set.Get(NutrientEnergy)
	if !ok {
		return 0
	}
	return Amount(energy, spec)
}

func Convert(set ProfileSet, spec PortionSpec) map[NutrientKey]float64 {
	out := make(map[NutrientKey]float64, set.Len())
	for _, p := range set.Profiles() {
		out[p.Key()] = Amount(p, spec)
	}
	return out
}

// FormatAmount renders energy as whole kcal and everything else with two
// decimals.
func FormatAmount(key NutrientKey, value float64) string {
	if key == NutrientEnergy {
		return fmt.Sprintf("%d %s", int(math.Round(value)), key.Unit())
	}
	return fmt.Sprintf("%.2f %s", value, key.Unit())
}

// DraftFromProfiles prepares a ledger draft for the given portion of a
// looked-up product.
func DraftFromProfiles(name, barcode string, meal model.MealType, set ProfileSet, spec PortionSpec) (EntryDraft, error) {
	if err := spec.Validate(); err != nil {
		return EntryDraft{}, err
	}
	amounts := Convert(set, spec)
	return EntryDraft{
		Name:     name,
		Calories: int(math.Round(TotalCalories(set, spec))),
		CarbsG:   math.Max(0, amounts[NutrientCarbs]),
		ProteinG: math.Max(0, amounts[NutrientProtein]),
		FatG:     math.Max(0, amounts[NutrientFat]),
		Barcode:  barcode,
		MealType: meal,
	}, nil
}
