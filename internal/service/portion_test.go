package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

func mustProfile(t *testing.T, key service.NutrientKey, per100g float64, perServing *float64) service.NutrientProfile {
	t.Helper()
	p, err := service.NewNutrientProfile(key, per100g, perServing)
	if err != nil {
		t.Fatalf("new profile %s: %v", key, err)
	}
	return p
}

func TestAmountByWeight(t *testing.T) {
	t.Parallel()
	energy := mustProfile(t, service.NutrientEnergy, 52, nil)
	got := service.Amount(energy, service.PortionSpec{Mode: service.PortionByWeight, Multiplier: 150})
	if !approxEqual(got, 78) {
		t.Fatalf("expected 78 kcal for 150 g, got %f", got)
	}
}

func TestAmountByServingFallbacks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		profile service.NutrientProfile
		spec    service.PortionSpec
		want    float64
	}{
		{
			name:    "declared serving value wins",
			profile: mustProfile(t, service.NutrientProtein, 10, floatPtr(6)),
			spec:    service.PortionSpec{Mode: service.PortionByServing, Multiplier: 2, ServingSizeGrams: 30},
			want:    12,
		},
		{
			name:    "zero serving value falls back to serving size",
			profile: mustProfile(t, service.NutrientProtein, 10, floatPtr(0)),
			spec:    service.PortionSpec{Mode: service.PortionByServing, Multiplier: 2, ServingSizeGrams: 30},
			want:    6,
		},
		{
			name:    "undefined serving value uses serving size",
			profile: mustProfile(t, service.NutrientCarbs, 50, nil),
			spec:    service.PortionSpec{Mode: service.PortionByServing, Multiplier: 1, ServingSizeGrams: 40},
			want:    20,
		},
		{
			name:    "no serving data treats multiplier as grams",
			profile: mustProfile(t, service.NutrientFat, 20, nil),
			spec:    service.PortionSpec{Mode: service.PortionByServing, Multiplier: 3},
			want:    0.6,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := service.Amount(tc.profile, tc.spec); !approxEqual(got, tc.want) {
				t.Fatalf("expected %f, got %f", tc.want, got)
			}
		})
	}
}

func TestTotalCaloriesWithoutEnergy(t *testing.T) {
	t.Parallel()
	set, err := service.NewProfileSet(mustProfile(t, service.NutrientCarbs, 10, nil))
	if err != nil {
		t.Fatalf("new set: %v", err)
	}
	if got := service.TotalCalories(set, service.PortionSpec{Mode: service.PortionByWeight, Multiplier: 100}); got != 0 {
		t.Fatalf("expected 0 kcal without energy profile, got %f", got)
	}
}

func TestPortionSpecValidate(t *testing.T) {
	t.Parallel()
	bad := []service.PortionSpec{
		{Mode: "scoop", Multiplier: 1},
		{Mode: service.PortionByWeight, Multiplier: 0},
		{Mode: service.PortionByServing, Multiplier: 1, ServingSizeGrams: -5},
	}
	for _, spec := range bad {
		var vErr *service.ValidationError
		if err := spec.Validate(); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for %+v, got %v", spec, err)
		}
	}
	if mode, err := service.ParsePortionMode("Servings"); err != nil || mode != service.PortionByServing {
		t.Fatalf("parse servings: %v %v", mode, err)
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()
	if got := service.FormatAmount(service.NutrientEnergy, 77.6); got != "78 kcal" {
		t.Fatalf("unexpected energy format %q", got)
	}
	if got := service.FormatAmount(service.NutrientProtein, 3.14159); got != "3.14 g" {
		t.Fatalf("unexpected protein format %q", got)
	}
	if got := service.FormatAmount(service.NutrientCalcium, 120); got != "120.00 mg" {
		t.Fatalf("unexpected calcium format %q", got)
	}
}

func TestDraftFromProfiles(t *testing.T) {
	t.Parallel()
	set, err := service.BuildProfileSet(map[service.NutrientKey]service.NutrientValues{
		service.NutrientEnergy:  {Per100g: 375},
		service.NutrientCarbs:   {Per100g: 60},
		service.NutrientProtein: {Per100g: 13},
		service.NutrientFat:     {Per100g: 7},
	})
	if err != nil {
		t.Fatalf("build set: %v", err)
	}
	draft, err := service.DraftFromProfiles("Oats", "7310130001337", model.MealBreakfast, set,
		service.PortionSpec{Mode: service.PortionByWeight, Multiplier: 50})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Calories != 188 || !approxEqual(draft.CarbsG, 30) || !approxEqual(draft.ProteinG, 6.5) || !approxEqual(draft.FatG, 3.5) {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	if _, err := service.DraftFromProfiles("Oats", "", model.MealBreakfast, set, service.PortionSpec{Mode: service.PortionByWeight}); err == nil {
		t.Fatalf("expected error for zero portion")
	}
}
