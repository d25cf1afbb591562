package service_test

import (
	"testing"

	"github.com/saadjs/foodlog/internal/service"
)

func TestGoalVersioningByEffectiveDate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if err := service.SetGoal(db, service.SetGoalInput{Calories: 2000, EffectiveDate: "2026-01-01"}); err != nil {
		t.Fatalf("set first goal: %v", err)
	}
	if err := service.SetGoal(db, service.SetGoalInput{Calories: 1800, EffectiveDate: "2026-02-01"}); err != nil {
		t.Fatalf("set second goal: %v", err)
	}

	january, err := service.CurrentGoal(db, "2026-01-15")
	if err != nil {
		t.Fatalf("current january goal: %v", err)
	}
	if january == nil || january.Calories != 2000 {
		t.Fatalf("expected january goal calories 2000, got %+v", january)
	}

	february, err := service.CurrentGoal(db, "2026-02-10")
	if err != nil {
		t.Fatalf("current february goal: %v", err)
	}
	if february == nil || february.Calories != 1800 {
		t.Fatalf("expected february goal calories 1800, got %+v", february)
	}

	history, err := service.GoalHistory(db)
	if err != nil {
		t.Fatalf("goal history: %v", err)
	}
	if len(history) != 2 || history[0].EffectiveDate != "2026-02-01" {
		t.Fatalf("unexpected goal history: %+v", history)
	}
}

func TestGoalCaloriesOnFallsBackToDefault(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	got, err := service.GoalCaloriesOn(db, "2026-01-01")
	if err != nil {
		t.Fatalf("goal calories: %v", err)
	}
	if got != service.DefaultDailyCalorieGoal {
		t.Fatalf("expected default %d, got %d", service.DefaultDailyCalorieGoal, got)
	}

	if err := service.SetGoal(db, service.SetGoalInput{Calories: 2500, EffectiveDate: "2026-01-01"}); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if err := service.SetGoal(db, service.SetGoalInput{Calories: 2400, EffectiveDate: "2026-01-01"}); err != nil {
		t.Fatalf("replace goal: %v", err)
	}
	got, err = service.GoalCaloriesOn(db, "2026-01-02")
	if err != nil {
		t.Fatalf("goal calories: %v", err)
	}
	if got != 2400 {
		t.Fatalf("expected replaced goal 2400, got %d", got)
	}
}

func TestSetGoalValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	defer db.Close()

	if err := service.SetGoal(db, service.SetGoalInput{Calories: 0}); err == nil {
		t.Fatalf("expected error for zero calories")
	}
	if err := service.SetGoal(db, service.SetGoalInput{Calories: 2000, EffectiveDate: "01/02/2026"}); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
