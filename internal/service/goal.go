package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/foodlog/internal/model"
)

// DefaultDailyCalorieGoal applies until the user sets a goal.
const DefaultDailyCalorieGoal = 2200

type SetGoalInput struct {
	Calories      int
	EffectiveDate string
}

func SetGoal(db *sql.DB, in SetGoalInput) error {
	if in.Calories <= 0 {
		return fmt.Errorf("calories must be > 0")
	}
	in.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	if in.EffectiveDate == "" {
		in.EffectiveDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", in.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date %q (expected YYYY-MM-DD)", in.EffectiveDate)
	}

	_, err := db.Exec(`
INSERT INTO goals(calories, effective_date)
VALUES(?, ?)
ON CONFLICT(effective_date) DO UPDATE SET calories=excluded.calories
`, in.Calories, in.EffectiveDate)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

// CurrentGoal returns the goal in effect on date, or nil if none was set.
func CurrentGoal(db *sql.DB, date string) (*model.Goal, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	var g model.Goal
	err := db.QueryRow(`
SELECT id, calories, effective_date, created_at
FROM goals
WHERE effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, date).Scan(&g.ID, &g.Calories, &g.EffectiveDate, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current goal for %s: %w", date, err)
	}
	return &g, nil
}

// GoalCaloriesOn falls back to DefaultDailyCalorieGoal.
func GoalCaloriesOn(db *sql.DB, date string) (int, error) {
	g, err := CurrentGoal(db, date)
	if err != nil {
		return 0, err
	}
	if g == nil {
		return DefaultDailyCalorieGoal, nil
	}
	return g.Calories, nil
}

func GoalHistory(db *sql.DB) ([]model.Goal, error) {
	rows, err := db.Query(`
SELECT id, calories, effective_date, created_at
FROM goals
ORDER BY effective_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list goal history: %w", err)
	}
	defer rows.Close()

	goals := make([]model.Goal, 0)
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.Calories, &g.EffectiveDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal history: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal history: %w", err)
	}
	return goals, nil
}
