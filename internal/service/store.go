package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/saadjs/foodlog/internal/model"
)

// SQLStore persists the ledger in the food_entries table. Rows keep the
// ledger's append order through the seq column.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) LoadAll() ([]model.FoodEntry, error) {
	rows, err := s.db.Query(`
SELECT id, name, calories, carbs_g, protein_g, fat_g, IFNULL(barcode, ''), meal_type, created_at
FROM food_entries
ORDER BY seq ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.FoodEntry, 0)
	for rows.Next() {
		var e model.FoodEntry
		var meal string
		var createdAtRaw string
		if err := rows.Scan(&e.ID, &e.Name, &e.Calories, &e.CarbsG, &e.ProteinG, &e.FatG, &e.Barcode, &meal, &createdAtRaw); err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, createdAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for entry %s: %w", e.ID, err)
		}
		e.CreatedAt = createdAt
		e.MealType = model.MealType(meal)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food entries: %w", err)
	}
	return entries, nil
}

// SaveAll replaces the stored set in a single transaction, so a failure
// leaves the previous set intact.
func (s *SQLStore) SaveAll(entries []model.FoodEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM food_entries`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear food entries: %w", err)
	}
	stmt, err := tx.Prepare(`
INSERT INTO food_entries(id, name, calories, carbs_g, protein_g, fat_g, barcode, meal_type, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare food entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var barcode any
		if e.Barcode != "" {
			barcode = e.Barcode
		}
		if _, err := stmt.Exec(e.ID, e.Name, e.Calories, e.CarbsG, e.ProteinG, e.FatG, barcode, string(e.MealType), e.CreatedAt.Format(time.RFC3339Nano)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert food entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit food entries: %w", err)
	}
	return nil
}
