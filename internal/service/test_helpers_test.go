package service_test

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/foodlog/internal/db"
	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodlog.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return sqldb
}

// memStore keeps entries in memory and can be told to fail the next save.
type memStore struct {
	saved    []model.FoodEntry
	saves    int
	failNext bool
}

var errDiskFull = errors.New("disk full")

func (m *memStore) LoadAll() ([]model.FoodEntry, error) {
	out := make([]model.FoodEntry, len(m.saved))
	copy(out, m.saved)
	return out, nil
}

func (m *memStore) SaveAll(entries []model.FoodEntry) error {
	if m.failNext {
		m.failNext = false
		return errDiskFull
	}
	m.saves++
	m.saved = make([]model.FoodEntry, len(entries))
	copy(m.saved, entries)
	return nil
}

// fixedClock returns a clock that starts at start and advances a minute per
// call.
func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func newTestLedger(t *testing.T, store service.Store, start time.Time) *service.Ledger {
	t.Helper()
	l, err := service.OpenLedger(store, service.WithLocation(time.UTC), service.WithClock(fixedClock(start)))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l
}

func floatPtr(v float64) *float64 { return &v }

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
