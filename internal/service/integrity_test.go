package service_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/foodlog/internal/db"
	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "foodlog.db")
	sqldb, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	l := newTestLedger(t, service.NewSQLStore(sqldb), day)
	if _, err := l.Insert(service.EntryDraft{Name: "Apple", Calories: 52, MealType: model.MealSnacks}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	backupPath := filepath.Join(dir, "backups", "foodlog-1.db")
	info, err := service.CreateBackup(sqldb, backupPath)
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if info.Checksum == "" || info.SizeBytes == 0 {
		t.Fatalf("unexpected backup info: %+v", info)
	}
	if _, err := service.CreateBackup(sqldb, backupPath); err == nil {
		t.Fatalf("expected error overwriting an existing backup")
	}
	backups, err := service.ListBackups(filepath.Dir(backupPath))
	if err != nil || len(backups) != 1 || backups[0].Checksum != info.Checksum {
		t.Fatalf("unexpected backup list: %+v err=%v", backups, err)
	}
	sqldb.Close()

	restored := filepath.Join(dir, "restored.db")
	if err := service.RestoreBackup(backupPath, restored, false); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := service.RestoreBackup(backupPath, restored, false); err == nil {
		t.Fatalf("expected error restoring over existing db without force")
	}
	rdb, err := db.Open(restored)
	if err != nil {
		t.Fatalf("open restored: %v", err)
	}
	defer rdb.Close()
	reopened, err := service.OpenLedger(service.NewSQLStore(rdb))
	if err != nil {
		t.Fatalf("open restored ledger: %v", err)
	}
	if len(reopened.Entries()) != 1 {
		t.Fatalf("expected restored entry, got %d", len(reopened.Entries()))
	}

	if err := os.WriteFile(backupPath+".sha256", []byte("bogus\n"), 0o644); err != nil {
		t.Fatalf("corrupt checksum: %v", err)
	}
	if err := service.RestoreBackup(backupPath, filepath.Join(dir, "other.db"), false); err == nil {
		t.Fatalf("expected checksum mismatch")
	}
}

func TestRunDoctor(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	report, err := service.RunDoctor(sqldb, false)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy fresh db, got %+v", report)
	}

	if _, err := sqldb.Exec(`INSERT INTO food_entries(id, name, calories, carbs_g, protein_g, fat_g, meal_type, created_at) VALUES('x', 'Tea', 2, 0, 0, 0, 'snacks', 'yesterday')`); err != nil {
		t.Fatalf("insert bad row: %v", err)
	}
	cache := service.NewSQLProductCache(sqldb)
	if err := cache.Put(skyrProduct(), nil, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("put expired: %v", err)
	}

	report, err = service.RunDoctor(sqldb, true)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.Healthy() || report.BadTimestamps != 1 || report.ExpiredCacheRows != 1 || report.PurgedCacheRows != 1 {
		t.Fatalf("unexpected doctor report: %+v", report)
	}
}
