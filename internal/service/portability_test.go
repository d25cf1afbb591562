package service_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	srcDB := newTestDB(t)
	defer srcDB.Close()
	src := newTestLedger(t, service.NewSQLStore(srcDB), day)
	for _, d := range []service.EntryDraft{
		{Name: "Apple", Calories: 52, CarbsG: 14, MealType: model.MealSnacks},
		{Name: "Skyr", Calories: 101, ProteinG: 17.6, Barcode: "7038010009457", MealType: model.MealBreakfast},
	} {
		if _, err := src.Insert(d); err != nil {
			t.Fatalf("insert %s: %v", d.Name, err)
		}
	}
	if err := service.SetGoal(srcDB, service.SetGoalInput{Calories: 2100, EffectiveDate: "2026-03-01"}); err != nil {
		t.Fatalf("set goal: %v", err)
	}

	data, err := service.ExportDataSnapshot(src, srcDB)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(data.Entries) != 2 || len(data.Goals) != 1 {
		t.Fatalf("unexpected export: %+v", data)
	}

	dstDB := newTestDB(t)
	defer dstDB.Close()
	dst := newTestLedger(t, service.NewSQLStore(dstDB), day)

	dry, err := service.ImportDataSnapshot(dst, dstDB, data, service.ImportOptions{DryRun: true})
	if err != nil || dry.Inserted != 2 || len(dst.Entries()) != 0 {
		t.Fatalf("dry run should only report: %+v err=%v entries=%d", dry, err, len(dst.Entries()))
	}

	report, err := service.ImportDataSnapshot(dst, dstDB, data, service.ImportOptions{Mode: service.ImportModeSkip})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Inserted != 2 || report.Goals != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := dst.TotalCalories(day); got != 153 {
		t.Fatalf("expected 153 kcal after import, got %d", got)
	}
	if latest, ok := dst.LatestByBarcode("7038010009457"); !ok || latest.Name != "Skyr" {
		t.Fatalf("imported barcode entry missing: %+v", latest)
	}
	goal, err := service.GoalCaloriesOn(dstDB, "2026-03-14")
	if err != nil || goal != 2100 {
		t.Fatalf("expected imported goal 2100, got %d err=%v", goal, err)
	}

	again, err := service.ImportDataSnapshot(dst, dstDB, data, service.ImportOptions{Mode: service.ImportModeSkip})
	if err != nil || again.Skipped != 2 || again.Inserted != 0 {
		t.Fatalf("expected re-import to skip everything: %+v err=%v", again, err)
	}
	if _, err := service.ImportDataSnapshot(dst, dstDB, data, service.ImportOptions{Mode: service.ImportModeFail}); err == nil {
		t.Fatalf("expected conflict error in fail mode")
	}
	if len(dst.Entries()) != 2 {
		t.Fatalf("failed import must not change the ledger, got %d entries", len(dst.Entries()))
	}
}

func TestImportRejectsBadEntries(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, &memStore{}, day)
	data := &service.ExportData{
		Version: 1,
		Entries: []service.ExportEntry{{ID: "x", Name: "Tea", Calories: 2, MealType: "elevenses", CreatedAt: day.Format(time.RFC3339)}},
	}
	if _, err := service.ImportDataSnapshot(l, nil, data, service.ImportOptions{}); err == nil {
		t.Fatalf("expected unknown meal error")
	}
	data.Entries[0].MealType = "snacks"
	data.Entries[0].Calories = -2
	if _, err := service.ImportDataSnapshot(l, nil, data, service.ImportOptions{}); err == nil {
		t.Fatalf("expected validation error for negative calories")
	}
	if len(l.Entries()) != 0 {
		t.Fatalf("rejected import must leave ledger empty")
	}
}

func TestWriteEntriesCSV(t *testing.T) {
	t.Parallel()
	entries := []model.FoodEntry{{
		ID: "a", Name: "Bread, rye", Calories: 80, CarbsG: 15.5, MealType: model.MealLunch, CreatedAt: day,
	}}
	var buf bytes.Buffer
	if err := service.WriteEntriesCSV(&buf, entries); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || records[1][1] != "Bread, rye" || records[1][3] != "15.5" || records[1][7] != "lunch" {
		t.Fatalf("unexpected csv records: %v", records)
	}
}
