package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/service"
)

var day = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestLedgerInsertAndDailyTotals(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, &memStore{}, day)

	entry, err := l.Insert(service.EntryDraft{
		Name:     "  Apple ",
		Calories: 52,
		CarbsG:   14,
		ProteinG: 0.3,
		FatG:     0.2,
		MealType: model.MealSnacks,
	})
	if err != nil {
		t.Fatalf("insert apple: %v", err)
	}
	if entry.ID == "" || entry.Name != "Apple" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if got := l.TotalCalories(day); got != 52 {
		t.Fatalf("expected 52 kcal, got %d", got)
	}
	if got := len(l.EntriesForMeal(day, model.MealSnacks)); got != 1 {
		t.Fatalf("expected 1 snack, got %d", got)
	}
	if got := len(l.EntriesForMeal(day, model.MealLunch)); got != 0 {
		t.Fatalf("expected no lunch entries, got %d", got)
	}
	if got := l.TotalMacro(day, service.MacroCarbs); !approxEqual(got, 14) {
		t.Fatalf("expected 14 g carbs, got %f", got)
	}
	if got := l.TotalCalories(day.AddDate(0, 0, 1)); got != 0 {
		t.Fatalf("expected 0 kcal next day, got %d", got)
	}
}

func TestLedgerInsertValidation(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	l := newTestLedger(t, store, day)

	cases := []service.EntryDraft{
		{Name: "   ", Calories: 10, MealType: model.MealLunch},
		{Name: "Soup", Calories: -1, MealType: model.MealLunch},
		{Name: "Soup", Calories: 10, FatG: -0.1, MealType: model.MealLunch},
		{Name: "Soup", Calories: 10, MealType: "brunch"},
	}
	for _, draft := range cases {
		_, err := l.Insert(draft)
		var vErr *service.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for %+v, got %v", draft, err)
		}
	}
	if store.saves != 0 || len(l.Entries()) != 0 {
		t.Fatalf("invalid drafts must not persist anything")
	}
}

func TestLedgerDelete(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, &memStore{}, day)

	first, err := l.Insert(service.EntryDraft{Name: "Oats", Calories: 300, MealType: model.MealBreakfast})
	if err != nil {
		t.Fatalf("insert oats: %v", err)
	}
	if _, err := l.Insert(service.EntryDraft{Name: "Milk", Calories: 120, MealType: model.MealBreakfast}); err != nil {
		t.Fatalf("insert milk: %v", err)
	}

	if err := l.Delete(first.ID); err != nil {
		t.Fatalf("delete oats: %v", err)
	}
	if got := l.TotalCalories(day); got != 120 {
		t.Fatalf("expected 120 kcal after delete, got %d", got)
	}

	var nf *service.NotFoundError
	if err := l.Delete(first.ID); !errors.As(err, &nf) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := l.Get("nope"); !errors.As(err, &nf) {
		t.Fatalf("expected not found on get, got %v", err)
	}
}

func TestLedgerRollsBackOnPersistFailure(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	l := newTestLedger(t, store, day)

	kept, err := l.Insert(service.EntryDraft{Name: "Rice", Calories: 200, MealType: model.MealDinner})
	if err != nil {
		t.Fatalf("insert rice: %v", err)
	}

	store.failNext = true
	_, err = l.Insert(service.EntryDraft{Name: "Cake", Calories: 400, MealType: model.MealDinner})
	var pErr *service.PersistenceError
	if !errors.As(err, &pErr) || !errors.Is(err, errDiskFull) {
		t.Fatalf("expected persistence error wrapping disk full, got %v", err)
	}
	if entries := l.Entries(); len(entries) != 1 || entries[0].ID != kept.ID {
		t.Fatalf("ledger changed after failed insert: %+v", entries)
	}

	store.failNext = true
	if err := l.Delete(kept.ID); !errors.As(err, &pErr) {
		t.Fatalf("expected persistence error on delete, got %v", err)
	}
	if got := l.TotalCalories(day); got != 200 {
		t.Fatalf("ledger changed after failed delete, total %d", got)
	}
}

func TestLedgerDayBucketingUsesLocation(t *testing.T) {
	t.Parallel()
	oslo := time.FixedZone("CET", 60*60)
	// 23:30 UTC on the 14th is 00:30 on the 15th in CET.
	late := time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
	l, err := service.OpenLedger(&memStore{}, service.WithLocation(oslo), service.WithClock(func() time.Time { return late }))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	if _, err := l.Insert(service.EntryDraft{Name: "Toast", Calories: 90, MealType: model.MealSnacks}); err != nil {
		t.Fatalf("insert toast: %v", err)
	}
	if got := l.TotalCalories(time.Date(2026, 3, 15, 12, 0, 0, 0, oslo)); got != 90 {
		t.Fatalf("expected entry on the 15th in CET, got %d", got)
	}
	if got := l.TotalCalories(time.Date(2026, 3, 14, 12, 0, 0, 0, oslo)); got != 0 {
		t.Fatalf("expected nothing on the 14th in CET, got %d", got)
	}
}

func TestLedgerSearchAndLatestByBarcode(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t, &memStore{}, day)
	drafts := []service.EntryDraft{
		{Name: "Greek Yogurt", Calories: 100, Barcode: "7038010009457", MealType: model.MealBreakfast},
		{Name: "banana", Calories: 90, MealType: model.MealSnacks},
		{Name: "Yogurt drink", Calories: 150, Barcode: "7038010009457", MealType: model.MealSnacks},
	}
	for _, d := range drafts {
		if _, err := l.Insert(d); err != nil {
			t.Fatalf("insert %s: %v", d.Name, err)
		}
	}

	found := l.SearchByName("YOGURT")
	if len(found) != 2 || found[0].Name != "Greek Yogurt" || found[1].Name != "Yogurt drink" {
		t.Fatalf("unexpected search result: %+v", found)
	}
	if got := l.SearchByName("  "); got != nil {
		t.Fatalf("expected nil for blank query, got %+v", got)
	}

	latest, ok := l.LatestByBarcode("7038010009457")
	if !ok || latest.Name != "Yogurt drink" {
		t.Fatalf("expected most recent barcode entry, got %+v ok=%v", latest, ok)
	}
	if _, ok := l.LatestByBarcode("0000000000000"); ok {
		t.Fatalf("expected no entry for unknown barcode")
	}
}

func TestLedgerDailyCalories(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	yesterday := day.AddDate(0, 0, -1)
	store.saved = []model.FoodEntry{
		{ID: "a", Name: "Pasta", Calories: 600, MealType: model.MealDinner, CreatedAt: yesterday},
		{ID: "b", Name: "Eggs", Calories: 180, MealType: model.MealBreakfast, CreatedAt: day},
	}
	l := newTestLedger(t, store, day)

	series := l.DailyCalories(day, 3)
	if len(series) != 3 {
		t.Fatalf("expected 3 days, got %d", len(series))
	}
	want := []int{0, 600, 180}
	for i, d := range series {
		if d.Calories != want[i] {
			t.Fatalf("day %d: expected %d kcal, got %d", i, want[i], d.Calories)
		}
	}
	if !series[2].Date.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected series to end on the 14th, got %s", series[2].Date)
	}
	if l.DailyCalories(day, 0) != nil {
		t.Fatalf("expected nil series for zero days")
	}
}

func TestSQLStoreRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	defer sqldb.Close()

	store := service.NewSQLStore(sqldb)
	l := newTestLedger(t, store, day)
	inserted := []model.FoodEntry{}
	for _, d := range []service.EntryDraft{
		{Name: "Apple", Calories: 52, CarbsG: 14, ProteinG: 0.3, FatG: 0.2, MealType: model.MealSnacks},
		{Name: "Skyr", Calories: 63, ProteinG: 11, Barcode: "7038010009457", MealType: model.MealBreakfast},
	} {
		e, err := l.Insert(d)
		if err != nil {
			t.Fatalf("insert %s: %v", d.Name, err)
		}
		inserted = append(inserted, e)
	}

	reopened, err := service.OpenLedger(store, service.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("reopen ledger: %v", err)
	}
	got := reopened.Entries()
	if len(got) != len(inserted) {
		t.Fatalf("expected %d entries after reopen, got %d", len(inserted), len(got))
	}
	for i := range inserted {
		want := inserted[i]
		if got[i].ID != want.ID || got[i].Name != want.Name || got[i].Calories != want.Calories ||
			got[i].Barcode != want.Barcode || got[i].MealType != want.MealType || !got[i].CreatedAt.Equal(want.CreatedAt) {
			t.Fatalf("entry %d mismatch:\nwant %+v\ngot  %+v", i, want, got[i])
		}
	}

	if err := reopened.Delete(inserted[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	again, err := service.OpenLedger(store)
	if err != nil {
		t.Fatalf("reopen after delete: %v", err)
	}
	if len(again.Entries()) != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", len(again.Entries()))
	}
}
