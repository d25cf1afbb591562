package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saadjs/foodlog/internal/model"
)

// Store is the ledger's only durability boundary.
type Store interface {
	LoadAll() ([]model.FoodEntry, error)
	SaveAll(entries []model.FoodEntry) error
}

type EntryDraft struct {
	Name     string
	Calories int
	CarbsG   float64
	ProteinG float64
	FatG     float64
	Barcode  string
	MealType model.MealType
}

type Macro string

const (
	MacroCarbs   Macro = "carbs"
	MacroProtein Macro = "protein"
	MacroFat     Macro = "fat"
)

// Ledger owns the food entry collection. It is not safe for concurrent use;
// all calls are expected to come from a single caller.
type Ledger struct {
	store   Store
	entries []model.FoodEntry
	loc     *time.Location
	now     func() time.Time
	newID   func() string
}

type LedgerOption func(*Ledger)

// WithLocation fixes the calendar used for day bucketing. The default is
// time.Local, so results shift if the machine's timezone changes between
// insert and query.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func OpenLedger(store Store, opts ...LedgerOption) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	l := &Ledger{
		store: store,
		loc:   time.Local,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(l)
	}
	entries, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	l.entries = entries
	return l, nil
}

func (l *Ledger) Insert(draft EntryDraft) (model.FoodEntry, error) {
	if err := validateDraft(&draft); err != nil {
		return model.FoodEntry{}, err
	}
	entry := model.FoodEntry{
		ID:        l.newID(),
		Name:      draft.Name,
		Calories:  draft.Calories,
		CarbsG:    draft.CarbsG,
		ProteinG:  draft.ProteinG,
		FatG:      draft.FatG,
		Barcode:   draft.Barcode,
		MealType:  draft.MealType,
		CreatedAt: l.now(),
	}

	next := make([]model.FoodEntry, len(l.entries), len(l.entries)+1)
	copy(next, l.entries)
	next = append(next, entry)
	if err := l.commit("insert", next); err != nil {
		return model.FoodEntry{}, err
	}
	return entry, nil
}

func (l *Ledger) Delete(id string) error {
	idx := l.indexOf(id)
	if idx < 0 {
		return &NotFoundError{Kind: "entry", ID: id}
	}
	next := make([]model.FoodEntry, 0, len(l.entries)-1)
	next = append(next, l.entries[:idx]...)
	next = append(next, l.entries[idx+1:]...)
	return l.commit("delete", next)
}

// Restore adds previously exported entries, keeping their ids and
// timestamps, in a single commit. The result is ordered by creation time.
// With replace set the current entries are dropped first.
func (l *Ledger) Restore(entries []model.FoodEntry, replace bool) error {
	next := make([]model.FoodEntry, 0, len(l.entries)+len(entries))
	if !replace {
		next = append(next, l.entries...)
	}
	seen := make(map[string]bool, len(next)+len(entries))
	for _, e := range next {
		seen[e.ID] = true
	}
	for _, e := range entries {
		draft := EntryDraft{
			Name:     e.Name,
			Calories: e.Calories,
			CarbsG:   e.CarbsG,
			ProteinG: e.ProteinG,
			FatG:     e.FatG,
			Barcode:  e.Barcode,
			MealType: e.MealType,
		}
		if err := validateDraft(&draft); err != nil {
			return err
		}
		if e.ID == "" || seen[e.ID] {
			return validationf("id", "%q is empty or duplicated", e.ID)
		}
		seen[e.ID] = true
		e.Name, e.Barcode = draft.Name, draft.Barcode
		next = append(next, e)
	}
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].CreatedAt.Before(next[j].CreatedAt)
	})
	return l.commit("restore", next)
}

func (l *Ledger) Get(id string) (model.FoodEntry, error) {
	idx := l.indexOf(id)
	if idx < 0 {
		return model.FoodEntry{}, &NotFoundError{Kind: "entry", ID: id}
	}
	return l.entries[idx], nil
}

// Entries returns every entry in insertion order.
func (l *Ledger) Entries() []model.FoodEntry {
	out := make([]model.FoodEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) EntriesOn(date time.Time) []model.FoodEntry {
	start, end := l.dayBounds(date)
	out := make([]model.FoodEntry, 0)
	for _, e := range l.entries {
		if !e.CreatedAt.Before(start) && e.CreatedAt.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) EntriesForMeal(date time.Time, meal model.MealType) []model.FoodEntry {
	out := make([]model.FoodEntry, 0)
	for _, e := range l.EntriesOn(date) {
		if e.MealType == meal {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) TotalCalories(date time.Time) int {
	total := 0
	for _, e := range l.EntriesOn(date) {
		total += e.Calories
	}
	return total
}

func (l *Ledger) TotalMacro(date time.Time, which Macro) float64 {
	total := 0.0
	for _, e := range l.EntriesOn(date) {
		switch which {
		case MacroCarbs:
			total += e.CarbsG
		case MacroProtein:
			total += e.ProteinG
		case MacroFat:
			total += e.FatG
		}
	}
	return total
}

type DayCalories struct {
	Date     time.Time
	Calories int
}

// DailyCalories returns one total per day for the days ending at end,
// oldest first.
func (l *Ledger) DailyCalories(end time.Time, days int) []DayCalories {
	if days <= 0 {
		return nil
	}
	last, _ := l.dayBounds(end)
	out := make([]DayCalories, 0, days)
	for offset := days - 1; offset >= 0; offset-- {
		day := last.AddDate(0, 0, -offset)
		out = append(out, DayCalories{Date: day, Calories: l.TotalCalories(day)})
	}
	return out
}

// SearchByName matches names case-insensitively and returns them sorted by
// name.
func (l *Ledger) SearchByName(query string) []model.FoodEntry {
	q := normalizeName(query)
	if q == "" {
		return nil
	}
	out := make([]model.FoodEntry, 0)
	for _, e := range l.entries {
		if strings.Contains(normalizeName(e.Name), q) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// LatestByBarcode returns the most recently inserted entry for barcode.
func (l *Ledger) LatestByBarcode(barcode string) (model.FoodEntry, bool) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return model.FoodEntry{}, false
	}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Barcode == barcode {
			return l.entries[i], true
		}
	}
	return model.FoodEntry{}, false
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

func (l *Ledger) commit(op string, next []model.FoodEntry) error {
	if err := l.store.SaveAll(next); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}
	l.entries = next
	return nil
}

func (l *Ledger) indexOf(id string) int {
	id = strings.TrimSpace(id)
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) dayBounds(date time.Time) (time.Time, time.Time) {
	local := date.In(l.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, l.loc)
	return start, start.AddDate(0, 0, 1)
}

func validateDraft(d *EntryDraft) error {
	d.Name = strings.TrimSpace(d.Name)
	d.Barcode = strings.TrimSpace(d.Barcode)
	if d.Name == "" {
		return validationf("name", "is required")
	}
	if d.Calories < 0 {
		return validationf("calories", "must be >= 0")
	}
	if d.CarbsG < 0 {
		return validationf("carbs", "must be >= 0")
	}
	if d.ProteinG < 0 {
		return validationf("protein", "must be >= 0")
	}
	if d.FatG < 0 {
		return validationf("fat", "must be >= 0")
	}
	if !d.MealType.Valid() {
		return validationf("meal type", "must be one of breakfast, lunch, dinner, snacks")
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}
