package service

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/foodlog/internal/model"
)

const exportVersion = 1

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeReplace ImportMode = "replace"
)

func ParseImportMode(value string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ImportModeSkip:
		return ImportModeSkip, nil
	case ImportModeFail:
		return ImportModeFail, nil
	case ImportModeReplace:
		return ImportModeReplace, nil
	default:
		return "", fmt.Errorf("unknown import mode %q (expected fail, skip, or replace)", value)
	}
}

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Goals     int      `json:"goals"`
	Warnings  []string `json:"warnings,omitempty"`
}

type ExportEntry struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Calories  int     `json:"calories"`
	CarbsG    float64 `json:"carbs_g"`
	ProteinG  float64 `json:"protein_g"`
	FatG      float64 `json:"fat_g"`
	Barcode   string  `json:"barcode,omitempty"`
	MealType  string  `json:"meal_type"`
	CreatedAt string  `json:"created_at"`
}

type ExportGoal struct {
	Calories      int    `json:"calories"`
	EffectiveDate string `json:"effective_date"`
}

type ExportData struct {
	Version    int           `json:"version"`
	ExportedAt string        `json:"exported_at"`
	Entries    []ExportEntry `json:"entries"`
	Goals      []ExportGoal  `json:"goals"`
}

func ExportDataSnapshot(l *Ledger, db *sql.DB) (*ExportData, error) {
	out := &ExportData{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    make([]ExportEntry, 0),
		Goals:      make([]ExportGoal, 0),
	}
	for _, e := range l.Entries() {
		out.Entries = append(out.Entries, ExportEntry{
			ID:        e.ID,
			Name:      e.Name,
			Calories:  e.Calories,
			CarbsG:    e.CarbsG,
			ProteinG:  e.ProteinG,
			FatG:      e.FatG,
			Barcode:   e.Barcode,
			MealType:  string(e.MealType),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	goals, err := GoalHistory(db)
	if err != nil {
		return nil, err
	}
	for i := len(goals) - 1; i >= 0; i-- {
		out.Goals = append(out.Goals, ExportGoal{Calories: goals[i].Calories, EffectiveDate: goals[i].EffectiveDate})
	}
	return out, nil
}

// ImportDataSnapshot restores entries through the ledger in one commit, then
// upserts goals. Entries whose id already exists are skipped, or fail the
// import in ImportModeFail.
func ImportDataSnapshot(l *Ledger, db *sql.DB, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if data == nil {
		return report, fmt.Errorf("import data is required")
	}
	if data.Version > exportVersion {
		return report, fmt.Errorf("unsupported export version %d", data.Version)
	}
	mode := opts.Mode
	if mode == "" {
		mode = ImportModeSkip
	}

	existing := make(map[string]bool)
	if mode != ImportModeReplace {
		for _, e := range l.Entries() {
			existing[e.ID] = true
		}
	}

	restored := make([]model.FoodEntry, 0, len(data.Entries))
	for i, in := range data.Entries {
		entry, err := entryFromExport(in)
		if err != nil {
			return report, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if entry.ID == "" {
			entry.ID = l.newID()
			report.Warnings = append(report.Warnings, fmt.Sprintf("entry %d had no id; assigned %s", i+1, entry.ID))
		}
		if existing[entry.ID] {
			report.Conflicts++
			if mode == ImportModeFail {
				return report, fmt.Errorf("entry %s already exists", entry.ID)
			}
			report.Skipped++
			continue
		}
		existing[entry.ID] = true
		restored = append(restored, entry)
	}
	report.Inserted = len(restored)
	report.Goals = len(data.Goals)
	if opts.DryRun {
		return report, nil
	}

	if err := l.Restore(restored, mode == ImportModeReplace); err != nil {
		return report, err
	}
	for _, g := range data.Goals {
		if err := SetGoal(db, SetGoalInput{Calories: g.Calories, EffectiveDate: g.EffectiveDate}); err != nil {
			return report, fmt.Errorf("import goal %q: %w", g.EffectiveDate, err)
		}
	}
	return report, nil
}

func entryFromExport(in ExportEntry) (model.FoodEntry, error) {
	meal, err := model.ParseMealType(in.MealType)
	if err != nil {
		return model.FoodEntry{}, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(in.CreatedAt))
	if err != nil {
		return model.FoodEntry{}, fmt.Errorf("invalid created_at %q", in.CreatedAt)
	}
	return model.FoodEntry{
		ID:        strings.TrimSpace(in.ID),
		Name:      in.Name,
		Calories:  in.Calories,
		CarbsG:    in.CarbsG,
		ProteinG:  in.ProteinG,
		FatG:      in.FatG,
		Barcode:   in.Barcode,
		MealType:  meal,
		CreatedAt: createdAt,
	}, nil
}

var entryCSVHeader = []string{"id", "name", "calories", "carbs_g", "protein_g", "fat_g", "barcode", "meal_type", "created_at"}

func WriteEntriesCSV(w io.Writer, entries []model.FoodEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(entryCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			e.Name,
			strconv.Itoa(e.Calories),
			strconv.FormatFloat(e.CarbsG, 'f', -1, 64),
			strconv.FormatFloat(e.ProteinG, 'f', -1, 64),
			strconv.FormatFloat(e.FatG, 'f', -1, 64),
			e.Barcode,
			string(e.MealType),
			e.CreatedAt.Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv entry %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
