package render

import (
	"strings"
	"testing"
)

func TestTableAlignsColumns(t *testing.T) {
	out := Table{
		Headers: []string{"Name", "kcal"},
		Rows: [][]string{
			{"Apple", "52"},
			{"Skyr", "101"},
		},
	}.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(out, "│ Apple │   52 │") {
		t.Fatalf("expected right-aligned numeric column:\n%s", out)
	}
	width := len([]rune(lines[0]))
	for _, l := range lines {
		if len([]rune(l)) != width {
			t.Fatalf("ragged table line %q:\n%s", l, out)
		}
	}
}

func TestEmptyTable(t *testing.T) {
	if got := (Table{}).String(); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	got := ProgressBar(0.5, 10, false)
	if !strings.Contains(got, "█████░░░░░") || !strings.HasSuffix(got, " 50%") {
		t.Fatalf("unexpected half bar %q", got)
	}
	full := ProgressBar(1.7, 4, true)
	if !strings.Contains(full, "████") || !strings.HasSuffix(full, "100%") {
		t.Fatalf("expected clamped full bar, got %q", full)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 50, 100}); got != "▁▄█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 0}); got != "▁▁" {
		t.Fatalf("unexpected zero sparkline %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}
