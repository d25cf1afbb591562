package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelsFilterOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(LevelNormal, buf)
	l.Debug("hidden %d", 1)
	l.Warn("shown %d", 2)
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug line should be filtered at normal level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WRN] shown 2") {
		t.Fatalf("expected warn line, got %q", buf.String())
	}

	l.SetLevel(LevelVerbose)
	l.Debug("now visible")
	if !strings.Contains(buf.String(), "[DBG] now visible") {
		t.Fatalf("expected debug line at verbose level, got %q", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Error("nothing happens")
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("verbose"); err != nil || lvl != LevelVerbose {
		t.Fatalf("expected verbose level, got %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected unknown level error")
	}
}
