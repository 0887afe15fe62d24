package textwindow

import (
	"strings"
	"testing"
)

func TestCondenseShortTextPassesThrough(t *testing.T) {
	c := NewCondenser(100, 10, 3)
	if got := c.Condense("  short document  "); got != "short document" {
		t.Fatalf("Condense() = %q", got)
	}
}

func TestCondenseBoundsLongText(t *testing.T) {
	c := NewCondenser(10, 2, 2)
	long := strings.Repeat("abcdefghij", 10)

	got := c.Condense(long)
	if len([]rune(got)) > 2*10+2 {
		t.Fatalf("expected at most two windows, got %d runes", len([]rune(got)))
	}
	if !strings.HasPrefix(got, "abcdefghij") {
		t.Fatalf("expected front of document preserved, got %q", got)
	}
}

func TestCondenserDefaults(t *testing.T) {
	c := NewCondenser(0, -1, 0)
	if c.WindowSize != 4000 || c.Overlap != 0 || c.MaxWindows != 3 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestCondenserOverlapClampedBelowWindow(t *testing.T) {
	c := NewCondenser(100, 200, 3)
	if c.Overlap != 25 {
		t.Fatalf("expected overlap clamped to 25, got %d", c.Overlap)
	}
}
