package extract

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var wednesday = time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestParseDaysAndType(t *testing.T) {
	info := Parse("I need 3 days sick leave from tomorrow", wednesday)

	if info.TypeCode != "SL" {
		t.Fatalf("expected SL, got %q", info.TypeCode)
	}
	if info.Days.IntPart() != 3 {
		t.Fatalf("expected 3 days, got %s", info.Days)
	}
	wantStart := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Fatalf("expected start %s, got %s", wantStart, info.StartDate)
	}
	wantEnd := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	if !info.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end %s, got %s", wantEnd, info.EndDate)
	}
}

func TestParseHalfDay(t *testing.T) {
	info := Parse("taking a half day today for a doctor visit", wednesday)

	if !info.HalfDay {
		t.Fatal("expected half-day flag")
	}
	if !info.Days.Equal(dec("0.5")) {
		t.Fatalf("expected 0.5 days, got %s", info.Days)
	}
	if info.TypeCode != "SL" {
		t.Fatalf("expected SL from doctor keyword, got %q", info.TypeCode)
	}
}

func TestParseWeek(t *testing.T) {
	info := Parse("a week of vacation starting next week", wednesday)

	if info.Days.IntPart() != 5 {
		t.Fatalf("expected 5 days for a week, got %s", info.Days)
	}
	if info.TypeCode != "AL" {
		t.Fatalf("expected AL, got %q", info.TypeCode)
	}
	// Next Monday after Wednesday March 4.
	wantStart := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Fatalf("expected start %s, got %s", wantStart, info.StartDate)
	}
}

func TestParseWeekdayName(t *testing.T) {
	info := Parse("off on friday for personal reasons", wednesday)

	if info.TypeCode != "CL" {
		t.Fatalf("expected CL, got %q", info.TypeCode)
	}
	wantStart := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Fatalf("expected friday %s, got %s", wantStart, info.StartDate)
	}
}

func TestParseExplicitDate(t *testing.T) {
	info := Parse("2 days annual leave from May 12", wednesday)

	wantStart := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Fatalf("expected %s, got %s", wantStart, info.StartDate)
	}

	// A date already behind us rolls into next year.
	info = Parse("leave on 3rd January", wednesday)
	wantStart = time.Date(2027, 1, 3, 0, 0, 0, 0, time.UTC)
	if !info.StartDate.Equal(wantStart) {
		t.Fatalf("expected rollover %s, got %s", wantStart, info.StartDate)
	}
}

func TestParseEmpty(t *testing.T) {
	info := Parse("hello there", wednesday)

	if info.TypeCode != "" || !info.Days.IsZero() || !info.StartDate.IsZero() {
		t.Fatalf("expected empty info, got %+v", info)
	}
}
