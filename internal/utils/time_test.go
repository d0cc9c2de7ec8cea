package utils

import (
	"testing"
	"time"
)

func TestDateKeyUsesLocation(t *testing.T) {
	tokyo, err := LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// 20:00 UTC on Jan 31 is already Feb 1 in Tokyo
	instant := time.Date(2026, 1, 31, 20, 0, 0, 0, time.UTC)
	if got := DateKey(instant, tokyo); got != "2026-02-01" {
		t.Errorf("DateKey() = %q, want %q", got, "2026-02-01")
	}
	if got := DateKey(instant, time.UTC); got != "2026-01-31" {
		t.Errorf("DateKey() = %q, want %q", got, "2026-01-31")
	}
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"empty is local", "", false},
		{"explicit local", "Local", false},
		{"iana name", "Europe/London", false},
		{"garbage", "Not/AZone", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadLocation(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
			if ValidateTimezone(tt.tz) == tt.wantErr {
				t.Errorf("ValidateTimezone(%q) disagrees with LoadLocation", tt.tz)
			}
		})
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	ny, err := LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	// DST starts on 2026-03-08 in New York
	day, _ := ParseDateKey("2026-03-09", ny)
	prev := AddDays(day, -1)
	if got := DateKey(prev, ny); got != "2026-03-08" {
		t.Errorf("AddDays(-1) = %q, want %q", got, "2026-03-08")
	}
	prev = AddDays(prev, -1)
	if got := DateKey(prev, ny); got != "2026-03-07" {
		t.Errorf("AddDays(-2) = %q, want %q", got, "2026-03-07")
	}
}

func TestAddDaysAcrossMonthBoundary(t *testing.T) {
	day, _ := ParseDateKey("2026-02-01", time.UTC)
	if got := DateKey(AddDays(day, -1), time.UTC); got != "2026-01-31" {
		t.Errorf("AddDays(-1) = %q, want %q", got, "2026-01-31")
	}
	if got := DateKey(AddDays(day, 28), time.UTC); got != "2026-03-01" {
		t.Errorf("AddDays(28) = %q, want %q", got, "2026-03-01")
	}
}

func TestStartOfDay(t *testing.T) {
	instant := time.Date(2026, 5, 4, 23, 59, 59, 0, time.UTC)
	got := StartOfDay(instant, time.UTC)
	want := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, want %v", got, want)
	}
}

func TestParseDateKey(t *testing.T) {
	if _, err := ParseDateKey("2026-13-01", time.UTC); err == nil {
		t.Error("expected error for invalid month")
	}
	if ValidateDateKey("01/02/2026") {
		t.Error("expected slash format to be rejected")
	}
	if !ValidateDateKey("2026-01-02") {
		t.Error("expected canonical format to be accepted")
	}
}

func TestDaysBetween(t *testing.T) {
	a, _ := ParseDateKey("2026-01-30", time.UTC)
	b, _ := ParseDateKey("2026-02-01", time.UTC)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween() = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween() = %d, want -2", got)
	}
}
