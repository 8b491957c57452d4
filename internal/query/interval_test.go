package query

import (
	"errors"
	"testing"
	"time"
)

func TestEstimatedIntervalAt(t *testing.T) {
	tests := []struct {
		clock   string
		weekend bool
		want    int
		wantOK  bool
	}{
		{"0000", false, 0, false},
		{"0459", false, 0, false},
		{"0515", false, 0, false}, // gap before first train
		{"0530", false, 600, true},
		{"0659", false, 600, true},
		{"0700", false, 180, true},
		{"0859", false, 180, true},
		{"1200", false, 360, true},
		{"1800", false, 240, true},
		{"2030", false, 360, true},
		{"2130", false, 360, true},
		{"2359", false, 600, true},
		{"0800", true, 360, true},
		{"2059", true, 360, true},
		{"2100", true, 600, true},
		{"0300", true, 0, false},
	}
	for _, tt := range tests {
		got, ok, err := EstimatedIntervalAt(tt.clock, tt.weekend)
		if err != nil {
			t.Fatalf("EstimatedIntervalAt(%q) error: %v", tt.clock, err)
		}
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("EstimatedIntervalAt(%q, weekend=%v) = %d, %v, want %d, %v",
				tt.clock, tt.weekend, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestEstimatedIntervalAt_Invalid(t *testing.T) {
	for _, clock := range []string{"", "700", "07:00", "2400", "1260", "abcd", "-100"} {
		if _, _, err := EstimatedIntervalAt(clock, false); !errors.Is(err, ErrInvalidClock) {
			t.Errorf("EstimatedIntervalAt(%q) error = %v, want ErrInvalidClock", clock, err)
		}
	}
}

func TestIntervalAt(t *testing.T) {
	kst := time.FixedZone("KST", 9*60*60)

	// 2025-06-16 is a Monday.
	monday := time.Date(2025, 6, 16, 7, 30, 0, 0, kst)
	if got, ok := IntervalAt(monday); !ok || got != 180 {
		t.Errorf("IntervalAt(monday 07:30) = %d, %v, want 180, true", got, ok)
	}

	saturday := time.Date(2025, 6, 21, 7, 30, 0, 0, kst)
	if got, ok := IntervalAt(saturday); !ok || got != 360 {
		t.Errorf("IntervalAt(saturday 07:30) = %d, %v, want 360, true", got, ok)
	}

	// 22:30 UTC Sunday is 07:30 KST Monday.
	utc := time.Date(2025, 6, 15, 22, 30, 0, 0, time.UTC)
	if got, ok := IntervalAt(utc); !ok || got != 180 {
		t.Errorf("IntervalAt(utc) = %d, %v, want 180, true", got, ok)
	}
}

func TestClockAndIsWeekend(t *testing.T) {
	// 15:05 UTC Saturday is 00:05 KST Sunday.
	utc := time.Date(2025, 6, 21, 15, 5, 0, 0, time.UTC)
	if got := Clock(utc); got != "0005" {
		t.Errorf("Clock() = %q, want %q", got, "0005")
	}
	if !IsWeekend(utc) {
		t.Error("IsWeekend() = false, want true")
	}

	// 15:05 UTC Sunday is 00:05 KST Monday.
	if IsWeekend(utc.Add(24 * time.Hour)) {
		t.Error("IsWeekend(monday) = true, want false")
	}
}
