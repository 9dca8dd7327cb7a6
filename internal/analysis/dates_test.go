package analysis

import (
	"testing"
	"time"
)

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := ParseDayKey(key)
	if err != nil {
		t.Fatalf("ParseDayKey(%q): %v", key, err)
	}
	return d
}

func TestToday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"utc midday", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC), "2024-01-10"},
		{"utc just before midnight", time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC), "2024-01-10"},
		{"offset zone rolls to next utc day", time.Date(2024, 1, 10, 23, 30, 0, 0, time.FixedZone("EST", -5*3600)), "2024-01-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Today(tt.now)
			if DayKey(got) != tt.want {
				t.Errorf("Today() = %s, want %s", DayKey(got), tt.want)
			}
			if got.Hour() != 0 || got.Location() != time.UTC {
				t.Errorf("Today() = %v, want UTC midnight", got)
			}
		})
	}
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2024-01-07", "2024-01-07"}, // Sunday
		{"2024-01-10", "2024-01-07"},
		{"2024-01-13", "2024-01-07"}, // Saturday
		{"2024-03-01", "2024-02-25"},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			if got := DayKey(StartOfWeek(mustDay(t, tt.day))); got != tt.want {
				t.Errorf("StartOfWeek(%s) = %s, want %s", tt.day, got, tt.want)
			}
		})
	}
}

func TestWindowedDelta(t *testing.T) {
	today := mustDay(t, "2024-01-10")

	current, baseline := WindowedDelta(today, 7)
	if DayKey(current.From) != "2024-01-04" || DayKey(current.To) != "2024-01-10" {
		t.Errorf("current = %s..%s, want 2024-01-04..2024-01-10", DayKey(current.From), DayKey(current.To))
	}
	if DayKey(baseline.From) != "2023-12-28" || DayKey(baseline.To) != "2024-01-03" {
		t.Errorf("baseline = %s..%s, want 2023-12-28..2024-01-03", DayKey(baseline.From), DayKey(baseline.To))
	}
	if current.Days() != 7 || baseline.Days() != 7 {
		t.Errorf("window lengths = %d/%d, want 7/7", current.Days(), baseline.Days())
	}
	if current.Contains(baseline.To) || baseline.Contains(current.From) {
		t.Error("current and baseline windows overlap")
	}
}

func TestWindowContains(t *testing.T) {
	w := NewWindow(mustDay(t, "2024-01-10"), 3)

	tests := []struct {
		at   time.Time
		want bool
	}{
		{mustDay(t, "2024-01-07"), false},
		{mustDay(t, "2024-01-08"), true},
		{time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC), true},
		{mustDay(t, "2024-01-11"), false},
	}

	for _, tt := range tests {
		if got := w.Contains(tt.at); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
}

func TestEnumerateDays(t *testing.T) {
	days := EnumerateDays(mustDay(t, "2024-02-27"), mustDay(t, "2024-03-02"))
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}

	if len(days) != len(want) {
		t.Fatalf("EnumerateDays() returned %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if DayKey(d) != want[i] {
			t.Errorf("days[%d] = %s, want %s", i, DayKey(d), want[i])
		}
	}

	if got := EnumerateDays(mustDay(t, "2024-03-02"), mustDay(t, "2024-03-01")); len(got) != 0 {
		t.Errorf("reversed range returned %d days, want 0", len(got))
	}
}
