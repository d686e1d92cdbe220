package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestParseDate_Valid(t *testing.T) {
	d, err := ParseDate("2025-02-03")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.February || d.Day() != 3 {
		t.Errorf("ParseDate = %v, want 2025-02-03", d)
	}
	if d.Hour() != 0 || d.Minute() != 0 {
		t.Errorf("ParseDate not at midnight: %v", d)
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "02/03/2025", "2025-13-40", "not-a-date"} {
		_, err := ParseDate(s)
		if err == nil {
			t.Errorf("ParseDate(%q) = nil error, want ParseError", s)
			continue
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("ParseDate(%q) error type = %T, want *ParseError", s, err)
		}
	}
}

func TestAddBusinessDays(t *testing.T) {
	tests := []struct {
		start string
		n     int
		want  string
	}{
		{"2025-02-03", 0, "2025-02-03"},  // Monday, no-op
		{"2025-02-03", 1, "2025-02-04"},  // Mon -> Tue
		{"2025-02-03", 4, "2025-02-07"},  // Mon -> Fri
		{"2025-02-03", 5, "2025-02-10"},  // Mon -> next Mon, weekend skipped
		{"2025-02-07", 1, "2025-02-10"},  // Fri -> Mon
		{"2025-02-01", 1, "2025-02-03"},  // Sat start -> Mon
		{"2025-02-01", 0, "2025-02-01"},  // Sat start, n=0 unchanged
		{"2025-02-03", 10, "2025-02-17"}, // two full weeks
		{"2025-02-03", -3, "2025-02-03"}, // negative unsupported, unchanged
	}
	for _, tt := range tests {
		got := AddBusinessDays(mustDate(t, tt.start), tt.n)
		if FormatDate(got) != tt.want {
			t.Errorf("AddBusinessDays(%s, %d) = %s, want %s",
				tt.start, tt.n, FormatDate(got), tt.want)
		}
	}
}

func TestBusinessDaysBetween(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2025-02-03", "2025-02-03", 1},  // single weekday, inclusive
		{"2025-02-03", "2025-02-07", 5},  // full work week
		{"2025-02-03", "2025-02-10", 6},  // spans a weekend
		{"2025-02-01", "2025-02-02", 0},  // Sat..Sun only
		{"2025-02-07", "2025-02-03", 0},  // end before start clamps to 0
		{"2025-02-01", "2025-02-11", 7},  // Sat through second Tue
	}
	for _, tt := range tests {
		got := BusinessDaysBetween(mustDate(t, tt.start), mustDate(t, tt.end))
		if got != tt.want {
			t.Errorf("BusinessDaysBetween(%s, %s) = %d, want %d",
				tt.start, tt.end, got, tt.want)
		}
	}
}

func TestEndOffset_InverseOfAddBusinessDays(t *testing.T) {
	start := mustDate(t, "2025-02-03") // Monday
	for n := 0; n <= 15; n++ {
		end := AddBusinessDays(start, n)
		if got := EndOffset(start, end); got != n {
			t.Errorf("EndOffset(start, AddBusinessDays(start, %d)) = %d", n, got)
		}
	}
}

func TestEndOffset_WeekendStart(t *testing.T) {
	// Saturday start: the offset counts weekdays after the weekend.
	start := mustDate(t, "2025-02-01")
	if got := EndOffset(start, mustDate(t, "2025-02-11")); got != 7 {
		t.Errorf("EndOffset(Sat 02-01, Tue 02-11) = %d, want 7", got)
	}
	if got := EndOffset(start, start); got != 0 {
		t.Errorf("EndOffset(d, d) = %d, want 0", got)
	}
	if got := EndOffset(mustDate(t, "2025-02-11"), start); got != 0 {
		t.Errorf("EndOffset(end before start) = %d, want 0", got)
	}
}

func TestCalculateEndDate(t *testing.T) {
	tests := []struct {
		start            string
		duration, buffer int
		want             string
	}{
		{"2025-02-03", 3, 0, "2025-02-06"},
		{"2025-02-03", 3, 2, "2025-02-10"}, // buffer pushes over the weekend
		{"2025-02-03", 0, 0, "2025-02-03"},
		{"2025-02-01", 3, 0, "2025-02-05"}, // Sat start
	}
	for _, tt := range tests {
		got := CalculateEndDate(mustDate(t, tt.start), tt.duration, tt.buffer)
		if FormatDate(got) != tt.want {
			t.Errorf("CalculateEndDate(%s, %d, %d) = %s, want %s",
				tt.start, tt.duration, tt.buffer, FormatDate(got), tt.want)
		}
	}
}

func TestCalendarDaysBetween(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2025-02-03", "2025-02-03", 0},
		{"2025-02-03", "2025-02-10", 7},
		{"2025-02-01", "2025-03-01", 28},
		{"2025-02-10", "2025-02-03", 0}, // clamped
	}
	for _, tt := range tests {
		got := CalendarDaysBetween(mustDate(t, tt.start), mustDate(t, tt.end))
		if got != tt.want {
			t.Errorf("CalendarDaysBetween(%s, %s) = %d, want %d",
				tt.start, tt.end, got, tt.want)
		}
	}
}
