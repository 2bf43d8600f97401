package format

import (
	"testing"
	"time"
)

func withNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func TestFormatDate(t *testing.T) {
	withNow(t, time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "Unknown"},
		{"blank", "   ", "Unknown"},
		{"current year", "2026-03-03T10:05:00Z", "Mar 3, 10:05 AM"},
		{"current year afternoon", "2026-10-01T17:30:00Z", "Oct 1, 05:30 PM"},
		{"other year", "2024-12-31T23:00:00Z", "Dec 31, 2024, 11:00 PM"},
		{"offset converted to local", "2026-06-01T09:00:00+02:00", "Jun 1, 07:00 AM"},
		{"date only", "2025-01-15", "Jan 15, 2025, 12:00 AM"},
		{"unparsable", "yesterday", "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(tt.in); got != tt.want {
				t.Fatalf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatTimeZeroAndCurrentYear(t *testing.T) {
	withNow(t, time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC))

	if got := formatTime(time.Time{}); got != UnknownDate {
		t.Fatalf("formatTime(zero) = %q, want %q", got, UnknownDate)
	}
	if got := formatTime(time.Date(2026, time.February, 9, 8, 7, 0, 0, time.UTC)); got != "Feb 9, 08:07 AM" {
		t.Fatalf("formatTime = %q", got)
	}
}

func TestParseDate(t *testing.T) {
	withNow(t, time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC))

	got, err := ParseDate("2026-01-02T03:04:05.123Z")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if want := time.Date(2026, time.January, 2, 3, 4, 5, 123000000, time.UTC); !got.Equal(want) {
		t.Fatalf("ParseDate = %v, want %v", got, want)
	}

	if _, err := ParseDate("not a date"); err == nil {
		t.Fatal("ParseDate should reject garbage")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	fixedNow := time.Date(2025, time.December, 25, 12, 0, 0, 0, time.UTC)
	withNow(t, fixedNow)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{name: "zero time", ts: time.Time{}, want: ""},
		{name: "future timestamp", ts: fixedNow.Add(2 * time.Hour), want: "Dec 25"},
		{name: "seconds ago", ts: fixedNow.Add(-30 * time.Second), want: "now"},
		{name: "just over minute", ts: fixedNow.Add(-61 * time.Second), want: "1m ago"},
		{name: "fifty nine minutes", ts: fixedNow.Add(-59 * time.Minute), want: "59m ago"},
		{name: "hours", ts: fixedNow.Add(-23 * time.Hour), want: "23h ago"},
		{name: "over one hour", ts: fixedNow.Add(-61 * time.Minute), want: "1h ago"},
		{name: "days", ts: fixedNow.Add(-48 * time.Hour), want: "2d ago"},
		{name: "ninety nine days", ts: fixedNow.Add(-99 * 24 * time.Hour), want: "99d ago"},
		{name: "hundred days absolute", ts: fixedNow.Add(-100 * 24 * time.Hour), want: "Sep 16"},
		{
			name: "previous year absolute",
			ts:   time.Date(2024, time.June, 30, 23, 0, 0, 0, time.UTC),
			want: "Jun '24",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.ts); got != tt.want {
				t.Fatalf("FormatRelativeTime(%v) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}
