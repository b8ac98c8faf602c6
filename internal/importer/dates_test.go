package importer

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateNormalizer(t *testing.T) {
	n := &DateNormalizer{}

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15", date(2024, time.March, 15)},
		{"2024/03/15", date(2024, time.March, 15)},
		{"15-03-2024", date(2024, time.March, 15)},
		{"15/03/2024", date(2024, time.March, 15)},
		// 15 cannot be a month, so day and month swap roles.
		{"03-15-2024", date(2024, time.March, 15)},
		{"15-03-24", date(2024, time.March, 15)},
		// Genuinely ambiguous: month-first fallback by default.
		{"05-06-24", date(2024, time.May, 6)},
		{"12-01-99", date(2099, time.December, 1)},
		{" 2024-01-02 ", date(2024, time.January, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := n.Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Normalize(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateNormalizerDayFirstFallback(t *testing.T) {
	monthFirst := &DateNormalizer{}
	dayFirst := &DateNormalizer{DayFirst: true}

	got, err := monthFirst.Normalize("05-06-24")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(date(2024, time.May, 6)) {
		t.Errorf("month-first: got %s, want 2024-05-06", got)
	}

	got, err = dayFirst.Normalize("05-06-24")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(date(2024, time.June, 5)) {
		t.Errorf("day-first: got %s, want 2024-06-05", got)
	}
}

func TestDateNormalizerRejects(t *testing.T) {
	n := &DateNormalizer{}

	inputs := []string{
		"",
		"2024-03",
		"2024-03-15-01",
		"aa-bb-cc",
		"2024-3x-01",
		"2024-13-01", // month out of range, must be rejected not wrapped
		"2024-00-10",
		"2024-02-30", // not a real calendar date
		"15-13-2024", // month slot out of range in day-first reading
		"2024-01-32",
		"not a date",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := n.Normalize(input); !errors.Is(err, ErrMalformedDate) {
				t.Errorf("Normalize(%q) = %v, want ErrMalformedDate", input, err)
			}
		})
	}
}
