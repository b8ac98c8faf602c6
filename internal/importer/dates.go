package importer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedDate marks a date string that could not be resolved. Callers
// treat it as "skip this row".
var ErrMalformedDate = errors.New("malformed date")

// DateNormalizer resolves an ambiguous three-part numeric date string into a
// calendar date without a declared format. Disambiguation is a fixed,
// priority-ordered rule table; the only configurable point is how to read a
// date whose day and month are both <= 12 (e.g. "05-06-2024"), which is
// month-first by default.
type DateNormalizer struct {
	// DayFirst switches the all-ambiguous fallback from MM-DD-YYYY to
	// DD-MM-YYYY.
	DayFirst bool
}

// dateRule maps the three numeric tokens (a, b, c) to year/month/day once
// its guard matches. Rules are evaluated in order; the last rule is the
// unconditional fallback.
type dateRule struct {
	name  string
	match func(a, b, c int) bool
	apply func(a, b, c int) (year, month, day int)
}

func (n *DateNormalizer) rules() []dateRule {
	return []dateRule{
		{
			// 2024-03-15
			name:  "year-first",
			match: func(a, _, _ int) bool { return a > 1900 },
			apply: func(a, b, c int) (int, int, int) { return a, b, c },
		},
		{
			// 15-03-2024. When the middle token cannot be a month
			// (e.g. 03-15-2024) the two leading tokens swap roles.
			name:  "year-last",
			match: func(_, _, c int) bool { return c > 1900 },
			apply: func(a, b, c int) (int, int, int) {
				month, day := resolveMonthDay(b, a)
				return c, month, day
			},
		},
		{
			// 03-15-24: month-first by default, day-first when configured.
			name:  "two-digit-year",
			match: func(_, _, _ int) bool { return true },
			apply: func(a, b, c int) (int, int, int) {
				year := c
				if year < 100 {
					year += 2000
				}
				month, day := a, b
				if n.DayFirst {
					month, day = b, a
				}
				month, day = resolveMonthDay(month, day)
				return year, month, day
			},
		},
	}
}

// Normalize resolves s into a calendar date (UTC, midnight). It fails with
// ErrMalformedDate when s does not split into exactly three numeric tokens,
// or when the resolved components do not form a real calendar date. It never
// applies business rules such as "no future dates"; that is the reconciler's
// job.
func (n *DateNormalizer) Normalize(s string) (time.Time, error) {
	parts := splitDateTokens(s)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
		}
		nums[i] = v
	}
	a, b, c := nums[0], nums[1], nums[2]

	for _, rule := range n.rules() {
		if !rule.match(a, b, c) {
			continue
		}
		year, month, day := rule.apply(a, b, c)
		date, err := buildDate(year, month, day)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q (%s)", ErrMalformedDate, s, rule.name)
		}
		return date, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// resolveMonthDay keeps the preferred month/day reading unless only the
// swapped reading can be a month. "03-15-2024" has no valid day-first
// reading, so 15 must be the day; genuinely ambiguous pairs keep the
// preferred order.
func resolveMonthDay(month, day int) (int, int) {
	if month > 12 && day >= 1 && day <= 12 {
		return day, month
	}
	return month, day
}

// buildDate validates components explicitly and rejects anything time.Date
// would silently normalize (e.g. 2024-13-01 or Feb 30).
func buildDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date components out of range: %04d-%02d-%02d", year, month, day)
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("not a calendar date: %04d-%02d-%02d", year, month, day)
	}
	return date, nil
}

func splitDateTokens(s string) []string {
	return strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return r == '-' || r == '/'
	})
}
