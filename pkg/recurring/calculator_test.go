package recurring

import (
	"testing"

	"github.com/kassa/kassa/internal/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) date.Date {
	t.Helper()
	d, err := date.Parse(s)
	require.NoError(t, err)
	return d
}

func testRule(t *testing.T, frequency Frequency, interval int, start, end string) Rule {
	t.Helper()
	rule := Rule{
		Kind:      Expense,
		Amount:    decimal.NewFromInt(40),
		Currency:  "EUR",
		Title:     "Gym membership",
		StartDate: mustDate(t, start),
		Frequency: frequency,
		Interval:  interval,
		Active:    true,
	}
	if end != "" {
		rule.EndDate = mustDate(t, end)
	}
	return rule
}

func datesOf(t *testing.T, days []date.Date) []string {
	t.Helper()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	return out
}

func TestOccurrences_Monthly(t *testing.T) {
	t.Run("should clamp month-end anchors per target month", func(t *testing.T) {
		rule := testRule(t, Monthly, 1, "2024-01-31", "")

		days, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2024-04-30"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, datesOf(t, days))
	})

	t.Run("should not drift after a clamped month", func(t *testing.T) {
		rule := testRule(t, Monthly, 1, "2024-01-30", "")

		days, err := Occurrences(rule, mustDate(t, "2024-02-01"), mustDate(t, "2024-04-30"))

		assert.NoError(t, err)
		// February clamps to the 29th; March is back on the 30th.
		assert.Equal(t, []string{"2024-02-29", "2024-03-30", "2024-04-30"}, datesOf(t, days))
	})

	t.Run("should respect intervals greater than one", func(t *testing.T) {
		rule := testRule(t, Monthly, 3, "2024-01-15", "")

		days, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-01-15", "2024-04-15", "2024-07-15", "2024-10-15"}, datesOf(t, days))
	})

	t.Run("should skip a clamped candidate landing before the window", func(t *testing.T) {
		rule := testRule(t, Monthly, 1, "2024-01-05", "")

		days, err := Occurrences(rule, mustDate(t, "2024-02-10"), mustDate(t, "2024-03-31"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-03-05"}, datesOf(t, days))
	})
}

func TestOccurrences_Weekly(t *testing.T) {
	t.Run("should fire every interval weeks from the anchor", func(t *testing.T) {
		rule := testRule(t, Weekly, 2, "2024-03-01", "")

		days, err := Occurrences(rule, mustDate(t, "2024-03-01"), mustDate(t, "2024-03-31"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-03-01", "2024-03-15", "2024-03-29"}, datesOf(t, days))
	})

	t.Run("should start at the anchor when the window begins earlier", func(t *testing.T) {
		rule := testRule(t, Weekly, 1, "2024-03-20", "")

		days, err := Occurrences(rule, mustDate(t, "2024-03-01"), mustDate(t, "2024-04-03"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-03-20", "2024-03-27", "2024-04-03"}, datesOf(t, days))
	})

	t.Run("should align mid-window to the cadence, not the window start", func(t *testing.T) {
		rule := testRule(t, Weekly, 2, "2024-03-01", "")

		days, err := Occurrences(rule, mustDate(t, "2024-03-02"), mustDate(t, "2024-03-31"))

		assert.NoError(t, err)
		// March 8 is one week after the anchor and thus not congruent.
		assert.Equal(t, []string{"2024-03-15", "2024-03-29"}, datesOf(t, days))
	})
}

func TestOccurrences_Daily(t *testing.T) {
	t.Run("should stop at the rule's own end date", func(t *testing.T) {
		rule := testRule(t, Daily, 3, "2024-06-10", "2024-06-20")

		days, err := Occurrences(rule, mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-06-10", "2024-06-13", "2024-06-16", "2024-06-19"}, datesOf(t, days))
	})

	t.Run("should include the end date when congruent", func(t *testing.T) {
		rule := testRule(t, Daily, 5, "2024-06-10", "2024-06-20")

		days, err := Occurrences(rule, mustDate(t, "2024-06-01"), mustDate(t, "2024-06-30"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-06-10", "2024-06-15", "2024-06-20"}, datesOf(t, days))
	})
}

func TestOccurrences_Yearly(t *testing.T) {
	t.Run("should fire on the anchor's month and day", func(t *testing.T) {
		rule := testRule(t, Yearly, 1, "2023-02-28", "")

		days, err := Occurrences(rule, mustDate(t, "2023-01-01"), mustDate(t, "2025-12-31"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2023-02-28", "2024-02-28", "2025-02-28"}, datesOf(t, days))
	})

	t.Run("should clamp a Feb 29 anchor to Feb 28 in non-leap years", func(t *testing.T) {
		// Pinned policy: a leap-day anchor fires on Feb 28 when the target
		// year has no Feb 29, and is back on Feb 29 in the next leap year.
		rule := testRule(t, Yearly, 1, "2024-02-29", "")

		days, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2028-12-31"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-02-29", "2025-02-28", "2026-02-28", "2027-02-28", "2028-02-29"}, datesOf(t, days))
	})
}

func TestOccurrences_WindowIntersection(t *testing.T) {
	t.Run("should return nothing when the window ends before the rule starts", func(t *testing.T) {
		rule := testRule(t, Daily, 1, "2024-06-01", "")

		days, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2024-05-31"))

		assert.NoError(t, err)
		assert.Empty(t, days)
	})

	t.Run("should return nothing when the window starts after the rule ends", func(t *testing.T) {
		rule := testRule(t, Daily, 1, "2024-01-01", "2024-01-31")

		days, err := Occurrences(rule, mustDate(t, "2024-02-01"), mustDate(t, "2024-02-29"))

		assert.NoError(t, err)
		assert.Empty(t, days)
	})

	t.Run("should handle a single-day window", func(t *testing.T) {
		rule := testRule(t, Weekly, 1, "2024-03-04", "")

		days, err := Occurrences(rule, mustDate(t, "2024-03-11"), mustDate(t, "2024-03-11"))

		assert.NoError(t, err)
		assert.Equal(t, []string{"2024-03-11"}, datesOf(t, days))
	})
}

func TestOccurrences_Properties(t *testing.T) {
	rules := []Rule{
		testRule(t, Daily, 3, "2024-01-07", ""),
		testRule(t, Weekly, 2, "2024-01-10", "2024-09-15"),
		testRule(t, Monthly, 1, "2023-10-31", ""),
		testRule(t, Yearly, 1, "2020-02-29", ""),
	}
	windowStart := mustDate(t, "2024-01-01")
	windowEnd := mustDate(t, "2024-12-31")

	t.Run("should be deterministic", func(t *testing.T) {
		for _, rule := range rules {
			first, err := Occurrences(rule, windowStart, windowEnd)
			require.NoError(t, err)
			second, err := Occurrences(rule, windowStart, windowEnd)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		}
	})

	t.Run("should emit strictly increasing dates inside the window", func(t *testing.T) {
		for _, rule := range rules {
			days, err := Occurrences(rule, windowStart, windowEnd)
			require.NoError(t, err)
			require.NotEmpty(t, days)
			for i, d := range days {
				assert.False(t, d.Before(windowStart))
				assert.False(t, d.After(windowEnd))
				assert.False(t, d.Before(rule.StartDate))
				if !rule.EndDate.IsZero() {
					assert.False(t, d.After(rule.EndDate))
				}
				if i > 0 {
					assert.True(t, days[i-1].Before(d))
				}
			}
		}
	})

	t.Run("should compose over split windows without gaps or duplicates", func(t *testing.T) {
		splitAt := mustDate(t, "2024-06-14")
		for _, rule := range rules {
			whole, err := Occurrences(rule, windowStart, windowEnd)
			require.NoError(t, err)
			left, err := Occurrences(rule, windowStart, splitAt)
			require.NoError(t, err)
			right, err := Occurrences(rule, splitAt.AddDays(1), windowEnd)
			require.NoError(t, err)

			assert.Equal(t, whole, append(left, right...))
		}
	})
}

func TestOccurrences_MalformedRule(t *testing.T) {
	t.Run("should fail cleanly on an unknown frequency", func(t *testing.T) {
		rule := testRule(t, Frequency("fortnightly"), 1, "2024-01-01", "")

		_, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31"))

		assert.ErrorIs(t, err, ErrUnsupportedFrequency)
	})

	t.Run("should fail cleanly on a non-positive interval", func(t *testing.T) {
		rule := testRule(t, Daily, 0, "2024-01-01", "")

		_, err := Occurrences(rule, mustDate(t, "2024-01-01"), mustDate(t, "2024-12-31"))

		assert.ErrorIs(t, err, ErrInvalidRule)
	})
}
