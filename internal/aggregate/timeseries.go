package aggregate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"budgetdash/internal/core"
)

// FixedKey is the reserved bucket holding the total of fixed expenses.
const FixedKey = "fixed"

// Point is one entry of a chart-ready time series.
type Point struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
}

// DayKey renders YYYY-MM-DD.
func DayKey(d core.Date) string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// MonthKey renders YYYY-M with a 1-based, unpadded month.
func MonthKey(d core.Date) string {
	return fmt.Sprintf("%d-%d", d.Year(), d.Month())
}

// WeekKey renders YYYY-W{n} using WeekNumber.
func WeekKey(d core.Date) string {
	return fmt.Sprintf("%d-W%d", d.Year(), WeekNumber(d))
}

// WeekNumber approximates a week-of-year: ceil((dayOfYear + jan1Weekday) / 7)
// with Sunday as weekday 0. Weeks therefore start on Sunday and week 1 is the
// partial week holding January 1st. This is not ISO-8601.
func WeekNumber(d core.Date) int {
	jan1 := time.Date(d.Year(), time.January, 1, 12, 0, 0, 0, time.UTC)
	n := d.YearDay() + int(jan1.Weekday())
	return (n + 6) / 7
}

// BucketKey returns the bucket key of a dated transaction.
func BucketKey(d core.Date, g core.TimeGranularity) (string, error) {
	switch g {
	case core.Day:
		return DayKey(d), nil
	case core.Week:
		return WeekKey(d), nil
	case core.Month:
		return MonthKey(d), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrInvalidGranularity, g)
	}
}

// GroupByTime buckets dated transactions by granularity. Fixed expenses are
// summed under FixedKey instead (the key is present only when that sum is
// positive).
//
// For day granularity every day of the target month gets a key, zero when it
// has no spend. The target month is the month of the first dated transaction,
// or the month of now when there is none.
func GroupByTime(txs []core.Transaction, g core.TimeGranularity, now time.Time) (map[string]float64, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidGranularity, g)
	}

	out := make(map[string]float64)
	var fixed float64
	var first *core.Date
	for i := range txs {
		t := txs[i]
		if t.IsFixedExpense {
			fixed += t.Amount
			continue
		}
		if t.Date.IsEmpty() {
			continue
		}
		if first == nil {
			first = &txs[i].Date
		}
		key, _ := BucketKey(t.Date, g)
		out[key] += t.Amount
	}
	if fixed > 0 {
		out[FixedKey] = fixed
	}

	if g == core.Day {
		target := core.YearMonthOf(now)
		if first != nil {
			target = core.YearMonthOf(first.Time)
		}
		for day := 1; day <= target.Days(); day++ {
			key := DayKey(core.NewDate(target.Year, int(target.Month), day))
			if _, ok := out[key]; !ok {
				out[key] = 0
			}
		}
	}
	return out, nil
}

// SplitSeries separates the fixed bucket from the dated buckets and returns
// the dated ones in chronological order. The input map is not modified.
func SplitSeries(buckets map[string]float64) (fixed float64, points []Point) {
	fixed = buckets[FixedKey]
	points = make([]Point, 0, len(buckets))
	for k, v := range buckets {
		if k == FixedKey {
			continue
		}
		points = append(points, Point{Key: k, Amount: v})
	}
	slices.SortFunc(points, func(a, b Point) int {
		return compareKeys(a.Key, b.Key)
	})
	return fixed, points
}

// compareKeys orders bucket keys by their numeric parts so "2025-W10" sorts
// after "2025-W9" and "2025-10" after "2025-9".
func compareKeys(a, b string) int {
	pa, pb := keyParts(a), keyParts(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(pa) != len(pb):
		return len(pa) - len(pb)
	default:
		return strings.Compare(a, b)
	}
}

func keyParts(key string) []int {
	fields := strings.Split(key, "-")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimPrefix(f, "W"))
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}
