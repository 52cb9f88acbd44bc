package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"budgetdash/internal/core"
)

var (
	slashDate    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})$`)
	mayShorthand = regexp.MustCompile(`^May\s+(\d{1,2})$`)
)

// ParseDate parses a non-blank ledger date. Attempts, first match wins:
//
//  1. MM/DD/YYYY or MM/DD/YY (two-digit years mean 20YY)
//  2. "May N", day N of May in refYear
//  3. any format the general parser recognizes; a result without a year
//     (e.g. "Jun 3") takes refYear
//
// The result is always anchored at noon UTC so the calendar day never shifts
// with the local timezone.
func ParseDate(s string, refYear int) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, core.ErrInvalidDate
	}

	if m := slashDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		d, err := core.NewValidDate(year, month, day)
		if err != nil {
			return core.Date{}, fmt.Errorf("%w: %q: %v", core.ErrInvalidDate, s, err)
		}
		return d, nil
	}

	if m := mayShorthand.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		d, err := core.NewValidDate(refYear, int(time.May), day)
		if err != nil {
			return core.Date{}, fmt.Errorf("%w: %q: %v", core.ErrInvalidDate, s, err)
		}
		return d, nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
	}
	if t.Year() == 0 {
		d, err := core.NewValidDate(refYear, int(t.Month()), t.Day())
		if err != nil {
			return core.Date{}, fmt.Errorf("%w: %q: %v", core.ErrInvalidDate, s, err)
		}
		return d, nil
	}
	return core.DateOf(t), nil
}
