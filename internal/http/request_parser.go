package http

import (
	"errors"
	"net/url"
	"strings"

	"budgetdash/internal/core"
)

// MaxSearchLength caps the q parameter.
const MaxSearchLength = 200

// DashboardQuery is the selection requested through query parameters.
type DashboardQuery struct {
	// Month is zero when the request did not name one.
	Month       core.YearMonth
	Granularity core.TimeGranularity
	Categories  []string
	Search      string
}

// ParseDashboardQuery reads month, granularity, repeated category and q.
// Every invalid parameter is reported in the returned error.
func ParseDashboardQuery(query url.Values) (DashboardQuery, error) {
	var q DashboardQuery
	var errs []error

	if v := strings.TrimSpace(query.Get("month")); v != "" {
		ym, err := core.ParseYearMonth(v)
		if err != nil {
			errs = append(errs, err)
		}
		q.Month = ym
	}

	g, err := core.ParseGranularity(query.Get("granularity"))
	if err != nil {
		errs = append(errs, err)
	}
	q.Granularity = g

	q.Categories = []string{}
	for _, c := range query["category"] {
		if c = sanitizeInput(c); c != "" {
			q.Categories = append(q.Categories, c)
		}
	}

	q.Search = sanitizeInput(query.Get("q"))
	if len(q.Search) > MaxSearchLength {
		errs = append(errs, errors.New("search text too long"))
	}

	if len(errs) > 0 {
		return DashboardQuery{}, errors.Join(errs...)
	}
	return q, nil
}

// sanitizeInput trims and removes control characters except tab, newline
// and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
