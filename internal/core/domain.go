package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Raw row field names as they appear in the ledger header.
const (
	FieldDate        = "Date"
	FieldCategory    = "Category"
	FieldAmount      = "Amount"
	FieldDescription = "Description"
)

// DefaultDescription is used when a row carries no description.
const DefaultDescription = "No description"

const (
	Need Classification = "Need"
	Want Classification = "Want"
)

const (
	Day   TimeGranularity = "day"
	Week  TimeGranularity = "week"
	Month TimeGranularity = "month"
)

type (
	// Classification tags a category as essential or discretionary.
	Classification string

	// TimeGranularity selects the bucket key used for time series.
	TimeGranularity string

	// RawRow is one ledger row keyed by header name, before normalization.
	RawRow map[string]string

	// Date is a calendar date anchored at noon UTC. The zero value means
	// "no date", which is how fixed expenses are represented.
	Date struct {
		time.Time
	}

	// Transaction is the canonical ledger entry produced by normalization.
	Transaction struct {
		Date           Date    `json:"date"`
		Category       string  `json:"category"`
		Amount         float64 `json:"amount"`
		Description    string  `json:"description"`
		IsFixedExpense bool    `json:"isFixedExpense"`
	}

	// BudgetMap maps a category to its monthly budget ceiling.
	BudgetMap map[string]float64

	// NeedsWantsMap maps a category to its classification.
	NeedsWantsMap map[string]Classification

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}
)

var (
	ErrBlankRow           = errors.New("blank row")
	ErrEmptyCategory      = errors.New("empty category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDay         = errors.New("invalid day")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidGranularity = errors.New("invalid time granularity")
	ErrDateAndFixed       = errors.New("transaction cannot have both a date and the fixed flag")
	ErrNoDateNotFixed     = errors.New("transaction without a date must be a fixed expense")
)

// Get returns the trimmed value of a field, or "" when missing.
func (r RawRow) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// IsBlank reports whether every field in the row is empty or whitespace.
func (r RawRow) IsBlank() bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// NewDate creates a new Date from year, month, day at noon UTC.
// Out-of-range parts are normalized the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)}
}

// NewValidDate is like NewDate but rejects parts that do not name a real
// calendar day (e.g. 02/30).
func NewValidDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, ErrInvalidMonth
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return Date{}, ErrInvalidDay
	}
	return NewDate(year, month, day), nil
}

// DateOf re-anchors the calendar day of t (in t's own location) at noon UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// IsEmpty returns true if the date is absent.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	return !d.IsEmpty() && !o.IsEmpty() &&
		d.Year() == o.Year() && d.Month() == o.Month() && d.Day() == o.Day()
}

// String renders the date as YYYY-MM-DD, or "" when absent.
func (d Date) String() string {
	if d.IsEmpty() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON encodes an absent date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts null or YYYY-MM-DD.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*d = DateOf(t)
	return nil
}

// Validate checks the date/fixed invariant and the basic field rules.
func (t Transaction) Validate() error {
	if !t.Date.IsEmpty() && t.IsFixedExpense {
		return ErrDateAndFixed
	}
	if t.Date.IsEmpty() && !t.IsFixedExpense {
		return ErrNoDateNotFixed
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Total sums every configured budget.
func (b BudgetMap) Total() float64 {
	var total float64
	for _, v := range b {
		total += v
	}
	return total
}

// Categories returns the configured category names.
func (b BudgetMap) Categories() []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	return out
}

// Classify returns the classification for a category; unknown categories are wants.
func (m NeedsWantsMap) Classify(category string) Classification {
	if c, ok := m[category]; ok && c == Need {
		return Need
	}
	return Want
}

// ParseClassification accepts "need"/"want" in any case.
func ParseClassification(s string) (Classification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "need":
		return Need, nil
	case "want", "":
		return Want, nil
	default:
		return "", fmt.Errorf("invalid classification %q: must be Need or Want", s)
	}
}

// IsValid reports whether g is one of day, week or month.
func (g TimeGranularity) IsValid() bool {
	switch g {
	case Day, Week, Month:
		return true
	default:
		return false
	}
}

// ParseGranularity parses day/week/month; empty input means day.
func ParseGranularity(s string) (TimeGranularity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Day, nil
	}
	g := TimeGranularity(s)
	if !g.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
	}
	return g, nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// YearMonthOf returns the month containing t (in t's own location).
func YearMonthOf(t time.Time) YearMonth {
	y, m, _ := t.Date()
	return YearMonth{Year: y, Month: m}
}

// ParseYearMonth accepts "YYYY-M" or "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil || y < 1 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: y, Month: time.Month(m)}, nil
}

// IsZero reports whether the month is unset.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Start is midnight UTC of the first day of the month.
func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the last instant of the last day of the month, UTC.
func (ym YearMonth) End() time.Time {
	return ym.Start().AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Days returns the number of days in the month.
func (ym YearMonth) Days() int {
	return DaysIn(ym.Year, ym.Month)
}

// AddMonths moves n months forward (negative n moves back).
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 12, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether the date falls within the month.
func (ym YearMonth) Contains(d Date) bool {
	return !d.IsEmpty() && d.Year() == ym.Year && d.Month() == int(ym.Month)
}

// String renders the month as YYYY-M (no zero padding).
func (ym YearMonth) String() string {
	return fmt.Sprintf("%d-%d", ym.Year, int(ym.Month))
}

// Label renders the month as "January 2025".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", ym.Month.String(), ym.Year)
}

// MarshalJSON encodes the month as "YYYY-M".
func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(ym.String())
}
