package core

import (
	"errors"
	"time"
)

// DateLayout is the wire format for ledger dates (YYYY-MM-DD).
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Entry is one ledger row: a single calendar date, the localized weekday
	// label captured at insert time, the fee charged for that day, and the
	// running balance inside the active aggregation window.
	Entry struct {
		Date      Date
		DayOfWeek string
		Price     Money
		Balance   Money
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrDuplicateDate = errors.New("entry already exists for date")
	ErrEntryNotFound = errors.New("entry not found")
)

// ParseDate parses a YYYY-MM-DD string into a Date at UTC midnight.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns now truncated to a UTC calendar date.
func Today(now time.Time) Date {
	y, m, d := now.UTC().Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in the ledger wire format.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the month as 1..12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// ValidMonth reports whether m is a calendar month number.
func ValidMonth(m int) bool {
	return m >= 1 && m <= 12
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return errors.New("amount must be positive")
	}
	return nil
}

// Add returns the sum of the two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (e Entry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.DayOfWeek == "" {
		return errors.New("empty day of week label")
	}
	return e.Price.Validate()
}
