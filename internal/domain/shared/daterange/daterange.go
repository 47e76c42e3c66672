package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: end date must not precede start date")
)

// DateRange represents a closed interval [Start, End] of calendar days.
// Both boundary days belong to the stay.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: truncateToDay(start), End: truncateToDay(end)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if dr.End.Before(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Overlaps reports whether two closed intervals share at least one day.
// A range ending on day D overlaps a range starting on day D: there is no
// same-day turnover.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !dr.End.Before(other.Start)
}

func (dr DateRange) Contains(other DateRange) bool {
	return !dr.Start.After(other.Start) && !dr.End.Before(other.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = truncateToDay(t)
	return !t.Before(dr.Start) && !t.After(dr.End)
}

// Nights counts the number of nights spent, one fewer than the days covered.
func (dr DateRange) Nights() int {
	return int(dr.End.Sub(dr.Start).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
