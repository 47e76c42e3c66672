package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/advert"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/user"
)

var (
	ErrIDRequired     = errors.New("reservation: id is required")
	ErrUserRequired   = errors.New("reservation: user is required")
	ErrAdvertRequired = errors.New("reservation: advert is required")
	ErrConflict       = errors.New("reservation: dates overlap an existing reservation")
	ErrNotFound       = errors.New("reservation: not found")
)

type ID string

// Reservation is an immutable booking of an advert for a closed date range.
type Reservation struct {
	ID        ID
	UserID    user.ID
	AdvertID  advert.ID
	Stay      daterange.DateRange
	CreatedAt time.Time
	events.Recorder
}

type Repository interface {
	ByAdvert(ctx context.Context, advertID advert.ID) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
}

type CreateParams struct {
	ID       ID
	UserID   user.ID
	AdvertID advert.ID
	Stay     daterange.DateRange
	Now      time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(string(params.AdvertID)) == "" {
		return nil, ErrAdvertRequired
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	r := &Reservation{
		ID:        params.ID,
		UserID:    params.UserID,
		AdvertID:  params.AdvertID,
		Stay:      params.Stay,
		CreatedAt: now,
	}
	r.Record(CreatedEvent{ReservationID: r.ID, AdvertID: r.AdvertID, UserID: r.UserID, Start: r.Stay.Start, End: r.Stay.End, At: now})
	return r, nil
}

// HasConflict scans the advert's existing reservations for an overlapping
// stay. Adverts carry few reservations, so a linear scan is sufficient.
func HasConflict(existing []*Reservation, stay daterange.DateRange) bool {
	for _, r := range existing {
		if r.Stay.Overlaps(stay) {
			return true
		}
	}
	return false
}
