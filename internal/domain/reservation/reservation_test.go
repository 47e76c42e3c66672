package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/advert"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/user"
)

func stay(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(
		time.Date(2024, time.January, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return dr
}

func reservationFor(t *testing.T, startDay, endDay int) *Reservation {
	t.Helper()
	res, err := NewReservation(CreateParams{
		ID:       ID("res-1"),
		UserID:   user.ID("guest"),
		AdvertID: advert.ID("ad-1"),
		Stay:     stay(t, startDay, endDay),
	})
	require.NoError(t, err)
	return res
}

func TestNewReservationValidatesStay(t *testing.T) {
	_, err := NewReservation(CreateParams{
		ID:       ID("res-1"),
		UserID:   user.ID("guest"),
		AdvertID: advert.ID("ad-1"),
		Stay: daterange.DateRange{
			Start: time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		},
	})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestNewReservationRequiresIdentity(t *testing.T) {
	_, err := NewReservation(CreateParams{ID: ID("res-1"), AdvertID: advert.ID("ad-1"), Stay: stay(t, 1, 2)})
	assert.ErrorIs(t, err, ErrUserRequired)

	_, err = NewReservation(CreateParams{ID: ID("res-1"), UserID: user.ID("guest"), Stay: stay(t, 1, 2)})
	assert.ErrorIs(t, err, ErrAdvertRequired)
}

func TestNewReservationRecordsCreatedEvent(t *testing.T) {
	res := reservationFor(t, 10, 15)
	events := res.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "reservation.created", events[0].EventName())
	assert.Equal(t, "ad-1", events[0].AggregateID())
}

func TestHasConflictSharedBoundary(t *testing.T) {
	existing := []*Reservation{reservationFor(t, 10, 15)}
	assert.True(t, HasConflict(existing, stay(t, 15, 20)))
}

func TestHasConflictDisjoint(t *testing.T) {
	existing := []*Reservation{reservationFor(t, 10, 15)}
	assert.False(t, HasConflict(existing, stay(t, 16, 20)))
}

func TestHasConflictContained(t *testing.T) {
	existing := []*Reservation{reservationFor(t, 10, 20)}
	assert.True(t, HasConflict(existing, stay(t, 12, 13)))
}

func TestHasConflictEmptyCalendar(t *testing.T) {
	assert.False(t, HasConflict(nil, stay(t, 1, 31)))
}

func TestHasConflictScansAllReservations(t *testing.T) {
	existing := []*Reservation{
		reservationFor(t, 1, 3),
		reservationFor(t, 10, 15),
		reservationFor(t, 20, 25),
	}
	assert.True(t, HasConflict(existing, stay(t, 14, 17)))
	assert.False(t, HasConflict(existing, stay(t, 5, 8)))
}
