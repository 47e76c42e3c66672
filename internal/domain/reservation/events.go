package reservation

import (
	"time"

	"staybook/internal/domain/advert"
	"staybook/internal/domain/user"
)

type CreatedEvent struct {
	ReservationID ID        `json:"reservation_id"`
	AdvertID      advert.ID `json:"advert_id"`
	UserID        user.ID   `json:"user_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	At            time.Time `json:"at"`
}

func (e CreatedEvent) EventName() string     { return "reservation.created" }
func (e CreatedEvent) AggregateID() string   { return string(e.AdvertID) }
func (e CreatedEvent) OccurredAt() time.Time { return e.At }
