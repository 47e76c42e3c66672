package advert

import (
	"time"

	"staybook/internal/domain/user"
)

type CreatedEvent struct {
	AdvertID ID        `json:"advert_id"`
	OwnerID  user.ID   `json:"owner_id"`
	At       time.Time `json:"at"`
}

func (e CreatedEvent) EventName() string     { return "advert.created" }
func (e CreatedEvent) AggregateID() string   { return string(e.AdvertID) }
func (e CreatedEvent) OccurredAt() time.Time { return e.At }

type UpdatedEvent struct {
	AdvertID ID        `json:"advert_id"`
	At       time.Time `json:"at"`
}

func (e UpdatedEvent) EventName() string     { return "advert.updated" }
func (e UpdatedEvent) AggregateID() string   { return string(e.AdvertID) }
func (e UpdatedEvent) OccurredAt() time.Time { return e.At }

type DeletedEvent struct {
	AdvertID ID        `json:"advert_id"`
	At       time.Time `json:"at"`
}

func (e DeletedEvent) EventName() string     { return "advert.deleted" }
func (e DeletedEvent) AggregateID() string   { return string(e.AdvertID) }
func (e DeletedEvent) OccurredAt() time.Time { return e.At }
