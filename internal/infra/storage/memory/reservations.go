package memory

import (
	"context"
	"sync"

	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
)

// ReservationRepository keeps reservations grouped by advert for fast
// conflict lookups.
type ReservationRepository struct {
	mu       sync.RWMutex
	byAdvert map[domainadvert.ID][]*domainreservation.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{byAdvert: make(map[domainadvert.ID][]*domainreservation.Reservation)}
}

func (r *ReservationRepository) ByAdvert(ctx context.Context, advertID domainadvert.ID) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.byAdvert[advertID]
	out := make([]*domainreservation.Reservation, 0, len(stored))
	for _, res := range stored {
		out = append(out, cloneReservation(res))
	}
	return out, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	if res == nil {
		return domainreservation.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byAdvert[res.AdvertID] = append(r.byAdvert[res.AdvertID], cloneReservation(res))
	return nil
}

func cloneReservation(res *domainreservation.Reservation) *domainreservation.Reservation {
	if res == nil {
		return nil
	}
	copyRes := *res
	copyRes.ClearEvents()
	return &copyRes
}
