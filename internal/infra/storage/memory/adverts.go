package memory

import (
	"context"
	"sync"

	domainadvert "staybook/internal/domain/advert"
)

// AdvertRepository is an in-memory implementation for tests and dev mode.
type AdvertRepository struct {
	mu    sync.RWMutex
	items map[domainadvert.ID]*domainadvert.Advert
}

func NewAdvertRepository() *AdvertRepository {
	return &AdvertRepository{items: make(map[domainadvert.ID]*domainadvert.Advert)}
}

func (r *AdvertRepository) ByID(ctx context.Context, id domainadvert.ID) (*domainadvert.Advert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ad, ok := r.items[id]
	if !ok {
		return nil, domainadvert.ErrNotFound
	}
	return cloneAdvert(ad), nil
}

// Save mirrors the Mongo repository's optimistic locking: a write carrying a
// stale version is rejected, a stored write bumps the version.
func (r *AdvertRepository) Save(ctx context.Context, ad *domainadvert.Advert) error {
	if ad == nil {
		return domainadvert.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[ad.ID]; ok && existing.Version != ad.Version {
		return domainadvert.ErrConcurrentWrite
	}
	stored := cloneAdvert(ad)
	stored.Version = ad.Version + 1
	r.items[ad.ID] = stored
	ad.Version = stored.Version
	return nil
}

func (r *AdvertRepository) Delete(ctx context.Context, id domainadvert.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainadvert.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *AdvertRepository) Search(ctx context.Context, filter domainadvert.Filter) ([]*domainadvert.Advert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domainadvert.Advert
	for _, ad := range r.items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if filter.Matches(ad) {
			matches = append(matches, cloneAdvert(ad))
		}
	}
	return matches, nil
}

func cloneAdvert(a *domainadvert.Advert) *domainadvert.Advert {
	if a == nil {
		return nil
	}
	copyAd := *a
	copyAd.Pictures = append([]string(nil), a.Pictures...)
	copyAd.ClearEvents()
	return &copyAd
}
