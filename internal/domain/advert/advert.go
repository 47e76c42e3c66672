package advert

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/user"
)

var (
	ErrIDRequired      = errors.New("advert: id is required")
	ErrOwnerRequired   = errors.New("advert: owner is required")
	ErrTitleRequired   = errors.New("advert: title is required")
	ErrPriceNegative   = errors.New("advert: price per night must be non-negative")
	ErrInvalidCity     = errors.New("advert: city filter is malformed")
	ErrNotFound        = errors.New("advert: not found")
	ErrConcurrentWrite = errors.New("advert: concurrent update detected")
)

type ID string

// Advert is a rentable property record. Pictures hold opaque object-store
// filenames; the newest uploads sit at the front of the slice.
type Advert struct {
	ID            ID
	OwnerID       user.ID
	Title         string
	Description   string
	Pictures      []string
	Address       string
	City          string
	PricePerNight int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.Recorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Advert, error)
	Save(ctx context.Context, advert *Advert) error
	Delete(ctx context.Context, id ID) error
	Search(ctx context.Context, filter Filter) ([]*Advert, error)
}

type CreateParams struct {
	ID            ID
	OwnerID       user.ID
	Title         string
	Description   string
	Pictures      []string
	Address       string
	City          string
	PricePerNight int64
	Now           time.Time
}

func NewAdvert(params CreateParams) (*Advert, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.OwnerID)) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.PricePerNight < 0 {
		return nil, ErrPriceNegative
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	ad := &Advert{
		ID:            params.ID,
		OwnerID:       params.OwnerID,
		Title:         strings.TrimSpace(params.Title),
		Description:   strings.TrimSpace(params.Description),
		Pictures:      append([]string(nil), params.Pictures...),
		Address:       strings.TrimSpace(params.Address),
		City:          strings.TrimSpace(params.City),
		PricePerNight: params.PricePerNight,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ad.Record(CreatedEvent{AdvertID: ad.ID, OwnerID: ad.OwnerID, At: now})
	return ad, nil
}

// OwnedBy is the ownership predicate gating every mutation.
func (a *Advert) OwnedBy(requester user.ID) bool {
	return a.OwnerID == requester
}

type UpdateParams struct {
	Title         string
	Description   string
	Address       string
	City          string
	PricePerNight int64
	Uploaded      []string
	Deletions     []string
	Now           time.Time
}

// ApplyUpdate replaces the full field set (no partial-patch semantics) and
// reconciles the picture set against the stored one.
func (a *Advert) ApplyUpdate(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.PricePerNight < 0 {
		return ErrPriceNegative
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	a.Title = strings.TrimSpace(params.Title)
	a.Description = strings.TrimSpace(params.Description)
	a.Address = strings.TrimSpace(params.Address)
	a.City = strings.TrimSpace(params.City)
	a.PricePerNight = params.PricePerNight
	a.Pictures = ReconcilePictures(params.Uploaded, params.Deletions, a.Pictures)
	a.UpdatedAt = now
	a.Record(UpdatedEvent{AdvertID: a.ID, At: now})
	return nil
}
