package adverts

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainadvert "staybook/internal/domain/advert"
	domainuser "staybook/internal/domain/user"
)

const searchCatalogKey = "adverts.catalog"

// SearchCatalogQuery filters the public advert catalog.
type SearchCatalogQuery struct {
	Filter domainadvert.Filter
}

func (q SearchCatalogQuery) Key() string { return searchCatalogKey }

type SearchCatalogHandler struct {
	UoWFactory uow.Factory
}

// Handle matches adverts against the filter, then joins each hit with its
// owner contact and full reservation list. The per-advert lookups are
// independent reads and fan out concurrently; the response is assembled only
// after every lookup finished.
func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) ([]dto.CatalogEntry, error) {
	unit, ok := uow.Bound(ctx)
	if !ok {
		if h.UoWFactory == nil {
			return nil, uow.ErrUnitOfWorkMissing
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
		if err != nil {
			return nil, err
		}
		ctx = uow.WithUnit(ctx, unit)
		defer unit.Rollback(ctx)
	}

	filter, err := q.Filter.Normalized()
	if err != nil {
		return nil, err
	}

	matches, err := unit.Adverts().Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.CatalogEntry, len(matches))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, ad := range matches {
		group.Go(func() error {
			reservations, err := unit.Reservations().ByAdvert(groupCtx, ad.ID)
			if err != nil {
				return err
			}
			var contact domainuser.Contact
			owner, err := unit.Users().ByID(groupCtx, ad.OwnerID)
			switch {
			case err == nil:
				contact = owner.Contact()
			case errors.Is(err, domainuser.ErrNotFound):
				// owner reference is weak; a dangling one leaves contact empty
			default:
				return err
			}
			entries[i] = dto.MapCatalogEntry(ad, contact, reservations)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ queries.Handler[SearchCatalogQuery, []dto.CatalogEntry] = (*SearchCatalogHandler)(nil)
