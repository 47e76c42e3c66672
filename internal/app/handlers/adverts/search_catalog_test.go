package adverts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

type catalogFixture struct {
	factory *memory.Factory
	bus     queries.Bus
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	factory := memory.NewFactory()
	bus := queries.NewInMemoryBus()
	queries.RegisterHandler(bus, SearchCatalogQuery{}.Key(), &SearchCatalogHandler{UoWFactory: factory})
	return &catalogFixture{factory: factory, bus: bus}
}

func (f *catalogFixture) addOwner(t *testing.T, id, username string) {
	t.Helper()
	owner, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(id),
		Username:     username,
		PasswordHash: "hash",
		Email:        username + "@example.com",
		Phone:        "+111",
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.UsersRepo.Save(context.Background(), owner))
}

func (f *catalogFixture) addAdvert(t *testing.T, id, ownerID, city string, price int64) {
	t.Helper()
	ad, err := domainadvert.NewAdvert(domainadvert.CreateParams{
		ID:            domainadvert.ID(id),
		OwnerID:       domainuser.ID(ownerID),
		Title:         "Advert " + id,
		City:          city,
		PricePerNight: price,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.AdvertsRepo.Save(context.Background(), ad))
}

func (f *catalogFixture) addReservation(t *testing.T, id, advertID string, startDay, endDay int) {
	t.Helper()
	stay, err := daterange.New(
		time.Date(2024, time.September, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.September, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:       domainreservation.ID(id),
		UserID:   domainuser.ID("guest"),
		AdvertID: domainadvert.ID(advertID),
		Stay:     stay,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.ReservationsRepo.Save(context.Background(), res))
}

func (f *catalogFixture) search(t *testing.T, filter domainadvert.Filter) []dto.CatalogEntry {
	t.Helper()
	entries, err := queries.Ask[SearchCatalogQuery, []dto.CatalogEntry](context.Background(), f.bus, SearchCatalogQuery{Filter: filter})
	require.NoError(t, err)
	return entries
}

func TestSearchCatalogJoinsOwnerAndReservations(t *testing.T) {
	f := newCatalogFixture(t)
	f.addOwner(t, "owner-1", "alice")
	f.addAdvert(t, "ad-1", "owner-1", "Berlin", 100)
	f.addReservation(t, "res-1", "ad-1", 1, 5)
	f.addReservation(t, "res-2", "ad-1", 10, 12)

	entries := f.search(t, domainadvert.Filter{})
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "ad-1", entry.ID)
	assert.Equal(t, "alice", entry.Owner.Username)
	assert.Equal(t, "alice@example.com", entry.Owner.Email)
	require.Len(t, entry.Reservations, 2)
	dates := map[string]string{}
	for _, r := range entry.Reservations {
		dates[r.StartDate] = r.EndDate
	}
	assert.Equal(t, "2024-09-05", dates["2024-09-01"])
	assert.Equal(t, "2024-09-12", dates["2024-09-10"])
}

func TestSearchCatalogFiltersByCityAndPrice(t *testing.T) {
	f := newCatalogFixture(t)
	f.addOwner(t, "owner-1", "alice")
	f.addAdvert(t, "ad-berlin-cheap", "owner-1", "Berlin", 50)
	f.addAdvert(t, "ad-berlin-dear", "owner-1", "Berlin", 300)
	f.addAdvert(t, "ad-hamburg", "owner-1", "Hamburg", 60)

	entries := f.search(t, domainadvert.Filter{City: "Berlin", MaxPrice: bound(100)})
	require.Len(t, entries, 1)
	assert.Equal(t, "ad-berlin-cheap", entries[0].ID)

	entries = f.search(t, domainadvert.Filter{MinPrice: bound(55), MaxPrice: bound(65)})
	require.Len(t, entries, 1)
	assert.Equal(t, "ad-hamburg", entries[0].ID)

	// an explicit zero bound filters, it is not "unset"
	entries = f.search(t, domainadvert.Filter{MaxPrice: bound(0)})
	assert.Empty(t, entries)
}

func bound(v int64) *int64 {
	return &v
}

func TestSearchCatalogRejectsMalformedCity(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := queries.Ask[SearchCatalogQuery, []dto.CatalogEntry](context.Background(), f.bus, SearchCatalogQuery{
		Filter: domainadvert.Filter{City: `{"$ne": null}`},
	})
	assert.ErrorIs(t, err, domainadvert.ErrInvalidCity)
}

func TestSearchCatalogDanglingOwnerLeavesContactEmpty(t *testing.T) {
	f := newCatalogFixture(t)
	f.addAdvert(t, "ad-1", "ghost-owner", "Berlin", 100)

	entries := f.search(t, domainadvert.Filter{})
	require.Len(t, entries, 1)
	assert.Equal(t, dto.OwnerContact{}, entries[0].Owner)
}

func TestSearchCatalogEmptyResult(t *testing.T) {
	f := newCatalogFixture(t)
	entries := f.search(t, domainadvert.Filter{City: "Nowhere"})
	assert.Empty(t, entries)
}
