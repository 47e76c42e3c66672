package reservations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/storage/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	owners []domainuser.Contact
	titles []string
}

func (n *recordingNotifier) ReservationCreated(ctx context.Context, owner domainuser.Contact, advertTitle string, stay daterange.DateRange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.owners = append(n.owners, owner)
	n.titles = append(n.titles, advertTitle)
	return nil
}

type reserveFixture struct {
	factory  *memory.Factory
	outbox   *memory.Outbox
	notifier *recordingNotifier
	bus      commands.Bus
}

func newReserveFixture(t *testing.T) *reserveFixture {
	t.Helper()
	f := &reserveFixture{
		factory:  memory.NewFactory(),
		outbox:   memory.NewOutbox(),
		notifier: &recordingNotifier{},
	}
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, ReserveCommand{}.Key(), &ReserveHandler{
		Outbox:   f.outbox,
		Notifier: f.notifier,
	})
	f.bus = middleware.ChainCommands(base, middleware.Transaction(f.factory, nil))
	return f
}

func (f *reserveFixture) addAdvert(t *testing.T, id, ownerID string) {
	t.Helper()
	ad, err := domainadvert.NewAdvert(domainadvert.CreateParams{
		ID:            domainadvert.ID(id),
		OwnerID:       domainuser.ID(ownerID),
		Title:         "Seaside cottage",
		City:          "Rostock",
		PricePerNight: 80,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.AdvertsRepo.Save(context.Background(), ad))
}

func (f *reserveFixture) reserve(guest string, startDay, endDay int) (*dto.ReservationView, error) {
	cmd := ReserveCommand{
		UserID:   domainuser.ID(guest),
		AdvertID: domainadvert.ID("ad-1"),
		Start:    time.Date(2024, time.October, startDay, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, time.October, endDay, 0, 0, 0, 0, time.UTC),
	}
	return commands.Dispatch[ReserveCommand, *dto.ReservationView](context.Background(), f.bus, cmd)
}

func TestReserveCreatesReservation(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	view, err := f.reserve("guest-1", 10, 15)
	require.NoError(t, err)

	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "guest-1", view.UserID)
	assert.Equal(t, "2024-10-10", view.StartDate)
	assert.Equal(t, "2024-10-15", view.EndDate)

	stored, err := f.factory.ReservationsRepo.ByAdvert(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "reservation.created", records[0].Name)
}

func TestReserveRejectsOverlapOnBoundaryDay(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	_, err := f.reserve("guest-1", 10, 15)
	require.NoError(t, err)

	_, err = f.reserve("guest-2", 15, 20)
	assert.ErrorIs(t, err, domainreservation.ErrConflict)

	stored, err := f.factory.ReservationsRepo.ByAdvert(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestReserveAllowsAdjacentStay(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	_, err := f.reserve("guest-1", 10, 15)
	require.NoError(t, err)

	_, err = f.reserve("guest-2", 16, 20)
	require.NoError(t, err)
}

func TestReserveRejectsInvertedRange(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	_, err := f.reserve("guest-1", 20, 10)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestReserveMissingAdvert(t *testing.T) {
	f := newReserveFixture(t)

	_, err := f.reserve("guest-1", 10, 15)
	assert.ErrorIs(t, err, domainadvert.ErrNotFound)
}

func TestReserveOwnerMayBookOwnAdvert(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	_, err := f.reserve("owner-1", 1, 2)
	assert.NoError(t, err)
}

func TestReserveNotifiesOwner(t *testing.T) {
	f := newReserveFixture(t)
	owner, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID("owner-1"),
		Username:     "bob",
		PasswordHash: "hash",
		Email:        "bob@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.UsersRepo.Save(context.Background(), owner))
	f.addAdvert(t, "ad-1", "owner-1")

	_, err = f.reserve("guest-1", 3, 6)
	require.NoError(t, err)

	require.Len(t, f.notifier.owners, 1)
	assert.Equal(t, "bob@example.com", f.notifier.owners[0].Email)
	assert.Equal(t, "Seaside cottage", f.notifier.titles[0])
}

func TestReserveWritesAdvertThroughVersionFilter(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	before, err := f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)

	_, err = f.reserve("guest-1", 10, 15)
	require.NoError(t, err)

	// each booking bumps the advert version, so overlapping transactions
	// contend on the advert record instead of committing side by side
	after, err := f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, after.Version)

	_, err = f.reserve("guest-2", 20, 22)
	require.NoError(t, err)

	final, err := f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)
	assert.Equal(t, before.Version+2, final.Version)
}

func TestReserveConcurrentOverlapAdmitsExactlyOne(t *testing.T) {
	f := newReserveFixture(t)
	f.addAdvert(t, "ad-1", "owner-1")

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.reserve("guest", 10, 15)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, domainreservation.ErrConflict)
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)

	stored, err := f.factory.ReservationsRepo.ByAdvert(context.Background(), domainadvert.ID("ad-1"))
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
