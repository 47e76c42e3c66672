package memory

import (
	"context"
	"sync"

	"staybook/internal/app/uow"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	domainuser "staybook/internal/domain/user"
)

// Factory builds units over shared in-memory repositories. Write units take
// an exclusive lock for their whole lifetime, giving the same serialization
// guarantee a database transaction provides for the reserve conflict check.
type Factory struct {
	writers sync.Mutex

	UsersRepo        *UserRepository
	AdvertsRepo      *AdvertRepository
	ReservationsRepo *ReservationRepository
}

func NewFactory() *Factory {
	return &Factory{
		UsersRepo:        NewUserRepository(),
		AdvertsRepo:      NewAdvertRepository(),
		ReservationsRepo: NewReservationRepository(),
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit := &Unit{factory: f, readOnly: opts.ReadOnly}
	if !opts.ReadOnly {
		f.writers.Lock()
	}
	return unit, nil
}

type Unit struct {
	factory  *Factory
	readOnly bool
	done     bool
}

func (u *Unit) Users() domainuser.Repository               { return u.factory.UsersRepo }
func (u *Unit) Adverts() domainadvert.Repository           { return u.factory.AdvertsRepo }
func (u *Unit) Reservations() domainreservation.Repository { return u.factory.ReservationsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	u.release()
	return nil
}

// Rollback cannot undo applied writes; in-memory mode trades atomicity for
// simplicity and relies on handlers failing before their first write.
func (u *Unit) Rollback(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) release() {
	if u.done || u.readOnly {
		u.done = true
		return
	}
	u.done = true
	u.factory.writers.Unlock()
}

var _ uow.Factory = (*Factory)(nil)
