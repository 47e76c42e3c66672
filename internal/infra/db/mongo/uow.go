package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	domainuser "staybook/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo sessions into the generic unit-of-work interface.
// Write units run inside a server transaction. Snapshot isolation alone does
// not serialize writers that only read each other's documents, so flows with
// a check-then-insert shape (reserve) additionally write through the advert's
// version filter; competing transactions then conflict on the advert document
// and the loser aborts. Read-only units skip the session so independent
// catalog reads may run concurrently.
type Factory struct {
	DB *mongo.Database

	UsersRepo        domainuser.Repository
	AdvertsRepo      domainadvert.Repository
	ReservationsRepo domainreservation.Repository
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	unit := &Unit{
		users:        f.UsersRepo,
		adverts:      f.AdvertsRepo,
		reservations: f.ReservationsRepo,
	}
	if opts.ReadOnly {
		return unit, nil
	}

	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(f.DB.ReadConcern()).
		SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.session = session
	return unit, nil
}

type Unit struct {
	session mongo.Session

	users        domainuser.Repository
	adverts      domainadvert.Repository
	reservations domainreservation.Repository
}

func (u *Unit) Users() domainuser.Repository               { return u.users }
func (u *Unit) Adverts() domainadvert.Repository           { return u.adverts }
func (u *Unit) Reservations() domainreservation.Repository { return u.reservations }

func (u *Unit) Commit(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if u.session == nil {
		return nil
	}
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	if u.session == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, u.session)
}
