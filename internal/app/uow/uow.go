package uow

import (
	"context"

	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	domainuser "staybook/internal/domain/user"
)

// UnitOfWork coordinates repositories inside one transaction boundary.
// The reservation conflict check and insert always share a single unit, which
// closes the check-then-act race of concurrent reserve calls.
type UnitOfWork interface {
	Users() domainuser.Repository
	Adverts() domainadvert.Repository
	Reservations() domainreservation.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
