package uow

import (
	"context"
	"errors"
)

var ErrUnitOfWorkMissing = errors.New("uow: no unit of work bound to context")

type unitKey struct{}

// WithUnit binds the active unit of work to ctx. The transaction middleware
// installs it before a command handler runs.
func WithUnit(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// Bound reports the unit of work bound to ctx, if any.
func Bound(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}

// Require is Bound for handlers that must not run outside a transaction.
func Require(ctx context.Context) (UnitOfWork, error) {
	unit, ok := Bound(ctx)
	if !ok {
		return nil, ErrUnitOfWorkMissing
	}
	return unit, nil
}
