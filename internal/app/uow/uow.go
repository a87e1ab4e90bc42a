package uow

import (
	"context"
	"errors"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/booking"
	"staybook/internal/domain/listings"
)

var ErrConcurrentUpdate = errors.New("uow: concurrent update detected")

type TxOptions struct {
	ReadOnly bool
}

// UnitOfWork scopes repository access to one atomic transaction. Every
// repository obtained from a unit reads and writes inside that transaction;
// nothing is visible to other units until Commit.
type UnitOfWork interface {
	Listings() listings.ListingRepository
	Bookings() booking.Repository
	Availability() availability.Repository
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}
