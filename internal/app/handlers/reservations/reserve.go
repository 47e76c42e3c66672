package reservations

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

const reserveKey = "reservations.reserve"

// OwnerNotifier tells the advert owner about a new reservation. Best effort:
// a failed notification never fails the booking.
type OwnerNotifier interface {
	ReservationCreated(ctx context.Context, owner domainuser.Contact, advertTitle string, stay daterange.DateRange) error
}

type ReserveCommand struct {
	UserID   domainuser.ID
	AdvertID domainadvert.ID
	Start    time.Time
	End      time.Time
}

func (c ReserveCommand) Key() string { return reserveKey }

type ReserveHandler struct {
	Outbox   outbox.Outbox
	Notifier OwnerNotifier
	Logger   *slog.Logger
}

// Handle books the advert for the requested stay. The conflict scan, an
// advert version bump and the insert run inside one unit of work, so of two
// concurrent overlapping requests at most one commits.
func (h *ReserveHandler) Handle(ctx context.Context, cmd ReserveCommand) (*dto.ReservationView, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}

	stay, err := daterange.New(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	ad, err := unit.Adverts().ByID(ctx, cmd.AdvertID)
	if err != nil {
		return nil, err
	}

	existing, err := unit.Reservations().ByAdvert(ctx, ad.ID)
	if err != nil {
		return nil, err
	}
	if domainreservation.HasConflict(existing, stay) {
		return nil, domainreservation.ErrConflict
	}

	// Write the advert back through its version filter. Snapshot transactions
	// only collide on documents both writers touch, so concurrent bookings of
	// the same advert must contend on the advert record: the loser aborts with
	// ErrConcurrentWrite instead of committing past the conflict scan.
	if err := unit.Adverts().Save(ctx, ad); err != nil {
		return nil, err
	}

	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:       domainreservation.ID(uuid.NewString()),
		UserID:   cmd.UserID,
		AdvertID: ad.ID,
		Stay:     stay,
		Now:      time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Reservations().Save(ctx, res); err != nil {
		return nil, err
	}
	pending := res.PendingEvents()
	res.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, nil, pending); err != nil {
		return nil, err
	}

	h.notifyOwner(ctx, unit, ad, stay)

	if h.Logger != nil {
		h.Logger.Info("reservation created", "reservation_id", res.ID, "advert_id", ad.ID, "user_id", cmd.UserID)
	}
	view := dto.MapReservationView(res)
	return &view, nil
}

func (h *ReserveHandler) notifyOwner(ctx context.Context, unit uow.UnitOfWork, ad *domainadvert.Advert, stay daterange.DateRange) {
	if h.Notifier == nil {
		return
	}
	owner, err := unit.Users().ByID(ctx, ad.OwnerID)
	if err != nil {
		if !errors.Is(err, domainuser.ErrNotFound) && h.Logger != nil {
			h.Logger.Warn("owner lookup for notification failed", "advert_id", ad.ID, "error", err)
		}
		return
	}
	if err := h.Notifier.ReservationCreated(ctx, owner.Contact(), ad.Title, stay); err != nil && h.Logger != nil {
		h.Logger.Warn("owner notification failed", "advert_id", ad.ID, "error", err)
	}
}

var _ commands.Handler[ReserveCommand, *dto.ReservationView] = (*ReserveHandler)(nil)
