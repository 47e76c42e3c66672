package adverts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainadvert "staybook/internal/domain/advert"
	domainuser "staybook/internal/domain/user"
)

const (
	createAdvertKey = "adverts.create"
	editAdvertKey   = "adverts.edit"
	deleteAdvertKey = "adverts.delete"
)

// ErrAdvertNotOwned is returned both when the advert does not exist and when
// it belongs to another owner. The two cases are deliberately
// indistinguishable so mutation attempts cannot probe for advert existence.
var ErrAdvertNotOwned = errors.New("adverts: advert not found for owner")

// PictureStore persists uploaded binary content and returns the generated
// unique filename the core keeps as an opaque string.
type PictureStore interface {
	Store(ctx context.Context, reader io.Reader, contentType string) (string, error)
}

// FileUpload is one inbound picture file.
type FileUpload struct {
	Reader      io.Reader
	ContentType string
}

type AdvertPayload struct {
	Title         string
	Description   string
	Address       string
	City          string
	PricePerNight int64
}

type CreateAdvertCommand struct {
	OwnerID domainuser.ID
	Payload AdvertPayload
	Files   []FileUpload
}

func (c CreateAdvertCommand) Key() string { return createAdvertKey }

type CreateAdvertHandler struct {
	Pictures PictureStore
	Outbox   outbox.Outbox
	Logger   *slog.Logger
}

func (h *CreateAdvertHandler) Handle(ctx context.Context, cmd CreateAdvertCommand) (*dto.AdvertDetail, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}

	filenames, err := h.storeFiles(ctx, cmd.Files)
	if err != nil {
		return nil, err
	}

	ad, err := domainadvert.NewAdvert(domainadvert.CreateParams{
		ID:            domainadvert.ID(uuid.NewString()),
		OwnerID:       cmd.OwnerID,
		Title:         cmd.Payload.Title,
		Description:   cmd.Payload.Description,
		Pictures:      filenames,
		Address:       cmd.Payload.Address,
		City:          cmd.Payload.City,
		PricePerNight: cmd.Payload.PricePerNight,
		Now:           time.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Adverts().Save(ctx, ad); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, ad); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("advert created", "advert_id", ad.ID, "owner_id", cmd.OwnerID, "pictures", len(ad.Pictures))
	}
	result := dto.MapAdvertDetail(ad)
	return &result, nil
}

type EditAdvertCommand struct {
	AdvertID    domainadvert.ID
	RequesterID domainuser.ID
	Payload     AdvertPayload
	Files       []FileUpload
	Deletions   []string
}

func (c EditAdvertCommand) Key() string { return editAdvertKey }

type EditAdvertHandler struct {
	Pictures PictureStore
	Outbox   outbox.Outbox
	Logger   *slog.Logger
}

func (h *EditAdvertHandler) Handle(ctx context.Context, cmd EditAdvertCommand) (*dto.AdvertDetail, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}

	ad, err := ownedAdvert(ctx, unit, cmd.AdvertID, cmd.RequesterID)
	if err != nil {
		return nil, err
	}

	uploaded, err := h.storeFiles(ctx, cmd.Files)
	if err != nil {
		return nil, err
	}

	if err := ad.ApplyUpdate(domainadvert.UpdateParams{
		Title:         cmd.Payload.Title,
		Description:   cmd.Payload.Description,
		Address:       cmd.Payload.Address,
		City:          cmd.Payload.City,
		PricePerNight: cmd.Payload.PricePerNight,
		Uploaded:      uploaded,
		Deletions:     cmd.Deletions,
		Now:           time.Now(),
	}); err != nil {
		return nil, err
	}

	if err := unit.Adverts().Save(ctx, ad); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, ad); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("advert updated", "advert_id", ad.ID, "uploaded", len(uploaded), "deleted", len(cmd.Deletions))
	}
	result := dto.MapAdvertDetail(ad)
	return &result, nil
}

type DeleteAdvertCommand struct {
	AdvertID    domainadvert.ID
	RequesterID domainuser.ID
}

func (c DeleteAdvertCommand) Key() string { return deleteAdvertKey }

type DeleteAdvertResult struct {
	AdvertID string `json:"advert_id"`
}

type DeleteAdvertHandler struct {
	Outbox outbox.Outbox
	Logger *slog.Logger
}

// Handle removes the advert row. Reservations referencing it are left in
// place: the original schema defines no cascade and adding one here would
// invent behavior the data model never promised.
func (h *DeleteAdvertHandler) Handle(ctx context.Context, cmd DeleteAdvertCommand) (*DeleteAdvertResult, error) {
	unit, err := uow.Require(ctx)
	if err != nil {
		return nil, err
	}

	ad, err := ownedAdvert(ctx, unit, cmd.AdvertID, cmd.RequesterID)
	if err != nil {
		return nil, err
	}

	if err := unit.Adverts().Delete(ctx, ad.ID); err != nil {
		return nil, err
	}
	ad.Record(domainadvert.DeletedEvent{AdvertID: ad.ID, At: time.Now().UTC()})
	if err := drainEvents(ctx, h.Outbox, ad); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("advert deleted", "advert_id", ad.ID, "owner_id", cmd.RequesterID)
	}
	return &DeleteAdvertResult{AdvertID: string(ad.ID)}, nil
}

// ownedAdvert loads an advert and enforces the ownership guard. Lookup
// failure and ownership mismatch collapse into the same error on purpose.
func ownedAdvert(ctx context.Context, unit uow.UnitOfWork, id domainadvert.ID, requester domainuser.ID) (*domainadvert.Advert, error) {
	ad, err := unit.Adverts().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainadvert.ErrNotFound) {
			return nil, ErrAdvertNotOwned
		}
		return nil, err
	}
	if !ad.OwnedBy(requester) {
		return nil, ErrAdvertNotOwned
	}
	return ad, nil
}

func (h *CreateAdvertHandler) storeFiles(ctx context.Context, files []FileUpload) ([]string, error) {
	return storeFiles(ctx, h.Pictures, files)
}

func (h *EditAdvertHandler) storeFiles(ctx context.Context, files []FileUpload) ([]string, error) {
	return storeFiles(ctx, h.Pictures, files)
}

func storeFiles(ctx context.Context, store PictureStore, files []FileUpload) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if store == nil {
		return nil, errors.New("adverts: picture store unavailable")
	}
	filenames := make([]string, 0, len(files))
	for _, f := range files {
		name, err := store.Store(ctx, f.Reader, f.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store picture: %w", err)
		}
		filenames = append(filenames, name)
	}
	return filenames, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, ad *domainadvert.Advert) error {
	pending := ad.PendingEvents()
	ad.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, nil, pending)
}

var _ commands.Handler[CreateAdvertCommand, *dto.AdvertDetail] = (*CreateAdvertHandler)(nil)
var _ commands.Handler[EditAdvertCommand, *dto.AdvertDetail] = (*EditAdvertHandler)(nil)
var _ commands.Handler[DeleteAdvertCommand, *DeleteAdvertResult] = (*DeleteAdvertHandler)(nil)
