package adverts

import (
	"context"
	"fmt"
	"io"
	"strings"
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

type fakePictureStore struct {
	stored int
}

func (f *fakePictureStore) Store(ctx context.Context, reader io.Reader, contentType string) (string, error) {
	if reader != nil {
		_, _ = io.Copy(io.Discard, reader)
	}
	f.stored++
	return fmt.Sprintf("pic-%d.jpg", f.stored), nil
}

type advertFixture struct {
	factory  *memory.Factory
	outbox   *memory.Outbox
	pictures *fakePictureStore
	bus      commands.Bus
}

func newAdvertFixture(t *testing.T) *advertFixture {
	t.Helper()
	f := &advertFixture{
		factory:  memory.NewFactory(),
		outbox:   memory.NewOutbox(),
		pictures: &fakePictureStore{},
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, CreateAdvertCommand{}.Key(), &CreateAdvertHandler{
		Pictures: f.pictures,
		Outbox:   f.outbox,
	})
	commands.RegisterHandler(base, EditAdvertCommand{}.Key(), &EditAdvertHandler{
		Pictures: f.pictures,
		Outbox:   f.outbox,
	})
	commands.RegisterHandler(base, DeleteAdvertCommand{}.Key(), &DeleteAdvertHandler{
		Outbox: f.outbox,
	})

	f.bus = middleware.ChainCommands(base, middleware.Transaction(f.factory, nil))
	return f
}

func (f *advertFixture) createAdvert(t *testing.T, owner string, files int) *dto.AdvertDetail {
	t.Helper()
	cmd := CreateAdvertCommand{
		OwnerID: domainuser.ID(owner),
		Payload: AdvertPayload{
			Title:         "Cozy flat",
			Description:   "Two rooms near the river",
			Address:       "Hauptstrasse 5",
			City:          "Berlin",
			PricePerNight: 90,
		},
	}
	for i := 0; i < files; i++ {
		cmd.Files = append(cmd.Files, FileUpload{
			Reader:      strings.NewReader("image-bytes"),
			ContentType: "image/jpeg",
		})
	}
	detail, err := commands.Dispatch[CreateAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, cmd)
	require.NoError(t, err)
	return detail
}

func TestCreateAdvertStoresPicturesAndRecordsEvent(t *testing.T) {
	f := newAdvertFixture(t)

	detail := f.createAdvert(t, "owner-1", 2)

	assert.NotEmpty(t, detail.ID)
	assert.Equal(t, "owner-1", detail.OwnerID)
	assert.Equal(t, []string{"pic-1.jpg", "pic-2.jpg"}, detail.Pictures)

	stored, err := f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID(detail.ID))
	require.NoError(t, err)
	assert.Equal(t, detail.Pictures, stored.Pictures)

	records := f.outbox.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "advert.created", records[0].Name)
}

func TestCreateAdvertRejectsBlankTitle(t *testing.T) {
	f := newAdvertFixture(t)

	_, err := commands.Dispatch[CreateAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, CreateAdvertCommand{
		OwnerID: domainuser.ID("owner-1"),
		Payload: AdvertPayload{Title: "   ", PricePerNight: 10},
	})
	assert.ErrorIs(t, err, domainadvert.ErrTitleRequired)
}

func TestEditAdvertReconcilesPictures(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 2)

	edited, err := commands.Dispatch[EditAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, EditAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("owner-1"),
		Payload: AdvertPayload{
			Title:         "Renovated flat",
			Description:   "Fresh paint",
			Address:       "Hauptstrasse 5",
			City:          "Berlin",
			PricePerNight: 110,
		},
		Files:     []FileUpload{{Reader: strings.NewReader("new"), ContentType: "image/png"}},
		Deletions: []string{"pic-1.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renovated flat", edited.Title)
	assert.Equal(t, int64(110), edited.PricePerNight)
	assert.Equal(t, []string{"pic-3.jpg", "pic-2.jpg"}, edited.Pictures)
}

func TestEditAdvertReplacesFullFieldSet(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	edited, err := commands.Dispatch[EditAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, EditAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("owner-1"),
		Payload:     AdvertPayload{Title: "Only title kept", PricePerNight: 75},
	})
	require.NoError(t, err)

	assert.Empty(t, edited.Description)
	assert.Empty(t, edited.Address)
	assert.Empty(t, edited.City)
}

func TestEditAdvertByNonOwnerFails(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	_, err := commands.Dispatch[EditAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, EditAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("intruder"),
		Payload:     AdvertPayload{Title: "Hijacked", PricePerNight: 1},
	})
	assert.ErrorIs(t, err, ErrAdvertNotOwned)

	stored, err := f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID(detail.ID))
	require.NoError(t, err)
	assert.Equal(t, "Cozy flat", stored.Title)
}

func TestEditMissingAdvertReportsSameErrorAsForeign(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	_, missingErr := commands.Dispatch[EditAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, EditAdvertCommand{
		AdvertID:    domainadvert.ID("does-not-exist"),
		RequesterID: domainuser.ID("owner-1"),
		Payload:     AdvertPayload{Title: "x", PricePerNight: 1},
	})
	_, foreignErr := commands.Dispatch[EditAdvertCommand, *dto.AdvertDetail](context.Background(), f.bus, EditAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("someone-else"),
		Payload:     AdvertPayload{Title: "x", PricePerNight: 1},
	})

	assert.ErrorIs(t, missingErr, ErrAdvertNotOwned)
	assert.ErrorIs(t, foreignErr, ErrAdvertNotOwned)
	assert.Equal(t, missingErr.Error(), foreignErr.Error())
}

func TestDeleteAdvert(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	result, err := commands.Dispatch[DeleteAdvertCommand, *DeleteAdvertResult](context.Background(), f.bus, DeleteAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("owner-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, detail.ID, result.AdvertID)

	_, err = f.factory.AdvertsRepo.ByID(context.Background(), domainadvert.ID(detail.ID))
	assert.ErrorIs(t, err, domainadvert.ErrNotFound)
}

func TestDeleteAdvertByNonOwnerFails(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	_, err := commands.Dispatch[DeleteAdvertCommand, *DeleteAdvertResult](context.Background(), f.bus, DeleteAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("intruder"),
	})
	assert.ErrorIs(t, err, ErrAdvertNotOwned)
}

func TestDeleteAdvertLeavesReservationsInPlace(t *testing.T) {
	f := newAdvertFixture(t)
	detail := f.createAdvert(t, "owner-1", 0)

	stay, err := daterange.New(
		time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.August, 5, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	res, err := domainreservation.NewReservation(domainreservation.CreateParams{
		ID:       domainreservation.ID("res-1"),
		UserID:   domainuser.ID("guest"),
		AdvertID: domainadvert.ID(detail.ID),
		Stay:     stay,
	})
	require.NoError(t, err)
	require.NoError(t, f.factory.ReservationsRepo.Save(context.Background(), res))

	_, err = commands.Dispatch[DeleteAdvertCommand, *DeleteAdvertResult](context.Background(), f.bus, DeleteAdvertCommand{
		AdvertID:    domainadvert.ID(detail.ID),
		RequesterID: domainuser.ID("owner-1"),
	})
	require.NoError(t, err)

	remaining, err := f.factory.ReservationsRepo.ByAdvert(context.Background(), domainadvert.ID(detail.ID))
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
