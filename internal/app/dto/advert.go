package dto

import (
	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	domainuser "staybook/internal/domain/user"
)

const dateLayout = "2006-01-02"

// OwnerContact is the advert owner's public contact surface.
type OwnerContact struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ReservationView renders a reservation with calendar-day precision.
type ReservationView struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	AdvertID  string `json:"advert_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// AdvertDetail is the owner-facing result of create/edit commands.
type AdvertDetail struct {
	ID            string   `json:"id"`
	OwnerID       string   `json:"owner_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Pictures      []string `json:"pictures"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	PricePerNight int64    `json:"price_per_night"`
}

// CatalogEntry is one advert in the public catalog, annotated with owner
// contact and the full reservation list.
type CatalogEntry struct {
	AdvertDetail
	Owner        OwnerContact      `json:"owner"`
	Reservations []ReservationView `json:"reservations"`
}

func MapAdvertDetail(a *domainadvert.Advert) AdvertDetail {
	if a == nil {
		return AdvertDetail{}
	}
	return AdvertDetail{
		ID:            string(a.ID),
		OwnerID:       string(a.OwnerID),
		Title:         a.Title,
		Description:   a.Description,
		Pictures:      append([]string(nil), a.Pictures...),
		Address:       a.Address,
		City:          a.City,
		PricePerNight: a.PricePerNight,
	}
}

func MapReservationView(r *domainreservation.Reservation) ReservationView {
	if r == nil {
		return ReservationView{}
	}
	return ReservationView{
		ID:        string(r.ID),
		UserID:    string(r.UserID),
		AdvertID:  string(r.AdvertID),
		StartDate: r.Stay.Start.Format(dateLayout),
		EndDate:   r.Stay.End.Format(dateLayout),
	}
}

func MapCatalogEntry(a *domainadvert.Advert, owner domainuser.Contact, reservations []*domainreservation.Reservation) CatalogEntry {
	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, MapReservationView(r))
	}
	return CatalogEntry{
		AdvertDetail: MapAdvertDetail(a),
		Owner:        OwnerContact{Username: owner.Username, Email: owner.Email, Phone: owner.Phone},
		Reservations: views,
	}
}
