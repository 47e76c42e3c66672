package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainadvert "staybook/internal/domain/advert"
	domainreservation "staybook/internal/domain/reservation"
	"staybook/internal/domain/shared/daterange"
	domainuser "staybook/internal/domain/user"
)

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("reservations")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "advert_id", Value: 1}, {Key: "stay.start", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByAdvert(ctx context.Context, advertID domainadvert.ID) ([]*domainreservation.Reservation, error) {
	cursor, err := r.col.Find(ctx, bson.M{"advert_id": string(advertID)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainreservation.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

// Save inserts the reservation. Reservations are immutable, so there is no
// update path.
func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	_, err := r.col.InsertOne(ctx, newReservationDocument(res))
	return err
}

type reservationDocument struct {
	ID        string       `bson:"_id"`
	UserID    string       `bson:"user_id"`
	AdvertID  string       `bson:"advert_id"`
	Stay      stayDocument `bson:"stay"`
	CreatedAt int64        `bson:"created_at"`
}

type stayDocument struct {
	Start int64 `bson:"start"`
	End   int64 `bson:"end"`
}

func newReservationDocument(r *domainreservation.Reservation) reservationDocument {
	return reservationDocument{
		ID:        string(r.ID),
		UserID:    string(r.UserID),
		AdvertID:  string(r.AdvertID),
		Stay:      stayDocument{Start: r.Stay.Start.UnixMilli(), End: r.Stay.End.UnixMilli()},
		CreatedAt: r.CreatedAt.UnixMilli(),
	}
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	return &domainreservation.Reservation{
		ID:        domainreservation.ID(d.ID),
		UserID:    domainuser.ID(d.UserID),
		AdvertID:  domainadvert.ID(d.AdvertID),
		Stay:      daterange.DateRange{Start: timestampToTime(d.Stay.Start), End: timestampToTime(d.Stay.End)},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}
