package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainadvert "staybook/internal/domain/advert"
	domainuser "staybook/internal/domain/user"
)

// writeConflictCode is the server error code raised when a transaction
// touches a document another committed transaction already modified.
const writeConflictCode = 112

type AdvertRepository struct {
	col *mongo.Collection
}

func NewAdvertRepository(db *mongo.Database) *AdvertRepository {
	return &AdvertRepository{col: db.Collection("adverts")}
}

func (r *AdvertRepository) ByID(ctx context.Context, id domainadvert.ID) (*domainadvert.Advert, error) {
	var doc advertDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainadvert.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts the full document: an edit always writes the complete field
// set plus the reconciled picture list in one statement. The version filter
// rejects lost updates; inside a transaction a competing committed write on
// the same advert surfaces as a write conflict and is reported the same way.
func (r *AdvertRepository) Save(ctx context.Context, ad *domainadvert.Advert) error {
	doc := newAdvertDocument(ad)
	filter := bson.M{"_id": doc.ID, "version": ad.Version}
	doc.Version = ad.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) || isWriteConflict(err) {
			return domainadvert.ErrConcurrentWrite
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domainadvert.ErrConcurrentWrite
	}
	ad.Version = doc.Version
	return nil
}

func isWriteConflict(err error) bool {
	var srvErr mongo.ServerError
	if !errors.As(err, &srvErr) {
		return false
	}
	return srvErr.HasErrorCode(writeConflictCode) || srvErr.HasErrorLabel("TransientTransactionError")
}

func (r *AdvertRepository) Delete(ctx context.Context, id domainadvert.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainadvert.ErrNotFound
	}
	return nil
}

// Search builds a structured filter document. Predicate values are never
// interpolated into query text.
func (r *AdvertRepository) Search(ctx context.Context, filter domainadvert.Filter) ([]*domainadvert.Advert, error) {
	query := bson.M{}
	if filter.City != "" {
		query["city"] = filter.City
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price_per_night"] = price
	}

	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*domainadvert.Advert
	for cursor.Next(ctx) {
		var doc advertDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type advertDocument struct {
	ID            string   `bson:"_id"`
	OwnerID       string   `bson:"owner_id"`
	Title         string   `bson:"title"`
	Description   string   `bson:"description"`
	Pictures      []string `bson:"pictures"`
	Address       string   `bson:"address"`
	City          string   `bson:"city"`
	PricePerNight int64    `bson:"price_per_night"`
	CreatedAt     int64    `bson:"created_at"`
	UpdatedAt     int64    `bson:"updated_at"`
	Version       int64    `bson:"version"`
}

func newAdvertDocument(a *domainadvert.Advert) advertDocument {
	return advertDocument{
		ID:            string(a.ID),
		OwnerID:       string(a.OwnerID),
		Title:         a.Title,
		Description:   a.Description,
		Pictures:      append([]string(nil), a.Pictures...),
		Address:       a.Address,
		City:          a.City,
		PricePerNight: a.PricePerNight,
		CreatedAt:     a.CreatedAt.UnixMilli(),
		UpdatedAt:     a.UpdatedAt.UnixMilli(),
		Version:       a.Version,
	}
}

func (d advertDocument) toAggregate() *domainadvert.Advert {
	return &domainadvert.Advert{
		ID:            domainadvert.ID(d.ID),
		OwnerID:       domainuser.ID(d.OwnerID),
		Title:         d.Title,
		Description:   d.Description,
		Pictures:      append([]string(nil), d.Pictures...),
		Address:       d.Address,
		City:          d.City,
		PricePerNight: d.PricePerNight,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
