package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "staybook/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection("users")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &UserRepository{col: col}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save inserts the user. The unique index on username turns a duplicate
// registration into ErrUsernameTaken without a separate existence probe.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	_, err := r.col.InsertOne(ctx, newUserDocument(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrUsernameTaken
		}
		return err
	}
	return nil
}

type userDocument struct {
	ID           string `bson:"_id"`
	Username     string `bson:"username"`
	PasswordHash string `bson:"password_hash"`
	Email        string `bson:"email"`
	Phone        string `bson:"phone"`
	CreatedAt    int64  `bson:"created_at"`
}

func newUserDocument(u *domainuser.User) userDocument {
	return userDocument{
		ID:           string(u.ID),
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Email:        u.Email,
		Phone:        u.Phone,
		CreatedAt:    u.CreatedAt.UnixMilli(),
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Email:        d.Email,
		Phone:        d.Phone,
		CreatedAt:    timestampToTime(d.CreatedAt),
	}
}
