package user

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrUsernameRequired    = errors.New("user: username is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrInvalidEmail        = errors.New("user: email is malformed")
	ErrUsernameTaken       = errors.New("user: username already in use")
	ErrNotFound            = errors.New("user: not found")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ID string

type User struct {
	ID           ID
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	CreatedAt    time.Time
}

// Contact is the owner information joined into advert catalog entries.
type Contact struct {
	Username string
	Email    string
	Phone    string
}

func (u *User) Contact() Contact {
	return Contact{Username: u.Username, Email: u.Email, Phone: u.Phone}
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}

	return &User{
		ID:           ID(id),
		Username:     username,
		PasswordHash: params.PasswordHash,
		Email:        email,
		Phone:        strings.TrimSpace(params.Phone),
		CreatedAt:    now.UTC(),
	}, nil
}
