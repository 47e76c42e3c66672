package dto

import (
	"time"

	domainuser "staybook/internal/domain/user"
)

// AuthResponse is returned by register and login.
type AuthResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

type UserProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	if u == nil {
		return AuthResponse{Token: token}
	}
	return AuthResponse{UserID: string(u.ID), Username: u.Username, Token: token}
}
