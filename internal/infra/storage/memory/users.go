package memory

import (
	"context"
	"sync"

	domainuser "staybook/internal/domain/user"
)

// UserRepository enforces username uniqueness the way the mongo index does.
type UserRepository struct {
	mu         sync.RWMutex
	byID       map[domainuser.ID]*domainuser.User
	byUsername map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[domainuser.ID]*domainuser.User),
		byUsername: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) ByUsername(ctx context.Context, username string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	if u == nil {
		return domainuser.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, taken := r.byUsername[u.Username]; taken && owner != u.ID {
		return domainuser.ErrUsernameTaken
	}
	if prev, ok := r.byID[u.ID]; ok && prev.Username != u.Username {
		delete(r.byUsername, prev.Username)
	}
	r.byID[u.ID] = cloneUser(u)
	r.byUsername[u.Username] = u.ID
	return nil
}

func cloneUser(u *domainuser.User) *domainuser.User {
	if u == nil {
		return nil
	}
	copyUser := *u
	return &copyUser
}
