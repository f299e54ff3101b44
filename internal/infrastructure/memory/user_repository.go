// Package memory provides in-process implementations of the domain
// repositories. They back tests and single-node development runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-auth/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]entity.User),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if _, ok := r.byEmail[key]; ok {
		return repository.ErrDuplicateEmail
	}
	now := time.Now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now

	r.byID[u.ID] = *u
	r.byEmail[key] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string) error {
	return r.update(id, func(u *entity.User) { u.Password = hash })
}

func (r *UserRepository) UpdateNames(_ context.Context, id, firstName, lastName string) error {
	return r.update(id, func(u *entity.User) {
		u.FirstName, u.LastName = firstName, lastName
	})
}

// update applies fn to the stored record under the write lock.
func (r *UserRepository) update(id string, fn func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return nil
}

func (r *UserRepository) SetActive(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if u.IsActive {
		return false, nil
	}
	u.IsActive = true
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return true, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
