package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ecommerce-auth/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts u and fills ID and timestamps. Returns ErrDuplicateEmail
	// when the email is already taken.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdatePassword and UpdateNames touch only their columns. is_active is
	// written by SetActive alone.
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateNames(ctx context.Context, id, firstName, lastName string) error
	// SetActive flips is_active from false to true and reports whether this
	// call performed the transition.
	SetActive(ctx context.Context, id string) (bool, error)
}
