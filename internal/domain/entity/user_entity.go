package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain
// Passwords are stored as bcrypt hashes in Password field.
// IsActive starts false and is flipped once the email address is verified.
type User struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}
