package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system,
// corresponds to the users table. Galleries hang off a user; authentication
// itself is handled outside this service.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
