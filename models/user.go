package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	PhoneNumber *string   `json:"phone_number,omitempty" db:"phone_number"`
	Points      int       `json:"points" db:"points"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Registration is a tournament membership row joined with the user's name.
type Registration struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}
