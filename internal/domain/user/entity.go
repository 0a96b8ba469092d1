package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Picture      *string   `json:"picture,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the user-editable fields. Nil fields are left untouched.
type Profile struct {
	Name    *string `validate:"omitempty,min=1,max=64"`
	Picture *string `validate:"omitempty,url"`
}
