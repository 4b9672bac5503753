package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns zero or more accounts
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
