package model

import "time"

// Operator roles. ADMIN can register new operators and start bulk
// notification runs; REGULAR covers the day-to-day door workflow.
const (
	RoleAdmin   = "ADMIN"
	RoleRegular = "REGULAR"
)

// User is an operator account stored in MySQL.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is a hashed, revocable refresh token row. The raw token is
// only ever held by the client; we store its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     `json:"id"`
	UserID    uint64     `json:"user_id"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
