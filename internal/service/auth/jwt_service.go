package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// TokenLifetime is how long a session token stays valid after issue.
const TokenLifetime = time.Hour

// JWTService defines operations for managing JWT session tokens.
type JWTService interface {
	// GenerateToken creates a signed token carrying the user's ID and role.
	// It returns the token and its expiry time.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, time.Time, error)

	// ValidateToken verifies signature, algorithm and expiry and extracts the
	// claims. It returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the verified identity carried by a session token.
type Claims struct {
	UserID    uuid.UUID   `json:"uid,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Subject   string      `json:"sub,omitempty"`
	IssuedAt  time.Time   `json:"iat,omitempty"`
	ExpiresAt time.Time   `json:"exp,omitempty"`
	ID        string      `json:"jti,omitempty"`
}
