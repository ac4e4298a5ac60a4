package auth

import (
	"context"
	"time"
)

// TokenService defines operations for managing bearer authentication tokens.
type TokenService interface {
	// GenerateToken creates a signed token carrying the user's ID and an
	// absolute expiry. Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID int64) (string, error)

	// ValidateToken verifies the provided token string and extracts the
	// claims. Returns ErrExpiredToken once the TTL has elapsed, or
	// ErrInvalidToken when the signature, format or payload is bad.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified payload of a bearer token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID int64 `json:"uid"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
