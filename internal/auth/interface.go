package auth

import (
	"context"

	"lessontree/internal/domain/models"
)

// JWTVerifier verifies bearer tokens. The HTTP middleware depends only on
// this interface so tests and dev mode can swap the implementation.
type JWTVerifier interface {
	// VerifyToken validates a token and returns its claims, or an error
	// wrapping domain.ErrUnauthorized
	VerifyToken(ctx context.Context, tokenString string) (*models.SupabaseClaims, error)

	// Close releases resources held by the verifier
	Close() error
}
