package models

import "github.com/golang-jwt/jwt/v5"

// RoleAuthenticated is the role Supabase puts on tokens of signed-in users
const RoleAuthenticated = "authenticated"

// SupabaseClaims is the JWT claim set issued by Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	AAL         string `json:"aal"`
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the subject claim, the user's UUID
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}

// IsAuthenticated reports whether the token belongs to a signed-in, non-anonymous user
func (c *SupabaseClaims) IsAuthenticated() bool {
	return c.Role == RoleAuthenticated && !c.IsAnonymous && c.Subject != ""
}
