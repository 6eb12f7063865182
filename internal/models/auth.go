package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PositionClaim is the wire form of a held position inside a token.
type PositionClaim struct {
	Department string   `json:"department"`
	Role       RoleName `json:"role"`
}

// AuthContext carries the resolved identity and positions of the acting
// user. It is constructed once at the request boundary and passed into the
// workflow verbatim; the core never re-queries a session store. A nil
// context means no authenticated identity at all.
type AuthContext struct {
	UserID    string
	Positions []PositionClaim
}

// HasRole reports whether any held position carries the given role.
func (a *AuthContext) HasRole(role RoleName) bool {
	if a == nil {
		return false
	}
	for _, p := range a.Positions {
		if p.Role == role {
			return true
		}
	}
	return false
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued tokens and user info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Positions []PositionClaim `json:"positions"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	FullName  string          `json:"full_name"`
	Positions []PositionClaim `json:"positions"`
	jwt.RegisteredClaims
}

// AuthContext resolves the claims into the core's typed auth context.
func (c *JWTClaims) AuthContext() *AuthContext {
	if c == nil {
		return nil
	}
	return &AuthContext{UserID: c.UserID, Positions: c.Positions}
}

// RefreshToken is a persisted long-lived token.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
}
