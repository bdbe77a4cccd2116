package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by route guards.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
)

// AdminSubject is the token subject issued to the studio administrator.
const AdminSubject = "admin"

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
