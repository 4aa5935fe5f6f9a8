package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the JWT payload issued by the identity service.
type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Role      UserRole `json:"role"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	jwt.RegisteredClaims
}

// SessionKey identifies the dashboard session a set of claims belongs to.
// Tokens carrying a jti get their own session; otherwise the user id is used.
func (c *JWTClaims) SessionKey() string {
	if c == nil {
		return ""
	}
	if c.ID != "" {
		return c.ID
	}
	return c.UserID
}
