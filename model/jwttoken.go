package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the access token payload. UserID is the acting employee.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}
