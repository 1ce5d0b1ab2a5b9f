package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are JWT claims identifying a signed-in user
type UserClaims struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
	jwt.RegisteredClaims
}

// Participant returns the session-facing summary of the token holder
func (c *UserClaims) Participant() Participant {
	return Participant{
		UID:         c.UID,
		DisplayName: c.DisplayName,
		PhotoURL:    c.PhotoURL,
	}
}

// LoginRequest is the request body for sign-in. The identity fields come from the
// hosted auth provider; Secret is the shared client secret.
type LoginRequest struct {
	UID         string `json:"uid" validate:"required,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhotoURL    string `json:"photoURL" validate:"omitempty,url"`
	Secret      string `json:"secret" validate:"required"`
}

// LoginResponse is returned after successful sign-in
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
