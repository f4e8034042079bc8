// Package types provides type definitions for the data exchanged with the J-Tracker backend.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// LoginRequest represents the credentials posted to /users/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents the body posted to /users/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
}

// LoginResponse is the payload returned by a successful login.
// The backend reports failures in Error with a 4xx status, but a 200 with an
// error body has been observed too, so callers check both.
type LoginResponse struct {
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token"`
	Expiry  string   `json:"expiry"`
	Profile *Profile `json:"profile,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// SignupResponse is the minimal user record returned by /users/signup.
type SignupResponse struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SignupRequest using the validator.
func (r *SignupRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
