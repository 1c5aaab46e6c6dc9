package service

import "errors"

// Messages are part of the API contract and surface verbatim to clients.
// Credential-path failures all collapse to ErrSessionExpired so that a caller
// cannot tell a replayed token from an expired one or a store failure.
var (
	ErrMissingFields      = errors.New("Expected fields are missing")
	ErrInvalidData        = errors.New("Invalid data")
	ErrEmailRequired      = errors.New("Email is required")
	ErrInvalidEmail       = errors.New("Invalid email format")
	ErrUserExists         = errors.New("User already exists")
	ErrInvalidMailToken   = errors.New("The token is invalid or has expired. Please request a new one.")
	ErrAlreadyVerified    = errors.New("Account already verified")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailNotVerified   = errors.New("Please verify the email before logging in")
	ErrSamePassword       = errors.New("New password cannot be the same as the old password.")
	ErrWrongOldPassword   = errors.New("Old password is incorrect")
	ErrPasswordReused     = errors.New("New password is same as the old password")
	ErrUserNotFound       = errors.New("User not found.")
	ErrSessionExpired     = errors.New("Session expired")
)
