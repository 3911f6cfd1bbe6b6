package models

import "errors"

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")

	ErrDuplicateIdentity     = errors.New("email already registered")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrMissingCredential     = errors.New("access token required")
	ErrInvalidCredential     = errors.New("invalid or expired token")
	ErrInvalidOrExpiredToken = errors.New("token is invalid or expired")

	// ErrNotFoundOrForbidden is returned for ids that do not exist and for ids
	// owned by someone else alike.
	ErrNotFoundOrForbidden = errors.New("resource not found")
)
