package errors

import (
	"errors"
	"fmt"
)

// Common error types for the helpdesk client
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginRequired      = errors.New("login required")

	// Token errors
	ErrTokenDecode          = errors.New("token could not be decoded")
	ErrNoAccessToken        = errors.New("no access token")
	ErrAuthorizationExpired = errors.New("authorization expired")

	// Session errors
	ErrSessionExpired = errors.New("session expired")

	// General errors
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
