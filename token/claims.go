package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Identifier is a subject identifier. The backend encodes user ids as JSON
// numbers, other issuers use strings; both decode to the same value.
type Identifier string

func (id *Identifier) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = Identifier(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a string or number: %w", err)
	}
	*id = Identifier(n.String())
	return nil
}

// Claims are the decoded payload of an access or refresh token.
type Claims struct {
	UserID    Identifier `json:"user_id,omitempty"`    // Backend user primary key
	TokenType string     `json:"token_type,omitempty"` // "access" or "refresh"
	jwtlib.RegisteredClaims
}

// SubjectID returns the user identifier, falling back to the registered sub claim.
func (c *Claims) SubjectID() string {
	if c.UserID != "" {
		return string(c.UserID)
	}
	return c.Subject
}

// Decode extracts the claims from a raw JWT without verifying its
// signature. The result is only fit for UX decisions, never for
// authorization.
func Decode(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, apperrors.Wrapf(apperrors.ErrTokenDecode, "empty token")
	}

	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrTokenDecode, err)
	}
	return claims, nil
}
