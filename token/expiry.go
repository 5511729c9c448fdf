package token

import (
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
)

// ExpiresAt returns the exp claim of rawToken. Only exp is inspected, the
// other claims may hold anything. A token without exp is reported as
// undecodable.
func ExpiresAt(rawToken string) (time.Time, error) {
	if strings.TrimSpace(rawToken) == "" {
		return time.Time{}, apperrors.Wrapf(apperrors.ErrTokenDecode, "empty token")
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrTokenDecode, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", apperrors.ErrTokenDecode, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", apperrors.ErrTokenDecode)
	}
	return exp.Time, nil
}

// IsExpired reports whether rawToken's expiry lies strictly in the past.
// Absent, malformed and undecodable tokens are always expired.
func IsExpired(rawToken string) bool {
	exp, err := ExpiresAt(rawToken)
	if err != nil {
		return true
	}
	return exp.UnixMilli() < NowTimeFunc().UnixMilli()
}
