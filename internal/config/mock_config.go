package config

import (
	"fmt"
	"strings"
	"time"
)

// MockConfig drives the local mock backend (cmd/helpdesk-mock).
type MockConfig interface {
	GetPort() string
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRotateRefreshTokens() bool
}

type Mock struct {
	Port                string        `envconfig:"MOCK_PORT" default:"8000"`
	SigningSecret       string        `envconfig:"MOCK_SIGNING_SECRET" default:"insecure-dev-secret"`
	AccessTokenExpiry   time.Duration `envconfig:"MOCK_ACCESS_TOKEN_EXPIRY" default:"5m"`
	RefreshTokenExpiry  time.Duration `envconfig:"MOCK_REFRESH_TOKEN_EXPIRY" default:"24h"`
	RotateRefreshTokens bool          `envconfig:"MOCK_ROTATE_REFRESH_TOKENS" default:"false"`
}

var _ MockConfig = Mock{}

func (m Mock) GetPort() string {
	port := m.Port
	if port == "" {
		port = "8000"
	}
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (m Mock) GetSigningSecret() string {
	return m.SigningSecret
}

func (m Mock) GetAccessTokenExpiry() time.Duration {
	return m.AccessTokenExpiry
}

func (m Mock) GetRefreshTokenExpiry() time.Duration {
	return m.RefreshTokenExpiry
}

func (m Mock) GetRotateRefreshTokens() bool {
	return m.RotateRefreshTokens
}
