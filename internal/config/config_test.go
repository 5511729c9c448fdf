package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/civic881027/ai-ticket-demo/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "Helpdesk", c.GetAppName())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "http://127.0.0.1:8000/api/", c.GetBaseURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.SessionBackendFile, c.GetSessionBackend())
	require.Equal(t, "session.json", filepath.Base(c.GetSessionPath()))
	require.Equal(t, ":8000", c.GetPort())
	require.Equal(t, 5*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, 24*time.Hour, c.GetRefreshTokenExpiry())
	require.False(t, c.GetRotateRefreshTokens())
}

func TestLoad_FromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HELPDESK_BASE_URL", "https://helpdesk.example.com/api")
	t.Setenv("HELPDESK_ENV", "prod")
	t.Setenv("HELPDESK_REQUEST_TIMEOUT", "5s")
	t.Setenv("HELPDESK_SESSION_BACKEND", "BOLT")
	t.Setenv("HELPDESK_MOCK_PORT", ":9000")
	t.Setenv("HELPDESK_MOCK_ROTATE_REFRESH_TOKENS", "true")

	c, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "https://helpdesk.example.com/api/", c.GetBaseURL())
	require.Equal(t, "PROD", c.GetEnv())
	require.Equal(t, 5*time.Second, c.GetRequestTimeout())
	require.Equal(t, config.SessionBackendBolt, c.GetSessionBackend())
	require.Equal(t, "session.db", filepath.Base(c.GetSessionPath()))
	require.Equal(t, ":9000", c.GetPort())
	require.True(t, c.GetRotateRefreshTokens())
}

func TestLoad_InvalidDuration(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("HELPDESK_REQUEST_TIMEOUT", "soon")

	_, err := config.Load()
	require.Error(t, err)
}

func TestSessionStorage_ExplicitPath(t *testing.T) {
	s := config.SessionStorage{Backend: "file", Path: "/tmp/helpdesk.json"}
	require.Equal(t, "/tmp/helpdesk.json", s.GetSessionPath())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
