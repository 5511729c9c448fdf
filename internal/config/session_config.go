package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	SessionBackendFile   = "file"
	SessionBackendBolt   = "bolt"
	SessionBackendMemory = "memory"
)

type SessionConfig interface {
	GetSessionBackend() string
	GetSessionPath() string
}

type SessionStorage struct {
	Backend string `envconfig:"SESSION_BACKEND" default:"file"`
	Path    string `envconfig:"SESSION_PATH"`
}

var _ SessionConfig = SessionStorage{}

func (s SessionStorage) GetSessionBackend() string {
	return strings.ToLower(s.Backend)
}

// GetSessionPath returns the configured session location or a per-user
// default under the OS config directory.
func (s SessionStorage) GetSessionPath() string {
	if s.Path != "" {
		return s.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "session.json"
	if s.GetSessionBackend() == SessionBackendBolt {
		name = "session.db"
	}
	return filepath.Join(dir, "helpdesk", name)
}
