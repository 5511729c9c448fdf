package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to every environment variable, e.g. HELPDESK_BASE_URL.
const envPrefix = "helpdesk"

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
	MockConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	SessionStorage
	Mock
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c mainConfig
	if err := envconfig.Process(envPrefix, &c); err != nil {
		return nil, fmt.Errorf("config.Load envconfig.Process: %w", err)
	}
	return c, nil
}
