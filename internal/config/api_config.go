package config

import (
	"strings"
	"time"
)

type API struct {
	BaseURL        string        `envconfig:"BASE_URL" default:"http://127.0.0.1:8000/api/"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

var _ APIConfig = API{}

// GetBaseURL returns the API root, always with a trailing slash so that
// relative endpoint paths resolve beneath it.
func (a API) GetBaseURL() string {
	if !strings.HasSuffix(a.BaseURL, "/") {
		return a.BaseURL + "/"
	}
	return a.BaseURL
}

func (a API) GetRequestTimeout() time.Duration {
	if a.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return a.RequestTimeout
}
