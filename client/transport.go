package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-ID"

// loggingTransport stamps every outbound request with a request id and
// logs its outcome at debug level. Authorization values are never logged.
type loggingTransport struct {
	base   http.RoundTripper
	logger zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	event := t.logger.Debug().
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Str("request_id", id).
		Bool("bearer", req.Header.Get("Authorization") != "").
		Dur("elapsed", time.Since(start))
	if err != nil {
		event.Err(err).Msg("request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("request completed")
	return resp, nil
}
