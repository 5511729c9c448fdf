package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
)

var (
	ErrInvalidCredentials   = apperrors.ErrInvalidCredentials
	ErrSessionExpired       = apperrors.ErrSessionExpired
	ErrAuthorizationExpired = apperrors.ErrAuthorizationExpired
	ErrNotFound             = apperrors.ErrNotFound
	ErrInvalidRequest       = apperrors.ErrInvalidRequest
)

// StatusError is returned for any non-2xx response. A 401 matches
// ErrAuthorizationExpired and a 404 matches ErrNotFound under errors.Is.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func newStatusError(req *Request, resp *Response) *StatusError {
	return &StatusError{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail())
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthorizationExpired:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail extracts the human readable message from a backend error body:
// "detail", then "non_field_errors", then per-field messages.
func (e *StatusError) Detail() string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &body); err != nil {
		if text := strings.TrimSpace(string(e.Body)); text != "" && len(text) < 200 {
			return text
		}
		return http.StatusText(e.StatusCode)
	}

	var detail string
	if raw, ok := body["detail"]; ok && json.Unmarshal(raw, &detail) == nil && detail != "" {
		return detail
	}
	var messages []string
	if raw, ok := body["non_field_errors"]; ok && json.Unmarshal(raw, &messages) == nil && len(messages) > 0 {
		return messages[0]
	}

	fields := make([]string, 0, len(body))
	for field, raw := range body {
		if json.Unmarshal(raw, &messages) == nil && len(messages) > 0 {
			fields = append(fields, field+": "+messages[0])
		}
	}
	if len(fields) == 0 {
		return http.StatusText(e.StatusCode)
	}
	sort.Strings(fields)
	return strings.Join(fields, "; ")
}
