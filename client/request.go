package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Request describes one call relative to the client's base URL. The body
// is held as bytes so the request can be replayed after a refresh.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte

	retried        bool
	sentToken      string
	tokenFromStore bool
}

// NewRequest builds a Request, encoding body as JSON when it is not nil.
func NewRequest(method, path string, body any) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
	if body == nil {
		return req, nil
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode body for %s %s: %v", ErrInvalidRequest, method, path, err)
	}
	req.Body = encoded
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Retried reports whether the request has already been replayed once
// after a token refresh.
func (r *Request) Retried() bool {
	return r.retried
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r *Response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
