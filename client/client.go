// Package client is the authenticated HTTP client for the helpdesk API. It
// attaches the session's access token to every request and, when the
// backend answers 401, refreshes the token once and replays the request.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/civic881027/ai-ticket-demo/sessions"
)

const (
	LoginPath   = "token/"
	RefreshPath = "token/refresh/"

	tokenPathPrefix = "token/"
	defaultTimeout  = 30 * time.Second
)

// SessionExpiredHandler is notified when the session has been terminated
// because the access token could not be renewed. It takes the place of a
// redirect to the login screen.
type SessionExpiredHandler func(cause error)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	store      *sessions.Store
	logger     zerolog.Logger

	refreshGroup singleflight.Group

	handlersLock     sync.RWMutex
	onSessionExpired []SessionExpiredHandler
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its transport is
// wrapped, the value passed in is not modified.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithSessionExpiredHandler(handler SessionExpiredHandler) Option {
	return func(c *Client) {
		c.onSessionExpired = append(c.onSessionExpired, handler)
	}
}

// New creates a client rooted at baseURL. Any access token persisted in
// the store becomes the default credential before New returns.
func New(baseURL string, store *sessions.Store, options ...Option) (*Client, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil session store", ErrInvalidRequest)
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url %q: %v", ErrInvalidRequest, baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q must be absolute", ErrInvalidRequest, baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	httpClient := *c.httpClient
	rt := httpClient.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	httpClient.Transport = &loggingTransport{base: rt, logger: c.logger}
	if c.timeout > 0 {
		httpClient.Timeout = c.timeout
	}
	c.httpClient = &httpClient

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("client.New: %w", err)
	}
	return c, nil
}

// OnSessionExpired registers an additional SessionExpiredHandler.
func (c *Client) OnSessionExpired(handler SessionExpiredHandler) {
	c.handlersLock.Lock()
	defer c.handlersLock.Unlock()
	c.onSessionExpired = append(c.onSessionExpired, handler)
}

func (c *Client) Session() *sessions.Store {
	return c.store
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends req with the current access token. A 401 from a protected
// endpoint triggers at most one refresh and one replay of req. Non-2xx
// responses are returned as *StatusError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.ok() {
		return resp, nil
	}

	statusErr := newStatusError(req, resp)
	if resp.StatusCode != http.StatusUnauthorized || isTokenEndpoint(req.Path) {
		return nil, statusErr
	}
	if req.retried {
		c.logger.Debug().Str("path", req.Path).Msg("replayed request rejected, not refreshing again")
		return nil, statusErr
	}
	req.retried = true
	return c.refreshAndRetry(ctx, req, statusErr)
}

// Login exchanges credentials for a token pair and stores both tokens. On
// any failure both tokens are cleared.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req, err := NewRequest(http.MethodPost, LoginPath, loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	var pair tokenPair
	resp, err := c.send(ctx, req)
	if err == nil && !resp.ok() {
		err = newStatusError(req, resp)
	}
	if err == nil {
		err = resp.Decode(&pair)
	}
	if err == nil && (pair.Access == "" || pair.Refresh == "") {
		err = errors.New("token response is missing access or refresh token")
	}
	if err == nil {
		err = errors.Join(c.store.SetAccessToken(pair.Access), c.store.SetRefreshToken(pair.Refresh))
	}

	if err != nil {
		if clearErr := c.store.Clear(); clearErr != nil {
			c.logger.Warn().Err(clearErr).Msg("failed to clear session after login failure")
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusBadRequest) {
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, statusErr.Detail())
		}
		return fmt.Errorf("Client.Login: %w", err)
	}

	c.logger.Info().Str("username", username).Msg("logged in")
	return nil
}

// Logout discards both tokens. The backend keeps no server-side session.
func (c *Client) Logout() error {
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("Client.Logout: %w", err)
	}
	c.logger.Info().Msg("logged out")
	return nil
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	target, err := c.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	req.tokenFromStore = false
	switch {
	case isTokenEndpoint(req.Path):
		httpReq.Header.Del("Authorization")
	case httpReq.Header.Get("Authorization") != "":
		req.sentToken = strings.TrimPrefix(httpReq.Header.Get("Authorization"), "Bearer ")
	default:
		if tok, err := c.store.Token(); err == nil {
			tok.SetAuthHeader(httpReq)
			req.sentToken = tok.AccessToken
			req.tokenFromStore = true
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}
	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: path %q: %v", ErrInvalidRequest, path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return nil, fmt.Errorf("%w: path %q must be relative to the base url", ErrInvalidRequest, path)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// isTokenEndpoint reports whether path addresses the credential exchange
// endpoints, which never carry a bearer token and are never refreshed.
func isTokenEndpoint(path string) bool {
	return strings.HasPrefix(strings.TrimPrefix(path, "/"), tokenPathPrefix)
}
