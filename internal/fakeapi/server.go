// Package fakeapi is an in-process implementation of the helpdesk REST
// backend: SimpleJWT-style token endpoints plus the ticket resources. It
// backs the package tests and the helpdesk-mock development server.
package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/civic881027/ai-ticket-demo/internal/config"
	"github.com/civic881027/ai-ticket-demo/tickets"
)

type Server struct {
	signer              *HMACSigner
	nowFunc             func() time.Time
	accessTokenExpiry   time.Duration
	refreshTokenExpiry  time.Duration
	rotateRefreshTokens bool
	logger              zerolog.Logger
	router              chi.Router
	handler             http.Handler

	mu             sync.RWMutex
	users          map[string]*user // keyed by username
	tickets        map[int]*tickets.Ticket
	nextUserID     int
	nextTicketID   int
	nextResponseID int

	rejectBearer atomic.Bool
	loginCalls   atomic.Int64
	refreshCalls atomic.Int64

	hitsLock sync.Mutex
	hits     map[string]int // "METHOD /path" -> count
}

type Option func(*Server)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) Option {
	return func(s *Server) {
		s.accessTokenExpiry = accessTokenExpiry
		s.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) {
		s.nowFunc = now
	}
}

func WithSigningSecret(secret string) Option {
	return func(s *Server) {
		s.signer = NewHMACSigner(secret)
	}
}

// WithRotateRefreshTokens makes the refresh endpoint return a new refresh
// token alongside the access token.
func WithRotateRefreshTokens(rotate bool) Option {
	return func(s *Server) {
		s.rotateRefreshTokens = rotate
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// FromConfig maps the mock section of the application config to options.
func FromConfig(c config.MockConfig) []Option {
	return []Option{
		WithSigningSecret(c.GetSigningSecret()),
		WithTokenExpiry(c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry()),
		WithRotateRefreshTokens(c.GetRotateRefreshTokens()),
	}
}

func New(options ...Option) *Server {
	s := &Server{
		signer:  NewHMACSigner("fakeapi-secret"),
		logger:  zerolog.Nop(),
		users:   make(map[string]*user),
		tickets: make(map[int]*tickets.Ticket),
		hits:    make(map[string]int),
	}
	for _, opt := range options {
		opt(s)
	}

	if s.accessTokenExpiry == 0 {
		s.accessTokenExpiry = 5 * time.Minute
	}
	if s.refreshTokenExpiry == 0 {
		s.refreshTokenExpiry = 24 * time.Hour
	}
	if s.nowFunc == nil {
		s.nowFunc = time.Now
	}

	s.router = s.initRoutes()
	root := chi.NewRouter()
	root.Mount(APIPrefix, s.router)
	s.handler = root
	return s
}

func (s *Server) initRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countHits)

	r.Post(RouteToken, s.handleObtainToken)
	r.Post(RouteTokenRefresh, s.handleRefreshToken)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get(RouteUsers, s.handleListUsers)
		r.Get(RouteTickets, s.handleListTickets)
		r.Post(RouteTickets, s.handleCreateTicket)
		r.Get(RouteTicket, s.handleGetTicket)
		r.Patch(RouteTicket, s.handleUpdateTicket)
		r.Delete(RouteTicket, s.handleDeleteTicket)
		r.Post(RouteTicketReply, s.handleReply)
		r.Post(RouteTicketAI, s.handleAIResponse)
	})
	return r
}

// Router returns the API routes, to be mounted under APIPrefix.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the API mounted under APIPrefix.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// RejectAllBearerTokens makes every protected route answer 401 regardless
// of the presented access token.
func (s *Server) RejectAllBearerTokens(reject bool) {
	s.rejectBearer.Store(reject)
}

func (s *Server) LoginCalls() int64 {
	return s.loginCalls.Load()
}

func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// Hits returns how often method+path (as seen below the mount point) was requested.
func (s *Server) Hits(method, path string) int {
	s.hitsLock.Lock()
	defer s.hitsLock.Unlock()
	return s.hits[method+" "+path]
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
			path = rctx.RoutePath
		}
		s.hitsLock.Lock()
		s.hits[r.Method+" "+path]++
		s.hitsLock.Unlock()
		s.logger.Debug().Str("method", r.Method).Str("path", path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}
