// Package guard gates protected views on a locally valid session.
package guard

import (
	"fmt"

	"github.com/rs/zerolog"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/token"
)

var ErrLoginRequired = apperrors.ErrLoginRequired

// TokenSource is the part of the session store the guard reads.
type TokenSource interface {
	StoredAccessToken() (string, error)
}

// Guard decides from the persisted access token alone whether a
// protected view may run. It never talks to the backend and never clears
// a stale token; an expired token is left for the refresh flow.
type Guard struct {
	store  TokenSource
	logger zerolog.Logger
}

type Option func(*Guard)

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func New(store TokenSource, options ...Option) *Guard {
	g := &Guard{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Allow returns nil when a stored access token exists and has not
// expired, and ErrLoginRequired otherwise.
func (g *Guard) Allow() error {
	access, err := g.store.StoredAccessToken()
	if err != nil {
		g.logger.Warn().Err(err).Msg("could not read session")
		return fmt.Errorf("%w: %w", ErrLoginRequired, err)
	}
	if access == "" {
		g.logger.Debug().Msg("no stored access token")
		return ErrLoginRequired
	}
	if token.IsExpired(access) {
		g.logger.Debug().Msg("stored access token expired")
		return fmt.Errorf("%w: access token expired", ErrLoginRequired)
	}
	return nil
}

// Protect runs view only if Allow succeeds.
func (g *Guard) Protect(view func() error) error {
	if err := g.Allow(); err != nil {
		return err
	}
	return view()
}
