package sessions

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/token"
)

// Store owns the access/refresh token pair of one user session. The
// access token doubles as the default credential for outbound requests
// and is kept in memory; both tokens are persisted through the Repo.
type Store struct {
	repo   Repo
	logger zerolog.Logger

	mu     sync.RWMutex
	access string
}

var _ oauth2.TokenSource = (*Store)(nil)

type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(repo Repo, options ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Load makes the persisted access token, if any, the default credential.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	access, err := s.get(AccessTokenKey)
	if err != nil {
		return fmt.Errorf("Store.Load: %w", err)
	}
	s.access = access
	if access != "" {
		s.logger.Debug().Msg("restored access token from session storage")
	}
	return nil
}

// SetAccessToken persists token and makes it the default credential. An
// empty token removes both.
func (s *Store) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		s.access = ""
		if err := s.repo.Delete(AccessTokenKey); err != nil {
			return fmt.Errorf("Store.SetAccessToken Delete: %w", err)
		}
		s.logger.Debug().Msg("access token cleared")
		return nil
	}

	if err := s.repo.Upsert(AccessTokenKey, token); err != nil {
		return fmt.Errorf("Store.SetAccessToken Upsert: %w", err)
	}
	s.access = token
	s.logger.Debug().Msg("access token stored")
	return nil
}

// SetRefreshToken persists token, or removes it when empty. The refresh
// token is never attached to requests.
func (s *Store) SetRefreshToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		if err := s.repo.Delete(RefreshTokenKey); err != nil {
			return fmt.Errorf("Store.SetRefreshToken Delete: %w", err)
		}
		return nil
	}
	if err := s.repo.Upsert(RefreshTokenKey, token); err != nil {
		return fmt.Errorf("Store.SetRefreshToken Upsert: %w", err)
	}
	return nil
}

// RefreshToken returns the persisted refresh token, or "" if there is none.
func (s *Store) RefreshToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(RefreshTokenKey)
}

// StoredAccessToken returns the persisted access token, or "" if there is none.
func (s *Store) StoredAccessToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(AccessTokenKey)
}

// AccessToken returns the current default credential.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// Clear removes both tokens.
func (s *Store) Clear() error {
	return errors.Join(s.SetAccessToken(""), s.SetRefreshToken(""))
}

// Token implements oauth2.TokenSource over the default credential. The
// expiry is read from the token's claims and left zero when undecodable.
func (s *Store) Token() (*oauth2.Token, error) {
	access := s.AccessToken()
	if access == "" {
		return nil, apperrors.ErrNoAccessToken
	}

	t := &oauth2.Token{
		AccessToken: access,
		TokenType:   "Bearer",
	}
	if exp, err := token.ExpiresAt(access); err == nil {
		t.Expiry = exp
	}
	return t, nil
}

func (s *Store) get(key string) (string, error) {
	value, err := s.repo.Get(key)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}
