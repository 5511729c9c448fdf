package sessions_test

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
	fakesessionrepo "github.com/civic881027/ai-ticket-demo/sessions/repofakes"
)

type failingRepo struct {
	*fakesessionrepo.FakeSessionRepo
	err error
}

func (r failingRepo) Upsert(string, string) error { return r.err }
func (r failingRepo) Get(string) (string, error)  { return "", r.err }

func TestStore_SetAccessToken(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	store := sessions.NewStore(repo)

	require.NoError(t, store.SetAccessToken("A1"))
	require.Equal(t, "A1", store.AccessToken())

	stored, err := repo.Get(sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "A1", stored)

	require.NoError(t, store.SetAccessToken(""))
	require.Empty(t, store.AccessToken())
	_, err = repo.Get(sessions.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStore_RefreshTokenAbsentUntilSet(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())

	require.NoError(t, store.SetAccessToken("A1"))
	refresh, err := store.RefreshToken()
	require.NoError(t, err)
	require.Empty(t, refresh)

	require.NoError(t, store.SetRefreshToken("R1"))
	refresh, err = store.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, "R1", refresh)

	// The refresh token never becomes the default credential.
	require.Equal(t, "A1", store.AccessToken())
}

func TestStore_LoadRestoresPersistedAccessToken(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	require.NoError(t, sessions.NewStore(repo).SetAccessToken("A1"))

	reloaded := sessions.NewStore(repo)
	require.Empty(t, reloaded.AccessToken())
	require.NoError(t, reloaded.Load())
	require.Equal(t, "A1", reloaded.AccessToken())

	stored, err := reloaded.StoredAccessToken()
	require.NoError(t, err)
	require.Equal(t, "A1", stored)
}

func TestStore_Clear(t *testing.T) {
	repo := fakesessionrepo.NewFakeSessionRepo()
	store := sessions.NewStore(repo)
	require.NoError(t, store.SetAccessToken("A1"))
	require.NoError(t, store.SetRefreshToken("R1"))

	require.NoError(t, store.Clear())
	require.Empty(t, store.AccessToken())
	require.Zero(t, repo.Len())
}

func TestStore_Token(t *testing.T) {
	store := sessions.NewStore(fakesessionrepo.NewFakeSessionRepo())

	_, err := store.Token()
	require.ErrorIs(t, err, apperrors.ErrNoAccessToken)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	require.NoError(t, store.SetAccessToken(raw))

	tok, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, raw, tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
	require.True(t, exp.Equal(tok.Expiry))

	require.NoError(t, store.SetAccessToken("opaque"))
	tok, err = store.Token()
	require.NoError(t, err)
	require.True(t, tok.Expiry.IsZero())
}

func TestStore_RepoErrors(t *testing.T) {
	boom := errors.New("disk full")
	store := sessions.NewStore(failingRepo{FakeSessionRepo: fakesessionrepo.NewFakeSessionRepo(), err: boom})

	err := store.SetAccessToken("A1")
	require.ErrorIs(t, err, boom)
	require.Empty(t, store.AccessToken(), "failed persist must not change the credential")

	_, err = store.RefreshToken()
	require.ErrorIs(t, err, boom)

	require.ErrorIs(t, store.Load(), boom)
}
