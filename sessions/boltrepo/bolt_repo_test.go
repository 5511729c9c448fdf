package boltrepo_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
	"github.com/civic881027/ai-ticket-demo/sessions/boltrepo"
)

func TestBoltRepo_RoundTrip(t *testing.T) {
	repo, err := boltrepo.NewFromFile(filepath.Join(t.TempDir(), "session.db"), nil)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Get(sessions.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NoError(t, repo.Delete(sessions.AccessTokenKey), "delete before bucket exists")

	require.NoError(t, repo.Upsert(sessions.AccessTokenKey, "A1"))
	value, err := repo.Get(sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "A1", value)

	_, err = repo.Get(sessions.RefreshTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Delete(sessions.AccessTokenKey))
	_, err = repo.Get(sessions.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBoltRepo_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	repo, err := boltrepo.NewFromFile(path, nil)
	require.NoError(t, err)
	store := sessions.NewStore(repo)
	require.NoError(t, store.SetAccessToken("A1"))
	require.NoError(t, store.SetRefreshToken("R1"))
	require.NoError(t, repo.Close())

	reopened, err := boltrepo.NewFromFile(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	store = sessions.NewStore(reopened)
	require.NoError(t, store.Load())
	require.Equal(t, "A1", store.AccessToken())
	refresh, err := store.RefreshToken()
	require.NoError(t, err)
	require.Equal(t, "R1", refresh)
}
