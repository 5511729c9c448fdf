package filerepo_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/civic881027/ai-ticket-demo/internal/errors"
	"github.com/civic881027/ai-ticket-demo/sessions"
	"github.com/civic881027/ai-ticket-demo/sessions/filerepo"
)

func newRepo(t *testing.T) *filerepo.FileRepo {
	t.Helper()
	repo, err := filerepo.New(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)
	return repo
}

func TestFileRepo_RoundTrip(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.Get(sessions.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Upsert(sessions.AccessTokenKey, "A1"))
	require.NoError(t, repo.Upsert(sessions.RefreshTokenKey, "R1"))

	value, err := repo.Get(sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "A1", value)

	require.NoError(t, repo.Delete(sessions.AccessTokenKey))
	_, err = repo.Get(sessions.AccessTokenKey)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	value, err = repo.Get(sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.Equal(t, "R1", value)

	require.NoError(t, repo.Delete("missing"))
}

func TestFileRepo_SurvivesReopen(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, sessions.NewStore(repo).SetAccessToken("A1"))

	reopened, err := filerepo.New(repo.Path())
	require.NoError(t, err)
	store := sessions.NewStore(reopened)
	require.NoError(t, store.Load())
	require.Equal(t, "A1", store.AccessToken())
}

func TestFileRepo_PermissionsAndNoTempFile(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Upsert(sessions.AccessTokenKey, "A1"))

	info, err := os.Stat(repo.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = os.Stat(repo.Path() + ".tmp")
	require.True(t, os.IsNotExist(err))
}

func TestFileRepo_CorruptFile(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0o600))

	_, err := repo.Get(sessions.AccessTokenKey)
	require.Error(t, err)

	require.NoError(t, repo.Upsert(sessions.AccessTokenKey, "A2"))
	value, err := repo.Get(sessions.AccessTokenKey)
	require.NoError(t, err)
	require.Equal(t, "A2", value)
}
