package fakeapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/civic881027/ai-ticket-demo/internal/fakeapi"
	"github.com/civic881027/ai-ticket-demo/token"
)

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func newServer(t *testing.T, options ...fakeapi.Option) *fakeapi.Server {
	t.Helper()
	s := fakeapi.New(options...)
	_, err := s.AddUser("alice", "alice-pw", false)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *fakeapi.Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, fakeapi.APIPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestObtainToken(t *testing.T) {
	s := newServer(t)

	rec := do(t, s, http.MethodPost, fakeapi.RouteToken, "", map[string]string{"username": "alice", "password": "alice-pw"})
	require.Equal(t, http.StatusOK, rec.Code)

	var pair tokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	claims, err := token.Decode(pair.Access)
	require.NoError(t, err)
	require.Equal(t, "access", claims.TokenType)
	require.Equal(t, "1", claims.SubjectID())
	require.False(t, token.IsExpired(pair.Access))

	rec = do(t, s, http.MethodPost, fakeapi.RouteToken, "", map[string]string{"username": "alice", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "No active account found")

	rec = do(t, s, http.MethodPost, fakeapi.RouteToken, "", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, int64(3), s.LoginCalls())
}

func TestRefreshToken(t *testing.T) {
	s := newServer(t, fakeapi.WithRotateRefreshTokens(true))
	access, refresh, err := s.IssueTokens("alice")
	require.NoError(t, err)

	// An access token is not accepted as a refresh token.
	rec := do(t, s, http.MethodPost, fakeapi.RouteTokenRefresh, "", map[string]string{"refresh": access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token_not_valid")

	rec = do(t, s, http.MethodPost, fakeapi.RouteTokenRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	var pair tokenPair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.NotEqual(t, refresh, pair.Refresh)
	require.Equal(t, int64(2), s.RefreshCalls())
}

func TestRequireAuth(t *testing.T) {
	now := time.Now()
	s := newServer(t, fakeapi.WithNowFunc(func() time.Time { return now }))
	access, _, err := s.IssueTokens("alice")
	require.NoError(t, err)

	require.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, fakeapi.RouteTickets, "", nil).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, fakeapi.RouteTickets, access, nil).Code)

	expired, err := s.IssueAccessToken("alice", -time.Second)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, fakeapi.RouteTickets, expired, nil).Code)

	other := fakeapi.New(fakeapi.WithSigningSecret("other"))
	_, err = other.AddUser("alice", "alice-pw", false)
	require.NoError(t, err)
	forged, _, err := other.IssueTokens("alice")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, fakeapi.RouteTickets, forged, nil).Code)

	s.RejectAllBearerTokens(true)
	require.Equal(t, http.StatusUnauthorized, do(t, s, http.MethodGet, fakeapi.RouteTickets, access, nil).Code)

	require.Equal(t, 5, s.Hits(http.MethodGet, fakeapi.RouteTickets))
}

func TestCreateTicketValidation(t *testing.T) {
	s := newServer(t)
	access, _, err := s.IssueTokens("alice")
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, fakeapi.RouteTickets, access, map[string]any{"title": " ", "priority": "whenever", "assigned_to": 99})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fieldErrors map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrors))
	require.Contains(t, fieldErrors, "title")
	require.Contains(t, fieldErrors, "description")
	require.Contains(t, fieldErrors, "priority")
	require.Contains(t, fieldErrors, "assigned_to")
}

func TestReplyRejectsBlankText(t *testing.T) {
	s := newServer(t)
	access, _, err := s.IssueTokens("alice")
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, fakeapi.RouteTickets, access, map[string]string{"title": "t", "description": "d"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/tickets/1/reply/", access, map[string]string{"response_text": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "response_text")

	rec = do(t, s, http.MethodPost, "/tickets/2/reply/", access, map[string]string{"response_text": "hi"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
