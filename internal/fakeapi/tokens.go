package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	detailNoActiveAccount = "No active account found with the given credentials"
	detailTokenInvalid    = "Token is invalid or expired"
	codeTokenNotValid     = "token_not_valid"
)

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type obtainTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

func (s *Server) issueToken(userID int, tokenType string, ttl time.Duration) (string, error) {
	now := s.nowFunc()
	claims := jwtlib.MapClaims{
		"token_type": tokenType,           // access or refresh
		"user_id":    userID,              // Backend user primary key
		"iat":        now.Unix(),          // Issued At
		"exp":        now.Add(ttl).Unix(), // Expiry
		"jti":        uuid.New().String(), // Unique token ID
	}
	return s.signer.Sign(claims)
}

// IssueTokens mints an access/refresh pair for username without going
// through the login endpoint.
func (s *Server) IssueTokens(username string) (access string, refresh string, err error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("unknown user %q", username)
	}
	if access, err = s.issueToken(u.ID, tokenTypeAccess, s.accessTokenExpiry); err != nil {
		return "", "", err
	}
	if refresh, err = s.issueToken(u.ID, tokenTypeRefresh, s.refreshTokenExpiry); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// IssueAccessToken mints an access token with a custom lifetime. A
// negative ttl yields a token that is already expired.
func (s *Server) IssueAccessToken(username string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return s.issueToken(u.ID, tokenTypeAccess, ttl)
}

// parseToken verifies signature, expiry and token type and returns the user id.
func (s *Server) parseToken(rawToken, expectedType string) (int, error) {
	claims := jwtlib.MapClaims{}
	token, err := jwtlib.ParseWithClaims(rawToken, claims, s.signer.GetVerificationKey,
		jwtlib.WithTimeFunc(s.nowFunc),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	tokenType, _ := claims["token_type"].(string)
	if tokenType != expectedType {
		return 0, fmt.Errorf("expected %s token, got %q", expectedType, tokenType)
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("token missing user_id claim")
	}
	return int(userID), nil
}

func (s *Server) handleObtainToken(w http.ResponseWriter, r *http.Request) {
	s.loginCalls.Add(1)

	var req obtainTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - %v", err)
		return
	}
	missing := map[string][]string{}
	if req.Username == "" {
		missing["username"] = []string{"This field is required."}
	}
	if req.Password == "" {
		missing["password"] = []string{"This field is required."}
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, missing)
		return
	}

	u, ok := s.authenticate(req.Username, req.Password)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNoActiveAccount)
		return
	}

	access, refresh, err := s.IssueTokens(u.Username)
	if err != nil {
		s.logger.Err(err).Msg("failed to issue tokens")
		writeDetail(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}
	writeJSON(w, http.StatusOK, tokenPair{Access: access, Refresh: refresh})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req refreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - %v", err)
		return
	}
	if req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"refresh": {"This field is required."}})
		return
	}

	userID, err := s.parseToken(req.Refresh, tokenTypeRefresh)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detailTokenInvalid, "code": codeTokenNotValid})
		return
	}
	u, ok := s.userByID(userID)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detailTokenInvalid, "code": codeTokenNotValid})
		return
	}

	resp := tokenPair{}
	if resp.Access, err = s.issueToken(u.ID, tokenTypeAccess, s.accessTokenExpiry); err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not issue tokens")
		return
	}
	if s.rotateRefreshTokens {
		if resp.Refresh, err = s.issueToken(u.ID, tokenTypeRefresh, s.refreshTokenExpiry); err != nil {
			writeDetail(w, http.StatusInternalServerError, "could not issue tokens")
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
