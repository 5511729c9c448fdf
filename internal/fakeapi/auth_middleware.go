package fakeapi

import (
	"context"
	"net/http"
	"strings"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated user
const ContextKeyUser ContextKey = "user"

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detail, "code": codeTokenNotValid})
}

// RequireAuth validates the Bearer access token and injects the user.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			unauthorized(w, "Authorization header must contain two space-delimited values")
			return
		}

		if s.rejectBearer.Load() {
			unauthorized(w, "Given token not valid for any token type")
			return
		}

		userID, err := s.parseToken(parts[1], tokenTypeAccess)
		if err != nil {
			unauthorized(w, "Given token not valid for any token type")
			return
		}
		u, ok := s.userByID(userID)
		if !ok {
			unauthorized(w, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(ContextKeyUser).(*user)
	return u
}
