package fakeapi

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/civic881027/ai-ticket-demo/tickets"
)

type user struct {
	tickets.User
	IsStaff      bool
	PasswordHash string
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// AddUser registers an account that can log in with username/password.
func (s *Server) AddUser(username, password string, staff bool) (tickets.User, error) {
	if username == "" || password == "" {
		return tickets.User{}, fmt.Errorf("username and password are required")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return tickets.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[username]; exists {
		return tickets.User{}, fmt.Errorf("user %q already exists", username)
	}
	s.nextUserID++
	u := &user{
		User: tickets.User{
			ID:       s.nextUserID,
			Username: username,
			Email:    username + "@example.com",
		},
		IsStaff:      staff,
		PasswordHash: hash,
	}
	s.users[username] = u
	return u.User, nil
}

func (s *Server) authenticate(username, password string) (*user, bool) {
	s.mu.RLock()
	u, ok := s.users[username]
	s.mu.RUnlock()
	if !ok || !checkPasswordHash(password, u.PasswordHash) {
		return nil, false
	}
	return u, true
}

func (s *Server) userByID(id int) (*user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

func (s *Server) listUsers() []tickets.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]tickets.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
