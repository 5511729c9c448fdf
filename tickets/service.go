// Package tickets is the typed API for the helpdesk ticket resources. All
// calls go through the authenticated client and so share its session.
package tickets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// API is the subset of the authenticated client the service relies on.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
	Patch(ctx context.Context, path string, in, out any) error
	Delete(ctx context.Context, path string) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func ticketPath(id int) string {
	return "tickets/" + strconv.Itoa(id) + "/"
}

func (s *Service) List(ctx context.Context) ([]Ticket, error) {
	var out []Ticket
	if err := s.getList(ctx, "tickets/", &out); err != nil {
		return nil, fmt.Errorf("tickets.List: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id int) (*Ticket, error) {
	var t Ticket
	if err := s.api.Get(ctx, ticketPath(id), &t); err != nil {
		return nil, fmt.Errorf("tickets.Get %d: %w", id, err)
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var t Ticket
	if err := s.api.Post(ctx, "tickets/", req, &t); err != nil {
		return nil, fmt.Errorf("tickets.Create: %w", err)
	}
	return &t, nil
}

func (s *Service) Update(ctx context.Context, id int, req UpdateRequest) (*Ticket, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var t Ticket
	if err := s.api.Patch(ctx, ticketPath(id), req, &t); err != nil {
		return nil, fmt.Errorf("tickets.Update %d: %w", id, err)
	}
	return &t, nil
}

func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, ticketPath(id)); err != nil {
		return fmt.Errorf("tickets.Delete %d: %w", id, err)
	}
	return nil
}

// Reply posts a human response. Blank text is rejected without a request.
func (s *Service) Reply(ctx context.Context, id int, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReply
	}
	var r Response
	body := map[string]string{"response_text": text}
	if err := s.api.Post(ctx, ticketPath(id)+"reply/", body, &r); err != nil {
		return nil, fmt.Errorf("tickets.Reply %d: %w", id, err)
	}
	return &r, nil
}

// AIReply asks the backend to generate and attach a response.
func (s *Service) AIReply(ctx context.Context, id int) (*Response, error) {
	var r Response
	if err := s.api.Post(ctx, ticketPath(id)+"ai-response/", nil, &r); err != nil {
		return nil, fmt.Errorf("tickets.AIReply %d: %w", id, err)
	}
	return &r, nil
}

func (s *Service) Users(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.getList(ctx, "users/", &out); err != nil {
		return nil, fmt.Errorf("tickets.Users: %w", err)
	}
	return out, nil
}

// getList accepts either a bare JSON array or a paginated
// {"results": [...]} envelope.
func (s *Service) getList(ctx context.Context, path string, out any) error {
	var raw json.RawMessage
	if err := s.api.Get(ctx, path, &raw); err != nil {
		return err
	}
	return decodeList(raw, out)
}

func decodeList(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return fmt.Errorf("decode page: %w", err)
		}
		trimmed = page.Results
	}
	if len(trimmed) == 0 || string(trimmed) == "null" {
		trimmed = []byte("[]")
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	return nil
}
