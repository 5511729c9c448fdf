package fakeapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civic881027/ai-ticket-demo/tickets"
)

const (
	detailNotFound         = "No Ticket matches the given query."
	detailPermissionDenied = "You do not have permission to perform this action."
	categoryFallback       = "General Inquiry"
)

// SeedTicket stores a ticket directly, bypassing the API. It returns the stored copy.
func (s *Server) SeedTicket(createdBy tickets.User, req tickets.CreateRequest) tickets.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.insertTicketLocked(createdBy, req)
	return *t
}

func (s *Server) insertTicketLocked(createdBy tickets.User, req tickets.CreateRequest) *tickets.Ticket {
	now := s.nowFunc().UTC()
	s.nextTicketID++

	var suggestedCategory, suggestedPriority *string
	if req.NeedsAISuggestion() {
		category, priority := classify(req.Title, req.Description)
		suggestedCategory, suggestedPriority = &category, &priority
	}

	t := &tickets.Ticket{
		ID:                  s.nextTicketID,
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		Priority:            req.Priority,
		Status:              req.Status,
		CreatedBy:           &createdBy,
		AssignedTo:          req.AssignedTo,
		CreatedAt:           now,
		UpdatedAt:           now,
		AISuggestedCategory: suggestedCategory,
		AISuggestedPriority: suggestedPriority,
		Responses:           []tickets.Response{},
	}
	if t.Category == "" {
		t.Category = categoryFallback
		if suggestedCategory != nil {
			t.Category = *suggestedCategory
		}
	}
	if t.Priority == "" {
		t.Priority = tickets.PriorityMedium
		if suggestedPriority != nil {
			t.Priority = *suggestedPriority
		}
	}
	if t.Status == "" {
		t.Status = tickets.StatusOpen
	}
	s.tickets[t.ID] = t
	return t
}

// classify is a keyword stand-in for the backend's LLM categorisation.
func classify(title, description string) (category string, priority string) {
	text := strings.ToLower(title + " " + description)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}

	switch {
	case has("password", "login", "log in", "account", "sign in"):
		category, priority = "Account Issue", tickets.PriorityHigh
	case has("error", "crash", "bug", "fail", "broken"):
		category, priority = "Technical Issue", tickets.PriorityHigh
	case has("refund", "complaint", "unhappy", "suggestion"):
		category, priority = "Complaint", tickets.PriorityMedium
	case has("price", "plan", "feature", "how do", "how to"):
		category, priority = "Product Inquiry", tickets.PriorityLow
	default:
		category, priority = categoryFallback, tickets.PriorityMedium
	}
	if has("urgent", "asap", "immediately") {
		priority = tickets.PriorityUrgent
	}
	return category, priority
}

func generateReply(t *tickets.Ticket) string {
	eta := map[string]string{
		tickets.PriorityUrgent: "4 hours",
		tickets.PriorityHigh:   "1 business day",
		tickets.PriorityMedium: "2 business days",
		tickets.PriorityLow:    "5 business days",
	}[t.Priority]
	if eta == "" {
		eta = "2 business days"
	}
	return "Thank you for contacting support about \"" + t.Title + "\". We understand this is a " +
		strings.ToLower(t.Category) + " and have queued it with " + t.Priority +
		" priority. An engineer will follow up within " + eta + "."
}

func canSee(u *user, t *tickets.Ticket) bool {
	if u.IsStaff {
		return true
	}
	if t.CreatedBy != nil && t.CreatedBy.ID == u.ID {
		return true
	}
	return t.AssignedTo != nil && *t.AssignedTo == u.ID
}

func ticketID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func copyTicket(t *tickets.Ticket) tickets.Ticket {
	out := *t
	out.Responses = append([]tickets.Response{}, t.Responses...)
	return out
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listUsers())
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	s.mu.RLock()
	out := make([]tickets.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if canSee(u, t) {
			out = append(out, copyTicket(t))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(out),
		"next":     nil,
		"previous": nil,
		"results":  out,
	})
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)

	var req tickets.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - %v", err)
		return
	}

	fieldErrors := map[string][]string{}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = []string{"This field may not be blank."}
	}
	if strings.TrimSpace(req.Description) == "" {
		fieldErrors["description"] = []string{"This field may not be blank."}
	}
	if req.Priority != "" {
		if p, err := tickets.NormalizePriority(req.Priority); err != nil {
			fieldErrors["priority"] = []string{err.Error()}
		} else {
			req.Priority = p
		}
	}
	if req.Status != "" {
		if st, err := tickets.NormalizeStatus(req.Status); err != nil {
			fieldErrors["status"] = []string{err.Error()}
		} else {
			req.Status = st
		}
	}
	if req.AssignedTo != nil {
		if _, ok := s.userByID(*req.AssignedTo); !ok {
			fieldErrors["assigned_to"] = []string{"Invalid pk - object does not exist."}
		}
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, fieldErrors)
		return
	}

	s.mu.Lock()
	t := copyTicket(s.insertTicketLocked(u.User, req))
	s.mu.Unlock()

	w.Header().Set("Location", APIPrefix+"/tickets/"+strconv.Itoa(t.ID)+"/")
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := ticketID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	s.mu.RLock()
	t, exists := s.tickets[id]
	var out tickets.Ticket
	if exists {
		out = copyTicket(t)
	}
	s.mu.RUnlock()

	if !exists {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := ticketID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	var req tickets.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - %v", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {err.Error()}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, exists := s.tickets[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if !u.IsStaff && (t.CreatedBy == nil || t.CreatedBy.ID != u.ID) {
		writeDetail(w, http.StatusForbidden, detailPermissionDenied)
		return
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.AssignedTo != nil {
		t.AssignedTo = req.AssignedTo
	}
	t.UpdatedAt = s.nowFunc().UTC()
	writeJSON(w, http.StatusOK, copyTicket(t))
}

func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := ticketID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, exists := s.tickets[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	if !u.IsStaff && (t.CreatedBy == nil || t.CreatedBy.ID != u.ID) {
		writeDetail(w, http.StatusForbidden, detailPermissionDenied)
		return
	}
	delete(s.tickets, id)
	w.WriteHeader(http.StatusNoContent)
}

type replyRequest struct {
	ResponseText string `json:"response_text"`
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := ticketID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - %v", err)
		return
	}
	text := strings.TrimSpace(req.ResponseText)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"response_text": {"Reply text may not be blank."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, exists := s.tickets[id]
	if !exists {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, s.appendResponseLocked(t, u, text, false))
}

func (s *Server) handleAIResponse(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	id, ok := ticketID(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, exists := s.tickets[id]
	if !exists || (!u.IsStaff && (t.AssignedTo == nil || *t.AssignedTo != u.ID)) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, s.appendResponseLocked(t, u, generateReply(t), true))
}

func (s *Server) appendResponseLocked(t *tickets.Ticket, author *user, text string, generated bool) tickets.Response {
	s.nextResponseID++
	resp := tickets.Response{
		ID:            s.nextResponseID,
		ResponseText:  text,
		IsAIGenerated: generated,
		CreatedBy:     author.User,
		CreatedAt:     s.nowFunc().UTC().Add(time.Duration(s.nextResponseID) * time.Microsecond),
	}
	t.Responses = append(t.Responses, resp)
	t.UpdatedAt = resp.CreatedAt
	return resp
}
