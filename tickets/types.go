package tickets

import (
	"fmt"
	"strings"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusClosed     = "closed"
)

var (
	allowedPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
	allowedStatuses   = []string{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
)

type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Response is a reply posted on a ticket, written by staff or generated.
type Response struct {
	ID            int       `json:"id"`
	ResponseText  string    `json:"response_text"`
	IsAIGenerated bool      `json:"is_ai_generated"`
	CreatedBy     User      `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type Ticket struct {
	ID                  int        `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	Priority            string     `json:"priority"`
	Status              string     `json:"status"`
	Category            string     `json:"category"`
	CreatedBy           *User      `json:"created_by"`
	AssignedTo          *int       `json:"assigned_to"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	AISuggestedPriority *string    `json:"ai_suggested_priority"`
	AISuggestedCategory *string    `json:"ai_suggested_category"`
	Responses           []Response `json:"responses"`
}

// CreateRequest is the body of a new ticket. Category and priority may be
// left empty, in which case the backend fills them from its AI suggestion.
type CreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	AssignedTo  *int   `json:"assigned_to,omitempty"`
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	AssignedTo  *int    `json:"assigned_to,omitempty"`
}

// NeedsAISuggestion reports whether the backend will have to classify the ticket.
func (c CreateRequest) NeedsAISuggestion() bool {
	return strings.TrimSpace(c.Category) == "" || strings.TrimSpace(c.Priority) == ""
}

func (c *CreateRequest) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidTicket)
	}
	if c.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidTicket)
	}
	if c.Priority != "" {
		p, err := NormalizePriority(c.Priority)
		if err != nil {
			return err
		}
		c.Priority = p
	}
	if c.Status != "" {
		s, err := NormalizeStatus(c.Status)
		if err != nil {
			return err
		}
		c.Status = s
	}
	return nil
}

func (u *UpdateRequest) Validate() error {
	if u.Priority != nil {
		p, err := NormalizePriority(*u.Priority)
		if err != nil {
			return err
		}
		u.Priority = &p
	}
	if u.Status != nil {
		s, err := NormalizeStatus(*u.Status)
		if err != nil {
			return err
		}
		u.Status = &s
	}
	return nil
}

// NormalizePriority lower-cases p and checks it against the allowed set.
func NormalizePriority(p string) (string, error) {
	return normalize(p, allowedPriorities, "priority")
}

// NormalizeStatus lower-cases s and checks it against the allowed set.
func NormalizeStatus(s string) (string, error) {
	return normalize(s, allowedStatuses, "status")
}

func normalize(value string, allowed []string, field string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s must be one of %s", ErrInvalidTicket, field, strings.Join(allowed, ", "))
}
