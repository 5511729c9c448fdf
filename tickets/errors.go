package tickets

import "errors"

var (
	ErrInvalidTicket = errors.New("invalid ticket")
	ErrEmptyReply    = errors.New("reply text is required")
)
