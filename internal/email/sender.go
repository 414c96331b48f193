package email

import (
	"context"
	"time"
)

type SendRequest struct {
	To      []string
	From    string
	Subject string
	HTML    string
	ReplyTo string
}

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers transactional mail through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
