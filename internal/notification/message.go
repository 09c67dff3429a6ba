package notification

import (
	"context"
	"strings"
)

type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errMissingRecipient
	}
	for _, rcpt := range m.To {
		if strings.TrimSpace(rcpt) == "" {
			return errMissingRecipient
		}
	}
	if m.Subject == "" {
		return errMissingSubject
	}
	return nil
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
