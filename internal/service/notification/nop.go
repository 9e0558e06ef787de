package notification

import (
	"context"

	"barbearia/internal/email"
)

// NopSender implements email.Service and discards every message. Used by
// tests and local setups without an SMTP relay.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, msg *email.Message) error {
	return nil
}

var _ email.Service = NopSender{}
