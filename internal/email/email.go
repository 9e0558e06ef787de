package email

import (
	"context"
)

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Service is the delivery capability. Implementations must be safe for
// concurrent use; the dispatcher calls Send from its worker goroutine.
type Service interface {
	Send(ctx context.Context, msg *Message) error
}
