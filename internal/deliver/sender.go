// Package deliver hands finished drafts to a delivery sink: the OS mail
// client via a mailto: link, an SMTP server, or the Gmail API.
package deliver

import (
	"context"
	"fmt"

	"github.com/hal9000y/mail-agent/internal/compose"
)

// Sender is one delivery sink. The sink is chosen at process start and is not
// switchable mid-session.
type Sender interface {
	Send(ctx context.Context, d *compose.Draft) error
}

// DeliveryError wraps a transport failure. The session stays active; the user
// decides whether to retry or cancel.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
