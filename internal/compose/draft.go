// Package compose drafts emails with a generative model and enforces the
// signature and no-placeholder invariants on whatever the model returns.
package compose

import (
	"errors"
	"fmt"

	"github.com/hal9000y/mail-agent/internal/recipient"
)

// Draft is one generated email. Drafts are never edited in place; every
// revision produces a new value so each step of a session stays auditable.
type Draft struct {
	Subject   string
	Body      string
	Recipient recipient.Resolved
}

// ErrPlaceholderLeft indicates the body still contained a placeholder token
// after correction. Compose retries generation internally; callers only see
// this error once the attempt cap is exhausted.
var ErrPlaceholderLeft = errors.New("placeholder token left in draft body")

// GenerationError wraps a text-generation service failure. The session
// continues; the user decides whether to retry.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("draft generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
