// Package session drives one interactive run of the agent: prompt for a
// recipient, resolve it, collect instructions, draft, then hand the draft to
// the review loop. Both entry points share this flow and differ only in the
// delivery channel wired into the loop.
package session

import (
	"context"
	"errors"
	"io"
	"net/mail"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/recipient"
	"github.com/hal9000y/mail-agent/internal/review"
	"github.com/hal9000y/mail-agent/internal/ui"
)

// Resolver resolves raw recipient input.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*recipient.Lookup, error)
}

// Composer produces the initial draft. Revisions go through the review loop.
type Composer interface {
	Compose(ctx context.Context, to recipient.Resolved, instructions string) (*compose.Draft, error)
}

// Loop reviews a draft until a terminal outcome.
type Loop interface {
	Run(ctx context.Context, d *compose.Draft) (review.Outcome, *compose.Draft, error)
}

// Config wires a Session.
type Config struct {
	Terminal      *ui.Terminal
	Resolver      Resolver
	Composer      Composer
	Loop          Loop
	Title         string
	SenderAddress string
	SearchEnabled bool
	// Shown on the respective terminal outcomes of the review loop.
	DeliveredMessage string
	CancelledMessage string
}

// Session is one interactive run. State is ephemeral; nothing survives Run.
type Session struct {
	cfg Config
}

// New creates a Session.
func New(cfg Config) *Session {
	return &Session{cfg: cfg}
}

var errQuit = errors.New("user quit")

func isQuit(s string) bool {
	return s == "quit" || s == "exit" || s == "Quit" || s == "Exit"
}

// Run loops until the user quits or input is exhausted.
func (s *Session) Run(ctx context.Context) error {
	term := s.cfg.Terminal

	term.Section(s.cfg.Title)
	term.Printf("Sender: %s\n", s.cfg.SenderAddress)
	term.Println("Type 'quit' anytime to exit.")
	term.Println()

	for {
		err := s.runOnce(ctx)
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// runOnce handles a single draft from recipient prompt to review outcome.
// A nil error means "continue with the next draft".
func (s *Session) runOnce(ctx context.Context) error {
	term := s.cfg.Terminal

	to, err := s.promptRecipient(ctx)
	if err != nil {
		return err
	}
	if to == nil {
		return nil
	}

	term.Println("\nMessage details:")
	instructions, err := term.Prompt()
	if err != nil {
		return err
	}
	if isQuit(instructions) {
		return errQuit
	}
	if instructions == "" {
		return nil
	}

	term.Println("\nDrafting email...")
	draft, err := s.cfg.Composer.Compose(ctx, *to, instructions)
	if err != nil {
		term.NotifyError(err)
		return nil
	}

	outcome, _, err := s.cfg.Loop.Run(ctx, draft)
	if err != nil {
		return err
	}

	switch outcome {
	case review.OutcomeDelivered:
		term.Println(s.cfg.DeliveredMessage)
	case review.OutcomeCancelled:
		term.Println(s.cfg.CancelledMessage)
	}
	term.Println()

	return nil
}

func (s *Session) promptRecipient(ctx context.Context) (*recipient.Resolved, error) {
	term := s.cfg.Terminal

	term.Println("Recipient options:")
	term.Println("  - Email address (professor@university.edu)")
	term.Println("  - Description (\"Prof Jane Doe, CS 211\")")

	raw, err := term.Prompt()
	if err != nil {
		return nil, err
	}
	if isQuit(raw) {
		return nil, errQuit
	}
	if raw == "" {
		return nil, nil
	}

	if recipient.ClassifyQuery(raw) == recipient.DirectAddress {
		lookup, err := s.cfg.Resolver.Resolve(ctx, raw)
		if err != nil {
			term.NotifyError(err)
			return nil, nil
		}
		return &lookup.Best, nil
	}

	if !s.cfg.SearchEnabled {
		term.Println("Recipient lookup is not configured; set SEARCH_API_KEY, SEARCH_ENGINE_ID and ORG_DOMAIN to enable it.")
		return s.promptManualAddress()
	}

	return s.lookupRecipient(ctx, raw)
}

func (s *Session) lookupRecipient(ctx context.Context, description string) (*recipient.Resolved, error) {
	term := s.cfg.Terminal

	for {
		term.Println("\nSearching for their email address...")

		lookup, err := s.cfg.Resolver.Resolve(ctx, description)
		if err != nil {
			if errors.Is(err, recipient.ErrNotFound) {
				term.Println("No confident match found.")
			} else {
				term.NotifyError(err)
			}

			term.Println("Type the name/description to retry (press Enter to type an email instead):")
			retry, err := term.Prompt()
			if err != nil {
				return nil, err
			}
			if isQuit(retry) {
				return nil, errQuit
			}
			if retry != "" {
				description = retry
				continue
			}
			return s.promptManualAddress()
		}

		best := lookup.Best
		term.Section("Lookup Result")
		term.Printf("Name  : %s\n", orDefault(best.DisplayName, "Unknown"))
		term.Printf("Dept  : %s\n", orDefault(best.Department, "Not provided"))
		term.Printf("Email : %s\n", best.Address)

		if len(lookup.Candidates) > 1 {
			term.Rule()
			term.Println("Other candidates:")
			for i, cand := range lookup.Candidates[1:] {
				term.Printf("%d. %s <%s>\n", i+2, orDefault(cand.DisplayName, "Unknown"), cand.Address)
			}
		}
		term.Rule()

		term.Println("Use this email? (yes/no)")
		answer, err := term.Prompt()
		if err != nil {
			return nil, err
		}
		if isQuit(answer) {
			return nil, errQuit
		}
		if len(answer) > 0 && (answer[0] == 'y' || answer[0] == 'Y') {
			return &best, nil
		}

		return s.promptManualAddress()
	}
}

func (s *Session) promptManualAddress() (*recipient.Resolved, error) {
	term := s.cfg.Terminal

	term.Println("Enter the email address manually (press Enter to start over):")
	manual, err := term.Prompt()
	if err != nil {
		return nil, err
	}
	if isQuit(manual) {
		return nil, errQuit
	}
	if manual == "" {
		return nil, nil
	}

	resolved := recipient.Resolved{Address: manual, Confidence: recipient.ConfidenceExact}
	if addr, err := mail.ParseAddress(manual); err == nil {
		resolved.Address = addr.Address
		resolved.DisplayName = addr.Name
	}

	return &resolved, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
