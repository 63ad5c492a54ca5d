// Package review runs the draft approval loop: present a draft, then accept,
// revise or cancel on the user's say-so. The machine is driven through a
// Prompter so it is testable without a real terminal.
package review

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hal9000y/mail-agent/internal/compose"
)

// State of the review machine for the current draft.
type State int

const (
	// StateDrafted means a fresh draft is ready to present.
	StateDrafted State = iota
	// StateReviewing means the draft was presented and the loop is blocked on
	// a user action.
	StateReviewing
)

// Outcome is the terminal result of one review session.
type Outcome int

const (
	// OutcomeDelivered means the draft was handed to the delivery channel
	// (opened in the mail client, or sent, depending on the channel).
	OutcomeDelivered Outcome = iota
	// OutcomeCancelled means the user abandoned the draft.
	OutcomeCancelled
)

// ActionKind is one of the three user choices on a presented draft.
type ActionKind int

const (
	// ActionAccept hands the draft to the delivery channel.
	ActionAccept ActionKind = iota
	// ActionRevise requests a new draft from the composer with feedback.
	ActionRevise
	// ActionCancel abandons the draft.
	ActionCancel
)

// Action is a user decision, with feedback text when revising.
type Action struct {
	Kind     ActionKind
	Feedback string
}

// Prompter collects user decisions and reports progress. Implementations
// block on input indefinitely; there is no timeout.
type Prompter interface {
	ShowDraft(d *compose.Draft)
	NextAction(d *compose.Draft) (Action, error)
	ConfirmDelivery(d *compose.Draft) (bool, error)
	NotifyError(err error)
}

type composerSvc interface {
	Revise(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error)
}

type senderSvc interface {
	Send(ctx context.Context, d *compose.Draft) error
}

// Loop is the review state machine for a single session.
type Loop struct {
	composer       composerSvc
	sender         senderSvc
	prompter       Prompter
	requireConfirm bool
}

// NewLoop creates a review loop. requireConfirm gates delivery behind an
// explicit per-draft confirmation; automatic channels set it, the manual
// mailto channel does not.
func NewLoop(composer composerSvc, sender senderSvc, prompter Prompter, requireConfirm bool) *Loop {
	return &Loop{
		composer:       composer,
		sender:         sender,
		prompter:       prompter,
		requireConfirm: requireConfirm,
	}
}

// Run reviews the draft until a terminal outcome. Errors from revision or
// delivery are surfaced through the Prompter and keep the session alive; only
// a Prompter input failure aborts the loop.
func (l *Loop) Run(ctx context.Context, draft *compose.Draft) (Outcome, *compose.Draft, error) {
	current := draft
	state := StateDrafted

	for {
		switch state {
		case StateDrafted:
			l.prompter.ShowDraft(current)
			state = StateReviewing

		case StateReviewing:
			action, err := l.prompter.NextAction(current)
			if err != nil {
				return OutcomeCancelled, current, err
			}

			switch action.Kind {
			case ActionCancel:
				return OutcomeCancelled, current, nil

			case ActionRevise:
				next, err := l.composer.Revise(ctx, current, action.Feedback)
				if err != nil {
					// Keep the prior draft; the user may retry or cancel.
					l.prompter.NotifyError(err)
					continue
				}
				current = next
				state = StateDrafted

			case ActionAccept:
				if l.requireConfirm {
					ok, err := l.prompter.ConfirmDelivery(current)
					if err != nil {
						return OutcomeCancelled, current, err
					}
					if !ok {
						continue
					}
				}

				if err := l.sender.Send(ctx, current); err != nil {
					l.prompter.NotifyError(err)
					continue
				}

				log.Debug().Str("to", current.Recipient.Address).Msg("Draft handed to delivery channel")

				return OutcomeDelivered, current, nil
			}
		}
	}
}
