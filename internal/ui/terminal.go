// Package ui renders the interactive terminal surface and collects user
// decisions for the review loop.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/review"
)

const ruleWidth = 48

// Terminal reads line input and writes prompt text. It implements
// review.Prompter. acceptLabel names the accept action for the configured
// channel ("Open in Mail app" or "Send").
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	acceptLabel string
}

// NewTerminal creates a Terminal over the given streams.
func NewTerminal(in io.Reader, out io.Writer, acceptLabel string) *Terminal {
	return &Terminal{
		in:          bufio.NewReader(in),
		out:         out,
		acceptLabel: acceptLabel,
	}
}

// Rule prints a horizontal separator.
func (t *Terminal) Rule() {
	fmt.Fprintln(t.out, strings.Repeat("-", ruleWidth))
}

// Section prints a heading surrounded by separators.
func (t *Terminal) Section(title string) {
	t.Rule()
	fmt.Fprintln(t.out, title)
	t.Rule()
}

// Println writes a line to the terminal.
func (t *Terminal) Println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

// Printf writes formatted text to the terminal.
func (t *Terminal) Printf(format string, a ...any) {
	fmt.Fprintf(t.out, format, a...)
}

// Prompt prints "> " and reads one trimmed line. io.EOF is returned when
// input is exhausted.
func (t *Terminal) Prompt() (string, error) {
	fmt.Fprint(t.out, "> ")

	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// ShowDraft renders the draft for review.
func (t *Terminal) ShowDraft(d *compose.Draft) {
	t.Section("Email Draft")
	t.Printf("To     : %s\n", d.Recipient.Address)
	t.Printf("Subject: %s\n\n", d.Subject)
	t.Println(d.Body)
	t.Rule()
}

// NextAction asks for one of accept/revise/cancel. Empty revision feedback
// re-asks instead of calling the composer with nothing.
func (t *Terminal) NextAction(_ *compose.Draft) (review.Action, error) {
	for {
		t.Printf("\nChoose an option:\n  [a] %s\n  [e] Edit this message\n  [c] Cancel\n", t.acceptLabel)

		choice, err := t.Prompt()
		if err != nil {
			return review.Action{}, err
		}

		switch {
		case strings.HasPrefix(strings.ToLower(choice), "a"):
			return review.Action{Kind: review.ActionAccept}, nil

		case strings.HasPrefix(strings.ToLower(choice), "e"):
			t.Println("\nDescribe the edits you'd like (enter to cancel editing):")
			feedback, err := t.Prompt()
			if err != nil {
				return review.Action{}, err
			}
			if feedback == "" {
				continue
			}
			return review.Action{Kind: review.ActionRevise, Feedback: feedback}, nil

		default:
			return review.Action{Kind: review.ActionCancel}, nil
		}
	}
}

// ConfirmDelivery asks for the explicit per-draft confirmation required by
// automatic channels.
func (t *Terminal) ConfirmDelivery(d *compose.Draft) (bool, error) {
	t.Printf("\nSend this email to %s? (yes/no) ", d.Recipient.Address)

	answer, err := t.Prompt()
	if err != nil {
		return false, err
	}

	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// NotifyError surfaces a recoverable error; the session stays active.
func (t *Terminal) NotifyError(err error) {
	t.Printf("Error: %v\n\n", err)
}
