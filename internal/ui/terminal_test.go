package ui_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/recipient"
	"github.com/hal9000y/mail-agent/internal/review"
	"github.com/hal9000y/mail-agent/internal/ui"
)

func newTerminal(input string) (*ui.Terminal, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return ui.NewTerminal(strings.NewReader(input), out, "Send"), out
}

func sampleDraft() *compose.Draft {
	return &compose.Draft{
		Subject:   "Office hours",
		Body:      "Dear Prof. Smith,\n\nBest Regards,\nBhagyesh",
		Recipient: recipient.Resolved{Address: "prof.smith@uic.edu"},
	}
}

func TestNextAction(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected review.Action
	}{
		{"accept", "a\n", review.Action{Kind: review.ActionAccept}},
		{"accept full word", "accept\n", review.Action{Kind: review.ActionAccept}},
		{"edit with feedback", "e\nmake it shorter\n", review.Action{Kind: review.ActionRevise, Feedback: "make it shorter"}},
		{"cancel", "c\n", review.Action{Kind: review.ActionCancel}},
		{"anything else cancels", "what?\n", review.Action{Kind: review.ActionCancel}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			term, _ := newTerminal(tc.input)

			action, err := term.NextAction(sampleDraft())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, action)
		})
	}
}

func TestNextActionEmptyFeedbackReAsks(t *testing.T) {
	// Empty feedback abandons the edit and re-presents the menu.
	term, out := newTerminal("e\n\na\n")

	action, err := term.NextAction(sampleDraft())
	require.NoError(t, err)

	assert.Equal(t, review.ActionAccept, action.Kind)
	assert.Equal(t, 2, strings.Count(out.String(), "Choose an option"))
}

func TestNextActionEOF(t *testing.T) {
	term, _ := newTerminal("")

	_, err := term.NextAction(sampleDraft())
	require.ErrorIs(t, err, io.EOF)
}

func TestConfirmDelivery(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"no\n", false},
		{"\n", false},
	}

	for _, tc := range cases {
		t.Run(strings.TrimSpace(tc.input)+"_input", func(t *testing.T) {
			term, out := newTerminal(tc.input)

			ok, err := term.ConfirmDelivery(sampleDraft())
			require.NoError(t, err)

			assert.Equal(t, tc.expected, ok)
			assert.Contains(t, out.String(), "prof.smith@uic.edu")
		})
	}
}

func TestShowDraft(t *testing.T) {
	term, out := newTerminal("")

	term.ShowDraft(sampleDraft())

	rendered := out.String()
	assert.Contains(t, rendered, "Email Draft")
	assert.Contains(t, rendered, "To     : prof.smith@uic.edu")
	assert.Contains(t, rendered, "Subject: Office hours")
	assert.Contains(t, rendered, "Best Regards,\nBhagyesh")
}

func TestPromptTrimsAndHandlesMissingNewline(t *testing.T) {
	term, _ := newTerminal("  hello  ")

	line, err := term.Prompt()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	_, err = term.Prompt()
	require.ErrorIs(t, err, io.EOF)
}
