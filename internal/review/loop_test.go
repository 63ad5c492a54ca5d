package review_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/recipient"
	"github.com/hal9000y/mail-agent/internal/review"
)

type composerMock struct {
	ReviseFunc func(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error)
	calls      int
}

func (m *composerMock) Revise(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error) {
	m.calls++
	return m.ReviseFunc(ctx, prior, feedback)
}

type senderMock struct {
	SendFunc func(ctx context.Context, d *compose.Draft) error
	calls    int
}

func (m *senderMock) Send(ctx context.Context, d *compose.Draft) error {
	m.calls++
	return m.SendFunc(ctx, d)
}

// prompterMock replays scripted actions and confirmations and records what
// the loop showed.
type prompterMock struct {
	actions       []review.Action
	confirmations []bool
	shown         []*compose.Draft
	errored       []error
}

func (m *prompterMock) ShowDraft(d *compose.Draft) {
	m.shown = append(m.shown, d)
}

func (m *prompterMock) NextAction(_ *compose.Draft) (review.Action, error) {
	if len(m.actions) == 0 {
		return review.Action{}, fmt.Errorf("no scripted action left")
	}
	a := m.actions[0]
	m.actions = m.actions[1:]
	return a, nil
}

func (m *prompterMock) ConfirmDelivery(_ *compose.Draft) (bool, error) {
	if len(m.confirmations) == 0 {
		return false, fmt.Errorf("no scripted confirmation left")
	}
	c := m.confirmations[0]
	m.confirmations = m.confirmations[1:]
	return c, nil
}

func (m *prompterMock) NotifyError(err error) {
	m.errored = append(m.errored, err)
}

func testDraft(body string) *compose.Draft {
	return &compose.Draft{
		Subject: "Office hours",
		Body:    body,
		Recipient: recipient.Resolved{
			Address:    "prof.smith@uic.edu",
			Confidence: recipient.ConfidenceExact,
		},
	}
}

func TestLoopAcceptDelivers(t *testing.T) {
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error { return nil }}
	prompter := &prompterMock{actions: []review.Action{{Kind: review.ActionAccept}}}
	loop := review.NewLoop(&composerMock{}, sender, prompter, false)

	draft := testDraft("v1")
	outcome, final, err := loop.Run(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeDelivered, outcome)
	assert.Same(t, draft, final)
	assert.Equal(t, 1, sender.calls)
	require.Len(t, prompter.shown, 1)
}

func TestLoopCancel(t *testing.T) {
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error { return nil }}
	prompter := &prompterMock{actions: []review.Action{{Kind: review.ActionCancel}}}
	loop := review.NewLoop(&composerMock{}, sender, prompter, false)

	outcome, _, err := loop.Run(context.Background(), testDraft("v1"))
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeCancelled, outcome)
	assert.Equal(t, 0, sender.calls)
}

func TestLoopReviseReturnsToDrafted(t *testing.T) {
	composer := &composerMock{
		ReviseFunc: func(_ context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error) {
			require.Equal(t, "make it shorter", feedback)
			next := testDraft("v2 (shorter)")
			next.Recipient = prior.Recipient
			return next, nil
		},
	}
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error { return nil }}
	prompter := &prompterMock{actions: []review.Action{
		{Kind: review.ActionRevise, Feedback: "make it shorter"},
		{Kind: review.ActionAccept},
	}}
	loop := review.NewLoop(composer, sender, prompter, false)

	first := testDraft("v1")
	outcome, final, err := loop.Run(context.Background(), first)
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeDelivered, outcome)
	assert.NotSame(t, first, final, "revision produces a new draft")
	assert.Equal(t, "v1", first.Body, "prior draft is never mutated")
	assert.Equal(t, "v2 (shorter)", final.Body)
	require.Len(t, prompter.shown, 2, "revised draft is presented again")
}

func TestLoopReviseFailureKeepsPriorDraft(t *testing.T) {
	composer := &composerMock{
		ReviseFunc: func(context.Context, *compose.Draft, string) (*compose.Draft, error) {
			return nil, fmt.Errorf("simulated generation failure")
		},
	}
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error { return nil }}
	prompter := &prompterMock{actions: []review.Action{
		{Kind: review.ActionRevise, Feedback: "make it shorter"},
		{Kind: review.ActionAccept},
	}}
	loop := review.NewLoop(composer, sender, prompter, false)

	first := testDraft("v1")
	outcome, final, err := loop.Run(context.Background(), first)
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeDelivered, outcome)
	assert.Same(t, first, final)
	require.Len(t, prompter.errored, 1)
}

func TestLoopDeliveryFailureKeepsSessionActive(t *testing.T) {
	attempts := 0
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error {
		attempts++
		if attempts == 1 {
			return fmt.Errorf("simulated auth failure")
		}
		return nil
	}}
	prompter := &prompterMock{actions: []review.Action{
		{Kind: review.ActionAccept},
		{Kind: review.ActionAccept},
	}}
	loop := review.NewLoop(&composerMock{}, sender, prompter, false)

	outcome, _, err := loop.Run(context.Background(), testDraft("v1"))
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeDelivered, outcome)
	assert.Equal(t, 2, sender.calls)
	require.Len(t, prompter.errored, 1)
}

func TestLoopConfirmationGatesDelivery(t *testing.T) {
	sender := &senderMock{SendFunc: func(context.Context, *compose.Draft) error { return nil }}
	prompter := &prompterMock{
		actions: []review.Action{
			{Kind: review.ActionAccept},
			{Kind: review.ActionAccept},
		},
		confirmations: []bool{false, true},
	}
	loop := review.NewLoop(&composerMock{}, sender, prompter, true)

	outcome, _, err := loop.Run(context.Background(), testDraft("v1"))
	require.NoError(t, err)

	assert.Equal(t, review.OutcomeDelivered, outcome)
	assert.Equal(t, 1, sender.calls, "declined confirmation must not send")
}
