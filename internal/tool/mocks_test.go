package tool_test

import (
	"context"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/recipient"
)

type agentSvcMock struct {
	ResolveFunc func(ctx context.Context, raw string) (*recipient.Lookup, error)
	ComposeFunc func(ctx context.Context, to recipient.Resolved, instructions string) (*compose.Draft, error)
	ReviseFunc  func(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error)
}

func (m *agentSvcMock) Resolve(ctx context.Context, raw string) (*recipient.Lookup, error) {
	return m.ResolveFunc(ctx, raw)
}

func (m *agentSvcMock) Compose(ctx context.Context, to recipient.Resolved, instructions string) (*compose.Draft, error) {
	return m.ComposeFunc(ctx, to, instructions)
}

func (m *agentSvcMock) Revise(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error) {
	return m.ReviseFunc(ctx, prior, feedback)
}
