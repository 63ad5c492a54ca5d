package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-agent/internal/recipient"
)

// ResolveRecipientRequest carries raw recipient input: either an address or a
// free-text description.
type ResolveRecipientRequest struct {
	Query string `json:"query" jsonschema:"email address or description of the person to email"`
}

// ResolveRecipientResponse returns the best match plus ranked alternates.
type ResolveRecipientResponse struct {
	Best       recipient.Resolved   `json:"best" jsonschema:"the best matching recipient"`
	Candidates []recipient.Resolved `json:"candidates,omitempty" jsonschema:"ranked alternates including the best match"`
}

type resolveRecipientSvc interface {
	Resolve(ctx context.Context, raw string) (*recipient.Lookup, error)
}

// NewResolveRecipient creates the resolve_recipient tool.
func NewResolveRecipient(svc resolveRecipientSvc) *ResolveRecipient {
	return &ResolveRecipient{svc: svc}
}

// ResolveRecipient resolves recipient queries for MCP clients.
type ResolveRecipient struct {
	svc resolveRecipientSvc
}

// ResolveRecipient handles one tool call.
func (t *ResolveRecipient) ResolveRecipient(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveRecipientRequest,
) (*mcp.CallToolResult, ResolveRecipientResponse, error) {
	lookup, err := t.svc.Resolve(ctx, input.Query)
	if err != nil {
		return nil, ResolveRecipientResponse{}, fmt.Errorf("svc.Resolve failed: %w", err)
	}

	return nil, ResolveRecipientResponse{
		Best:       lookup.Best,
		Candidates: lookup.Candidates,
	}, nil
}
