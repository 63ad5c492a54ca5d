package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/recipient"
)

// DraftEmailRequest describes a fresh draft to generate.
type DraftEmailRequest struct {
	Address      string `json:"address" jsonschema:"the recipient email address"`
	DisplayName  string `json:"display_name,omitempty" jsonschema:"the recipient's name, when known"`
	Instructions string `json:"instructions" jsonschema:"what the email should say"`
}

// ReviseEmailRequest describes an edit of an existing draft.
type ReviseEmailRequest struct {
	Address  string `json:"address" jsonschema:"the recipient email address, kept unchanged"`
	Subject  string `json:"subject" jsonschema:"the existing draft subject"`
	Body     string `json:"body" jsonschema:"the existing draft body"`
	Feedback string `json:"feedback" jsonschema:"the requested edits"`
}

// DraftEmailResponse is a finished draft: signature enforced, no placeholders.
type DraftEmailResponse struct {
	To      string `json:"to" jsonschema:"the recipient email address"`
	Subject string `json:"subject" jsonschema:"the draft subject"`
	Body    string `json:"body" jsonschema:"the draft body"`
}

type draftEmailSvc interface {
	Compose(ctx context.Context, to recipient.Resolved, instructions string) (*compose.Draft, error)
	Revise(ctx context.Context, prior *compose.Draft, feedback string) (*compose.Draft, error)
}

// NewDraftEmail creates the draft_email tool.
func NewDraftEmail(svc draftEmailSvc) *DraftEmail {
	return &DraftEmail{svc: svc}
}

// DraftEmail generates drafts for MCP clients.
type DraftEmail struct {
	svc draftEmailSvc
}

// DraftEmail handles one tool call.
func (t *DraftEmail) DraftEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DraftEmailRequest,
) (*mcp.CallToolResult, DraftEmailResponse, error) {
	to := recipient.Resolved{
		Address:     input.Address,
		DisplayName: input.DisplayName,
		Confidence:  recipient.ConfidenceExact,
	}

	draft, err := t.svc.Compose(ctx, to, input.Instructions)
	if err != nil {
		return nil, DraftEmailResponse{}, fmt.Errorf("svc.Compose failed: %w", err)
	}

	return nil, draftResponse(draft), nil
}

// NewReviseEmail creates the revise_email tool.
func NewReviseEmail(svc draftEmailSvc) *ReviseEmail {
	return &ReviseEmail{svc: svc}
}

// ReviseEmail revises drafts for MCP clients.
type ReviseEmail struct {
	svc draftEmailSvc
}

// ReviseEmail handles one tool call.
func (t *ReviseEmail) ReviseEmail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReviseEmailRequest,
) (*mcp.CallToolResult, DraftEmailResponse, error) {
	prior := &compose.Draft{
		Subject: input.Subject,
		Body:    input.Body,
		Recipient: recipient.Resolved{
			Address:    input.Address,
			Confidence: recipient.ConfidenceExact,
		},
	}

	draft, err := t.svc.Revise(ctx, prior, input.Feedback)
	if err != nil {
		return nil, DraftEmailResponse{}, fmt.Errorf("svc.Revise failed: %w", err)
	}

	return nil, draftResponse(draft), nil
}

func draftResponse(d *compose.Draft) DraftEmailResponse {
	return DraftEmailResponse{
		To:      d.Recipient.Address,
		Subject: d.Subject,
		Body:    d.Body,
	}
}
