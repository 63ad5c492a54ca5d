// Package tool exposes the agent's drafting capabilities as MCP tools.
// Delivery is deliberately not exposed; sending stays behind the interactive
// confirmation in the CLI.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type agentSvc interface {
	resolveRecipientSvc
	draftEmailSvc
}

// NewServer creates an MCP server with the mail-agent tools.
func NewServer(svc agentSvc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "mail-agent", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_recipient",
		Description: "Resolve a recipient description or address to a concrete email address",
	}, NewResolveRecipient(svc).ResolveRecipient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_email",
		Description: "Draft a polite email to a resolved recipient from free-text instructions",
	}, NewDraftEmail(svc).DraftEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "revise_email",
		Description: "Revise an existing draft according to edit feedback",
	}, NewReviseEmail(svc).ReviseEmail)

	return server
}
