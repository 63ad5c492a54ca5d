// Package recipient turns free-form user input into a concrete email address.
package recipient

import (
	"net/mail"
	"strings"
)

// Confidence distinguishes a user-supplied address from one inferred via
// search.
type Confidence string

const (
	// ConfidenceExact means the user typed the address themselves.
	ConfidenceExact Confidence = "exact"
	// ConfidenceInferred means the address came from a search result.
	ConfidenceInferred Confidence = "inferred"
)

// Resolved is a concrete recipient. Immutable once produced.
type Resolved struct {
	Address     string     `json:"address" jsonschema:"the email address"`
	DisplayName string     `json:"display_name,omitempty" jsonschema:"the recipient's name, when known"`
	Department  string     `json:"department,omitempty" jsonschema:"department or course, when known"`
	Confidence  Confidence `json:"confidence" jsonschema:"exact or inferred"`
}

// QueryKind classifies raw recipient input.
type QueryKind int

const (
	// DirectAddress input already is an email address.
	DirectAddress QueryKind = iota
	// DescriptiveQuery input describes a person and needs a lookup.
	DescriptiveQuery
)

// ClassifyQuery decides whether raw input is an address or a description.
func ClassifyQuery(raw string) QueryKind {
	if _, err := mail.ParseAddress(strings.TrimSpace(raw)); err == nil {
		return DirectAddress
	}
	return DescriptiveQuery
}
