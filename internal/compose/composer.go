package compose

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"

	"github.com/hal9000y/mail-agent/internal/recipient"
)

// maxAttempts caps regeneration when a placeholder survives correction.
// Exhausting the cap surfaces ErrPlaceholderLeft instead of looping.
const maxAttempts = 2

// knownPlaceholders are tokens models substitute for the sender despite being
// told not to. They are replaced with the real sender name before scanning for
// anything that slipped through.
var knownPlaceholders = []string{
	"[Your Name]", "[Your Full Name]", "[Your Name Here]",
	"[Insert Name]", "[Signature]", "[Your Signature]",
	"{Your Name}", "{Signature}",
}

var placeholderPattern = regexp.MustCompile(`\[[^\[\]\n]+\]|\{[^{}\n]+\}`)

// Composer turns recipient + instructions into a Draft via an llms.Model.
type Composer struct {
	llm        llms.Model
	senderName string
	signature  string
}

// NewComposer creates a Composer. The signature block is enforced verbatim at
// the end of every draft body.
func NewComposer(llm llms.Model, senderName, signature string) *Composer {
	return &Composer{
		llm:        llm,
		senderName: senderName,
		signature:  signature,
	}
}

// Compose generates a fresh draft for the recipient from free-text
// instructions.
func (c *Composer) Compose(ctx context.Context, to recipient.Resolved, instructions string) (*Draft, error) {
	return c.generate(ctx, to, c.composePrompt(to, instructions))
}

// Revise produces a new Draft from an existing one plus edit feedback. The
// prior draft is left untouched and the recipient address never changes.
func (c *Composer) Revise(ctx context.Context, prior *Draft, feedback string) (*Draft, error) {
	return c.generate(ctx, prior.Recipient, c.revisePrompt(prior, feedback))
}

func (c *Composer) generate(ctx context.Context, to recipient.Resolved, prompt string) (*Draft, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
			llms.WithTemperature(0.4),
			llms.WithJSONMode(),
		)
		if err != nil {
			return nil, &GenerationError{Err: fmt.Errorf("llms.GenerateFromSinglePrompt failed: %w", err)}
		}

		payload, err := parseDraftPayload(raw)
		if err != nil {
			return nil, &GenerationError{Err: err}
		}

		body, err := c.cleanBody(payload.Body)
		if err != nil {
			log.Debug().Int("attempt", attempt).Msg("Placeholder survived correction, regenerating")
			lastErr = err
			continue
		}

		return &Draft{
			Subject:   strings.TrimSpace(payload.Subject),
			Body:      body,
			Recipient: to,
		}, nil
	}

	return nil, fmt.Errorf("generation gave up after %d attempts: %w", maxAttempts, lastErr)
}

// cleanBody applies the post-processing contract: replace known placeholder
// tokens, trim trailing whitespace, append the signature block when missing,
// then fail if any placeholder pattern remains.
func (c *Composer) cleanBody(body string) (string, error) {
	for _, ph := range knownPlaceholders {
		body = strings.ReplaceAll(body, ph, c.senderName)
	}

	body = strings.TrimRight(body, " \t\r\n")
	if !strings.HasSuffix(strings.ToLower(body), strings.ToLower(c.signature)) {
		body += "\n\n" + c.signature
	}

	if placeholderPattern.MatchString(body) {
		return "", ErrPlaceholderLeft
	}

	return body, nil
}

func (c *Composer) composePrompt(to recipient.Resolved, instructions string) string {
	var b strings.Builder

	b.WriteString("You are an email drafting assistant.\n")
	b.WriteString("Return ONLY a JSON object with exactly these keys: 'to', 'subject', 'body'.\n")
	fmt.Fprintf(&b, "'to' must be exactly: %s\n", to.Address)
	b.WriteString("'subject' must be a short, clear line (<= 80 characters).\n")
	b.WriteString("'body' must be a polite, professional email in plain text.\n")
	b.WriteString(c.salutationRule(to))
	b.WriteString("Never include placeholders such as [Your Name].\n")
	fmt.Fprintf(&b, "Always end the body with:\n%s\n", c.signature)
	b.WriteString("Do NOT include markdown, explanations, or extra keys.\n\n")

	fmt.Fprintf(&b, "Recipient email: %s\n", to.Address)
	if to.DisplayName != "" {
		fmt.Fprintf(&b, "Recipient name: %s\n", to.DisplayName)
	}
	fmt.Fprintf(&b, "\nWhat I want to say: %s\n", instructions)

	return b.String()
}

func (c *Composer) revisePrompt(prior *Draft, feedback string) string {
	var b strings.Builder

	b.WriteString("You edit emails.\n")
	b.WriteString("Return ONLY a JSON object with exactly these keys: 'to', 'subject', 'body'.\n")
	fmt.Fprintf(&b, "'to' must stay exactly: %s\n", prior.Recipient.Address)
	b.WriteString("Keep the tone clear and professional. No placeholders allowed.\n")
	fmt.Fprintf(&b, "Always end the body with:\n%s\n\n", c.signature)

	fmt.Fprintf(&b, "Existing subject: %s\n", prior.Subject)
	fmt.Fprintf(&b, "Existing body:\n%s\n\n", prior.Body)
	fmt.Fprintf(&b, "Edit instructions: %s\n", feedback)

	return b.String()
}

func (c *Composer) salutationRule(to recipient.Resolved) string {
	if to.DisplayName != "" {
		return fmt.Sprintf(
			"Use the provided recipient name exactly for the salutation (e.g. 'Dear Dr. Smith,'). The recipient name is: %s\n",
			to.DisplayName)
	}
	return "No recipient name is available. Use a generic greeting like 'Hello Professor,' without guessing or repeating the email address.\n"
}
