package deliver

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hal9000y/mail-agent/internal/compose"
)

// Mailto opens the OS mail client with a pre-filled message. Sending happens
// in the mail app; success here only means the handler launched.
type Mailto struct{}

// NewMailto creates the manual delivery sink.
func NewMailto() *Mailto {
	return &Mailto{}
}

// Send builds the mailto: URI and launches the platform handler.
func (m *Mailto) Send(_ context.Context, d *compose.Draft) error {
	uri := MailtoURI(d)

	if err := launchHandler(uri); err != nil {
		return &DeliveryError{Err: err}
	}

	return nil
}

// MailtoURI encodes recipient, subject and body into a mailto: URI with
// percent encoding (spaces as %20, never '+').
func MailtoURI(d *compose.Draft) string {
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		percentEscape(d.Recipient.Address),
		percentEscape(d.Subject),
		percentEscape(d.Body),
	)
}

func percentEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func launchHandler(uri string) error {
	switch runtime.GOOS {
	case "darwin":
		// Prefer Mail.app directly, fall back to the default handler.
		if err := exec.Command("open", "-a", "Mail", uri).Start(); err == nil {
			return nil
		}
		log.Debug().Msg("Could not launch Mail app directly, falling back to default handler")
		return exec.Command("open", uri).Start()
	case "linux":
		return exec.Command("xdg-open", uri).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", uri).Start()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
