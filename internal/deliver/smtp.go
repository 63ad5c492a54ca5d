package deliver

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/hal9000y/mail-agent/internal/compose"
)

// SMTP submits drafts through an SMTP server with an app password. Submission
// is atomic from the caller's perspective: the message is either accepted by
// the server or a DeliveryError is returned.
type SMTP struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTP creates the automatic SMTP sink. useSSL selects implicit TLS
// (typically port 465); with useSSL off, useTLS forces a STARTTLS config for
// submission ports.
func NewSMTP(host string, port int, from, password string, useSSL, useTLS bool) *SMTP {
	d := gomail.NewDialer(host, port, from, password)
	d.SSL = useSSL
	if !useSSL && useTLS {
		d.TLSConfig = &tls.Config{ServerName: host}
	}

	return &SMTP{dialer: d, from: from}
}

// Send transmits the draft. gomail dials, authenticates and submits in one
// step; there is no partial-send state to report.
func (s *SMTP) Send(_ context.Context, d *compose.Draft) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", d.Recipient.Address)
	m.SetHeader("Subject", d.Subject)
	m.SetBody("text/plain", d.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return &DeliveryError{Err: fmt.Errorf("dialer.DialAndSend failed: %w", err)}
	}

	log.Debug().Str("to", d.Recipient.Address).Msg("Message accepted by SMTP server")

	return nil
}
