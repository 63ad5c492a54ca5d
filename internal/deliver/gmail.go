package deliver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hal9000y/mail-agent/internal/auth"
	"github.com/hal9000y/mail-agent/internal/compose"
)

const gmailUserID = "me"

// Gmail submits drafts through the Gmail API using an OAuth token obtained via
// the consent flow in the auth package.
type Gmail struct {
	cfg  *oauth2.Config
	tok  *auth.Token
	from string
}

// NewGmail creates the automatic Gmail API sink.
func NewGmail(cfg *oauth2.Config, tok *auth.Token, from string) *Gmail {
	return &Gmail{
		cfg:  cfg,
		tok:  tok,
		from: from,
	}
}

// Send transmits the draft via users.messages.send.
func (g *Gmail) Send(ctx context.Context, d *compose.Draft) error {
	svc, err := g.newSvc(ctx)
	if err != nil {
		return &DeliveryError{Err: err}
	}

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(rfc822(g.from, d))}

	if _, err := svc.Users.Messages.Send(gmailUserID, msg).Do(); err != nil {
		return &DeliveryError{Err: fmt.Errorf("messages.Send failed: %w", err)}
	}

	return nil
}

func (g *Gmail) newSvc(ctx context.Context) (*gmail.Service, error) {
	t, err := g.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := g.cfg.Client(ctx, t)

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(clt))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}

func rfc822(from string, d *compose.Draft) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", d.Recipient.Address)
	fmt.Fprintf(&b, "Subject: %s\r\n", d.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(d.Body)

	return []byte(b.String())
}
