// Mail agent with automatic delivery: drafts are submitted over SMTP or the
// Gmail API after an explicit per-draft confirmation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/mail-agent/internal/auth"
	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/config"
	"github.com/hal9000y/mail-agent/internal/deliver"
	"github.com/hal9000y/mail-agent/internal/gsearch"
	"github.com/hal9000y/mail-agent/internal/recipient"
	"github.com/hal9000y/mail-agent/internal/review"
	"github.com/hal9000y/mail-agent/internal/session"
	"github.com/hal9000y/mail-agent/internal/ui"
)

func main() {
	envFile := flag.String("env-file", "", "Path to env file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	transport := flag.String("transport", "smtp", "Delivery transport: smtp or gmail")
	httpAddr := flag.String("http-addr", "localhost:0", "OAuth callback listen addr (gmail transport)")
	oauthTokenFile := flag.String("oauth-token-file", "./data/mail-agent-token.json", "Path to cache google oauth token, empty to avoid storing")
	flag.Parse()

	setupLogger(*debug)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("config.Load failed")
	}
	if err := cfg.ValidateAuto(config.Transport(*transport)); err != nil {
		log.Fatal().Err(err).Msg("configuration is incomplete")
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(cfg.OpenAIModel),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("openai.New failed")
	}

	sender, stopSender := mustCreateSender(cfg, config.Transport(*transport), *httpAddr, *oauthTokenFile)
	defer stopSender()

	var searcher recipient.Searcher
	if cfg.SearchConfigured() {
		searcher = gsearch.New(cfg.SearchAPIKey, cfg.SearchEngineID)
	}

	composer := compose.NewComposer(llm, cfg.SenderName, cfg.Signature)
	resolver := recipient.NewResolver(searcher, cfg.OrgDomain)
	term := ui.NewTerminal(os.Stdin, os.Stdout, "Send")
	loop := review.NewLoop(composer, sender, term, true)

	sess := session.New(session.Config{
		Terminal:         term,
		Resolver:         resolver,
		Composer:         composer,
		Loop:             loop,
		Title:            "Mail Agent (auto)",
		SenderAddress:    cfg.EmailAddress,
		SearchEnabled:    cfg.SearchConfigured(),
		DeliveredMessage: "Email sent.",
		CancelledMessage: "Cancelled.",
	})

	if err := sess.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("session.Run failed")
	}
}

// mustCreateSender builds the automatic sink. The gmail transport also starts
// a loopback HTTP server for the OAuth consent flow; the returned stop
// function shuts it down and persists the token.
func mustCreateSender(cfg *config.Config, t config.Transport, httpAddr, tokenFile string) (deliver.Sender, func()) {
	switch t {
	case config.TransportSMTP:
		return deliver.NewSMTP(
			cfg.SMTPServer, cfg.SMTPPort,
			cfg.EmailAddress, cfg.EmailAppPassword,
			cfg.SMTPUseSSL, cfg.SMTPUseTLS,
		), func() {}

	case config.TransportGmail:
		return mustCreateGmailSender(cfg, httpAddr, tokenFile)

	default:
		log.Fatal().Str("transport", string(t)).Msg("unknown transport")
		return nil, nil
	}
}

func mustCreateGmailSender(cfg *config.Config, httpAddr, tokenFile string) (deliver.Sender, func()) {
	ln, err := net.Listen("tcp", httpAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("net.Listen failed")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		RedirectURL:  fmt.Sprintf("http://%s/oauth", ln.Addr().String()),
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	tok, err := auth.NewToken(oauthCfg, tokenFile)
	if err != nil {
		log.Fatal().Err(err).Msg("auth.NewToken failed")
	}

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok))
	srv := &http.Server{Handler: mux}
	stopHTTP := serveHTTP(srv, ln)

	if _, err := tok.OAuthToken(); errors.Is(err, auth.ErrTokenNotSet) {
		openBrowser(oauthCfg.RedirectURL + "?redirect=1")
	}

	stop := func() {
		stopHTTP()
		if err := tok.Persist(); err != nil {
			log.Error().Err(err).Msg("tok.Persist failed")
		}
	}

	return deliver.NewGmail(oauthCfg, tok, cfg.EmailAddress), stop
}

func serveHTTP(srv *http.Server, ln net.Listener) func() {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		log.Debug().Str("addr", ln.Addr().String()).Msg("Starting oauth callback server")

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("srv.Shutdown failed")
		}

		<-errCh
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Could not open browser automatically; please open the link manually")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
