// Mail agent with manual delivery: drafts are opened in the OS mail client
// through a mailto: link and sent by hand.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms/openai"

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
	flag.Parse()

	setupLogger(*debug)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("config.Load failed")
	}
	if err := cfg.ValidateManual(); err != nil {
		log.Fatal().Err(err).Msg("configuration is incomplete")
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(cfg.OpenAIModel),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("openai.New failed")
	}

	var searcher recipient.Searcher
	if cfg.SearchConfigured() {
		searcher = gsearch.New(cfg.SearchAPIKey, cfg.SearchEngineID)
	}

	composer := compose.NewComposer(llm, cfg.SenderName, cfg.Signature)
	resolver := recipient.NewResolver(searcher, cfg.OrgDomain)
	term := ui.NewTerminal(os.Stdin, os.Stdout, "Open in Mail app")
	loop := review.NewLoop(composer, deliver.NewMailto(), term, false)

	sess := session.New(session.Config{
		Terminal:         term,
		Resolver:         resolver,
		Composer:         composer,
		Loop:             loop,
		Title:            "Mail Agent",
		SenderAddress:    cfg.EmailAddress,
		SearchEnabled:    cfg.SearchConfigured(),
		DeliveredMessage: "Opened in your default mail app. Review and send there.",
		CancelledMessage: "Draft not opened.",
	})

	if err := sess.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("session.Run failed")
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
