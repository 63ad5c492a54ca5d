// MCP server exposing the mail agent's resolver and composer as tools, over
// stdio and/or streamable HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/hal9000y/mail-agent/internal/compose"
	"github.com/hal9000y/mail-agent/internal/config"
	"github.com/hal9000y/mail-agent/internal/gsearch"
	"github.com/hal9000y/mail-agent/internal/recipient"
	"github.com/hal9000y/mail-agent/internal/tool"
)

// agent bundles the resolver and composer behind the tool service interface.
type agent struct {
	*recipient.Resolver
	*compose.Composer
}

func main() {
	envFile := flag.String("env-file", "", "Path to env file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	httpAddr := flag.String("http-addr", "localhost:0", "HTTP server listen addr")
	enableStdio := flag.Bool("stdio", false, "Enable stdio transport for MCP (disables console logging)")
	logFile := flag.String("log-file", "", "Path to log file (only used with stdio transport, otherwise logs to stderr)")
	flag.Parse()

	persistLogs := setupLogger(*debug, *enableStdio, *logFile)
	defer persistLogs()

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

	svc := &agent{
		Resolver: recipient.NewResolver(searcher, cfg.OrgDomain),
		Composer: compose.NewComposer(llm, cfg.SenderName, cfg.Signature),
	}
	server := tool.NewServer(svc)

	ln, err := net.Listen("tcp", *httpAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("net.Listen failed")
	}

	mcpHTTP := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server { return server }, nil)
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpHTTP)
	srv := &http.Server{Handler: mux}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, syscall.SIGINT)

	stopHTTP, errHTTPCh := serveHTTP(srv, ln)
	defer stopHTTP()

	var errStdioCh <-chan error
	if *enableStdio {
		var stopStdio func()
		stopStdio, errStdioCh = serveStdio(server)
		defer stopStdio()
	}

	select {
	case err := <-errHTTPCh:
		log.Error().Err(err).Msg("HTTP server error")
	case err := <-errStdioCh:
		log.Error().Err(err).Msg("Stdio transport error")
	case <-shutdown:
		log.Info().Msg("Shutdown signal received")
	}
}

func serveStdio(srv *mcp.Server) (func(), <-chan error) {
	errStdioCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		defer close(errStdioCh)
		log.Debug().Msg("Starting stdio transport")

		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			errStdioCh <- fmt.Errorf("srv.Run failed: %w", err)
		}
	}()

	return func() {
		cancel()

		<-errStdioCh
		log.Debug().Msg("Stdio transport stopped")
	}, errStdioCh
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errHTTPCh := make(chan error, 1)
	go func() {
		defer close(errHTTPCh)

		log.Debug().Str("addr", ln.Addr().String()).Msg("Starting http server")

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errHTTPCh <- fmt.Errorf("srv.Serve failed: %w", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("srv.Shutdown failed")
		}

		<-errHTTPCh
		log.Debug().Msg("HTTP server stopped")
	}, errHTTPCh
}

func setupLogger(debug, enableStdio bool, logFile string) func() {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		log.Logger = log.Output(f)

		return func() {
			if err := f.Close(); err != nil {
				fmt.Fprintln(os.Stderr, "log file close failed:", err)
			}
		}
	}

	if enableStdio {
		log.Logger = zerolog.Nop()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	return func() {}
}
