package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"serprank/internal/adapter/channel"
	"serprank/internal/adapter/search"
	"serprank/internal/domain"
	"serprank/internal/infra/config"
	"serprank/internal/infra/logger"
	"serprank/internal/infra/tracer"
	"serprank/internal/usecase"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--help" || arg == "-h" {
			showUsage()
			return
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`serprank - Telegram bot reporting Google SERP domain ranks via Serper

USAGE:
    serprank [FLAGS]

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./config.yaml)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: SERPRANK_* variables override config

    Required: telegram.token (SERPRANK_TELEGRAM_TOKEN)
              search.api_key (SERPRANK_SERPER_API_KEY)

EXAMPLES:
    SERPRANK_TELEGRAM_TOKEN=... SERPRANK_SERPER_API_KEY=... serprank
    serprank --config /etc/serprank/config.yaml`)
}

// configPath returns the config file path from --config, or the default.
func configPath() string {
	for i := 1; i < len(os.Args); i++ {
		switch {
		case os.Args[i] == "--config" && i+1 < len(os.Args):
			return os.Args[i+1]
		case strings.HasPrefix(os.Args[i], "--config="):
			return strings.TrimPrefix(os.Args[i], "--config=")
		}
	}
	return "./config.yaml"
}

func run() error {
	// 1. Config — missing credentials abort startup here.
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfigLoad, err)
	}

	// 2. Logger
	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Tracer
	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}

	// 4. Search provider
	var provider domain.SearchProvider = search.NewSerperClient(cfg.Search.APIKey, log,
		search.WithEndpoint(cfg.Search.Endpoint),
		search.WithTimeout(cfg.Search.Timeout),
	)
	if cfg.Search.CircuitBreaker.Enabled {
		provider = search.NewCircuitBreakerProvider(provider, cfg.Search.CircuitBreaker, log)
	}

	// 5. Bot + channel
	bot := usecase.NewBot(provider, cfg.Search, log)
	ch := channel.NewTelegramChannel(cfg.Telegram.Token, log)

	handler := func(ctx context.Context, msg domain.InboundMessage) error {
		out, ok := bot.Respond(ctx, msg)
		if !ok {
			return nil
		}
		return ch.Send(ctx, out)
	}

	if err := ch.Start(ctx, handler); err != nil {
		return fmt.Errorf("start channel: %w", err)
	}

	log.Info("serprank started",
		"channel", ch.Name(),
		"provider", provider.Name(),
		"gl", cfg.Search.GL,
		"hl", cfg.Search.HL,
		"num", cfg.Search.Num,
	)

	<-ctx.Done()
	log.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.Stop(stopCtx); err != nil {
		log.Warn("channel stop failed", "error", err)
	}
	if err := shutdownTracer(stopCtx); err != nil {
		log.Warn("tracer shutdown failed", "error", err)
	}

	return nil
}
