package usecase

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"serprank/internal/domain"
	"serprank/internal/infra/config"
	"serprank/internal/infra/tracer"
)

// Bot handles inbound chat commands and turns them into replies.
// It is stateless: every invocation is independent and safe to run
// concurrently.
type Bot struct {
	search domain.SearchProvider
	locale Locale
	num    int
	logger *slog.Logger
}

// NewBot creates the command bot. Locale parameters and the result count are
// fixed at startup from configuration.
func NewBot(search domain.SearchProvider, cfg config.SearchConfig, logger *slog.Logger) *Bot {
	return &Bot{
		search: search,
		locale: Locale{GL: cfg.GL, HL: cfg.HL},
		num:    cfg.Num,
		logger: logger,
	}
}

// Respond handles one inbound message. The second return value reports
// whether the message was addressed to this bot; unhandled messages produce
// no reply. Failures never propagate: they are converted to user-visible
// reply text, so the request loop keeps running.
func (b *Bot) Respond(ctx context.Context, msg domain.InboundMessage) (domain.OutboundMessage, bool) {
	if !strings.HasPrefix(msg.Content, "/") {
		return domain.OutboundMessage{}, false
	}

	fields := strings.Fields(msg.Content)
	if len(fields) == 0 {
		return domain.OutboundMessage{}, false
	}

	// Group chats suffix commands with @botname; the channel has already
	// filtered out commands addressed to other bots.
	cmd := fields[0]
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}

	switch cmd {
	case "/start", "/help":
		return b.reply(msg, usageText()), true
	case "/s":
		keyword := strings.TrimSpace(strings.Join(fields[1:], " "))
		return b.handleSearch(ctx, msg, keyword), true
	default:
		return domain.OutboundMessage{}, false
	}
}

// handleSearch runs the search → rank → render pipeline for one keyword.
func (b *Bot) handleSearch(ctx context.Context, msg domain.InboundMessage, keyword string) domain.OutboundMessage {
	if keyword == "" {
		return b.reply(msg, "Example:\n<code>/s coffee beans</code>")
	}

	ctx, span := tracer.StartSpan(ctx, "bot.search")
	defer span.End()
	span.SetAttributes(
		tracer.StringAttr("bot.keyword", keyword),
		tracer.StringAttr("bot.chat_id", msg.SessionID),
	)

	results, err := b.search.Search(ctx, domain.SearchQuery{
		Keyword: keyword,
		GL:      b.locale.GL,
		HL:      b.locale.HL,
		Num:     b.num,
	})
	if err != nil {
		tracer.RecordError(span, err)
		b.logger.Warn("search failed",
			"keyword", keyword,
			"chat_id", msg.SessionID,
			"code", domain.ErrorCodeOf(err),
			"error", err,
		)
		return b.reply(msg, fmt.Sprintf("⚠️ Search failed:\n<code>%s</code>", html.EscapeString(err.Error())))
	}

	entries := RankDomains(results)
	span.SetAttributes(
		tracer.IntAttr("bot.results", len(results)),
		tracer.IntAttr("bot.domains", len(entries)),
	)
	tracer.SetOK(span)

	b.logger.Info("search handled",
		"keyword", keyword,
		"chat_id", msg.SessionID,
		"results", len(results),
		"domains", len(entries),
	)
	return b.reply(msg, RenderReport(keyword, b.locale, entries))
}

func (b *Bot) reply(msg domain.InboundMessage, content string) domain.OutboundMessage {
	return domain.OutboundMessage{
		SessionID: msg.SessionID,
		Content:   content,
	}
}

func usageText() string {
	return "🤖 <b>SERP rank bot</b>\n\n" +
		"Usage:\n" +
		"🔎 <code>/s [keyword]</code>\n" +
		"Example:\n" +
		"<code>/s coffee beans</code>\n\n" +
		"Results look like:\n" +
		"🏆 Top 1: domain.com\n" +
		"⭐ Top 2: domain.com"
}
