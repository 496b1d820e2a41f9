package usecase

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"serprank/internal/domain"
)

// Telegram caps messages at 4096 characters; we stay under 4000 to leave
// headroom, matching the limit the bot has always enforced.
const (
	maxMessageRunes  = 4000
	truncationSuffix = "\n…(truncated)"
)

// Locale identifies which regional result set a report was built from.
type Locale struct {
	GL string
	HL string
}

// RenderReport renders the ranked domain list as a Telegram HTML message.
// An empty entry list yields a no-results message rather than a bare header.
func RenderReport(keyword string, loc Locale, entries []domain.DomainRank) string {
	if len(entries) == 0 {
		return fmt.Sprintf("No results found for <b>%s</b>.", html.EscapeString(keyword))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 <b>Google SERP</b> (gl=%s, hl=%s)\n", loc.GL, loc.HL)
	fmt.Fprintf(&sb, "Keyword: <code>%s</code>\n", html.EscapeString(keyword))

	for _, e := range entries {
		fmt.Fprintf(&sb, "\n%s Top %d: <code>%s</code>", rankIcon(e.Position), e.Position, html.EscapeString(e.Domain))
	}

	return truncateMessage(sb.String())
}

// rankIcon picks the decorative marker for a rank. Cosmetic policy only.
func rankIcon(pos int) string {
	switch pos {
	case 1:
		return "🏆"
	case 2, 3:
		return "⭐"
	default:
		return "•"
	}
}

// truncateMessage caps s at maxMessageRunes, appending a continuation
// suffix when text was cut. Rune-based so multi-byte characters are never
// split mid-sequence.
func truncateMessage(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageRunes {
		return s
	}
	budget := maxMessageRunes - utf8.RuneCountInString(truncationSuffix)
	runes := []rune(s)
	return string(runes[:budget]) + truncationSuffix
}
