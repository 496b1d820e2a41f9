package usecase

import (
	"net/url"
	"sort"
	"strings"

	"serprank/internal/domain"
)

// ExtractDomain returns the registrable domain of a result link: the host
// portion, lowercased, with any leading "www." removed. Links that do not
// parse as URLs fall back to the raw (lowercased) text so they still
// participate in deduplication.
func ExtractDomain(raw string) string {
	host := ""
	if u, err := url.Parse(raw); err == nil {
		host = u.Host
		if host == "" {
			// Scheme-less links parse entirely into Path.
			host, _, _ = strings.Cut(u.Path, "/")
		}
	}
	if host == "" {
		host = raw
	}
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// RankDomains normalizes search results into a ranked domain list:
// results are walked in provider order, deduplicated by domain (first
// occurrence wins), assigned the provider position when present or a
// sequential fallback otherwise, and sorted ascending by rank.
//
// The fallback rank is len(kept)+1 at the moment a result is kept. When
// provider positions are only partially present this can collide with an
// assigned position; the sort is stable, so the earlier-kept entry renders
// first on a tie.
func RankDomains(results []domain.SearchResult) []domain.DomainRank {
	seen := make(map[string]bool, len(results))
	entries := make([]domain.DomainRank, 0, len(results))

	for _, r := range results {
		dom := ExtractDomain(r.Link)
		if dom == "" || seen[dom] {
			continue
		}
		seen[dom] = true

		pos := r.Position
		if pos <= 0 {
			pos = len(entries) + 1
		}
		entries = append(entries, domain.DomainRank{Position: pos, Domain: dom})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})
	return entries
}
