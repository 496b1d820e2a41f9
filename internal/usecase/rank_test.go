package usecase

import (
	"testing"

	"serprank/internal/domain"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://www.example.com/page", "example.com"},
		{"http://example.com", "example.com"},
		{"https://Example.COM/Path", "example.com"},
		{"https://sub.example.com/x", "sub.example.com"},
		{"example.com/page", "example.com"},
		{"www.example.com", "example.com"},
		{"https://example.com:8080/x", "example.com:8080"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExtractDomain(tt.link); got != tt.want {
			t.Errorf("ExtractDomain(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}

func TestRankDomainsDeduplicates(t *testing.T) {
	results := []domain.SearchResult{
		{Position: 1, Title: "a", Link: "https://www.a.com/one"},
		{Position: 2, Title: "b", Link: "https://b.com/two"},
		{Position: 3, Title: "a again", Link: "http://a.com/three"},
	}

	entries := RankDomains(results)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		if seen[e.Domain] {
			t.Errorf("duplicate domain %q in output", e.Domain)
		}
		seen[e.Domain] = true
	}

	// www.a.com and a.com collapse, keeping the first occurrence's rank.
	if entries[0].Domain != "a.com" || entries[0].Position != 1 {
		t.Errorf("entries[0] = %+v, want a.com at position 1", entries[0])
	}
	if entries[1].Domain != "b.com" || entries[1].Position != 2 {
		t.Errorf("entries[1] = %+v, want b.com at position 2", entries[1])
	}
}

func TestRankDomainsSortedAscending(t *testing.T) {
	results := []domain.SearchResult{
		{Position: 5, Link: "https://e.com"},
		{Position: 1, Link: "https://a.com"},
		{Position: 3, Link: "https://c.com"},
	}

	entries := RankDomains(results)
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Position > entries[i].Position {
			t.Fatalf("ranks not ascending: %+v", entries)
		}
	}
}

func TestRankDomainsFallbackPosition(t *testing.T) {
	// Provider omitted positions entirely.
	results := []domain.SearchResult{
		{Link: "https://a.com"},
		{Link: "https://b.com"},
	}

	entries := RankDomains(results)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Position != 1 || entries[0].Domain != "a.com" {
		t.Errorf("entries[0] = %+v, want a.com at position 1", entries[0])
	}
	if entries[1].Position != 2 || entries[1].Domain != "b.com" {
		t.Errorf("entries[1] = %+v, want b.com at position 2", entries[1])
	}
}

func TestRankDomainsSkipsEmptyLinks(t *testing.T) {
	results := []domain.SearchResult{
		{Position: 1, Link: ""},
		{Position: 2, Link: "https://a.com"},
	}

	entries := RankDomains(results)
	if len(entries) != 1 || entries[0].Domain != "a.com" {
		t.Errorf("entries = %+v, want only a.com", entries)
	}
}

func TestRankDomainsEmptyInput(t *testing.T) {
	if entries := RankDomains(nil); len(entries) != 0 {
		t.Errorf("expected no entries, got %+v", entries)
	}
}
