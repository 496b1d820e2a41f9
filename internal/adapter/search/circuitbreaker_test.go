package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serprank/internal/domain"
	"serprank/internal/infra/config"
)

// scriptedProvider is a SearchProvider driven by a function.
type scriptedProvider struct {
	name       string
	searchFunc func(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error)
}

func (s *scriptedProvider) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	return s.searchFunc(ctx, q)
}

func (s *scriptedProvider) Name() string { return s.name }

func TestCircuitBreakerPassesThrough(t *testing.T) {
	inner := &scriptedProvider{
		name: "serper",
		searchFunc: func(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
			return []domain.SearchResult{{Position: 1, Title: "A", Link: "https://a.com"}}, nil
		},
	}

	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())
	results, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://a.com", results[0].Link)
}

func TestCircuitBreakerName(t *testing.T) {
	inner := &scriptedProvider{name: "serper"}
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())
	assert.Equal(t, "serper", cb.Name())
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	callCount := 0
	inner := &scriptedProvider{
		name: "flaky",
		searchFunc: func(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
			callCount++
			return nil, errors.New("provider error")
		},
	}

	cfg := config.CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute}
	cb := NewCircuitBreakerProvider(inner, cfg, newTestLogger())

	for i := 0; i < 3; i++ {
		_, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Open circuit fails fast without reaching the provider.
	_, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
	assert.Equal(t, 3, callCount)
}

func TestCircuitBreakerPassesInnerError(t *testing.T) {
	innerErr := errors.New("quota exceeded")
	inner := &scriptedProvider{
		name: "serper",
		searchFunc: func(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
			return nil, innerErr
		},
	}

	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())
	_, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})

	assert.ErrorIs(t, err, innerErr)
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	failing := true
	inner := &scriptedProvider{
		name: "recovering",
		searchFunc: func(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
			if failing {
				return nil, errors.New("down")
			}
			return []domain.SearchResult{{Position: 1, Title: "A", Link: "https://a.com"}}, nil
		},
	}

	cfg := config.CircuitBreakerConfig{MaxFailures: 1, Timeout: 50 * time.Millisecond}
	cb := NewCircuitBreakerProvider(inner, cfg, newTestLogger())

	_, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})
	require.Error(t, err)
	require.Equal(t, gobreaker.StateOpen, cb.State())

	failing = false
	time.Sleep(100 * time.Millisecond)

	results, err := cb.Search(context.Background(), domain.SearchQuery{Keyword: "x"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreakerDefaultSettings(t *testing.T) {
	inner := &scriptedProvider{
		name: "serper",
		searchFunc: func(_ context.Context, _ domain.SearchQuery) ([]domain.SearchResult, error) {
			return nil, nil
		},
	}

	// Zero-valued config must not trip on the first few failures.
	cb := NewCircuitBreakerProvider(inner, config.CircuitBreakerConfig{}, newTestLogger())
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
