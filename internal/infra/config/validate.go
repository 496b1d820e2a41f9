package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
// Missing credentials are validation errors: the process must not start
// without them.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateTelegram(cfg, ve)
	validateSearch(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateTelegram(cfg *Config, ve *ValidationError) {
	if cfg.Telegram.Token == "" {
		ve.Add("telegram.token must not be empty (set via SERPRANK_TELEGRAM_TOKEN)")
	}
}

func validateSearch(cfg *Config, ve *ValidationError) {
	if cfg.Search.APIKey == "" {
		ve.Add("search.api_key must not be empty (set via SERPRANK_SERPER_API_KEY)")
	}
	if cfg.Search.Endpoint == "" {
		ve.Add("search.endpoint must not be empty")
	}
	if !strings.HasPrefix(cfg.Search.Endpoint, "http://") && !strings.HasPrefix(cfg.Search.Endpoint, "https://") {
		ve.Add("search.endpoint %q must be an http(s) URL", cfg.Search.Endpoint)
	}
	if len(cfg.Search.GL) != 2 {
		ve.Add("search.gl %q must be a two-letter country code", cfg.Search.GL)
	}
	if len(cfg.Search.HL) != 2 {
		ve.Add("search.hl %q must be a two-letter language code", cfg.Search.HL)
	}
	if cfg.Search.Num <= 0 || cfg.Search.Num > 100 {
		ve.Add("search.num must be in 1..100, got %d", cfg.Search.Num)
	}
	if cfg.Search.Timeout <= 0 {
		ve.Add("search.timeout must be > 0")
	}
	if cfg.Search.CircuitBreaker.Enabled {
		if cfg.Search.CircuitBreaker.MaxFailures == 0 {
			ve.Add("search.circuit_breaker.max_failures must be > 0 when enabled")
		}
		if cfg.Search.CircuitBreaker.Timeout <= 0 {
			ve.Add("search.circuit_breaker.timeout must be > 0 when enabled")
		}
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json", "":
	default:
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter %q is invalid (want: stdout, noop)", cfg.Tracer.Exporter)
	}
}
