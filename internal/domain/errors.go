package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer. Every failure the running system can
// produce wraps one of these; the bot boundary maps them to reply text and
// log fields.
var (
	ErrSearchUnavailable = fmt.Errorf("search provider unavailable")
	ErrConfigLoad        = fmt.Errorf("failed to load configuration")
	ErrTimeout           = fmt.Errorf("operation timed out")
)

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown           ErrorCode = "UNKNOWN"
	CodeSearchUnavailable ErrorCode = "SEARCH_UNAVAILABLE"
	CodeConfigLoad        ErrorCode = "CONFIG_LOAD"
	CodeTimeout           ErrorCode = "TIMEOUT"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrSearchUnavailable: CodeSearchUnavailable,
	ErrConfigLoad:        CodeConfigLoad,
	ErrTimeout:           CodeTimeout,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It walks the error chain with errors.Is and returns CodeUnknown when no
// sentinel matches.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return CodeUnknown
}
