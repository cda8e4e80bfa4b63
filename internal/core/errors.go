package core

import "errors"

// Sentinel errors for programmatic checking with errors.Is.
var (
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrParse          = errors.New("parse error")
	ErrRule           = errors.New("rule error")
	ErrStorage        = errors.New("storage error")
	ErrMalformedGraph = errors.New("malformed graph")
	ErrCancelled      = errors.New("cancelled")
)

// ErrorCode is a machine-readable error tag, paired with one of the sentinel
// errors above at raise time.
type ErrorCode string

const (
	ECNone           ErrorCode = ""
	ECInvalidPattern ErrorCode = "ERR_INVALID_PATTERN"
	ECParseError     ErrorCode = "ERR_PARSE"
	ECRuleError      ErrorCode = "ERR_RULE"
	ECStorageError   ErrorCode = "ERR_STORAGE"
	ECMalformedGraph ErrorCode = "ERR_MALFORMED_GRAPH"
	ECCancelled      ErrorCode = "ERR_CANCELLED"
)

// CodeFor maps a sentinel error to its machine-readable code. Returns
// ECNone if err is not one of the recognized sentinels.
func CodeFor(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrInvalidPattern):
		return ECInvalidPattern
	case errors.Is(err, ErrParse):
		return ECParseError
	case errors.Is(err, ErrRule):
		return ECRuleError
	case errors.Is(err, ErrStorage):
		return ECStorageError
	case errors.Is(err, ErrMalformedGraph):
		return ECMalformedGraph
	case errors.Is(err, ErrCancelled):
		return ECCancelled
	default:
		return ECNone
	}
}
