package exchange

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the unified error taxonomy. Callers above the connector catch by
// kind, never by parsing message text.
type Kind string

const (
	KindExchangeError        Kind = "ExchangeError"
	KindAuthenticationError  Kind = "AuthenticationError"
	KindPermissionDenied     Kind = "PermissionDenied"
	KindInsufficientFunds    Kind = "InsufficientFunds"
	KindInvalidOrder         Kind = "InvalidOrder"
	KindOrderNotFound        Kind = "OrderNotFound"
	KindCancelPending        Kind = "CancelPending"
	KindBadSymbol            Kind = "BadSymbol"
	KindBadRequest           Kind = "BadRequest"
	KindRateLimitExceeded    Kind = "RateLimitExceeded"
	KindDDoSProtection       Kind = "DDoSProtection"
	KindExchangeNotAvailable Kind = "ExchangeNotAvailable"
	KindOnMaintenance        Kind = "OnMaintenance"
	KindInvalidNonce         Kind = "InvalidNonce"
	KindNotSupported         Kind = "NotSupported"
)

// Error is a classified exchange error. The message is always prefixed with
// the exchange identifier and carries the venue's own diagnostic when
// available.
type Error struct {
	Exchange string
	Kind     Kind
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Exchange, e.Kind, e.Message)
}

// NewError builds a classified error for the given venue.
func NewError(exchange string, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Exchange: exchange, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// BroadEntry maps a message substring to an error kind. Entries are checked
// in order so classification is deterministic.
type BroadEntry struct {
	Substring string
	Kind      Kind
}

// ErrorTables holds a venue's error classification tables: exact code match
// first, ordered substring match second, generic ExchangeError last.
type ErrorTables struct {
	Exact map[string]Kind
	Broad []BroadEntry
}

// Classify resolves a venue error code and message to a classified error.
// It never returns nil: an unmatched code still yields an ExchangeError so
// nothing is swallowed silently.
func (t ErrorTables) Classify(exchange, code, message string) *Error {
	if kind, ok := t.Exact[code]; ok {
		return NewError(exchange, kind, "%s %s", code, message)
	}
	lower := strings.ToLower(message)
	for _, entry := range t.Broad {
		if strings.Contains(lower, strings.ToLower(entry.Substring)) {
			return NewError(exchange, entry.Kind, "%s %s", code, message)
		}
	}
	return NewError(exchange, KindExchangeError, "%s %s", code, message)
}

// IsTruthy normalizes the success discriminants exchanges use. Integer 1,
// boolean true and the strings "1"/"true" all mean success.
func IsTruthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x == 1
	case int64:
		return x == 1
	case float64:
		return x == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "1" || s == "true"
	}
	return false
}
