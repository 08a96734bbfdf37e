package exchange

import (
	"time"
)

const iso8601Layout = "2006-01-02T15:04:05.000Z"

// ISO8601 renders a millisecond timestamp as an ISO-8601 string in UTC.
func ISO8601(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(iso8601Layout)
}

// Parse8601 parses an ISO-8601 string into milliseconds since epoch.
// Returns 0 when the input is empty or malformed.
func Parse8601(s string) int64 {
	if s == "" {
		return 0
	}
	for _, layout := range []string{
		iso8601Layout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// SecToMs converts a seconds timestamp to milliseconds.
func SecToMs(sec int64) int64 {
	if sec == 0 {
		return 0
	}
	return sec * 1000
}

// UsToMs converts a microseconds timestamp to milliseconds.
func UsToMs(us int64) int64 {
	return us / 1000
}

// NsToMs converts a nanoseconds timestamp to milliseconds. Kucoin trade
// timestamps arrive in nanoseconds; off-by-1000x here is the dominant bug
// class in this domain.
func NsToMs(ns int64) int64 {
	return ns / 1_000_000
}

// Milliseconds is the current wall-clock time in milliseconds.
func Milliseconds() int64 {
	return time.Now().UnixMilli()
}
