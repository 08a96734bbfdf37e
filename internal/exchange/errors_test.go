package exchange

import (
	"fmt"
	"testing"
)

func testTables() ErrorTables {
	return ErrorTables{
		Exact: map[string]Kind{
			"-2011": KindOrderNotFound,
			"-1021": KindInvalidNonce,
		},
		Broad: []BroadEntry{
			{Substring: "insufficient balance", Kind: KindInsufficientFunds},
			{Substring: "insufficient", Kind: KindExchangeError},
			{Substring: "unknown order", Kind: KindOrderNotFound},
		},
	}
}

func TestClassifyExactBeforeBroad(t *testing.T) {
	// The message would match a broad entry, but the exact code wins.
	err := testTables().Classify("test", "-2011", "Unknown order sent.")
	if err.Kind != KindOrderNotFound {
		t.Errorf("kind = %s, want %s", err.Kind, KindOrderNotFound)
	}
}

func TestClassifyBroadInOrder(t *testing.T) {
	// Both broad entries match; the first listed must win every time.
	for i := 0; i < 50; i++ {
		err := testTables().Classify("test", "0", "Account has insufficient balance.")
		if err.Kind != KindInsufficientFunds {
			t.Fatalf("iteration %d: kind = %s, want %s", i, err.Kind, KindInsufficientFunds)
		}
	}
}

func TestClassifyCaseInsensitive(t *testing.T) {
	err := testTables().Classify("test", "0", "UNKNOWN ORDER sent")
	if err.Kind != KindOrderNotFound {
		t.Errorf("kind = %s, want %s", err.Kind, KindOrderNotFound)
	}
}

func TestClassifyFallback(t *testing.T) {
	err := testTables().Classify("test", "9999", "something new")
	if err == nil {
		t.Fatal("Classify returned nil")
	}
	if err.Kind != KindExchangeError {
		t.Errorf("kind = %s, want %s", err.Kind, KindExchangeError)
	}
}

func TestIsKind(t *testing.T) {
	base := NewError("test", KindRateLimitExceeded, "slow down")
	wrapped := fmt.Errorf("request failed: %w", base)
	if !IsKind(wrapped, KindRateLimitExceeded) {
		t.Error("IsKind should match through wrapping")
	}
	if IsKind(wrapped, KindOrderNotFound) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(fmt.Errorf("plain"), KindRateLimitExceeded) {
		t.Error("IsKind matched an unclassified error")
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError("binance", KindBadSymbol, "unknown symbol %s", "FOO/BAR")
	want := "binance BadSymbol: unknown symbol FOO/BAR"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []interface{}{1, int64(1), float64(1), true, "1", "true", "TRUE", " true "}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%#v) = false, want true", v)
		}
	}
	falsy := []interface{}{0, int64(0), float64(0), false, "0", "false", "", "yes", nil, 2}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("IsTruthy(%#v) = true, want false", v)
		}
	}
}
