package exchange

import "testing"

// Vectors from RFC 4231, test case 2.
func TestHmacSHA256Hex(t *testing.T) {
	got := HmacSHA256Hex("what do ya want for nothing?", "Jefe")
	want := "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if got != want {
		t.Errorf("HmacSHA256Hex = %s, want %s", got, want)
	}
}

func TestHmacSHA256Base64(t *testing.T) {
	got := HmacSHA256Base64("what do ya want for nothing?", "Jefe")
	want := "W9zBRr9gdU5qBCQmCJV1x1oAPwidJzmDnexYuWTsOEM="
	if got != want {
		t.Errorf("HmacSHA256Base64 = %s, want %s", got, want)
	}
}

func TestHmacSHA512Hex(t *testing.T) {
	got := HmacSHA512Hex("what do ya want for nothing?", "Jefe")
	want := "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"
	if got != want {
		t.Errorf("HmacSHA512Hex = %s, want %s", got, want)
	}
}

func TestSigningIsDeterministic(t *testing.T) {
	first := HmacSHA256Hex("symbol=BTCUSDT&timestamp=1700000000000", "secret")
	for i := 0; i < 10; i++ {
		if got := HmacSHA256Hex("symbol=BTCUSDT&timestamp=1700000000000", "secret"); got != first {
			t.Fatalf("signature changed between identical calls: %s vs %s", first, got)
		}
	}
}
