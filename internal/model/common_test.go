package model

import "testing"

func TestNum(t *testing.T) {
	tests := []struct {
		in   string
		want string
		nil_ bool
	}{
		{"0.0148", "0.0148", false},
		{"-5", "-5", false},
		{"11881.06", "11881.06", false},
		{"", "", true},
		{"n/a", "", true},
	}
	for _, tt := range tests {
		got := Num(tt.in)
		if tt.nil_ {
			if got != nil {
				t.Errorf("Num(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || got.String() != tt.want {
			t.Errorf("Num(%q) = %v, want %s", tt.in, got, tt.want)
		}
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusClosed, OrderStatusCanceled, OrderStatusRejected, OrderStatusExpired}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if OrderStatusOpen.IsTerminal() {
		t.Error("open must not be terminal")
	}
	if OrderStatus("partiallyFilled").IsTerminal() {
		t.Error("unknown native status must not be terminal")
	}
}

func TestFloat(t *testing.T) {
	if Float(nil) != 0 {
		t.Error("Float(nil) should be 0")
	}
	if Float(Num("1.5")) != 1.5 {
		t.Error("Float round trip broken")
	}
}
