package model

import (
	"github.com/shopspring/decimal"
)

// Side is the unified order/trade side.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderStatus is the unified order status vocabulary. Exchange-native codes
// that have no mapping are passed through unchanged so callers can detect
// an unrecognized status instead of misreading it as a known one.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusRejected OrderStatus = "rejected"
	OrderStatusExpired  OrderStatus = "expired"
)

// IsTerminal reports whether the status is final. Once observed, an order
// must not transition further.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusClosed, OrderStatusCanceled, OrderStatusRejected, OrderStatusExpired:
		return true
	}
	return false
}

// OrderType is the unified order type.
type OrderType string

const (
	OrderTypeLimit     OrderType = "limit"
	OrderTypeMarket    OrderType = "market"
	OrderTypeStop      OrderType = "stop"
	OrderTypeStopLimit OrderType = "stop-limit"
)

// TakerOrMaker marks which side of the book a fill came from.
type TakerOrMaker string

const (
	Taker TakerOrMaker = "taker"
	Maker TakerOrMaker = "maker"
)

// TransactionType distinguishes deposits from withdrawals.
type TransactionType string

const (
	TxDeposit    TransactionType = "deposit"
	TxWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus is the unified deposit/withdrawal status.
type TransactionStatus string

const (
	TxPending  TransactionStatus = "pending"
	TxOK       TransactionStatus = "ok"
	TxFailed   TransactionStatus = "failed"
	TxCanceled TransactionStatus = "canceled"
)

// Num parses a decimal string into an optional numeric. Empty or malformed
// input maps to nil, never to an error: exchanges omit fields inconsistently
// across endpoints and an absent number must not abort parsing.
func Num(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// NumFromFloat wraps a float into an optional numeric.
func NumFromFloat(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// Float converts an optional numeric to float64, zero when absent.
func Float(d *decimal.Decimal) float64 {
	if d == nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}
