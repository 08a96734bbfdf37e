package exchange

import (
	"github.com/shopspring/decimal"

	"cexlink/internal/model"
	"cexlink/internal/precise"
)

var hundred = decimal.NewFromInt(100)
var two = decimal.NewFromInt(2)

// FinishTicker derives change, percentage and average from open and close
// when the venue does not supply them. A payload with open=100, close=110
// yields change=10, percentage=10, average=105.
func FinishTicker(t *model.Ticker) *model.Ticker {
	if t.Close == nil && t.Last != nil {
		t.Close = t.Last
	}
	if t.Last == nil && t.Close != nil {
		t.Last = t.Close
	}
	if t.Open != nil && t.Close != nil {
		if t.Change == nil {
			t.Change = precise.Sub(t.Close, t.Open)
		}
		if t.Percentage == nil && !t.Open.IsZero() {
			p := t.Change.Div(*t.Open).Mul(hundred)
			t.Percentage = &p
		}
		if t.Average == nil {
			a := t.Open.Add(*t.Close).Div(two)
			t.Average = &a
		}
	}
	if t.Datetime == "" && t.Timestamp > 0 {
		t.Datetime = ISO8601(t.Timestamp)
	}
	return t
}

// FinishOrder derives the missing one of amount/filled/remaining from the
// other two and computes cost from average (or price) and filled, using the
// market's precision instead of raw float math.
func FinishOrder(o *model.Order, market *model.Market) *model.Order {
	switch {
	case o.Filled == nil && o.Amount != nil && o.Remaining != nil:
		o.Filled = precise.Sub(o.Amount, o.Remaining)
	case o.Remaining == nil && o.Amount != nil && o.Filled != nil:
		o.Remaining = precise.Sub(o.Amount, o.Filled)
	case o.Amount == nil && o.Filled != nil && o.Remaining != nil:
		o.Amount = precise.Add(o.Filled, o.Remaining)
	}
	if o.Cost == nil {
		pricePrecision := int32(8)
		if market != nil {
			pricePrecision = market.Precision.Price
		}
		if o.Average != nil && o.Filled != nil {
			o.Cost = precise.CostOf(o.Average, o.Filled, pricePrecision)
		} else if o.Price != nil && o.Filled != nil {
			o.Cost = precise.CostOf(o.Price, o.Filled, pricePrecision)
		}
	}
	if o.Datetime == "" && o.Timestamp > 0 {
		o.Datetime = ISO8601(o.Timestamp)
	}
	return o
}

// FinishTrade computes cost with the market's price precision and applies
// the signed-quantity convention: a negative price or amount means sell,
// with the absolute value kept.
func FinishTrade(t *model.Trade, market *model.Market) *model.Trade {
	if t.Side == "" {
		if t.Amount != nil && t.Amount.IsNegative() {
			t.Side = model.SideSell
		} else if t.Price != nil && t.Price.IsNegative() {
			t.Side = model.SideSell
		} else if t.Amount != nil || t.Price != nil {
			t.Side = model.SideBuy
		}
	}
	t.Amount = precise.Abs(t.Amount)
	t.Price = precise.Abs(t.Price)
	if t.Cost == nil {
		pricePrecision := int32(8)
		if market != nil {
			pricePrecision = market.Precision.Price
		}
		t.Cost = precise.CostOf(t.Price, t.Amount, pricePrecision)
	}
	if t.Datetime == "" && t.Timestamp > 0 {
		t.Datetime = ISO8601(t.Timestamp)
	}
	return t
}

// FinishBalance fills Total = Free + Used (or the missing leg) by decimal
// addition. Nothing is guessed beyond simple arithmetic.
func FinishBalance(b model.Balance) model.Balance {
	switch {
	case b.Total == nil && b.Free != nil && b.Used != nil:
		b.Total = precise.Add(b.Free, b.Used)
	case b.Free == nil && b.Total != nil && b.Used != nil:
		b.Free = precise.Sub(b.Total, b.Used)
	case b.Used == nil && b.Total != nil && b.Free != nil:
		b.Used = precise.Sub(b.Total, b.Free)
	}
	return b
}

// MergeCachedOrder carries forward fields a fetch-single-order response
// omitted, from the locally cached order created earlier. This is the
// explicit cache-merge policy, not an accidental global.
func MergeCachedOrder(fresh *model.Order, cached *model.Order) *model.Order {
	if cached == nil {
		return fresh
	}
	if fresh.Amount == nil {
		fresh.Amount = cached.Amount
	}
	if fresh.Price == nil {
		fresh.Price = cached.Price
	}
	if fresh.Symbol == "" {
		fresh.Symbol = cached.Symbol
	}
	if fresh.Type == "" {
		fresh.Type = cached.Type
	}
	if fresh.Side == "" {
		fresh.Side = cached.Side
	}
	if fresh.ClientOrderID == "" {
		fresh.ClientOrderID = cached.ClientOrderID
	}
	// A terminal status never transitions back.
	if cached.Status.IsTerminal() && !fresh.Status.IsTerminal() {
		fresh.Status = cached.Status
	}
	return fresh
}
