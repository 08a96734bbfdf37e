package model

import "github.com/shopspring/decimal"

// Fee is a fee charged on a trade or transaction.
type Fee struct {
	Cost     *decimal.Decimal `json:"cost,omitempty"`
	Currency string           `json:"currency,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
}

// Trade is one executed trade, public or a private fill.
// Cost is price*amount computed with the market's precision unless the
// exchange supplied it.
type Trade struct {
	ID           string           `json:"id"`
	OrderID      string           `json:"order,omitempty"`
	Timestamp    int64            `json:"timestamp"`
	Datetime     string           `json:"datetime"`
	Symbol       string           `json:"symbol"`
	Type         OrderType        `json:"type,omitempty"`
	Side         Side             `json:"side"`
	TakerOrMaker TakerOrMaker     `json:"takerOrMaker,omitempty"`
	Price        *decimal.Decimal `json:"price"`
	Amount       *decimal.Decimal `json:"amount"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Fee          *Fee             `json:"fee,omitempty"`
	Info         interface{}      `json:"info,omitempty"`
}

// Order is a unified order. Where both Filled and Remaining are derivable,
// Filled + Remaining == Amount up to the market's amount precision.
type Order struct {
	ID                 string           `json:"id"`
	ClientOrderID      string           `json:"clientOrderId,omitempty"`
	Timestamp          int64            `json:"timestamp"`
	Datetime           string           `json:"datetime"`
	LastTradeTimestamp int64            `json:"lastTradeTimestamp,omitempty"`
	Symbol             string           `json:"symbol"`
	Type               OrderType        `json:"type"`
	Side               Side             `json:"side"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	StopPrice          *decimal.Decimal `json:"stopPrice,omitempty"`
	Amount             *decimal.Decimal `json:"amount,omitempty"`
	Filled             *decimal.Decimal `json:"filled,omitempty"`
	Remaining          *decimal.Decimal `json:"remaining,omitempty"`
	Cost               *decimal.Decimal `json:"cost,omitempty"`
	Average            *decimal.Decimal `json:"average,omitempty"`
	Status             OrderStatus      `json:"status"`
	NativeStatus       string           `json:"nativeStatus,omitempty"` // venue status before collapsing, e.g. partially_filled
	Fee                *Fee             `json:"fee,omitempty"`
	Trades             []Trade          `json:"trades,omitempty"`
	Info               interface{}      `json:"info,omitempty"`
}
