package model

import "github.com/shopspring/decimal"

// Ticker is a unified 24h statistics snapshot for one market. Recreated on
// every fetch; it has no identity beyond symbol and timestamp.
type Ticker struct {
	Symbol      string           `json:"symbol"`
	Timestamp   int64            `json:"timestamp"` // milliseconds since epoch
	Datetime    string           `json:"datetime"`  // ISO-8601 of Timestamp
	High        *decimal.Decimal `json:"high,omitempty"`
	Low         *decimal.Decimal `json:"low,omitempty"`
	Bid         *decimal.Decimal `json:"bid,omitempty"`
	BidVolume   *decimal.Decimal `json:"bidVolume,omitempty"`
	Ask         *decimal.Decimal `json:"ask,omitempty"`
	AskVolume   *decimal.Decimal `json:"askVolume,omitempty"`
	Open        *decimal.Decimal `json:"open,omitempty"`
	Close       *decimal.Decimal `json:"close,omitempty"`
	Last        *decimal.Decimal `json:"last,omitempty"`
	Change      *decimal.Decimal `json:"change,omitempty"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	Average     *decimal.Decimal `json:"average,omitempty"`
	BaseVolume  *decimal.Decimal `json:"baseVolume,omitempty"`
	QuoteVolume *decimal.Decimal `json:"quoteVolume,omitempty"`
	VWAP        *decimal.Decimal `json:"vwap,omitempty"`
	Info        interface{}      `json:"info,omitempty"`
}

// BookLevel is a single price level of an order book side.
type BookLevel struct {
	Price  *decimal.Decimal `json:"price"`
	Amount *decimal.Decimal `json:"amount"`
}

// OrderBook is a unified depth snapshot. Bids are sorted best (highest)
// first, asks best (lowest) first.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Timestamp int64       `json:"timestamp"`
	Datetime  string      `json:"datetime"`
	Nonce     int64       `json:"nonce,omitempty"` // exchange sequence number when provided
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	Info      interface{} `json:"info,omitempty"`
}

// OHLCV is one candle: timestamp (ms), open, high, low, close, volume.
type OHLCV struct {
	Timestamp int64            `json:"timestamp"`
	Open      *decimal.Decimal `json:"open"`
	High      *decimal.Decimal `json:"high"`
	Low       *decimal.Decimal `json:"low"`
	Close     *decimal.Decimal `json:"close"`
	Volume    *decimal.Decimal `json:"volume"`
}
