package model

import "github.com/shopspring/decimal"

// Precision describes how granular prices and amounts are for a market,
// expressed as decimal places. Venues that publish tick sizes are converted
// at load time.
type Precision struct {
	Amount int32 `json:"amount"`
	Price  int32 `json:"price"`
}

// MinMax bounds a single order field.
type MinMax struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Limits are the exchange-declared trading limits for a market.
type Limits struct {
	Amount MinMax `json:"amount"`
	Price  MinMax `json:"price"`
	Cost   MinMax `json:"cost"`
}

// Market is a unified tradable instrument. ID is the exchange-native symbol
// used to build requests; Symbol is always Base + "/" + Quote.
type Market struct {
	ID        string           `json:"id"`
	Symbol    string           `json:"symbol"`
	Base      string           `json:"base"`
	Quote     string           `json:"quote"`
	BaseID    string           `json:"baseId"`
	QuoteID   string           `json:"quoteId"`
	Active    *bool            `json:"active,omitempty"`
	Precision Precision        `json:"precision"`
	Limits    Limits           `json:"limits"`
	Taker     *decimal.Decimal `json:"taker,omitempty"`
	Maker     *decimal.Decimal `json:"maker,omitempty"`
	Info      interface{}      `json:"info,omitempty"`
}

// Currency is a unified currency catalog entry.
type Currency struct {
	ID        string           `json:"id"`
	Code      string           `json:"code"`
	Name      string           `json:"name,omitempty"`
	Active    *bool            `json:"active,omitempty"`
	Precision int32            `json:"precision"`
	Fee       *decimal.Decimal `json:"fee,omitempty"`
	Limits    CurrencyLimits   `json:"limits"`
	Info      interface{}      `json:"info,omitempty"`
}

// CurrencyLimits bounds deposits and withdrawals for a currency.
type CurrencyLimits struct {
	Amount   MinMax `json:"amount"`
	Withdraw MinMax `json:"withdraw"`
	Deposit  MinMax `json:"deposit"`
}

// Active reports whether the market is tradable; unknown counts as tradable.
func (m *Market) IsActive() bool {
	return m.Active == nil || *m.Active
}
