package model

import "github.com/shopspring/decimal"

// Balance holds the funds of one currency. Total == Free + Used when the
// exchange supplies all three; otherwise only the supplied subset is set and
// Total is derived by simple addition, never guessed further.
type Balance struct {
	Free  *decimal.Decimal `json:"free,omitempty"`
	Used  *decimal.Decimal `json:"used,omitempty"`
	Total *decimal.Decimal `json:"total,omitempty"`
}

// Account maps unified currency codes to balances plus the raw payload.
type Account struct {
	Balances  map[string]Balance `json:"balances"`
	Timestamp int64              `json:"timestamp,omitempty"`
	Datetime  string             `json:"datetime,omitempty"`
	Info      interface{}        `json:"info,omitempty"`
}

// Transaction is a unified deposit or withdrawal record.
type Transaction struct {
	ID        string            `json:"id"`
	TxID      string            `json:"txid,omitempty"`
	Timestamp int64             `json:"timestamp"`
	Datetime  string            `json:"datetime"`
	Currency  string            `json:"currency"`
	Amount    *decimal.Decimal  `json:"amount,omitempty"`
	Address   string            `json:"address,omitempty"`
	Tag       string            `json:"tag,omitempty"`
	Type      TransactionType   `json:"type"`
	Status    TransactionStatus `json:"status"`
	Fee       *Fee              `json:"fee,omitempty"`
	Info      interface{}       `json:"info,omitempty"`
}

// DepositAddress is a funding address for one currency.
type DepositAddress struct {
	Currency string      `json:"currency"`
	Address  string      `json:"address"`
	Tag      string      `json:"tag,omitempty"`
	Network  string      `json:"network,omitempty"`
	Info     interface{} `json:"info,omitempty"`
}
