// Package exchange defines the unified connector surface and the shared
// pieces every venue binding repeats: credentials, signing helpers, the
// nonce source, error classification tables and the market/order caches.
package exchange

import (
	"context"

	"cexlink/internal/model"
)

// Credentials holds API access for one venue. Which fields are required
// varies per exchange and is checked before any request is built.
type Credentials struct {
	APIKey        string
	Secret        string
	Password      string // passphrase, where the venue requires one
	WalletAddress string
	Phone         string
}

// RequireCredentials fails fast with an AuthenticationError when any of the
// named credential fields is empty. The check happens locally; a request
// with missing credentials is never sent.
func RequireCredentials(exchangeID string, creds Credentials, fields ...string) error {
	for _, field := range fields {
		var v string
		switch field {
		case "apiKey":
			v = creds.APIKey
		case "secret":
			v = creds.Secret
		case "password":
			v = creds.Password
		case "walletAddress":
			v = creds.WalletAddress
		case "phone":
			v = creds.Phone
		}
		if v == "" {
			return NewError(exchangeID, KindAuthenticationError, "missing required credential %q", field)
		}
	}
	return nil
}

// Params is the open-ended options bag accepted by every endpoint method.
// Entries are merged verbatim into the outgoing request so callers can pass
// venue-specific extensions the unified layer knows nothing about.
type Params map[string]string

// Merge copies extra params over base, extra winning on conflicts.
func (p Params) Merge(extra Params) Params {
	out := Params{}
	for k, v := range p {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Request is the exact wire request a venue's signer produces.
type Request struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

// Connector is the unified per-venue surface. All symbol-keyed operations
// require LoadMarkets to have completed; implementations guard this
// themselves.
type Connector interface {
	ID() string

	LoadMarkets(ctx context.Context) (map[string]*model.Market, error)
	FetchMarkets(ctx context.Context) ([]model.Market, error)
	FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error)
	FetchTickers(ctx context.Context, symbols []string) (map[string]*model.Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int) (*model.OrderBook, error)
	FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]model.OHLCV, error)

	FetchBalance(ctx context.Context) (*model.Account, error)
	CreateOrder(ctx context.Context, symbol string, orderType model.OrderType, side model.Side, amount, price string, params Params) (*model.Order, error)
	CancelOrder(ctx context.Context, id, symbol string, params Params) (*model.Order, error)
	FetchOrder(ctx context.Context, id, symbol string) (*model.Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error)
	FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error)
	FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error)

	Withdraw(ctx context.Context, code, amount, address, tag string, params Params) (*model.Transaction, error)
	FetchDepositAddress(ctx context.Context, code string) (*model.DepositAddress, error)
}

// NotSupported is the canonical error for endpoints a venue intentionally
// does not implement.
func NotSupported(exchangeID, method string) error {
	return NewError(exchangeID, KindNotSupported, "%s is not supported by this exchange", method)
}
