// Package binance binds the unified connector surface to the Binance spot
// REST API and its combined-stream WebSocket feed. Signed requests carry an
// HMAC-SHA256 signature over the urlencoded query string, appended as the
// "signature" parameter.
package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"cexlink/config"
	"cexlink/internal/exchange"
	"cexlink/internal/httpclient"
	"cexlink/logger"
)

const (
	exchangeID     = "binance"
	defaultBaseURL = "https://api.binance.com"
	defaultWSURL   = "wss://stream.binance.com:9443/stream"
)

const (
	apiPublic  = "public"
	apiPrivate = "private"
)

// Binance implements exchange.Connector.
type Binance struct {
	baseURL    string
	wsURL      string
	creds      exchange.Credentials
	state      *exchange.State
	http       *httpclient.Client
	nonce      *exchange.Nonce
	log        *logger.Entry
	recvWindow int64
	errors     exchange.ErrorTables
}

// New builds a Binance connector from its config section.
func New(cfg config.ExchangeConfig) *Binance {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	wsURL := cfg.WSURL
	if wsURL == "" {
		wsURL = defaultWSURL
	}
	return &Binance{
		baseURL: baseURL,
		wsURL:   wsURL,
		creds: exchange.Credentials{
			APIKey: cfg.APIKey,
			Secret: cfg.Secret,
		},
		state:      exchange.NewState(),
		http:       httpclient.New(exchangeID, cfg.Timeout, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		nonce:      &exchange.Nonce{},
		log:        logger.GetLogger().WithExchange(exchangeID),
		recvWindow: 5000,
		errors:     errorTables,
	}
}

// ID returns the exchange identifier.
func (b *Binance) ID() string { return exchangeID }

var errorTables = exchange.ErrorTables{
	Exact: map[string]exchange.Kind{
		"-1003": exchange.KindRateLimitExceeded,
		"-1013": exchange.KindInvalidOrder,
		"-1015": exchange.KindRateLimitExceeded,
		"-1016": exchange.KindExchangeNotAvailable,
		"-1021": exchange.KindInvalidNonce,
		"-1022": exchange.KindAuthenticationError,
		"-1100": exchange.KindBadRequest,
		"-1121": exchange.KindBadSymbol,
		"-2010": exchange.KindInvalidOrder,
		"-2011": exchange.KindOrderNotFound,
		"-2013": exchange.KindOrderNotFound,
		"-2014": exchange.KindAuthenticationError,
		"-2015": exchange.KindAuthenticationError,
	},
	Broad: []exchange.BroadEntry{
		{Substring: "insufficient balance", Kind: exchange.KindInsufficientFunds},
		{Substring: "account has insufficient", Kind: exchange.KindInsufficientFunds},
		{Substring: "too many requests", Kind: exchange.KindRateLimitExceeded},
		{Substring: "way too much request weight", Kind: exchange.KindDDoSProtection},
		{Substring: "system is under maintenance", Kind: exchange.KindOnMaintenance},
		{Substring: "unknown order sent", Kind: exchange.KindOrderNotFound},
		{Substring: "api-key", Kind: exchange.KindAuthenticationError},
	},
}

// sign constructs the exact wire request. Public calls get a plain query
// string; private calls add timestamp and recvWindow, sign the urlencoded
// query and append the signature parameter. Signing happens locally and
// fails fast when credentials are missing.
func (b *Binance) sign(path, api, method string, params exchange.Params) (exchange.Request, error) {
	query := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query.Set(k, params[k])
	}

	req := exchange.Request{
		Method:  method,
		Headers: map[string]string{},
	}

	if api == apiPublic {
		req.URL = b.baseURL + path
		if encoded := query.Encode(); encoded != "" {
			req.URL += "?" + encoded
		}
		return req, nil
	}

	if err := exchange.RequireCredentials(exchangeID, b.creds, "apiKey", "secret"); err != nil {
		return exchange.Request{}, err
	}

	query.Set("timestamp", strconv.FormatInt(b.nonce.Next(), 10))
	query.Set("recvWindow", strconv.FormatInt(b.recvWindow, 10))
	encoded := query.Encode()
	signature := exchange.HmacSHA256Hex(encoded, b.creds.Secret)

	req.URL = b.baseURL + path + "?" + encoded + "&signature=" + signature
	req.Headers["X-MBX-APIKEY"] = b.creds.APIKey
	return req, nil
}

// apiError is the binance error envelope.
type apiError struct {
	Code int64  `json:"code"`
	Msg  string `json:"msg"`
}

// handleErrors inspects the HTTP status and response body. With no
// parseable body it returns nil and defers to the transport error. A
// negative code in the envelope is classified through the exact table
// first, then the substring table, then the generic fallback.
func (b *Binance) handleErrors(status int, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		if status >= 500 {
			return exchange.NewError(exchangeID, exchange.KindExchangeNotAvailable, "http %d", status)
		}
		return nil
	}
	if e.Code == 0 && status < 400 {
		return nil
	}
	if e.Code == 0 && e.Msg == "" {
		switch {
		case status == 418 || status == 403:
			return exchange.NewError(exchangeID, exchange.KindDDoSProtection, "http %d", status)
		case status == 429:
			return exchange.NewError(exchangeID, exchange.KindRateLimitExceeded, "http %d", status)
		case status >= 500:
			return exchange.NewError(exchangeID, exchange.KindExchangeNotAvailable, "http %d", status)
		case status >= 400:
			return exchange.NewError(exchangeID, exchange.KindBadRequest, "http %d", status)
		}
		return nil
	}
	return b.errors.Classify(exchangeID, strconv.FormatInt(e.Code, 10), e.Msg)
}

// request runs one signed round trip: sign, transport, classify.
func (b *Binance) request(ctx context.Context, api, method, path string, params exchange.Params) ([]byte, error) {
	req, err := b.sign(path, api, method, params)
	if err != nil {
		return nil, err
	}
	status, body, err := b.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := b.handleErrors(status, body); err != nil {
		var classified *exchange.Error
		if errors.As(err, &classified) {
			b.http.ReportError(req.URL, classified.Kind)
		}
		return nil, err
	}
	return body, nil
}

// FetchTime returns the exchange server clock in milliseconds. Used to log
// clock drift against the local nonce source.
func (b *Binance) FetchTime(ctx context.Context) (int64, error) {
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/time", nil)
	if err != nil {
		return 0, err
	}
	var raw struct {
		ServerTime int64 `json:"serverTime"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("%s server time: %w", exchangeID, err)
	}
	if drift := raw.ServerTime - exchange.Milliseconds(); drift > 1000 || drift < -1000 {
		b.log.WithFields(logger.Fields{"drift_ms": drift}).Warn("server clock drift")
	}
	return raw.ServerTime, nil
}
