// Package kucoin binds the unified connector surface to the KuCoin spot
// REST API. Signed requests carry KC-API-* headers: a base64 HMAC-SHA256
// over timestamp+method+path+body, plus an encrypted passphrase, so the
// password credential is required alongside key and secret.
package kucoin

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
	exchangeID     = "kucoin"
	defaultBaseURL = "https://api.kucoin.com"
	successCode    = "200000"
)

const (
	apiPublic  = "public"
	apiPrivate = "private"
)

// Kucoin implements exchange.Connector.
type Kucoin struct {
	baseURL string
	creds   exchange.Credentials
	state   *exchange.State
	http    *httpclient.Client
	nonce   *exchange.Nonce
	log     *logger.Entry
	errors  exchange.ErrorTables
}

// New builds a KuCoin connector from its config section.
func New(cfg config.ExchangeConfig) *Kucoin {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Kucoin{
		baseURL: baseURL,
		creds: exchange.Credentials{
			APIKey:   cfg.APIKey,
			Secret:   cfg.Secret,
			Password: cfg.Password,
		},
		state:  exchange.NewState(),
		http:   httpclient.New(exchangeID, cfg.Timeout, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		nonce:  &exchange.Nonce{},
		log:    logger.GetLogger().WithExchange(exchangeID),
		errors: errorTables,
	}
}

// ID returns the exchange identifier.
func (k *Kucoin) ID() string { return exchangeID }

var errorTables = exchange.ErrorTables{
	Exact: map[string]exchange.Kind{
		"400001": exchange.KindAuthenticationError, // missing header
		"400002": exchange.KindInvalidNonce,        // KC-API-TIMESTAMP out of range
		"400003": exchange.KindAuthenticationError, // key not found
		"400004": exchange.KindAuthenticationError, // passphrase error
		"400005": exchange.KindAuthenticationError, // signature error
		"400006": exchange.KindPermissionDenied,    // IP not in whitelist
		"400007": exchange.KindPermissionDenied,    // access denied
		"400100": exchange.KindBadRequest,
		"400200": exchange.KindInvalidOrder,
		"404000": exchange.KindNotSupported,
		"200004": exchange.KindInsufficientFunds,
		"429000": exchange.KindRateLimitExceeded,
		"500000": exchange.KindExchangeNotAvailable,
	},
	Broad: []exchange.BroadEntry{
		{Substring: "order not exist", Kind: exchange.KindOrderNotFound},
		{Substring: "order_not_exist", Kind: exchange.KindOrderNotFound},
		{Substring: "balance insufficient", Kind: exchange.KindInsufficientFunds},
		{Substring: "too many requests", Kind: exchange.KindRateLimitExceeded},
		{Substring: "symbol not exists", Kind: exchange.KindBadSymbol},
		{Substring: "under maintenance", Kind: exchange.KindOnMaintenance},
	},
}

// sign constructs the exact wire request. The signed string is
// timestamp + method + path(with query) + body, byte for byte.
func (k *Kucoin) sign(path, api, method string, params exchange.Params, body string) (exchange.Request, error) {
	query := url.Values{}
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		query.Set(key, params[key])
	}
	endpoint := path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req := exchange.Request{
		URL:     k.baseURL + endpoint,
		Method:  method,
		Headers: map[string]string{},
		Body:    body,
	}
	if body != "" {
		req.Headers["Content-Type"] = "application/json"
	}
	if api == apiPublic {
		return req, nil
	}

	if err := exchange.RequireCredentials(exchangeID, k.creds, "apiKey", "secret", "password"); err != nil {
		return exchange.Request{}, err
	}

	timestamp := strconv.FormatInt(k.nonce.Next(), 10)
	strToSign := timestamp + method + endpoint + body
	req.Headers["KC-API-KEY"] = k.creds.APIKey
	req.Headers["KC-API-SIGN"] = exchange.HmacSHA256Base64(strToSign, k.creds.Secret)
	req.Headers["KC-API-TIMESTAMP"] = timestamp
	req.Headers["KC-API-PASSPHRASE"] = exchange.HmacSHA256Base64(k.creds.Password, k.creds.Secret)
	req.Headers["KC-API-KEY-VERSION"] = "2"
	return req, nil
}

type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// handleErrors checks the response envelope. code "200000" means success;
// anything else goes through the classification tables.
func (k *Kucoin) handleErrors(status int, body []byte) error {
	if len(body) == 0 {
		return nil
	}
	var e envelope
	if err := json.Unmarshal(body, &e); err != nil {
		if status >= 500 {
			return exchange.NewError(exchangeID, exchange.KindExchangeNotAvailable, "http %d", status)
		}
		return nil
	}
	if e.Code == "" || e.Code == successCode {
		return nil
	}
	return k.errors.Classify(exchangeID, e.Code, e.Msg)
}

// request runs one round trip and unwraps the data field of the envelope.
func (k *Kucoin) request(ctx context.Context, api, method, path string, params exchange.Params, body string) (json.RawMessage, error) {
	req, err := k.sign(path, api, method, params, body)
	if err != nil {
		return nil, err
	}
	status, raw, err := k.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := k.handleErrors(status, raw); err != nil {
		var classified *exchange.Error
		if errors.As(err, &classified) {
			k.http.ReportError(req.URL, classified.Kind)
		}
		return nil, err
	}
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%s response envelope: %w", exchangeID, err)
	}
	return e.Data, nil
}
