// Package ace binds the unified connector surface to the ACE exchange REST
// API. Private calls are form-urlencoded POSTs whose signKey parameter is
// an HMAC-SHA256 over the fixed template "ACE_SIGN" + timestamp + phone, so
// the phone credential is required alongside key and secret. Order side and
// status arrive as numeric codes.
package ace

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
	exchangeID     = "ace"
	defaultBaseURL = "https://ace.io/polarisex"
	signTemplate   = "ACE_SIGN"
)

const (
	apiPublic  = "public"
	apiPrivate = "private"
)

// Ace implements exchange.Connector.
type Ace struct {
	baseURL string
	creds   exchange.Credentials
	state   *exchange.State
	http    *httpclient.Client
	nonce   *exchange.Nonce
	log     *logger.Entry
	errors  exchange.ErrorTables
}

// New builds an ACE connector from its config section.
func New(cfg config.ExchangeConfig) *Ace {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Ace{
		baseURL: baseURL,
		creds: exchange.Credentials{
			APIKey: cfg.APIKey,
			Secret: cfg.Secret,
			Phone:  cfg.Phone,
		},
		state:  exchange.NewState(),
		http:   httpclient.New(exchangeID, cfg.Timeout, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
		nonce:  &exchange.Nonce{},
		log:    logger.GetLogger().WithExchange(exchangeID),
		errors: errorTables,
	}
}

// ID returns the exchange identifier.
func (a *Ace) ID() string { return exchangeID }

var errorTables = exchange.ErrorTables{
	Exact: map[string]exchange.Kind{
		"2003": exchange.KindAuthenticationError, // invalid api key
		"2004": exchange.KindAuthenticationError, // signature mismatch
		"2005": exchange.KindInvalidNonce,        // timestamp too old
		"2007": exchange.KindPermissionDenied,
		"2011": exchange.KindInsufficientFunds,
		"2036": exchange.KindInvalidOrder,
		"2039": exchange.KindOrderNotFound,
		"2053": exchange.KindBadSymbol,
		"2088": exchange.KindRateLimitExceeded,
	},
	Broad: []exchange.BroadEntry{
		{Substring: "insufficient", Kind: exchange.KindInsufficientFunds},
		{Substring: "order not found", Kind: exchange.KindOrderNotFound},
		{Substring: "market pair not exist", Kind: exchange.KindBadSymbol},
		{Substring: "too many", Kind: exchange.KindRateLimitExceeded},
		{Substring: "maintenance", Kind: exchange.KindOnMaintenance},
	},
}

// sign constructs the exact wire request. Public calls are plain GETs.
// Private calls are form-urlencoded POSTs carrying apiKey, timeStamp and
// signKey = HMAC-SHA256("ACE_SIGN" + timeStamp + phone, secret).
func (a *Ace) sign(path, api, method string, params exchange.Params) (exchange.Request, error) {
	query := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		query.Set(k, params[k])
	}

	if api == apiPublic {
		req := exchange.Request{
			URL:     a.baseURL + path,
			Method:  method,
			Headers: map[string]string{},
		}
		if encoded := query.Encode(); encoded != "" {
			req.URL += "?" + encoded
		}
		return req, nil
	}

	if err := exchange.RequireCredentials(exchangeID, a.creds, "apiKey", "secret", "phone"); err != nil {
		return exchange.Request{}, err
	}

	timestamp := strconv.FormatInt(a.nonce.Next(), 10)
	query.Set("apiKey", a.creds.APIKey)
	query.Set("timeStamp", timestamp)
	query.Set("signKey", exchange.HmacSHA256Hex(signTemplate+timestamp+a.creds.Phone, a.creds.Secret))

	return exchange.Request{
		URL:    a.baseURL + path,
		Method: "POST",
		Headers: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body: query.Encode(),
	}, nil
}

type envelope struct {
	Success      interface{}     `json:"success"`
	Attachment   json.RawMessage `json:"attachment"`
	ErrorCode    json.Number     `json:"errorCode"`
	ErrorMessage string          `json:"errorMessage"`
}

// handleErrors checks the success discriminant, which this venue encodes
// inconsistently as 1, true, "1" or "true"; all four mean success.
func (a *Ace) handleErrors(status int, body []byte) error {
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
	if e.Success == nil || exchange.IsTruthy(e.Success) {
		return nil
	}
	return a.errors.Classify(exchangeID, e.ErrorCode.String(), e.ErrorMessage)
}

// request runs one round trip and unwraps the attachment payload.
func (a *Ace) request(ctx context.Context, api, method, path string, params exchange.Params) (json.RawMessage, error) {
	req, err := a.sign(path, api, method, params)
	if err != nil {
		return nil, err
	}
	status, raw, err := a.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := a.handleErrors(status, raw); err != nil {
		var classified *exchange.Error
		if errors.As(err, &classified) {
			a.http.ReportError(req.URL, classified.Kind)
		}
		return nil, err
	}
	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%s response envelope: %w", exchangeID, err)
	}
	if e.Attachment != nil {
		return e.Attachment, nil
	}
	return raw, nil
}
