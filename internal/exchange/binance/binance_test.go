package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"cexlink/config"
	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

func newTestBinance(baseURL string) *Binance {
	return New(config.ExchangeConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Secret:  "test-secret",
	})
}

func TestSignPublic(t *testing.T) {
	b := newTestBinance("https://api.example.com")
	req, err := b.sign("/api/v3/depth", apiPublic, "GET", exchange.Params{"symbol": "BTCUSDT", "limit": "5"})
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("symbol") != "BTCUSDT" || q.Get("limit") != "5" {
		t.Errorf("query = %v", q)
	}
	if q.Get("signature") != "" || q.Get("timestamp") != "" {
		t.Error("public request must not be signed")
	}
	if req.Headers["X-MBX-APIKEY"] != "" {
		t.Error("public request must not carry the api key")
	}
}

func TestSignPrivate(t *testing.T) {
	b := newTestBinance("https://api.example.com")
	req, err := b.sign("/api/v3/order", apiPrivate, "POST", exchange.Params{"symbol": "BTCUSDT", "side": "BUY"})
	if err != nil {
		t.Fatal(err)
	}
	if req.Headers["X-MBX-APIKEY"] != "test-key" {
		t.Errorf("api key header = %q", req.Headers["X-MBX-APIKEY"])
	}
	u, err := url.Parse(req.URL)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("timestamp") == "" || q.Get("recvWindow") != "5000" {
		t.Errorf("timestamp/recvWindow missing: %v", q)
	}
	signature := q.Get("signature")
	if signature == "" {
		t.Fatal("signature missing")
	}
	// The signature covers everything before &signature=.
	signed := u.RawQuery[:strings.Index(u.RawQuery, "&signature=")]
	if want := exchange.HmacSHA256Hex(signed, "test-secret"); signature != want {
		t.Errorf("signature = %s, want %s", signature, want)
	}
}

func TestSignPrivateMissingCredentials(t *testing.T) {
	b := New(config.ExchangeConfig{BaseURL: "https://api.example.com"})
	_, err := b.sign("/api/v3/order", apiPrivate, "POST", nil)
	if !exchange.IsKind(err, exchange.KindAuthenticationError) {
		t.Errorf("err = %v, want AuthenticationError", err)
	}
}

func TestHandleErrors(t *testing.T) {
	b := newTestBinance("https://api.example.com")
	tests := []struct {
		name   string
		status int
		body   string
		kind   exchange.Kind
		ok     bool
	}{
		{"success", 200, `{"serverTime":1}`, "", true},
		{"empty body", 502, ``, "", true},
		{"unparseable 200", 200, `<html>`, "", true},
		{"unparseable 5xx", 502, `<html>bad gateway</html>`, exchange.KindExchangeNotAvailable, false},
		{"exact code", 400, `{"code":-2011,"msg":"Unknown order sent."}`, exchange.KindOrderNotFound, false},
		{"invalid nonce", 400, `{"code":-1021,"msg":"Timestamp for this request is outside of the recvWindow."}`, exchange.KindInvalidNonce, false},
		{"broad match", 400, `{"code":-9999,"msg":"Account has insufficient balance for requested action."}`, exchange.KindInsufficientFunds, false},
		{"fallback", 400, `{"code":-9999,"msg":"some new error"}`, exchange.KindExchangeError, false},
		{"bare 418", 418, `{}`, exchange.KindDDoSProtection, false},
		{"bare 429", 429, `{}`, exchange.KindRateLimitExceeded, false},
		{"bare 503", 503, `{}`, exchange.KindExchangeNotAvailable, false},
		{"bare 400", 400, `{}`, exchange.KindBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.handleErrors(tt.status, []byte(tt.body))
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !exchange.IsKind(err, tt.kind) {
				t.Errorf("err = %v, want kind %s", err, tt.kind)
			}
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		native string
		want   model.OrderStatus
	}{
		{"NEW", model.OrderStatusOpen},
		{"PARTIALLY_FILLED", model.OrderStatusOpen},
		{"PENDING_CANCEL", model.OrderStatusOpen},
		{"FILLED", model.OrderStatusClosed},
		{"CANCELED", model.OrderStatusCanceled},
		{"REJECTED", model.OrderStatusRejected},
		{"EXPIRED", model.OrderStatusExpired},
		{"EXPIRED_IN_MATCH", model.OrderStatusExpired},
		{"SOMETHING_NEW", model.OrderStatus("SOMETHING_NEW")},
	}
	for _, tt := range tests {
		if got := parseOrderStatus(tt.native); got != tt.want {
			t.Errorf("parseOrderStatus(%s) = %s, want %s", tt.native, got, tt.want)
		}
	}
}

const exchangeInfoFixture = `{
  "symbols": [
    {
      "symbol": "BTCUSDT",
      "status": "TRADING",
      "baseAsset": "BTC",
      "quoteAsset": "USDT",
      "filters": [
        {"filterType": "PRICE_FILTER", "minPrice": "0.01", "maxPrice": "1000000", "tickSize": "0.01"},
        {"filterType": "LOT_SIZE", "minQty": "0.00001", "maxQty": "9000", "stepSize": "0.00001"},
        {"filterType": "NOTIONAL", "minNotional": "5"}
      ]
    },
    {
      "symbol": "DELISTED",
      "status": "BREAK",
      "baseAsset": "DEL",
      "quoteAsset": "USDT",
      "filters": []
    }
  ]
}`

func TestFetchMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/exchangeInfo" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(exchangeInfoFixture))
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	markets, err := b.LoadMarkets(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets", len(markets))
	}

	btc := b.state.Market("BTC/USDT")
	if btc == nil {
		t.Fatal("BTC/USDT not indexed by symbol")
	}
	if btc.ID != "BTCUSDT" || btc.Base != "BTC" || btc.Quote != "USDT" {
		t.Errorf("market = %+v", btc)
	}
	if b.state.MarketByID("BTCUSDT") != btc {
		t.Error("id index and symbol index disagree")
	}
	if btc.Precision.Price != 2 || btc.Precision.Amount != 5 {
		t.Errorf("precision = %+v", btc.Precision)
	}
	if btc.Limits.Cost.Min == nil || btc.Limits.Cost.Min.String() != "5" {
		t.Errorf("min notional = %v", btc.Limits.Cost.Min)
	}
	if !btc.IsActive() {
		t.Error("TRADING market should be active")
	}
	if del := b.state.Market("DEL/USDT"); del == nil || del.IsActive() {
		t.Error("BREAK market should be inactive")
	}
}

func TestFetchOrderBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			w.Write([]byte(exchangeInfoFixture))
		case "/api/v3/depth":
			w.Write([]byte(`{"lastUpdateId":1027024,"bids":[["4.00000000","431.0"]],"asks":[["4.00000200","12.0"]]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	book, err := b.FetchOrderBook(context.Background(), "BTC/USDT", 5)
	if err != nil {
		t.Fatal(err)
	}
	if book.Nonce != 1027024 {
		t.Errorf("nonce = %d", book.Nonce)
	}
	if len(book.Bids) != 1 || !book.Bids[0].Price.Equal(decimal.NewFromInt(4)) {
		t.Errorf("bids = %+v", book.Bids)
	}
	if book.Symbol != "BTC/USDT" {
		t.Errorf("symbol = %s", book.Symbol)
	}
}

func TestFetchTickerDerivations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			w.Write([]byte(exchangeInfoFixture))
		case "/api/v3/ticker/24hr":
			w.Write([]byte(`{"symbol":"BTCUSDT","openPrice":"100","lastPrice":"110","closeTime":1504541580000}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	ticker, err := b.FetchTicker(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if ticker.Change == nil || ticker.Change.String() != "10" {
		t.Errorf("change = %v", ticker.Change)
	}
	if ticker.Average == nil || ticker.Average.String() != "105" {
		t.Errorf("average = %v", ticker.Average)
	}
	if ticker.Datetime != "2017-09-04T16:13:00.000Z" {
		t.Errorf("datetime = %s", ticker.Datetime)
	}
}

func TestFetchTickerUnknownSymbol(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exchangeInfoFixture))
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	_, err := b.FetchTicker(context.Background(), "FOO/BAR")
	if !exchange.IsKind(err, exchange.KindBadSymbol) {
		t.Errorf("err = %v, want BadSymbol", err)
	}
}

func TestCancelOrderBenignOnTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			w.Write([]byte(exchangeInfoFixture))
		case "/api/v3/order":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":-2011,"msg":"Unknown order sent."}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	b.state.CacheOrder(&model.Order{ID: "42", Symbol: "BTC/USDT", Status: model.OrderStatusCanceled})

	order, err := b.CancelOrder(context.Background(), "42", "BTC/USDT", nil)
	if err != nil {
		t.Fatalf("cancel of a locally terminal order must be benign: %v", err)
	}
	if order.Status != model.OrderStatusCanceled {
		t.Errorf("status = %s", order.Status)
	}

	// Without a terminal cached order the same response is an error.
	_, err = b.CancelOrder(context.Background(), "43", "BTC/USDT", nil)
	if !exchange.IsKind(err, exchange.KindOrderNotFound) {
		t.Errorf("err = %v, want OrderNotFound", err)
	}
}

func TestFetchOrderMergesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/exchangeInfo":
			w.Write([]byte(exchangeInfoFixture))
		case "/api/v3/order":
			// The venue omits price and origQty here.
			w.Write([]byte(`{"symbol":"BTCUSDT","orderId":42,"status":"FILLED","executedQty":"1"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	b := newTestBinance(server.URL)
	b.state.CacheOrder(&model.Order{
		ID:     "42",
		Symbol: "BTC/USDT",
		Side:   model.SideBuy,
		Type:   model.OrderTypeLimit,
		Price:  model.Num("100"),
		Amount: model.Num("1"),
		Status: model.OrderStatusOpen,
	})

	order, err := b.FetchOrder(context.Background(), "42", "BTC/USDT")
	if err != nil {
		t.Fatal(err)
	}
	if order.Price == nil || order.Price.String() != "100" {
		t.Errorf("price not merged: %v", order.Price)
	}
	if order.Side != model.SideBuy || order.Type != model.OrderTypeLimit {
		t.Errorf("side/type not merged: %+v", order)
	}
	if order.Status != model.OrderStatusClosed {
		t.Errorf("status = %s", order.Status)
	}
}
