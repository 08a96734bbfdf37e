package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cexlink/internal/exchange"
)

func TestDoPassesHeadersAndBody(t *testing.T) {
	var gotHeader, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-MBX-APIKEY")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New("test", time.Second, 0, 0)
	status, body, err := c.Do(context.Background(), exchange.Request{
		URL:     server.URL + "/api/v3/order",
		Method:  "POST",
		Headers: map[string]string{"X-MBX-APIKEY": "key123"},
		Body:    `{"symbol":"BTCUSDT"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	if status != 200 {
		t.Errorf("status = %d", status)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if gotHeader != "key123" {
		t.Errorf("header = %q", gotHeader)
	}
	if gotBody != `{"symbol":"BTCUSDT"}` {
		t.Errorf("request body = %q", gotBody)
	}
}

func TestDoReturnsNonOKStatusWithoutError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"code":-1003,"msg":"Too many requests."}`))
	}))
	defer server.Close()

	c := New("test", time.Second, 0, 0)
	status, body, err := c.Do(context.Background(), exchange.Request{
		URL:    server.URL + "/api/v3/ticker/24hr",
		Method: "GET",
	})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if status != http.StatusTeapot {
		t.Errorf("status = %d", status)
	}
	if len(body) == 0 {
		t.Error("body should be passed through for classification")
	}
}

func TestDoRespectsContext(t *testing.T) {
	// rps 1 with burst 1: the second call has to wait, and the canceled
	// context must abort that wait.
	c := New("test", time.Second, 1, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	req := exchange.Request{URL: server.URL + "/ping", Method: "GET"}
	if _, _, err := c.Do(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Do(ctx, req); err == nil {
		t.Error("expected the limiter wait to fail on a canceled context")
	}
}

func TestEndpointLabel(t *testing.T) {
	if got := endpointLabel("https://api.binance.com/api/v3/depth?symbol=BTCUSDT"); got != "/api/v3/depth" {
		t.Errorf("endpointLabel = %q", got)
	}
}
