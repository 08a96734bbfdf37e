package binance

import (
	"testing"

	"cexlink/config"
	"cexlink/internal/model"
)

func newStreamForTest() *Stream {
	b := New(config.ExchangeConfig{})
	b.state.SetMarkets([]model.Market{
		{ID: "BTCUSDT", Symbol: "BTC/USDT", Base: "BTC", Quote: "USDT", Precision: model.Precision{Price: 2}},
	})
	return b.Stream()
}

func TestDispatchIgnoresAcks(t *testing.T) {
	s := newStreamForTest()
	s.dispatch([]byte(`{"result":null,"id":1}`))
	s.dispatch([]byte(`not json`))
	select {
	case ev := <-s.events:
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}

func TestDispatchTicker(t *testing.T) {
	s := newStreamForTest()
	s.dispatch([]byte(`{"stream":"btcusdt@ticker","data":{
	  "E":1504541580000,"s":"BTCUSDT","o":"100","c":"110","h":"112","l":"98"}}`))
	ev := <-s.events
	if ev.Type != EventTicker {
		t.Fatalf("type = %s", ev.Type)
	}
	if ev.Symbol != "BTC/USDT" {
		t.Errorf("symbol = %s", ev.Symbol)
	}
	if ev.Ticker.Change == nil || ev.Ticker.Change.String() != "10" {
		t.Errorf("change = %v, want derived 10", ev.Ticker.Change)
	}
}

func TestDispatchTradeSide(t *testing.T) {
	s := newStreamForTest()
	s.dispatch([]byte(`{"stream":"btcusdt@trade","data":{
	  "E":1,"s":"BTCUSDT","t":7,"p":"100","q":"2","T":1504541580000,"m":true}}`))
	ev := <-s.events
	if ev.Type != EventTrade {
		t.Fatalf("type = %s", ev.Type)
	}
	if ev.Trade.Side != model.SideSell {
		t.Errorf("buyer-maker trade should be a sell, got %s", ev.Trade.Side)
	}
	if ev.Trade.Cost == nil || ev.Trade.Cost.String() != "200" {
		t.Errorf("cost = %v", ev.Trade.Cost)
	}
}

func TestDispatchDepthNonceGate(t *testing.T) {
	s := newStreamForTest()
	s.books["BTCUSDT"] = &bookSync{snapNonce: 100, synced: true}

	// An update at or below the snapshot nonce is dropped.
	s.dispatch([]byte(`{"stream":"btcusdt@depth","data":{
	  "E":1,"s":"BTCUSDT","U":90,"u":100,"b":[["1","1"]],"a":[]}}`))
	select {
	case ev := <-s.events:
		t.Fatalf("stale update delivered: %+v", ev)
	default:
	}

	s.dispatch([]byte(`{"stream":"btcusdt@depth","data":{
	  "E":1504541580000,"s":"BTCUSDT","U":101,"u":105,"b":[["1","1"]],"a":[]}}`))
	ev := <-s.events
	if ev.Type != EventBookUpdate {
		t.Fatalf("type = %s", ev.Type)
	}
	if ev.Book.Nonce != 105 {
		t.Errorf("nonce = %d", ev.Book.Nonce)
	}
	if len(ev.Book.Bids) != 1 {
		t.Errorf("bids = %+v", ev.Book.Bids)
	}
}

func TestDispatchDepthWithoutSubscription(t *testing.T) {
	s := newStreamForTest()

	// A depth update on a fresh stream with no subscription must not
	// reach consumers.
	s.dispatch([]byte(`{"stream":"btcusdt@depth","data":{
	  "E":1,"s":"BTCUSDT","U":40,"u":50,"b":[["1","1"]],"a":[]}}`))
	select {
	case ev := <-s.events:
		t.Fatalf("unsubscribed update delivered: %+v", ev)
	default:
	}
}

func TestDepthBufferedUntilSnapshot(t *testing.T) {
	s := newStreamForTest()
	s.books["BTCUSDT"] = &bookSync{}

	// Updates racing ahead of the REST snapshot are held back.
	s.dispatch([]byte(`{"stream":"btcusdt@depth","data":{
	  "E":1,"s":"BTCUSDT","U":40,"u":50,"b":[["1","1"]],"a":[]}}`))
	s.dispatch([]byte(`{"stream":"btcusdt@depth","data":{
	  "E":2,"s":"BTCUSDT","U":101,"u":120,"b":[["2","1"]],"a":[]}}`))
	select {
	case ev := <-s.events:
		t.Fatalf("update delivered before snapshot: %+v", ev)
	default:
	}

	market := s.b.state.Market("BTC/USDT")
	s.finishBookSync(market, &model.OrderBook{Symbol: "BTC/USDT", Nonce: 100})

	ev := <-s.events
	if ev.Type != EventBookSnapshot {
		t.Fatalf("first event = %s, want snapshot", ev.Type)
	}
	if ev.Book.Nonce != 100 {
		t.Errorf("snapshot nonce = %d", ev.Book.Nonce)
	}

	// Only the buffered update newer than the snapshot is replayed.
	ev = <-s.events
	if ev.Type != EventBookUpdate {
		t.Fatalf("second event = %s, want update", ev.Type)
	}
	if ev.Book.Nonce != 120 {
		t.Errorf("replayed nonce = %d", ev.Book.Nonce)
	}
	select {
	case ev := <-s.events:
		t.Fatalf("stale buffered update replayed: %+v", ev)
	default:
	}
}

func TestEmitAfterClose(t *testing.T) {
	s := newStreamForTest()
	s.mu.Lock()
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	// Handlers must not panic once the read loop has shut the channel.
	s.dispatch([]byte(`{"stream":"btcusdt@ticker","data":{
	  "E":1,"s":"BTCUSDT","o":"100","c":"110"}}`))
}

func TestDispatchUnknownMarket(t *testing.T) {
	s := newStreamForTest()
	s.dispatch([]byte(`{"stream":"dogeusdt@ticker","data":{"s":"DOGEUSDT","c":"1"}}`))
	select {
	case ev := <-s.events:
		t.Errorf("event for an unknown market: %+v", ev)
	default:
	}
}
