package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
	"cexlink/logger"
)

// EventType discriminates stream events.
type EventType string

const (
	EventTicker       EventType = "ticker"
	EventTrade        EventType = "trade"
	EventBookSnapshot EventType = "book_snapshot"
	EventBookUpdate   EventType = "book_update"
)

// Event is one message from the market stream. Book snapshots and updates
// are discriminated by Type; Nonce ordering lets consumers resync.
type Event struct {
	Type   EventType
	Symbol string
	Ticker *model.Ticker
	Trade  *model.Trade
	Book   *model.OrderBook
	Err    error
}

// Stream multiplexes market-data subscriptions over one WebSocket
// connection. Messages are processed one at a time as they arrive; there
// are no internal parallel workers.
type Stream struct {
	b      *Binance
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
	books  map[string]*bookSync // market id -> depth sync state
	closed bool

	events chan Event
	log    *logger.Entry
}

// bookSync tracks one market's snapshot-then-deltas handshake. Depth
// updates that arrive before the REST snapshot are held in pending and
// replayed through the nonce gate once the snapshot lands.
type bookSync struct {
	snapNonce int64
	pending   []wsDepth
	synced    bool
}

// Stream returns a market-data stream bound to this connector. The dialer
// parameter of connect is replaceable for tests.
func (b *Binance) Stream() *Stream {
	return &Stream{
		b:      b,
		dialer: websocket.DefaultDialer,
		books:  map[string]*bookSync{},
		events: make(chan Event, 64),
		log:    b.log.WithComponent("stream"),
	}
}

// Connect dials the combined stream endpoint and starts the read loop.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := s.dialer.DialContext(ctx, s.b.wsURL, nil)
	if err != nil {
		return fmt.Errorf("%s websocket dial: %w", exchangeID, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop()
	return nil
}

// Events is the single ordered event channel for all subscriptions.
func (s *Stream) Events() <-chan Event { return s.events }

// Close tears the connection down; the read loop drains and the event
// channel is closed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Stream) subscribe(ctx context.Context, topics ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return exchange.NewError(exchangeID, exchange.KindExchangeNotAvailable, "stream not connected")
	}
	s.nextID++
	envelope := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": topics,
		"id":     s.nextID,
	}
	return s.conn.WriteJSON(envelope)
}

// SubscribeTicker subscribes to 24h ticker pushes for a symbol.
func (s *Stream) SubscribeTicker(ctx context.Context, symbol string) error {
	market, err := s.b.market(ctx, symbol)
	if err != nil {
		return err
	}
	return s.subscribe(ctx, strings.ToLower(market.ID)+"@ticker")
}

// SubscribeTrades subscribes to public trade pushes for a symbol.
func (s *Stream) SubscribeTrades(ctx context.Context, symbol string) error {
	market, err := s.b.market(ctx, symbol)
	if err != nil {
		return err
	}
	return s.subscribe(ctx, strings.ToLower(market.ID)+"@trade")
}

// SubscribeOrderBook subscribes to depth updates for a symbol. A REST
// snapshot is emitted first; incremental updates that arrive before the
// snapshot are buffered, then replayed through the nonce gate, so
// consumers always see snapshot-then-deltas in order.
func (s *Stream) SubscribeOrderBook(ctx context.Context, symbol string) error {
	market, err := s.b.market(ctx, symbol)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.books[market.ID] = &bookSync{}
	s.mu.Unlock()
	if err := s.subscribe(ctx, strings.ToLower(market.ID)+"@depth"); err != nil {
		s.dropBookSync(market.ID)
		return err
	}
	snapshot, err := s.b.FetchOrderBook(ctx, symbol, 100)
	if err != nil {
		s.dropBookSync(market.ID)
		return err
	}
	s.finishBookSync(market, snapshot)
	return nil
}

func (s *Stream) dropBookSync(marketID string) {
	s.mu.Lock()
	delete(s.books, marketID)
	s.mu.Unlock()
}

// finishBookSync records the snapshot nonce, emits the snapshot and
// replays any depth updates that were buffered while the REST call was
// in flight. Runs under mu so no update can slip in between the
// snapshot and the replayed deltas.
func (s *Stream) finishBookSync(market *model.Market, snapshot *model.OrderBook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sync := s.books[market.ID]
	if sync == nil {
		return
	}
	sync.snapNonce = snapshot.Nonce
	sync.synced = true
	s.sendLocked(Event{Type: EventBookSnapshot, Symbol: market.Symbol, Book: snapshot})
	for _, raw := range sync.pending {
		if raw.FinalID <= sync.snapNonce {
			continue
		}
		s.sendLocked(Event{Type: EventBookUpdate, Symbol: market.Symbol, Book: bookFromDepth(raw, market)})
	}
	sync.pending = nil
}

// emit delivers an event unless the read loop has already closed the
// channel.
func (s *Stream) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendLocked(ev)
}

func (s *Stream) sendLocked(ev Event) {
	if s.closed {
		return
	}
	s.events <- ev
}

type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

type wsTicker struct {
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	Change      string `json:"p"`
	Percentage  string `json:"P"`
	VWAP        string `json:"w"`
	Last        string `json:"c"`
	Bid         string `json:"b"`
	Ask         string `json:"a"`
	Open        string `json:"o"`
	High        string `json:"h"`
	Low         string `json:"l"`
	BaseVolume  string `json:"v"`
	QuoteVolume string `json:"q"`
}

type wsTrade struct {
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	ID           int64  `json:"t"`
	Price        string `json:"p"`
	Qty          string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

type wsDepth struct {
	EventTime int64       `json:"E"`
	Symbol    string      `json:"s"`
	FirstID   int64       `json:"U"`
	FinalID   int64       `json:"u"`
	Bids      [][2]string `json:"b"`
	Asks      [][2]string `json:"a"`
}

func (s *Stream) readLoop() {
	defer func() {
		s.mu.Lock()
		s.closed = true
		close(s.events)
		s.mu.Unlock()
	}()
	for {
		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err) {
				s.log.WithError(err).Error("stream closed")
			}
			return
		}
		s.dispatch(message)
	}
}

func (s *Stream) dispatch(message []byte) {
	var envelope streamEnvelope
	if err := json.Unmarshal(message, &envelope); err != nil || envelope.Stream == "" {
		// Subscription acks and pings have no stream field.
		return
	}
	parts := strings.SplitN(envelope.Stream, "@", 2)
	if len(parts) != 2 {
		return
	}
	switch parts[1] {
	case "ticker":
		s.handleTicker(envelope.Data)
	case "trade":
		s.handleTrade(envelope.Data)
	case "depth":
		s.handleDepth(envelope.Data)
	}
}

func (s *Stream) handleTicker(data json.RawMessage) {
	var raw wsTicker
	if err := json.Unmarshal(data, &raw); err != nil {
		s.emit(Event{Err: fmt.Errorf("%s ticker stream: %w", exchangeID, err)})
		return
	}
	market := s.b.state.MarketByID(raw.Symbol)
	if market == nil {
		return
	}
	t := &model.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   raw.EventTime,
		High:        model.Num(raw.High),
		Low:         model.Num(raw.Low),
		Bid:         model.Num(raw.Bid),
		Ask:         model.Num(raw.Ask),
		Open:        model.Num(raw.Open),
		Last:        model.Num(raw.Last),
		Change:      model.Num(raw.Change),
		Percentage:  model.Num(raw.Percentage),
		VWAP:        model.Num(raw.VWAP),
		BaseVolume:  model.Num(raw.BaseVolume),
		QuoteVolume: model.Num(raw.QuoteVolume),
		Info:        raw,
	}
	s.emit(Event{Type: EventTicker, Symbol: market.Symbol, Ticker: exchange.FinishTicker(t)})
}

func (s *Stream) handleTrade(data json.RawMessage) {
	var raw wsTrade
	if err := json.Unmarshal(data, &raw); err != nil {
		s.emit(Event{Err: fmt.Errorf("%s trade stream: %w", exchangeID, err)})
		return
	}
	market := s.b.state.MarketByID(raw.Symbol)
	if market == nil {
		return
	}
	side := model.SideBuy
	if raw.IsBuyerMaker {
		side = model.SideSell
	}
	t := &model.Trade{
		ID:        strconv.FormatInt(raw.ID, 10),
		Timestamp: raw.TradeTime,
		Symbol:    market.Symbol,
		Side:      side,
		Price:     model.Num(raw.Price),
		Amount:    model.Num(raw.Qty),
		Info:      raw,
	}
	s.emit(Event{Type: EventTrade, Symbol: market.Symbol, Trade: exchange.FinishTrade(t, market)})
}

func (s *Stream) handleDepth(data json.RawMessage) {
	var raw wsDepth
	if err := json.Unmarshal(data, &raw); err != nil {
		s.emit(Event{Err: fmt.Errorf("%s depth stream: %w", exchangeID, err)})
		return
	}
	market := s.b.state.MarketByID(raw.Symbol)
	if market == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sync := s.books[raw.Symbol]
	if sync == nil {
		// No depth subscription for this market.
		return
	}
	if !sync.synced {
		// Snapshot still in flight; hold the update for replay.
		sync.pending = append(sync.pending, raw)
		return
	}
	if raw.FinalID <= sync.snapNonce {
		// Update predates the snapshot already delivered.
		return
	}
	s.sendLocked(Event{Type: EventBookUpdate, Symbol: market.Symbol, Book: bookFromDepth(raw, market)})
}

func bookFromDepth(raw wsDepth, market *model.Market) *model.OrderBook {
	return &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: raw.EventTime,
		Datetime:  exchange.ISO8601(raw.EventTime),
		Nonce:     raw.FinalID,
		Bids:      parseBookSide(raw.Bids),
		Asks:      parseBookSide(raw.Asks),
	}
}
