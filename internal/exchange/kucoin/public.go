package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

var hundredD = decimal.NewFromInt(100)

type rawStats struct {
	Time         int64  `json:"time"`
	Symbol       string `json:"symbol"`
	Buy          string `json:"buy"`
	Sell         string `json:"sell"`
	High         string `json:"high"`
	Low          string `json:"low"`
	Vol          string `json:"vol"`
	VolValue     string `json:"volValue"`
	Last         string `json:"last"`
	ChangeRate   string `json:"changeRate"`
	ChangePrice  string `json:"changePrice"`
	AveragePrice string `json:"averagePrice"`
}

func (k *Kucoin) parseTicker(raw rawStats, market *model.Market) *model.Ticker {
	symbol := raw.Symbol
	if market != nil {
		symbol = market.Symbol
	}
	t := &model.Ticker{
		Symbol:      symbol,
		Timestamp:   raw.Time,
		High:        model.Num(raw.High),
		Low:         model.Num(raw.Low),
		Bid:         model.Num(raw.Buy),
		Ask:         model.Num(raw.Sell),
		Last:        model.Num(raw.Last),
		Change:      model.Num(raw.ChangePrice),
		Average:     model.Num(raw.AveragePrice),
		BaseVolume:  model.Num(raw.Vol),
		QuoteVolume: model.Num(raw.VolValue),
		Info:        raw,
	}
	// changeRate is a fraction; the unified field is a percentage.
	if rate := model.Num(raw.ChangeRate); rate != nil {
		p := rate.Mul(hundredD)
		t.Percentage = &p
	}
	return exchange.FinishTicker(t)
}

// FetchTicker returns the 24h statistics snapshot for one market.
func (k *Kucoin) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := k.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := k.request(ctx, apiPublic, "GET", "/api/v1/market/stats", exchange.Params{"symbol": market.ID}, "")
	if err != nil {
		return nil, err
	}
	var raw rawStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s market stats: %w", exchangeID, err)
	}
	return k.parseTicker(raw, market), nil
}

// FetchTickers returns snapshots for the requested symbols from the
// allTickers endpoint, or for every known market when symbols is empty.
func (k *Kucoin) FetchTickers(ctx context.Context, symbols []string) (map[string]*model.Ticker, error) {
	if _, err := k.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	data, err := k.request(ctx, apiPublic, "GET", "/api/v1/market/allTickers", nil, "")
	if err != nil {
		return nil, err
	}
	var raw struct {
		Time   int64      `json:"time"`
		Ticker []rawStats `json:"ticker"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s all tickers: %w", exchangeID, err)
	}
	wanted := map[string]bool{}
	for _, s := range symbols {
		wanted[s] = true
	}
	out := map[string]*model.Ticker{}
	for _, entry := range raw.Ticker {
		market := k.state.MarketByID(entry.Symbol)
		if market == nil {
			continue
		}
		if len(wanted) > 0 && !wanted[market.Symbol] {
			continue
		}
		if entry.Time == 0 {
			entry.Time = raw.Time
		}
		out[market.Symbol] = k.parseTicker(entry, market)
	}
	return out, nil
}

// FetchOrderBook returns a level-2 depth snapshot, best levels first.
// When limit is set each side is truncated to at most limit levels.
func (k *Kucoin) FetchOrderBook(ctx context.Context, symbol string, limit int) (*model.OrderBook, error) {
	market, err := k.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	path := "/api/v1/market/orderbook/level2_100"
	if limit > 0 && limit <= 20 {
		path = "/api/v1/market/orderbook/level2_20"
	}
	data, err := k.request(ctx, apiPublic, "GET", path, exchange.Params{"symbol": market.ID}, "")
	if err != nil {
		return nil, err
	}
	var raw struct {
		Time     int64       `json:"time"`
		Sequence string      `json:"sequence"`
		Bids     [][2]string `json:"bids"`
		Asks     [][2]string `json:"asks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s order book: %w", exchangeID, err)
	}
	sequence, _ := strconv.ParseInt(raw.Sequence, 10, 64)
	book := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: raw.Time,
		Datetime:  exchange.ISO8601(raw.Time),
		Nonce:     sequence,
	}
	for i, l := range raw.Bids {
		if limit > 0 && i >= limit {
			break
		}
		book.Bids = append(book.Bids, model.BookLevel{Price: model.Num(l[0]), Amount: model.Num(l[1])})
	}
	for i, l := range raw.Asks {
		if limit > 0 && i >= limit {
			break
		}
		book.Asks = append(book.Asks, model.BookLevel{Price: model.Num(l[0]), Amount: model.Num(l[1])})
	}
	return book, nil
}

type rawHistory struct {
	Sequence string `json:"sequence"`
	Time     int64  `json:"time"` // nanoseconds
	Price    string `json:"price"`
	Size     string `json:"size"`
	Side     string `json:"side"`
}

// FetchTrades returns recent public trades. KuCoin trade timestamps are in
// nanoseconds and are normalized to milliseconds here.
func (k *Kucoin) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	market, err := k.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := k.request(ctx, apiPublic, "GET", "/api/v1/market/histories", exchange.Params{"symbol": market.ID}, "")
	if err != nil {
		return nil, err
	}
	var raws []rawHistory
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s trade histories: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raws))
	for _, raw := range raws {
		ts := exchange.NsToMs(raw.Time)
		if since > 0 && ts < since {
			continue
		}
		t := model.Trade{
			ID:        raw.Sequence,
			Timestamp: ts,
			Symbol:    market.Symbol,
			Side:      model.Side(raw.Side),
			Price:     model.Num(raw.Price),
			Amount:    model.Num(raw.Size),
			Info:      raw,
		}
		trades = append(trades, *exchange.FinishTrade(&t, market))
		if limit > 0 && len(trades) >= limit {
			break
		}
	}
	return trades, nil
}

var timeframes = map[string]string{
	"1m": "1min", "3m": "3min", "5m": "5min", "15m": "15min", "30m": "30min",
	"1h": "1hour", "2h": "2hour", "4h": "4hour", "6h": "6hour", "8h": "8hour",
	"12h": "12hour", "1d": "1day", "1w": "1week",
}

// FetchOHLCV returns candles. KuCoin candle rows are
// [time(sec), open, close, high, low, volume, turnover], newest first;
// output is normalized to ms timestamps, oldest first.
func (k *Kucoin) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]model.OHLCV, error) {
	market, err := k.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	interval, ok := timeframes[timeframe]
	if !ok {
		return nil, exchange.NewError(exchangeID, exchange.KindBadRequest, "unsupported timeframe %s", timeframe)
	}
	params := exchange.Params{"symbol": market.ID, "type": interval}
	if since > 0 {
		params["startAt"] = strconv.FormatInt(since/1000, 10)
	}
	data, err := k.request(ctx, apiPublic, "GET", "/api/v1/market/candles", params, "")
	if err != nil {
		return nil, err
	}
	var raws [][]string
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s candles: %w", exchangeID, err)
	}
	candles := make([]model.OHLCV, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		raw := raws[i]
		if len(raw) < 6 {
			continue
		}
		sec, _ := strconv.ParseInt(raw[0], 10, 64)
		candles = append(candles, model.OHLCV{
			Timestamp: exchange.SecToMs(sec),
			Open:      model.Num(raw[1]),
			Close:     model.Num(raw[2]),
			High:      model.Num(raw[3]),
			Low:       model.Num(raw[4]),
			Volume:    model.Num(raw[5]),
		})
		if limit > 0 && len(candles) >= limit {
			break
		}
	}
	return candles, nil
}
