package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

type rawTicker struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	LastPrice          string `json:"lastPrice"`
	BidPrice           string `json:"bidPrice"`
	BidQty             string `json:"bidQty"`
	AskPrice           string `json:"askPrice"`
	AskQty             string `json:"askQty"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	CloseTime          int64  `json:"closeTime"`
}

func (b *Binance) parseTicker(raw rawTicker, market *model.Market) *model.Ticker {
	symbol := raw.Symbol
	if market != nil {
		symbol = market.Symbol
	}
	t := &model.Ticker{
		Symbol:      symbol,
		Timestamp:   raw.CloseTime,
		High:        model.Num(raw.HighPrice),
		Low:         model.Num(raw.LowPrice),
		Bid:         model.Num(raw.BidPrice),
		BidVolume:   model.Num(raw.BidQty),
		Ask:         model.Num(raw.AskPrice),
		AskVolume:   model.Num(raw.AskQty),
		Open:        model.Num(raw.OpenPrice),
		Last:        model.Num(raw.LastPrice),
		Change:      model.Num(raw.PriceChange),
		Percentage:  model.Num(raw.PriceChangePercent),
		VWAP:        model.Num(raw.WeightedAvgPrice),
		BaseVolume:  model.Num(raw.Volume),
		QuoteVolume: model.Num(raw.QuoteVolume),
		Info:        raw,
	}
	return exchange.FinishTicker(t)
}

// FetchTicker returns the 24h statistics snapshot for one market.
func (b *Binance) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/ticker/24hr", exchange.Params{"symbol": market.ID})
	if err != nil {
		return nil, err
	}
	var raw rawTicker
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s ticker: %w", exchangeID, err)
	}
	return b.parseTicker(raw, market), nil
}

// FetchTickers returns 24h snapshots for the requested symbols, or for
// every known market when symbols is empty.
func (b *Binance) FetchTickers(ctx context.Context, symbols []string) (map[string]*model.Ticker, error) {
	if _, err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/ticker/24hr", nil)
	if err != nil {
		return nil, err
	}
	var raws []rawTicker
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%s tickers: %w", exchangeID, err)
	}

	wanted := map[string]bool{}
	for _, s := range symbols {
		wanted[s] = true
	}
	out := map[string]*model.Ticker{}
	for _, raw := range raws {
		market := b.state.MarketByID(raw.Symbol)
		if market == nil {
			continue
		}
		if len(wanted) > 0 && !wanted[market.Symbol] {
			continue
		}
		out[market.Symbol] = b.parseTicker(raw, market)
	}
	return out, nil
}

type rawDepth struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

func parseBookSide(levels [][2]string) []model.BookLevel {
	out := make([]model.BookLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, model.BookLevel{Price: model.Num(l[0]), Amount: model.Num(l[1])})
	}
	return out
}

// FetchOrderBook returns a depth snapshot, best levels first.
func (b *Binance) FetchOrderBook(ctx context.Context, symbol string, limit int) (*model.OrderBook, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	params := exchange.Params{"symbol": market.ID}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/depth", params)
	if err != nil {
		return nil, err
	}
	var raw rawDepth
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s depth: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	return &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: ts,
		Datetime:  exchange.ISO8601(ts),
		Nonce:     raw.LastUpdateID,
		Bids:      parseBookSide(raw.Bids),
		Asks:      parseBookSide(raw.Asks),
	}, nil
}

type rawTrade struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	QuoteQty     string `json:"quoteQty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

func (b *Binance) parsePublicTrade(raw rawTrade, market *model.Market) model.Trade {
	side := model.SideBuy
	if raw.IsBuyerMaker {
		// The maker was the buyer, so the taker sold into the bid.
		side = model.SideSell
	}
	t := model.Trade{
		ID:        strconv.FormatInt(raw.ID, 10),
		Timestamp: raw.Time,
		Symbol:    market.Symbol,
		Side:      side,
		Price:     model.Num(raw.Price),
		Amount:    model.Num(raw.Qty),
		Cost:      model.Num(raw.QuoteQty),
		Info:      raw,
	}
	return *exchange.FinishTrade(&t, market)
}

// FetchTrades returns recent public trades for a market.
func (b *Binance) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	params := exchange.Params{"symbol": market.ID}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/trades", params)
	if err != nil {
		return nil, err
	}
	var raws []rawTrade
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%s trades: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raws))
	for _, raw := range raws {
		if since > 0 && raw.Time < since {
			continue
		}
		trades = append(trades, b.parsePublicTrade(raw, market))
	}
	return trades, nil
}

var timeframes = map[string]string{
	"1m": "1m", "3m": "3m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1h", "2h": "2h", "4h": "4h", "6h": "6h", "8h": "8h", "12h": "12h",
	"1d": "1d", "3d": "3d", "1w": "1w", "1M": "1M",
}

// FetchOHLCV returns candles as [timestamp(ms), open, high, low, close, volume].
func (b *Binance) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]model.OHLCV, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	interval, ok := timeframes[timeframe]
	if !ok {
		return nil, exchange.NewError(exchangeID, exchange.KindBadRequest, "unsupported timeframe %s", timeframe)
	}
	params := exchange.Params{"symbol": market.ID, "interval": interval}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/klines", params)
	if err != nil {
		return nil, err
	}
	var raws [][]interface{}
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%s klines: %w", exchangeID, err)
	}
	candles := make([]model.OHLCV, 0, len(raws))
	for _, raw := range raws {
		if len(raw) < 6 {
			continue
		}
		openTime, _ := raw[0].(float64)
		candles = append(candles, model.OHLCV{
			Timestamp: int64(openTime),
			Open:      model.Num(asString(raw[1])),
			High:      model.Num(asString(raw[2])),
			Low:       model.Num(asString(raw[3])),
			Close:     model.Num(asString(raw[4])),
			Volume:    model.Num(asString(raw[5])),
		})
	}
	return candles, nil
}

func asString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
