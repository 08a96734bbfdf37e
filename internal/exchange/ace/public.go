package ace

import (
	"context"
	"encoding/json"
	"fmt"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

type rawPrice struct {
	LastPrice   string `json:"last_price"`
	BaseVolume  string `json:"base_volume"`
	QuoteVolume string `json:"quote_volume"`
	Ts          int64  `json:"ts"`
}

func (a *Ace) parseTicker(raw rawPrice, market *model.Market) *model.Ticker {
	t := &model.Ticker{
		Symbol:      market.Symbol,
		Timestamp:   raw.Ts,
		Last:        model.Num(raw.LastPrice),
		BaseVolume:  model.Num(raw.BaseVolume),
		QuoteVolume: model.Num(raw.QuoteVolume),
		Info:        raw,
	}
	return exchange.FinishTicker(t)
}

// fetchPrices returns the venue-wide price map keyed by native pair id.
func (a *Ace) fetchPrices(ctx context.Context) (map[string]rawPrice, error) {
	data, err := a.request(ctx, apiPublic, "GET", "/oapi/v2/list/tradePrice", nil)
	if err != nil {
		return nil, err
	}
	var raws map[string]rawPrice
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s trade prices: %w", exchangeID, err)
	}
	return raws, nil
}

// FetchTicker returns the latest price snapshot for one market. ACE only
// publishes a venue-wide price map, so one entry is picked out of it.
func (a *Ace) FetchTicker(ctx context.Context, symbol string) (*model.Ticker, error) {
	market, err := a.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	prices, err := a.fetchPrices(ctx)
	if err != nil {
		return nil, err
	}
	raw, ok := prices[market.ID]
	if !ok {
		return nil, exchange.NewError(exchangeID, exchange.KindBadSymbol, "no ticker for %s", symbol)
	}
	return a.parseTicker(raw, market), nil
}

// FetchTickers returns snapshots for the requested symbols, or for every
// known market when symbols is empty.
func (a *Ace) FetchTickers(ctx context.Context, symbols []string) (map[string]*model.Ticker, error) {
	if _, err := a.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	prices, err := a.fetchPrices(ctx)
	if err != nil {
		return nil, err
	}
	wanted := map[string]bool{}
	for _, s := range symbols {
		wanted[s] = true
	}
	out := map[string]*model.Ticker{}
	for id, raw := range prices {
		market := a.state.MarketByID(id)
		if market == nil {
			continue
		}
		if len(wanted) > 0 && !wanted[market.Symbol] {
			continue
		}
		out[market.Symbol] = a.parseTicker(raw, market)
	}
	return out, nil
}

// FetchOrderBook returns a depth snapshot, best levels first.
func (a *Ace) FetchOrderBook(ctx context.Context, symbol string, limit int) (*model.OrderBook, error) {
	market, err := a.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := a.request(ctx, apiPublic, "GET", "/oapi/v2/list/orderBooks", exchange.Params{"symbol": market.ID})
	if err != nil {
		return nil, err
	}
	var raw struct {
		MarketPair string `json:"market_pair"`
		Orderbook  struct {
			Ts   int64       `json:"ts"`
			Bids [][2]string `json:"bids"`
			Asks [][2]string `json:"asks"`
		} `json:"orderbook"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s order book: %w", exchangeID, err)
	}
	book := &model.OrderBook{
		Symbol:    market.Symbol,
		Timestamp: raw.Orderbook.Ts,
		Datetime:  exchange.ISO8601(raw.Orderbook.Ts),
	}
	for i, l := range raw.Orderbook.Bids {
		if limit > 0 && i >= limit {
			break
		}
		book.Bids = append(book.Bids, model.BookLevel{Price: model.Num(l[0]), Amount: model.Num(l[1])})
	}
	for i, l := range raw.Orderbook.Asks {
		if limit > 0 && i >= limit {
			break
		}
		book.Asks = append(book.Asks, model.BookLevel{Price: model.Num(l[0]), Amount: model.Num(l[1])})
	}
	return book, nil
}

type rawTrade struct {
	TradeNo string `json:"tradeNo"`
	Price   string `json:"price"`
	Num     string `json:"num"`
	Ts      int64  `json:"ts"`
}

// FetchTrades returns recent public trades. ACE omits the side and instead
// signs the price, a negative price meaning a sell; normalization derives
// the side and strips the sign.
func (a *Ace) FetchTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	market, err := a.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	data, err := a.request(ctx, apiPublic, "GET", "/oapi/v2/list/tradeList", exchange.Params{"symbol": market.ID})
	if err != nil {
		return nil, err
	}
	var raws []rawTrade
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s trade list: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raws))
	for _, raw := range raws {
		if since > 0 && raw.Ts < since {
			continue
		}
		t := model.Trade{
			ID:        raw.TradeNo,
			Timestamp: raw.Ts,
			Symbol:    market.Symbol,
			Price:     model.Num(raw.Price),
			Amount:    model.Num(raw.Num),
			Info:      raw,
		}
		trades = append(trades, *exchange.FinishTrade(&t, market))
		if limit > 0 && len(trades) >= limit {
			break
		}
	}
	return trades, nil
}

// FetchOHLCV is not offered by this venue's public API.
func (a *Ace) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int) ([]model.OHLCV, error) {
	return nil, exchange.NotSupported(exchangeID, "fetchOHLCV")
}
