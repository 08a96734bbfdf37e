package binance

import (
	"context"
	"encoding/json"
	"fmt"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
	"cexlink/internal/precise"
)

type rawFilter struct {
	FilterType  string `json:"filterType"`
	MinPrice    string `json:"minPrice"`
	MaxPrice    string `json:"maxPrice"`
	TickSize    string `json:"tickSize"`
	MinQty      string `json:"minQty"`
	MaxQty      string `json:"maxQty"`
	StepSize    string `json:"stepSize"`
	MinNotional string `json:"minNotional"`
}

type rawSymbol struct {
	Symbol     string      `json:"symbol"`
	Status     string      `json:"status"`
	BaseAsset  string      `json:"baseAsset"`
	QuoteAsset string      `json:"quoteAsset"`
	Filters    []rawFilter `json:"filters"`
}

type rawExchangeInfo struct {
	Symbols []rawSymbol `json:"symbols"`
}

// FetchMarkets loads the tradable instrument catalog from exchangeInfo.
// Price and amount precision come from the PRICE_FILTER tick size and the
// LOT_SIZE step size.
func (b *Binance) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	body, err := b.request(ctx, apiPublic, "GET", "/api/v3/exchangeInfo", nil)
	if err != nil {
		return nil, err
	}
	var info rawExchangeInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%s exchangeInfo: %w", exchangeID, err)
	}

	markets := make([]model.Market, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		active := s.Status == "TRADING"
		m := model.Market{
			ID:      s.Symbol,
			Symbol:  s.BaseAsset + "/" + s.QuoteAsset,
			Base:    s.BaseAsset,
			Quote:   s.QuoteAsset,
			BaseID:  s.BaseAsset,
			QuoteID: s.QuoteAsset,
			Active:  &active,
			Info:    s,
		}
		for _, f := range s.Filters {
			switch f.FilterType {
			case "PRICE_FILTER":
				m.Precision.Price = precise.PrecisionFromTickSize(f.TickSize)
				m.Limits.Price.Min = model.Num(f.MinPrice)
				m.Limits.Price.Max = model.Num(f.MaxPrice)
			case "LOT_SIZE":
				m.Precision.Amount = precise.PrecisionFromTickSize(f.StepSize)
				m.Limits.Amount.Min = model.Num(f.MinQty)
				m.Limits.Amount.Max = model.Num(f.MaxQty)
			case "MIN_NOTIONAL", "NOTIONAL":
				m.Limits.Cost.Min = model.Num(f.MinNotional)
			}
		}
		markets = append(markets, m)
	}
	return markets, nil
}

// LoadMarkets memoizes the market catalog for the session.
func (b *Binance) LoadMarkets(ctx context.Context) (map[string]*model.Market, error) {
	return b.state.EnsureMarkets(ctx, b.FetchMarkets)
}

// market resolves a unified symbol, loading the catalog first if needed.
func (b *Binance) market(ctx context.Context, symbol string) (*model.Market, error) {
	if _, err := b.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m := b.state.Market(symbol)
	if m == nil {
		return nil, exchange.NewError(exchangeID, exchange.KindBadSymbol, "unknown symbol %s", symbol)
	}
	return m, nil
}
