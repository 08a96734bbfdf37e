package ace

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

type rawPair struct {
	Symbol         string `json:"symbol"`
	Base           string `json:"base"`
	Quote          string `json:"quote"`
	BasePrecision  int32  `json:"basePrecision"`
	QuotePrecision int32  `json:"quotePrecision"`
	MinBaseAmount  string `json:"minLimitBaseAmount"`
	MaxBaseAmount  string `json:"maxLimitBaseAmount"`
	Status         string `json:"status"`
}

// FetchMarkets loads the market pair catalog. A pair trades only while its
// status is "enable"; anything else is treated as inactive.
func (a *Ace) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	data, err := a.request(ctx, apiPublic, "GET", "/oapi/v2/list/marketPair", nil)
	if err != nil {
		return nil, err
	}
	var raws []rawPair
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s market pairs: %w", exchangeID, err)
	}
	markets := make([]model.Market, 0, len(raws))
	for _, p := range raws {
		active := strings.EqualFold(p.Status, "enable")
		markets = append(markets, model.Market{
			ID:      p.Symbol,
			Symbol:  p.Base + "/" + p.Quote,
			Base:    p.Base,
			Quote:   p.Quote,
			BaseID:  p.Base,
			QuoteID: p.Quote,
			Active:  &active,
			Precision: model.Precision{
				Amount: p.BasePrecision,
				Price:  p.QuotePrecision,
			},
			Limits: model.Limits{
				Amount: model.MinMax{Min: model.Num(p.MinBaseAmount), Max: model.Num(p.MaxBaseAmount)},
			},
			Info: p,
		})
	}
	return markets, nil
}

// LoadMarkets memoizes the market catalog for the session.
func (a *Ace) LoadMarkets(ctx context.Context) (map[string]*model.Market, error) {
	return a.state.EnsureMarkets(ctx, a.FetchMarkets)
}

func (a *Ace) market(ctx context.Context, symbol string) (*model.Market, error) {
	if _, err := a.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m := a.state.Market(symbol)
	if m == nil {
		return nil, exchange.NewError(exchangeID, exchange.KindBadSymbol, "unknown symbol %s", symbol)
	}
	return m, nil
}
