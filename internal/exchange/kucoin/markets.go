package kucoin

import (
	"context"
	"encoding/json"
	"fmt"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
	"cexlink/internal/precise"
)

type rawSymbol struct {
	Symbol         string `json:"symbol"`
	BaseCurrency   string `json:"baseCurrency"`
	QuoteCurrency  string `json:"quoteCurrency"`
	BaseIncrement  string `json:"baseIncrement"`
	PriceIncrement string `json:"priceIncrement"`
	BaseMinSize    string `json:"baseMinSize"`
	BaseMaxSize    string `json:"baseMaxSize"`
	MinFunds       string `json:"minFunds"`
	EnableTrading  bool   `json:"enableTrading"`
}

// FetchMarkets loads the symbol catalog. KuCoin publishes granularity as
// tick sizes (baseIncrement/priceIncrement), converted here to decimal
// places.
func (k *Kucoin) FetchMarkets(ctx context.Context) ([]model.Market, error) {
	data, err := k.request(ctx, apiPublic, "GET", "/api/v2/symbols", nil, "")
	if err != nil {
		return nil, err
	}
	var raws []rawSymbol
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s symbols: %w", exchangeID, err)
	}
	markets := make([]model.Market, 0, len(raws))
	for _, s := range raws {
		active := s.EnableTrading
		markets = append(markets, model.Market{
			ID:      s.Symbol,
			Symbol:  s.BaseCurrency + "/" + s.QuoteCurrency,
			Base:    s.BaseCurrency,
			Quote:   s.QuoteCurrency,
			BaseID:  s.BaseCurrency,
			QuoteID: s.QuoteCurrency,
			Active:  &active,
			Precision: model.Precision{
				Amount: precise.PrecisionFromTickSize(s.BaseIncrement),
				Price:  precise.PrecisionFromTickSize(s.PriceIncrement),
			},
			Limits: model.Limits{
				Amount: model.MinMax{Min: model.Num(s.BaseMinSize), Max: model.Num(s.BaseMaxSize)},
				Cost:   model.MinMax{Min: model.Num(s.MinFunds)},
			},
			Info: s,
		})
	}
	return markets, nil
}

// LoadMarkets memoizes the market catalog for the session.
func (k *Kucoin) LoadMarkets(ctx context.Context) (map[string]*model.Market, error) {
	return k.state.EnsureMarkets(ctx, k.FetchMarkets)
}

func (k *Kucoin) market(ctx context.Context, symbol string) (*model.Market, error) {
	if _, err := k.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	m := k.state.Market(symbol)
	if m == nil {
		return nil, exchange.NewError(exchangeID, exchange.KindBadSymbol, "unknown symbol %s", symbol)
	}
	return m, nil
}

type rawCurrency struct {
	Currency          string `json:"currency"`
	Name              string `json:"name"`
	FullName          string `json:"fullName"`
	Precision         int32  `json:"precision"`
	IsDepositEnabled  bool   `json:"isDepositEnabled"`
	IsWithdrawEnabled bool   `json:"isWithdrawEnabled"`
	WithdrawalMinSize string `json:"withdrawalMinSize"`
	WithdrawalMinFee  string `json:"withdrawalMinFee"`
}

// FetchCurrencies loads the static currency catalog, including withdrawal
// minimums and fees.
func (k *Kucoin) FetchCurrencies(ctx context.Context) (map[string]model.Currency, error) {
	data, err := k.request(ctx, apiPublic, "GET", "/api/v3/currencies", nil, "")
	if err != nil {
		return nil, err
	}
	var raws []rawCurrency
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s currencies: %w", exchangeID, err)
	}
	out := make(map[string]model.Currency, len(raws))
	for _, c := range raws {
		active := c.IsDepositEnabled && c.IsWithdrawEnabled
		out[c.Currency] = model.Currency{
			ID:        c.Currency,
			Code:      c.Currency,
			Name:      c.FullName,
			Active:    &active,
			Precision: c.Precision,
			Fee:       model.Num(c.WithdrawalMinFee),
			Limits: model.CurrencyLimits{
				Withdraw: model.MinMax{Min: model.Num(c.WithdrawalMinSize)},
			},
			Info: c,
		}
	}
	return out, nil
}
