package ace

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

// ACE encodes order fields as numeric codes.
var orderStatuses = map[string]model.OrderStatus{
	"0": model.OrderStatusOpen,     // new
	"1": model.OrderStatusOpen,     // processing
	"2": model.OrderStatusOpen,     // partially filled
	"4": model.OrderStatusClosed,   // filled
	"5": model.OrderStatusCanceled, // canceled
	"6": model.OrderStatusRejected, // rejected
}

var sides = map[string]model.Side{
	"1": model.SideBuy,
	"2": model.SideSell,
}

var orderTypes = map[string]model.OrderType{
	"1": model.OrderTypeLimit,
	"2": model.OrderTypeMarket,
}

func sideCode(side model.Side) string {
	if side == model.SideSell {
		return "2"
	}
	return "1"
}

func typeCode(orderType model.OrderType) string {
	if orderType == model.OrderTypeMarket {
		return "2"
	}
	return "1"
}

type rawBalance struct {
	CurrencyName string `json:"currencyName"`
	Amount       string `json:"amount"`
	CashAmount   string `json:"cashAmount"`
	UncashAmount string `json:"uncashAmount"`
}

// FetchBalance returns the account snapshot keyed by currency code.
// cashAmount is spendable, uncashAmount is locked in open orders.
func (a *Ace) FetchBalance(ctx context.Context) (*model.Account, error) {
	data, err := a.request(ctx, apiPrivate, "POST", "/v2/coin/customerAccount", nil)
	if err != nil {
		return nil, err
	}
	var raws []rawBalance
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s customer account: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	account := &model.Account{
		Balances:  map[string]model.Balance{},
		Timestamp: ts,
		Datetime:  exchange.ISO8601(ts),
		Info:      raws,
	}
	for _, raw := range raws {
		account.Balances[raw.CurrencyName] = exchange.FinishBalance(model.Balance{
			Free:  model.Num(raw.CashAmount),
			Used:  model.Num(raw.UncashAmount),
			Total: model.Num(raw.Amount),
		})
	}
	a.state.SetBalance(account)
	return account, nil
}

type rawOrder struct {
	OrderNo     string      `json:"orderNo"`
	Symbol      string      `json:"symbol"`
	BuyOrSell   json.Number `json:"buyOrSell"`
	Type        json.Number `json:"type"`
	Price       string      `json:"price"`
	AvgPrice    string      `json:"avgPrice"`
	OrderQty    string      `json:"orderQty"`
	LeavesQty   string      `json:"leavesQty"`
	OrderStatus json.Number `json:"orderStatus"`
	Ts          int64       `json:"ts"`
}

// parseOrder maps the numeric codes onto the unified vocabulary. The raw
// status code is kept in NativeStatus; a partially filled order (code 2)
// stays open with filled derived from orderQty and leavesQty.
func (a *Ace) parseOrder(raw rawOrder, market *model.Market) *model.Order {
	symbol := raw.Symbol
	if market == nil {
		market = a.state.MarketByID(raw.Symbol)
	}
	if market != nil {
		symbol = market.Symbol
	}
	nativeStatus := raw.OrderStatus.String()
	status, ok := orderStatuses[nativeStatus]
	if !ok {
		status = model.OrderStatus(nativeStatus)
	}
	o := &model.Order{
		ID:           raw.OrderNo,
		Timestamp:    raw.Ts,
		Symbol:       symbol,
		Type:         orderTypes[raw.Type.String()],
		Side:         sides[raw.BuyOrSell.String()],
		Price:        model.Num(raw.Price),
		Average:      model.Num(raw.AvgPrice),
		Amount:       model.Num(raw.OrderQty),
		Remaining:    model.Num(raw.LeavesQty),
		Status:       status,
		NativeStatus: nativeStatus,
		Info:         raw,
	}
	return exchange.FinishOrder(o, market)
}

// CreateOrder places an order. The response carries only the order number,
// so the unified order is assembled from the request arguments and cached.
func (a *Ace) CreateOrder(ctx context.Context, symbol string, orderType model.OrderType, side model.Side, amount, price string, params exchange.Params) (*model.Order, error) {
	market, err := a.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	payload := exchange.Params{
		"symbol":    market.ID,
		"buyOrSell": sideCode(side),
		"type":      typeCode(orderType),
		"num":       amount,
	}
	if orderType == model.OrderTypeLimit {
		if price == "" {
			return nil, exchange.NewError(exchangeID, exchange.KindInvalidOrder, "limit order requires a price")
		}
		payload["price"] = price
	}
	data, err := a.request(ctx, apiPrivate, "POST", "/v2/order/order", payload.Merge(params))
	if err != nil {
		return nil, err
	}
	var orderNo string
	if err := json.Unmarshal(data, &orderNo); err != nil {
		return nil, fmt.Errorf("%s create order: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	order := &model.Order{
		ID:           orderNo,
		Timestamp:    ts,
		Datetime:     exchange.ISO8601(ts),
		Symbol:       market.Symbol,
		Type:         orderType,
		Side:         side,
		Price:        model.Num(price),
		Amount:       model.Num(amount),
		Status:       model.OrderStatusOpen,
		NativeStatus: "0",
	}
	a.state.CacheOrder(order)
	return order, nil
}

// CancelOrder cancels an open order; cancelling one already observed
// terminal locally is a benign no-op.
func (a *Ace) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (*model.Order, error) {
	_, err := a.request(ctx, apiPrivate, "POST", "/v2/order/cancel", exchange.Params{"orderNo": id}.Merge(params))
	if err != nil {
		if exchange.IsKind(err, exchange.KindOrderNotFound) {
			if cached := a.state.CachedOrder(id); cached != nil && cached.Status.IsTerminal() {
				return cached, nil
			}
		}
		return nil, err
	}
	order := &model.Order{ID: id, Symbol: symbol}
	if cached := a.state.CachedOrder(id); cached != nil {
		// Copy so order pointers handed out earlier keep their status.
		clone := *cached
		order = &clone
	}
	order.Status = model.OrderStatusCanceled
	order.NativeStatus = "5"
	a.state.CacheOrder(order)
	return order, nil
}

// FetchOrder fetches one order by number, merging fields the response
// omits from the local order cache.
func (a *Ace) FetchOrder(ctx context.Context, id, symbol string) (*model.Order, error) {
	if _, err := a.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	data, err := a.request(ctx, apiPrivate, "POST", "/v2/order/showOrderStatus", exchange.Params{"orderNo": id})
	if err != nil {
		return nil, err
	}
	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s order status: %w", exchangeID, err)
	}
	order := exchange.MergeCachedOrder(a.parseOrder(raw, nil), a.state.CachedOrder(id))
	a.state.CacheOrder(order)
	return order, nil
}

func (a *Ace) fetchOrders(ctx context.Context, symbol string, since int64, limit int, open bool) ([]model.Order, error) {
	var market *model.Market
	params := exchange.Params{}
	if symbol != "" {
		m, err := a.market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = m
		params["symbol"] = m.ID
	} else if _, err := a.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	if limit > 0 {
		params["size"] = strconv.Itoa(limit)
	}
	data, err := a.request(ctx, apiPrivate, "POST", "/v2/order/showOrderHistory", params)
	if err != nil {
		return nil, err
	}
	var raws []rawOrder
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s order history: %w", exchangeID, err)
	}
	orders := make([]model.Order, 0, len(raws))
	for _, raw := range raws {
		if since > 0 && raw.Ts < since {
			continue
		}
		order := a.parseOrder(raw, market)
		if open != (order.Status == model.OrderStatusOpen) {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// FetchOpenOrders lists orders still working.
func (a *Ace) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	return a.fetchOrders(ctx, symbol, since, limit, true)
}

// FetchClosedOrders lists orders that reached a terminal state.
func (a *Ace) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	return a.fetchOrders(ctx, symbol, since, limit, false)
}

type rawMyTrade struct {
	TradeNo         string      `json:"tradeNo"`
	OrderNo         string      `json:"orderNo"`
	Symbol          string      `json:"symbol"`
	BuyOrSell       json.Number `json:"buyOrSell"`
	Price           string      `json:"price"`
	Num             string      `json:"num"`
	Fee             string      `json:"fee"`
	FeeCurrencyName string      `json:"feeCurrencyName"`
	Ts              int64       `json:"ts"`
}

// FetchMyTrades lists the account's fills.
func (a *Ace) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	var market *model.Market
	params := exchange.Params{}
	if symbol != "" {
		m, err := a.market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = m
		params["symbol"] = m.ID
	} else if _, err := a.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	if limit > 0 {
		params["size"] = strconv.Itoa(limit)
	}
	data, err := a.request(ctx, apiPrivate, "POST", "/v2/order/showTradeList", params)
	if err != nil {
		return nil, err
	}
	var raws []rawMyTrade
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s trade list: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raws))
	for _, raw := range raws {
		if since > 0 && raw.Ts < since {
			continue
		}
		m := market
		if m == nil {
			m = a.state.MarketByID(raw.Symbol)
		}
		sym := raw.Symbol
		if m != nil {
			sym = m.Symbol
		}
		t := model.Trade{
			ID:        raw.TradeNo,
			OrderID:   raw.OrderNo,
			Timestamp: raw.Ts,
			Symbol:    sym,
			Side:      sides[raw.BuyOrSell.String()],
			Price:     model.Num(raw.Price),
			Amount:    model.Num(raw.Num),
			Info:      raw,
		}
		if raw.Fee != "" {
			t.Fee = &model.Fee{Cost: model.Num(raw.Fee), Currency: raw.FeeCurrencyName}
		}
		trades = append(trades, *exchange.FinishTrade(&t, m))
		if limit > 0 && len(trades) >= limit {
			break
		}
	}
	return trades, nil
}

// Withdraw is not offered by this venue's API.
func (a *Ace) Withdraw(ctx context.Context, code, amount, address, tag string, params exchange.Params) (*model.Transaction, error) {
	return nil, exchange.NotSupported(exchangeID, "withdraw")
}

// FetchDepositAddress is not offered by this venue's API.
func (a *Ace) FetchDepositAddress(ctx context.Context, code string) (*model.DepositAddress, error) {
	return nil, exchange.NotSupported(exchangeID, "fetchDepositAddress")
}
