package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

type rawAccount struct {
	Currency  string `json:"currency"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Available string `json:"available"`
	Holds     string `json:"holds"`
}

// FetchBalance returns the trade-account snapshot keyed by currency code.
// balance == available + holds on the wire; the invariant is preserved by
// decimal addition, never floats.
func (k *Kucoin) FetchBalance(ctx context.Context) (*model.Account, error) {
	data, err := k.request(ctx, apiPrivate, "GET", "/api/v1/accounts", exchange.Params{"type": "trade"}, "")
	if err != nil {
		return nil, err
	}
	var raws []rawAccount
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%s accounts: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	account := &model.Account{
		Balances:  map[string]model.Balance{},
		Timestamp: ts,
		Datetime:  exchange.ISO8601(ts),
		Info:      raws,
	}
	for _, raw := range raws {
		if raw.Type != "trade" {
			continue
		}
		account.Balances[raw.Currency] = exchange.FinishBalance(model.Balance{
			Free:  model.Num(raw.Available),
			Used:  model.Num(raw.Holds),
			Total: model.Num(raw.Balance),
		})
	}
	k.state.SetBalance(account)
	return account, nil
}

type rawOrder struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Type        string `json:"type"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	DealFunds   string `json:"dealFunds"`
	DealSize    string `json:"dealSize"`
	Fee         string `json:"fee"`
	FeeCurrency string `json:"feeCurrency"`
	StopPrice   string `json:"stopPrice"`
	ClientOid   string `json:"clientOid"`
	IsActive    bool   `json:"isActive"`
	CancelExist bool   `json:"cancelExist"`
	CreatedAt   int64  `json:"createdAt"`
}

// parseOrder maps the native isActive/cancelExist pair onto the unified
// status vocabulary: active orders are open, cancelled ones canceled,
// everything else done and therefore closed.
func (k *Kucoin) parseOrder(raw rawOrder, market *model.Market) *model.Order {
	symbol := raw.Symbol
	if market == nil {
		market = k.state.MarketByID(raw.Symbol)
	}
	if market != nil {
		symbol = market.Symbol
	}
	status := model.OrderStatusClosed
	nativeStatus := "done"
	switch {
	case raw.IsActive:
		status = model.OrderStatusOpen
		nativeStatus = "active"
	case raw.CancelExist:
		status = model.OrderStatusCanceled
		nativeStatus = "cancelled"
	}
	o := &model.Order{
		ID:            raw.ID,
		ClientOrderID: raw.ClientOid,
		Timestamp:     raw.CreatedAt,
		Symbol:        symbol,
		Type:          model.OrderType(raw.Type),
		Side:          model.Side(raw.Side),
		Price:         model.Num(raw.Price),
		StopPrice:     model.Num(raw.StopPrice),
		Amount:        model.Num(raw.Size),
		Filled:        model.Num(raw.DealSize),
		Cost:          model.Num(raw.DealFunds),
		Status:        status,
		NativeStatus:  nativeStatus,
		Info:          raw,
	}
	if o.Fee == nil && raw.Fee != "" {
		o.Fee = &model.Fee{Cost: model.Num(raw.Fee), Currency: raw.FeeCurrency}
	}
	return exchange.FinishOrder(o, market)
}

// CreateOrder places an order. The create response carries only the order
// id, so the full unified order is assembled from the request arguments
// and cached for later merges.
func (k *Kucoin) CreateOrder(ctx context.Context, symbol string, orderType model.OrderType, side model.Side, amount, price string, params exchange.Params) (*model.Order, error) {
	market, err := k.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	clientOid := params["clientOid"]
	if clientOid == "" {
		clientOid = uuid.NewString()
	}
	payload := map[string]string{
		"clientOid": clientOid,
		"symbol":    market.ID,
		"type":      string(orderType),
		"side":      string(side),
		"size":      amount,
	}
	if orderType == model.OrderTypeLimit {
		if price == "" {
			return nil, exchange.NewError(exchangeID, exchange.KindInvalidOrder, "limit order requires a price")
		}
		payload["price"] = price
	}
	for key, value := range params {
		if key != "clientOid" {
			payload[key] = value
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s create order payload: %w", exchangeID, err)
	}

	data, err := k.request(ctx, apiPrivate, "POST", "/api/v1/orders", nil, string(body))
	if err != nil {
		return nil, err
	}
	var raw struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s create order: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	order := &model.Order{
		ID:            raw.OrderID,
		ClientOrderID: clientOid,
		Timestamp:     ts,
		Datetime:      exchange.ISO8601(ts),
		Symbol:        market.Symbol,
		Type:          orderType,
		Side:          side,
		Price:         model.Num(price),
		Amount:        model.Num(amount),
		Status:        model.OrderStatusOpen,
		NativeStatus:  "active",
	}
	k.state.CacheOrder(order)
	return order, nil
}

// CancelOrder cancels an open order; cancelling one already observed
// terminal locally is a benign no-op.
func (k *Kucoin) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (*model.Order, error) {
	_, err := k.request(ctx, apiPrivate, "DELETE", "/api/v1/orders/"+id, params, "")
	if err != nil {
		if exchange.IsKind(err, exchange.KindOrderNotFound) {
			if cached := k.state.CachedOrder(id); cached != nil && cached.Status.IsTerminal() {
				return cached, nil
			}
		}
		return nil, err
	}
	order := &model.Order{ID: id, Symbol: symbol}
	if cached := k.state.CachedOrder(id); cached != nil {
		// Copy so order pointers handed out earlier keep their status.
		clone := *cached
		order = &clone
	}
	order.Status = model.OrderStatusCanceled
	order.NativeStatus = "cancelled"
	k.state.CacheOrder(order)
	return order, nil
}

// FetchOrder fetches one order by id, merging fields the response omits
// from the local order cache.
func (k *Kucoin) FetchOrder(ctx context.Context, id, symbol string) (*model.Order, error) {
	if _, err := k.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	data, err := k.request(ctx, apiPrivate, "GET", "/api/v1/orders/"+id, nil, "")
	if err != nil {
		return nil, err
	}
	var raw rawOrder
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s fetch order: %w", exchangeID, err)
	}
	order := exchange.MergeCachedOrder(k.parseOrder(raw, nil), k.state.CachedOrder(id))
	k.state.CacheOrder(order)
	return order, nil
}

func (k *Kucoin) fetchOrders(ctx context.Context, status, symbol string, since int64, limit int) ([]model.Order, error) {
	var market *model.Market
	params := exchange.Params{"status": status}
	if symbol != "" {
		m, err := k.market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = m
		params["symbol"] = m.ID
	} else if _, err := k.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	if since > 0 {
		params["startAt"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["pageSize"] = strconv.Itoa(limit)
	}
	data, err := k.request(ctx, apiPrivate, "GET", "/api/v1/orders", params, "")
	if err != nil {
		return nil, err
	}
	var raw struct {
		Items []rawOrder `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s fetch orders: %w", exchangeID, err)
	}
	orders := make([]model.Order, 0, len(raw.Items))
	for _, item := range raw.Items {
		orders = append(orders, *k.parseOrder(item, market))
	}
	return orders, nil
}

// FetchOpenOrders lists active orders.
func (k *Kucoin) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	return k.fetchOrders(ctx, "active", symbol, since, limit)
}

// FetchClosedOrders lists done orders.
func (k *Kucoin) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	return k.fetchOrders(ctx, "done", symbol, since, limit)
}

type rawFill struct {
	Symbol      string `json:"symbol"`
	TradeID     string `json:"tradeId"`
	OrderID     string `json:"orderId"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Size        string `json:"size"`
	Funds       string `json:"funds"`
	Fee         string `json:"fee"`
	FeeCurrency string `json:"feeCurrency"`
	Liquidity   string `json:"liquidity"`
	CreatedAt   int64  `json:"createdAt"`
}

// FetchMyTrades lists the account's fills.
func (k *Kucoin) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	var market *model.Market
	params := exchange.Params{}
	if symbol != "" {
		m, err := k.market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = m
		params["symbol"] = m.ID
	} else if _, err := k.LoadMarkets(ctx); err != nil {
		return nil, err
	}
	if since > 0 {
		params["startAt"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["pageSize"] = strconv.Itoa(limit)
	}
	data, err := k.request(ctx, apiPrivate, "GET", "/api/v1/fills", params, "")
	if err != nil {
		return nil, err
	}
	var raw struct {
		Items []rawFill `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s fills: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raw.Items))
	for _, item := range raw.Items {
		m := market
		if m == nil {
			m = k.state.MarketByID(item.Symbol)
		}
		sym := item.Symbol
		if m != nil {
			sym = m.Symbol
		}
		t := model.Trade{
			ID:           item.TradeID,
			OrderID:      item.OrderID,
			Timestamp:    item.CreatedAt,
			Symbol:       sym,
			Side:         model.Side(item.Side),
			TakerOrMaker: model.TakerOrMaker(item.Liquidity),
			Price:        model.Num(item.Price),
			Amount:       model.Num(item.Size),
			Cost:         model.Num(item.Funds),
			Fee:          &model.Fee{Cost: model.Num(item.Fee), Currency: item.FeeCurrency},
			Info:         item,
		}
		trades = append(trades, *exchange.FinishTrade(&t, m))
	}
	return trades, nil
}

// Withdraw requests a withdrawal and returns the pending transaction.
func (k *Kucoin) Withdraw(ctx context.Context, code, amount, address, tag string, params exchange.Params) (*model.Transaction, error) {
	payload := map[string]string{
		"currency": code,
		"address":  address,
		"amount":   amount,
	}
	if tag != "" {
		payload["memo"] = tag
	}
	for key, value := range params {
		payload[key] = value
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s withdraw payload: %w", exchangeID, err)
	}
	data, err := k.request(ctx, apiPrivate, "POST", "/api/v1/withdrawals", nil, string(body))
	if err != nil {
		return nil, err
	}
	var raw struct {
		WithdrawalID string `json:"withdrawalId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s withdraw: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	return &model.Transaction{
		ID:        raw.WithdrawalID,
		Timestamp: ts,
		Datetime:  exchange.ISO8601(ts),
		Currency:  code,
		Amount:    model.Num(amount),
		Address:   address,
		Tag:       tag,
		Type:      model.TxWithdrawal,
		Status:    model.TxPending,
		Info:      raw,
	}, nil
}

// FetchDepositAddress returns the funding address for a currency.
func (k *Kucoin) FetchDepositAddress(ctx context.Context, code string) (*model.DepositAddress, error) {
	data, err := k.request(ctx, apiPrivate, "GET", "/api/v1/deposit-addresses", exchange.Params{"currency": code}, "")
	if err != nil {
		return nil, err
	}
	var raw struct {
		Address string `json:"address"`
		Memo    string `json:"memo"`
		Chain   string `json:"chain"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s deposit address: %w", exchangeID, err)
	}
	return &model.DepositAddress{
		Currency: code,
		Address:  raw.Address,
		Tag:      raw.Memo,
		Network:  raw.Chain,
		Info:     raw,
	}, nil
}
