package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"cexlink/internal/exchange"
	"cexlink/internal/model"
)

var orderStatuses = map[string]model.OrderStatus{
	"NEW":              model.OrderStatusOpen,
	"PARTIALLY_FILLED": model.OrderStatusOpen,
	"FILLED":           model.OrderStatusClosed,
	"CANCELED":         model.OrderStatusCanceled,
	"PENDING_CANCEL":   model.OrderStatusOpen,
	"REJECTED":         model.OrderStatusRejected,
	"EXPIRED":          model.OrderStatusExpired,
	"EXPIRED_IN_MATCH": model.OrderStatusExpired,
}

func parseOrderStatus(native string) model.OrderStatus {
	if unified, ok := orderStatuses[native]; ok {
		return unified
	}
	// Unmapped codes pass through so callers can detect them.
	return model.OrderStatus(native)
}

type rawOrder struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	Type                string `json:"type"`
	Side                string `json:"side"`
	StopPrice           string `json:"stopPrice"`
	Time                int64  `json:"time"`
	TransactTime        int64  `json:"transactTime"`
	UpdateTime          int64  `json:"updateTime"`
}

func (b *Binance) parseOrder(raw rawOrder, market *model.Market) *model.Order {
	symbol := raw.Symbol
	if market == nil {
		market = b.state.MarketByID(raw.Symbol)
	}
	if market != nil {
		symbol = market.Symbol
	}
	ts := raw.Time
	if ts == 0 {
		ts = raw.TransactTime
	}
	o := &model.Order{
		ID:                 strconv.FormatInt(raw.OrderID, 10),
		ClientOrderID:      raw.ClientOrderID,
		Timestamp:          ts,
		LastTradeTimestamp: raw.UpdateTime,
		Symbol:             symbol,
		Type:               model.OrderType(strings.ToLower(raw.Type)),
		Side:               model.Side(strings.ToLower(raw.Side)),
		Price:              model.Num(raw.Price),
		StopPrice:          model.Num(raw.StopPrice),
		Amount:             model.Num(raw.OrigQty),
		Filled:             model.Num(raw.ExecutedQty),
		Cost:               model.Num(raw.CummulativeQuoteQty),
		Status:             parseOrderStatus(raw.Status),
		NativeStatus:       raw.Status,
		Info:               raw,
	}
	return exchange.FinishOrder(o, market)
}

// CreateOrder places an order. A client order id is generated when the
// caller did not pass one through params.
func (b *Binance) CreateOrder(ctx context.Context, symbol string, orderType model.OrderType, side model.Side, amount, price string, params exchange.Params) (*model.Order, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request := exchange.Params{
		"symbol":   market.ID,
		"side":     strings.ToUpper(string(side)),
		"type":     strings.ToUpper(string(orderType)),
		"quantity": amount,
	}
	if orderType == model.OrderTypeLimit {
		if price == "" {
			return nil, exchange.NewError(exchangeID, exchange.KindInvalidOrder, "limit order requires a price")
		}
		request["price"] = price
		request["timeInForce"] = "GTC"
	}
	if _, ok := params["newClientOrderId"]; !ok {
		request["newClientOrderId"] = "x-" + uuid.NewString()
	}
	request = request.Merge(params)

	body, err := b.request(ctx, apiPrivate, "POST", "/api/v3/order", request)
	if err != nil {
		return nil, err
	}
	var raw rawOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s create order: %w", exchangeID, err)
	}
	order := b.parseOrder(raw, market)
	b.state.CacheOrder(order)
	return order, nil
}

// CancelOrder cancels an open order. Cancelling an order already observed
// terminal locally is treated as a benign no-op rather than an error.
func (b *Binance) CancelOrder(ctx context.Context, id, symbol string, params exchange.Params) (*model.Order, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	request := exchange.Params{"symbol": market.ID, "orderId": id}.Merge(params)
	body, err := b.request(ctx, apiPrivate, "DELETE", "/api/v3/order", request)
	if err != nil {
		if exchange.IsKind(err, exchange.KindOrderNotFound) {
			if cached := b.state.CachedOrder(id); cached != nil && cached.Status.IsTerminal() {
				return cached, nil
			}
		}
		return nil, err
	}
	var raw rawOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s cancel order: %w", exchangeID, err)
	}
	order := b.parseOrder(raw, market)
	b.state.CacheOrder(order)
	return order, nil
}

// FetchOrder fetches one order by id; fields the response omits are merged
// from the local order cache.
func (b *Binance) FetchOrder(ctx context.Context, id, symbol string) (*model.Order, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	body, err := b.request(ctx, apiPrivate, "GET", "/api/v3/order", exchange.Params{"symbol": market.ID, "orderId": id})
	if err != nil {
		return nil, err
	}
	var raw rawOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s fetch order: %w", exchangeID, err)
	}
	order := exchange.MergeCachedOrder(b.parseOrder(raw, market), b.state.CachedOrder(id))
	b.state.CacheOrder(order)
	return order, nil
}

func (b *Binance) fetchOrders(ctx context.Context, path, symbol string, since int64, limit int) ([]model.Order, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	params := exchange.Params{"symbol": market.ID}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := b.request(ctx, apiPrivate, "GET", path, params)
	if err != nil {
		return nil, err
	}
	var raws []rawOrder
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%s fetch orders: %w", exchangeID, err)
	}
	orders := make([]model.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, *b.parseOrder(raw, market))
	}
	return orders, nil
}

// FetchOpenOrders lists currently open orders for a market.
func (b *Binance) FetchOpenOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	return b.fetchOrders(ctx, "/api/v3/openOrders", symbol, since, limit)
}

// FetchClosedOrders lists terminal orders for a market.
func (b *Binance) FetchClosedOrders(ctx context.Context, symbol string, since int64, limit int) ([]model.Order, error) {
	all, err := b.fetchOrders(ctx, "/api/v3/allOrders", symbol, since, limit)
	if err != nil {
		return nil, err
	}
	closed := make([]model.Order, 0, len(all))
	for _, o := range all {
		if o.Status.IsTerminal() {
			closed = append(closed, o)
		}
	}
	return closed, nil
}

type rawMyTrade struct {
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	QuoteQty        string `json:"quoteQty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
	IsMaker         bool   `json:"isMaker"`
}

// FetchMyTrades lists the account's fills for a market.
func (b *Binance) FetchMyTrades(ctx context.Context, symbol string, since int64, limit int) ([]model.Trade, error) {
	market, err := b.market(ctx, symbol)
	if err != nil {
		return nil, err
	}
	params := exchange.Params{"symbol": market.ID}
	if since > 0 {
		params["startTime"] = strconv.FormatInt(since, 10)
	}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	body, err := b.request(ctx, apiPrivate, "GET", "/api/v3/myTrades", params)
	if err != nil {
		return nil, err
	}
	var raws []rawMyTrade
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("%s my trades: %w", exchangeID, err)
	}
	trades := make([]model.Trade, 0, len(raws))
	for _, raw := range raws {
		side := model.SideSell
		if raw.IsBuyer {
			side = model.SideBuy
		}
		takerOrMaker := model.Taker
		if raw.IsMaker {
			takerOrMaker = model.Maker
		}
		t := model.Trade{
			ID:           strconv.FormatInt(raw.ID, 10),
			OrderID:      strconv.FormatInt(raw.OrderID, 10),
			Timestamp:    raw.Time,
			Symbol:       market.Symbol,
			Side:         side,
			TakerOrMaker: takerOrMaker,
			Price:        model.Num(raw.Price),
			Amount:       model.Num(raw.Qty),
			Cost:         model.Num(raw.QuoteQty),
			Fee:          &model.Fee{Cost: model.Num(raw.Commission), Currency: raw.CommissionAsset},
			Info:         raw,
		}
		trades = append(trades, *exchange.FinishTrade(&t, market))
	}
	return trades, nil
}

type rawBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

// FetchBalance returns the account snapshot keyed by currency code.
func (b *Binance) FetchBalance(ctx context.Context) (*model.Account, error) {
	body, err := b.request(ctx, apiPrivate, "GET", "/api/v3/account", nil)
	if err != nil {
		return nil, err
	}
	var raw struct {
		UpdateTime int64        `json:"updateTime"`
		Balances   []rawBalance `json:"balances"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s account: %w", exchangeID, err)
	}
	account := &model.Account{
		Balances:  map[string]model.Balance{},
		Timestamp: raw.UpdateTime,
		Datetime:  exchange.ISO8601(raw.UpdateTime),
		Info:      raw,
	}
	for _, entry := range raw.Balances {
		account.Balances[entry.Asset] = exchange.FinishBalance(model.Balance{
			Free: model.Num(entry.Free),
			Used: model.Num(entry.Locked),
		})
	}
	b.state.SetBalance(account)
	return account, nil
}

// Withdraw requests a withdrawal and returns the pending transaction.
func (b *Binance) Withdraw(ctx context.Context, code, amount, address, tag string, params exchange.Params) (*model.Transaction, error) {
	request := exchange.Params{
		"coin":    code,
		"amount":  amount,
		"address": address,
	}
	if tag != "" {
		request["addressTag"] = tag
	}
	request = request.Merge(params)
	body, err := b.request(ctx, apiPrivate, "POST", "/sapi/v1/capital/withdraw/apply", request)
	if err != nil {
		return nil, err
	}
	var raw struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s withdraw: %w", exchangeID, err)
	}
	ts := exchange.Milliseconds()
	return &model.Transaction{
		ID:        raw.ID,
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
func (b *Binance) FetchDepositAddress(ctx context.Context, code string) (*model.DepositAddress, error) {
	body, err := b.request(ctx, apiPrivate, "GET", "/sapi/v1/capital/deposit/address", exchange.Params{"coin": code})
	if err != nil {
		return nil, err
	}
	var raw struct {
		Address string `json:"address"`
		Coin    string `json:"coin"`
		Tag     string `json:"tag"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s deposit address: %w", exchangeID, err)
	}
	return &model.DepositAddress{
		Currency: code,
		Address:  raw.Address,
		Tag:      raw.Tag,
		Info:     raw,
	}, nil
}
