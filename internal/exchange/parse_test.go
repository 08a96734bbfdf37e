package exchange

import (
	"testing"

	"cexlink/internal/model"
)

func TestFinishTickerDerivations(t *testing.T) {
	ticker := FinishTicker(&model.Ticker{
		Symbol:    "BTC/USDT",
		Timestamp: 1504541580000,
		Open:      model.Num("100"),
		Last:      model.Num("110"),
	})
	if ticker.Close == nil || ticker.Close.String() != "110" {
		t.Errorf("close = %v, want 110", ticker.Close)
	}
	if ticker.Change == nil || ticker.Change.String() != "10" {
		t.Errorf("change = %v, want 10", ticker.Change)
	}
	if ticker.Percentage == nil || ticker.Percentage.String() != "10" {
		t.Errorf("percentage = %v, want 10", ticker.Percentage)
	}
	if ticker.Average == nil || ticker.Average.String() != "105" {
		t.Errorf("average = %v, want 105", ticker.Average)
	}
	if ticker.Datetime != "2017-09-04T16:13:00.000Z" {
		t.Errorf("datetime = %q", ticker.Datetime)
	}
}

func TestFinishTickerKeepsSupplied(t *testing.T) {
	ticker := FinishTicker(&model.Ticker{
		Open:       model.Num("100"),
		Close:      model.Num("110"),
		Change:     model.Num("9.5"),
		Percentage: model.Num("9.5"),
	})
	if ticker.Change.String() != "9.5" {
		t.Errorf("venue-supplied change was overwritten: %v", ticker.Change)
	}
	if ticker.Last == nil || ticker.Last.String() != "110" {
		t.Errorf("last = %v, want close mirrored", ticker.Last)
	}
}

func TestFinishTickerZeroOpen(t *testing.T) {
	ticker := FinishTicker(&model.Ticker{
		Open:  model.Num("0"),
		Close: model.Num("5"),
	})
	if ticker.Percentage != nil {
		t.Errorf("percentage with zero open = %v, want nil", ticker.Percentage)
	}
}

func TestFinishOrderDerivesFilled(t *testing.T) {
	market := &model.Market{Precision: model.Precision{Price: 2}}
	order := FinishOrder(&model.Order{
		Amount:    model.Num("0.02"),
		Remaining: model.Num("0.0052"),
		Average:   model.Num("11881.06"),
		Timestamp: 1504541580000,
	}, market)
	if order.Filled == nil || order.Filled.String() != "0.0148" {
		t.Errorf("filled = %v, want 0.0148", order.Filled)
	}
	if order.Cost == nil || order.Cost.String() != "175.84" {
		t.Errorf("cost = %v, want 175.84", order.Cost)
	}
	if order.Datetime == "" {
		t.Error("datetime not filled")
	}
}

func TestFinishOrderDerivesRemaining(t *testing.T) {
	order := FinishOrder(&model.Order{
		Amount: model.Num("1"),
		Filled: model.Num("0.25"),
	}, nil)
	if order.Remaining == nil || order.Remaining.String() != "0.75" {
		t.Errorf("remaining = %v, want 0.75", order.Remaining)
	}
}

func TestFinishOrderDerivesAmount(t *testing.T) {
	order := FinishOrder(&model.Order{
		Filled:    model.Num("0.25"),
		Remaining: model.Num("0.75"),
	}, nil)
	if order.Amount == nil || order.Amount.String() != "1" {
		t.Errorf("amount = %v, want 1", order.Amount)
	}
}

func TestFinishTradeSignedPrice(t *testing.T) {
	market := &model.Market{Precision: model.Precision{Price: 2}}
	trade := FinishTrade(&model.Trade{
		Price:     model.Num("-5"),
		Amount:    model.Num("2"),
		Timestamp: 1504541580000,
	}, market)
	if trade.Side != model.SideSell {
		t.Errorf("side = %s, want sell", trade.Side)
	}
	if trade.Price.String() != "5" {
		t.Errorf("price = %v, want 5", trade.Price)
	}
	if trade.Cost == nil || trade.Cost.String() != "10" {
		t.Errorf("cost = %v, want 10", trade.Cost)
	}
}

func TestFinishTradeSignedAmount(t *testing.T) {
	trade := FinishTrade(&model.Trade{
		Price:  model.Num("5"),
		Amount: model.Num("-2"),
	}, nil)
	if trade.Side != model.SideSell {
		t.Errorf("side = %s, want sell", trade.Side)
	}
	if trade.Amount.String() != "2" {
		t.Errorf("amount = %v, want 2", trade.Amount)
	}
}

func TestFinishTradeUnsignedIsBuy(t *testing.T) {
	trade := FinishTrade(&model.Trade{
		Price:  model.Num("5"),
		Amount: model.Num("2"),
	}, nil)
	if trade.Side != model.SideBuy {
		t.Errorf("side = %s, want buy", trade.Side)
	}
}

func TestFinishTradeKeepsVenueSide(t *testing.T) {
	trade := FinishTrade(&model.Trade{
		Side:   model.SideBuy,
		Price:  model.Num("-5"),
		Amount: model.Num("2"),
	}, nil)
	if trade.Side != model.SideBuy {
		t.Errorf("venue-supplied side was overwritten: %s", trade.Side)
	}
}

func TestFinishBalance(t *testing.T) {
	b := FinishBalance(model.Balance{
		Free: model.Num("0.1"),
		Used: model.Num("0.2"),
	})
	if b.Total == nil || b.Total.String() != "0.3" {
		t.Errorf("total = %v, want 0.3", b.Total)
	}

	b = FinishBalance(model.Balance{
		Total: model.Num("1"),
		Used:  model.Num("0.25"),
	})
	if b.Free == nil || b.Free.String() != "0.75" {
		t.Errorf("free = %v, want 0.75", b.Free)
	}
}

func TestMergeCachedOrder(t *testing.T) {
	cached := &model.Order{
		ID:            "1",
		ClientOrderID: "client-1",
		Symbol:        "BTC/USDT",
		Type:          model.OrderTypeLimit,
		Side:          model.SideBuy,
		Price:         model.Num("100"),
		Amount:        model.Num("1"),
		Status:        model.OrderStatusOpen,
	}
	fresh := MergeCachedOrder(&model.Order{ID: "1", Status: model.OrderStatusClosed}, cached)
	if fresh.Symbol != "BTC/USDT" || fresh.Side != model.SideBuy || fresh.ClientOrderID != "client-1" {
		t.Errorf("omitted fields not carried forward: %+v", fresh)
	}
	if fresh.Amount == nil || fresh.Amount.String() != "1" {
		t.Errorf("amount = %v, want 1", fresh.Amount)
	}
	if fresh.Status != model.OrderStatusClosed {
		t.Errorf("status = %s, want closed", fresh.Status)
	}
}

func TestMergeCachedOrderTerminalSticks(t *testing.T) {
	cached := &model.Order{ID: "1", Status: model.OrderStatusCanceled}
	fresh := MergeCachedOrder(&model.Order{ID: "1", Status: model.OrderStatusOpen}, cached)
	if fresh.Status != model.OrderStatusCanceled {
		t.Errorf("terminal status regressed to %s", fresh.Status)
	}
}

func TestMergeCachedOrderNilCache(t *testing.T) {
	fresh := MergeCachedOrder(&model.Order{ID: "1"}, nil)
	if fresh == nil || fresh.ID != "1" {
		t.Errorf("merge with nil cache mangled the order: %+v", fresh)
	}
}
