package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarketIsActive(t *testing.T) {
	yes, no := true, false

	assert.True(t, (&Market{}).IsActive(), "unknown status counts as tradable")
	assert.True(t, (&Market{Active: &yes}).IsActive())
	assert.False(t, (&Market{Active: &no}).IsActive())
}

func TestMarketSymbolConvention(t *testing.T) {
	m := Market{ID: "BTCUSDT", Symbol: "BTC/USDT", Base: "BTC", Quote: "USDT"}
	assert.Equal(t, m.Base+"/"+m.Quote, m.Symbol)
	assert.NotEqual(t, m.ID, m.Symbol, "native id and unified symbol are distinct namespaces")
}
