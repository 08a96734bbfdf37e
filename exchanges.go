// Package cexlink exposes a unified client surface over cryptocurrency
// exchange REST APIs. Each supported venue implements exchange.Connector;
// New is the single entry point that maps an exchange id to its binding.
package cexlink

import (
	"fmt"

	"cexlink/config"
	"cexlink/internal/exchange"
	"cexlink/internal/exchange/ace"
	"cexlink/internal/exchange/binance"
	"cexlink/internal/exchange/kucoin"
)

// New returns a connector for the named exchange, configured from cfg.
func New(name string, cfg config.ExchangeConfig) (exchange.Connector, error) {
	switch name {
	case "binance":
		return binance.New(cfg), nil
	case "kucoin":
		return kucoin.New(cfg), nil
	case "ace":
		return ace.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown exchange %q", name)
	}
}

// Exchanges lists the supported exchange ids in stable order.
func Exchanges() []string {
	return []string{"ace", "binance", "kucoin"}
}
