package models

import "github.com/shopspring/decimal"

// TokenConfig describes the token the wallet operates on.
type TokenConfig struct {
	Symbol          string
	Name            string
	DisplayDecimals int32
	MaxTransfer     decimal.Decimal
}

// DefaultTokenConfig returns the built-in BDB token parameters, used when no
// token file is supplied.
func DefaultTokenConfig() TokenConfig {
	return TokenConfig{
		Symbol:          "BDB",
		Name:            "BDB Token",
		DisplayDecimals: 2,
		MaxTransfer:     decimal.NewFromInt(1_000_000),
	}
}
