// Package asset holds the canonical identity model for currencies and trading
// pairs. Assets and pairs are interned per Registry: equivalent symbols or
// aliases always resolve to the same instance, so identity comparison is
// pointer comparison.
package asset

import "github.com/shopspring/decimal"

// Type classifies an asset as government-issued or digital.
type Type int

const (
	Fiat Type = iota
	Digital
)

func (t Type) String() string {
	if t == Fiat {
		return "fiat"
	}
	return "digital"
}

// Asset is a canonical currency identifier. Instances are created by a
// Registry and are immutable afterwards.
type Asset struct {
	symbol string
	typ    Type
	scale  int32
}

// Symbol returns the canonical uppercase symbol, e.g. "BTC".
func (a *Asset) Symbol() string { return a.symbol }

// Type reports whether the asset is fiat or digital.
func (a *Asset) Type() Type { return a.typ }

// Scale is the number of fractional digits used when presenting amounts of
// this asset (2 for most fiat, 8 for most digital assets).
func (a *Asset) Scale() int32 { return a.scale }

// Round rounds d to the asset's scale using half-even rounding.
func (a *Asset) Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(a.scale)
}

func (a *Asset) String() string { return a.symbol }
