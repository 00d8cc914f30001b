package land

import (
	"fmt"
	"math/big"
)

var weiPerNative = big.NewInt(1_000_000_000_000_000_000)

// Converter translates display prices in fiat units to the ledger's native
// value unit at a fixed rate supplied at configuration time. The native unit
// carries far more precision than the fiat unit, so precision is only lost
// converting fiat-ward, and then only past two decimal places.
type Converter struct {
	rate int64 // fiat units per native coin
}

func NewConverter(fiatPerNative int64) (Converter, error) {
	if fiatPerNative <= 0 {
		return Converter{}, fmt.Errorf("exchange rate must be positive, got %d", fiatPerNative)
	}
	return Converter{rate: fiatPerNative}, nil
}

// ToNative converts a fiat amount to native wei, truncating any remainder
// below one wei.
func (c Converter) ToNative(fiat string) (*big.Int, error) {
	amount, ok := new(big.Rat).SetString(fiat)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrPriceInvalid, fiat)
	}
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q must be positive", ErrPriceInvalid, fiat)
	}

	wei := new(big.Rat).Mul(amount, new(big.Rat).SetInt(weiPerNative))
	wei.Quo(wei, new(big.Rat).SetInt64(c.rate))
	return new(big.Int).Quo(wei.Num(), wei.Denom()), nil
}

// ToFiat converts native wei back to a fiat amount with two decimal places.
func (c Converter) ToFiat(wei *big.Int) string {
	if wei == nil {
		return "0.00"
	}
	fiat := new(big.Rat).SetFrac(new(big.Int).Mul(wei, big.NewInt(c.rate)), weiPerNative)
	return fiat.FloatString(2)
}
