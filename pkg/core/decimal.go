package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// DecimalContext is the shared arithmetic context for all money math.
// 32 digits comfortably covers every exchange-reported precision.
var DecimalContext = apd.BaseContext.WithPrecision(32)

// ParseDecimal parses a culture-invariant numeric string into dest.
// Empty or malformed input is an error; values are never defaulted to zero,
// since that would silently corrupt balances and order math downstream.
func ParseDecimal(dest *apd.Decimal, s string) error {
	if s == "" {
		return fmt.Errorf("empty decimal string")
	}
	if _, _, err := dest.SetString(s); err != nil {
		return fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return nil
}

// DeriveQuoteVolume estimates the quote-side volume as base / last and stores
// it in dest. The result is an estimation policy, not exchange data; callers
// must treat it as derived. When last is not positive, dest is left at zero
// since no meaningful derivation exists.
func DeriveQuoteVolume(dest *apd.Decimal, base, last apd.Decimal) error {
	if last.Sign() <= 0 {
		dest.Set(apd.New(0, 0))
		return nil
	}
	if _, err := DecimalContext.Quo(dest, &base, &last); err != nil {
		return fmt.Errorf("derive quote volume: %w", err)
	}
	return nil
}
