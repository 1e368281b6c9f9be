package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// FillState is the canonical fill status of an order, derived from whatever
// amount/remaining representation the exchange returns.
type FillState int

// Fill state constants define the reconciled order states.
const (
	// FillPending indicates nothing has executed yet.
	FillPending FillState = iota
	// FillPartial indicates part of the requested amount has executed.
	FillPartial
	// FillComplete indicates the full requested amount has executed.
	FillComplete
	// FillUnknown indicates the reported numbers are inconsistent
	// (negative fill, or fill exceeding the requested amount). It is a
	// defensive fallback and is never coerced to another state.
	FillUnknown
)

// String returns the string representation of the fill state.
func (s FillState) String() string {
	return [...]string{"PENDING", "FILLED_PARTIALLY", "FILLED", "UNKNOWN"}[s]
}

// MarshalJSON implements json.Marshaler for FillState.
func (s FillState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ResolveFill derives the fill state from the requested and filled amounts.
// For filled in [0, requested] the result is exactly one of Pending,
// FilledPartially or Filled; anything outside that range is Unknown.
func ResolveFill(requested, filled apd.Decimal) FillState {
	if filled.Sign() < 0 || filled.Cmp(&requested) > 0 {
		return FillUnknown
	}
	if filled.IsZero() {
		return FillPending
	}
	if filled.Cmp(&requested) == 0 {
		return FillComplete
	}
	return FillPartial
}

// ReconcileFromFilled finalizes the result from a directly reported filled
// amount. The average price defaults to the quoted rate when the exchange
// reports no per-fill pricing.
func (o *OrderResult) ReconcileFromFilled(filled apd.Decimal) {
	o.AmountFilled = filled
	if o.AveragePrice.IsZero() {
		o.AveragePrice = o.Price
	}
	o.Result = ResolveFill(o.Amount, filled)
}

// ReconcileFromRemaining finalizes the result from an exchange-reported
// remaining amount, computing filled = requested - remaining.
func (o *OrderResult) ReconcileFromRemaining(remaining apd.Decimal) error {
	var filled apd.Decimal
	if _, err := DecimalContext.Sub(&filled, &o.Amount, &remaining); err != nil {
		return fmt.Errorf("compute filled amount: %w", err)
	}
	o.ReconcileFromFilled(filled)
	return nil
}

// ReconcileCompleted finalizes an entry from a completed-order listing.
// Exchanges report no partial-fill data retroactively, so the filled amount
// is assumed equal to the requested amount and the average price equals the
// quoted rate. This is a known information-loss limitation, not data.
func (o *OrderResult) ReconcileCompleted() {
	o.AmountFilled = o.Amount
	o.AveragePrice = o.Price
	o.Result = FillComplete
}
