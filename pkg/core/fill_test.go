package core

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) apd.Decimal {
	t.Helper()
	var d apd.Decimal
	require.NoError(t, ParseDecimal(&d, s))
	return d
}

func TestResolveFill(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		filled    string
		want      FillState
	}{
		{"nothing filled", "10", "0", FillPending},
		{"partially filled", "10", "4.5", FillPartial},
		{"fully filled", "10", "10", FillComplete},
		{"fully filled different exponent", "10.00", "10", FillComplete},
		{"negative fill", "10", "-1", FillUnknown},
		{"overfill", "10", "10.0001", FillUnknown},
		{"zero order zero fill", "0", "0", FillPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFill(mustDecimal(t, tt.requested), mustDecimal(t, tt.filled))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFillTotality(t *testing.T) {
	// Every fill inside [0, requested] resolves to one of the three
	// determinate states, never Unknown.
	requested := mustDecimal(t, "145.98")
	for _, filled := range []string{"0", "0.00000001", "72.99", "145.97999999", "145.98"} {
		state := ResolveFill(requested, mustDecimal(t, filled))
		assert.NotEqual(t, FillUnknown, state, "filled %s", filled)
	}
}

func TestReconcileFromRemaining(t *testing.T) {
	o := OrderResult{
		Amount: mustDecimal(t, "145.98"),
		Price:  mustDecimal(t, "0.000125"),
	}

	err := o.ReconcileFromRemaining(mustDecimal(t, "23.9876"))
	require.NoError(t, err)

	assert.Equal(t, "121.9924", o.AmountFilled.String())
	assert.Equal(t, FillPartial, o.Result)
	assert.Equal(t, "0.000125", o.AveragePrice.String())
}

func TestReconcileFromRemainingUntouchedOrder(t *testing.T) {
	o := OrderResult{Amount: mustDecimal(t, "50")}

	err := o.ReconcileFromRemaining(mustDecimal(t, "50"))
	require.NoError(t, err)

	assert.True(t, o.AmountFilled.IsZero())
	assert.Equal(t, FillPending, o.Result)
}

func TestReconcileFromFilledKeepsReportedAverage(t *testing.T) {
	o := OrderResult{
		Amount:       mustDecimal(t, "10"),
		Price:        mustDecimal(t, "100"),
		AveragePrice: mustDecimal(t, "99.5"),
	}

	o.ReconcileFromFilled(mustDecimal(t, "10"))

	assert.Equal(t, FillComplete, o.Result)
	assert.Equal(t, "99.5", o.AveragePrice.String())
}

func TestReconcileCompleted(t *testing.T) {
	o := OrderResult{
		Amount: mustDecimal(t, "3.5"),
		Price:  mustDecimal(t, "0.021"),
	}

	o.ReconcileCompleted()

	assert.Equal(t, FillComplete, o.Result)
	assert.Zero(t, o.AmountFilled.Cmp(&o.Amount))
	assert.Zero(t, o.AveragePrice.Cmp(&o.Price))
}

func TestFillStateString(t *testing.T) {
	assert.Equal(t, "PENDING", FillPending.String())
	assert.Equal(t, "FILLED_PARTIALLY", FillPartial.String())
	assert.Equal(t, "FILLED", FillComplete.String())
	assert.Equal(t, "UNKNOWN", FillUnknown.String())
}
