// Package exchange defines the canonical capability contract every
// exchange adapter implements, and the shared machinery that composes
// request building, signing, transport and response normalization.
package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

// Exchange is the unified trading interface over one exchange's REST API.
// Calling code never special-cases an exchange: every implementation
// normalizes its own field names, units and error conventions into the
// canonical core types.
//
// All operations are independent request/response calls. Implementations
// hold no connection-level state and are safe for concurrent use; the only
// shared state is the immutable API key pair.
type Exchange interface {
	// Name returns the exchange identifier.
	Name() string

	// GetCurrencies lists the assets the exchange supports.
	GetCurrencies(ctx context.Context) ([]core.Currency, error)
	// GetMarketSymbols lists canonical pair identifiers.
	GetMarketSymbols(ctx context.Context) ([]string, error)
	// GetMarketsMetadata lists pairs with their trading bounds.
	GetMarketsMetadata(ctx context.Context) ([]core.Market, error)
	// GetTicker returns the market summary for one pair.
	GetTicker(ctx context.Context, symbol string) (*core.Ticker, error)
	// GetTickers returns market summaries for all pairs.
	GetTickers(ctx context.Context) ([]core.Ticker, error)
	// GetOrderBook returns the depth snapshot for one pair. On transport
	// or API-level failure it returns an empty book rather than an error;
	// this read path is polled frequently and favors availability.
	GetOrderBook(ctx context.Context, symbol string, opts ...Option) (*core.OrderBook, error)
	// GetRecentTrades returns the latest public fills for one pair.
	GetRecentTrades(ctx context.Context, symbol string) ([]core.Trade, error)
	// GetHistoricalTrades fetches one page of older fills and hands it to
	// callback. Pagination is caller-driven: the callback runs once per
	// call, and fetching further pages is the caller's decision.
	GetHistoricalTrades(ctx context.Context, symbol string, callback func([]core.Trade) bool, opts ...Option) error

	// GetBalances returns full balances including holds.
	GetBalances(ctx context.Context) ([]core.Balance, error)
	// GetAvailableBalances returns the tradable amount per currency.
	GetAvailableBalances(ctx context.Context) (map[string]apd.Decimal, error)

	// GetCompletedOrders returns historical orders; symbol may be empty
	// for all pairs. Listed entries are assumed fully filled.
	GetCompletedOrders(ctx context.Context, symbol string) ([]core.OrderResult, error)
	// GetOpenOrders returns open orders; symbol may be empty for all pairs.
	GetOpenOrders(ctx context.Context, symbol string) ([]core.OrderResult, error)
	// GetOrderDetails returns one order by its exchange identifier.
	GetOrderDetails(ctx context.Context, orderID string) (*core.OrderResult, error)
	// PlaceOrder submits a limit order.
	PlaceOrder(ctx context.Context, req *OrderRequest) (*core.OrderResult, error)
	// CancelOrder cancels an order by its exchange identifier.
	CancelOrder(ctx context.Context, orderID string) error

	// GetDepositHistory returns deposit records for one currency.
	GetDepositHistory(ctx context.Context, currency string) ([]core.Transaction, error)
	// GetDepositAddress returns the deposit address for one currency.
	GetDepositAddress(ctx context.Context, currency string) (*core.DepositDetails, error)
	// Withdraw submits a withdrawal request.
	Withdraw(ctx context.Context, req *core.WithdrawalRequest) (*core.WithdrawalResponse, error)
}

// OrderRequest contains the parameters required to place a limit order.
type OrderRequest struct {
	// Symbol is the canonical pair identifier.
	Symbol string
	// Side indicates whether to buy or sell the base currency.
	Side core.OrderSide
	// Price is the limit price in quote units.
	Price apd.Decimal
	// Amount is the order size in base units.
	Amount apd.Decimal
}
