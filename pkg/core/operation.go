package core

// Operation represents a type of action that can be performed on an exchange.
type Operation int

// Operation constants define the full capability set every adapter exposes.
const (
	// OpGetCurrencies retrieves the listed currencies.
	OpGetCurrencies Operation = iota
	// OpGetMarketSymbols retrieves the tradable pair identifiers.
	OpGetMarketSymbols
	// OpGetMarketsMetadata retrieves pair trading bounds and status.
	OpGetMarketsMetadata
	// OpGetTicker retrieves the market summary for one pair.
	OpGetTicker
	// OpGetTickers retrieves market summaries for all pairs.
	OpGetTickers
	// OpGetOrderBook retrieves the order book depth for one pair.
	OpGetOrderBook
	// OpGetRecentTrades retrieves recent public fills for one pair.
	OpGetRecentTrades
	// OpGetHistoricalTrades retrieves one page of older public fills.
	OpGetHistoricalTrades
	// OpGetBalances retrieves full account balances.
	OpGetBalances
	// OpGetAvailableBalances retrieves the tradable portion of balances.
	OpGetAvailableBalances
	// OpGetCompletedOrders retrieves historical (closed) orders.
	OpGetCompletedOrders
	// OpGetOpenOrders retrieves open orders.
	OpGetOpenOrders
	// OpGetOrderDetails retrieves one order by identifier.
	OpGetOrderDetails
	// OpPlaceOrder submits a new order.
	OpPlaceOrder
	// OpCancelOrder cancels an existing order.
	OpCancelOrder
	// OpGetDepositHistory retrieves deposit records.
	OpGetDepositHistory
	// OpGetDepositAddress retrieves or creates a deposit address.
	OpGetDepositAddress
	// OpWithdraw submits a withdrawal.
	OpWithdraw
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"GET_CURRENCIES",
		"GET_MARKET_SYMBOLS",
		"GET_MARKETS_METADATA",
		"GET_TICKER",
		"GET_TICKERS",
		"GET_ORDER_BOOK",
		"GET_RECENT_TRADES",
		"GET_HISTORICAL_TRADES",
		"GET_BALANCES",
		"GET_AVAILABLE_BALANCES",
		"GET_COMPLETED_ORDERS",
		"GET_OPEN_ORDERS",
		"GET_ORDER_DETAILS",
		"PLACE_ORDER",
		"CANCEL_ORDER",
		"GET_DEPOSIT_HISTORY",
		"GET_DEPOSIT_ADDRESS",
		"WITHDRAW",
	}[o]
}
