package core

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// OrderSide represents the direction of an order or trade (buy or sell).
type OrderSide int

// Order side constants define the direction of a trade.
const (
	// SideBuy indicates an order to purchase the base currency.
	SideBuy OrderSide = iota
	// SideSell indicates an order to sell the base currency.
	SideSell
)

// String returns the string representation of the order side ("BUY" or "SELL").
func (s OrderSide) String() string {
	return [...]string{"BUY", "SELL"}[s]
}

// MarshalJSON implements json.Marshaler for OrderSide.
func (s OrderSide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for OrderSide.
// It accepts both uppercase and lowercase formats.
func (s *OrderSide) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`, `"buy"`:
		*s = SideBuy
	case `"SELL"`, `"sell"`:
		*s = SideSell
	}
	return nil
}

// TransactionStatus represents the settlement state of a deposit or withdrawal.
type TransactionStatus int

// Transaction status constants define the lifecycle of a chain transfer.
const (
	// TransactionUnknown indicates the exchange reported a state this library
	// does not recognize. It is never silently mapped to Complete.
	TransactionUnknown TransactionStatus = iota
	// TransactionProcessing indicates the transfer is awaiting confirmations.
	TransactionProcessing
	// TransactionComplete indicates the transfer is fully settled.
	TransactionComplete
)

// String returns the string representation of the transaction status.
func (s TransactionStatus) String() string {
	return [...]string{"UNKNOWN", "PROCESSING", "COMPLETE"}[s]
}

// MarshalJSON implements json.Marshaler for TransactionStatus.
func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Currency is an asset listed on an exchange, keyed by its short symbol.
// It is an immutable snapshot taken from one API response; duplicate symbols
// within a response are resolved last-write-wins by the parsers.
type Currency struct {
	// Symbol is the short, case-normalized asset code (e.g., "BTC").
	Symbol string `json:"symbol"`
	// Name is the display name. Parsers fall back to Symbol when the
	// exchange omits it.
	Name string `json:"name"`
	// MinConfirmations is the number of chain confirmations required for
	// a deposit to credit.
	MinConfirmations int `json:"min_confirmations"`
	// WithdrawalFee is the flat fee charged on withdrawal, in units of the
	// currency itself.
	WithdrawalFee apd.Decimal `json:"withdrawal_fee"`
	// DepositEnabled reports whether deposits are currently accepted.
	DepositEnabled bool `json:"deposit_enabled"`
	// WithdrawalEnabled reports whether withdrawals are currently accepted.
	WithdrawalEnabled bool `json:"withdrawal_enabled"`
}

// Market describes one tradable pair and its exchange-imposed bounds.
// It is derived entirely from a single API response; no cross-call merging.
type Market struct {
	// Symbol is the canonical pair identifier (e.g., "LTC_BTC").
	Symbol string `json:"symbol"`
	// Base is the currency being bought or sold.
	Base string `json:"base"`
	// Quote is the currency the price is denominated in.
	Quote string `json:"quote"`
	// MinTradeSize is the smallest order amount accepted, in base units.
	MinTradeSize apd.Decimal `json:"min_trade_size"`
	// MaxTradeSize is the largest order amount accepted, in base units.
	MaxTradeSize apd.Decimal `json:"max_trade_size"`
	// MinPrice is the lowest accepted order price.
	MinPrice apd.Decimal `json:"min_price"`
	// MaxPrice is the highest accepted order price.
	MaxPrice apd.Decimal `json:"max_price"`
	// Active reports whether the pair is currently open for trading.
	Active bool `json:"active"`
}

// Volume holds the traded volume attached to a ticker.
type Volume struct {
	// BaseVolume is the 24h volume in base currency units.
	BaseVolume apd.Decimal `json:"base_volume"`
	// QuoteVolume is the 24h volume in quote currency units. When the
	// exchange reports only one side this is derived as BaseVolume / Last
	// and must be treated as an estimate, not exchange data.
	QuoteVolume apd.Decimal `json:"quote_volume"`
	// Timestamp is when the exchange generated the figures.
	Timestamp time.Time `json:"timestamp"`
}

// Ticker is the current market summary for one pair.
type Ticker struct {
	// Symbol is the canonical pair identifier.
	Symbol string `json:"symbol"`
	// Bid is the highest open buy price.
	Bid apd.Decimal `json:"bid"`
	// Ask is the lowest open sell price.
	Ask apd.Decimal `json:"ask"`
	// Last is the price of the most recent trade.
	Last apd.Decimal `json:"last"`
	// Volume holds the traded volume figures.
	Volume Volume `json:"volume"`
}

// OrderBookLevel is a single price level in the order book.
type OrderBookLevel struct {
	// Price is the limit price for this level.
	Price apd.Decimal `json:"price"`
	// Quantity is the total quantity available at this price.
	Quantity apd.Decimal `json:"quantity"`
}

// OrderBook is a depth snapshot for one pair. The exchange-supplied ordering
// is trusted: bids price-descending, asks price-ascending; levels are never
// re-sorted locally.
type OrderBook struct {
	// Symbol is the canonical pair identifier.
	Symbol string `json:"symbol"`
	// Bids are open buy orders, best (highest) price first.
	Bids []OrderBookLevel `json:"bids"`
	// Asks are open sell orders, best (lowest) price first.
	Asks []OrderBookLevel `json:"asks"`
}

// Trade is one exchange-reported fill. Immutable.
type Trade struct {
	// Timestamp is when the fill executed.
	Timestamp time.Time `json:"timestamp"`
	// Price is the execution price.
	Price apd.Decimal `json:"price"`
	// Amount is the executed amount in base units.
	Amount apd.Decimal `json:"amount"`
	// Side indicates whether the taker bought or sold.
	Side OrderSide `json:"side"`
}

// OrderResult is the canonical view of an order, as reconstructed from
// whatever partial fill information the exchange returns. It is populated
// during reconciliation and never mutated after being returned to a caller.
type OrderResult struct {
	// OrderID is the exchange-assigned order identifier.
	OrderID string `json:"order_id"`
	// Symbol is the canonical pair identifier.
	Symbol string `json:"symbol"`
	// Amount is the requested order amount in base units.
	Amount apd.Decimal `json:"amount"`
	// AmountFilled is the executed amount in base units.
	AmountFilled apd.Decimal `json:"amount_filled"`
	// Price is the quoted order rate.
	Price apd.Decimal `json:"price"`
	// AveragePrice is the average execution price. When the exchange does
	// not report per-fill pricing this equals Price, which is a documented
	// approximation rather than a volume-weighted average.
	AveragePrice apd.Decimal `json:"average_price"`
	// Side indicates whether the order buys or sells the base currency.
	Side OrderSide `json:"side"`
	// Timestamp is when the order was placed, exchange time.
	Timestamp time.Time `json:"timestamp"`
	// Result is the derived fill state.
	Result FillState `json:"result"`
}

// Balance is the funds held in one currency.
type Balance struct {
	// Currency is the short asset code.
	Currency string `json:"currency"`
	// Total is the full balance including holds.
	Total apd.Decimal `json:"total"`
	// Available is the balance free for trading or withdrawal.
	Available apd.Decimal `json:"available"`
	// Pending is the balance awaiting confirmations.
	Pending apd.Decimal `json:"pending"`
}

// Transaction is one deposit or withdrawal record.
type Transaction struct {
	// Currency is the short asset code.
	Currency string `json:"currency"`
	// Address is the chain address involved.
	Address string `json:"address"`
	// TxID is the blockchain transaction identifier.
	TxID string `json:"tx_id"`
	// Amount is the transferred amount.
	Amount apd.Decimal `json:"amount"`
	// Fee is the fee the exchange charged.
	Fee apd.Decimal `json:"fee"`
	// Timestamp is when the exchange recorded the transfer.
	Timestamp time.Time `json:"timestamp"`
	// Status is the settlement state.
	Status TransactionStatus `json:"status"`
}

// DepositDetails is a deposit address for one currency.
type DepositDetails struct {
	// Currency is the short asset code.
	Currency string `json:"currency"`
	// Address is the deposit address.
	Address string `json:"address"`
	// Tag is the optional address tag or payment id, empty when unused.
	Tag string `json:"tag,omitempty"`
}

// WithdrawalRequest describes a withdrawal to submit.
type WithdrawalRequest struct {
	// Currency is the short asset code.
	Currency string `json:"currency"`
	// Address is the destination address.
	Address string `json:"address"`
	// Tag is the optional address tag or payment id.
	Tag string `json:"tag,omitempty"`
	// Amount is the amount to withdraw.
	Amount apd.Decimal `json:"amount"`
}

// WithdrawalResponse is the exchange's acknowledgement of a withdrawal.
type WithdrawalResponse struct {
	// ID is the exchange-assigned withdrawal identifier, if any.
	ID string `json:"id,omitempty"`
	// Success reports whether the exchange accepted the request.
	Success bool `json:"success"`
}
