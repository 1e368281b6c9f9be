package finexbox

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

func boolPtr(b bool) *bool { return &b }

func TestNormalizeCurrencies(t *testing.T) {
	raw := []rawCurrency{
		{Currency: "BTC", CurrencyLong: "Bitcoin", MinConfirmation: 2, TxFee: "0.0005"},
		{Currency: "xyz", CurrencyLong: "", MinConfirmation: 30, TxFee: "12", IsActive: boolPtr(false)},
	}

	currencies, err := normalizeCurrencies(raw)
	require.NoError(t, err)
	require.Len(t, currencies, 2)

	assert.Equal(t, "BTC", currencies[0].Symbol)
	assert.Equal(t, "Bitcoin", currencies[0].Name)
	assert.Equal(t, 2, currencies[0].MinConfirmations)
	assert.Equal(t, "0.0005", currencies[0].WithdrawalFee.String())
	assert.True(t, currencies[0].DepositEnabled)

	// Blank long names fall back to the symbol.
	assert.Equal(t, "XYZ", currencies[1].Symbol)
	assert.Equal(t, "XYZ", currencies[1].Name)
	assert.False(t, currencies[1].DepositEnabled)
}

func TestNormalizeCurrenciesDuplicateLastWins(t *testing.T) {
	raw := []rawCurrency{
		{Currency: "BTC", CurrencyLong: "Bitcoin", TxFee: "0.0005"},
		{Currency: "BTC", CurrencyLong: "Bitcoin v2", TxFee: "0.001"},
	}

	currencies, err := normalizeCurrencies(raw)
	require.NoError(t, err)
	require.Len(t, currencies, 1)
	assert.Equal(t, "Bitcoin v2", currencies[0].Name)
}

func TestNormalizeCurrenciesMissingFee(t *testing.T) {
	_, err := normalizeCurrencies([]rawCurrency{{Currency: "BTC"}})
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
}

func TestNormalizeMarkets(t *testing.T) {
	raw := []rawMarket{
		{
			MarketName: "LTC_BTC", MinTradeSize: "0.01", MaxTradeSize: "100000",
			MinPrice: "0.00000001", MaxPrice: "100",
		},
		{
			MarketName: "DOGE_BTC", MinTradeSize: "1", MaxTradeSize: "10000000",
			MinPrice: "0.00000001", MaxPrice: "1", IsActive: boolPtr(false),
		},
	}

	markets, err := normalizeMarkets(raw)
	require.NoError(t, err)
	require.Len(t, markets, 2)

	assert.Equal(t, "LTC_BTC", markets[0].Symbol)
	assert.Equal(t, "LTC", markets[0].Base)
	assert.Equal(t, "BTC", markets[0].Quote)
	assert.True(t, markets[0].Active)
	assert.False(t, markets[1].Active)
}

func TestNormalizeMarketSymbolsDuplicateKeepsFirst(t *testing.T) {
	raw := []rawMarket{
		{MarketName: "LTC_BTC"},
		{MarketName: "ltc_btc"},
		{MarketName: "ETH_BTC"},
	}

	symbols, err := normalizeMarketSymbols(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"LTC_BTC", "ETH_BTC"}, symbols)
}

func TestNormalizeTickerDerivesQuoteVolume(t *testing.T) {
	raw := &rawTicker{
		MarketName:  "LTC_BTC",
		Ask:         "0.0096",
		Bid:         "0.0094",
		Last:        "0.0095",
		Vol:         "100",
		UpdatedTime: 1700000000,
	}

	ticker, err := normalizeTicker(raw)
	require.NoError(t, err)

	assert.Equal(t, "LTC_BTC", ticker.Symbol)
	assert.Equal(t, "0.0094", ticker.Bid.String())
	assert.Equal(t, "0.0096", ticker.Ask.String())
	assert.Equal(t, "100", ticker.Volume.BaseVolume.String())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), ticker.Volume.Timestamp)

	var want apd.Decimal
	_, qerr := core.DecimalContext.Quo(&want, &ticker.Volume.BaseVolume, &ticker.Last)
	require.NoError(t, qerr)
	assert.Zero(t, ticker.Volume.QuoteVolume.Cmp(&want))
}

func TestNormalizeTickerMissingFieldFails(t *testing.T) {
	raw := &rawTicker{MarketName: "LTC_BTC", Ask: "0.0096", Bid: "0.0094", Vol: "100"}

	_, err := normalizeTicker(raw)
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
	assert.Contains(t, err.Error(), "last")
}

func TestNormalizeOrderBookPreservesOrdering(t *testing.T) {
	raw := &rawOrderBook{
		Buy: []rawBookEntry{
			{Rate: "0.0094", Quantity: "10"},
			{Rate: "0.0093", Quantity: "25"},
		},
		Sell: []rawBookEntry{
			{Rate: "0.0096", Quantity: "5"},
		},
	}

	book, err := normalizeOrderBook(raw)
	require.NoError(t, err)

	// The response carries no market name; the adapter fills the symbol.
	assert.Empty(t, book.Symbol)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 1)
	assert.Equal(t, "0.0094", book.Bids[0].Price.String())
	assert.Equal(t, "25", book.Bids[1].Quantity.String())
}

func TestNormalizeBalances(t *testing.T) {
	raw := []rawBalance{
		{Currency: "btc", Total: "10.5", Available: "8", Pending: "2.5"},
	}

	balances, err := normalizeBalances(raw)
	require.NoError(t, err)
	require.Len(t, balances, 1)

	assert.Equal(t, "BTC", balances[0].Currency)
	assert.Equal(t, "10.5", balances[0].Total.String())
	assert.Equal(t, "8", balances[0].Available.String())
	assert.Equal(t, "2.5", balances[0].Pending.String())
}

func TestNormalizeAvailableBalances(t *testing.T) {
	raw := []rawBalance{
		{Currency: "BTC", Total: "10", Available: "8", Pending: "0"},
		{Currency: "LTC", Total: "100", Available: "100", Pending: "0"},
	}

	available, err := normalizeAvailableBalances(raw)
	require.NoError(t, err)
	require.Len(t, available, 2)

	ltc := available["LTC"]
	assert.Equal(t, "100", ltc.String())
}

func TestNormalizeOrderPartialFill(t *testing.T) {
	raw := &rawOrder{
		OrderID: 7001, MarketName: "LTC_BTC", Type: "buy",
		Rate: "0.000125", Amount: "145.98", Remaining: "23.9876",
		CreatedTime: 1700000000,
	}

	o, err := normalizeOrder(raw, "order")
	require.NoError(t, err)

	assert.Equal(t, "7001", o.OrderID)
	assert.Equal(t, "LTC_BTC", o.Symbol)
	assert.Equal(t, core.SideBuy, o.Side)
	assert.Equal(t, "121.9924", o.AmountFilled.String())
	assert.Equal(t, core.FillPartial, o.Result)
}

func TestNormalizeOrderInconsistentRemaining(t *testing.T) {
	raw := &rawOrder{
		OrderID: 7002, MarketName: "LTC_BTC", Type: "sell",
		Rate: "0.01", Amount: "10", Remaining: "12",
		CreatedTime: 1700000000,
	}

	o, err := normalizeOrder(raw, "order")
	require.NoError(t, err)
	assert.Equal(t, core.FillUnknown, o.Result)
}

func TestNormalizeCompletedOrdersAssumeFullFill(t *testing.T) {
	raw := []rawOrder{
		{OrderID: 5, MarketName: "ETH_BTC", Type: "sell", Rate: "0.05", Amount: "3", CreatedTime: 1690000000},
	}

	orders, err := normalizeCompletedOrders(raw)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, core.FillComplete, o.Result)
	assert.Zero(t, o.AmountFilled.Cmp(&o.Amount))
	assert.Zero(t, o.AveragePrice.Cmp(&o.Price))
}

func TestNormalizeTransactionsStatusMapping(t *testing.T) {
	raw := []rawTransaction{
		{Currency: "BTC", TxID: "a", Amount: "1", Fee: "0.0001", Status: "confirmed", Time: 1700000000},
		{Currency: "BTC", TxID: "b", Amount: "2", Status: "pending", Time: 1700000100},
		{Currency: "BTC", TxID: "c", Amount: "3", Status: "flagged", Time: 1700000200},
	}

	txs, err := normalizeTransactions(raw)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, core.TransactionComplete, txs[0].Status)
	assert.Equal(t, "0.0001", txs[0].Fee.String())
	assert.Equal(t, core.TransactionProcessing, txs[1].Status)
	assert.True(t, txs[1].Fee.IsZero())
	assert.Equal(t, core.TransactionUnknown, txs[2].Status)
}

func TestNormalizeDepositAddress(t *testing.T) {
	got, err := normalizeDepositAddress(&rawDepositAddress{Currency: "xrp", Address: "rAddress", Tag: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "XRP", got.Currency)
	assert.Equal(t, "rAddress", got.Address)
	assert.Equal(t, "12345", got.Tag)

	_, err = normalizeDepositAddress(&rawDepositAddress{Currency: "BTC"})
	assert.Error(t, err)
}
