package cryptopia

import (
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

func TestNormalizeCurrencies(t *testing.T) {
	raw := []rawCurrency{
		{Symbol: "BTC", Name: "Bitcoin", WithdrawFee: "0.0005", DepositConfirmations: 2, Status: "OK"},
		{Symbol: "DOT", Name: "", WithdrawFee: "1", DepositConfirmations: 20, Status: "Maintenance"},
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
	assert.Equal(t, "DOT", currencies[1].Name)
	assert.False(t, currencies[1].DepositEnabled)
	assert.False(t, currencies[1].WithdrawalEnabled)
}

func TestNormalizeCurrenciesDuplicateLastWins(t *testing.T) {
	raw := []rawCurrency{
		{Symbol: "BTC", Name: "Bitcoin", WithdrawFee: "0.0005", Status: "OK"},
		{Symbol: "btc", Name: "Bitcoin Relisted", WithdrawFee: "0.001", Status: "OK"},
	}

	currencies, err := normalizeCurrencies(raw)
	require.NoError(t, err)
	require.Len(t, currencies, 1)
	assert.Equal(t, "Bitcoin Relisted", currencies[0].Name)
	assert.Equal(t, "0.001", currencies[0].WithdrawalFee.String())
}

func TestNormalizeCurrenciesMissingFee(t *testing.T) {
	_, err := normalizeCurrencies([]rawCurrency{{Symbol: "BTC", Status: "OK"}})
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
}

func TestNormalizeMarkets(t *testing.T) {
	raw := []rawTradePair{
		{
			Label: "LTC/BTC", Symbol: "LTC", BaseSymbol: "BTC", Status: "OK",
			MinimumTrade: "0.01", MaximumTrade: "100000", MinimumPrice: "0.00000001", MaximumPrice: "100",
		},
		{
			Label: "DOGE/BTC", Symbol: "DOGE", BaseSymbol: "BTC", Status: "Paused",
			MinimumTrade: "1", MaximumTrade: "10000000", MinimumPrice: "0.00000001", MaximumPrice: "1",
		},
	}

	markets, err := normalizeMarkets(raw)
	require.NoError(t, err)
	require.Len(t, markets, 2)

	assert.Equal(t, "LTC_BTC", markets[0].Symbol)
	assert.Equal(t, "LTC", markets[0].Base)
	assert.Equal(t, "BTC", markets[0].Quote)
	assert.Equal(t, "0.01", markets[0].MinTradeSize.String())
	assert.True(t, markets[0].Active)
	assert.False(t, markets[1].Active)
}

func TestNormalizeMarketSymbolsDuplicateKeepsFirst(t *testing.T) {
	raw := []rawTradePair{
		{Label: "LTC/BTC"},
		{Label: "ltc/btc"},
		{Label: "ETH/BTC"},
	}

	symbols, err := normalizeMarketSymbols(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"LTC_BTC", "ETH_BTC"}, symbols)
}

func TestNormalizeTicker(t *testing.T) {
	raw := &rawMarket{
		Label:     "LTC/BTC",
		AskPrice:  "0.0096",
		BidPrice:  "0.0094",
		LastPrice: "0.0095",
		Volume:    "100",
	}

	ticker, err := normalizeTicker(raw)
	require.NoError(t, err)

	assert.Equal(t, "LTC_BTC", ticker.Symbol)
	assert.Equal(t, "0.0094", ticker.Bid.String())
	assert.Equal(t, "0.0096", ticker.Ask.String())
	assert.Equal(t, "0.0095", ticker.Last.String())
	assert.Equal(t, "100", ticker.Volume.BaseVolume.String())

	// Quote volume is derived as base volume over last price.
	var want apd.Decimal
	_, qerr := core.DecimalContext.Quo(&want, &ticker.Volume.BaseVolume, &ticker.Last)
	require.NoError(t, qerr)
	assert.Zero(t, ticker.Volume.QuoteVolume.Cmp(&want))
	assert.False(t, ticker.Volume.Timestamp.IsZero())
}

func TestNormalizeTickerMissingFieldFails(t *testing.T) {
	raw := &rawMarket{Label: "LTC/BTC", AskPrice: "0.0096", BidPrice: "0.0094", Volume: "100"}

	_, err := normalizeTicker(raw)
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
	assert.Contains(t, err.Error(), "LastPrice")
}

func TestNormalizeOrderBookPreservesOrdering(t *testing.T) {
	raw := &rawOrderBook{
		Buy: []rawBookEntry{
			{Label: "LTC/BTC", Price: "0.0094", Volume: "10"},
			{Label: "LTC/BTC", Price: "0.0093", Volume: "25"},
		},
		Sell: []rawBookEntry{
			{Label: "LTC/BTC", Price: "0.0096", Volume: "5"},
			{Label: "LTC/BTC", Price: "0.0097", Volume: "12"},
		},
	}

	book, err := normalizeOrderBook(raw)
	require.NoError(t, err)

	assert.Equal(t, "LTC_BTC", book.Symbol)
	require.Len(t, book.Bids, 2)
	require.Len(t, book.Asks, 2)
	assert.Equal(t, "0.0094", book.Bids[0].Price.String())
	assert.Equal(t, "0.0093", book.Bids[1].Price.String())
	assert.Equal(t, "0.0096", book.Asks[0].Price.String())
	assert.Equal(t, "12", book.Asks[1].Quantity.String())
}

func TestNormalizeTrades(t *testing.T) {
	raw := []rawTrade{
		{Label: "LTC/BTC", Type: "Sell", Price: "0.0095", Amount: "2.5", Timestamp: 1418000000},
		{Label: "LTC/BTC", Type: "Buy", Price: "0.0094", Amount: "1", Timestamp: 1418000060},
	}

	trades, err := normalizeTrades(raw)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, core.SideSell, trades[0].Side)
	assert.Equal(t, "0.0095", trades[0].Price.String())
	assert.Equal(t, time.Unix(1418000000, 0).UTC(), trades[0].Timestamp)
	assert.Equal(t, core.SideBuy, trades[1].Side)
}

func TestNormalizeTradesRejectsUnknownType(t *testing.T) {
	_, err := normalizeTrades([]rawTrade{{Type: "Short", Price: "1", Amount: "1"}})
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
}

func TestNormalizeBalances(t *testing.T) {
	raw := []rawBalance{
		{
			Symbol: "BTC", Total: "10.5", Available: "8",
			Unconfirmed: "1.5", HeldForTrades: "1", PendingWithdraw: "0.5",
		},
	}

	balances, err := normalizeBalances(raw)
	require.NoError(t, err)
	require.Len(t, balances, 1)

	assert.Equal(t, "BTC", balances[0].Currency)
	assert.Equal(t, "10.5", balances[0].Total.String())
	assert.Equal(t, "8", balances[0].Available.String())
	assert.Equal(t, "2.0", balances[0].Pending.String())
}

func TestNormalizeAvailableBalances(t *testing.T) {
	raw := []rawBalance{
		{Symbol: "btc", Total: "10", Available: "8", Unconfirmed: "0", HeldForTrades: "2", PendingWithdraw: "0"},
		{Symbol: "LTC", Total: "100", Available: "100", Unconfirmed: "0", HeldForTrades: "0", PendingWithdraw: "0"},
	}

	available, err := normalizeAvailableBalances(raw)
	require.NoError(t, err)
	require.Len(t, available, 2)

	btc := available["BTC"]
	assert.Equal(t, "8", btc.String())
}

func TestNormalizeOpenOrders(t *testing.T) {
	raw := []rawOpenOrder{
		{
			OrderID: 23467, Market: "LTC/BTC", Type: "Buy",
			Rate: "0.000125", Amount: "145.98", Remaining: "23.9876",
			TimeStamp: "2014-12-07T20:04:05.3947572",
		},
	}

	orders, err := normalizeOpenOrders(raw)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "23467", o.OrderID)
	assert.Equal(t, "LTC_BTC", o.Symbol)
	assert.Equal(t, core.SideBuy, o.Side)
	assert.Equal(t, "145.98", o.Amount.String())
	assert.Equal(t, "121.9924", o.AmountFilled.String())
	assert.Equal(t, core.FillPartial, o.Result)
	assert.Equal(t, 2014, o.Timestamp.Year())
	assert.Equal(t, time.December, o.Timestamp.Month())
}

func TestNormalizeOpenOrdersNothingFilled(t *testing.T) {
	raw := []rawOpenOrder{
		{
			OrderID: 1, Market: "ETH/BTC", Type: "Sell",
			Rate: "0.05", Amount: "3", Remaining: "3",
			TimeStamp: "2018-01-01T00:00:00",
		},
	}

	orders, err := normalizeOpenOrders(raw)
	require.NoError(t, err)
	assert.Equal(t, core.FillPending, orders[0].Result)
	assert.True(t, orders[0].AmountFilled.IsZero())
}

func TestNormalizeCompletedOrdersAssumeFullFill(t *testing.T) {
	raw := []rawTradeHistory{
		{
			TradeID: 991, Market: "LTC/BTC", Type: "Sell",
			Rate: "0.0095", Amount: "12", TimeStamp: "2017-06-01T10:30:00",
		},
	}

	orders, err := normalizeCompletedOrders(raw)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	assert.Equal(t, "991", o.OrderID)
	assert.Equal(t, core.FillComplete, o.Result)
	assert.Zero(t, o.AmountFilled.Cmp(&o.Amount))
	assert.Zero(t, o.AveragePrice.Cmp(&o.Price))
}

func TestNormalizeTransactionsStatusMapping(t *testing.T) {
	raw := []rawTransaction{
		{Currency: "BTC", TxID: "a", Amount: "1", Fee: "0", Status: "Confirmed", Timestamp: "2017-06-01T10:30:00"},
		{Currency: "BTC", TxID: "b", Amount: "2", Fee: "0", Status: "Pending", Timestamp: "2017-06-01T10:31:00"},
		{Currency: "BTC", TxID: "c", Amount: "3", Fee: "0", Status: "Reversed", Timestamp: "2017-06-01T10:32:00"},
	}

	txs, err := normalizeTransactions(raw)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	assert.Equal(t, core.TransactionComplete, txs[0].Status)
	assert.Equal(t, core.TransactionProcessing, txs[1].Status)
	assert.Equal(t, core.TransactionUnknown, txs[2].Status)
}

func TestNormalizeDepositAddress(t *testing.T) {
	got, err := normalizeDepositAddress(&rawDepositAddress{Currency: "btc", Address: "1BitcoinAddress"})
	require.NoError(t, err)
	assert.Equal(t, "BTC", got.Currency)
	assert.Equal(t, "1BitcoinAddress", got.Address)

	_, err = normalizeDepositAddress(&rawDepositAddress{Currency: "BTC"})
	assert.Error(t, err)
}

func TestNormalizeSubmitTrade(t *testing.T) {
	id := int64(23467)
	resting, err := normalizeSubmitTrade(&rawSubmitTrade{OrderID: &id})
	require.NoError(t, err)
	assert.Equal(t, "23467", resting.OrderID)
	assert.Equal(t, core.FillPending, resting.Result)

	matched, err := normalizeSubmitTrade(&rawSubmitTrade{OrderID: nil, FilledOrders: []int64{1, 2}})
	require.NoError(t, err)
	assert.Empty(t, matched.OrderID)
	assert.Equal(t, core.FillComplete, matched.Result)
}
