package finexbox

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

type rawCurrency struct {
	Currency        string      `json:"currency"`
	CurrencyLong    string      `json:"currencyLong"`
	MinConfirmation int         `json:"minConfirmation"`
	TxFee           json.Number `json:"txFee"`
	IsActive        *bool       `json:"isActive"`
}

type rawMarket struct {
	MarketName   string      `json:"market_name"`
	MinTradeSize json.Number `json:"min_trade_size"`
	MaxTradeSize json.Number `json:"max_trade_size"`
	MinPrice     json.Number `json:"min_price"`
	MaxPrice     json.Number `json:"max_price"`
	IsActive     *bool       `json:"is_active"`
}

type rawTicker struct {
	MarketName  string      `json:"market_name"`
	Ask         json.Number `json:"ask"`
	Bid         json.Number `json:"bid"`
	Last        json.Number `json:"last"`
	Vol         json.Number `json:"vol"`
	UpdatedTime int64       `json:"updated_time"`
}

type rawBookEntry struct {
	Rate     json.Number `json:"rate"`
	Quantity json.Number `json:"quantity"`
}

type rawOrderBook struct {
	Buy  []rawBookEntry `json:"buy"`
	Sell []rawBookEntry `json:"sell"`
}

type rawBalance struct {
	Currency  string      `json:"currency"`
	Total     json.Number `json:"total"`
	Available json.Number `json:"available"`
	Pending   json.Number `json:"pending"`
}

type rawOrder struct {
	OrderID     int64       `json:"order_id"`
	MarketName  string      `json:"market_name"`
	Type        string      `json:"type"`
	Rate        json.Number `json:"rate"`
	Amount      json.Number `json:"amount"`
	Remaining   json.Number `json:"remaining"`
	CreatedTime int64       `json:"created_time"`
}

type rawTransaction struct {
	Currency string      `json:"currency"`
	Address  string      `json:"address"`
	TxID     string      `json:"txid"`
	Amount   json.Number `json:"amount"`
	Fee      json.Number `json:"fee"`
	Status   string      `json:"status"`
	Time     int64       `json:"time"`
}

type rawDepositAddress struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
	Tag      string `json:"tag"`
}

type rawSubmitOrder struct {
	OrderID int64 `json:"order_id"`
}

type rawWithdraw struct {
	WithdrawID json.Number `json:"withdraw_id"`
}

func parseSide(s string) (core.OrderSide, error) {
	switch strings.ToLower(s) {
	case "buy":
		return core.SideBuy, nil
	case "sell":
		return core.SideSell, nil
	default:
		return 0, fmt.Errorf("unrecognized order type %q", s)
	}
}

func activeFlag(f *bool) bool {
	// The field is omitted for listings in good standing.
	return f == nil || *f
}

func normalizeCurrencies(raw []rawCurrency) ([]core.Currency, error) {
	out := make([]core.Currency, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, rc := range raw {
		c := core.Currency{
			Symbol:            strings.ToUpper(rc.Currency),
			Name:              rc.CurrencyLong,
			MinConfirmations:  rc.MinConfirmation,
			DepositEnabled:    activeFlag(rc.IsActive),
			WithdrawalEnabled: activeFlag(rc.IsActive),
		}
		// The long name is frequently blank for newer listings.
		if c.Name == "" {
			c.Name = c.Symbol
		}
		if err := core.ParseDecimal(&c.WithdrawalFee, rc.TxFee.String()); err != nil {
			return nil, core.NewParseError(Name, "currency", "txFee", err)
		}

		// Duplicate symbols resolve last-write-wins.
		if i, ok := seen[c.Symbol]; ok {
			out[i] = c
			continue
		}
		seen[c.Symbol] = len(out)
		out = append(out, c)
	}
	return out, nil
}

func normalizeMarketSymbols(raw []rawMarket) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rm := range raw {
		symbol, err := core.NormalizeSymbol(rm.MarketName)
		if err != nil {
			return nil, core.NewParseError(Name, "market symbol", "market_name", err)
		}
		// Duplicate pairs keep the first listing.
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	return out, nil
}

func normalizeMarkets(raw []rawMarket) ([]core.Market, error) {
	out := make([]core.Market, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rm := range raw {
		symbol, err := core.NormalizeSymbol(rm.MarketName)
		if err != nil {
			return nil, core.NewParseError(Name, "market", "market_name", err)
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}

		base, quote, err := core.SplitSymbol(symbol)
		if err != nil {
			return nil, core.NewParseError(Name, "market", "market_name", err)
		}

		m := core.Market{
			Symbol: symbol,
			Base:   base,
			Quote:  quote,
			Active: activeFlag(rm.IsActive),
		}
		for _, f := range []struct {
			dest  *apd.Decimal
			field string
			value json.Number
		}{
			{&m.MinTradeSize, "min_trade_size", rm.MinTradeSize},
			{&m.MaxTradeSize, "max_trade_size", rm.MaxTradeSize},
			{&m.MinPrice, "min_price", rm.MinPrice},
			{&m.MaxPrice, "max_price", rm.MaxPrice},
		} {
			if err := core.ParseDecimal(f.dest, f.value.String()); err != nil {
				return nil, core.NewParseError(Name, "market", f.field, err)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func normalizeTicker(raw *rawTicker) (*core.Ticker, error) {
	symbol, err := core.NormalizeSymbol(raw.MarketName)
	if err != nil {
		return nil, core.NewParseError(Name, "ticker", "market_name", err)
	}

	t := core.Ticker{Symbol: symbol}
	for _, f := range []struct {
		dest  *apd.Decimal
		field string
		value json.Number
	}{
		{&t.Bid, "bid", raw.Bid},
		{&t.Ask, "ask", raw.Ask},
		{&t.Last, "last", raw.Last},
		{&t.Volume.BaseVolume, "vol", raw.Vol},
	} {
		if err := core.ParseDecimal(f.dest, f.value.String()); err != nil {
			return nil, core.NewParseError(Name, "ticker", f.field, err)
		}
	}

	if err := core.DeriveQuoteVolume(&t.Volume.QuoteVolume, t.Volume.BaseVolume, t.Last); err != nil {
		return nil, core.NewParseError(Name, "ticker", "vol", err)
	}
	t.Volume.Timestamp = time.Unix(raw.UpdatedTime, 0).UTC()
	return &t, nil
}

func normalizeTickers(raw []rawTicker) ([]core.Ticker, error) {
	out := make([]core.Ticker, 0, len(raw))
	for i := range raw {
		t, err := normalizeTicker(&raw[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func normalizeBookSide(entries []rawBookEntry) ([]core.OrderBookLevel, error) {
	levels := make([]core.OrderBookLevel, 0, len(entries))
	for _, e := range entries {
		var lvl core.OrderBookLevel
		if err := core.ParseDecimal(&lvl.Price, e.Rate.String()); err != nil {
			return nil, core.NewParseError(Name, "order book", "rate", err)
		}
		if err := core.ParseDecimal(&lvl.Quantity, e.Quantity.String()); err != nil {
			return nil, core.NewParseError(Name, "order book", "quantity", err)
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}

// normalizeOrderBook trusts the exchange-supplied ordering: buys arrive
// price-descending and sells price-ascending. The response carries no
// market name; the caller fills the symbol in.
func normalizeOrderBook(raw *rawOrderBook) (*core.OrderBook, error) {
	bids, err := normalizeBookSide(raw.Buy)
	if err != nil {
		return nil, err
	}
	asks, err := normalizeBookSide(raw.Sell)
	if err != nil {
		return nil, err
	}
	return &core.OrderBook{Bids: bids, Asks: asks}, nil
}

func normalizeBalances(raw []rawBalance) ([]core.Balance, error) {
	out := make([]core.Balance, 0, len(raw))
	for _, rb := range raw {
		b := core.Balance{Currency: strings.ToUpper(rb.Currency)}
		for _, f := range []struct {
			dest  *apd.Decimal
			field string
			value json.Number
		}{
			{&b.Total, "total", rb.Total},
			{&b.Available, "available", rb.Available},
			{&b.Pending, "pending", rb.Pending},
		} {
			if err := core.ParseDecimal(f.dest, f.value.String()); err != nil {
				return nil, core.NewParseError(Name, "balance", f.field, err)
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func normalizeAvailableBalances(raw []rawBalance) (map[string]apd.Decimal, error) {
	out := make(map[string]apd.Decimal, len(raw))
	for _, rb := range raw {
		var available apd.Decimal
		if err := core.ParseDecimal(&available, rb.Available.String()); err != nil {
			return nil, core.NewParseError(Name, "balance", "available", err)
		}
		out[strings.ToUpper(rb.Currency)] = available
	}
	return out, nil
}

// normalizeOrder reconstructs one order from its remaining amount.
func normalizeOrder(ro *rawOrder, entity string) (*core.OrderResult, error) {
	symbol, err := core.NormalizeSymbol(ro.MarketName)
	if err != nil {
		return nil, core.NewParseError(Name, entity, "market_name", err)
	}
	side, err := parseSide(ro.Type)
	if err != nil {
		return nil, core.NewParseError(Name, entity, "type", err)
	}

	o := core.OrderResult{
		OrderID:   strconv.FormatInt(ro.OrderID, 10),
		Symbol:    symbol,
		Side:      side,
		Timestamp: time.Unix(ro.CreatedTime, 0).UTC(),
	}
	if err := core.ParseDecimal(&o.Price, ro.Rate.String()); err != nil {
		return nil, core.NewParseError(Name, entity, "rate", err)
	}
	if err := core.ParseDecimal(&o.Amount, ro.Amount.String()); err != nil {
		return nil, core.NewParseError(Name, entity, "amount", err)
	}

	var remaining apd.Decimal
	if err := core.ParseDecimal(&remaining, ro.Remaining.String()); err != nil {
		return nil, core.NewParseError(Name, entity, "remaining", err)
	}
	if err := o.ReconcileFromRemaining(remaining); err != nil {
		return nil, core.NewParseError(Name, entity, "remaining", err)
	}
	return &o, nil
}

func normalizeOpenOrders(raw []rawOrder) ([]core.OrderResult, error) {
	out := make([]core.OrderResult, 0, len(raw))
	for i := range raw {
		o, err := normalizeOrder(&raw[i], "open order")
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// normalizeCompletedOrders assumes listed orders filled in full; the
// history endpoint reports no per-order fill breakdown.
func normalizeCompletedOrders(raw []rawOrder) ([]core.OrderResult, error) {
	out := make([]core.OrderResult, 0, len(raw))
	for _, ro := range raw {
		symbol, err := core.NormalizeSymbol(ro.MarketName)
		if err != nil {
			return nil, core.NewParseError(Name, "completed order", "market_name", err)
		}
		side, err := parseSide(ro.Type)
		if err != nil {
			return nil, core.NewParseError(Name, "completed order", "type", err)
		}

		o := core.OrderResult{
			OrderID:   strconv.FormatInt(ro.OrderID, 10),
			Symbol:    symbol,
			Side:      side,
			Timestamp: time.Unix(ro.CreatedTime, 0).UTC(),
		}
		if err := core.ParseDecimal(&o.Price, ro.Rate.String()); err != nil {
			return nil, core.NewParseError(Name, "completed order", "rate", err)
		}
		if err := core.ParseDecimal(&o.Amount, ro.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "completed order", "amount", err)
		}
		o.ReconcileCompleted()
		out = append(out, o)
	}
	return out, nil
}

func normalizeTransactions(raw []rawTransaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(raw))
	for _, rt := range raw {
		tx := core.Transaction{
			Currency:  strings.ToUpper(rt.Currency),
			Address:   rt.Address,
			TxID:      rt.TxID,
			Timestamp: time.Unix(rt.Time, 0).UTC(),
		}

		switch strings.ToLower(rt.Status) {
		case "confirmed", "completed":
			tx.Status = core.TransactionComplete
		case "pending", "unconfirmed":
			tx.Status = core.TransactionProcessing
		default:
			tx.Status = core.TransactionUnknown
		}

		if err := core.ParseDecimal(&tx.Amount, rt.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "transaction", "amount", err)
		}
		// The fee field is absent on deposits.
		if rt.Fee != "" {
			if err := core.ParseDecimal(&tx.Fee, rt.Fee.String()); err != nil {
				return nil, core.NewParseError(Name, "transaction", "fee", err)
			}
		}
		out = append(out, tx)
	}
	return out, nil
}

func normalizeDepositAddress(raw *rawDepositAddress) (*core.DepositDetails, error) {
	if raw.Address == "" {
		return nil, core.NewParseError(Name, "deposit address", "address", fmt.Errorf("empty address"))
	}
	return &core.DepositDetails{
		Currency: strings.ToUpper(raw.Currency),
		Address:  raw.Address,
		Tag:      raw.Tag,
	}, nil
}
