package cryptopia

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

// Private timestamps arrive without a zone ("2014-12-07T20:04:05.3947572");
// the exchange documents them as UTC.
const timeLayout = "2006-01-02T15:04:05"

type rawCurrency struct {
	ID                   int64       `json:"Id"`
	Name                 string      `json:"Name"`
	Symbol               string      `json:"Symbol"`
	WithdrawFee          json.Number `json:"WithdrawFee"`
	DepositConfirmations int         `json:"DepositConfirmations"`
	Status               string      `json:"Status"`
	ListingStatus        string      `json:"ListingStatus"`
}

type rawTradePair struct {
	ID           int64       `json:"Id"`
	Label        string      `json:"Label"`
	Symbol       string      `json:"Symbol"`
	BaseSymbol   string      `json:"BaseSymbol"`
	Status       string      `json:"Status"`
	MinimumTrade json.Number `json:"MinimumTrade"`
	MaximumTrade json.Number `json:"MaximumTrade"`
	MinimumPrice json.Number `json:"MinimumPrice"`
	MaximumPrice json.Number `json:"MaximumPrice"`
}

type rawMarket struct {
	Label     string      `json:"Label"`
	AskPrice  json.Number `json:"AskPrice"`
	BidPrice  json.Number `json:"BidPrice"`
	LastPrice json.Number `json:"LastPrice"`
	Volume    json.Number `json:"Volume"`
}

type rawBookEntry struct {
	Label  string      `json:"Label"`
	Price  json.Number `json:"Price"`
	Volume json.Number `json:"Volume"`
}

type rawOrderBook struct {
	Buy  []rawBookEntry `json:"Buy"`
	Sell []rawBookEntry `json:"Sell"`
}

type rawTrade struct {
	Label     string      `json:"Label"`
	Type      string      `json:"Type"`
	Price     json.Number `json:"Price"`
	Amount    json.Number `json:"Amount"`
	Timestamp int64       `json:"Timestamp"`
}

type rawBalance struct {
	Symbol          string      `json:"Symbol"`
	Total           json.Number `json:"Total"`
	Available       json.Number `json:"Available"`
	Unconfirmed     json.Number `json:"Unconfirmed"`
	HeldForTrades   json.Number `json:"HeldForTrades"`
	PendingWithdraw json.Number `json:"PendingWithdraw"`
	Address         string      `json:"Address"`
	Status          string      `json:"Status"`
}

type rawOpenOrder struct {
	OrderID   int64       `json:"OrderId"`
	Market    string      `json:"Market"`
	Type      string      `json:"Type"`
	Rate      json.Number `json:"Rate"`
	Amount    json.Number `json:"Amount"`
	Remaining json.Number `json:"Remaining"`
	TimeStamp string      `json:"TimeStamp"`
}

type rawTradeHistory struct {
	TradeID   int64       `json:"TradeId"`
	Market    string      `json:"Market"`
	Type      string      `json:"Type"`
	Rate      json.Number `json:"Rate"`
	Amount    json.Number `json:"Amount"`
	TimeStamp string      `json:"TimeStamp"`
}

type rawTransaction struct {
	ID        int64       `json:"Id"`
	Currency  string      `json:"Currency"`
	TxID      string      `json:"TxId"`
	Type      string      `json:"Type"`
	Amount    json.Number `json:"Amount"`
	Fee       json.Number `json:"Fee"`
	Status    string      `json:"Status"`
	Timestamp string      `json:"Timestamp"`
	Address   string      `json:"Address"`
}

type rawDepositAddress struct {
	Currency string `json:"Currency"`
	Address  string `json:"Address"`
}

type rawSubmitTrade struct {
	OrderID      *int64  `json:"OrderId"`
	FilledOrders []int64 `json:"FilledOrders"`
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

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func normalizeCurrencies(raw []rawCurrency) ([]core.Currency, error) {
	out := make([]core.Currency, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, rc := range raw {
		c := core.Currency{
			Symbol:            strings.ToUpper(rc.Symbol),
			Name:              rc.Name,
			MinConfirmations:  rc.DepositConfirmations,
			DepositEnabled:    rc.Status == "OK",
			WithdrawalEnabled: rc.Status == "OK",
		}
		if c.Name == "" {
			c.Name = c.Symbol
		}
		if err := core.ParseDecimal(&c.WithdrawalFee, rc.WithdrawFee.String()); err != nil {
			return nil, core.NewParseError(Name, "currency", "WithdrawFee", err)
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

func normalizeMarketSymbols(raw []rawTradePair) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rp := range raw {
		symbol, err := core.NormalizeSymbol(rp.Label)
		if err != nil {
			return nil, core.NewParseError(Name, "market symbol", "Label", err)
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

func normalizeMarkets(raw []rawTradePair) ([]core.Market, error) {
	out := make([]core.Market, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rp := range raw {
		symbol, err := core.NormalizeSymbol(rp.Label)
		if err != nil {
			return nil, core.NewParseError(Name, "market", "Label", err)
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}

		m := core.Market{
			Symbol: symbol,
			Base:   strings.ToUpper(rp.Symbol),
			Quote:  strings.ToUpper(rp.BaseSymbol),
			Active: rp.Status == "OK",
		}
		for _, f := range []struct {
			dest  *apd.Decimal
			field string
			value json.Number
		}{
			{&m.MinTradeSize, "MinimumTrade", rp.MinimumTrade},
			{&m.MaxTradeSize, "MaximumTrade", rp.MaximumTrade},
			{&m.MinPrice, "MinimumPrice", rp.MinimumPrice},
			{&m.MaxPrice, "MaximumPrice", rp.MaximumPrice},
		} {
			if err := core.ParseDecimal(f.dest, f.value.String()); err != nil {
				return nil, core.NewParseError(Name, "market", f.field, err)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func normalizeTicker(raw *rawMarket) (*core.Ticker, error) {
	symbol, err := core.NormalizeSymbol(raw.Label)
	if err != nil {
		return nil, core.NewParseError(Name, "ticker", "Label", err)
	}

	t := core.Ticker{Symbol: symbol}
	for _, f := range []struct {
		dest  *apd.Decimal
		field string
		value json.Number
	}{
		{&t.Bid, "BidPrice", raw.BidPrice},
		{&t.Ask, "AskPrice", raw.AskPrice},
		{&t.Last, "LastPrice", raw.LastPrice},
		{&t.Volume.BaseVolume, "Volume", raw.Volume},
	} {
		if err := core.ParseDecimal(f.dest, f.value.String()); err != nil {
			return nil, core.NewParseError(Name, "ticker", f.field, err)
		}
	}

	if err := core.DeriveQuoteVolume(&t.Volume.QuoteVolume, t.Volume.BaseVolume, t.Last); err != nil {
		return nil, core.NewParseError(Name, "ticker", "Volume", err)
	}
	t.Volume.Timestamp = time.Now().UTC()
	return &t, nil
}

func normalizeTickers(raw []rawMarket) ([]core.Ticker, error) {
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
		if err := core.ParseDecimal(&lvl.Price, e.Price.String()); err != nil {
			return nil, core.NewParseError(Name, "order book", "Price", err)
		}
		if err := core.ParseDecimal(&lvl.Quantity, e.Volume.String()); err != nil {
			return nil, core.NewParseError(Name, "order book", "Volume", err)
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}

// normalizeOrderBook trusts the exchange-supplied ordering: buys arrive
// price-descending and sells price-ascending.
func normalizeOrderBook(raw *rawOrderBook) (*core.OrderBook, error) {
	bids, err := normalizeBookSide(raw.Buy)
	if err != nil {
		return nil, err
	}
	asks, err := normalizeBookSide(raw.Sell)
	if err != nil {
		return nil, err
	}

	book := &core.OrderBook{Bids: bids, Asks: asks}
	if len(raw.Buy) > 0 {
		if symbol, err := core.NormalizeSymbol(raw.Buy[0].Label); err == nil {
			book.Symbol = symbol
		}
	}
	return book, nil
}

func normalizeTrades(raw []rawTrade) ([]core.Trade, error) {
	out := make([]core.Trade, 0, len(raw))
	for _, rt := range raw {
		side, err := parseSide(rt.Type)
		if err != nil {
			return nil, core.NewParseError(Name, "trade", "Type", err)
		}

		t := core.Trade{
			Side:      side,
			Timestamp: time.Unix(rt.Timestamp, 0).UTC(),
		}
		if err := core.ParseDecimal(&t.Price, rt.Price.String()); err != nil {
			return nil, core.NewParseError(Name, "trade", "Price", err)
		}
		if err := core.ParseDecimal(&t.Amount, rt.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "trade", "Amount", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func normalizeBalances(raw []rawBalance) ([]core.Balance, error) {
	out := make([]core.Balance, 0, len(raw))
	for _, rb := range raw {
		b := core.Balance{Currency: strings.ToUpper(rb.Symbol)}
		if err := core.ParseDecimal(&b.Total, rb.Total.String()); err != nil {
			return nil, core.NewParseError(Name, "balance", "Total", err)
		}
		if err := core.ParseDecimal(&b.Available, rb.Available.String()); err != nil {
			return nil, core.NewParseError(Name, "balance", "Available", err)
		}

		// Pending covers both unconfirmed deposits and queued withdrawals.
		var unconfirmed, withdrawing apd.Decimal
		if err := core.ParseDecimal(&unconfirmed, rb.Unconfirmed.String()); err != nil {
			return nil, core.NewParseError(Name, "balance", "Unconfirmed", err)
		}
		if err := core.ParseDecimal(&withdrawing, rb.PendingWithdraw.String()); err != nil {
			return nil, core.NewParseError(Name, "balance", "PendingWithdraw", err)
		}
		if _, err := core.DecimalContext.Add(&b.Pending, &unconfirmed, &withdrawing); err != nil {
			return nil, core.NewParseError(Name, "balance", "Pending", err)
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
			return nil, core.NewParseError(Name, "balance", "Available", err)
		}
		out[strings.ToUpper(rb.Symbol)] = available
	}
	return out, nil
}

func normalizeOpenOrders(raw []rawOpenOrder) ([]core.OrderResult, error) {
	out := make([]core.OrderResult, 0, len(raw))
	for _, ro := range raw {
		symbol, err := core.NormalizeSymbol(ro.Market)
		if err != nil {
			return nil, core.NewParseError(Name, "open order", "Market", err)
		}
		side, err := parseSide(ro.Type)
		if err != nil {
			return nil, core.NewParseError(Name, "open order", "Type", err)
		}
		placed, err := parseTimestamp(ro.TimeStamp)
		if err != nil {
			return nil, core.NewParseError(Name, "open order", "TimeStamp", err)
		}

		o := core.OrderResult{
			OrderID:   strconv.FormatInt(ro.OrderID, 10),
			Symbol:    symbol,
			Side:      side,
			Timestamp: placed,
		}
		if err := core.ParseDecimal(&o.Price, ro.Rate.String()); err != nil {
			return nil, core.NewParseError(Name, "open order", "Rate", err)
		}
		if err := core.ParseDecimal(&o.Amount, ro.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "open order", "Amount", err)
		}

		var remaining apd.Decimal
		if err := core.ParseDecimal(&remaining, ro.Remaining.String()); err != nil {
			return nil, core.NewParseError(Name, "open order", "Remaining", err)
		}
		if err := o.ReconcileFromRemaining(remaining); err != nil {
			return nil, core.NewParseError(Name, "open order", "Remaining", err)
		}
		out = append(out, o)
	}
	return out, nil
}

func normalizeCompletedOrders(raw []rawTradeHistory) ([]core.OrderResult, error) {
	out := make([]core.OrderResult, 0, len(raw))
	for _, rh := range raw {
		symbol, err := core.NormalizeSymbol(rh.Market)
		if err != nil {
			return nil, core.NewParseError(Name, "completed order", "Market", err)
		}
		side, err := parseSide(rh.Type)
		if err != nil {
			return nil, core.NewParseError(Name, "completed order", "Type", err)
		}
		executed, err := parseTimestamp(rh.TimeStamp)
		if err != nil {
			return nil, core.NewParseError(Name, "completed order", "TimeStamp", err)
		}

		o := core.OrderResult{
			OrderID:   strconv.FormatInt(rh.TradeID, 10),
			Symbol:    symbol,
			Side:      side,
			Timestamp: executed,
		}
		if err := core.ParseDecimal(&o.Price, rh.Rate.String()); err != nil {
			return nil, core.NewParseError(Name, "completed order", "Rate", err)
		}
		if err := core.ParseDecimal(&o.Amount, rh.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "completed order", "Amount", err)
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
			Currency: strings.ToUpper(rt.Currency),
			Address:  rt.Address,
			TxID:     rt.TxID,
		}

		switch rt.Status {
		case "Confirmed":
			tx.Status = core.TransactionComplete
		case "Pending", "UnConfirmed":
			tx.Status = core.TransactionProcessing
		default:
			tx.Status = core.TransactionUnknown
		}

		if err := core.ParseDecimal(&tx.Amount, rt.Amount.String()); err != nil {
			return nil, core.NewParseError(Name, "transaction", "Amount", err)
		}
		if err := core.ParseDecimal(&tx.Fee, rt.Fee.String()); err != nil {
			return nil, core.NewParseError(Name, "transaction", "Fee", err)
		}

		ts, err := parseTimestamp(rt.Timestamp)
		if err != nil {
			return nil, core.NewParseError(Name, "transaction", "Timestamp", err)
		}
		tx.Timestamp = ts
		out = append(out, tx)
	}
	return out, nil
}

func normalizeDepositAddress(raw *rawDepositAddress) (*core.DepositDetails, error) {
	if raw.Address == "" {
		return nil, core.NewParseError(Name, "deposit address", "Address", fmt.Errorf("empty address"))
	}
	return &core.DepositDetails{
		Currency: strings.ToUpper(raw.Currency),
		Address:  raw.Address,
	}, nil
}

// normalizeSubmitTrade maps the order placement acknowledgement. A null
// order id means the order matched in full on submission and nothing rests
// on the book.
func normalizeSubmitTrade(raw *rawSubmitTrade) (*core.OrderResult, error) {
	if raw.OrderID == nil {
		return &core.OrderResult{Result: core.FillComplete}, nil
	}
	return &core.OrderResult{
		OrderID: strconv.FormatInt(*raw.OrderID, 10),
		Result:  core.FillPending,
	}, nil
}
