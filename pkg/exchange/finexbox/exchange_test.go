package finexbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zawasp/ExchangeSharp/pkg/core"
	"github.com/zawasp/ExchangeSharp/pkg/exchange"
)

type fakeTransport struct {
	responses map[string]string
	requests  []*core.Request
}

func (f *fakeTransport) Do(_ context.Context, req *core.Request) (*core.Response, error) {
	f.requests = append(f.requests, req)
	body, ok := f.responses[req.Path]
	if !ok {
		return &core.Response{StatusCode: 404, Body: []byte("not found")}, nil
	}
	return &core.Response{StatusCode: 200, Body: []byte(body)}, nil
}

const tickersBody = `{"success":true,"message":"","result":[
	{"market_name":"LTC_BTC","ask":0.0096,"bid":0.0094,"last":0.0095,"vol":100,"updated_time":1700000000},
	{"market_name":"ETH_BTC","ask":0.051,"bid":0.050,"last":0.0505,"vol":42,"updated_time":1700000000}]}`

func newTestExchange(t *testing.T, ft *fakeTransport) *Exchange {
	t.Helper()
	cfg := core.DefaultConfig(Name).WithCredentials(&core.Credentials{APIKey: "pub", SecretKey: "sec"})
	cfg.CircuitBreakerEnabled = false

	ex, err := New(cfg, exchange.WithTransport(ft))
	require.NoError(t, err)
	return ex
}

func TestExchangeName(t *testing.T) {
	ex := newTestExchange(t, &fakeTransport{})
	assert.Equal(t, "finexbox", ex.Name())
}

func TestGetTickerScansListing(t *testing.T) {
	ft := &fakeTransport{responses: map[string]string{"/public/gettickers": tickersBody}}
	ex := newTestExchange(t, ft)

	ticker, err := ex.GetTicker(context.Background(), "eth/btc")
	require.NoError(t, err)
	assert.Equal(t, "ETH_BTC", ticker.Symbol)
	assert.Equal(t, "0.0505", ticker.Last.String())

	// One wire call: the full listing was fetched and scanned.
	assert.Len(t, ft.requests, 1)
}

func TestGetTickerUnlistedMarket(t *testing.T) {
	ft := &fakeTransport{responses: map[string]string{"/public/gettickers": tickersBody}}
	ex := newTestExchange(t, ft)

	_, err := ex.GetTicker(context.Background(), "XMR_BTC")
	exErr, ok := core.IsExchangeError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeNotFound, exErr.Type)
}

func TestGetTickerMalformedSymbol(t *testing.T) {
	ft := &fakeTransport{}
	ex := newTestExchange(t, ft)

	_, err := ex.GetTicker(context.Background(), "LTCBTC")
	assert.Error(t, err)
	assert.Empty(t, ft.requests)
}

func TestTradeEndpointsNotImplemented(t *testing.T) {
	ex := newTestExchange(t, &fakeTransport{})

	_, err := ex.GetRecentTrades(context.Background(), "LTC_BTC")
	assert.ErrorIs(t, err, core.ErrNotImplemented)

	err = ex.GetHistoricalTrades(context.Background(), "LTC_BTC", func([]core.Trade) bool { return false })
	assert.ErrorIs(t, err, core.ErrNotImplemented)
}

func TestOrderBookSymbolFilledByAdapter(t *testing.T) {
	ft := &fakeTransport{responses: map[string]string{
		"/public/getorderbook": `{"success":true,"message":"","result":
			{"buy":[{"rate":0.0094,"quantity":10}],"sell":[{"rate":0.0096,"quantity":5}]}}`,
	}}
	ex := newTestExchange(t, ft)

	book, err := ex.GetOrderBook(context.Background(), "ltc/btc")
	require.NoError(t, err)
	assert.Equal(t, "LTC_BTC", book.Symbol)
	require.Len(t, book.Bids, 1)
	assert.Equal(t, "0.0094", book.Bids[0].Price.String())
}

func TestPrivateCallSignedWithKeyHash(t *testing.T) {
	ft := &fakeTransport{responses: map[string]string{
		"/private/getbalances": `{"success":true,"message":"","result":[
			{"currency":"BTC","total":10.5,"available":8,"pending":2.5}]}`,
	}}
	ex := newTestExchange(t, ft)

	balances, err := ex.GetBalances(context.Background())
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "BTC", balances[0].Currency)

	req := ft.requests[0]
	assert.Len(t, req.Headers["signature"], 128)
	assert.Contains(t, string(req.Body), `"key":"pub"`)
	assert.Contains(t, string(req.Body), `"nonce"`)
}
