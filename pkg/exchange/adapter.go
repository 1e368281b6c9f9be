package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"github.com/zawasp/ExchangeSharp/internal/circuitbreaker"
	"github.com/zawasp/ExchangeSharp/internal/nonce"
	"github.com/zawasp/ExchangeSharp/internal/ratelimit"
	"github.com/zawasp/ExchangeSharp/internal/transport"
	"github.com/zawasp/ExchangeSharp/pkg/core"
)

// Adapter implements Exchange on top of a core.Protocol. The protocol owns
// everything exchange-specific (paths, signing scheme, response shapes);
// the adapter owns the shared pipeline: build, sign, pace, execute, parse.
//
// An Adapter carries no request state and is safe for concurrent use.
type Adapter struct {
	config    *core.Config
	protocol  core.Protocol
	transport core.Transport
	nonces    core.NonceSource
	limiter   *ratelimit.Limiter
	breaker   *circuitbreaker.Breaker
	logger    zerolog.Logger
}

// AdapterOption customizes an Adapter at construction.
type AdapterOption func(*Adapter)

// WithTransport replaces the HTTP transport. Tests use this to substitute
// a deterministic fake.
func WithTransport(t core.Transport) AdapterOption {
	return func(a *Adapter) {
		a.transport = t
	}
}

// WithNonceSource replaces the nonce source.
func WithNonceSource(n core.NonceSource) AdapterOption {
	return func(a *Adapter) {
		a.nonces = n
	}
}

// WithLogger replaces the default no-op logger.
func WithLogger(logger zerolog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter wires a protocol into the shared execution pipeline.
func NewAdapter(config *core.Config, protocol core.Protocol, opts ...AdapterOption) (*Adapter, error) {
	if config == nil {
		config = core.DefaultConfig(protocol.Name())
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	a := &Adapter{
		config:   config,
		protocol: protocol,
		logger:   zerolog.Nop(),
		limiter:  ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod),
	}

	if config.CircuitBreakerEnabled {
		a.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.transport == nil {
		a.transport = transport.NewClient(protocol.BaseURL(), config, a.logger)
	}
	if a.nonces == nil {
		a.nonces = nonce.NewCounter()
	}

	return a, nil
}

// Name implements Exchange.
func (a *Adapter) Name() string {
	return a.protocol.Name()
}

// Protocol returns the underlying wire protocol.
func (a *Adapter) Protocol() core.Protocol {
	return a.protocol
}

// execute signs the request if needed, then runs it through the breaker,
// the limiter and the transport.
func (a *Adapter) execute(ctx context.Context, req *core.Request) (*core.Response, error) {
	if req.RequireAuth {
		if a.config.Credentials == nil {
			return nil, core.ErrNoCredentials
		}
		if err := a.protocol.SignRequest(req, *a.config.Credentials, a.nonces.Next()); err != nil {
			return nil, fmt.Errorf("sign request: %w", err)
		}
	}

	if a.breaker != nil && !a.breaker.Allow() {
		return nil, core.NewExchangeError(a.protocol.Name(), core.ErrorTypeNetwork, 0, "circuit breaker open")
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := a.transport.Do(ctx, req)
	if a.breaker != nil {
		a.breaker.Record(err == nil && resp.IsSuccess())
	}
	if err != nil {
		return nil, core.NewExchangeError(a.protocol.Name(), core.ErrorTypeNetwork, 0, err.Error())
	}
	return resp, nil
}

// call runs the full pipeline for one operation.
func (a *Adapter) call(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	req, err := a.protocol.BuildRequest(ctx, op, params)
	if err != nil {
		return nil, err
	}

	resp, err := a.execute(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := a.protocol.ParseResponse(op, resp)
	if err != nil {
		a.logger.Debug().
			Str("exchange", a.protocol.Name()).
			Str("operation", op.String()).
			Err(err).
			Msg("operation failed")
		return nil, err
	}
	return result, nil
}

// GetCurrencies implements Exchange.
func (a *Adapter) GetCurrencies(ctx context.Context) ([]core.Currency, error) {
	result, err := a.call(ctx, core.OpGetCurrencies, nil)
	if err != nil {
		return nil, err
	}
	return result.([]core.Currency), nil
}

// GetMarketSymbols implements Exchange.
func (a *Adapter) GetMarketSymbols(ctx context.Context) ([]string, error) {
	result, err := a.call(ctx, core.OpGetMarketSymbols, nil)
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

// GetMarketsMetadata implements Exchange.
func (a *Adapter) GetMarketsMetadata(ctx context.Context) ([]core.Market, error) {
	result, err := a.call(ctx, core.OpGetMarketsMetadata, nil)
	if err != nil {
		return nil, err
	}
	return result.([]core.Market), nil
}

// GetTicker implements Exchange.
func (a *Adapter) GetTicker(ctx context.Context, symbol string) (*core.Ticker, error) {
	result, err := a.call(ctx, core.OpGetTicker, core.Params{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	return result.(*core.Ticker), nil
}

// GetTickers implements Exchange.
func (a *Adapter) GetTickers(ctx context.Context) ([]core.Ticker, error) {
	result, err := a.call(ctx, core.OpGetTickers, nil)
	if err != nil {
		return nil, err
	}
	return result.([]core.Ticker), nil
}

// GetOrderBook implements Exchange. Transport and API-level failures
// degrade to an empty book; malformed request parameters and parse
// failures still surface as errors.
func (a *Adapter) GetOrderBook(ctx context.Context, symbol string, opts ...Option) (*core.OrderBook, error) {
	canonical, err := core.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	o := ApplyOptions(opts...)
	params := core.Params{"symbol": symbol}
	if o.Depth > 0 {
		params["depth"] = o.Depth
	}

	req, err := a.protocol.BuildRequest(ctx, core.OpGetOrderBook, params)
	if err != nil {
		return nil, err
	}

	resp, err := a.execute(ctx, req)
	if err != nil {
		a.logger.Warn().
			Str("exchange", a.protocol.Name()).
			Str("symbol", symbol).
			Err(err).
			Msg("order book fetch failed, returning empty book")
		return emptyOrderBook(canonical), nil
	}

	result, err := a.protocol.ParseResponse(core.OpGetOrderBook, resp)
	if err != nil {
		if _, ok := core.IsExchangeError(err); ok {
			a.logger.Warn().
				Str("exchange", a.protocol.Name()).
				Str("symbol", symbol).
				Err(err).
				Msg("order book request rejected, returning empty book")
			return emptyOrderBook(canonical), nil
		}
		return nil, err
	}

	book := result.(*core.OrderBook)
	if book.Symbol == "" {
		book.Symbol = canonical
	}
	return book, nil
}

func emptyOrderBook(symbol string) *core.OrderBook {
	return &core.OrderBook{
		Symbol: symbol,
		Bids:   []core.OrderBookLevel{},
		Asks:   []core.OrderBookLevel{},
	}
}

// GetRecentTrades implements Exchange.
func (a *Adapter) GetRecentTrades(ctx context.Context, symbol string) ([]core.Trade, error) {
	result, err := a.call(ctx, core.OpGetRecentTrades, core.Params{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	return result.([]core.Trade), nil
}

// GetHistoricalTrades implements Exchange.
func (a *Adapter) GetHistoricalTrades(ctx context.Context, symbol string, callback func([]core.Trade) bool, opts ...Option) error {
	o := ApplyOptions(opts...)
	params := core.Params{"symbol": symbol}
	if !o.StartTime.IsZero() {
		params["start_time"] = o.StartTime
	}

	result, err := a.call(ctx, core.OpGetHistoricalTrades, params)
	if err != nil {
		return err
	}

	callback(result.([]core.Trade))
	return nil
}

// GetBalances implements Exchange.
func (a *Adapter) GetBalances(ctx context.Context) ([]core.Balance, error) {
	result, err := a.call(ctx, core.OpGetBalances, nil)
	if err != nil {
		return nil, err
	}
	return result.([]core.Balance), nil
}

// GetAvailableBalances implements Exchange.
func (a *Adapter) GetAvailableBalances(ctx context.Context) (map[string]apd.Decimal, error) {
	result, err := a.call(ctx, core.OpGetAvailableBalances, nil)
	if err != nil {
		return nil, err
	}
	return result.(map[string]apd.Decimal), nil
}

// GetCompletedOrders implements Exchange.
func (a *Adapter) GetCompletedOrders(ctx context.Context, symbol string) ([]core.OrderResult, error) {
	params := core.Params{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	result, err := a.call(ctx, core.OpGetCompletedOrders, params)
	if err != nil {
		return nil, err
	}
	return result.([]core.OrderResult), nil
}

// GetOpenOrders implements Exchange.
func (a *Adapter) GetOpenOrders(ctx context.Context, symbol string) ([]core.OrderResult, error) {
	params := core.Params{}
	if symbol != "" {
		params["symbol"] = symbol
	}
	result, err := a.call(ctx, core.OpGetOpenOrders, params)
	if err != nil {
		return nil, err
	}
	return result.([]core.OrderResult), nil
}

// GetOrderDetails implements Exchange.
func (a *Adapter) GetOrderDetails(ctx context.Context, orderID string) (*core.OrderResult, error) {
	result, err := a.call(ctx, core.OpGetOrderDetails, core.Params{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	return result.(*core.OrderResult), nil
}

// PlaceOrder implements Exchange.
func (a *Adapter) PlaceOrder(ctx context.Context, req *OrderRequest) (*core.OrderResult, error) {
	params := core.Params{
		"symbol": req.Symbol,
		"side":   req.Side.String(),
		"price":  req.Price.Text('f'),
		"amount": req.Amount.Text('f'),
	}
	result, err := a.call(ctx, core.OpPlaceOrder, params)
	if err != nil {
		return nil, err
	}

	order := result.(*core.OrderResult)
	if order.Symbol == "" {
		order.Symbol = req.Symbol
	}
	order.Side = req.Side
	order.Price = req.Price
	order.Amount = req.Amount
	if order.Result == core.FillComplete {
		// Some exchanges fill small orders synchronously and report no
		// resting order; the fill then covers the full requested amount.
		order.ReconcileCompleted()
	}
	return order, nil
}

// CancelOrder implements Exchange.
func (a *Adapter) CancelOrder(ctx context.Context, orderID string) error {
	_, err := a.call(ctx, core.OpCancelOrder, core.Params{"order_id": orderID})
	return err
}

// GetDepositHistory implements Exchange. Exchanges whose history endpoint
// has no server-side currency filter return all records; the filter is
// applied here so every adapter behaves the same.
func (a *Adapter) GetDepositHistory(ctx context.Context, currency string) ([]core.Transaction, error) {
	result, err := a.call(ctx, core.OpGetDepositHistory, core.Params{"currency": currency})
	if err != nil {
		return nil, err
	}

	txs := result.([]core.Transaction)
	if currency == "" {
		return txs, nil
	}

	want := strings.ToUpper(currency)
	filtered := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Currency == want {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

// GetDepositAddress implements Exchange.
func (a *Adapter) GetDepositAddress(ctx context.Context, currency string) (*core.DepositDetails, error) {
	result, err := a.call(ctx, core.OpGetDepositAddress, core.Params{"currency": currency})
	if err != nil {
		return nil, err
	}
	return result.(*core.DepositDetails), nil
}

// Withdraw implements Exchange.
func (a *Adapter) Withdraw(ctx context.Context, req *core.WithdrawalRequest) (*core.WithdrawalResponse, error) {
	params := core.Params{
		"currency": req.Currency,
		"address":  req.Address,
		"amount":   req.Amount.Text('f'),
	}
	if req.Tag != "" {
		params["tag"] = req.Tag
	}
	result, err := a.call(ctx, core.OpWithdraw, params)
	if err != nil {
		return nil, err
	}
	return result.(*core.WithdrawalResponse), nil
}

var _ Exchange = (*Adapter)(nil)
