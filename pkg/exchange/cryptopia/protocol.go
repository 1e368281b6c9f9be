// Package cryptopia implements the Cryptopia exchange adapter.
//
// Public data is served over plain GETs; private calls are POSTs
// authenticated with the "amx" Authorization scheme. All responses share
// the {"Success","Error","Data"} envelope.
package cryptopia

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
	"github.com/zawasp/ExchangeSharp/pkg/sign"
)

// Name is the exchange identifier.
const Name = "cryptopia"

// BaseURL is the REST API root.
const BaseURL = "https://www.cryptopia.co.nz/api"

const defaultBookDepth = 100

// Protocol implements core.Protocol for Cryptopia. It is stateless and
// safe for concurrent use.
type Protocol struct {
	baseURL string
	signer  sign.Signer
}

// NewProtocol creates the Cryptopia wire protocol.
func NewProtocol() *Protocol {
	return &Protocol{
		baseURL: BaseURL,
		signer:  sign.AuthHeaderSigner{Scheme: "amx"},
	}
}

// Name implements core.Protocol.
func (p *Protocol) Name() string { return Name }

// BaseURL implements core.Protocol.
func (p *Protocol) BaseURL() string { return p.baseURL }

// nativeSymbol renders a pair the way private payloads expect ("LTC/BTC").
func nativeSymbol(raw string) (string, error) {
	symbol, err := core.NormalizeSymbol(raw)
	if err != nil {
		return "", err
	}
	return core.FormatSymbol(symbol, "/")
}

// urlSymbol renders a pair the way URL paths expect ("LTC_BTC").
func urlSymbol(raw string) (string, error) {
	return core.NormalizeSymbol(raw)
}

func stringParam(params core.Params, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return v, nil
}

// BuildRequest implements core.Protocol.
func (p *Protocol) BuildRequest(_ context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetCurrencies:
		return core.NewRequest("GET", "/GetCurrencies"), nil

	case core.OpGetMarketSymbols, core.OpGetMarketsMetadata:
		return core.NewRequest("GET", "/GetTradePairs"), nil

	case core.OpGetTickers:
		return core.NewRequest("GET", "/GetMarkets"), nil

	case core.OpGetTicker:
		raw, err := stringParam(params, "symbol")
		if err != nil {
			return nil, err
		}
		symbol, err := urlSymbol(raw)
		if err != nil {
			return nil, err
		}
		return core.NewRequest("GET", "/GetMarket/"+symbol), nil

	case core.OpGetOrderBook:
		raw, err := stringParam(params, "symbol")
		if err != nil {
			return nil, err
		}
		symbol, err := urlSymbol(raw)
		if err != nil {
			return nil, err
		}
		depth := defaultBookDepth
		if d, ok := params["depth"].(int); ok && d > 0 {
			depth = d
		}
		return core.NewRequest("GET", fmt.Sprintf("/GetMarketOrders/%s/%d", symbol, depth)), nil

	case core.OpGetRecentTrades:
		raw, err := stringParam(params, "symbol")
		if err != nil {
			return nil, err
		}
		symbol, err := urlSymbol(raw)
		if err != nil {
			return nil, err
		}
		return core.NewRequest("GET", "/GetMarketHistory/"+symbol), nil

	case core.OpGetHistoricalTrades:
		raw, err := stringParam(params, "symbol")
		if err != nil {
			return nil, err
		}
		symbol, err := urlSymbol(raw)
		if err != nil {
			return nil, err
		}
		// The endpoint takes a look-back window in hours.
		hours := 24
		if t, ok := params["start_time"].(time.Time); ok {
			h := int(time.Since(t).Hours()) + 1
			if h > hours {
				hours = h
			}
		}
		return core.NewRequest("GET", fmt.Sprintf("/GetMarketHistory/%s/%d", symbol, hours)), nil

	case core.OpGetBalances, core.OpGetAvailableBalances:
		return core.NewRequest("POST", "/GetBalance").SetRequireAuth(true), nil

	case core.OpGetOpenOrders:
		req := core.NewRequest("POST", "/GetOpenOrders").SetRequireAuth(true)
		if raw, ok := params["symbol"].(string); ok && raw != "" {
			market, err := nativeSymbol(raw)
			if err != nil {
				return nil, err
			}
			req.SetPayload("Market", market)
		}
		return req, nil

	case core.OpGetCompletedOrders:
		req := core.NewRequest("POST", "/GetTradeHistory").SetRequireAuth(true)
		if raw, ok := params["symbol"].(string); ok && raw != "" {
			market, err := nativeSymbol(raw)
			if err != nil {
				return nil, err
			}
			req.SetPayload("Market", market)
		}
		return req, nil

	case core.OpPlaceOrder:
		return p.buildPlaceOrder(params)

	case core.OpCancelOrder:
		id, err := orderIDParam(params)
		if err != nil {
			return nil, err
		}
		return core.NewRequest("POST", "/CancelTrade").
			SetPayload("Type", "Trade").
			SetPayload("OrderId", id).
			SetRequireAuth(true), nil

	case core.OpGetDepositHistory:
		return core.NewRequest("POST", "/GetTransactions").
			SetPayload("Type", "Deposit").
			SetRequireAuth(true), nil

	case core.OpGetDepositAddress:
		currency, err := stringParam(params, "currency")
		if err != nil {
			return nil, err
		}
		return core.NewRequest("POST", "/GetDepositAddress").
			SetPayload("Currency", strings.ToUpper(currency)).
			SetRequireAuth(true), nil

	case core.OpWithdraw:
		return p.buildWithdraw(params)

	case core.OpGetOrderDetails:
		// No single-order lookup endpoint exists.
		return nil, core.ErrNotImplemented

	default:
		return nil, fmt.Errorf("unsupported operation %s", op)
	}
}

func orderIDParam(params core.Params) (int64, error) {
	raw, err := stringParam(params, "order_id")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("order id %q is not numeric", raw)
	}
	return id, nil
}

// decimalParam validates a decimal string and returns it as a json.Number
// so the payload carries the exact digits the caller supplied.
func decimalParam(params core.Params, key string) (json.Number, error) {
	raw, err := stringParam(params, key)
	if err != nil {
		return "", err
	}
	var d apd.Decimal
	if err := core.ParseDecimal(&d, raw); err != nil {
		return "", err
	}
	return json.Number(raw), nil
}

func (p *Protocol) buildPlaceOrder(params core.Params) (*core.Request, error) {
	raw, err := stringParam(params, "symbol")
	if err != nil {
		return nil, err
	}
	market, err := nativeSymbol(raw)
	if err != nil {
		return nil, err
	}

	side, err := stringParam(params, "side")
	if err != nil {
		return nil, err
	}
	var orderType string
	switch strings.ToUpper(side) {
	case "BUY":
		orderType = "Buy"
	case "SELL":
		orderType = "Sell"
	default:
		return nil, fmt.Errorf("unrecognized order side %q", side)
	}

	rate, err := decimalParam(params, "price")
	if err != nil {
		return nil, err
	}
	amount, err := decimalParam(params, "amount")
	if err != nil {
		return nil, err
	}

	return core.NewRequest("POST", "/SubmitTrade").
		SetPayload("Market", market).
		SetPayload("Type", orderType).
		SetPayload("Rate", rate).
		SetPayload("Amount", amount).
		SetRequireAuth(true), nil
}

func (p *Protocol) buildWithdraw(params core.Params) (*core.Request, error) {
	currency, err := stringParam(params, "currency")
	if err != nil {
		return nil, err
	}
	address, err := stringParam(params, "address")
	if err != nil {
		return nil, err
	}
	amount, err := decimalParam(params, "amount")
	if err != nil {
		return nil, err
	}

	req := core.NewRequest("POST", "/SubmitWithdraw").
		SetPayload("Currency", strings.ToUpper(currency)).
		SetPayload("Address", address).
		SetPayload("Amount", amount).
		SetRequireAuth(true)
	if tag, ok := params["tag"].(string); ok && tag != "" {
		req.SetPayload("PaymentId", tag)
	}
	return req, nil
}

// SignRequest implements core.Protocol.
func (p *Protocol) SignRequest(req *core.Request, creds core.Credentials, nonce string) error {
	material, err := p.signer.Sign(req.Method, p.baseURL+req.Path, req.Payload, creds, nonce)
	if err != nil {
		return err
	}
	material.Apply(req)
	return nil
}

type envelope struct {
	Success bool            `json:"Success"`
	Error   *string         `json:"Error"`
	Data    json.RawMessage `json:"Data"`
}

func classifyAPIError(message string) core.ErrorType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "authoriz") || strings.Contains(lower, "signature") || strings.Contains(lower, "api key"):
		return core.ErrorTypeAuthentication
	case strings.Contains(lower, "insufficient"):
		return core.ErrorTypeInsufficientFunds
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many"):
		return core.ErrorTypeRateLimit
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "not found"):
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeAPI
	}
}

// unwrap validates the HTTP status and the response envelope, returning the
// inner Data document.
func (p *Protocol) unwrap(resp *core.Response) (json.RawMessage, error) {
	if resp.IsError() {
		return nil, core.NewExchangeError(Name, core.ErrorTypeFromStatus(resp.StatusCode), resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	var env envelope
	if err := sonic.ConfigStd.Unmarshal(resp.Body, &env); err != nil {
		return nil, core.NewParseError(Name, "envelope", "", err)
	}
	if !env.Success {
		message := "request rejected"
		if env.Error != nil && *env.Error != "" {
			message = *env.Error
		}
		return nil, core.NewExchangeError(Name, classifyAPIError(message), resp.StatusCode, message)
	}
	return env.Data, nil
}

func decode[T any](data json.RawMessage, entity string) (T, error) {
	var v T
	if err := sonic.ConfigStd.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, core.NewParseError(Name, entity, "", err)
	}
	return v, nil
}

// ParseResponse implements core.Protocol.
func (p *Protocol) ParseResponse(op core.Operation, resp *core.Response) (any, error) {
	data, err := p.unwrap(resp)
	if err != nil {
		return nil, err
	}

	switch op {
	case core.OpGetCurrencies:
		raw, err := decode[[]rawCurrency](data, "currency")
		if err != nil {
			return nil, err
		}
		return normalizeCurrencies(raw)

	case core.OpGetMarketSymbols:
		raw, err := decode[[]rawTradePair](data, "market symbol")
		if err != nil {
			return nil, err
		}
		return normalizeMarketSymbols(raw)

	case core.OpGetMarketsMetadata:
		raw, err := decode[[]rawTradePair](data, "market")
		if err != nil {
			return nil, err
		}
		return normalizeMarkets(raw)

	case core.OpGetTicker:
		raw, err := decode[*rawMarket](data, "ticker")
		if err != nil {
			return nil, err
		}
		return normalizeTicker(raw)

	case core.OpGetTickers:
		raw, err := decode[[]rawMarket](data, "ticker")
		if err != nil {
			return nil, err
		}
		return normalizeTickers(raw)

	case core.OpGetOrderBook:
		raw, err := decode[*rawOrderBook](data, "order book")
		if err != nil {
			return nil, err
		}
		return normalizeOrderBook(raw)

	case core.OpGetRecentTrades, core.OpGetHistoricalTrades:
		raw, err := decode[[]rawTrade](data, "trade")
		if err != nil {
			return nil, err
		}
		return normalizeTrades(raw)

	case core.OpGetBalances:
		raw, err := decode[[]rawBalance](data, "balance")
		if err != nil {
			return nil, err
		}
		return normalizeBalances(raw)

	case core.OpGetAvailableBalances:
		raw, err := decode[[]rawBalance](data, "balance")
		if err != nil {
			return nil, err
		}
		return normalizeAvailableBalances(raw)

	case core.OpGetOpenOrders:
		raw, err := decode[[]rawOpenOrder](data, "open order")
		if err != nil {
			return nil, err
		}
		return normalizeOpenOrders(raw)

	case core.OpGetCompletedOrders:
		raw, err := decode[[]rawTradeHistory](data, "completed order")
		if err != nil {
			return nil, err
		}
		return normalizeCompletedOrders(raw)

	case core.OpPlaceOrder:
		raw, err := decode[*rawSubmitTrade](data, "order placement")
		if err != nil {
			return nil, err
		}
		return normalizeSubmitTrade(raw)

	case core.OpCancelOrder:
		ids, err := decode[[]int64](data, "cancellation")
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return "", nil
		}
		return strconv.FormatInt(ids[0], 10), nil

	case core.OpGetDepositHistory:
		raw, err := decode[[]rawTransaction](data, "transaction")
		if err != nil {
			return nil, err
		}
		return normalizeTransactions(raw)

	case core.OpGetDepositAddress:
		raw, err := decode[*rawDepositAddress](data, "deposit address")
		if err != nil {
			return nil, err
		}
		return normalizeDepositAddress(raw)

	case core.OpWithdraw:
		id, err := decode[int64](data, "withdrawal")
		if err != nil {
			return nil, err
		}
		return &core.WithdrawalResponse{
			ID:      strconv.FormatInt(id, 10),
			Success: true,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported operation %s", op)
	}
}

// SupportedOperations implements core.Protocol.
func (p *Protocol) SupportedOperations() []core.Operation {
	return []core.Operation{
		core.OpGetCurrencies,
		core.OpGetMarketSymbols,
		core.OpGetMarketsMetadata,
		core.OpGetTicker,
		core.OpGetTickers,
		core.OpGetOrderBook,
		core.OpGetRecentTrades,
		core.OpGetHistoricalTrades,
		core.OpGetBalances,
		core.OpGetAvailableBalances,
		core.OpGetCompletedOrders,
		core.OpGetOpenOrders,
		core.OpPlaceOrder,
		core.OpCancelOrder,
		core.OpGetDepositHistory,
		core.OpGetDepositAddress,
		core.OpWithdraw,
	}
}
