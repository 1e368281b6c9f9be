// Package finexbox implements the FinexBox exchange adapter.
//
// Public data is served over plain GETs; private calls are POSTs whose JSON
// body carries the API key and nonce, authenticated with an HMAC-SHA512
// digest of the body in the "signature" header. All responses share the
// {"success","message","result"} envelope.
package finexbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
	"github.com/zawasp/ExchangeSharp/pkg/sign"
)

// Name is the exchange identifier.
const Name = "finexbox"

// BaseURL is the REST API root.
const BaseURL = "https://xapi.finexbox.com"

// Protocol implements core.Protocol for FinexBox. It is stateless and safe
// for concurrent use.
type Protocol struct {
	baseURL string
	signer  sign.Signer
}

// NewProtocol creates the FinexBox wire protocol.
func NewProtocol() *Protocol {
	return &Protocol{
		baseURL: BaseURL,
		signer: sign.KeyHashSigner{
			Header:     "signature",
			KeyField:   "key",
			NonceField: "nonce",
		},
	}
}

// Name implements core.Protocol.
func (p *Protocol) Name() string { return Name }

// BaseURL implements core.Protocol.
func (p *Protocol) BaseURL() string { return p.baseURL }

func stringParam(params core.Params, key string) (string, error) {
	v, ok := params[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	return v, nil
}

// marketParam normalizes the symbol parameter; the exchange already uses
// the canonical underscore form natively.
func marketParam(params core.Params) (string, error) {
	raw, err := stringParam(params, "symbol")
	if err != nil {
		return "", err
	}
	return core.NormalizeSymbol(raw)
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

// BuildRequest implements core.Protocol.
func (p *Protocol) BuildRequest(_ context.Context, op core.Operation, params core.Params) (*core.Request, error) {
	switch op {
	case core.OpGetCurrencies:
		return core.NewRequest("GET", "/public/getcurrencies"), nil

	case core.OpGetMarketSymbols, core.OpGetMarketsMetadata:
		return core.NewRequest("GET", "/public/getmarkets"), nil

	case core.OpGetTickers:
		return core.NewRequest("GET", "/public/gettickers"), nil

	case core.OpGetOrderBook:
		market, err := marketParam(params)
		if err != nil {
			return nil, err
		}
		req := core.NewRequest("GET", "/public/getorderbook").SetQuery("market", market)
		if d, ok := params["depth"].(int); ok && d > 0 {
			req.SetQuery("depth", d)
		}
		return req, nil

	case core.OpGetBalances, core.OpGetAvailableBalances:
		return core.NewRequest("POST", "/private/getbalances").SetRequireAuth(true), nil

	case core.OpGetOpenOrders:
		req := core.NewRequest("POST", "/private/getopenorders").SetRequireAuth(true)
		if raw, ok := params["symbol"].(string); ok && raw != "" {
			market, err := core.NormalizeSymbol(raw)
			if err != nil {
				return nil, err
			}
			req.SetPayload("market", market)
		}
		return req, nil

	case core.OpGetCompletedOrders:
		req := core.NewRequest("POST", "/private/getorders").SetRequireAuth(true)
		if raw, ok := params["symbol"].(string); ok && raw != "" {
			market, err := core.NormalizeSymbol(raw)
			if err != nil {
				return nil, err
			}
			req.SetPayload("market", market)
		}
		return req, nil

	case core.OpGetOrderDetails:
		id, err := stringParam(params, "order_id")
		if err != nil {
			return nil, err
		}
		return core.NewRequest("POST", "/private/getorder").
			SetPayload("order_id", id).
			SetRequireAuth(true), nil

	case core.OpPlaceOrder:
		return p.buildPlaceOrder(params)

	case core.OpCancelOrder:
		id, err := stringParam(params, "order_id")
		if err != nil {
			return nil, err
		}
		return core.NewRequest("POST", "/private/cancelorder").
			SetPayload("order_id", id).
			SetRequireAuth(true), nil

	case core.OpGetDepositHistory:
		req := core.NewRequest("POST", "/private/getdeposithistory").SetRequireAuth(true)
		if currency, ok := params["currency"].(string); ok && currency != "" {
			req.SetPayload("currency", strings.ToUpper(currency))
		}
		return req, nil

	case core.OpGetDepositAddress:
		currency, err := stringParam(params, "currency")
		if err != nil {
			return nil, err
		}
		return core.NewRequest("POST", "/private/getdepositaddress").
			SetPayload("currency", strings.ToUpper(currency)).
			SetRequireAuth(true), nil

	case core.OpWithdraw:
		return p.buildWithdraw(params)

	case core.OpGetRecentTrades, core.OpGetHistoricalTrades:
		// The trade history endpoint exists upstream but its field
		// semantics are undocumented; guessing them would fabricate data.
		return nil, core.ErrNotImplemented

	case core.OpGetTicker:
		// No single-ticker endpoint; Exchange.GetTicker scans gettickers.
		return nil, core.ErrNotImplemented

	default:
		return nil, fmt.Errorf("unsupported operation %s", op)
	}
}

func (p *Protocol) buildPlaceOrder(params core.Params) (*core.Request, error) {
	market, err := marketParam(params)
	if err != nil {
		return nil, err
	}

	side, err := stringParam(params, "side")
	if err != nil {
		return nil, err
	}
	orderType := strings.ToLower(side)
	if orderType != "buy" && orderType != "sell" {
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

	return core.NewRequest("POST", "/private/submitorder").
		SetPayload("market", market).
		SetPayload("type", orderType).
		SetPayload("rate", rate).
		SetPayload("amount", amount).
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

	req := core.NewRequest("POST", "/private/submitwithdraw").
		SetPayload("currency", strings.ToUpper(currency)).
		SetPayload("address", address).
		SetPayload("amount", amount).
		SetRequireAuth(true)
	if tag, ok := params["tag"].(string); ok && tag != "" {
		req.SetPayload("payment_id", tag)
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
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func classifyAPIError(message string) core.ErrorType {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "signature") || strings.Contains(lower, "key") || strings.Contains(lower, "nonce"):
		return core.ErrorTypeAuthentication
	case strings.Contains(lower, "insufficient"):
		return core.ErrorTypeInsufficientFunds
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many"):
		return core.ErrorTypeRateLimit
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "not found") || strings.Contains(lower, "not exist"):
		return core.ErrorTypeBadRequest
	default:
		return core.ErrorTypeAPI
	}
}

// unwrap validates the HTTP status and the response envelope, returning the
// inner result document.
func (p *Protocol) unwrap(resp *core.Response) (json.RawMessage, error) {
	if resp.IsError() {
		return nil, core.NewExchangeError(Name, core.ErrorTypeFromStatus(resp.StatusCode), resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	var env envelope
	if err := sonic.ConfigStd.Unmarshal(resp.Body, &env); err != nil {
		return nil, core.NewParseError(Name, "envelope", "", err)
	}
	if !env.Success {
		message := env.Message
		if message == "" {
			message = "request rejected"
		}
		return nil, core.NewExchangeError(Name, classifyAPIError(message), resp.StatusCode, message)
	}
	return env.Result, nil
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
		raw, err := decode[[]rawMarket](data, "market symbol")
		if err != nil {
			return nil, err
		}
		return normalizeMarketSymbols(raw)

	case core.OpGetMarketsMetadata:
		raw, err := decode[[]rawMarket](data, "market")
		if err != nil {
			return nil, err
		}
		return normalizeMarkets(raw)

	case core.OpGetTickers:
		raw, err := decode[[]rawTicker](data, "ticker")
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
		raw, err := decode[[]rawOrder](data, "open order")
		if err != nil {
			return nil, err
		}
		return normalizeOpenOrders(raw)

	case core.OpGetCompletedOrders:
		raw, err := decode[[]rawOrder](data, "completed order")
		if err != nil {
			return nil, err
		}
		return normalizeCompletedOrders(raw)

	case core.OpGetOrderDetails:
		raw, err := decode[*rawOrder](data, "order")
		if err != nil {
			return nil, err
		}
		return normalizeOrder(raw, "order")

	case core.OpPlaceOrder:
		raw, err := decode[*rawSubmitOrder](data, "order placement")
		if err != nil {
			return nil, err
		}
		return &core.OrderResult{
			OrderID: strconv.FormatInt(raw.OrderID, 10),
			Result:  core.FillPending,
		}, nil

	case core.OpCancelOrder:
		// A truthy envelope is the whole acknowledgement.
		return "", nil

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
		raw, err := decode[*rawWithdraw](data, "withdrawal")
		if err != nil {
			return nil, err
		}
		return &core.WithdrawalResponse{
			ID:      raw.WithdrawID.String(),
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
		core.OpGetBalances,
		core.OpGetAvailableBalances,
		core.OpGetCompletedOrders,
		core.OpGetOpenOrders,
		core.OpGetOrderDetails,
		core.OpPlaceOrder,
		core.OpCancelOrder,
		core.OpGetDepositHistory,
		core.OpGetDepositAddress,
		core.OpWithdraw,
	}
}
