package finexbox

import (
	"context"
	"fmt"

	"github.com/zawasp/ExchangeSharp/pkg/core"
	"github.com/zawasp/ExchangeSharp/pkg/exchange"
)

// Exchange is the FinexBox adapter. It layers one quirk over the shared
// pipeline: the exchange has no single-ticker endpoint, so GetTicker scans
// the full tickers list.
type Exchange struct {
	*exchange.Adapter
}

// New creates a FinexBox adapter. A nil config uses the defaults; private
// operations additionally need credentials on the config.
func New(config *core.Config, opts ...exchange.AdapterOption) (*Exchange, error) {
	if config == nil {
		config = core.DefaultConfig(Name)
	}
	adapter, err := exchange.NewAdapter(config, NewProtocol(), opts...)
	if err != nil {
		return nil, err
	}
	return &Exchange{Adapter: adapter}, nil
}

// GetTicker fetches all tickers and scans for the requested pair. The scan
// is linear; with a few hundred listed markets that costs less than the
// network round trip it rides on.
func (e *Exchange) GetTicker(ctx context.Context, symbol string) (*core.Ticker, error) {
	canonical, err := core.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	tickers, err := e.GetTickers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tickers {
		if tickers[i].Symbol == canonical {
			return &tickers[i], nil
		}
	}
	return nil, core.NewExchangeError(Name, core.ErrorTypeNotFound, 0, fmt.Sprintf("market %s not listed", canonical))
}

var _ exchange.Exchange = (*Exchange)(nil)
