package cryptopia

import (
	"github.com/zawasp/ExchangeSharp/pkg/core"
	"github.com/zawasp/ExchangeSharp/pkg/exchange"
)

// New creates a Cryptopia adapter. A nil config uses the defaults; private
// operations additionally need credentials on the config.
func New(config *core.Config, opts ...exchange.AdapterOption) (*exchange.Adapter, error) {
	if config == nil {
		config = core.DefaultConfig(Name)
	}
	return exchange.NewAdapter(config, NewProtocol(), opts...)
}
