package core

import "context"

// Protocol defines the exchange-specific wire behavior: request building,
// authentication and response parsing. One implementation exists per
// exchange; all are stateless and safe for concurrent use.
type Protocol interface {
	// Name returns the exchange identifier (e.g., "cryptopia").
	Name() string

	// BaseURL returns the exchange's API base URL.
	BaseURL() string

	// BuildRequest constructs the HTTP request for the given operation.
	// The params map carries operation-specific parameters.
	BuildRequest(ctx context.Context, op Operation, params Params) (*Request, error)

	// SignRequest applies the exchange's authentication protocol to the
	// request: it finalizes the body bytes and adds the required headers.
	// The nonce is opaque; signing is deterministic given the same inputs.
	SignRequest(req *Request, creds Credentials, nonce string) error

	// ParseResponse deserializes the response and normalizes it into the
	// canonical type for the operation.
	ParseResponse(op Operation, resp *Response) (any, error)

	// SupportedOperations returns the operations this exchange implements.
	SupportedOperations() []Operation
}
