package core

import "context"

// Response is the raw result of an executed exchange request.
type Response struct {
	// StatusCode is the HTTP status code returned by the exchange.
	StatusCode int
	// Body contains the raw response body bytes.
	Body []byte
	// Headers contains the response headers as key-value pairs.
	Headers map[string]string
}

// IsSuccess returns true if the status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// Transport executes prepared requests against an exchange endpoint.
// Retry, backoff and timeout policy belong to the transport; the adapter
// layer never retries on its own. Implementations are injected per adapter
// instance, which lets tests substitute a deterministic fake.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// NonceSource supplies the strictly increasing nonce every signed request
// must carry. Generation and sequencing live outside the adapter layer; the
// signing code treats the supplied value as opaque and never reorders or
// reuses one.
type NonceSource interface {
	Next() string
}
