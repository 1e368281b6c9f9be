package core

import "maps"

// Params is a bag of operation or payload parameters.
type Params map[string]any

// Request describes one HTTP call to an exchange before execution.
// For private calls the Payload map is the JSON body to be signed; signing
// replaces it with the final Body bytes and adds authentication headers.
type Request struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       Params            `json:"query,omitempty"`
	Payload     Params            `json:"payload,omitempty"`
	Body        []byte            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequireAuth bool              `json:"require_auth"`
}

// NewRequest creates a request with the given method and relative path.
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  method,
		Path:    path,
		Headers: make(map[string]string),
	}
}

// SetQuery sets a single URL query parameter.
func (r *Request) SetQuery(key string, value any) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	r.Query[key] = value
	return r
}

// SetQueryParams merges params into the URL query.
func (r *Request) SetQueryParams(params Params) *Request {
	if r.Query == nil {
		r.Query = make(Params)
	}
	maps.Copy(r.Query, params)
	return r
}

// SetPayload sets a single JSON body field.
func (r *Request) SetPayload(key string, value any) *Request {
	if r.Payload == nil {
		r.Payload = make(Params)
	}
	r.Payload[key] = value
	return r
}

// SetHeader sets a single request header.
func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

// SetRequireAuth marks the request as needing signing before dispatch.
func (r *Request) SetRequireAuth(require bool) *Request {
	r.RequireAuth = require
	return r
}
