// Package transport provides the HTTP transport used by exchange adapters.
package transport

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/zawasp/ExchangeSharp/pkg/core"
)

// Client wraps a resty HTTP client with logging and configuration. Bodies
// are sent as the raw bytes produced by signing; no client-side JSON
// encoding happens here.
type Client struct {
	client *resty.Client
	logger zerolog.Logger
}

// NewClient creates an HTTP client rooted at baseURL, configured with the
// timeout and retry policy from config. Retries here cover transport-level
// failures only; callers decide semantic retries.
func NewClient(baseURL string, config *core.Config, logger zerolog.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.MaxRetries).
		SetRetryWaitTime(config.RetryWaitMin).
		SetRetryMaxWaitTime(config.RetryWaitMax)

	client.AddRequestMiddleware(func(c *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	return &Client{
		client: client,
		logger: logger,
	}
}

func paramsToStringMap(params core.Params) map[string]string {
	result := make(map[string]string, len(params))
	for k, v := range params {
		switch val := v.(type) {
		case string:
			result[k] = val
		case int:
			result[k] = strconv.Itoa(val)
		case int64:
			result[k] = strconv.FormatInt(val, 10)
		case float64:
			result[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			result[k] = strconv.FormatBool(val)
		default:
			result[k] = fmt.Sprintf("%v", val)
		}
	}
	return result
}

// Do executes an HTTP request and returns the response. It implements
// core.Transport.
func (c *Client) Do(ctx context.Context, req *core.Request) (*core.Response, error) {
	r := c.client.R().SetContext(ctx)

	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	if req.Query != nil {
		r.SetQueryParams(paramsToStringMap(req.Query))
	}

	if req.Body != nil {
		r.SetBody(req.Body)
	}

	var resp *resty.Response
	var err error

	switch req.Method {
	case "GET":
		resp, err = r.Get(req.Path)
	case "POST":
		resp, err = r.Post(req.Path)
	case "PUT":
		resp, err = r.Put(req.Path)
	case "DELETE":
		resp, err = r.Delete(req.Path)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", req.Method)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("http request failed")
		return nil, fmt.Errorf("http request: %w", err)
	}

	body := resp.Bytes()

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Int("size", len(body)).
		Msg("http response")

	headers := make(map[string]string)
	for k, v := range resp.Header() {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}

	return &core.Response{
		StatusCode: resp.StatusCode(),
		Body:       body,
		Headers:    headers,
	}, nil
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	return c.client.Close()
}
