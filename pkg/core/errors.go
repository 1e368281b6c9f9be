package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for handling and retry decisions.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the exchange throttled the caller.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates invalid or expired credentials.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeAPI indicates the exchange returned a structured error
	// payload inside an otherwise well-formed response.
	ErrorTypeAPI
	// ErrorTypeServerError indicates a server-side HTTP error.
	ErrorTypeServerError
	// ErrorTypeInsufficientFunds indicates the account lacks balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates exchange rules.
	ErrorTypeInvalidOrder
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"NOT_FOUND",
		"API",
		"SERVER_ERROR",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
	}[t]
}

// Sentinel errors for common conditions.
var (
	// ErrNoCredentials is returned when a private call is attempted without
	// configured API credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNotImplemented is returned for capabilities an exchange does not
	// support or whose upstream field semantics are undocumented. It is an
	// explicit signal; adapters never substitute guessed values.
	ErrNotImplemented = errors.New("operation not implemented for this exchange")
)

// ExchangeError is a structured error returned from an exchange, carrying
// the exchange's own message. It propagates to the caller everywhere except
// the documented order-book degrade path.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code from the response, if any.
	StatusCode int `json:"status_code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Exchange identifies which exchange returned this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (%d): %s", e.Exchange, e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Exchange, e.Type, e.Message)
}

// NewExchangeError creates an ExchangeError with the current timestamp.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// ParseError reports a missing or malformed field in an exchange response.
// It always propagates; values are never defaulted to zero or empty.
type ParseError struct {
	// Exchange identifies the exchange whose response failed to parse.
	Exchange string
	// Entity names the canonical entity being built (e.g., "ticker").
	Entity string
	// Field names the offending response field, when known.
	Field string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] parse %s: field %s: %v", e.Exchange, e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("[%s] parse %s: %v", e.Exchange, e.Entity, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError for the given entity and field.
func NewParseError(exchange, entity, field string, err error) *ParseError {
	return &ParseError{Exchange: exchange, Entity: entity, Field: field, Err: err}
}

// ErrorTypeFromStatus maps an HTTP status code to an error category.
func ErrorTypeFromStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuthentication
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	case statusCode >= 400:
		return ErrorTypeBadRequest
	default:
		return ErrorTypeUnknown
	}
}

// IsExchangeError returns the typed exchange error when err carries one.
func IsExchangeError(err error) (*ExchangeError, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsParseError returns true if the error is a response parse failure.
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// IsNotImplemented returns true if the error signals an unsupported
// capability.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}

// IsAuthenticationError returns true if the error is an authentication
// failure. Authentication errors are not retryable.
func IsAuthenticationError(err error) bool {
	if e, ok := IsExchangeError(err); ok {
		return e.Type == ErrorTypeAuthentication
	}
	return false
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	if e, ok := IsExchangeError(err); ok {
		return e.Type == ErrorTypeRateLimit
	}
	return false
}
