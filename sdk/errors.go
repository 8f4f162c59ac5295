package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// Common errors returned by the SDK. These can be used with errors.Is()
// to check for specific error conditions.
//
// Example:
//
//	_, err := sdk.ExecuteBlocking(ctx, client, search)
//	if errors.Is(err, sdk.ErrInvalidArgument) {
//	    // The request was rejected before it was sent
//	} else if errors.Is(err, sdk.ErrTimeout) {
//	    // Handle timeout
//	} else if errors.Is(err, sdk.ErrCircuitOpen) {
//	    // Circuit breaker is open, platform is failing
//	}
var (
	// ErrInvalidConfig is returned when the configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidArgument is returned when a request cannot be built from the
	// arguments given to a builder
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned when the platform answers 404
	ErrNotFound = errors.New("resource not found")

	// ErrTimeout is returned when a request times out
	ErrTimeout = errors.New("request timeout")

	// ErrServerError is returned for 5xx server errors
	ErrServerError = errors.New("server error")

	// ErrInvalidResponse is returned when the response body cannot be decoded
	ErrInvalidResponse = errors.New("invalid response from server")

	// ErrContextCanceled is returned when the context is canceled before completion
	ErrContextCanceled = errors.New("context canceled")

	// ErrCircuitOpen is returned when the circuit breaker is open
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrRateLimited is returned when the request is rate limited
	ErrRateLimited = errors.New("rate limited")

	// ErrClientClosed is returned when a request is executed on a closed client
	ErrClientClosed = errors.New("client is closed")
)

// ErrorType represents the type of error for categorization and handling.
//
// Example:
//
//	var sdkErr *sdk.Error
//	if errors.As(err, &sdkErr) {
//	    switch sdkErr.Type {
//	    case sdk.ErrorTypeInvalidArgument:
//	        // Fix the request, sending it again will not help
//	    case sdk.ErrorTypeRateLimit:
//	        // Back off and try later
//	    case sdk.ErrorTypeDeserialization:
//	        // The descriptor does not match the payload
//	    }
//	}
type ErrorType int

const (
	// ErrorTypeUnknown represents an unknown or unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork represents network-related errors (connection refused, DNS, etc.)
	ErrorTypeNetwork
	// ErrorTypeTimeout represents timeout errors (request timeout, context deadline)
	ErrorTypeTimeout
	// ErrorTypeServer represents server errors (5xx HTTP status codes)
	ErrorTypeServer
	// ErrorTypeClient represents client errors (4xx HTTP status codes)
	ErrorTypeClient
	// ErrorTypeCircuitOpen represents circuit breaker open state errors
	ErrorTypeCircuitOpen
	// ErrorTypeRateLimit represents rate limiting errors (429 Too Many Requests)
	ErrorTypeRateLimit
	// ErrorTypeInvalidArgument represents arguments a builder refused
	ErrorTypeInvalidArgument
	// ErrorTypeDeserialization represents a body that did not match its descriptor
	ErrorTypeDeserialization
	// ErrorTypeCanceled represents a request canceled by its caller
	ErrorTypeCanceled
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeTimeout:
		return "timeout"
	case ErrorTypeServer:
		return "server"
	case ErrorTypeClient:
		return "client"
	case ErrorTypeCircuitOpen:
		return "circuit_open"
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeInvalidArgument:
		return "invalid_argument"
	case ErrorTypeDeserialization:
		return "deserialization"
	case ErrorTypeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the execution engine. Every
// failure, whether raised while building, sending or decoding a request,
// arrives wrapped in an *Error so callers can branch on Type.
//
// The Error type implements the error interface and supports error wrapping
// via errors.Is() and errors.As().
//
// Example:
//
//	var sdkErr *sdk.Error
//	if errors.As(err, &sdkErr) {
//	    fmt.Printf("Error Type: %s\n", sdkErr.Type)
//	    if sdkErr.Context != nil {
//	        fmt.Printf("Failed URL: %s\n", sdkErr.Context.URL)
//	    }
//	}
type Error struct {
	// Type categorizes the error for handling decisions
	Type ErrorType `json:"type"`
	// Code is an optional error code from the platform
	Code string `json:"code,omitempty"`
	// Message is a human-readable error description
	Message string `json:"message"`
	// Details contains additional error metadata
	Details map[string]interface{} `json:"details,omitempty"`
	// RequestID is the correlation id sent with the request
	RequestID string `json:"request_id,omitempty"`
	// Timestamp is when the error occurred
	Timestamp time.Time `json:"timestamp"`
	// Retryable is advice for the caller. The SDK itself never retries.
	Retryable bool `json:"retryable"`
	// Context provides additional context about the failed operation
	Context *ErrorContext `json:"context,omitempty"`
	// wrapped is the underlying error, if any
	wrapped error
}

// ErrorContext provides additional context about the request that failed.
type ErrorContext struct {
	// URL is the full URL of the failed request
	URL string `json:"url,omitempty"`
	// Method is the HTTP method used (GET, POST, DELETE)
	Method string `json:"method,omitempty"`
	// StatusCode is the HTTP status, zero when no response was received
	StatusCode int `json:"status_code,omitempty"`
	// Duration is how long the operation took before failing
	Duration time.Duration `json:"duration,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Context != nil && e.Context.URL != "" {
		return fmt.Sprintf("%s error: %s (url: %s)", e.Type, e.Message, e.Context.URL)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is implements errors.Is
func (e *Error) Is(target error) bool {
	switch e.Type {
	case ErrorTypeTimeout:
		return target == ErrTimeout
	case ErrorTypeServer:
		return target == ErrServerError
	case ErrorTypeCircuitOpen:
		return target == ErrCircuitOpen
	case ErrorTypeRateLimit:
		return target == ErrRateLimited
	case ErrorTypeInvalidArgument:
		return target == ErrInvalidArgument
	case ErrorTypeDeserialization:
		return target == ErrInvalidResponse
	case ErrorTypeCanceled:
		return target == ErrContextCanceled
	case ErrorTypeClient:
		if target == ErrNotFound {
			var be *BackendError
			return errors.As(e.wrapped, &be) && be.StatusCode == http.StatusNotFound
		}
	}
	return false
}

// IsRetryable returns true if sending the same request again may succeed
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// WithContext adds error context
func (e *Error) WithContext(ctx *ErrorContext) *Error {
	e.Context = ctx
	return e
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewError creates a new enhanced error
func NewError(errType ErrorType, message string, wrapped error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Retryable: isRetryableType(errType),
		wrapped:   wrapped,
	}
}

// NewErrorWithCode creates a new enhanced error with a code
func NewErrorWithCode(errType ErrorType, code, message string, wrapped error) *Error {
	err := NewError(errType, message, wrapped)
	err.Code = code
	return err
}

// InvalidArgument reports arguments a builder refused. The request never
// reaches the network.
//
// Example:
//
//	if expression == "" {
//	    return sdk.InvalidArgument("Please provide a non-empty facet expression.")
//	}
func InvalidArgument(format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return NewError(ErrorTypeInvalidArgument, msg, ErrInvalidArgument)
}

// isRetryableType determines if an error type is retryable
func isRetryableType(errType ErrorType) bool {
	switch errType {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeServer, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// BackendError is a response from the platform whose status was not one the
// request expected. It carries the raw body so nothing the platform said is
// lost.
//
// Example:
//
//	var backendErr *sdk.BackendError
//	if errors.As(err, &backendErr) {
//	    log.Printf("%d from %s: %s", backendErr.StatusCode, backendErr.URL, backendErr.Body)
//	    for _, e := range backendErr.Errors {
//	        log.Printf("  %s: %s", e.Code, e.Message)
//	    }
//	}
type BackendError struct {
	// URL is the full request URL
	URL string `json:"-"`
	// Method is the HTTP method of the request
	Method string `json:"-"`
	// StatusCode is the HTTP status code from the response
	StatusCode int `json:"statusCode"`
	// Body is the raw response body
	Body string `json:"-"`
	// Message is the platform's summary, when the body carried one
	Message string `json:"message,omitempty"`
	// Errors are the individual problems the platform reported
	Errors []PlatformError `json:"errors,omitempty"`
}

// PlatformError is one entry of the "errors" array in a platform error body.
type PlatformError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *BackendError) Error() string {
	return fmt.Sprintf("the backend returned an error response: %s\n[%d]\n%s", e.URL, e.StatusCode, e.Body)
}

// IsNotFound returns true if the platform answered 404
func (e *BackendError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsServerError returns true if the error is a server error
func (e *BackendError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsClientError returns true if the error is a client error
func (e *BackendError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ToError converts the BackendError to the enhanced Error type
func (e *BackendError) ToError() *Error {
	errType := ErrorTypeClient
	if e.IsServerError() {
		errType = ErrorTypeServer
	} else if e.StatusCode == http.StatusTooManyRequests {
		errType = ErrorTypeRateLimit
	} else if e.StatusCode == http.StatusRequestTimeout || e.StatusCode == http.StatusGatewayTimeout {
		errType = ErrorTypeTimeout
	}

	msg := e.Message
	if msg == "" {
		msg = "unexpected status"
	}
	msg = fmt.Sprintf("%s [%d]", msg, e.StatusCode)
	if e.Body != "" {
		msg += "\n" + e.Body
	}
	code := ""
	if len(e.Errors) > 0 {
		code = e.Errors[0].Code
	}
	err := NewErrorWithCode(errType, code, msg, e)
	err.WithContext(&ErrorContext{URL: e.URL, Method: e.Method, StatusCode: e.StatusCode})
	return err
}

// parseBackendError builds a BackendError from a response. Bodies that are
// not platform error documents are kept raw.
func parseBackendError(method, url string, statusCode int, body []byte) *BackendError {
	be := &BackendError{}
	if len(body) > 0 {
		_ = codec.Unmarshal(body, be)
	}
	be.URL = url
	be.Method = method
	be.StatusCode = statusCode
	be.Body = string(body)
	return be
}

// NetworkError represents a network-related error such as connection
// refused, DNS resolution failure, or a broken connection.
type NetworkError struct {
	// Op is the operation that failed (e.g., "GET /products", "reading response")
	Op string
	// Err is the underlying network error
	Err error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ToError converts NetworkError to the enhanced Error type
func (e *NetworkError) ToError() *Error {
	err := NewError(ErrorTypeNetwork, e.Error(), e)
	err.WithDetail("operation", e.Op)
	return err
}

// TimeoutError represents an operation that exceeded its time limit.
type TimeoutError struct {
	// Op is the operation that timed out
	Op string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout during %s", e.Op)
}

// ToError converts TimeoutError to the enhanced Error type
func (e *TimeoutError) ToError() *Error {
	err := NewError(ErrorTypeTimeout, e.Error(), e)
	err.WithDetail("operation", e.Op)
	return err
}

// transportError classifies a failure reported by a Transport.
func transportError(op string, err error) *Error {
	var sdkErr *Error
	if errors.As(err, &sdkErr) {
		return sdkErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return NewError(ErrorTypeCanceled, "request canceled during "+op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return (&TimeoutError{Op: op}).ToError()
	default:
		return (&NetworkError{Op: op, Err: err}).ToError()
	}
}

// IsNotFound checks if the error represents a 404 from the platform.
//
// Example:
//
//	_, err := sdk.ExecuteBlocking(ctx, client, update)
//	if sdk.IsNotFound(err) {
//	    // The resource was deleted in the meantime
//	}
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.IsNotFound()
	}
	return false
}

// IsInvalidArgument checks if the error was raised while building a request.
func IsInvalidArgument(err error) bool {
	return err != nil && errors.Is(err, ErrInvalidArgument)
}

// IsDeserialization checks if the error was raised while decoding a response.
func IsDeserialization(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidResponse) {
		return true
	}
	var de *codec.DecodeError
	return errors.As(err, &de)
}

// IsRetryable checks if sending the same request again may succeed.
// Retryable errors include:
//   - Network errors (connection issues)
//   - Timeout errors
//   - Server errors (5xx status codes)
//   - Rate limiting errors (429 status)
//
// The SDK never retries on its own; this is advice for callers that do.
//
// Example:
//
//	res, err := sdk.ExecuteBlocking(ctx, client, query)
//	if err != nil && sdk.IsRetryable(err) {
//	    time.Sleep(time.Second)
//	    res, err = sdk.ExecuteBlocking(ctx, client, query)
//	}
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrServerError) || errors.Is(err, ErrRateLimited) {
		return true
	}

	var enhancedErr *Error
	if errors.As(err, &enhancedErr) {
		return enhancedErr.IsRetryable()
	}

	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// WrapError wraps an error with additional context and type information.
// If the error is already an enhanced Error, it updates the message.
// Otherwise, it creates a new Error with the specified type and message.
func WrapError(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	var enhancedErr *Error
	if errors.As(err, &enhancedErr) {
		enhancedErr.Message = message
		return enhancedErr
	}

	return NewError(errType, message, err)
}
