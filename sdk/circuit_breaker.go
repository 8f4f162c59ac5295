package sdk

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// CircuitState represents the current state of a circuit breaker.
// The circuit breaker pattern prevents cascading failures by monitoring
// error rates and temporarily blocking requests when a threshold is exceeded.
//
// State transitions:
//   - Closed -> Open: When failure threshold is reached
//   - Open -> Half-Open: After timeout period expires
//   - Half-Open -> Closed: When success threshold is reached
//   - Half-Open -> Open: On any failure
//
type CircuitState int

const (
	// CircuitClosed is the normal operating state.
	// All requests pass through and errors are counted.
	CircuitClosed CircuitState = iota
	// CircuitOpen blocks all requests immediately.
	// This state prevents overwhelming a failing service.
	CircuitOpen
	// CircuitHalfOpen allows limited requests to test if the service has recovered.
	// If these test requests succeed, the circuit closes.
	// If they fail, the circuit opens again.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker protects the platform, and the caller, from cascading
// failures. It counts consecutive failures and, once a threshold is
// reached, rejects requests for a while before letting a few test requests
// through.
//
// The breaker is split into Allow and Record because requests complete
// asynchronously: Allow is asked before a request is sent and Record is
// told the outcome from the completion callback.
//
// Example usage:
//
//	config := sdk.DefaultConfig().WithCircuitBreaker(sdk.CircuitBreakerConfig{
//	    FailureThreshold: 5,      // Open after 5 consecutive failures
//	    SuccessThreshold: 2,      // Close after 2 consecutive successes
//	    Timeout:          30 * time.Second, // Try recovery after 30s
//	})
//
//	client, _ := sdk.NewClient(config)
//
//	_, err := sdk.ExecuteBlocking(ctx, client, query)
//	if errors.Is(err, sdk.ErrCircuitOpen) {
//	    // Circuit is open, the platform is unavailable
//	}
type CircuitBreaker interface {
	// Allow returns nil if a request may be sent now, or an error
	// matching ErrCircuitOpen if it must be rejected.
	Allow() error

	// Record feeds the outcome of an admitted request to the breaker.
	// A nil error counts as a success.
	Record(err error)

	// Release gives back the slot of an admitted request whose outcome
	// says nothing about the platform, without counting it either way.
	Release()

	// State returns the current state of the circuit breaker.
	State() CircuitState

	// Reset manually resets the circuit to closed state.
	Reset()
}

// CircuitBreakerConfig holds configuration for circuit breaker behavior.
// All fields have sensible defaults if not specified.
//
// Example:
//
//	config := sdk.CircuitBreakerConfig{
//	    FailureThreshold: 10,     // Open after 10 failures
//	    SuccessThreshold: 3,      // Need 3 successes to close
//	    Timeout:          time.Minute, // Wait 1 minute before trying
//	    HalfOpenRequests: 5,      // Allow 5 test requests
//	}
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures before
	// the circuit opens. Lower values make the circuit more sensitive.
	// Default: 5
	FailureThreshold int

	// SuccessThreshold is the number of consecutive successes required
	// in half-open state before the circuit closes.
	// Default: 2
	SuccessThreshold int

	// Timeout is how long the circuit stays open before transitioning
	// to half-open state to test recovery.
	// Default: 30s
	Timeout time.Duration

	// HalfOpenRequests is the maximum number of requests allowed
	// in half-open state. This limits the test traffic to the
	// recovering service.
	// Default: 3
	HalfOpenRequests int
}

// DefaultCircuitBreakerConfig returns a circuit breaker configuration
// with sensible defaults suitable for most use cases.
//
// Default values:
//   - FailureThreshold: 5 (opens after 5 consecutive failures)
//   - SuccessThreshold: 2 (closes after 2 consecutive successes)
//   - Timeout: 30s (waits 30 seconds before testing recovery)
//   - HalfOpenRequests: 3 (allows 3 test requests in half-open state)
//
// Example:
//
//	config := sdk.DefaultConfig().
//	    WithCircuitBreaker(sdk.DefaultCircuitBreakerConfig())
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		HalfOpenRequests: 3,
	}
}

// circuitBreaker is the default implementation
type circuitBreaker struct {
	config CircuitBreakerConfig

	mu               sync.Mutex
	state            CircuitState
	failures         int
	successes        int
	halfOpenRequests int
	lastFailureTime  time.Time
	lastStateChange  time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
// The circuit breaker starts in the closed state.
//
// Example:
//
//	cb := sdk.NewCircuitBreaker(sdk.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    SuccessThreshold: 2,
//	    Timeout:          30 * time.Second,
//	})
//
//	if err := cb.Allow(); err != nil {
//	    return err
//	}
//	cb.Record(someRiskyOperation())
func NewCircuitBreaker(config CircuitBreakerConfig) CircuitBreaker {
	return &circuitBreaker{
		config:          config,
		state:           CircuitClosed,
		lastStateChange: time.Now(),
	}
}

// Allow admits or rejects a request
func (cb *circuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.checkStateTransition()

	switch cb.state {
	case CircuitOpen:
		return NewError(ErrorTypeCircuitOpen, "circuit breaker is open", ErrCircuitOpen)
	case CircuitHalfOpen:
		if cb.halfOpenRequests >= cb.config.HalfOpenRequests {
			return NewError(ErrorTypeCircuitOpen, "circuit breaker half-open limit reached", ErrCircuitOpen)
		}
		cb.halfOpenRequests++
	}
	return nil
}

// Record records the outcome of an admitted request
func (cb *circuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
}

// Release frees a half-open slot taken by Allow
func (cb *circuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitHalfOpen && cb.halfOpenRequests > 0 {
		cb.halfOpenRequests--
	}
}

// State returns the current state of the circuit
func (cb *circuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.checkStateTransition()
	return cb.state
}

// Reset manually resets the circuit to closed state
func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.state = CircuitClosed
	cb.failures = 0
	cb.successes = 0
	cb.halfOpenRequests = 0
	cb.lastStateChange = time.Now()
}

// checkStateTransition checks if the circuit should transition states
func (cb *circuitBreaker) checkStateTransition() {
	now := time.Now()

	switch cb.state {
	case CircuitOpen:
		// Check if timeout has elapsed
		if now.Sub(cb.lastFailureTime) >= cb.config.Timeout {
			cb.transitionTo(CircuitHalfOpen)
		}
	}
}

// onSuccess handles successful executions
func (cb *circuitBreaker) onSuccess() {
	switch cb.state {
	case CircuitClosed:
		// Reset failure count on success
		cb.failures = 0

	case CircuitHalfOpen:
		cb.successes++
		// Check if we've reached success threshold
		if cb.successes >= cb.config.SuccessThreshold {
			cb.transitionTo(CircuitClosed)
		}
	}
}

// onFailure handles failed executions
func (cb *circuitBreaker) onFailure() {
	cb.lastFailureTime = time.Now()

	switch cb.state {
	case CircuitClosed:
		cb.failures++
		// Check if we've reached failure threshold
		if cb.failures >= cb.config.FailureThreshold {
			cb.transitionTo(CircuitOpen)
		}

	case CircuitHalfOpen:
		// Any failure in half-open goes back to open
		cb.transitionTo(CircuitOpen)
	}
}

// transitionTo transitions the circuit to a new state
func (cb *circuitBreaker) transitionTo(newState CircuitState) {
	if cb.state == newState {
		return
	}

	cb.state = newState
	cb.lastStateChange = time.Now()

	// Reset counters on state change
	switch newState {
	case CircuitClosed:
		cb.failures = 0
		cb.successes = 0
		cb.halfOpenRequests = 0

	case CircuitHalfOpen:
		cb.successes = 0
		cb.halfOpenRequests = 0

	case CircuitOpen:
		cb.failures = 0
		cb.successes = 0
		cb.halfOpenRequests = 0
	}
}

// perEndpointCircuitBreaker manages individual circuit breakers for each
// resource path, so a failing endpoint does not block the others.
type perEndpointCircuitBreaker struct {
	mu       sync.RWMutex
	breakers map[string]CircuitBreaker
	config   CircuitBreakerConfig
	observer Observer
}

// newPerEndpointCircuitBreaker creates a manager for per-endpoint circuit breakers.
// Each endpoint gets its own circuit breaker with the same configuration.
func newPerEndpointCircuitBreaker(config CircuitBreakerConfig, observer Observer) *perEndpointCircuitBreaker {
	return &perEndpointCircuitBreaker{
		breakers: make(map[string]CircuitBreaker),
		config:   config,
		observer: observer,
	}
}

// State returns the state of a specific endpoint's circuit breaker.
// Returns CircuitClosed if no circuit breaker exists for the endpoint.
func (pecb *perEndpointCircuitBreaker) State(endpoint string) CircuitState {
	pecb.mu.RLock()
	cb, exists := pecb.breakers[endpoint]
	pecb.mu.RUnlock()

	if !exists {
		return CircuitClosed
	}

	return cb.State()
}

// ResetAll resets all circuit breakers to closed state.
func (pecb *perEndpointCircuitBreaker) ResetAll() {
	pecb.mu.RLock()
	defer pecb.mu.RUnlock()

	for _, cb := range pecb.breakers {
		cb.Reset()
	}
}

// getOrCreate gets or creates a circuit breaker for an endpoint
func (pecb *perEndpointCircuitBreaker) getOrCreate(endpoint string) CircuitBreaker {
	pecb.mu.RLock()
	cb, exists := pecb.breakers[endpoint]
	pecb.mu.RUnlock()

	if exists {
		return cb
	}

	pecb.mu.Lock()
	defer pecb.mu.Unlock()

	// Double-check after acquiring write lock
	if cb, exists := pecb.breakers[endpoint]; exists {
		return cb
	}

	cb = newObservedCircuitBreaker(NewCircuitBreaker(pecb.config), endpoint, pecb.observer)
	pecb.breakers[endpoint] = cb
	return cb
}

// circuitBreakerTransport rejects requests while the breaker is open and
// feeds every outcome back to it. Transport failures, 5xx and 429 answers
// count as failures; any other answer counts as a success.
type circuitBreakerTransport struct {
	next        Transport
	shared      CircuitBreaker
	perEndpoint *perEndpointCircuitBreaker
}

// NewCircuitBreakerTransport wraps next with circuit breaking. NewClient
// applies it when the configuration carries a CircuitBreakerConfig.
func NewCircuitBreakerTransport(next Transport, config CircuitBreakerConfig, perEndpoint bool, observer Observer) Transport {
	if observer == nil {
		observer = &NoopObserver{}
	}
	t := &circuitBreakerTransport{next: next}
	if perEndpoint {
		t.perEndpoint = newPerEndpointCircuitBreaker(config, observer)
	} else {
		t.shared = newObservedCircuitBreaker(NewCircuitBreaker(config), "default", observer)
	}
	return t
}

func (t *circuitBreakerTransport) breaker(req *HTTPRequest) CircuitBreaker {
	if t.perEndpoint != nil {
		return t.perEndpoint.getOrCreate(req.Method + " " + req.Path)
	}
	return t.shared
}

// Send implements Transport.
func (t *circuitBreakerTransport) Send(ctx context.Context, req *HTTPRequest, onComplete func(*HTTPResponse, error)) {
	cb := t.breaker(req)
	if err := cb.Allow(); err != nil {
		go onComplete(nil, err)
		return
	}
	t.next.Send(ctx, req, func(resp *HTTPResponse, err error) {
		if outcome, counted := breakerOutcome(resp, err); counted {
			cb.Record(outcome)
		} else {
			cb.Release()
		}
		onComplete(resp, err)
	})
}

// Close implements Transport.
func (t *circuitBreakerTransport) Close() error {
	return t.next.Close()
}

// breakerOutcome maps a completed request to the error recorded by the
// circuit. counted is false for canceled requests, which say nothing about
// the platform.
func breakerOutcome(resp *HTTPResponse, err error) (outcome error, counted bool) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, false
		}
		return err, true
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return ErrServerError, true
	}
	return nil, true
}
