package sdk

import (
	"sync"
	"time"
)

// Observer provides hooks for monitoring SDK operations.
// Implement this interface to track performance metrics, debug issues,
// or integrate with your observability stack.
//
// Observer methods are called on the transport's goroutine and should be
// fast and non-blocking.
//
// Example implementation:
//
//	type LogObserver struct {
//	    logger *log.Logger
//	}
//
//	func (o *LogObserver) OnRequestStart(method, path string) {
//	    o.logger.Printf("[START] %s %s", method, path)
//	}
//
//	func (o *LogObserver) OnRequestEnd(method, path string, status int, duration time.Duration, err error) {
//	    o.logger.Printf("[END] %s %s %d (took %v) %v", method, path, status, duration, err)
//	}
//
//	config := sdk.DefaultConfig().
//	    WithObserver(&LogObserver{logger: log.Default()})
type Observer interface {
	// OnRequestStart is called when a request is handed to the transport.
	//
	// Parameters:
	//   - method: HTTP method (GET, POST, DELETE)
	//   - path: Request path without query (e.g., "/product-projections/search")
	OnRequestStart(method, path string)

	// OnRequestEnd is called once the request completed, after the
	// response was validated and decoded.
	//
	// Parameters:
	//   - method: HTTP method
	//   - path: Request path
	//   - statusCode: HTTP status, zero when no response was received
	//   - duration: Time taken for the request
	//   - err: Error if request failed, nil on success
	OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error)

	// OnCircuitBreakerStateChange is called when a circuit breaker changes state.
	//
	// Parameters:
	//   - endpoint: The endpoint whose circuit changed
	//   - oldState: Previous circuit state
	//   - newState: New circuit state
	OnCircuitBreakerStateChange(endpoint string, oldState, newState CircuitState)

	// OnCacheHit is called when a GET was answered from the response cache.
	OnCacheHit(key string)

	// OnCacheMiss is called when a cacheable GET had to go to the platform.
	OnCacheMiss(key string)
}

// NoopObserver is a no-op implementation of Observer that does nothing.
// This is the default observer used when none is configured.
type NoopObserver struct{}

// OnRequestStart does nothing
func (n *NoopObserver) OnRequestStart(method, path string) {}

// OnRequestEnd does nothing
func (n *NoopObserver) OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error) {
}

// OnCircuitBreakerStateChange does nothing
func (n *NoopObserver) OnCircuitBreakerStateChange(endpoint string, oldState, newState CircuitState) {
}

// OnCacheHit does nothing
func (n *NoopObserver) OnCacheHit(key string) {}

// OnCacheMiss does nothing
func (n *NoopObserver) OnCacheMiss(key string) {}

// MetricsCollector is a simple in-memory metrics implementation.
// It collects request counts, latencies, error counts, status codes,
// circuit breaker transitions and cache hit rates.
//
// It is primarily intended for debugging and tests. For production use,
// export metrics to your monitoring system instead (the telemetry package
// ships a Prometheus observer).
//
// Example:
//
//	metrics := sdk.NewMetricsCollector()
//	config := sdk.DefaultConfig().WithObserver(metrics)
//
//	client, _ := sdk.NewClient(config)
//	// Use client...
//
//	snapshot := metrics.GetMetrics()
//	fmt.Printf("Total requests: %v\n", snapshot["requests"])
type MetricsCollector struct {
	mu                  sync.RWMutex
	requestCount        map[string]int64
	latencies           map[string][]time.Duration
	errorCount          map[string]int64
	statusCount         map[int]int64
	circuitStateChanges map[string]int64
	cacheHitCount       int64
	cacheMissCount      int64
}

// NewMetricsCollector creates a new metrics collector.
// The collector is safe for concurrent use.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requestCount:        make(map[string]int64),
		latencies:           make(map[string][]time.Duration),
		errorCount:          make(map[string]int64),
		statusCount:         make(map[int]int64),
		circuitStateChanges: make(map[string]int64),
	}
}

// OnRequestStart increments the request count
func (m *MetricsCollector) OnRequestStart(method, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[method+" "+path]++
}

// OnRequestEnd records latency, status and errors
func (m *MetricsCollector) OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + path
	m.latencies[key] = append(m.latencies[key], duration)
	if statusCode > 0 {
		m.statusCount[statusCode]++
	}
	if err != nil {
		m.errorCount[key]++
	}
}

// OnCircuitBreakerStateChange tracks state changes
func (m *MetricsCollector) OnCircuitBreakerStateChange(endpoint string, oldState, newState CircuitState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitStateChanges[endpoint]++
}

// OnCacheHit increments cache hit count
func (m *MetricsCollector) OnCacheHit(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHitCount++
}

// OnCacheMiss increments cache miss count
func (m *MetricsCollector) OnCacheMiss(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMissCount++
}

// GetMetrics returns a snapshot of current metrics.
// The returned map is a copy and safe to read without locks.
//
// The metrics include:
//   - "requests": Map of endpoint to request count
//   - "latencies": Map of endpoint to latency measurements
//   - "errors": Map of endpoint to error count
//   - "status_codes": Map of HTTP status to count
//   - "circuit_breaker_state_changes": Map of endpoint to state change count
//   - "cache_hits": Total cache hits
//   - "cache_misses": Total cache misses
//   - "cache_hit_rate": Calculated hit rate (0.0 to 1.0)
func (m *MetricsCollector) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requestsCopy := make(map[string]int64, len(m.requestCount))
	for k, v := range m.requestCount {
		requestsCopy[k] = v
	}

	latenciesCopy := make(map[string][]time.Duration, len(m.latencies))
	for k, v := range m.latencies {
		latenciesCopy[k] = append([]time.Duration(nil), v...)
	}

	errorsCopy := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errorsCopy[k] = v
	}

	statusCopy := make(map[int]int64, len(m.statusCount))
	for k, v := range m.statusCount {
		statusCopy[k] = v
	}

	circuitChangesCopy := make(map[string]int64, len(m.circuitStateChanges))
	for k, v := range m.circuitStateChanges {
		circuitChangesCopy[k] = v
	}

	cacheTotal := m.cacheHitCount + m.cacheMissCount
	cacheHitRate := float64(0)
	if cacheTotal > 0 {
		cacheHitRate = float64(m.cacheHitCount) / float64(cacheTotal)
	}

	return map[string]interface{}{
		"requests":                      requestsCopy,
		"latencies":                     latenciesCopy,
		"errors":                        errorsCopy,
		"status_codes":                  statusCopy,
		"circuit_breaker_state_changes": circuitChangesCopy,
		"cache_hits":                    m.cacheHitCount,
		"cache_misses":                  m.cacheMissCount,
		"cache_hit_rate":                cacheHitRate,
	}
}

// observedCircuitBreaker wraps a circuit breaker to notify observers of state changes.
type observedCircuitBreaker struct {
	cb        CircuitBreaker
	endpoint  string
	observer  Observer
	mu        sync.Mutex
	lastState CircuitState
}

// newObservedCircuitBreaker creates a circuit breaker that notifies an observer
// of state changes.
func newObservedCircuitBreaker(cb CircuitBreaker, endpoint string, observer Observer) CircuitBreaker {
	return &observedCircuitBreaker{
		cb:        cb,
		endpoint:  endpoint,
		observer:  observer,
		lastState: cb.State(),
	}
}

// Allow reports whether the circuit currently admits a request
func (o *observedCircuitBreaker) Allow() error {
	err := o.cb.Allow()
	o.notify()
	return err
}

// Record feeds a request outcome to the circuit and notifies state changes
func (o *observedCircuitBreaker) Record(err error) {
	o.cb.Record(err)
	o.notify()
}

// Release frees an admitted slot without recording an outcome
func (o *observedCircuitBreaker) Release() {
	o.cb.Release()
}

// State returns the current state
func (o *observedCircuitBreaker) State() CircuitState {
	return o.cb.State()
}

// Reset resets the circuit and notifies of state change
func (o *observedCircuitBreaker) Reset() {
	o.cb.Reset()
	o.notify()
}

func (o *observedCircuitBreaker) notify() {
	current := o.cb.State()
	o.mu.Lock()
	old := o.lastState
	o.lastState = current
	o.mu.Unlock()
	if old != current {
		o.observer.OnCircuitBreakerStateChange(o.endpoint, old, current)
	}
}

// CompositeObserver allows multiple observers to be combined into one.
// All observer methods are called on each child observer in order.
// If an observer panics, it's caught to prevent affecting other observers.
//
// Example:
//
//	composite := sdk.NewCompositeObserver(
//	    telemetry.NewLoggingObserver(logger),
//	    telemetry.NewMetricsObserver(prometheus.DefaultRegisterer),
//	)
//
//	config := sdk.DefaultConfig().WithObserver(composite)
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an observer that delegates to multiple observers.
func NewCompositeObserver(observers ...Observer) Observer {
	return &CompositeObserver{observers: observers}
}

// each calls fn on every child, containing panics to the child that raised them
func (c *CompositeObserver) each(fn func(Observer)) {
	for _, obs := range c.observers {
		func() {
			defer func() {
				_ = recover()
			}()
			fn(obs)
		}()
	}
}

// OnRequestStart notifies all observers of request start.
func (c *CompositeObserver) OnRequestStart(method, path string) {
	c.each(func(o Observer) { o.OnRequestStart(method, path) })
}

// OnRequestEnd notifies all observers of request completion.
func (c *CompositeObserver) OnRequestEnd(method, path string, statusCode int, duration time.Duration, err error) {
	c.each(func(o Observer) { o.OnRequestEnd(method, path, statusCode, duration, err) })
}

// OnCircuitBreakerStateChange notifies all observers
func (c *CompositeObserver) OnCircuitBreakerStateChange(endpoint string, oldState, newState CircuitState) {
	c.each(func(o Observer) { o.OnCircuitBreakerStateChange(endpoint, oldState, newState) })
}

// OnCacheHit notifies all observers
func (c *CompositeObserver) OnCacheHit(key string) {
	c.each(func(o Observer) { o.OnCacheHit(key) })
}

// OnCacheMiss notifies all observers
func (c *CompositeObserver) OnCacheMiss(key string) {
	c.each(func(o Observer) { o.OnCacheMiss(key) })
}
