// Package sdk is the execution core of the commerce platform client. It
// turns typed commands into HTTP requests, sends them through a pluggable
// Transport and decodes the answers into the Go types the commands name.
//
// # Features
//
// The SDK provides:
//   - Typed execution: every command carries the descriptor its response decodes with
//   - Blocking and asynchronous execution sharing one completion path
//   - OAuth2 client credentials with token caching
//   - Circuit breaker pattern for fault tolerance
//   - Optional response caching for repeated GETs
//   - Context support for cancellation and timeouts
//   - One error type with retryable error detection
//
// The packages below sdk hold the pieces commands are built from:
//
//	codec      type descriptors (Type[T]) and the JSON codec
//	model      generic result containers: pages, search results, references, money
//	params     the ordered query parameter list
//	filter     search filter and facet expressions
//	request    query, search, get, create, update and delete builders
//	resources  endpoints and models for products, categories, carts, custom objects
//	cache      a Redis-backed ResponseCache
//
// # Basic Usage
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/birbparty/commerce-sdk/sdk"
//	    "github.com/birbparty/commerce-sdk/sdk/request"
//	    "github.com/birbparty/commerce-sdk/sdk/resources"
//	)
//
//	func main() {
//	    config := sdk.DefaultConfig().
//	        WithProject("my-shop").
//	        WithAPIURL("https://api.example.com").
//	        WithCredentials(clientID, clientSecret)
//
//	    client, err := sdk.NewClient(config)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer client.Close()
//
//	    ctx := context.Background()
//
//	    query := request.NewQuery(resources.Categories).
//	        WithPredicate(request.Eq("key", "shoes")).
//	        WithLimit(1)
//	    page, err := sdk.ExecuteBlocking(ctx, client, query)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("%d categories", len(page.Results))
//	}
//
// # Configuration
//
// The SDK can be configured using a fluent builder pattern, from the
// environment (ConfigFromEnv) or from a YAML file (LoadConfigFile):
//
//	config := sdk.DefaultConfig().
//	    WithProject("my-shop").
//	    WithTimeout(10 * time.Second).
//	    WithCircuitBreaker(sdk.DefaultCircuitBreakerConfig()).
//	    WithHeader("X-Channel", "web")
//
// # Asynchronous Execution
//
// Execute returns a Future at once. Several requests can be in flight at
// the same time:
//
//	products := sdk.Execute(ctx, client, productSearch)
//	cart := sdk.Execute(ctx, client, request.GetByID(resources.Carts, cartID))
//
//	p, err := products.Await(ctx)
//	c, err := cart.Await(ctx)
//
// # Error Handling
//
// Every failure is an *Error. Builders reject bad arguments before any I/O
// with ErrorTypeInvalidArgument; unexpected statuses wrap a *BackendError
// that keeps the raw body:
//
//	_, err := sdk.ExecuteBlocking(ctx, client, update)
//	switch {
//	case sdk.IsInvalidArgument(err):
//	    // fix the request
//	case sdk.IsNotFound(err):
//	    // the resource is gone
//	case sdk.IsRetryable(err):
//	    // try again later
//	}
//
// The SDK never retries on its own.
//
// # Observability
//
// Requests are logged through logrus and traced with OpenTelemetry. An
// Observer sees every request, circuit breaker transition and cache lookup:
//
//	metrics := sdk.NewMetricsCollector()
//	config.WithObserver(metrics)
//
// # Thread Safety
//
// Client, Endpoint, descriptors and QueryBuilder values are safe for
// concurrent use. SearchBuilder is mutable and must not be shared while it
// is being built.
package sdk
