package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/cache"
	"github.com/birbparty/commerce-sdk/sdk/filter"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

// Colors for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func section(title string) {
	fmt.Printf("\n%s%s== %s ==%s\n", colorBold, colorCyan, title, colorReset)
}

func ok(format string, args ...interface{}) {
	fmt.Printf("%s✓%s %s\n", colorGreen, colorReset, fmt.Sprintf(format, args...))
}

func warn(format string, args ...interface{}) {
	fmt.Printf("%s!%s %s\n", colorYellow, colorReset, fmt.Sprintf(format, args...))
}

func fail(format string, args ...interface{}) {
	fmt.Printf("%s✗%s %s\n", colorRed, colorReset, fmt.Sprintf(format, args...))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	metrics := sdk.NewMetricsCollector()

	config := sdk.ConfigFromEnv().
		WithCircuitBreaker(sdk.CircuitBreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          10 * time.Second,
			HalfOpenRequests: 3,
		}).
		WithPerEndpointCircuitBreaker().
		WithObserver(metrics).
		WithLogger(logger)
	if config.ProjectKey == "" {
		config.WithProject("demo")
	}

	// Redis is optional: without it responses are simply not cached
	if rc, err := redisCache(); err == nil {
		defer rc.Close()
		config.WithCache(rc, 30*time.Second)
		ok("response cache enabled")
	} else {
		warn("response cache disabled: %v", err)
	}

	client, err := sdk.NewClient(config)
	if err != nil {
		fail("failed to create client: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	section("Parallel requests")
	parallel(ctx, client)

	section("Cart workflow")
	cartWorkflow(ctx, client)

	section("Cancellation")
	cancellation(ctx, client)

	section("Metrics")
	m := metrics.GetMetrics()
	for endpoint, n := range m["requests"].(map[string]int64) {
		fmt.Printf("  %-45s %d\n", endpoint, n)
	}
	fmt.Printf("  cache hit rate: %.0f%%\n", m["cache_hit_rate"].(float64)*100)
}

func redisCache() (*cache.RedisCache, error) {
	cfg, err := cache.NewConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return cache.NewRedisCache(cfg)
}

// parallel starts a search and a category query at once and waits for both.
func parallel(ctx context.Context, client *sdk.Client) {
	minPrice := decimal.RequireFromString("10.00")
	search := request.NewSearch(resources.ProductProjections).
		Text("en", "shirt").
		FilterMoneyRange("variants.price", filter.AtLeast(minPrice), filter.Default).
		FacetMoneyRanges("variants.price",
			filter.AtMost(decimal.RequireFromString("25.00")),
			filter.AtLeast(decimal.RequireFromString("25.00"))).
		Limit(10)

	products := sdk.Execute(ctx, client, search)
	categories := sdk.Execute(ctx, client, request.NewQuery(resources.Categories).WithLimit(50))

	page, err := products.Await(ctx)
	if err != nil {
		fail("search: %v", err)
	} else {
		ok("search found %d products", page.Total)
	}

	cats, err := categories.Await(ctx)
	if err != nil {
		fail("categories: %v", err)
	} else {
		ok("%d categories", len(cats.Results))
	}
}

// cartWorkflow creates a cart, adds an item and shows how a stale version
// is reported.
func cartWorkflow(ctx context.Context, client *sdk.Client) {
	cart, err := sdk.ExecuteBlocking(ctx, client, request.Create(resources.Carts, resources.CartDraft{
		Currency: "EUR",
		Country:  "DE",
	}))
	if err != nil {
		fail("create cart: %v", err)
		return
	}
	ok("created cart %s", cart.ID)

	updated, err := sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Carts, cart,
		resources.SetCustomerEmailAction("jane@example.com"),
		resources.AddLineItemAction("product-1", 1, 2),
	))
	if err != nil {
		fail("update cart: %v", err)
		return
	}
	ok("cart holds %d items at version %d", updated.Quantity(), updated.Version)

	// The first version is stale now
	_, err = sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Carts, cart,
		resources.SetCustomerEmailAction("john@example.com")))
	var backendErr *sdk.BackendError
	if errors.As(err, &backendErr) {
		ok("stale update rejected with %d", backendErr.StatusCode)
		for _, e := range backendErr.Errors {
			fmt.Printf("  %s: %s\n", e.Code, e.Message)
		}
	}

	// Builders reject bad input before anything is sent
	_, err = sdk.ExecuteBlocking(ctx, client, request.Update(resources.Carts, cart.ID, cart.Version))
	if sdk.IsInvalidArgument(err) {
		ok("empty update rejected locally: %v", err)
	}

	if _, err := sdk.ExecuteBlocking(ctx, client, request.Delete(resources.Carts, updated.ID, updated.Version)); err != nil {
		fail("delete cart: %v", err)
	}
}

// cancellation abandons a request that takes too long.
func cancellation(ctx context.Context, client *sdk.Client) {
	future := sdk.Execute(ctx, client, request.NewSearch(resources.ProductProjections).Text("en", "everything"))

	select {
	case <-future.Done():
		ok("search finished before the deadline")
	case <-time.After(5 * time.Millisecond):
		future.Cancel()
		_, err := future.Await(ctx)
		if errors.Is(err, sdk.ErrContextCanceled) {
			ok("search canceled")
		} else if err != nil {
			warn("search ended with %v", err)
		}
	}
}
