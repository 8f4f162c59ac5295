package mockplatform_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/internal/mockplatform"
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/filter"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

// startPlatform serves a seeded fake platform on a loopback port and
// returns its base URL.
func startPlatform(t testing.TB, configure ...func(*mockplatform.Config)) string {
	t.Helper()
	cfg := mockplatform.DefaultConfig()
	cfg.Seed = true
	for _, fn := range configure {
		fn(cfg)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	app := mockplatform.NewApp(mockplatform.NewHandler(cfg), nil)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func newClient(t testing.TB, config *sdk.Config) *sdk.Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	client, err := sdk.NewClient(config.WithLogger(logger).WithTimeout(5 * time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func openClient(t *testing.T) *sdk.Client {
	t.Helper()
	return newClient(t, sdk.DefaultConfig().WithProject("shop").WithAPIURL(startPlatform(t)))
}

func TestSDK_Project(t *testing.T) {
	client := openClient(t)

	project, err := sdk.ExecuteBlocking(context.Background(), client, resources.ProjectGet{})
	require.NoError(t, err)
	assert.Equal(t, "shop", project.Key)
	assert.Equal(t, []string{"EUR", "USD"}, project.Currencies)
}

func TestSDK_QueryAndGet(t *testing.T) {
	client := openClient(t)
	ctx := context.Background()

	page, err := sdk.ExecuteBlocking(ctx, client, request.NewQuery(resources.Categories).
		WithPredicate(request.IsDefined("parent")).
		WithSort(request.Asc("orderHint")))
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Count)
	assert.Equal(t, "shirts", page.Results[0].Key)
	assert.Equal(t, "shoes", page.Results[1].Key)

	head, ok := page.Head()
	require.True(t, ok)

	byID, err := sdk.ExecuteBlocking(ctx, client, request.GetByID(resources.Categories, head.ID))
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "shirts", byID.Key)

	byKey, err := sdk.ExecuteBlocking(ctx, client, request.GetByKey(resources.Categories, "clothing"))
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, "Kleidung", byKey.Name["de"])

	missing, err := sdk.ExecuteBlocking(ctx, client, request.GetByKey(resources.Categories, "no such key"))
	require.NoError(t, err, "a missing resource is not an error")
	assert.Nil(t, missing)

	named, err := sdk.ExecuteBlocking(ctx, client, request.NewQuery(resources.Categories).
		WithPredicate(request.Eq("name.en", "shoes").Or(request.Eq("key", "clothing"))).
		WithFetchTotal(false))
	require.NoError(t, err)
	assert.Equal(t, int64(2), named.Count)
	assert.Zero(t, named.Total)
}

func TestSDK_CategoryLifecycle(t *testing.T) {
	client := openClient(t)
	ctx := context.Background()

	parent, err := sdk.ExecuteBlocking(ctx, client, request.GetByKey(resources.Categories, "clothing"))
	require.NoError(t, err)
	require.NotNil(t, parent)

	created, err := sdk.ExecuteBlocking(ctx, client, request.Create(resources.Categories, resources.CategoryDraft{
		Key:  "summer sale",
		Name: model.LocalizedOf("en", "Summer Sale"),
		Slug: model.LocalizedOf("en", "summer-sale"),
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	updated, err := sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Categories, created,
		resources.ChangeNameAction(model.LocalizedOf("en", "Big Sale")),
		resources.ChangeParentAction(parent.ID),
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Big Sale", updated.Name["en"])
	require.NotNil(t, updated.Parent)
	assert.Equal(t, parent.ID, updated.Parent.ID)

	_, err = sdk.ExecuteBlocking(ctx, client, request.UpdateByKey(resources.Categories, "summer sale", 1,
		resources.ChangeOrderHintAction("0.9")))
	require.Error(t, err)
	var be *sdk.BackendError
	require.True(t, errors.As(err, &be), "got %v", err)
	assert.Equal(t, http.StatusConflict, be.StatusCode)
	require.NotEmpty(t, be.Errors)
	assert.Equal(t, mockplatform.CodeConcurrentModification, be.Errors[0].Code)

	_, err = sdk.ExecuteBlocking(ctx, client, request.Create(resources.Categories, resources.CategoryDraft{
		Key:  "summer sale",
		Name: model.LocalizedOf("en", "Again"),
		Slug: model.LocalizedOf("en", "again"),
	}))
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusBadRequest, be.StatusCode)

	deleted, err := sdk.ExecuteBlocking(ctx, client, request.Delete(resources.Categories, updated.ID, updated.Version))
	require.NoError(t, err)
	assert.Equal(t, updated.ID, deleted.ID)

	gone, err := sdk.ExecuteBlocking(ctx, client, request.GetByID(resources.Categories, updated.ID))
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSDK_CartWorkflow(t *testing.T) {
	client := openClient(t)
	ctx := context.Background()

	shoes, err := sdk.ExecuteBlocking(ctx, client, request.GetByKey(resources.ProductProjections, "running-shoes"))
	require.NoError(t, err)
	require.NotNil(t, shoes)

	cart, err := sdk.ExecuteBlocking(ctx, client, request.Create(resources.Carts, resources.CartDraft{
		Currency: "USD",
		Country:  "US",
	}))
	require.NoError(t, err)

	cart, err = sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Carts, cart,
		resources.SetCustomerEmailAction("jane@example.com"),
		resources.AddLineItemAction(shoes.ID, 1, 2),
		resources.SetShippingAddressAction(&resources.Address{Country: "US", City: "Portland"}),
	))
	require.NoError(t, err)
	assert.Equal(t, int64(2), cart.Quantity())
	assert.Equal(t, int64(2*9898), cart.TotalPrice.CentAmount)
	assert.Equal(t, "USD", cart.TotalPrice.CurrencyCode)
	require.NotNil(t, cart.ShippingAddress)
	assert.Equal(t, "Portland", cart.ShippingAddress.City)

	_, err = sdk.ExecuteBlocking(ctx, client, request.UpdateOf(resources.Carts, cart))
	assert.True(t, sdk.IsInvalidArgument(err), "an update without actions never leaves the client")

	deleted, err := sdk.ExecuteBlocking(ctx, client, request.Delete(resources.Carts, cart.ID, cart.Version))
	require.NoError(t, err)
	assert.Equal(t, cart.ID, deleted.ID)
}

func TestSDK_Search(t *testing.T) {
	client := openClient(t)
	ctx := context.Background()
	colors := "variants.attributes.color"

	search := request.NewSearch(resources.ProductProjections).
		Text("en", "shirt").
		FilterMoneyRange("variants.price", filter.AtLeast(decimal.RequireFromString("25.00")), filter.Default).
		Facet(colors).
		FacetMoneyRanges("variants.price",
			filter.Between(decimal.Zero, decimal.NewFromInt(50)),
			filter.AtLeast(decimal.NewFromInt(50)))

	result, err := sdk.ExecuteBlocking(ctx, client, search)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Total)
	hit, ok := result.Head()
	require.True(t, ok)
	assert.Equal(t, "blue-shirt", hit.Key)

	terms, ok := result.TermFacet(colors)
	require.True(t, ok)
	assert.Equal(t, int64(1), terms.Count("blue"))
	assert.Zero(t, terms.Count("red"))

	ranges, ok := result.RangeFacet("variants.price.centAmount")
	require.True(t, ok)
	require.Len(t, ranges.Ranges, 2)
	assert.Equal(t, int64(2), ranges.Ranges[0].Count)
	assert.Zero(t, ranges.Ranges[1].Count)

	all, err := sdk.ExecuteBlocking(ctx, client, request.NewSearch(resources.ProductProjections).
		FilterAny("variants.attributes.size", []string{"M", "44"}, filter.ResultsOnly).
		Facet(colors).
		Limit(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Len(t, all.Results, 2)
	terms, _ = all.TermFacet(colors)
	assert.Len(t, terms.Terms, 5, "results-only filters leave facets untouched")
}

func TestSDK_CustomObjects(t *testing.T) {
	type limits struct {
		Max int `json:"max"`
	}
	client := openClient(t)
	ctx := context.Background()
	endpoint := resources.CustomObjects(codec.Of[limits]())

	created, err := sdk.ExecuteBlocking(ctx, client, resources.UpsertCustomObject(endpoint, model.CustomObjectDraft[limits]{
		Container: "checkout settings",
		Key:       "limits",
		Value:     limits{Max: 3},
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	replaced, err := sdk.ExecuteBlocking(ctx, client, resources.UpsertCustomObject(endpoint, model.CustomObjectDraft[limits]{
		Container: "checkout settings",
		Key:       "limits",
		Value:     limits{Max: 5},
		Version:   &created.Version,
	}))
	require.NoError(t, err)
	assert.Equal(t, int64(2), replaced.Version)

	got, err := sdk.ExecuteBlocking(ctx, client, resources.GetCustomObject(endpoint, "checkout settings", "limits"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 5, got.Value.Max)

	_, err = sdk.ExecuteBlocking(ctx, client, resources.DeleteCustomObject(endpoint, "checkout settings", "limits", 1))
	var be *sdk.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusConflict, be.StatusCode)

	_, err = sdk.ExecuteBlocking(ctx, client, resources.DeleteCustomObject(endpoint, "checkout settings", "limits", 2))
	require.NoError(t, err)

	got, err = sdk.ExecuteBlocking(ctx, client, resources.GetCustomObject(endpoint, "checkout settings", "limits"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSDK_ConcurrentFutures(t *testing.T) {
	client := openClient(t)
	ctx := context.Background()

	futures := make([]*sdk.Future[*resources.ProductProjection], 0, 4)
	for _, key := range []string{"red-shirt", "blue-shirt", "running-shoes", "leather-boots"} {
		futures = append(futures, sdk.Execute(ctx, client, request.GetByKey(resources.ProductProjections, key)))
	}
	categories := sdk.Execute(ctx, client, request.NewQuery(resources.Categories))

	for _, f := range futures {
		p, err := f.Await(ctx)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.NotEmpty(t, p.Master.SKU)
	}
	page, err := categories.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
}

func TestSDK_Latency(t *testing.T) {
	url := startPlatform(t, func(c *mockplatform.Config) { c.Latency = 200 * time.Millisecond })
	client := newClient(t, sdk.DefaultConfig().WithProject("shop").WithAPIURL(url))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := sdk.Execute(ctx, client, resources.ProjectGet{}).Await(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sdk.ErrTimeout), "got %v", err)
	assert.True(t, sdk.IsRetryable(err))
}

func TestSDK_ClientCredentials(t *testing.T) {
	url := startPlatform(t, func(c *mockplatform.Config) {
		c.ClientID, c.ClientSecret = "storefront", "s3cr3t"
	})
	ctx := context.Background()

	client := newClient(t, sdk.DefaultConfig().
		WithProject("shop").
		WithAPIURL(url).
		WithCredentials("storefront", "s3cr3t", "view_products:shop"))
	page, err := sdk.ExecuteBlocking(ctx, client, request.NewQuery(resources.ProductProjections).WithLimit(1))
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)

	bad := newClient(t, sdk.DefaultConfig().
		WithProject("shop").
		WithAPIURL(url).
		WithCredentials("storefront", "wrong"))
	_, err = sdk.ExecuteBlocking(ctx, bad, request.NewQuery(resources.ProductProjections))
	assert.Error(t, err)

	anonymous := newClient(t, sdk.DefaultConfig().WithProject("shop").WithAPIURL(url))
	_, err = sdk.ExecuteBlocking(ctx, anonymous, request.NewQuery(resources.ProductProjections))
	var be *sdk.BackendError
	require.True(t, errors.As(err, &be), "got %v", err)
	assert.Equal(t, http.StatusUnauthorized, be.StatusCode)
}

func TestSDK_LogsThroughConfiguredLogger(t *testing.T) {
	url := startPlatform(t)
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	client, err := sdk.NewClient(sdk.DefaultConfig().WithProject("shop").WithAPIURL(url).WithLogger(logger))
	require.NoError(t, err)
	defer client.Close()

	_, err = sdk.ExecuteBlocking(context.Background(), client, request.GetByKey(resources.Categories, "shoes"))
	require.NoError(t, err)
	assert.NotEmpty(t, hook.AllEntries())
}
