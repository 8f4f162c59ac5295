package resources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
)

type limits struct {
	Max int `json:"max"`
}

func TestCartUpdateBody(t *testing.T) {
	cmd := request.Update(Carts, "cart-1", 5,
		SetCustomerEmailAction("jane@example.com"),
		AddLineItemAction("p1", 2, 3),
		RemoveLineItemAction("li-1", 0),
		SetShippingAddressAction(&Address{Country: "DE", City: "Berlin"}),
	)

	req, err := cmd.HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "/carts/cart-1", req.Path)
	assert.JSONEq(t, `{"version":5,"actions":[
		{"action":"setCustomerEmail","email":"jane@example.com"},
		{"action":"addLineItem","productId":"p1","variantId":2,"quantity":3},
		{"action":"removeLineItem","lineItemId":"li-1"},
		{"action":"setShippingAddress","address":{"country":"DE","city":"Berlin"}}
	]}`, string(req.Body))
}

func TestActionsDecodeIntoRegisteredPayloads(t *testing.T) {
	var actions []request.UpdateAction
	err := codec.Unmarshal([]byte(`[
		{"action":"setCustomerEmail","email":"a@b.c"},
		{"action":"addLineItem","productId":"p","variantId":1,"quantity":2},
		{"action":"changeName","name":{"en":"Hats"}},
		{"action":"changeParent","parent":{"typeId":"category","id":"root"}}
	]`), &actions)
	require.NoError(t, err)
	require.Len(t, actions, 4)

	assert.Equal(t, &SetCustomerEmail{Email: "a@b.c"}, actions[0].Payload)
	assert.Equal(t, &AddLineItem{ProductID: "p", VariantID: 1, Quantity: 2}, actions[1].Payload)
	assert.Equal(t, &ChangeName{Name: model.LocalizedOf("en", "Hats")}, actions[2].Payload)
	assert.Equal(t, &ChangeParent{Parent: model.ResourceIdentifier{TypeID: "category", ID: "root"}}, actions[3].Payload)
}

func TestCartDraftValidation(t *testing.T) {
	_, err := request.Create(Carts, CartDraft{Currency: "eur"}).HTTPRequest()
	assert.True(t, sdk.IsInvalidArgument(err))

	_, err = request.Create(Carts, CartDraft{Currency: "EUR", ShippingAddr: &Address{Country: "Germany"}}).HTTPRequest()
	assert.True(t, sdk.IsInvalidArgument(err))

	req, err := request.Create(Carts, CartDraft{Currency: "EUR", Country: "DE", InventoryMode: "TrackOnly"}).HTTPRequest()
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"EUR","country":"DE","inventoryMode":"TrackOnly"}`, string(req.Body))
}

func TestCartQuantity(t *testing.T) {
	cart := Cart{LineItems: []LineItem{{Quantity: 2}, {Quantity: 3}}}
	assert.EqualValues(t, 5, cart.Quantity())
}

func TestCustomObjectCommands(t *testing.T) {
	endpoint := CustomObjects(codec.Of[limits]())
	assert.Equal(t, "/custom-objects", endpoint.Path())
	assert.Equal(t, "CustomObject[resources.limits]", endpoint.Representation().Name())

	get := GetCustomObject(endpoint, "settings", "checkout limits")
	req, err := get.HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "/custom-objects/settings/checkout%20limits", req.Path)

	obj, err := get.ResultType().Decode([]byte(`{"id":"o1","version":1,"container":"settings","key":"checkout limits","value":{"max":4}}`))
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, 4, obj.Value.Max)

	missing, err := get.ResultType().Decode([]byte(""))
	require.NoError(t, err)
	assert.Nil(t, missing)

	req, err = UpsertCustomObject(endpoint, model.CustomObjectDraft[limits]{
		Container: "settings", Key: "checkout limits", Value: limits{Max: 9},
	}).HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "/custom-objects", req.Path)
	assert.JSONEq(t, `{"container":"settings","key":"checkout limits","value":{"max":9}}`, string(req.Body))

	req, err = DeleteCustomObject(endpoint, "settings", "checkout limits", 2).HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "/custom-objects/settings/checkout%20limits?version=2", req.PathAndQuery())
}

func TestProductProjectionDecode(t *testing.T) {
	body := []byte(`{
		"id":"p1","version":3,
		"name":{"en":"Shirt"},"slug":{"en":"shirt"},
		"categories":[{"typeId":"category","id":"c1","obj":{"id":"c1","name":{"en":"Tops"}}}],
		"published":true,
		"masterVariant":{"id":1,"sku":"S-1","prices":[{"value":{"centAmount":1999,"currencyCode":"EUR"}}],
			"attributes":[{"name":"color","value":"red"}]},
		"variants":[{"id":2,"sku":"S-2"}]
	}`)
	p, err := ProductProjectionType.Decode(body)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", p.Name["en"])
	require.Len(t, p.Categories, 1)
	assert.True(t, p.Categories[0].Expanded())
	assert.Equal(t, "Tops", p.Categories[0].Obj.Name["en"])
	assert.Equal(t, "19.99 EUR", p.Master.Prices[0].Value.String())
	assert.JSONEq(t, `"red"`, string(p.Master.Attributes[0].Value))
	assert.Len(t, p.AllVariants(), 2)
}

func TestProjectGet(t *testing.T) {
	req, err := ProjectGet{}.HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "", req.Path)
	assert.Equal(t, "resources.Project", ProjectGet{}.ResultType().Name())
}

func TestSearchOverProducts(t *testing.T) {
	req, err := request.NewSearch(ProductProjections).Text("en", "shirt").HTTPRequest()
	require.NoError(t, err)
	assert.Equal(t, "/product-projections/search?text.en=shirt", req.PathAndQuery())
}
