// Package testdata holds the fake platform server and JSON fixtures used
// by the SDK tests.
package testdata

// CategoryJSON is a single category.
const CategoryJSON = `{
  "id": "cat-1",
  "version": 3,
  "key": "shoes",
  "name": {"en": "Shoes", "de": "Schuhe"},
  "slug": {"en": "shoes"},
  "ancestors": [],
  "orderHint": "0.1",
  "createdAt": "2024-03-01T10:00:00.000Z",
  "lastModifiedAt": "2024-03-02T10:00:00.000Z"
}`

// CategoryPageJSON is a query page holding two categories.
const CategoryPageJSON = `{
  "offset": 0,
  "limit": 20,
  "count": 2,
  "total": 2,
  "results": [
    {"id": "cat-1", "version": 3, "key": "shoes", "name": {"en": "Shoes"}, "slug": {"en": "shoes"}, "ancestors": []},
    {"id": "cat-2", "version": 1, "key": "boots", "name": {"en": "Boots"}, "slug": {"en": "boots"},
     "parent": {"typeId": "category", "id": "cat-1"},
     "ancestors": [{"typeId": "category", "id": "cat-1"}]}
  ]
}`

// EmptyPageJSON is an empty query page.
const EmptyPageJSON = `{"results":[],"total":0,"offset":0,"limit":20}`

// ProductSearchJSON is a product search page with term, range and filter
// facets.
const ProductSearchJSON = `{
  "offset": 0,
  "count": 1,
  "total": 1,
  "results": [{
    "id": "prod-1",
    "version": 7,
    "name": {"en": "Red Shirt"},
    "slug": {"en": "red-shirt"},
    "categories": [{"typeId": "category", "id": "cat-1"}],
    "published": true,
    "hasStagedChanges": false,
    "masterVariant": {
      "id": 1,
      "sku": "SHIRT-RED-M",
      "prices": [{"id": "price-1", "value": {"centAmount": 1999, "currencyCode": "EUR"}}],
      "attributes": [{"name": "color", "value": "red"}]
    },
    "variants": []
  }],
  "facets": {
    "variants.attributes.color": {
      "type": "terms", "dataType": "text", "missing": 0, "total": 1, "other": 0,
      "terms": [{"term": "red", "count": 1, "productCount": 1}]
    },
    "variants.price.centAmount": {
      "type": "range", "dataType": "number",
      "ranges": [{"from": 0, "fromStr": "0", "to": 5000, "toStr": "5000", "count": 1,
                  "totalCount": 1, "total": 1999, "min": 1999, "max": 1999, "mean": 1999}]
    },
    "onSale": {"type": "filter", "count": 0, "productCount": 0}
  }
}`

// CartJSON is a cart with one line item.
const CartJSON = `{
  "id": "cart-1",
  "version": 2,
  "customerEmail": "jane@example.com",
  "cartState": "Active",
  "lineItems": [{
    "id": "li-1", "productId": "prod-1", "name": {"en": "Red Shirt"}, "variantId": 1, "quantity": 2,
    "price": {"value": {"centAmount": 1999, "currencyCode": "EUR"}},
    "totalPrice": {"centAmount": 3998, "currencyCode": "EUR"}
  }],
  "totalPrice": {"centAmount": 3998, "currencyCode": "EUR"}
}`

// ConcurrentModificationJSON is the platform's answer to a stale version.
const ConcurrentModificationJSON = `{
  "statusCode": 409,
  "message": "Object cart-1 has a different version than expected. Expected: 1 - Actual: 2.",
  "errors": [{"code": "ConcurrentModification", "message": "Object cart-1 has a different version than expected. Expected: 1 - Actual: 2."}]
}`

// TokenJSON is an OAuth2 client credentials token response.
const TokenJSON = `{"access_token":"test-token","token_type":"Bearer","expires_in":172800,"scope":"manage_project:test"}`
