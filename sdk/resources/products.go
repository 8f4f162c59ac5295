package resources

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
)

// ProductProjection is the current or staged view of a product.
type ProductProjection struct {
	model.Resource
	Key         string                      `json:"key,omitempty"`
	Name        model.LocalizedString       `json:"name"`
	Slug        model.LocalizedString       `json:"slug"`
	Description model.LocalizedString       `json:"description,omitempty"`
	Categories  []model.Reference[Category] `json:"categories"`
	Published   bool                        `json:"published"`
	HasStaged   bool                        `json:"hasStagedChanges"`
	Master      ProductVariant              `json:"masterVariant"`
	Variants    []ProductVariant            `json:"variants"`
}

// ProductVariant is one sellable variant of a product.
type ProductVariant struct {
	ID         int         `json:"id"`
	SKU        string      `json:"sku,omitempty"`
	Prices     []Price     `json:"prices"`
	Attributes []Attribute `json:"attributes"`
}

// Price is a variant price, optionally scoped to a country.
type Price struct {
	ID      string      `json:"id,omitempty"`
	Value   model.Money `json:"value"`
	Country string      `json:"country,omitempty"`
}

// Attribute is a named product attribute. Value is kept raw because its
// shape depends on the product type.
type Attribute struct {
	Name  string           `json:"name"`
	Value codec.RawMessage `json:"value"`
}

// AllVariants returns the master variant followed by the other variants.
func (p ProductProjection) AllVariants() []ProductVariant {
	return append([]ProductVariant{p.Master}, p.Variants...)
}

// ProductProjectionType decodes a product projection.
var ProductProjectionType = codec.Of[ProductProjection]()

// ProductProjections serves product projections. Use request.NewSearch for
// full text search and request.NewQuery for predicate queries.
var ProductProjections = sdk.NewEndpoint("/product-projections", ProductProjectionType)
