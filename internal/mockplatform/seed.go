package mockplatform

import (
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

type seedVariant struct {
	sku   string
	cents int64
	color string
	size  string
}

type seedProduct struct {
	key      string
	name     string
	desc     string
	category string
	variants []seedVariant
}

var demoCatalog = []seedProduct{
	{"red-shirt", "Red Shirt", "A plain cotton shirt", "shirts", []seedVariant{
		{"SHIRT-RED-M", 1999, "red", "M"},
		{"SHIRT-RED-L", 1999, "red", "L"},
	}},
	{"blue-shirt", "Blue Shirt", "A striped linen shirt", "shirts", []seedVariant{
		{"SHIRT-BLUE-M", 2999, "blue", "M"},
	}},
	{"running-shoes", "Running Shoes", "Light shoes for long runs", "shoes", []seedVariant{
		{"SHOE-RUN-42", 8999, "black", "42"},
		{"SHOE-RUN-43", 8999, "white", "43"},
	}},
	{"leather-boots", "Leather Boots", "Waterproof winter boots", "shoes", []seedVariant{
		{"BOOT-44", 14900, "brown", "44"},
	}},
}

// Seed loads a small clothing catalog into p.
func (p *Project) Seed() error {
	root, err := p.Categories.Create(resources.Category{
		Key:       "clothing",
		Name:      model.LocalizedString{"en": "Clothing", "de": "Kleidung"},
		Slug:      model.LocalizedOf("en", "clothing"),
		Ancestors: []model.Reference[resources.Category]{},
		OrderHint: "0.1",
	})
	if err != nil {
		return err
	}

	categories := map[string]string{}
	for i, key := range []string{"shirts", "shoes"} {
		draft := resources.CategoryDraft{
			Key:       key,
			Name:      model.LocalizedOf("en", key),
			Slug:      model.LocalizedOf("en", key),
			Parent:    &model.ResourceIdentifier{TypeID: "category", ID: root.ID},
			OrderHint: []string{"0.2", "0.3"}[i],
		}
		c, err := p.NewCategory(draft)
		if err != nil {
			return err
		}
		if c, err = p.Categories.Create(c); err != nil {
			return err
		}
		categories[key] = c.ID
	}

	for _, sp := range demoCatalog {
		product := resources.ProductProjection{
			Key:         sp.key,
			Name:        model.LocalizedOf("en", sp.name),
			Slug:        model.LocalizedOf("en", sp.key),
			Description: model.LocalizedOf("en", sp.desc),
			Categories: []model.Reference[resources.Category]{
				model.NewReference[resources.Category]("category", categories[sp.category]),
			},
			Published: true,
			Variants:  []resources.ProductVariant{},
		}
		for i, sv := range sp.variants {
			variant := resources.ProductVariant{
				ID:  i + 1,
				SKU: sv.sku,
				Prices: []resources.Price{
					{ID: sv.sku + "-EUR", Value: model.Money{CentAmount: sv.cents, CurrencyCode: "EUR"}},
					{ID: sv.sku + "-USD", Value: model.Money{CentAmount: sv.cents + sv.cents/10, CurrencyCode: "USD"}},
				},
				Attributes: []resources.Attribute{
					{Name: "color", Value: rawString(sv.color)},
					{Name: "size", Value: rawString(sv.size)},
				},
			}
			if i == 0 {
				product.Master = variant
			} else {
				product.Variants = append(product.Variants, variant)
			}
		}
		if _, err := p.Products.Create(product); err != nil {
			return err
		}
	}
	return nil
}

func rawString(s string) codec.RawMessage {
	raw, _ := codec.Marshal(s)
	return raw
}
