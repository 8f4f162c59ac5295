package mockplatform

import (
	"time"

	"github.com/google/uuid"

	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
	"github.com/birbparty/commerce-sdk/sdk/resources"
)

// Project holds the resources of one project key.
type Project struct {
	Key        string
	Categories *collection[resources.Category]
	Carts      *collection[resources.Cart]
	Products   *collection[resources.ProductProjection]
	Objects    *collection[StoredObject]
}

func newProject(key string, now func() time.Time) *Project {
	stampResource := func(r *model.Resource, id string, version int64, created, modified time.Time) {
		r.ID, r.Version, r.CreatedAt, r.LastModifiedAt = id, version, created, modified
	}

	return &Project{
		Key: key,
		Categories: newCollection(meta[resources.Category]{
			key: func(c *resources.Category) string { return c.Key },
			stamp: func(c *resources.Category, id string, version int64, created, modified time.Time) {
				stampResource(&c.Resource, id, version, created, modified)
			},
		}, now),
		Carts: newCollection(meta[resources.Cart]{
			key: func(*resources.Cart) string { return "" },
			stamp: func(c *resources.Cart, id string, version int64, created, modified time.Time) {
				stampResource(&c.Resource, id, version, created, modified)
			},
		}, now),
		Products: newCollection(meta[resources.ProductProjection]{
			key: func(p *resources.ProductProjection) string { return p.Key },
			stamp: func(p *resources.ProductProjection, id string, version int64, created, modified time.Time) {
				stampResource(&p.Resource, id, version, created, modified)
			},
		}, now),
		Objects: newCollection(meta[StoredObject]{
			key: func(o *StoredObject) string { return objectKey(o.Container, o.Key) },
			stamp: func(o *StoredObject, id string, version int64, created, modified time.Time) {
				o.ID, o.Version, o.CreatedAt, o.LastModifiedAt = id, version, created, modified
			},
		}, now),
	}
}

func objectKey(container, key string) string {
	return container + "/" + key
}

// NewCategory builds a category from a draft, resolving its parent.
func (p *Project) NewCategory(draft resources.CategoryDraft) (resources.Category, error) {
	if err := validate.Struct(draft); err != nil {
		return resources.Category{}, invalidInput("Invalid category draft: %v", err)
	}
	c := resources.Category{
		Key:         draft.Key,
		Name:        draft.Name,
		Slug:        draft.Slug,
		Description: draft.Description,
		OrderHint:   draft.OrderHint,
		Ancestors:   []model.Reference[resources.Category]{},
	}
	if draft.Parent != nil {
		if err := p.setParent(&c, *draft.Parent); err != nil {
			return resources.Category{}, err
		}
	}
	return c, nil
}

func (p *Project) setParent(c *resources.Category, id model.ResourceIdentifier) error {
	parent, err := p.resolveCategory(id)
	if err != nil {
		return err
	}
	ref := model.NewReference[resources.Category]("category", parent.ID)
	c.Parent = &ref
	c.Ancestors = append(append([]model.Reference[resources.Category]{}, parent.Ancestors...), ref)
	return nil
}

func (p *Project) resolveCategory(id model.ResourceIdentifier) (resources.Category, error) {
	var (
		c   resources.Category
		err error
	)
	switch {
	case id.ID != "":
		c, err = p.Categories.Get(id.ID)
	case id.Key != "":
		c, err = p.Categories.GetByKey(id.Key)
	default:
		return c, invalidInput("A category reference needs an id or a key.")
	}
	if err != nil {
		return c, invalidInput("The referenced category %q does not exist.", id.ID+id.Key)
	}
	return c, nil
}

// CategoryChanges turns update actions into changes to apply under the
// collection lock. References are resolved up front.
func (p *Project) CategoryChanges(actions []request.UpdateAction) ([]func(*resources.Category) error, error) {
	changes := make([]func(*resources.Category) error, 0, len(actions))
	for _, a := range actions {
		switch payload := a.Payload.(type) {
		case *request.SetKey:
			key := payload.Key
			if key != "" {
				if _, err := p.Categories.GetByKey(key); err == nil {
					return nil, ErrDuplicate
				}
			}
			changes = append(changes, func(c *resources.Category) error { c.Key = key; return nil })
		case *resources.ChangeName:
			if len(payload.Name) == 0 {
				return nil, invalidInput("changeName: name must not be empty")
			}
			name := payload.Name
			changes = append(changes, func(c *resources.Category) error { c.Name = name; return nil })
		case *resources.ChangeSlug:
			if len(payload.Slug) == 0 {
				return nil, invalidInput("changeSlug: slug must not be empty")
			}
			slug := payload.Slug
			changes = append(changes, func(c *resources.Category) error { c.Slug = slug; return nil })
		case *resources.ChangeOrderHint:
			hint := payload.OrderHint
			changes = append(changes, func(c *resources.Category) error { c.OrderHint = hint; return nil })
		case *resources.ChangeParent:
			var moved resources.Category
			if err := p.setParent(&moved, payload.Parent); err != nil {
				return nil, err
			}
			changes = append(changes, func(c *resources.Category) error {
				if moved.Parent.ID == c.ID {
					return invalidInput("A category cannot be its own parent.")
				}
				c.Parent, c.Ancestors = moved.Parent, moved.Ancestors
				return nil
			})
		default:
			return nil, unknownAction(a.Action, "category")
		}
	}
	return changes, nil
}

// NewCart builds an empty active cart from a draft.
func (p *Project) NewCart(draft resources.CartDraft) (resources.Cart, error) {
	if err := validate.Struct(draft); err != nil {
		return resources.Cart{}, invalidInput("Invalid cart draft: %v", err)
	}
	return resources.Cart{
		CustomerID:      draft.CustomerID,
		CustomerEmail:   draft.CustomerEmail,
		Country:         draft.Country,
		CartState:       "Active",
		LineItems:       []resources.LineItem{},
		TotalPrice:      model.Money{CurrencyCode: draft.Currency},
		ShippingAddress: draft.ShippingAddr,
	}, nil
}

// CartChanges turns update actions into cart changes. Products are looked
// up before the cart is locked.
func (p *Project) CartChanges(actions []request.UpdateAction) ([]func(*resources.Cart) error, error) {
	changes := make([]func(*resources.Cart) error, 0, len(actions)+2)
	changes = append(changes, func(c *resources.Cart) error {
		c.LineItems = append([]resources.LineItem{}, c.LineItems...)
		return nil
	})
	for _, a := range actions {
		switch payload := a.Payload.(type) {
		case *resources.SetCustomerEmail:
			email := payload.Email
			changes = append(changes, func(c *resources.Cart) error { c.CustomerEmail = email; return nil })
		case *resources.SetShippingAddress:
			address := payload.Address
			changes = append(changes, func(c *resources.Cart) error { c.ShippingAddress = address; return nil })
		case *resources.AddLineItem:
			product, err := p.Products.Get(payload.ProductID)
			if err != nil {
				return nil, invalidInput("A product with ID '%s' was not found.", payload.ProductID)
			}
			add := *payload
			changes = append(changes, func(c *resources.Cart) error { return addLineItem(c, product, add) })
		case *resources.RemoveLineItem:
			remove := *payload
			changes = append(changes, func(c *resources.Cart) error { return removeLineItem(c, remove) })
		default:
			return nil, unknownAction(a.Action, "cart")
		}
	}
	// Totals follow every line change.
	changes = append(changes, func(c *resources.Cart) error { recalculate(c); return nil })
	return changes, nil
}

func addLineItem(c *resources.Cart, product resources.ProductProjection, add resources.AddLineItem) error {
	if add.Quantity <= 0 {
		add.Quantity = 1
	}
	var variant *resources.ProductVariant
	for _, v := range product.AllVariants() {
		if v.ID == add.VariantID || (add.VariantID == 0 && v.ID == product.Master.ID) {
			v := v
			variant = &v
			break
		}
	}
	if variant == nil {
		return invalidInput("The product %s has no variant %d.", product.ID, add.VariantID)
	}

	var price *resources.Price
	for _, pr := range variant.Prices {
		if pr.Value.CurrencyCode == c.TotalPrice.CurrencyCode && (pr.Country == "" || pr.Country == c.Country) {
			pr := pr
			price = &pr
			break
		}
	}
	if price == nil {
		return &InputError{Message: "The variant has no price in " + c.TotalPrice.CurrencyCode + "."}
	}

	for i := range c.LineItems {
		li := &c.LineItems[i]
		if li.ProductID == product.ID && li.VariantID == variant.ID {
			li.Quantity += add.Quantity
			return nil
		}
	}
	c.LineItems = append(c.LineItems, resources.LineItem{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Name:      product.Name,
		VariantID: variant.ID,
		Quantity:  add.Quantity,
		Price:     *price,
	})
	return nil
}

func removeLineItem(c *resources.Cart, remove resources.RemoveLineItem) error {
	for i, li := range c.LineItems {
		if li.ID != remove.LineItemID {
			continue
		}
		if remove.Quantity > 0 && remove.Quantity < li.Quantity {
			c.LineItems[i].Quantity -= remove.Quantity
			return nil
		}
		c.LineItems = append(c.LineItems[:i:i], c.LineItems[i+1:]...)
		return nil
	}
	return invalidInput("The cart has no line item %q.", remove.LineItemID)
}

func recalculate(c *resources.Cart) {
	var total int64
	for i := range c.LineItems {
		li := &c.LineItems[i]
		li.TotalPrice = model.Money{
			CentAmount:   li.Price.Value.CentAmount * li.Quantity,
			CurrencyCode: li.Price.Value.CurrencyCode,
		}
		total += li.TotalPrice.CentAmount
	}
	c.TotalPrice.CentAmount = total
}

func unknownAction(name, resource string) error {
	return &InputError{Message: "Unknown " + resource + " update action '" + name + "'."}
}
