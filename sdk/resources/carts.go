package resources

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
)

// Cart is a shopping cart.
type Cart struct {
	model.Resource
	CustomerID      string      `json:"customerId,omitempty"`
	CustomerEmail   string      `json:"customerEmail,omitempty"`
	Country         string      `json:"country,omitempty"`
	CartState       string      `json:"cartState"`
	LineItems       []LineItem  `json:"lineItems"`
	TotalPrice      model.Money `json:"totalPrice"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	BillingAddress  *Address    `json:"billingAddress,omitempty"`
}

// Quantity returns the number of items in the cart.
func (c Cart) Quantity() int64 {
	var n int64
	for _, li := range c.LineItems {
		n += li.Quantity
	}
	return n
}

// LineItem is one product variant in a cart.
type LineItem struct {
	ID         string                `json:"id"`
	ProductID  string                `json:"productId"`
	Name       model.LocalizedString `json:"name"`
	VariantID  int                   `json:"variantId"`
	Quantity   int64                 `json:"quantity"`
	Price      Price                 `json:"price"`
	TotalPrice model.Money           `json:"totalPrice"`
}

// Address is a postal address.
type Address struct {
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	StreetName   string `json:"streetName,omitempty"`
	StreetNumber string `json:"streetNumber,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	City         string `json:"city,omitempty"`
	Country      string `json:"country" validate:"required,len=2,uppercase"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

// CartDraft creates a cart.
type CartDraft struct {
	Currency      string   `json:"currency" validate:"required,len=3,uppercase"`
	CustomerID    string   `json:"customerId,omitempty"`
	CustomerEmail string   `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Country       string   `json:"country,omitempty" validate:"omitempty,len=2,uppercase"`
	InventoryMode string   `json:"inventoryMode,omitempty" validate:"omitempty,oneof=None TrackOnly ReserveOnOrder"`
	ShippingAddr  *Address `json:"shippingAddress,omitempty"`
}

// Carts serves carts.
var Carts = sdk.NewEndpoint("/carts", codec.Of[Cart]())

// SetCustomerEmail is the payload of the setCustomerEmail action.
type SetCustomerEmail struct {
	Email string `json:"email,omitempty"`
}

// AddLineItem is the payload of the addLineItem action.
type AddLineItem struct {
	ProductID string `json:"productId"`
	VariantID int    `json:"variantId"`
	Quantity  int64  `json:"quantity"`
}

// RemoveLineItem is the payload of the removeLineItem action. A zero
// Quantity removes the whole line.
type RemoveLineItem struct {
	LineItemID string `json:"lineItemId"`
	Quantity   int64  `json:"quantity,omitempty"`
}

// SetShippingAddress is the payload of the setShippingAddress action. A nil
// Address removes it.
type SetShippingAddress struct {
	Address *Address `json:"address,omitempty"`
}

// SetCustomerEmailAction sets or, with an empty email, removes the
// customer email.
func SetCustomerEmailAction(email string) request.UpdateAction {
	return request.NewAction("setCustomerEmail", SetCustomerEmail{Email: email})
}

// AddLineItemAction adds quantity units of a product variant.
func AddLineItemAction(productID string, variantID int, quantity int64) request.UpdateAction {
	return request.NewAction("addLineItem", AddLineItem{ProductID: productID, VariantID: variantID, Quantity: quantity})
}

// RemoveLineItemAction removes quantity units of a line, or the whole line
// when quantity is zero.
func RemoveLineItemAction(lineItemID string, quantity int64) request.UpdateAction {
	return request.NewAction("removeLineItem", RemoveLineItem{LineItemID: lineItemID, Quantity: quantity})
}

// SetShippingAddressAction sets the shipping address.
func SetShippingAddressAction(address *Address) request.UpdateAction {
	return request.NewAction("setShippingAddress", SetShippingAddress{Address: address})
}

func init() {
	request.RegisterAction("setCustomerEmail", func() any { return &SetCustomerEmail{} })
	request.RegisterAction("addLineItem", func() any { return &AddLineItem{} })
	request.RegisterAction("removeLineItem", func() any { return &RemoveLineItem{} })
	request.RegisterAction("setShippingAddress", func() any { return &SetShippingAddress{} })
}
