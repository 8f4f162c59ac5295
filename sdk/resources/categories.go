package resources

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
)

// Category groups products in a tree.
type Category struct {
	model.Resource
	Key         string                      `json:"key,omitempty"`
	Name        model.LocalizedString       `json:"name"`
	Slug        model.LocalizedString       `json:"slug"`
	Description model.LocalizedString       `json:"description,omitempty"`
	Parent      *model.Reference[Category]  `json:"parent,omitempty"`
	Ancestors   []model.Reference[Category] `json:"ancestors"`
	OrderHint   string                      `json:"orderHint,omitempty"`
}

// CategoryDraft creates a category.
type CategoryDraft struct {
	Key         string                    `json:"key,omitempty" validate:"omitempty,max=256"`
	Name        model.LocalizedString     `json:"name" validate:"required,min=1"`
	Slug        model.LocalizedString     `json:"slug" validate:"required,min=1"`
	Description model.LocalizedString     `json:"description,omitempty"`
	Parent      *model.ResourceIdentifier `json:"parent,omitempty"`
	OrderHint   string                    `json:"orderHint,omitempty"`
}

// Categories serves categories.
var Categories = sdk.NewEndpoint("/categories", codec.Of[Category]())

// ChangeName is the payload of the changeName action.
type ChangeName struct {
	Name model.LocalizedString `json:"name"`
}

// ChangeSlug is the payload of the changeSlug action.
type ChangeSlug struct {
	Slug model.LocalizedString `json:"slug"`
}

// ChangeOrderHint is the payload of the changeOrderHint action.
type ChangeOrderHint struct {
	OrderHint string `json:"orderHint"`
}

// ChangeParent is the payload of the changeParent action.
type ChangeParent struct {
	Parent model.ResourceIdentifier `json:"parent"`
}

// ChangeNameAction renames a category.
func ChangeNameAction(name model.LocalizedString) request.UpdateAction {
	return request.NewAction("changeName", ChangeName{Name: name})
}

// ChangeSlugAction changes the category slug.
func ChangeSlugAction(slug model.LocalizedString) request.UpdateAction {
	return request.NewAction("changeSlug", ChangeSlug{Slug: slug})
}

// ChangeOrderHintAction changes the category's position among siblings.
func ChangeOrderHintAction(hint string) request.UpdateAction {
	return request.NewAction("changeOrderHint", ChangeOrderHint{OrderHint: hint})
}

// ChangeParentAction moves the category below parentID.
func ChangeParentAction(parentID string) request.UpdateAction {
	return request.NewAction("changeParent", ChangeParent{
		Parent: model.ResourceIdentifier{TypeID: "category", ID: parentID},
	})
}

func init() {
	request.RegisterAction("changeName", func() any { return &ChangeName{} })
	request.RegisterAction("changeSlug", func() any { return &ChangeSlug{} })
	request.RegisterAction("changeOrderHint", func() any { return &ChangeOrderHint{} })
	request.RegisterAction("changeParent", func() any { return &ChangeParent{} })
}
