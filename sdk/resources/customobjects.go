package resources

import (
	"github.com/birbparty/commerce-sdk/sdk"
	"github.com/birbparty/commerce-sdk/sdk/codec"
	"github.com/birbparty/commerce-sdk/sdk/model"
	"github.com/birbparty/commerce-sdk/sdk/request"
)

// CustomObjectsPath is where custom objects live.
const CustomObjectsPath = "/custom-objects"

// CustomObjects returns the custom object endpoint for values decoded by
// value. The value type is only known to the caller, so every call site
// composes its own endpoint:
//
//	type Limits struct{ Max int `json:"max"` }
//	limits := resources.CustomObjects(codec.Of[Limits]())
//	obj, err := sdk.ExecuteBlocking(ctx, client, resources.GetCustomObject(limits, "settings", "limits"))
func CustomObjects[T any](value codec.Type[T]) sdk.Endpoint[model.CustomObject[T]] {
	return sdk.NewEndpoint(CustomObjectsPath, model.CustomObjectOf(value))
}

// GetCustomObject fetches the object stored under container and key. A
// missing object completes with nil.
func GetCustomObject[T any](endpoint sdk.Endpoint[model.CustomObject[T]], container, key string) request.GetBuilder[model.CustomObject[T]] {
	return request.GetAt(endpoint, "/{0}/{1}", container, key)
}

// UpsertCustomObject creates the object or replaces its value. With a
// version in the draft the replace only succeeds against that version.
func UpsertCustomObject[T any](endpoint sdk.Endpoint[model.CustomObject[T]], draft model.CustomObjectDraft[T]) request.CreateCommand[model.CustomObjectDraft[T], model.CustomObject[T]] {
	return request.Create(endpoint, draft)
}

// DeleteCustomObject deletes the object stored under container and key.
func DeleteCustomObject[T any](endpoint sdk.Endpoint[model.CustomObject[T]], container, key string, version int64) request.DeleteCommand[model.CustomObject[T]] {
	return request.DeleteAt(endpoint, version, "/{0}/{1}", container, key)
}
