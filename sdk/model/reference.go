package model

import (
	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// Reference points at another resource by type and id. Obj is only set
// when the request asked for the reference to be expanded; a nil Obj is a
// valid, unexpanded reference.
type Reference[T any] struct {
	TypeID string `json:"typeId"`
	ID     string `json:"id"`
	Obj    *T     `json:"obj,omitempty"`
}

// NewReference returns an unexpanded reference.
func NewReference[T any](typeID, id string) Reference[T] {
	return Reference[T]{TypeID: typeID, ID: id}
}

// Expanded reports whether the referenced resource was returned inline.
func (r Reference[T]) Expanded() bool {
	return r.Obj != nil
}

// Filled returns a copy of r carrying obj.
func (r Reference[T]) Filled(obj T) Reference[T] {
	r.Obj = &obj
	return r
}

// ResourceIdentifier identifies a resource by id or key when writing.
type ResourceIdentifier struct {
	TypeID string `json:"typeId,omitempty"`
	ID     string `json:"id,omitempty"`
	Key    string `json:"key,omitempty"`
}

// ReferenceOf describes a Reference whose expanded object is decoded by
// elem.
func ReferenceOf[T any](elem codec.Type[T]) codec.Type[Reference[T]] {
	obj := codec.Ptr(elem)
	return codec.Named("Reference["+elem.Name()+"]", func(data []byte) (Reference[T], error) {
		var env struct {
			TypeID string           `json:"typeId"`
			ID     string           `json:"id"`
			Obj    codec.RawMessage `json:"obj"`
		}
		if err := codec.Unmarshal(data, &env); err != nil {
			return Reference[T]{}, err
		}
		ref := Reference[T]{TypeID: env.TypeID, ID: env.ID}
		o, err := obj.Decode(env.Obj)
		if err != nil {
			return Reference[T]{}, err
		}
		ref.Obj = o
		return ref, nil
	})
}
