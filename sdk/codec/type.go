// Package codec holds the type descriptors that tell the execution engine
// how to turn a response body into a concrete Go value.
//
// A descriptor is an ordinary value. It is created once, usually as a
// package-level variable next to the model it decodes, and threaded through
// every generic call that needs it:
//
//	var productType = codec.Of[Product]()
//	var productPage = model.PagedQueryResultOf(productType)
//
// Container descriptors never infer their element type. They decode their
// own envelope and hand each element to the descriptor they were built from.
package codec

import (
	"bytes"
	"fmt"
	"reflect"
)

// Type describes how to decode a JSON payload into a T.
//
// The zero Type is not usable; build one with Of, Named or one of the
// composing helpers.
type Type[T any] struct {
	name   string
	decode func(data []byte) (T, error)
	empty  func() T
}

// Of returns the leaf descriptor for T. The payload is decoded directly by
// json-iterator using T's field tags.
//
// Example:
//
//	categoryType := codec.Of[Category]()
//	c, err := categoryType.Decode(body)
func Of[T any]() Type[T] {
	return Type[T]{
		name: typeName[T](),
		decode: func(data []byte) (T, error) {
			var v T
			err := JSON.Unmarshal(data, &v)
			return v, err
		},
	}
}

// Named builds a descriptor from a custom decode function. It is the
// building block for envelope types whose elements are decoded by another
// descriptor.
func Named[T any](name string, decode func(data []byte) (T, error)) Type[T] {
	return Type[T]{name: name, decode: decode}
}

// WithEmpty returns a copy of t that yields empty() instead of the zero
// value when the payload is empty.
func (t Type[T]) WithEmpty(empty func() T) Type[T] {
	t.empty = empty
	return t
}

// Name returns a human readable name of the described type, e.g.
// "PagedQueryResult[resources.Category]".
func (t Type[T]) Name() string {
	return t.name
}

// Valid reports whether t was built by one of the constructors.
func (t Type[T]) Valid() bool {
	return t.decode != nil
}

// Decode decodes data into a T.
//
// An empty or whitespace-only payload is not an error: it yields the
// descriptor's empty value, which is the zero value of T unless WithEmpty
// was used. Any other failure is returned as a *DecodeError.
func (t Type[T]) Decode(data []byte) (T, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return t.emptyValue(), nil
	}
	if t.decode == nil {
		var zero T
		return zero, &DecodeError{Type: t.name, Err: fmt.Errorf("descriptor has no decoder")}
	}
	v, err := t.decode(data)
	if err != nil {
		var zero T
		return zero, wrapDecodeError(t.name, err)
	}
	return v, nil
}

func (t Type[T]) emptyValue() T {
	if t.empty != nil {
		return t.empty()
	}
	var zero T
	return zero
}

// Ptr describes an optional T. Empty payloads and the JSON literal null
// decode to nil.
func Ptr[T any](elem Type[T]) Type[*T] {
	return Named("*"+elem.name, func(data []byte) (*T, error) {
		if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			return nil, nil
		}
		v, err := elem.Decode(data)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
}

// SliceOf describes a JSON array whose members are decoded by elem.
// Empty payloads decode to an empty, non-nil slice.
func SliceOf[T any](elem Type[T]) Type[[]T] {
	return Named("[]"+elem.name, func(data []byte) ([]T, error) {
		var raw []RawMessage
		if err := JSON.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		out := make([]T, 0, len(raw))
		for i, item := range raw {
			v, err := elem.Decode(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	}).WithEmpty(func() []T { return []T{} })
}

// MapOf describes a JSON object whose values are decoded by elem.
func MapOf[T any](elem Type[T]) Type[map[string]T] {
	return Named("map[string]"+elem.name, func(data []byte) (map[string]T, error) {
		var raw map[string]RawMessage
		if err := JSON.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		out := make(map[string]T, len(raw))
		for k, item := range raw {
			v, err := elem.Decode(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	}).WithEmpty(func() map[string]T { return map[string]T{} })
}

// DecodeError reports a payload that could not be decoded into the
// described type.
type DecodeError struct {
	// Type is the descriptor name.
	Type string
	// Err is the underlying codec error.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func wrapDecodeError(name string, err error) error {
	if de, ok := err.(*DecodeError); ok {
		return de
	}
	return &DecodeError{Type: name, Err: err}
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.String()
}
