package model

import (
	"time"

	"github.com/birbparty/commerce-sdk/sdk/codec"
)

// CustomObject stores an arbitrary JSON value under a container and key.
// T is the caller's type for Value.
type CustomObject[T any] struct {
	ID             string    `json:"id"`
	Version        int64     `json:"version"`
	Container      string    `json:"container"`
	Key            string    `json:"key"`
	Value          T         `json:"value"`
	CreatedAt      time.Time `json:"createdAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
}

// ResourceID implements Versioned.
func (c CustomObject[T]) ResourceID() string { return c.ID }

// ResourceVersion implements Versioned.
func (c CustomObject[T]) ResourceVersion() int64 { return c.Version }

// CustomObjectDraft creates or replaces a custom object.
type CustomObjectDraft[T any] struct {
	Container string `json:"container" validate:"required,max=256"`
	Key       string `json:"key" validate:"required,max=256"`
	Value     T      `json:"value"`
	// Version enables optimistic concurrency when replacing an object.
	Version *int64 `json:"version,omitempty"`
}

// CustomObjectOf describes a custom object whose value is decoded by
// value.
func CustomObjectOf[T any](value codec.Type[T]) codec.Type[CustomObject[T]] {
	return codec.Named("CustomObject["+value.Name()+"]", func(data []byte) (CustomObject[T], error) {
		var env struct {
			ID             string           `json:"id"`
			Version        int64            `json:"version"`
			Container      string           `json:"container"`
			Key            string           `json:"key"`
			Value          codec.RawMessage `json:"value"`
			CreatedAt      time.Time        `json:"createdAt"`
			LastModifiedAt time.Time        `json:"lastModifiedAt"`
		}
		if err := codec.Unmarshal(data, &env); err != nil {
			return CustomObject[T]{}, err
		}
		v, err := value.Decode(env.Value)
		if err != nil {
			return CustomObject[T]{}, err
		}
		return CustomObject[T]{
			ID:             env.ID,
			Version:        env.Version,
			Container:      env.Container,
			Key:            env.Key,
			Value:          v,
			CreatedAt:      env.CreatedAt,
			LastModifiedAt: env.LastModifiedAt,
		}, nil
	})
}
