package codec

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is the json-iterator configuration used for every request and
// response body. It behaves like encoding/json, including field tags.
var JSON = jsoniter.ConfigCompatibleWithStandardLibrary

// RawMessage is an undecoded JSON value. Container descriptors keep their
// elements raw until the element descriptor decodes them.
type RawMessage = jsoniter.RawMessage

// Marshal encodes v with the SDK codec.
func Marshal(v any) ([]byte, error) {
	return JSON.Marshal(v)
}

// Unmarshal decodes data into v with the SDK codec.
func Unmarshal(data []byte, v any) error {
	return JSON.Unmarshal(data, v)
}
