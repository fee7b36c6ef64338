package dtos

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
)

// Object is an object-shaped JSON value. Unlike a map it keeps the order in
// which properties were set, which is also the order they are encoded in.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: map[string]any{}}
}

// Set sets a property. Setting an existing property keeps its position.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = map[string]any{}
	}

	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

// Get returns the value of a property and whether it exists.
// A property that holds null exists.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}

	value, ok := o.values[key]
	return value, ok
}

func (o *Object) Delete(key string) {
	if _, ok := o.Get(key); !ok {
		return
	}

	delete(o.values, key)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == key })
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return slices.Clone(o.keys)
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// All iterates the properties in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if o == nil {
			return
		}

		for _, key := range o.keys {
			if !yield(key, o.values[key]) {
				return
			}
		}
	}
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for idx, key := range o.keys {
		if idx > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		encodedValue, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, fmt.Errorf("encode property %q: %w", key, err)
		}

		buf.Write(encodedKey)
		buf.WriteByte(':')
		buf.Write(encodedValue)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (o *Object) UnmarshalJSON(data []byte) error {
	value, err := Decode(data)
	if err != nil {
		return err
	}

	decoded, ok := value.(*Object)
	if !ok {
		return fmt.Errorf("decode object: got %T: %w", value, ErrInvalidInput)
	}

	*o = *decoded
	return nil
}

// Decode parses JSON text into a value. Objects decode to *Object, arrays to []any,
// numbers to json.Number. Strings, bools and null decode as encoding/json does.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// only whitespace may follow the value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: unexpected data after value")
	}

	return value, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	switch token {
	case json.Delim('{'):
		obj := NewObject()
		for dec.More() {
			keyToken, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("decode key: %w", err)
			}

			// the decoder guarantees that keys are strings
			key := keyToken.(string)

			value, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("decode property %q: %w", key, err)
			}

			obj.Set(key, value)
		}

		// consume closing delimiter
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		return obj, nil

	case json.Delim('['):
		values := []any{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("decode element idx=%d: %w", len(values), err)
			}

			values = append(values, value)
		}

		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		return values, nil

	default:
		// string, json.Number, bool or nil
		return token, nil
	}
}
