package dtos

import (
	"encoding/json"
	"iter"
)

// JSONSource adapts a value produced by [Decode] to a [Source].
//
// Objects support [Source.Get] and [Source.KeyValues], arrays support [Source.Iter].
// Numbers are parsed using [StringSource]. A property holding null is reported
// as missing by [JSONSource.Get], the same way [Reader.ReadProperty] treats it.
type JSONSource struct {
	Value any
}

var _ Source = JSONSource{}
var _ BinarySource = JSONSource{}

func (j JSONSource) Bool() (bool, error) {
	switch value := j.Value.(type) {
	case bool:
		return value, nil
	case nil:
		return false, ErrNoValue
	default:
		return false, ErrNotSupported
	}
}

func (j JSONSource) number() (StringSource, error) {
	switch value := j.Value.(type) {
	case json.Number:
		return StringSource(value), nil
	case nil:
		return "", ErrNoValue
	default:
		return "", ErrNotSupported
	}
}

func (j JSONSource) Int() (int64, error) {
	return withNumber(j, StringSource.Int)
}

func (j JSONSource) Uint() (uint64, error) {
	return withNumber(j, StringSource.Uint)
}

func (j JSONSource) Float() (float64, error) {
	return withNumber(j, StringSource.Float)
}

func (j JSONSource) Int8() (int8, error)     { return withNumber(j, StringSource.Int8) }
func (j JSONSource) Int16() (int16, error)   { return withNumber(j, StringSource.Int16) }
func (j JSONSource) Int32() (int32, error)   { return withNumber(j, StringSource.Int32) }
func (j JSONSource) Int64() (int64, error)   { return withNumber(j, StringSource.Int64) }
func (j JSONSource) Uint8() (uint8, error)   { return withNumber(j, StringSource.Uint8) }
func (j JSONSource) Uint16() (uint16, error) { return withNumber(j, StringSource.Uint16) }
func (j JSONSource) Uint32() (uint32, error) { return withNumber(j, StringSource.Uint32) }
func (j JSONSource) Uint64() (uint64, error) { return withNumber(j, StringSource.Uint64) }

func (j JSONSource) String() (string, error) {
	switch value := j.Value.(type) {
	case string:
		return value, nil
	case nil:
		return "", ErrNoValue
	default:
		return "", ErrNotSupported
	}
}

// Raw returns the decoded value. Fields of type any receive it as is.
func (j JSONSource) Raw() any {
	return j.Value
}

// IsNull reports whether the value is JSON null.
func (j JSONSource) IsNull() bool {
	return j.Value == nil
}

func (j JSONSource) Get(key string) (Source, error) {
	obj, ok := j.Value.(*Object)
	if !ok {
		return nil, ErrNotSupported
	}

	value, ok := obj.Get(key)
	if !ok || value == nil {
		return nil, ErrNoValue
	}

	return JSONSource{Value: value}, nil
}

func (j JSONSource) KeyValues() (iter.Seq2[Source, Source], error) {
	obj, ok := j.Value.(*Object)
	if !ok {
		return nil, ErrNotSupported
	}

	it := func(yield func(Source, Source) bool) {
		for key, value := range obj.All() {
			if !yield(StringSource(key), JSONSource{Value: value}) {
				return
			}
		}
	}

	return it, nil
}

func (j JSONSource) Iter() (iter.Seq[Source], error) {
	values, ok := j.Value.([]any)
	if !ok {
		return nil, ErrNotSupported
	}

	it := func(yield func(Source) bool) {
		for _, value := range values {
			if !yield(JSONSource{Value: value}) {
				return
			}
		}
	}

	return it, nil
}

func withNumber[T any](j JSONSource, parse func(StringSource) (T, error)) (T, error) {
	number, err := j.number()
	if err != nil {
		var zeroValue T
		return zeroValue, err
	}

	return parse(number)
}
