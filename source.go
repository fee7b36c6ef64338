package dtos

import "iter"

// Source is the abstract interface to a decoded value that is fed into [Decoder.Unmarshal].
//
// A [Source] interprets the underlying data in different forms:
//   - **Primitive types**: `bool`, `int`, `uint`, `float` and `string`.
//   - **Objects**: [Source.Get] retrieves the value of a named property.
//   - **Slices**: [Source.Iter] iterates the elements of a list.
//   - **Maps**: [Source.KeyValues] iterates key/value pairs.
//
// If the value can not be represented in the requested form, the method must return
// [ErrNotSupported].
//
// [JSONSource] is the implementation used to populate DTOs. [StringSource] and [EmptySource]
// are small building blocks for custom implementations.
type Source interface {
	// Bool returns the current value as a bool.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Bool() (bool, error)

	// Int returns the current value as an int64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Int() (int64, error)

	// Uint returns the current value as an uint64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Uint() (uint64, error)

	// Float returns the current value as a float64.
	// Returns error ErrNotSupported if the value can not be represented as such.
	Float() (float64, error)

	// String returns the current value as a string.
	// Returns error ErrNotSupported if the value can not be represented as such.
	String() (string, error)

	// Get returns a child value of this [Source] if it exists.
	// Returns error [ErrNotSupported] if the current [Source] does not have any
	// child values. If the [Source] does have children, but just not the
	// requested child, [ErrNoValue] must be returned.
	Get(key string) (Source, error)

	// KeyValues interprets the [Source] as a map and iterates over the
	// elements within. It yields a pair of key and value [Source] instances.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	KeyValues() (iter.Seq2[Source, Source], error)

	// Iter interprets the [Source] as a slice and iterates over the
	// elements within.
	// Returns [ErrNotSupported] if the [Source] is not iterable.
	Iter() (iter.Seq[Source], error)
}

// BinarySource extends [Source] with methods for sized integers. [Decoder.Unmarshal] prefers
// them over [Source.Int] and [Source.Uint] when the target has a fixed size.
type BinarySource interface {
	Int8() (int8, error)
	Int16() (int16, error)
	Int32() (int32, error)
	Int64() (int64, error)

	Uint8() (uint8, error)
	Uint16() (uint16, error)
	Uint32() (uint32, error)
	Uint64() (uint64, error)
}

// SourceUnmarshaler is implemented by types that decode themselves from a [Source].
// Collections use it to resolve their element type.
type SourceUnmarshaler interface {
	UnmarshalSource(source Source) error
}
