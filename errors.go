package dtos

import (
	"errors"
	"fmt"
	"reflect"
)

var ErrNoValue = errors.New("no value")
var ErrNotSupported = errors.New("not supported")

// ErrInvalidArgument is returned for malformed constructor or deserialize arguments,
// e.g. an unresolved element type.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidInput is returned when a DTO is deserialized from a plain key-value map
// instead of an object-shaped JSON value.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownField is returned when accessing a field the DTO type does not declare.
var ErrUnknownField = errors.New("unknown field")

// ErrInvalidValue is returned when a value can not be assigned to a declared field.
var ErrInvalidValue = errors.New("invalid value")

type NotSupportedError struct {
	Type reflect.Type
}

func (n NotSupportedError) Error() string {
	return fmt.Sprintf("type %q is not supported", n.Type)
}

// FieldError describes a failed access to a named field of a DTO type.
type FieldError struct {
	Type  reflect.Type
	Field string
	Err   error
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", f.Type, f.Field, f.Err)
}

func (f *FieldError) Unwrap() error {
	return f.Err
}
