package dtos

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// ElementType identifies the DTO type held by a [Collection] and knows how to
// deserialize it. The zero value is unresolved and rejected by [NewCollection].
type ElementType[T Entity] struct {
	name        string
	deserialize DeserializeFunc[T]
}

// NewElementType creates the element type for T. It is named after T.
func NewElementType[T Entity](deserialize DeserializeFunc[T]) ElementType[T] {
	return ElementType[T]{
		name:        reflect.TypeFor[T]().String(),
		deserialize: deserialize,
	}
}

// Name returns the name of the element type, e.g. "*mypkg.Article".
func (et ElementType[T]) Name() string {
	return et.name
}

func (et ElementType[T]) resolved() bool {
	return et.deserialize != nil
}

// Deserialize creates a DTO from a decoded JSON value.
func (et ElementType[T]) Deserialize(json any, ctx Context) (T, error) {
	if !et.resolved() {
		var zeroValue T
		return zeroValue, fmt.Errorf("element type %q is not resolved: %w", et.name, ErrInvalidArgument)
	}

	return et.deserialize(json, ctx)
}

// registered element types, indexed by name and by reflect.Type of T
var elementTypes sync.Map

// Register makes an element type resolvable by its name, e.g. from a [Context],
// and lets the [Decoder] fill collection typed fields of T.
func Register[T Entity](et ElementType[T]) error {
	if !et.resolved() {
		return fmt.Errorf("register element type %q: %w", et.name, ErrInvalidArgument)
	}

	if _, loaded := elementTypes.Swap(et.name, et); loaded {
		log().Debug("replaced registered element type", zap.String("type", et.name))
	}

	elementTypes.Store(reflect.TypeFor[T](), et)
	return nil
}

// LookupElementType returns the registered element type with the given name.
func LookupElementType[T Entity](name string) (ElementType[T], error) {
	return lookupElementType[T](name)
}

func lookupElementType[T Entity](key any) (ElementType[T], error) {
	registered, ok := elementTypes.Load(key)
	if !ok {
		return ElementType[T]{}, fmt.Errorf("element type %v is not registered: %w", key, ErrInvalidArgument)
	}

	et, ok := registered.(ElementType[T])
	if !ok {
		return ElementType[T]{}, fmt.Errorf(
			"element type %v does not hold %s: %w",
			key, reflect.TypeFor[T](), ErrInvalidArgument,
		)
	}

	return et, nil
}

// resolveElementType takes the element type out of the Context.
func resolveElementType[T Entity](ctx Context) (ElementType[T], error) {
	switch value := ctx[ContextType].(type) {
	case ElementType[T]:
		if !value.resolved() {
			return value, fmt.Errorf("element type in context is not resolved: %w", ErrInvalidArgument)
		}

		return value, nil

	case string:
		return lookupElementType[T](value)

	case nil:
		return ElementType[T]{}, fmt.Errorf("context has no element type: %w", ErrInvalidArgument)

	default:
		return ElementType[T]{}, fmt.Errorf(
			"context holds element type %T, expected %s: %w",
			value, reflect.TypeFor[ElementType[T]](), ErrInvalidArgument,
		)
	}
}
