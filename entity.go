package dtos

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Entity is implemented by every DTO. Embed [Base] in a struct to implement it.
type Entity interface {
	// InCollection reports whether the DTO is currently a member of a collection.
	InCollection() bool

	// SetInCollection marks the DTO as member of a collection. It has no other effect.
	SetInCollection(inCollection bool)
}

// FullShaper can be implemented by a DTO to replace the default full shape, see [FullJSON].
type FullShaper interface {
	FullJSON() any
}

// CollectionShaper can be implemented by a DTO to use a smaller representation
// while it is a member of a collection.
type CollectionShaper interface {
	CollectionJSON() any
}

// Serializable is implemented by values that serialize themselves, e.g. a [Collection].
type Serializable interface {
	Serialize() any
}

// Context carries auxiliary hints into deserialization that are not part of the JSON payload.
type Context map[string]any

// ContextType is the Context key holding the element type of a collection.
// The value is either an [ElementType] or the name of a registered one.
const ContextType = "type"

// DeserializeFunc creates a DTO from a decoded JSON value.
type DeserializeFunc[T Entity] func(json any, ctx Context) (T, error)

// Base is embedded into DTO structs. It holds the collection flag, which is unexported
// and thus never part of the serialized DTO.
type Base struct {
	inCollection bool
}

func (b *Base) InCollection() bool {
	return b.inCollection
}

func (b *Base) SetInCollection(inCollection bool) {
	b.inCollection = inCollection
}

// Serialize returns the JSON value of a DTO. A DTO within a collection is serialized
// using its collection shape, all others use their full shape.
func Serialize(e Entity) any {
	if isNil(e) {
		return nil
	}

	if e.InCollection() {
		if shaper, ok := e.(CollectionShaper); ok {
			return shaper.CollectionJSON()
		}
	}

	if shaper, ok := e.(FullShaper); ok {
		return shaper.FullJSON()
	}

	return FullJSON(e)
}

// FullJSON maps every declared field of the DTO to its value, in declaration order.
// Field values that are DTOs or [Serializable] are serialized recursively.
func FullJSON(e Entity) *Object {
	obj := NewObject()

	target, ok := structOf(e)
	if !ok {
		return obj
	}

	for _, field := range fieldSetOf(target.Type()).fields {
		obj.Set(field.Name, serializeValue(target.FieldByIndex(field.Index).Interface()))
	}

	return obj
}

func serializeValue(value any) any {
	switch value := value.(type) {
	case Entity:
		return Serialize(value)

	case Serializable:
		if isNil(value) {
			return nil
		}

		return value.Serialize()

	default:
		return value
	}
}

// ValidateSource is the validation every DTO deserialization starts with. DTOs can only be
// deserialized from object-shaped JSON values as returned by [Decode]. A plain map, even an
// empty one, is rejected with [ErrInvalidInput].
func ValidateSource(json any) error {
	if json != nil && reflect.TypeOf(json).Kind() == reflect.Map {
		return fmt.Errorf(
			"deserialize from %T, use JSON decoded as an object: %w",
			json, ErrInvalidInput,
		)
	}

	return nil
}

// Populate validates the JSON value and fills the declared fields of the DTO from it.
// Properties that are missing or null leave the field untouched. A nil value populates nothing.
func Populate(json any, e Entity) error {
	if err := ValidateSource(json); err != nil {
		return err
	}

	if json == nil {
		return nil
	}

	if _, ok := structOf(e); !ok {
		return fmt.Errorf("populate %T: not a pointer to a struct: %w", e, ErrInvalidArgument)
	}

	if err := dec.Unmarshal(JSONSource{Value: json}, e); err != nil {
		return fmt.Errorf("populate %T: %w", e, err)
	}

	return nil
}

// FieldValue returns the value of a declared field of the DTO.
func FieldValue(e Entity, name string) (any, error) {
	target, field, err := lookupField(e, name)
	if err != nil {
		return nil, err
	}

	return target.FieldByIndex(field.Index).Interface(), nil
}

// SetFieldValue assigns a value to a declared field of the DTO. Fields that the DTO type
// does not declare can not be set. The value must be assignable or, for numbers, convertible
// to the type of the field without loss: 3.7 into an int field or 300 into an int8 field
// fail with [ErrInvalidValue]. A nil value resets the field to its zero value.
func SetFieldValue(e Entity, name string, value any) error {
	target, field, err := lookupField(e, name)
	if err != nil {
		return err
	}

	fieldValue := target.FieldByIndex(field.Index)

	if value == nil {
		fieldValue.SetZero()
		return nil
	}

	rv := reflect.ValueOf(value)

	switch {
	case rv.Type().AssignableTo(field.Type):
		fieldValue.Set(rv)

	case isNumber(rv.Kind()) && isNumber(field.Type.Kind()):
		converted, ok := convertNumber(rv, field.Type)
		if !ok {
			return &FieldError{
				Type:  target.Type(),
				Field: name,
				Err:   fmt.Errorf("%v does not fit into %s: %w", value, field.Type, ErrInvalidValue),
			}
		}

		fieldValue.Set(converted)

	default:
		return &FieldError{
			Type:  target.Type(),
			Field: name,
			Err:   fmt.Errorf("can not assign %T to %s: %w", value, field.Type, ErrInvalidValue),
		}
	}

	return nil
}

func lookupField(e Entity, name string) (reflect.Value, field, error) {
	target, ok := structOf(e)
	if !ok {
		return reflect.Value{}, field{}, fmt.Errorf("%T is not a pointer to a struct: %w", e, ErrInvalidArgument)
	}

	field, ok := fieldSetOf(target.Type()).lookup(name)
	if !ok {
		return reflect.Value{}, field, &FieldError{Type: target.Type(), Field: name, Err: ErrUnknownField}
	}

	return target, field, nil
}

const diagnosticSeparator = "  ||  "

// DiagnosticString renders the declared fields of a DTO as "name: value" pairs for humans.
// It is not JSON. Absent values render as null, DTO values render their own diagnostic string.
func DiagnosticString(e Entity) string {
	target, ok := structOf(e)
	if !ok {
		return ""
	}

	fields := fieldSetOf(target.Type()).fields

	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		value := diagnosticValue(target.FieldByIndex(field.Index).Interface())
		pairs = append(pairs, field.Name+": "+value)
	}

	return strings.Join(pairs, diagnosticSeparator)
}

func diagnosticValue(value any) string {
	if isNil(value) {
		return "null"
	}

	switch value := value.(type) {
	case Entity:
		return DiagnosticString(value)

	case fmt.Stringer:
		return value.String()
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		return diagnosticValue(rv.Elem().Interface())
	}

	return fmt.Sprint(value)
}

// structOf returns the addressable struct a DTO points to.
func structOf(e Entity) (reflect.Value, bool) {
	if isNil(e) {
		return reflect.Value{}, false
	}

	rv := reflect.ValueOf(e)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	return rv.Elem(), true
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// convertNumber converts between numeric types. It fails if the value
// changes on the way, e.g. by truncation, overflow or a lost sign.
// Between floats only overflow fails, rounding is accepted.
func convertNumber(value reflect.Value, ty reflect.Type) (reflect.Value, bool) {
	converted := value.Convert(ty)

	if isFloat(value.Kind()) && isFloat(ty.Kind()) {
		overflow := math.IsInf(converted.Float(), 0) && !math.IsInf(value.Float(), 0)
		return converted, !overflow
	}

	if isNegative(value) != isNegative(converted) {
		return reflect.Value{}, false
	}

	if !converted.Convert(value.Type()).Equal(value) {
		return reflect.Value{}, false
	}

	return converted, true
}

func isNegative(value reflect.Value) bool {
	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int() < 0
	case reflect.Float32, reflect.Float64:
		return value.Float() < 0
	default:
		return false
	}
}

func isFloat(kind reflect.Kind) bool {
	return kind == reflect.Float32 || kind == reflect.Float64
}

func isNumber(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
