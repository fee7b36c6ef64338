package dtos

import (
	"encoding/json"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Collection is an ordered list of DTOs of one element type.
//
// Every DTO held by the collection is marked as member using [Entity.SetInCollection],
// and is therefore serialized using its collection shape. Removing a DTO clears the mark.
//
// A Collection has a single owner, it is not safe for concurrent use.
type Collection[T Entity] struct {
	elementType ElementType[T]
	items       []T
}

var _ Serializable = (*Collection[*Base])(nil)
var _ SourceUnmarshaler = (*Collection[*Base])(nil)

// NewCollection creates a collection holding DTOs of the given element type, seeded
// with the given items. Seeded items are marked as members just like appended ones.
// Returns ErrInvalidArgument if the element type is not resolved.
func NewCollection[T Entity](elementType ElementType[T], items ...T) (*Collection[T], error) {
	if !elementType.resolved() {
		return nil, fmt.Errorf("new collection of %s: unresolved element type: %w",
			reflect.TypeFor[T](), ErrInvalidArgument)
	}

	return newCollection(elementType, items), nil
}

func newCollection[T Entity](elementType ElementType[T], items []T) *Collection[T] {
	c := &Collection[T]{elementType: elementType, items: items}

	for _, item := range items {
		if !isNil(item) {
			item.SetInCollection(true)
		}
	}

	c.trimEmpty()
	return c
}

// Items returns the slots of the collection, indexed like [Collection.Get]. Slots emptied
// by [Collection.Unset] or skipped by [Collection.Set] hold the zero value of T, use
// [Collection.All] to visit members only. The slice is shared with the collection
// and must not be modified.
func (c *Collection[T]) Items() []T {
	if c.items == nil {
		return []T{}
	}

	return c.items
}

// ElementType returns the element type the collection was created with.
func (c *Collection[T]) ElementType() ElementType[T] {
	return c.elementType
}

// Len returns the number of members. Empty slots are not counted.
func (c *Collection[T]) Len() int {
	var count int
	for _, item := range c.items {
		if !isNil(item) {
			count++
		}
	}

	return count
}

// Append adds the DTO to the end of the collection. Appending nil does nothing.
func (c *Collection[T]) Append(e T) {
	if isNil(e) {
		log().Debug("ignore nil dto appended to collection", zap.String("type", c.elementType.Name()))
		return
	}

	e.SetInCollection(true)
	c.items = append(c.items, e)
}

// Pop removes the last member and returns it. Returns false if the collection has no members.
func (c *Collection[T]) Pop() (T, bool) {
	var zeroValue T

	c.trimEmpty()

	if len(c.items) == 0 {
		return zeroValue, false
	}

	last := c.items[len(c.items)-1]
	c.items[len(c.items)-1] = zeroValue
	c.items = c.items[:len(c.items)-1]
	c.trimEmpty()

	last.SetInCollection(false)
	return last, true
}

// trimEmpty drops empty slots at the end, the last slot always holds a member.
func (c *Collection[T]) trimEmpty() {
	end := len(c.items)
	for end > 0 && isNil(c.items[end-1]) {
		end--
	}

	c.items = c.items[:end]
}

// members returns the members without the empty slots.
func (c *Collection[T]) members() []T {
	members := make([]T, 0, len(c.items))
	for _, item := range c.All() {
		members = append(members, item)
	}

	return members
}

// Merge returns a new collection with the members of c followed by the members of other.
// Members are renumbered from zero, empty slots are dropped. Neither c nor other are modified.
func (c *Collection[T]) Merge(other *Collection[T]) *Collection[T] {
	var otherItems []T
	if other != nil {
		otherItems = other.members()
	}

	return newCollection(c.elementType, slices.Concat(c.members(), otherItems))
}

// Get returns the DTO at index idx. Returns false if there is none.
func (c *Collection[T]) Get(idx int) (T, bool) {
	if !c.Has(idx) {
		var zeroValue T
		return zeroValue, false
	}

	return c.items[idx], true
}

// Has reports whether there is a DTO at index idx.
func (c *Collection[T]) Has(idx int) bool {
	return idx >= 0 && idx < len(c.items) && !isNil(c.items[idx])
}

// Set puts the DTO at index idx. The collection grows as needed, leaving empty
// slots in between. A DTO that is replaced is no longer a member. Setting nil
// empties the slot like [Collection.Unset].
func (c *Collection[T]) Set(idx int, e T) {
	if idx < 0 {
		log().Debug("ignore dto set at negative index", zap.Int("index", idx))
		return
	}

	if isNil(e) {
		c.Unset(idx)
		return
	}

	if idx >= len(c.items) {
		c.items = append(c.items, make([]T, idx-len(c.items)+1)...)
	}

	if previous := c.items[idx]; !isNil(previous) && any(previous) != any(e) {
		previous.SetInCollection(false)
	}

	e.SetInCollection(true)
	c.items[idx] = e
}

// Unset empties the slot at index idx. Other members keep their index.
func (c *Collection[T]) Unset(idx int) {
	if idx < 0 || idx >= len(c.items) {
		return
	}

	var zeroValue T

	removed := c.items[idx]
	c.items[idx] = zeroValue
	c.trimEmpty()

	if !isNil(removed) {
		removed.SetInCollection(false)
	}
}

// All iterates the members with their index. Empty slots are skipped.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for idx, item := range c.items {
			if isNil(item) {
				continue
			}

			if !yield(idx, item) {
				return
			}
		}
	}
}

// Serialize returns the serialized members as a JSON array. Empty slots are left out.
func (c *Collection[T]) Serialize() any {
	values := make([]any, 0, len(c.items))
	for _, item := range c.All() {
		values = append(values, Serialize(item))
	}

	return values
}

func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Serialize())
}

// Deserialize creates a new collection of the same element type from a decoded JSON array.
func (c *Collection[T]) Deserialize(json any) (*Collection[T], error) {
	return DeserializeCollection[T](json, Context{ContextType: c.elementType})
}

// DeserializeCollection creates a collection from a decoded JSON array. The element type is
// taken from the context, see [ContextType]. Every element is deserialized by the element
// type with an empty context. A value that is not an array yields an empty collection.
func DeserializeCollection[T Entity](json any, ctx Context) (*Collection[T], error) {
	elementType, err := resolveElementType[T](ctx)
	if err != nil {
		return nil, fmt.Errorf("deserialize collection: %w", err)
	}

	c := newCollection(elementType, nil)

	values, ok := json.([]any)
	if !ok {
		log().Debug("deserialize collection from non array value",
			zap.String("type", elementType.Name()),
			zap.String("value", fmt.Sprintf("%T", json)),
		)

		return c, nil
	}

	for idx, value := range values {
		item, err := elementType.Deserialize(value, nil)
		if err != nil {
			return nil, fmt.Errorf("deserialize element idx=%d: %w", idx, err)
		}

		c.Append(item)
	}

	return c, nil
}

// UnmarshalSource fills the collection from a Source that exposes decoded JSON,
// like [JSONSource]. Without an element type, the one registered for T is used.
func (c *Collection[T]) UnmarshalSource(source Source) error {
	raw, ok := source.(interface{ Raw() any })
	if !ok {
		return fmt.Errorf("collection from %T: %w", source, ErrNotSupported)
	}

	elementType := c.elementType
	if !elementType.resolved() {
		registered, err := lookupElementType[T](reflect.TypeFor[T]())
		if err != nil {
			return err
		}

		elementType = registered
	}

	parsed, err := DeserializeCollection[T](raw.Raw(), Context{ContextType: elementType})
	if err != nil {
		return err
	}

	*c = *parsed
	return nil
}

// String renders the members for humans, e.g. "[{ title: foo }, { title: bar }]".
func (c *Collection[T]) String() string {
	if c.Len() == 0 {
		return "[]"
	}

	members := make([]string, 0, len(c.items))
	for _, item := range c.All() {
		members = append(members, "{ "+diagnosticValue(item)+" }")
	}

	return "[" + strings.Join(members, ", ") + "]"
}
