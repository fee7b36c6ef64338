package dtos

import (
	"reflect"
	"slices"
	"strings"
	"sync"
)

type field struct {
	Name  string
	Type  reflect.Type
	Index []int
}

// fieldSet is the fixed set of declared fields of a DTO type, in declaration order.
type fieldSet struct {
	fields []field
	byName map[string]int
}

func (s *fieldSet) lookup(name string) (field, bool) {
	idx, ok := s.byName[name]
	if !ok {
		return field{}, false
	}

	return s.fields[idx], true
}

// Cache for field sets of DTO types, indexed by reflect.Type of the struct
var fieldSetCache sync.Map

func fieldSetOf(ty reflect.Type) *fieldSet {
	if cached, ok := fieldSetCache.Load(ty); ok {
		return cached.(*fieldSet)
	}

	fields := fieldsToSerialize(ty, "json")

	set := &fieldSet{
		fields: fields,
		byName: make(map[string]int, len(fields)),
	}

	for idx, field := range fields {
		set.byName[field.Name] = idx
	}

	cached, _ := fieldSetCache.LoadOrStore(ty, set)
	return cached.(*fieldSet)
}

// fieldsToSerialize walks the exported fields of a struct type, including the ones promoted
// from embedded structs, and resolves naming conflicts the way encoding/json does.
func fieldsToSerialize(ty reflect.Type, structTag string) []field {
	if ty.Kind() != reflect.Struct {
		panic("not a struct")
	}

	type queued struct {
		Type        reflect.Type
		ParentIndex []int
	}

	type candidate struct {
		Explicit bool
		Field    field
	}

	queue := []queued{{Type: ty}}

	candidates := map[string][]candidate{}

	var order []string

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		for idx := range item.Type.NumField() {
			fi := item.Type.Field(idx)
			if !fi.IsExported() {
				// this also hides the collection flag of an embedded Base
				continue
			}

			name, explicit := nameOf(fi, structTag)
			if name == "" {
				continue
			}

			// copy the parents index, appending to it must never share the backing array
			parent := item.ParentIndex
			index := append(parent[:len(parent):len(parent)], fi.Index...)

			if fi.Anonymous && !explicit {
				// embedded non-struct types are not walked
				if fi.Type.Kind() != reflect.Struct {
					continue
				}

				queue = append(queue, queued{fi.Type, index})
				continue
			}

			if len(candidates[name]) == 0 {
				order = append(order, name)
			}

			candidates[name] = append(candidates[name], candidate{
				Explicit: explicit,
				Field:    field{Name: name, Index: index, Type: fi.Type},
			})
		}
	}

	var fields []field

	for _, name := range order {
		byName := candidates[name]

		// INVARIANT: walking in bfs order yields candidates sorted by the length of their index
		cmp := func(a, b candidate) int { return len(a.Field.Index) - len(b.Field.Index) }
		if len(byName) == 0 || !slices.IsSortedFunc(byName, cmp) {
			panic("field candidates are empty or not sorted")
		}

		// only the least nested candidates are visible
		depth := len(byName[0].Field.Index)
		visible := slices.DeleteFunc(slices.Clone(byName), func(c candidate) bool {
			return len(c.Field.Index) != depth
		})

		if len(visible) == 1 {
			fields = append(fields, visible[0].Field)
			continue
		}

		explicit := slices.DeleteFunc(visible, func(c candidate) bool { return !c.Explicit })
		if len(explicit) == 1 {
			fields = append(fields, explicit[0].Field)
			continue
		}

		// ambiguous, the field is dropped without an error
	}

	return fields
}

func nameOf(fi reflect.StructField, structTag string) (name string, explicit bool) {
	tag := fi.Tag.Get(structTag)

	switch {
	case tag == "":
		return fi.Name, false

	case tag == "-":
		// skip this field
		return "", true
	}

	alias, _, _ := strings.Cut(tag, ",")
	if alias == "" {
		// options only, keep field name
		return fi.Name, false
	}

	return alias, true
}
