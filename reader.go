package dtos

// Reader gives safe access to the properties of a decoded JSON object.
type Reader struct {
	obj *Object
}

// NewReader wraps a decoded JSON object. Any other value, including nil,
// results in a reader over an empty object.
func NewReader(json any) *Reader {
	obj, ok := json.(*Object)
	if !ok || obj == nil {
		obj = NewObject()
	}

	return &Reader{obj: obj}
}

// ReadProperty returns the value of the named property.
// Returns false if the property is missing or null.
func (r *Reader) ReadProperty(name string) (any, bool) {
	value, ok := r.obj.Get(name)
	if !ok || value == nil {
		return nil, false
	}

	return value, true
}

func (r *Reader) Has(name string) bool {
	_, ok := r.ReadProperty(name)
	return ok
}
