package dtos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testEntity struct {
	Base
	Value any `json:"value"`
}

func newTestEntity(json any, ctx Context) (*testEntity, error) {
	if err := ValidateSource(json); err != nil {
		return nil, err
	}

	return &testEntity{}, nil
}

var testEntityType = NewElementType[*testEntity](newTestEntity)

type author struct {
	Base
	Name string `json:"name"`
}

type article struct {
	Base
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Author *author  `json:"author"`
	Tags   []string `json:"tags"`
	Views  int      `json:"views"`

	// not exported, not a field of the dto
	draft bool
}

// CollectionJSON drops everything but the title within collections.
func (a *article) CollectionJSON() any {
	obj := NewObject()
	obj.Set("title", a.Title)
	return obj
}

func deserializeArticle(json any, _ Context) (*article, error) {
	var a article
	if err := Populate(json, &a); err != nil {
		return nil, err
	}

	return &a, nil
}

var articleType = NewElementType[*article](deserializeArticle)

type library struct {
	Base
	Name     string               `json:"name"`
	Articles *Collection[*article] `json:"articles"`
}

func objectOf(keyValues ...any) *Object {
	obj := NewObject()
	for idx := 0; idx < len(keyValues); idx += 2 {
		obj.Set(keyValues[idx].(string), keyValues[idx+1])
	}

	return obj
}

func mustDecode(t *testing.T, data string) any {
	t.Helper()

	value, err := Decode([]byte(data))
	require.NoError(t, err)
	return value
}
