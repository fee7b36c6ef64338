package dtos

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	for _, inCollection := range []bool{false, true} {
		e := &testEntity{}
		e.SetInCollection(inCollection)

		require.Equal(t, objectOf("value", nil), Serialize(e))
	}
}

func TestSerialize_CollectionShape(t *testing.T) {
	a := &article{Title: "Go", Body: "text", Views: 3}

	full := Serialize(a)
	require.Equal(t, []string{"title", "body", "author", "tags", "views"}, full.(*Object).Keys())

	a.SetInCollection(true)
	require.Equal(t, objectOf("title", "Go"), Serialize(a))

	a.SetInCollection(false)
	require.Equal(t, full, Serialize(a))
}

func TestSerialize_NestedEntity(t *testing.T) {
	a := &article{Title: "Go", Author: &author{Name: "Ann"}, Tags: []string{"lang"}}

	encoded, err := json.Marshal(Serialize(a))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"title": "Go",
		"body": "",
		"author": {"name": "Ann"},
		"tags": ["lang"],
		"views": 0
	}`, string(encoded))
}

func TestSerialize_NilEntity(t *testing.T) {
	var a *article
	require.Nil(t, Serialize(a))

	encoded, err := json.Marshal(Serialize(&article{}))
	require.NoError(t, err)
	require.JSONEq(t, `{"title":"","body":"","author":null,"tags":null,"views":0}`, string(encoded))
}

func TestSetInCollection(t *testing.T) {
	e := &testEntity{}
	require.False(t, e.InCollection())

	e.SetInCollection(true)
	require.True(t, e.InCollection())
}

func TestValidateSource(t *testing.T) {
	invalid := []any{
		map[string]any{},
		map[string]any{"value": 1},
		map[string]string{"value": "1"},
	}

	for _, source := range invalid {
		require.ErrorIs(t, ValidateSource(source), ErrInvalidInput)

		_, err := newTestEntity(source, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	}

	valid := []any{nil, NewObject(), []any{}, "text"}
	for _, source := range valid {
		require.NoError(t, ValidateSource(source))
	}
}

func TestPopulate(t *testing.T) {
	source := mustDecode(t, `{
		"title": "Go",
		"body": "text",
		"author": {"name": "Ann"},
		"tags": ["a", "b"],
		"views": 12,
		"unknown": true
	}`)

	a, err := deserializeArticle(source, nil)
	require.NoError(t, err)
	require.Equal(t, &article{
		Title:  "Go",
		Body:   "text",
		Author: &author{Name: "Ann"},
		Tags:   []string{"a", "b"},
		Views:  12,
	}, a)
}

func TestPopulate_NullAndMissing(t *testing.T) {
	a := &article{Title: "keep", Author: &author{Name: "Ann"}}

	err := Populate(mustDecode(t, `{"author": null, "views": 1}`), a)
	require.NoError(t, err)
	require.Equal(t, "keep", a.Title)
	require.Equal(t, &author{Name: "Ann"}, a.Author)
	require.Equal(t, 1, a.Views)

	require.NoError(t, Populate(nil, a))
}

func TestPopulate_Errors(t *testing.T) {
	var a article

	err := Populate(map[string]any{"title": "Go"}, &a)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = Populate(mustDecode(t, `{"views": "many"}`), &a)
	require.ErrorIs(t, err, ErrNotSupported)

	err = Populate(mustDecode(t, `[1, 2]`), &a)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestPopulate_RoundTrip(t *testing.T) {
	expected := &article{Title: "Go", Author: &author{Name: "Ann"}, Tags: []string{"x"}, Views: 7}

	encoded, err := json.Marshal(Serialize(expected))
	require.NoError(t, err)

	actual, err := deserializeArticle(mustDecode(t, string(encoded)), nil)
	require.NoError(t, err)
	require.Equal(t, expected, actual)
}

func TestFieldValue(t *testing.T) {
	e := &testEntity{}

	value, err := FieldValue(e, "value")
	require.NoError(t, err)
	require.Nil(t, value)

	e.Value = "set"
	value, err = FieldValue(e, "value")
	require.NoError(t, err)
	require.Equal(t, "set", value)

	for _, name := range []string{"invalid", "Value", "inCollection", "Base"} {
		_, err = FieldValue(e, name)
		require.ErrorIs(t, err, ErrUnknownField, name)
	}

	_, err = FieldValue(&article{}, "draft")

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "draft", fieldErr.Field)
}

func TestSetFieldValue(t *testing.T) {
	a := &article{Author: &author{}}

	require.NoError(t, SetFieldValue(a, "title", "Go"))
	require.NoError(t, SetFieldValue(a, "views", int64(3)))
	require.NoError(t, SetFieldValue(a, "author", nil))
	require.Equal(t, &article{Title: "Go", Views: 3}, a)

	err := SetFieldValue(a, "nonexistent", 1)
	require.ErrorIs(t, err, ErrUnknownField)

	err = SetFieldValue(a, "title", 5)
	require.ErrorIs(t, err, ErrInvalidValue)

	e := &testEntity{}
	require.NoError(t, SetFieldValue(e, "value", []int{1}))
	require.Equal(t, []int{1}, e.Value)
}

type measurement struct {
	Base
	Level  int8    `json:"level"`
	Count  uint    `json:"count"`
	Weight float32 `json:"weight"`
}

func TestSetFieldValue_NumberConversion(t *testing.T) {
	m := &measurement{}

	require.NoError(t, SetFieldValue(m, "level", int64(-12)))
	require.NoError(t, SetFieldValue(m, "count", 3.0))
	require.NoError(t, SetFieldValue(m, "weight", 0.1))
	require.Equal(t, &measurement{Level: -12, Count: 3, Weight: 0.1}, m)

	lossy := map[string]any{
		"level":  int64(300),
		"count":  -1,
		"weight": 1e300,
	}

	for name, value := range lossy {
		err := SetFieldValue(m, name, value)
		require.ErrorIs(t, err, ErrInvalidValue, name)
	}

	err := SetFieldValue(&article{}, "views", 3.7)
	require.ErrorIs(t, err, ErrInvalidValue)

	// failed assignments leave the field untouched
	require.Equal(t, &measurement{Level: -12, Count: 3, Weight: 0.1}, m)
}

func TestDiagnosticString(t *testing.T) {
	require.Equal(t, "value: null", DiagnosticString(&testEntity{}))
	require.Equal(t, "value: 42", DiagnosticString(&testEntity{Value: 42}))

	a := &article{Title: "Go", Author: &author{Name: "Ann"}, Views: 2}
	require.Equal(t,
		"title: Go  ||  body:   ||  author: name: Ann  ||  tags: null  ||  views: 2",
		DiagnosticString(a),
	)

	// the flag is never rendered
	a.SetInCollection(true)
	require.NotContains(t, DiagnosticString(a), "inCollection")
}

type redacted struct {
	Base
	Secret string `json:"secret"`
}

func (r *redacted) FullJSON() any {
	return "redacted"
}

func TestSerialize_FullShaper(t *testing.T) {
	r := &redacted{Secret: "x"}
	require.Equal(t, "redacted", Serialize(r))

	// without a collection shape, members use the full shape
	r.SetInCollection(true)
	require.Equal(t, "redacted", Serialize(r))
	require.Equal(t, objectOf("secret", "x"), FullJSON(r))
}
