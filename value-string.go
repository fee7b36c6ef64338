package dtos

import (
	"errors"
	"fmt"
	"iter"
	"strconv"

	"golang.org/x/exp/constraints"
)

// StringSource adapts a `string` to a Source. Numbers and bools are parsed
// using the strconv package, strings are returned as is.
// JSON numbers and object keys are exposed through a StringSource.
type StringSource string

var _ BinarySource = StringSource("")
var _ Source = StringSource("")

func (s StringSource) Int8() (int8, error) {
	return parseInt[int8](s, 8)
}

func (s StringSource) Int16() (int16, error) {
	return parseInt[int16](s, 16)
}

func (s StringSource) Int32() (int32, error) {
	return parseInt[int32](s, 32)
}

func (s StringSource) Int64() (int64, error) {
	return parseInt[int64](s, 64)
}

func (s StringSource) Uint8() (uint8, error) {
	return parseUint[uint8](s, 8)
}

func (s StringSource) Uint16() (uint16, error) {
	return parseUint[uint16](s, 16)
}

func (s StringSource) Uint32() (uint32, error) {
	return parseUint[uint32](s, 32)
}

func (s StringSource) Uint64() (uint64, error) {
	return parseUint[uint64](s, 64)
}

func (s StringSource) Bool() (bool, error) {
	parsedValue, err := strconv.ParseBool(string(s))
	return handleSyntaxErr(string(s), parsedValue, err)
}

func (s StringSource) Int() (int64, error) {
	return s.Int64()
}

func (s StringSource) Uint() (uint64, error) {
	return s.Uint64()
}

func (s StringSource) Float() (float64, error) {
	parsedValue, err := strconv.ParseFloat(string(s), 64)
	return handleSyntaxErr(string(s), parsedValue, err)
}

func (s StringSource) String() (string, error) {
	return string(s), nil
}

func (s StringSource) Get(string) (Source, error) {
	return nil, ErrNotSupported
}

func (s StringSource) KeyValues() (iter.Seq2[Source, Source], error) {
	return nil, ErrNotSupported
}

func (s StringSource) Iter() (iter.Seq[Source], error) {
	return nil, ErrNotSupported
}

func parseInt[T constraints.Signed](s StringSource, bitSize int) (T, error) {
	intValue, err := strconv.ParseInt(string(s), 10, bitSize)
	return handleSyntaxErr(string(s), T(intValue), err)
}

func parseUint[T constraints.Unsigned](s StringSource, bitSize int) (T, error) {
	intValue, err := strconv.ParseUint(string(s), 10, bitSize)
	return handleSyntaxErr(string(s), T(intValue), err)
}

func handleSyntaxErr[T any](inputValue string, value T, err error) (T, error) {
	var zeroValue T
	if errors.Is(err, strconv.ErrSyntax) {
		err := fmt.Errorf("parse %q: %w", inputValue, err)
		return zeroValue, errors.Join(err, ErrNotSupported)
	}

	if err != nil {
		return zeroValue, err
	}

	return value, nil
}
