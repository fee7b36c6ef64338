package dtos

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringSource(t *testing.T) {
	runIntegerTests(t, toStringSource)
	runFloatTests(t, toStringSource)
	runBoolTests(t, toStringSource)
}

func TestSimpleStringSource(t *testing.T) {
	runIntegerTests(t, toSimpleStringSource)
	runFloatTests(t, toSimpleStringSource)
	runBoolTests(t, toSimpleStringSource)
}

// JSON numbers are parsed by StringSource, booleans are not numbers.
func TestJSONSource_Numbers(t *testing.T) {
	runIntegerTests(t, toJSONNumber)
	runFloatTests(t, toJSONNumber)

	_, err := UnmarshalNew[bool](toJSONNumber("1"))
	require.ErrorIs(t, err, ErrNotSupported)
}

var notAnInteger = []string{"foobar", "", "1e4", "1.5"}
var notAnUnsigned = []string{"foobar", "", "1e4", "1.5", "-1"}

func runIntegerTests(t *testing.T, toSource func(string) Source) {
	if strconv.IntSize == 64 {
		parseTest(t, toSource, numberCase[int]{
			Min: "-9223372036854775808", MinValue: math.MinInt,
			Max: "9223372036854775807", MaxValue: math.MaxInt,
			OutOfRange: []string{"-9223372036854775809", "9223372036854775808"},
			Invalid:    notAnInteger,
		})

		parseTest(t, toSource, numberCase[uint]{
			Min: "0", MinValue: 0,
			Max: "18446744073709551615", MaxValue: math.MaxUint,
			OutOfRange: []string{"18446744073709551616"},
			Invalid:    notAnUnsigned,
		})
	}

	parseTest(t, toSource, numberCase[int8]{
		Min: "-128", MinValue: math.MinInt8,
		Max: "127", MaxValue: math.MaxInt8,
		OutOfRange: []string{"-129", "128"},
		Invalid:    notAnInteger,
	})

	parseTest(t, toSource, numberCase[int16]{
		Min: "-32768", MinValue: math.MinInt16,
		Max: "32767", MaxValue: math.MaxInt16,
		OutOfRange: []string{"-32769", "32768"},
		Invalid:    notAnInteger,
	})

	parseTest(t, toSource, numberCase[int32]{
		Min: "-2147483648", MinValue: math.MinInt32,
		Max: "2147483647", MaxValue: math.MaxInt32,
		OutOfRange: []string{"-2147483649", "2147483648"},
		Invalid:    notAnInteger,
	})

	parseTest(t, toSource, numberCase[int64]{
		Min: "-9223372036854775808", MinValue: math.MinInt64,
		Max: "9223372036854775807", MaxValue: math.MaxInt64,
		OutOfRange: []string{"-9223372036854775809", "9223372036854775808"},
		Invalid:    notAnInteger,
	})

	parseTest(t, toSource, numberCase[uint8]{
		Min: "0", MinValue: 0,
		Max: "255", MaxValue: math.MaxUint8,
		OutOfRange: []string{"256"},
		Invalid:    notAnUnsigned,
	})

	parseTest(t, toSource, numberCase[uint16]{
		Min: "0", MinValue: 0,
		Max: "65535", MaxValue: math.MaxUint16,
		OutOfRange: []string{"65536"},
		Invalid:    notAnUnsigned,
	})

	parseTest(t, toSource, numberCase[uint32]{
		Min: "0", MinValue: 0,
		Max: "4294967295", MaxValue: math.MaxUint32,
		OutOfRange: []string{"4294967296"},
		Invalid:    notAnUnsigned,
	})

	parseTest(t, toSource, numberCase[uint64]{
		Min: "0", MinValue: 0,
		Max: "18446744073709551615", MaxValue: math.MaxUint64,
		OutOfRange: []string{"18446744073709551616"},
		Invalid:    notAnUnsigned,
	})
}

func runFloatTests(t *testing.T, toSource func(string) Source) {
	parseTest(t, toSource, numberCase[float64]{
		Min: "-1234.5", MinValue: -1234.5,
		Max: "1235.5", MaxValue: 1235.5,
		Valid:   []string{"1e4", "-1", "0.0024"},
		Invalid: []string{"foobar", ""},
	})

	parseTest(t, toSource, numberCase[float32]{
		Min: "-0.5", MinValue: -0.5,
		Max: "8015", MaxValue: 8015,
		Invalid: []string{"foobar", ""},
	})
}

func runBoolTests(t *testing.T, toSource func(string) Source) {
	parseTest(t, toSource, numberCase[bool]{
		Min: "true", MinValue: true,
		Max: "false", MaxValue: false,
		Invalid: []string{"foobar", "", "1e4", "-1"},
	})
}

// numberCase describes how the bounds of T and some other inputs parse.
type numberCase[T any] struct {
	Min      string
	MinValue T

	Max      string
	MaxValue T

	OutOfRange []string
	Invalid    []string
	Valid      []string
}

func parseTest[T any](t *testing.T, toSource func(string) Source, c numberCase[T]) {
	var tZero T

	t.Run(fmt.Sprintf("parse to %T", tZero), func(t *testing.T) {
		actual, err := UnmarshalNew[T](toSource(c.Min))
		require.NoError(t, err)
		require.Equal(t, c.MinValue, actual)

		actual, err = UnmarshalNew[T](toSource(c.Max))
		require.NoError(t, err)
		require.Equal(t, c.MaxValue, actual)

		for _, value := range c.OutOfRange {
			actual, err = UnmarshalNew[T](toSource(value))
			require.ErrorIs(t, err, strconv.ErrRange, value)
			require.Equal(t, tZero, actual)
		}

		for _, value := range c.Invalid {
			actual, err = UnmarshalNew[T](toSource(value))
			require.ErrorIs(t, err, ErrNotSupported, value)
			require.Equal(t, tZero, actual)
		}

		for _, value := range c.Valid {
			_, err = UnmarshalNew[T](toSource(value))
			require.NoError(t, err, value)
		}
	})
}

func toStringSource(value string) Source {
	return StringSource(value)
}

func toJSONNumber(value string) Source {
	return JSONSource{Value: json.Number(value)}
}

func toSimpleStringSource(value string) Source {
	return simpleStringSource{Value: value}
}

// simpleStringSource is not a BinarySource, it exercises the fallback to Source.Int and Source.Uint
type simpleStringSource struct {
	EmptySource
	Value string
}

func (s simpleStringSource) Bool() (bool, error) {
	return StringSource(s.Value).Bool()
}

func (s simpleStringSource) Float() (float64, error) {
	return StringSource(s.Value).Float()
}

func (s simpleStringSource) Int() (int64, error) {
	return StringSource(s.Value).Int()
}

func (s simpleStringSource) Uint() (uint64, error) {
	return StringSource(s.Value).Uint()
}
