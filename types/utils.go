package types

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// MarshalJSON allows JSON marshalling of dependent types, stripping the
// trailing newline encoding/json.Encoder always appends and leaving HTML
// characters unescaped.
func MarshalJSON(value interface{}) ([]byte, error) {
	buf := new(bytes.Buffer)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, errors.Wrap(err, "can't marshal JSON")
	}

	b := buf.Bytes()
	if l := len(b); l > 0 && b[l-1] == '\n' {
		b = b[:l-1]
	}

	return b, nil
}

// UnmarshalJSON allows JSON unmarshalling of dependent types, naming the
// target type in the wrapped error.
func UnmarshalJSON(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "can't unmarshal JSON into %s", Name(v))
	}

	return nil
}

// Name returns the name of value's type, dereferencing any number of
// leading pointers first.
func Name(value interface{}) string {
	t := reflect.TypeOf(value)
	if t == nil {
		return "<nil>"
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Name()
}

// CantParseFloat64 wraps err with input, reporting that input could not be
// parsed as a float64.
func CantParseFloat64(err error, input string) error {
	return errors.Wrapf(err, "can't parse %q as float64", input)
}

// CantParseInt64 wraps err with input, reporting that input could not be
// parsed as an int64.
func CantParseInt64(err error, input string) error {
	return errors.Wrapf(err, "can't parse %q as int64", input)
}

// CantParseUint64 wraps err with input, reporting that input could not be
// parsed as a uint64.
func CantParseUint64(err error, input string) error {
	return errors.Wrapf(err, "can't parse %q as uint64", input)
}
