package types

import (
	"encoding"
	"encoding/json"
	"strconv"
	"time"
)

// UnixMilli adds millisecond-precision Unix timestamp JSON (de)serialization
// to time.Time. The zero time.Time marshals to JSON null and to the empty
// text, matching the behavior of this repository's other nullable types.
type UnixMilli time.Time

// MarshalJSON implements the json.Marshaler interface.
func (u UnixMilli) MarshalJSON() ([]byte, error) {
	t := time.Time(u)
	if t.IsZero() {
		return []byte("null"), nil
	}

	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (u *UnixMilli) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || len(data) == 0 {
		*u = UnixMilli{}
		return nil
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return CantParseInt64(err, string(data))
	}

	*u = UnixMilli(time.UnixMilli(ms))

	return nil
}

// MarshalText implements the encoding.TextMarshaler interface.
func (u UnixMilli) MarshalText() ([]byte, error) {
	t := time.Time(u)
	if t.IsZero() {
		return []byte(""), nil
	}

	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (u *UnixMilli) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*u = UnixMilli{}
		return nil
	}

	ms, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return CantParseInt64(err, string(text))
	}

	*u = UnixMilli(time.UnixMilli(ms))

	return nil
}

// Assert interface compliance.
var (
	_ json.Marshaler           = UnixMilli{}
	_ json.Unmarshaler         = (*UnixMilli)(nil)
	_ encoding.TextMarshaler   = UnixMilli{}
	_ encoding.TextUnmarshaler = (*UnixMilli)(nil)
)
