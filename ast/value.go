package ast

import (
	"database/sql/driver"
	"time"
)

// Value is the union of literal payload types a compiled query can bind as a
// parameter: null, bool, integer, float, string, bytes, timestamp, or an
// opaque escape hatch for driver-specific types the AST doesn't model.
//
// Value implements driver.Valuer so a compiled parameter list can be handed
// straight to database/sql without another conversion pass.
type Value interface {
	driver.Valuer
	isValue()
}

// Null is the SQL NULL value.
type Null struct{}

func (Null) isValue() {}

// Value implements driver.Valuer.
func (Null) Value() (driver.Value, error) { return nil, nil }

// Bool is a SQL boolean literal.
type Bool bool

func (Bool) isValue() {}

// Value implements driver.Valuer.
func (b Bool) Value() (driver.Value, error) { return bool(b), nil }

// Int64 is a SQL integer literal.
type Int64 int64

func (Int64) isValue() {}

// Value implements driver.Valuer.
func (i Int64) Value() (driver.Value, error) { return int64(i), nil }

// Float64 is a SQL floating-point literal.
type Float64 float64

func (Float64) isValue() {}

// Value implements driver.Valuer.
func (f Float64) Value() (driver.Value, error) { return float64(f), nil }

// Text is a SQL string literal. Dialects that need extra disambiguation
// (CockroachDB's CAST(... AS STRING)) detect this type at compile time.
type Text string

func (Text) isValue() {}

// Value implements driver.Valuer.
func (s Text) Value() (driver.Value, error) { return string(s), nil }

// Bytes is a SQL binary literal.
type Bytes []byte

func (Bytes) isValue() {}

// Value implements driver.Valuer.
func (b Bytes) Value() (driver.Value, error) { return []byte(b), nil }

// Time is a SQL timestamp literal.
type Time time.Time

func (Time) isValue() {}

// Value implements driver.Valuer.
func (t Time) Value() (driver.Value, error) { return time.Time(t), nil }

// Raw is the any-opaque escape hatch from the data model: a value the AST
// passes through to the driver uninterpreted (e.g. a driver-specific type
// the compiler doesn't need to inspect).
type Raw struct{ V any }

func (Raw) isValue() {}

// Value implements driver.Valuer.
func (r Raw) Value() (driver.Value, error) {
	if valuer, ok := r.V.(driver.Valuer); ok {
		return valuer.Value()
	}
	return r.V, nil
}
