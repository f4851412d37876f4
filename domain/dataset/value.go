package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueType defines the storage type for a cell
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Type         ValueType  `json:"type"`
	StringVal    *string    `json:"string_val,omitempty"`
	NumericVal   *float64   `json:"numeric_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
}

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value. NaN is stored as missing.
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: &t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal == nil
	case ValueTypeNumeric:
		return v.NumericVal == nil
	case ValueTypeTimestamp:
		return v.TimestampVal == nil
	}
	return true
}

// IsNumeric returns true if the value represents a valid number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric && v.NumericVal != nil
}

// IsString returns true if the value represents a valid string
func (v Value) IsString() bool {
	return v.Type == ValueTypeString && v.StringVal != nil
}

// IsTimestamp returns true if the value represents a valid timestamp
func (v Value) IsTimestamp() bool {
	return v.Type == ValueTypeTimestamp && v.TimestampVal != nil
}

// AsFloat64 returns the numeric value, or NaN if not numeric
func (v Value) AsFloat64() float64 {
	if v.IsNumeric() {
		return *v.NumericVal
	}
	return math.NaN()
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.IsString() {
		return *v.StringVal
	}
	return ""
}

// AsTime returns the timestamp value, or the zero time
func (v Value) AsTime() time.Time {
	if v.IsTimestamp() {
		return *v.TimestampVal
	}
	return time.Time{}
}

// String returns a human readable rendering of the value
func (v Value) String() string {
	switch {
	case v.IsString():
		return *v.StringVal
	case v.IsNumeric():
		return strconv.FormatFloat(*v.NumericVal, 'g', -1, 64)
	case v.IsTimestamp():
		return v.TimestampVal.Format(time.RFC3339)
	}
	return "<missing>"
}

// Key returns a canonical, type-tagged representation used for equality
// checks. Two values are equal iff their keys are equal; missing equals
// missing.
func (v Value) Key() string {
	switch {
	case v.IsString():
		return "s:" + *v.StringVal
	case v.IsNumeric():
		n := *v.NumericVal
		if n == 0 {
			n = 0 // fold -0
		}
		return "n:" + strconv.FormatFloat(n, 'g', -1, 64)
	case v.IsTimestamp():
		return "t:" + v.TimestampVal.UTC().Format(time.RFC3339Nano)
	}
	return "m:"
}

// Equal reports whether two values hold the same typed content
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

// GoString makes test failure output readable
func (v Value) GoString() string {
	return fmt.Sprintf("dataset.Value(%s:%s)", v.Type, v.String())
}
