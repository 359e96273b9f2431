package spanz

import (
	"fmt"
	"math"
)

// AttrKey identifies a kind of tag or log field.
// Two keys are equal when both the namespace and the id match.
type AttrKey struct {
	Namespace string
	ID        uint32
}

// String renders the key as namespace#id.
func (k AttrKey) String() string {
	return fmt.Sprintf("%s#%d", k.Namespace, k.ID)
}

// AttrHandle is an opaque reference carried as an attribute payload.
type AttrHandle struct {
	Handle uint32
}

// ValueType reports which variant a Value holds.
type ValueType uint8

const (
	ValueTypeInvalid ValueType = iota
	ValueTypeNil
	ValueTypeBool
	ValueTypeInt64
	ValueTypeFloat64
	ValueTypeUInt64
	ValueTypeUInt32
	ValueTypeUInt16
	ValueTypeUInt8
	ValueTypeString
	ValueTypeHandle
)

var valueTypeNames = [...]string{
	ValueTypeInvalid: "Invalid",
	ValueTypeNil:     "Nil",
	ValueTypeBool:    "Bool",
	ValueTypeInt64:   "Int64",
	ValueTypeFloat64: "Float64",
	ValueTypeUInt64:  "UInt64",
	ValueTypeUInt32:  "UInt32",
	ValueTypeUInt16:  "UInt16",
	ValueTypeUInt8:   "UInt8",
	ValueTypeString:  "String",
	ValueTypeHandle:  "Handle",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

// Value is an immutable tag or log-field payload.
// The zero Value is invalid. Values are safe to copy and to share
// between goroutines.
type Value struct {
	str  string
	num  uint64
	kind ValueType
}

// NilValue returns a Value holding Nil.
func NilValue() Value { return Value{kind: ValueTypeNil} }

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value {
	v := Value{kind: ValueTypeBool}
	if b {
		v.num = 1
	}
	return v
}

// Int64Value returns a Value holding i.
func Int64Value(i int64) Value { return Value{kind: ValueTypeInt64, num: uint64(i)} }

// Float64Value returns a Value holding f.
func Float64Value(f float64) Value { return Value{kind: ValueTypeFloat64, num: math.Float64bits(f)} }

// UInt64Value returns a Value holding u.
func UInt64Value(u uint64) Value { return Value{kind: ValueTypeUInt64, num: u} }

// UInt32Value returns a Value holding u.
func UInt32Value(u uint32) Value { return Value{kind: ValueTypeUInt32, num: uint64(u)} }

// UInt16Value returns a Value holding u.
func UInt16Value(u uint16) Value { return Value{kind: ValueTypeUInt16, num: uint64(u)} }

// UInt8Value returns a Value holding u.
func UInt8Value(u uint8) Value { return Value{kind: ValueTypeUInt8, num: uint64(u)} }

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: ValueTypeString, str: s} }

// HandleValue returns a Value holding h.
func HandleValue(h AttrHandle) Value { return Value{kind: ValueTypeHandle, num: uint64(h.Handle)} }

// IsValid reports whether the value holds any variant.
func (v Value) IsValid() bool { return v.kind != ValueTypeInvalid }

// Type returns the active variant.
func (v Value) Type() ValueType { return v.kind }

// Bool returns the payload, or false if v is not a Bool.
func (v Value) Bool() bool {
	if v.kind != ValueTypeBool {
		return false
	}
	return v.num != 0
}

// Int64 returns the payload, or 0 if v is not an Int64.
func (v Value) Int64() int64 {
	if v.kind != ValueTypeInt64 {
		return 0
	}
	return int64(v.num)
}

// Float64 returns the payload, or 0 if v is not a Float64.
func (v Value) Float64() float64 {
	if v.kind != ValueTypeFloat64 {
		return 0
	}
	return math.Float64frombits(v.num)
}

// UInt64 returns the payload, or 0 if v is not a UInt64.
func (v Value) UInt64() uint64 {
	if v.kind != ValueTypeUInt64 {
		return 0
	}
	return v.num
}

// UInt32 returns the payload, or 0 if v is not a UInt32.
func (v Value) UInt32() uint32 {
	if v.kind != ValueTypeUInt32 {
		return 0
	}
	return uint32(v.num)
}

// UInt16 returns the payload, or 0 if v is not a UInt16.
func (v Value) UInt16() uint16 {
	if v.kind != ValueTypeUInt16 {
		return 0
	}
	return uint16(v.num)
}

// UInt8 returns the payload, or 0 if v is not a UInt8.
func (v Value) UInt8() uint8 {
	if v.kind != ValueTypeUInt8 {
		return 0
	}
	return uint8(v.num)
}

// Str returns the payload, or "" if v is not a String.
func (v Value) Str() string {
	if v.kind != ValueTypeString {
		return ""
	}
	return v.str
}

// Handle returns the payload, or the zero handle if v is not a Handle.
func (v Value) Handle() AttrHandle {
	if v.kind != ValueTypeHandle {
		return AttrHandle{}
	}
	return AttrHandle{Handle: uint32(v.num)}
}

// Equal reports whether both values hold the same variant and payload.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.num == other.num && v.str == other.str
}

func (v Value) String() string {
	switch v.kind {
	case ValueTypeNil:
		return "nil"
	case ValueTypeBool:
		return fmt.Sprintf("%t", v.Bool())
	case ValueTypeInt64:
		return fmt.Sprintf("%d", v.Int64())
	case ValueTypeFloat64:
		return fmt.Sprintf("%g", v.Float64())
	case ValueTypeUInt64, ValueTypeUInt32, ValueTypeUInt16, ValueTypeUInt8:
		return fmt.Sprintf("%d", v.num)
	case ValueTypeString:
		return v.str
	case ValueTypeHandle:
		return fmt.Sprintf("handle(%d)", v.num)
	default:
		return "<invalid>"
	}
}

// AttrMap holds one value per key.
type AttrMap map[AttrKey]Value

func (m AttrMap) clone() AttrMap {
	if m == nil {
		return nil
	}
	out := make(AttrMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
