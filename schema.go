package spanz

import "fmt"

// Attr describes a typed attribute: its key, a display name, and how its
// Go value maps onto a Value.
type Attr[T any] struct {
	encode func(T) Value
	decode func(Value) (T, bool)
	name   string
	key    AttrKey
	typ    ValueType
}

// NewAttr builds a typed attribute from an encode/decode pair.
func NewAttr[T any](ns string, id uint32, name string, typ ValueType,
	encode func(T) Value, decode func(Value) (T, bool)) Attr[T] {
	return Attr[T]{
		key:    AttrKey{Namespace: ns, ID: id},
		name:   name,
		typ:    typ,
		encode: encode,
		decode: decode,
	}
}

// Key returns the attribute key.
func (a Attr[T]) Key() AttrKey { return a.key }

// Name returns the attribute display name.
func (a Attr[T]) Name() string { return a.name }

// Type returns the value variant the attribute is stored as.
func (a Attr[T]) Type() ValueType { return a.typ }

// Value encodes v.
func (a Attr[T]) Value(v T) Value { return a.encode(v) }

// FromValue decodes v, failing with ErrWrongType if the variant differs.
func (a Attr[T]) FromValue(v Value) (T, error) {
	out, ok := a.decode(v)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s wants %s, got %s", ErrWrongType, a.name, a.typ, v.Type())
	}
	return out, nil
}

// BoolAttr declares a Bool attribute.
func BoolAttr(ns string, id uint32, name string) Attr[bool] {
	return NewAttr(ns, id, name, ValueTypeBool, BoolValue, func(v Value) (bool, bool) {
		return v.Bool(), v.Type() == ValueTypeBool
	})
}

// Int64Attr declares an Int64 attribute.
func Int64Attr(ns string, id uint32, name string) Attr[int64] {
	return NewAttr(ns, id, name, ValueTypeInt64, Int64Value, func(v Value) (int64, bool) {
		return v.Int64(), v.Type() == ValueTypeInt64
	})
}

// Float64Attr declares a Float64 attribute.
func Float64Attr(ns string, id uint32, name string) Attr[float64] {
	return NewAttr(ns, id, name, ValueTypeFloat64, Float64Value, func(v Value) (float64, bool) {
		return v.Float64(), v.Type() == ValueTypeFloat64
	})
}

// UInt64Attr declares a UInt64 attribute.
func UInt64Attr(ns string, id uint32, name string) Attr[uint64] {
	return NewAttr(ns, id, name, ValueTypeUInt64, UInt64Value, func(v Value) (uint64, bool) {
		return v.UInt64(), v.Type() == ValueTypeUInt64
	})
}

// UInt32Attr declares a UInt32 attribute.
func UInt32Attr(ns string, id uint32, name string) Attr[uint32] {
	return NewAttr(ns, id, name, ValueTypeUInt32, UInt32Value, func(v Value) (uint32, bool) {
		return v.UInt32(), v.Type() == ValueTypeUInt32
	})
}

// StringAttr declares a String attribute.
func StringAttr(ns string, id uint32, name string) Attr[string] {
	return NewAttr(ns, id, name, ValueTypeString, StringValue, func(v Value) (string, bool) {
		return v.Str(), v.Type() == ValueTypeString
	})
}

// HandleAttr declares a Handle attribute.
func HandleAttr(ns string, id uint32, name string) Attr[AttrHandle] {
	return NewAttr(ns, id, name, ValueTypeHandle, HandleValue, func(v Value) (AttrHandle, bool) {
		return v.Handle(), v.Type() == ValueTypeHandle
	})
}

// Namespaces of the well-known attributes.
const (
	OpentracingNs = "io.opentracing"
	SpanzNs       = "dev.zoobzio.ns:spanz"
)

// OpenTracing semantic conventions.
var (
	OpentracingError     = BoolAttr(OpentracingNs, 0, "Error")
	OpentracingComponent = StringAttr(OpentracingNs, 1, "Component")
	OpentracingEvent     = StringAttr(OpentracingNs, 2, "Event")
	OpentracingErrorKind = StringAttr(OpentracingNs, 3, "ErrorKind")
	OpentracingMessage   = StringAttr(OpentracingNs, 4, "Message")
	OpentracingStack     = StringAttr(OpentracingNs, 5, "Stack")
)

// Engine-specific fields written by LogStatus and CloseWithStatus.
var (
	ErrorCondition    = Int64Attr(SpanzNs, 0, "ErrorCondition")
	ErrorCode         = Int64Attr(SpanzNs, 1, "ErrorCode")
	ErrorCategoryName = StringAttr(SpanzNs, 2, "ErrorCategoryName")
	ContinuationHi    = UInt64Attr(SpanzNs, 3, "ContinuationHi")
	ContinuationLo    = UInt64Attr(SpanzNs, 4, "ContinuationLo")
)
