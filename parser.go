package spanz

import (
	"fmt"
)

// AttrParser reads attribute-table entries as typed values. Each getter
// fails with ErrWrongType when the stored variant differs.
type AttrParser struct {
	r *SpansetReader
}

// NewAttrParser returns a parser over r.
func NewAttrParser(r *SpansetReader) AttrParser { return AttrParser{r: r} }

func (p AttrParser) value(index uint32, want ValueType) (Value, error) {
	_, v, err := p.r.Attribute(index)
	if err != nil {
		return Value{}, err
	}
	if v.Type() != want {
		return Value{}, fmt.Errorf("%w: attribute %d is %s, not %s", ErrWrongType, index, v.Type(), want)
	}
	return v, nil
}

// GetNil returns an error unless attribute index holds nil.
func (p AttrParser) GetNil(index uint32) error {
	_, err := p.value(index, ValueTypeNil)
	return err
}

// GetBool decodes attribute index as a Bool value.
func (p AttrParser) GetBool(index uint32) (bool, error) {
	v, err := p.value(index, ValueTypeBool)
	return v.Bool(), err
}

// GetInt64 decodes attribute index as an Int64 value.
func (p AttrParser) GetInt64(index uint32) (int64, error) {
	v, err := p.value(index, ValueTypeInt64)
	return v.Int64(), err
}

// GetFloat64 decodes attribute index as a Float64 value.
func (p AttrParser) GetFloat64(index uint32) (float64, error) {
	v, err := p.value(index, ValueTypeFloat64)
	return v.Float64(), err
}

// GetUInt64 decodes attribute index as an UInt64 value.
func (p AttrParser) GetUInt64(index uint32) (uint64, error) {
	v, err := p.value(index, ValueTypeUInt64)
	return v.UInt64(), err
}

// GetUInt32 decodes attribute index as an UInt32 value.
func (p AttrParser) GetUInt32(index uint32) (uint32, error) {
	v, err := p.value(index, ValueTypeUInt32)
	return v.UInt32(), err
}

// GetUInt16 decodes attribute index as an UInt16 value.
func (p AttrParser) GetUInt16(index uint32) (uint16, error) {
	v, err := p.value(index, ValueTypeUInt16)
	return v.UInt16(), err
}

// GetUInt8 decodes attribute index as an UInt8 value.
func (p AttrParser) GetUInt8(index uint32) (uint8, error) {
	v, err := p.value(index, ValueTypeUInt8)
	return v.UInt8(), err
}

// GetString decodes attribute index as a String value.
func (p AttrParser) GetString(index uint32) (string, error) {
	v, err := p.value(index, ValueTypeString)
	return v.Str(), err
}

// GetHandle decodes attribute index as a Handle value.
func (p AttrParser) GetHandle(index uint32) (AttrHandle, error) {
	v, err := p.value(index, ValueTypeHandle)
	return v.Handle(), err
}

// ParseTag reads attr from the span's tags.
func ParseTag[T any](w SpanWalker, attr Attr[T]) (T, error) {
	v, err := w.Tag(attr.Key())
	if err != nil {
		var zero T
		return zero, err
	}
	return attr.FromValue(v)
}

// ParseField reads attr from the log's fields.
func ParseField[T any](w LogWalker, attr Attr[T]) (T, error) {
	v, err := w.Field(attr.Key())
	if err != nil {
		var zero T
		return zero, err
	}
	return attr.FromValue(v)
}
