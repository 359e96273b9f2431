package spanz

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/zoobzio/spanz/internal/tts1"
)

// SpansetReader exposes the flat tables of a spanset. A nil reader
// reports zero of everything.
type SpansetReader struct {
	root *tts1.Spanset
}

// IsValid reports whether the reader has a buffer behind it.
func (r *SpansetReader) IsValid() bool { return r != nil && r.root != nil }

// ABI returns the encoded version tag.
func (r *SpansetReader) ABI() SpansetVersion {
	if !r.IsValid() {
		return SpansetVersionUnknown
	}
	return SpansetVersion(r.root.Abi())
}

// TraceID returns the encoded trace id.
func (r *SpansetReader) TraceID() TraceID {
	if !r.IsValid() {
		return TraceID{}
	}
	return TraceID{Hi: r.root.TraceIDHi(), Lo: r.root.TraceIDLo()}
}

// NumSpans returns the length of the span table.
func (r *SpansetReader) NumSpans() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.SpansLength()
}

// Span returns a walker for the span at index, invalid if out of range.
func (r *SpansetReader) Span(index uint32) SpanWalker {
	if !r.IsValid() || int(index) >= r.root.SpansLength() {
		return SpanWalker{index: InvalidIndex}
	}
	return SpanWalker{r: r, index: index}
}

func (r *SpansetReader) span(index uint32) *tts1.SpanDescriptor {
	var d tts1.SpanDescriptor
	r.root.Spans(&d, int(index))
	return &d
}

// NumAttributes returns the length of the attribute table.
func (r *SpansetReader) NumAttributes() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.AttrsLength()
}

// Attribute decodes the attribute at index into its key and value.
func (r *SpansetReader) Attribute(index uint32) (AttrKey, Value, error) {
	attr, err := r.attribute(index)
	if err != nil {
		return AttrKey{}, Value{}, err
	}
	v, err := decodeAttrValue(attr)
	if err != nil {
		return AttrKey{}, Value{}, err
	}
	return AttrKey{Namespace: r.Namespace(attr.AttrNs()), ID: attr.AttrID()}, v, nil
}

func (r *SpansetReader) attribute(index uint32) (*tts1.AttributeDescriptor, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: invalid reader", ErrParse)
	}
	if int(index) >= r.root.AttrsLength() {
		return nil, fmt.Errorf("%w: attribute %d out of range", ErrParse, index)
	}
	var attr tts1.AttributeDescriptor
	r.root.Attrs(&attr, int(index))
	return &attr, nil
}

// NumNamespaces returns the length of the namespace table.
func (r *SpansetReader) NumNamespaces() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.NamespacesLength()
}

// Namespace returns the namespace url at index, or "" if out of range.
func (r *SpansetReader) Namespace(index uint32) string {
	if !r.IsValid() || int(index) >= r.root.NamespacesLength() {
		return ""
	}
	var ns tts1.NamespaceDescriptor
	r.root.Namespaces(&ns, int(index))
	return string(ns.NsURL())
}

// NumLogs returns the length of the log table.
func (r *SpansetReader) NumLogs() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.LogsLength()
}

func (r *SpansetReader) log(index uint32) *tts1.LogDescriptor {
	var d tts1.LogDescriptor
	r.root.Logs(&d, int(index))
	return &d
}

// NumRoots returns the number of root span indices.
func (r *SpansetReader) NumRoots() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.RootsLength()
}

// Root returns the span index of root i, or InvalidIndex.
func (r *SpansetReader) Root(i int) uint32 {
	if i < 0 || i >= r.NumRoots() {
		return InvalidIndex
	}
	return r.root.Roots(i)
}

// NumErrors returns the number of failed span indices.
func (r *SpansetReader) NumErrors() int {
	if !r.IsValid() {
		return 0
	}
	return r.root.ErrorsLength()
}

// Error returns the span index of failed span i, or InvalidIndex.
func (r *SpansetReader) Error(i int) uint32 {
	if i < 0 || i >= r.NumErrors() {
		return InvalidIndex
	}
	return r.root.Errors(i)
}

// findAttr scans attribute indices for key, returning InvalidIndex on a miss.
func (r *SpansetReader) findAttr(key AttrKey, n int, at func(int) uint32) uint32 {
	var attr tts1.AttributeDescriptor
	for i := 0; i < n; i++ {
		index := at(i)
		r.root.Attrs(&attr, int(index))
		if attr.AttrID() != key.ID {
			continue
		}
		if r.Namespace(attr.AttrNs()) == key.Namespace {
			return index
		}
	}
	return InvalidIndex
}

// decodeAttrValue converts the union payload back into a Value.
func decodeAttrValue(attr *tts1.AttributeDescriptor) (Value, error) {
	typ := attr.AttrValueType()
	var tab flatbuffers.Table
	if !attr.AttrValue(&tab) {
		return Value{}, fmt.Errorf("%w: attribute has no value (type %d)", ErrParse, typ)
	}
	switch typ {
	case tts1.ValueTrueFalseNilValue:
		var v tts1.TrueFalseNilValue
		v.Init(tab.Bytes, tab.Pos)
		switch v.Tfn() {
		case tts1.TrueFalseNilNil:
			return NilValue(), nil
		case tts1.TrueFalseNilTrue:
			return BoolValue(true), nil
		case tts1.TrueFalseNilFalse:
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%w: bad TrueFalseNil %d", ErrParse, v.Tfn())
	case tts1.ValueInt64Value:
		var v tts1.Int64Value
		v.Init(tab.Bytes, tab.Pos)
		return Int64Value(v.I64()), nil
	case tts1.ValueFloat64Value:
		var v tts1.Float64Value
		v.Init(tab.Bytes, tab.Pos)
		return Float64Value(v.F64()), nil
	case tts1.ValueUInt64Value:
		var v tts1.UInt64Value
		v.Init(tab.Bytes, tab.Pos)
		return UInt64Value(v.U64()), nil
	case tts1.ValueUInt32Value:
		var v tts1.UInt32Value
		v.Init(tab.Bytes, tab.Pos)
		return UInt32Value(v.U32()), nil
	case tts1.ValueUInt16Value:
		var v tts1.UInt16Value
		v.Init(tab.Bytes, tab.Pos)
		return UInt16Value(v.U16()), nil
	case tts1.ValueUInt8Value:
		var v tts1.UInt8Value
		v.Init(tab.Bytes, tab.Pos)
		return UInt8Value(v.U8()), nil
	case tts1.ValueStringValue:
		var v tts1.StringValue
		v.Init(tab.Bytes, tab.Pos)
		if !v.VectorsFit() {
			return Value{}, fmt.Errorf("%w: string value exceeds buffer", ErrParse)
		}
		return StringValue(string(v.Utf8())), nil
	case tts1.ValueHandleValue:
		var v tts1.HandleValue
		v.Init(tab.Bytes, tab.Pos)
		return HandleValue(AttrHandle{Handle: v.Handle()}), nil
	default:
		return Value{}, fmt.Errorf("%w: unknown value type %d", ErrParse, typ)
	}
}
