package tts1

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Union member tables. Each has a single field in slot 0.

type TrueFalseNilValue struct {
	_tab flatbuffers.Table
}

func (rcv *TrueFalseNilValue) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *TrueFalseNilValue) Tfn() TrueFalseNil {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return TrueFalseNil(rcv._tab.GetByte(o + rcv._tab.Pos))
	}
	return TrueFalseNilNil
}

func CreateTrueFalseNilValue(builder *flatbuffers.Builder, tfn TrueFalseNil) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependByteSlot(0, byte(tfn), 0)
	return builder.EndObject()
}

type Int64Value struct {
	_tab flatbuffers.Table
}

func (rcv *Int64Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Int64Value) I64() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func CreateInt64Value(builder *flatbuffers.Builder, i64 int64) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependInt64Slot(0, i64, 0)
	return builder.EndObject()
}

type Float64Value struct {
	_tab flatbuffers.Table
}

func (rcv *Float64Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Float64Value) F64() float64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetFloat64(o + rcv._tab.Pos)
	}
	return 0
}

func CreateFloat64Value(builder *flatbuffers.Builder, f64 float64) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependFloat64Slot(0, f64, 0)
	return builder.EndObject()
}

type UInt64Value struct {
	_tab flatbuffers.Table
}

func (rcv *UInt64Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *UInt64Value) U64() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func CreateUInt64Value(builder *flatbuffers.Builder, u64 uint64) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUint64Slot(0, u64, 0)
	return builder.EndObject()
}

type UInt32Value struct {
	_tab flatbuffers.Table
}

func (rcv *UInt32Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *UInt32Value) U32() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func CreateUInt32Value(builder *flatbuffers.Builder, u32 uint32) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUint32Slot(0, u32, 0)
	return builder.EndObject()
}

type UInt16Value struct {
	_tab flatbuffers.Table
}

func (rcv *UInt16Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *UInt16Value) U16() uint16 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint16(o + rcv._tab.Pos)
	}
	return 0
}

func CreateUInt16Value(builder *flatbuffers.Builder, u16 uint16) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUint16Slot(0, u16, 0)
	return builder.EndObject()
}

type UInt8Value struct {
	_tab flatbuffers.Table
}

func (rcv *UInt8Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *UInt8Value) U8() uint8 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint8(o + rcv._tab.Pos)
	}
	return 0
}

func CreateUInt8Value(builder *flatbuffers.Builder, u8 uint8) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUint8Slot(0, u8, 0)
	return builder.EndObject()
}

type StringValue struct {
	_tab flatbuffers.Table
}

func (rcv *StringValue) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *StringValue) Utf8() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

// VectorsFit reports whether the string lies inside the buffer.
func (rcv *StringValue) VectorsFit() bool {
	return vectorFits(&rcv._tab, 4, 1)
}

// CreateStringValue wraps an already written string.
func CreateStringValue(builder *flatbuffers.Builder, utf8 flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUOffsetTSlot(0, utf8, 0)
	return builder.EndObject()
}

type HandleValue struct {
	_tab flatbuffers.Table
}

func (rcv *HandleValue) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *HandleValue) Handle() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func CreateHandleValue(builder *flatbuffers.Builder, handle uint32) flatbuffers.UOffsetT {
	builder.StartObject(1)
	builder.PrependUint32Slot(0, handle, 0)
	return builder.EndObject()
}
