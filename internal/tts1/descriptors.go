package tts1

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type NamespaceDescriptor struct {
	_tab flatbuffers.Table
}

func (rcv *NamespaceDescriptor) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *NamespaceDescriptor) NsURL() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

// VectorsFit reports whether the url lies inside the buffer.
func (rcv *NamespaceDescriptor) VectorsFit() bool {
	return vectorFits(&rcv._tab, 4, 1)
}

func NamespaceDescriptorStart(builder *flatbuffers.Builder) {
	builder.StartObject(1)
}

func NamespaceDescriptorAddNsURL(builder *flatbuffers.Builder, url flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, url, 0)
}

func NamespaceDescriptorEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

// AttributeDescriptor holds one tag or log field. The union occupies two
// slots: the type byte and the value table.
type AttributeDescriptor struct {
	_tab flatbuffers.Table
}

func (rcv *AttributeDescriptor) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *AttributeDescriptor) AttrNs() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *AttributeDescriptor) AttrID() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *AttributeDescriptor) AttrValueType() Value {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return Value(rcv._tab.GetByte(o + rcv._tab.Pos))
	}
	return ValueNONE
}

func (rcv *AttributeDescriptor) AttrValue(obj *flatbuffers.Table) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		rcv._tab.Union(obj, o)
		return true
	}
	return false
}

func AttributeDescriptorStart(builder *flatbuffers.Builder) {
	builder.StartObject(4)
}

func AttributeDescriptorAddAttrNs(builder *flatbuffers.Builder, ns uint32) {
	builder.PrependUint32Slot(0, ns, 0)
}

func AttributeDescriptorAddAttrID(builder *flatbuffers.Builder, id uint32) {
	builder.PrependUint32Slot(1, id, 0)
}

func AttributeDescriptorAddAttrValueType(builder *flatbuffers.Builder, typ Value) {
	builder.PrependByteSlot(2, byte(typ), 0)
}

func AttributeDescriptorAddAttrValue(builder *flatbuffers.Builder, value flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(3, value, 0)
}

func AttributeDescriptorEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

type LogDescriptor struct {
	_tab flatbuffers.Table
}

func (rcv *LogDescriptor) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

// LogTs is the log timestamp in milliseconds since the epoch.
func (rcv *LogDescriptor) LogTs() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *LogDescriptor) LogSeverity() LogSeverity {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return LogSeverity(rcv._tab.GetByte(o + rcv._tab.Pos))
	}
	return LogSeverityFatal
}

func (rcv *LogDescriptor) LogFields(j int) uint32 {
	return uint32At(&rcv._tab, 8, j)
}

func (rcv *LogDescriptor) LogFieldsLength() int {
	return vectorLen(&rcv._tab, 8)
}

// VectorsFit reports whether the field vector lies inside the buffer.
func (rcv *LogDescriptor) VectorsFit() bool {
	return vectorFits(&rcv._tab, 8, 4)
}

func LogDescriptorStart(builder *flatbuffers.Builder) {
	builder.StartObject(3)
}

func LogDescriptorAddLogTs(builder *flatbuffers.Builder, ts uint64) {
	builder.PrependUint64Slot(0, ts, 0)
}

func LogDescriptorAddLogSeverity(builder *flatbuffers.Builder, severity LogSeverity) {
	builder.PrependByteSlot(1, byte(severity), 0)
}

func LogDescriptorAddLogFields(builder *flatbuffers.Builder, fields flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(2, fields, 0)
}

func LogDescriptorEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
