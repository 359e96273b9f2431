package tts1

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// InvalidIndex is the schema default of SpanDescriptor.parent_index.
const InvalidIndex uint32 = 0xFFFFFFFF

type SpanDescriptor struct {
	_tab flatbuffers.Table
}

func (rcv *SpanDescriptor) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *SpanDescriptor) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *SpanDescriptor) SpanID() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *SpanDescriptor) OperationName() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *SpanDescriptor) ParentIndex() uint32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetUint32(o + rcv._tab.Pos)
	}
	return InvalidIndex
}

func (rcv *SpanDescriptor) ParentID() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *SpanDescriptor) Children(j int) uint32 {
	return uint32At(&rcv._tab, 12, j)
}

func (rcv *SpanDescriptor) ChildrenLength() int {
	return vectorLen(&rcv._tab, 12)
}

func (rcv *SpanDescriptor) Failed() bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(14))
	if o != 0 {
		return rcv._tab.GetBool(o + rcv._tab.Pos)
	}
	return false
}

func (rcv *SpanDescriptor) StartMillis() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(16))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *SpanDescriptor) EndMillis() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(18))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *SpanDescriptor) ActiveDurationNanos() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(20))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *SpanDescriptor) Tags(j int) uint32 {
	return uint32At(&rcv._tab, 22, j)
}

func (rcv *SpanDescriptor) TagsLength() int {
	return vectorLen(&rcv._tab, 22)
}

func (rcv *SpanDescriptor) Logs(j int) uint32 {
	return uint32At(&rcv._tab, 24, j)
}

func (rcv *SpanDescriptor) LogsLength() int {
	return vectorLen(&rcv._tab, 24)
}

// VectorsFit reports whether the name and index vectors lie inside the buffer.
func (rcv *SpanDescriptor) VectorsFit() bool {
	return vectorFits(&rcv._tab, 6, 1) &&
		vectorFits(&rcv._tab, 12, 4) &&
		vectorFits(&rcv._tab, 22, 4) &&
		vectorFits(&rcv._tab, 24, 4)
}

func SpanDescriptorStart(builder *flatbuffers.Builder) {
	builder.StartObject(11)
}

func SpanDescriptorAddSpanID(builder *flatbuffers.Builder, spanID uint64) {
	builder.PrependUint64Slot(0, spanID, 0)
}

func SpanDescriptorAddOperationName(builder *flatbuffers.Builder, name flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, name, 0)
}

func SpanDescriptorAddParentIndex(builder *flatbuffers.Builder, parentIndex uint32) {
	builder.PrependUint32Slot(2, parentIndex, InvalidIndex)
}

func SpanDescriptorAddParentID(builder *flatbuffers.Builder, parentID uint64) {
	builder.PrependUint64Slot(3, parentID, 0)
}

func SpanDescriptorAddChildren(builder *flatbuffers.Builder, children flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(4, children, 0)
}

func SpanDescriptorAddFailed(builder *flatbuffers.Builder, failed bool) {
	builder.PrependBoolSlot(5, failed, false)
}

func SpanDescriptorAddStartMillis(builder *flatbuffers.Builder, millis int64) {
	builder.PrependInt64Slot(6, millis, 0)
}

func SpanDescriptorAddEndMillis(builder *flatbuffers.Builder, millis int64) {
	builder.PrependInt64Slot(7, millis, 0)
}

func SpanDescriptorAddActiveDurationNanos(builder *flatbuffers.Builder, nanos int64) {
	builder.PrependInt64Slot(8, nanos, 0)
}

func SpanDescriptorAddTags(builder *flatbuffers.Builder, tags flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(9, tags, 0)
}

func SpanDescriptorAddLogs(builder *flatbuffers.Builder, logs flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(10, logs, 0)
}

func SpanDescriptorEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
