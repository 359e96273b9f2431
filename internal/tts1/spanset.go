package tts1

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Spanset is the root table of an encoded trace.
type Spanset struct {
	_tab flatbuffers.Table
}

// GetRootAsSpanset reads the root table of buf.
func GetRootAsSpanset(buf []byte, offset flatbuffers.UOffsetT) *Spanset {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &Spanset{}
	x.Init(buf, n+offset)
	return x
}

// SpansetBufferHasIdentifier reports whether buf carries the TTS1 file identifier.
func SpansetBufferHasIdentifier(buf []byte) bool {
	const idOffset = flatbuffers.SizeUOffsetT
	if len(buf) < idOffset+len(Identifier) {
		return false
	}
	return string(buf[idOffset:idOffset+len(Identifier)]) == Identifier
}

func (rcv *Spanset) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Spanset) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *Spanset) Abi() SpansetVersion {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return SpansetVersion(rcv._tab.GetByte(o + rcv._tab.Pos))
	}
	return SpansetVersionUnknown
}

func (rcv *Spanset) TraceIDHi() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Spanset) TraceIDLo() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *Spanset) Namespaces(obj *NamespaceDescriptor, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *Spanset) NamespacesLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Spanset) Spans(obj *SpanDescriptor, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *Spanset) SpansLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Spanset) Attrs(obj *AttributeDescriptor, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(14))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *Spanset) AttrsLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(14))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Spanset) Logs(obj *LogDescriptor, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(16))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 4
		x = rcv._tab.Indirect(x)
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *Spanset) LogsLength() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(16))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *Spanset) Roots(j int) uint32 {
	return uint32At(&rcv._tab, 18, j)
}

func (rcv *Spanset) RootsLength() int {
	return vectorLen(&rcv._tab, 18)
}

func (rcv *Spanset) Errors(j int) uint32 {
	return uint32At(&rcv._tab, 20, j)
}

func (rcv *Spanset) ErrorsLength() int {
	return vectorLen(&rcv._tab, 20)
}

// VectorsFit reports whether every vector of the root table lies inside the buffer.
func (rcv *Spanset) VectorsFit() bool {
	for _, slot := range []flatbuffers.VOffsetT{10, 12, 14, 16, 18, 20} {
		if !vectorFits(&rcv._tab, slot, 4) {
			return false
		}
	}
	return true
}

func SpansetStart(builder *flatbuffers.Builder) {
	builder.StartObject(9)
}

func SpansetAddAbi(builder *flatbuffers.Builder, abi SpansetVersion) {
	builder.PrependByteSlot(0, byte(abi), 0)
}

func SpansetAddTraceIDHi(builder *flatbuffers.Builder, hi uint64) {
	builder.PrependUint64Slot(1, hi, 0)
}

func SpansetAddTraceIDLo(builder *flatbuffers.Builder, lo uint64) {
	builder.PrependUint64Slot(2, lo, 0)
}

func SpansetAddNamespaces(builder *flatbuffers.Builder, namespaces flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(3, namespaces, 0)
}

func SpansetAddSpans(builder *flatbuffers.Builder, spans flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(4, spans, 0)
}

func SpansetAddAttrs(builder *flatbuffers.Builder, attrs flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(5, attrs, 0)
}

func SpansetAddLogs(builder *flatbuffers.Builder, logs flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(6, logs, 0)
}

func SpansetAddRoots(builder *flatbuffers.Builder, roots flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(7, roots, 0)
}

func SpansetAddErrors(builder *flatbuffers.Builder, errors flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(8, errors, 0)
}

func SpansetEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}

// FinishSpansetBuffer finishes the buffer with the TTS1 identifier.
func FinishSpansetBuffer(builder *flatbuffers.Builder, root flatbuffers.UOffsetT) {
	builder.FinishWithFileIdentifier(root, []byte(Identifier))
}
