package tts1

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// uint32At reads element j of the [uint32] field at vtable offset slot.
func uint32At(tab *flatbuffers.Table, slot flatbuffers.VOffsetT, j int) uint32 {
	o := flatbuffers.UOffsetT(tab.Offset(slot))
	if o != 0 {
		a := tab.Vector(o)
		return tab.GetUint32(a + flatbuffers.UOffsetT(j*4))
	}
	return 0
}

func vectorLen(tab *flatbuffers.Table, slot flatbuffers.VOffsetT) int {
	o := flatbuffers.UOffsetT(tab.Offset(slot))
	if o != 0 {
		return tab.VectorLen(o)
	}
	return 0
}

// vectorFits reports whether the vector or string at slot, with elements
// of elemSize bytes, lies entirely inside the buffer. An absent field fits.
func vectorFits(tab *flatbuffers.Table, slot flatbuffers.VOffsetT, elemSize uint64) bool {
	o := flatbuffers.UOffsetT(tab.Offset(slot))
	if o == 0 {
		return true
	}
	size := uint64(len(tab.Bytes))
	field := uint64(o) + uint64(tab.Pos)
	if field+flatbuffers.SizeUOffsetT > size {
		return false
	}
	start := field + uint64(flatbuffers.GetUOffsetT(tab.Bytes[field:]))
	if start+flatbuffers.SizeUOffsetT > size {
		return false
	}
	n := uint64(flatbuffers.GetUOffsetT(tab.Bytes[start:]))
	return start+flatbuffers.SizeUOffsetT+n*elemSize <= size
}

// CreateUint32Vector writes values as a [uint32] vector.
func CreateUint32Vector(builder *flatbuffers.Builder, values []uint32) flatbuffers.UOffsetT {
	builder.StartVector(4, len(values), 4)
	for i := len(values) - 1; i >= 0; i-- {
		builder.PrependUint32(values[i])
	}
	return builder.EndVector(len(values))
}

// CreateOffsetVector writes a vector of table offsets.
func CreateOffsetVector(builder *flatbuffers.Builder, offsets []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	builder.StartVector(4, len(offsets), 4)
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	return builder.EndVector(len(offsets))
}
