package spanz

import (
	"cmp"
	"slices"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/zoobzio/spanz/internal/tts1"
)

// writeStats summarizes one encoded spanset for metrics and logging.
type writeStats struct {
	spans  int
	failed int
	bytes  int
}

// spansetWriter accumulates the flat tables of one spanset while the
// span descriptors are built.
type spansetWriter struct {
	b          *flatbuffers.Builder
	nsIndex    map[string]uint32
	namespaces []flatbuffers.UOffsetT
	attrs      []flatbuffers.UOffsetT
	logs       []flatbuffers.UOffsetT
}

// writeSpanset encodes spans, whose failure flags are already final,
// into a TTS1 buffer.
func writeSpanset(traceID TraceID, spans []spanData) ([]byte, writeStats) {
	w := &spansetWriter{
		b:       flatbuffers.NewBuilder(1024),
		nsIndex: make(map[string]uint32),
	}

	spanOffsets := make([]flatbuffers.UOffsetT, 0, len(spans))
	roots := make([]uint32, 0, 1)
	var errs []uint32

	for i := range spans {
		span := &spans[i]
		index := uint32(i)
		if span.isRoot() {
			roots = append(roots, index)
		}
		if span.failed {
			errs = append(errs, index)
		}
		spanOffsets = append(spanOffsets, w.writeSpan(span))
	}

	b := w.b
	fbNamespaces := tts1.CreateOffsetVector(b, w.namespaces)
	fbSpans := tts1.CreateOffsetVector(b, spanOffsets)
	fbAttrs := tts1.CreateOffsetVector(b, w.attrs)
	fbLogs := tts1.CreateOffsetVector(b, w.logs)
	fbRoots := tts1.CreateUint32Vector(b, roots)
	fbErrors := tts1.CreateUint32Vector(b, errs)

	tts1.SpansetStart(b)
	tts1.SpansetAddAbi(b, tts1.SpansetVersionVersion1)
	tts1.SpansetAddTraceIDHi(b, traceID.Hi)
	tts1.SpansetAddTraceIDLo(b, traceID.Lo)
	tts1.SpansetAddNamespaces(b, fbNamespaces)
	tts1.SpansetAddSpans(b, fbSpans)
	tts1.SpansetAddAttrs(b, fbAttrs)
	tts1.SpansetAddLogs(b, fbLogs)
	tts1.SpansetAddRoots(b, fbRoots)
	tts1.SpansetAddErrors(b, fbErrors)
	tts1.FinishSpansetBuffer(b, tts1.SpansetEnd(b))

	// FinishedBytes aliases the builder's scratch space; own a copy.
	buf := slices.Clone(b.FinishedBytes())
	return buf, writeStats{spans: len(spans), failed: len(errs), bytes: len(buf)}
}

func (w *spansetWriter) writeSpan(span *spanData) flatbuffers.UOffsetT {
	b := w.b

	tags := make([]uint32, 0, len(span.tags))
	for _, key := range sortedKeys(span.tags) {
		tags = append(tags, w.writeAttr(key, span.tags[key]))
	}

	logs := make([]uint32, 0, len(span.logs))
	for _, entry := range span.logs {
		logs = append(logs, w.writeLog(entry))
	}

	fbChildren := tts1.CreateUint32Vector(b, span.children)
	fbTags := tts1.CreateUint32Vector(b, tags)
	fbLogs := tts1.CreateUint32Vector(b, logs)
	fbName := b.CreateSharedString(span.operationName)

	parentIndex, parentID := InvalidIndex, uint64(0)
	if !span.isRoot() {
		parentIndex, parentID = span.parentIndex, uint64(span.parentID)
	}

	tts1.SpanDescriptorStart(b)
	tts1.SpanDescriptorAddSpanID(b, uint64(span.id))
	tts1.SpanDescriptorAddOperationName(b, fbName)
	tts1.SpanDescriptorAddParentIndex(b, parentIndex)
	tts1.SpanDescriptorAddParentID(b, parentID)
	tts1.SpanDescriptorAddChildren(b, fbChildren)
	tts1.SpanDescriptorAddFailed(b, span.failed)
	tts1.SpanDescriptorAddStartMillis(b, span.startMillis)
	tts1.SpanDescriptorAddEndMillis(b, span.endMillis)
	tts1.SpanDescriptorAddActiveDurationNanos(b, span.activeDuration.Nanoseconds())
	tts1.SpanDescriptorAddTags(b, fbTags)
	tts1.SpanDescriptorAddLogs(b, fbLogs)
	return tts1.SpanDescriptorEnd(b)
}

func (w *spansetWriter) writeLog(entry *logEntry) uint32 {
	b := w.b

	fields := make([]uint32, 0, len(entry.fields))
	for _, key := range sortedKeys(entry.fields) {
		fields = append(fields, w.writeAttr(key, entry.fields[key]))
	}
	fbFields := tts1.CreateUint32Vector(b, fields)

	var ts uint64
	if !entry.ts.IsZero() && entry.ts.UnixMilli() > 0 {
		ts = uint64(entry.ts.UnixMilli())
	}

	tts1.LogDescriptorStart(b)
	tts1.LogDescriptorAddLogTs(b, ts)
	tts1.LogDescriptorAddLogSeverity(b, tts1.LogSeverity(entry.severity))
	tts1.LogDescriptorAddLogFields(b, fbFields)

	index := uint32(len(w.logs))
	w.logs = append(w.logs, tts1.LogDescriptorEnd(b))
	return index
}

// writeAttr appends one attribute descriptor and returns its index.
func (w *spansetWriter) writeAttr(key AttrKey, value Value) uint32 {
	b := w.b
	ns := w.namespace(key.Namespace)
	typ, payload := w.writeValue(value)

	tts1.AttributeDescriptorStart(b)
	tts1.AttributeDescriptorAddAttrNs(b, ns)
	tts1.AttributeDescriptorAddAttrID(b, key.ID)
	tts1.AttributeDescriptorAddAttrValueType(b, typ)
	tts1.AttributeDescriptorAddAttrValue(b, payload)

	index := uint32(len(w.attrs))
	w.attrs = append(w.attrs, tts1.AttributeDescriptorEnd(b))
	return index
}

// namespace interns ns in first-seen order.
func (w *spansetWriter) namespace(ns string) uint32 {
	if index, ok := w.nsIndex[ns]; ok {
		return index
	}
	b := w.b
	url := b.CreateString(ns)
	tts1.NamespaceDescriptorStart(b)
	tts1.NamespaceDescriptorAddNsURL(b, url)

	index := uint32(len(w.namespaces))
	w.namespaces = append(w.namespaces, tts1.NamespaceDescriptorEnd(b))
	w.nsIndex[ns] = index
	return index
}

func (w *spansetWriter) writeValue(v Value) (tts1.Value, flatbuffers.UOffsetT) {
	b := w.b
	switch v.Type() {
	case ValueTypeNil, ValueTypeInvalid:
		// Spans reject invalid values, so this only guards the encoder.
		return tts1.ValueTrueFalseNilValue, tts1.CreateTrueFalseNilValue(b, tts1.TrueFalseNilNil)
	case ValueTypeBool:
		tfn := tts1.TrueFalseNilFalse
		if v.Bool() {
			tfn = tts1.TrueFalseNilTrue
		}
		return tts1.ValueTrueFalseNilValue, tts1.CreateTrueFalseNilValue(b, tfn)
	case ValueTypeInt64:
		return tts1.ValueInt64Value, tts1.CreateInt64Value(b, v.Int64())
	case ValueTypeFloat64:
		return tts1.ValueFloat64Value, tts1.CreateFloat64Value(b, v.Float64())
	case ValueTypeUInt64:
		return tts1.ValueUInt64Value, tts1.CreateUInt64Value(b, v.UInt64())
	case ValueTypeUInt32:
		return tts1.ValueUInt32Value, tts1.CreateUInt32Value(b, v.UInt32())
	case ValueTypeUInt16:
		return tts1.ValueUInt16Value, tts1.CreateUInt16Value(b, v.UInt16())
	case ValueTypeUInt8:
		return tts1.ValueUInt8Value, tts1.CreateUInt8Value(b, v.UInt8())
	case ValueTypeString:
		s := b.CreateSharedString(v.Str())
		return tts1.ValueStringValue, tts1.CreateStringValue(b, s)
	default:
		return tts1.ValueHandleValue, tts1.CreateHandleValue(b, v.Handle().Handle)
	}
}

// sortedKeys orders keys by namespace then id so output is deterministic.
func sortedKeys(m AttrMap) []AttrKey {
	keys := make([]AttrKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b AttrKey) int {
		if c := cmp.Compare(a.Namespace, b.Namespace); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return keys
}
