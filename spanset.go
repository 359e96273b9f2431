package spanz

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/zoobzio/spanz/internal/tts1"
)

// minSpansetSize covers the root offset and the file identifier.
const minSpansetSize = flatbuffers.SizeUOffsetT + len(tts1.Identifier)

// Spanset is an encoded, immutable trace. Accessors read directly from
// the underlying buffer.
type Spanset struct {
	buf []byte
}

// OpenSpanset wraps buf without copying it. The buffer must carry the
// TTS1 identifier, a known ABI, and internally consistent indices.
// The caller must not modify buf afterwards.
func OpenSpanset(buf []byte) (*Spanset, error) {
	if err := verifySpanset(buf); err != nil {
		return nil, err
	}
	return &Spanset{buf: buf}, nil
}

// Bytes returns the encoded buffer.
func (s *Spanset) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.buf
}

// Size returns the encoded length in bytes.
func (s *Spanset) Size() int { return len(s.Bytes()) }

// IsValid reports whether the spanset can be inspected.
func (s *Spanset) IsValid() bool {
	return s != nil && len(s.buf) >= minSpansetSize && tts1.SpansetBufferHasIdentifier(s.buf)
}

// Reader returns a reader over the spanset. It is nil for an invalid spanset.
func (s *Spanset) Reader() *SpansetReader {
	if !s.IsValid() {
		return nil
	}
	return &SpansetReader{root: tts1.GetRootAsSpanset(s.buf, 0)}
}

// ABI returns the encoded version tag.
func (s *Spanset) ABI() SpansetVersion { return s.Reader().ABI() }

// TraceID returns the id of the encoded trace.
func (s *Spanset) TraceID() TraceID { return s.Reader().TraceID() }

// NumSpans returns the number of spans.
func (s *Spanset) NumSpans() int { return s.Reader().NumSpans() }

// Span returns a walker for the span at index.
func (s *Spanset) Span(index uint32) SpanWalker { return s.Reader().Span(index) }

// Roots returns a walker over the root spans.
func (s *Spanset) Roots() RootWalker { return RootWalker{r: s.Reader()} }

// Errors returns a walker over the failed spans.
func (s *Spanset) Errors() ErrorWalker { return ErrorWalker{r: s.Reader()} }

// verifySpanset checks the header, the extent of every vector and string,
// and every cross-table index, reading each field a walker can reach so
// accessors on an accepted buffer never go out of bounds. Out-of-range
// reads inside the flatbuffer accessors surface as a recovered panic.
func verifySpanset(buf []byte) (err error) {
	if len(buf) < minSpansetSize {
		return fmt.Errorf("%w: %d bytes is too short", ErrInvalidSpanset, len(buf))
	}
	if !tts1.SpansetBufferHasIdentifier(buf) {
		return fmt.Errorf("%w: bad file identifier", ErrInvalidSpanset)
	}
	if off := flatbuffers.GetUOffsetT(buf); int(off) >= len(buf) {
		return fmt.Errorf("%w: root offset %d out of range", ErrInvalidSpanset, off)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: corrupt buffer: %v", ErrInvalidSpanset, r)
		}
	}()

	root := tts1.GetRootAsSpanset(buf, 0)
	if v := SpansetVersion(root.Abi()); v != SpansetVersion1 {
		return fmt.Errorf("%w: unknown abi %d", ErrInvalidSpanset, v)
	}
	if !root.VectorsFit() {
		return fmt.Errorf("%w: spanset vector exceeds buffer", ErrInvalidSpanset)
	}
	_, _ = root.TraceIDHi(), root.TraceIDLo()

	numSpans := uint32(root.SpansLength())
	numAttrs := uint32(root.AttrsLength())
	numLogs := uint32(root.LogsLength())
	numNs := uint32(root.NamespacesLength())

	inRange := func(what string, index, limit uint32) error {
		if index >= limit {
			return fmt.Errorf("%w: %s index %d out of range", ErrInvalidSpanset, what, index)
		}
		return nil
	}

	for i := 0; i < root.RootsLength(); i++ {
		if err := inRange("root", root.Roots(i), numSpans); err != nil {
			return err
		}
	}
	for i := 0; i < root.ErrorsLength(); i++ {
		if err := inRange("error", root.Errors(i), numSpans); err != nil {
			return err
		}
	}

	var ns tts1.NamespaceDescriptor
	for i := uint32(0); i < numNs; i++ {
		root.Namespaces(&ns, int(i))
		if !ns.VectorsFit() {
			return fmt.Errorf("%w: namespace %d exceeds buffer", ErrInvalidSpanset, i)
		}
		_ = ns.NsURL()
	}

	var span tts1.SpanDescriptor
	for i := uint32(0); i < numSpans; i++ {
		root.Spans(&span, int(i))
		if !span.VectorsFit() {
			return fmt.Errorf("%w: span %d vector exceeds buffer", ErrInvalidSpanset, i)
		}
		if p := span.ParentIndex(); p != InvalidIndex && p >= i {
			return fmt.Errorf("%w: span %d has parent %d", ErrInvalidSpanset, i, p)
		}
		for j := 0; j < span.ChildrenLength(); j++ {
			if err := inRange("child", span.Children(j), numSpans); err != nil {
				return err
			}
		}
		for j := 0; j < span.TagsLength(); j++ {
			if err := inRange("tag", span.Tags(j), numAttrs); err != nil {
				return err
			}
		}
		for j := 0; j < span.LogsLength(); j++ {
			if err := inRange("log", span.Logs(j), numLogs); err != nil {
				return err
			}
		}
		_ = span.OperationName()
		_, _ = span.SpanID(), span.ParentID()
		_, _, _ = span.StartMillis(), span.EndMillis(), span.ActiveDurationNanos()
		_ = span.Failed()
	}

	var log tts1.LogDescriptor
	for i := uint32(0); i < numLogs; i++ {
		root.Logs(&log, int(i))
		if !log.VectorsFit() {
			return fmt.Errorf("%w: log %d vector exceeds buffer", ErrInvalidSpanset, i)
		}
		for j := 0; j < log.LogFieldsLength(); j++ {
			if err := inRange("field", log.LogFields(j), numAttrs); err != nil {
				return err
			}
		}
		_, _ = log.LogTs(), log.LogSeverity()
	}

	var attr tts1.AttributeDescriptor
	for i := uint32(0); i < numAttrs; i++ {
		root.Attrs(&attr, int(i))
		if err := inRange("namespace", attr.AttrNs(), numNs); err != nil {
			return err
		}
		_ = attr.AttrID()
		if _, err := decodeAttrValue(&attr); err != nil {
			return fmt.Errorf("%w: attribute %d: %v", ErrInvalidSpanset, i, err)
		}
	}
	return nil
}
