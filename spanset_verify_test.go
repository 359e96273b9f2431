package spanz

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleSpanset encodes a small trace touching every table: two
// namespaces, string and numeric values, logs with fields and a child.
func sampleSpanset(t testing.TB) []byte {
	tracer := New()
	t.Cleanup(tracer.Close)
	r := tracer.NewRecorder()

	root := r.MakeSpan(NoPropagation, AnyChildFailed)
	root.SetOperationName("checkout")
	PutTagAttr(root, OpentracingComponent, "cart")
	root.PutTag(AttrKey{Namespace: "app", ID: 7}, UInt64Value(42))

	child := root.MakeSpan(PropagatesToParent, IgnoresPropagation)
	child.SetOperationName("charge")
	child.LogStatus(NewStatus("payment", 402, "declined"), SeverityError)
	child.LogInfo("retrying")
	child.Close()
	root.Close()

	s, err := r.Finish()
	require.NoError(t, err)
	return slices.Clone(s.Bytes())
}

// walkSpanset calls every read accessor reachable from s.
func walkSpanset(s *Spanset) {
	_, _, _ = s.ABI(), s.TraceID(), s.Size()
	reader := s.Reader()
	for i := 0; i < reader.NumNamespaces(); i++ {
		_ = reader.Namespace(uint32(i))
	}
	for i := 0; i < reader.NumAttributes(); i++ {
		_, _, _ = reader.Attribute(uint32(i))
	}
	lookupKeys := []AttrKey{OpentracingComponent.Key(), ErrorCode.Key(), {Namespace: "app", ID: 7}}

	for i := 0; i < s.NumSpans(); i++ {
		w := s.Span(uint32(i))
		_, _, _ = w.ID(), w.OperationName(), w.ParentID()
		_, _, _ = w.StartTime(), w.EndTime(), w.ActiveDuration()
		_, _ = w.IsFailed(), w.Parent().OperationName()
		for c := 0; c < w.NumChildren(); c++ {
			_ = w.Child(c).OperationName()
		}
		for c := 0; c < w.NumTags(); c++ {
			_, _, _ = w.TagAt(c)
		}
		for _, key := range lookupKeys {
			_ = w.HasTag(key)
			_, _ = w.Tag(key)
		}
		for l := 0; l < w.NumLogs(); l++ {
			log := w.Log(l)
			_, _ = log.Timestamp(), log.Severity()
			_ = log.NumFields()
			for _, key := range lookupKeys {
				_ = log.HasField(key)
				_, _ = log.Field(key)
			}
		}
	}
	roots := s.Roots()
	for i := 0; i < roots.NumRoots(); i++ {
		_ = roots.Root(i).OperationName()
	}
	errs := s.Errors()
	for i := 0; i < errs.NumErrors(); i++ {
		_ = errs.Error(i).OperationName()
	}
}

func TestOpenSpansetAcceptedBuffersAreWalkable(t *testing.T) {
	good := sampleSpanset(t)

	s, err := OpenSpanset(good)
	require.NoError(t, err)
	require.NotPanics(t, func() { walkSpanset(s) })

	accepted := 0
	for pos := range good {
		for _, b := range []byte{0x00, 0x01, 0x04, 0x7f, 0x80, 0xff, good[pos] ^ 0xff} {
			buf := slices.Clone(good)
			buf[pos] = b
			opened, err := OpenSpanset(buf)
			if err != nil {
				assert.ErrorIs(t, err, ErrInvalidSpanset)
				continue
			}
			accepted++
			assert.NotPanics(t, func() { walkSpanset(opened) }, "byte %d set to %#x", pos, b)
		}
	}
	assert.Positive(t, accepted, "mutations of payload bytes stay readable")
}

func TestOpenSpansetRejectsOversizedVectors(t *testing.T) {
	good := sampleSpanset(t)
	// A vector length word rewritten to a huge count must not be accepted,
	// wherever it sits.
	for pos := 0; pos+4 <= len(good); pos += 4 {
		buf := slices.Clone(good)
		buf[pos], buf[pos+1], buf[pos+2], buf[pos+3] = 0xff, 0xff, 0xff, 0x0f
		opened, err := OpenSpanset(buf)
		if err != nil {
			continue
		}
		assert.NotPanics(t, func() { walkSpanset(opened) }, "word at %d", pos)
	}
}

func FuzzOpenSpanset(f *testing.F) {
	f.Add(sampleSpanset(f))
	f.Add([]byte("\x08\x00\x00\x00TTS1"))
	f.Fuzz(func(t *testing.T, buf []byte) {
		s, err := OpenSpanset(buf)
		if err != nil {
			return
		}
		walkSpanset(s)
	})
}
