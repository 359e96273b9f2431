package spanz

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TraceID identifies a trace. The zero TraceID is invalid.
type TraceID struct {
	Hi uint64
	Lo uint64
}

// IsValid reports whether the id is non-zero.
func (t TraceID) IsValid() bool { return t.Hi != 0 || t.Lo != 0 }

// Timestamp returns the creation time embedded in a generated id.
func (t TraceID) Timestamp() time.Time {
	var u ulid.ULID
	binary.BigEndian.PutUint64(u[0:8], t.Hi)
	binary.BigEndian.PutUint64(u[8:16], t.Lo)
	return ulid.Time(u.Time())
}

func (t TraceID) String() string {
	return fmt.Sprintf("%016x%016x", t.Hi, t.Lo)
}

// SpanID identifies a span. The zero SpanID is invalid.
type SpanID uint64

// IsValid reports whether the id is non-zero.
func (s SpanID) IsValid() bool { return s != 0 }

func (s SpanID) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// idGenerator produces trace and span identifiers.
// Entropy reads are serialized because ulid monotonic readers are not
// safe for concurrent use.
type idGenerator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

func newIDGenerator(entropy io.Reader) *idGenerator {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &idGenerator{entropy: entropy}
}

// traceID builds a ULID stamped with now and splits it into hi/lo halves.
func (g *idGenerator) traceID(now time.Time) TraceID {
	g.entropyMu.Lock()
	u, err := ulid.New(ulid.Timestamp(now), g.entropy)
	g.entropyMu.Unlock()
	if err != nil {
		// Entropy failure: fall back to a timestamp-only id with a nanosecond tail.
		u = ulid.ULID{}
		_ = u.SetTime(ulid.Timestamp(now))
		binary.BigEndian.PutUint64(u[8:16], uint64(now.UnixNano())|1)
	}
	return TraceID{
		Hi: binary.BigEndian.Uint64(u[0:8]),
		Lo: binary.BigEndian.Uint64(u[8:16]),
	}
}

// spanID returns a random non-zero id.
func (g *idGenerator) spanID(now time.Time) SpanID {
	var buf [8]byte
	for {
		g.entropyMu.Lock()
		_, err := io.ReadFull(g.entropy, buf[:])
		g.entropyMu.Unlock()
		if err != nil {
			return SpanID(uint64(now.UnixNano()) | 1)
		}
		if id := SpanID(binary.BigEndian.Uint64(buf[:])); id.IsValid() {
			return id
		}
	}
}

// NewTraceID generates a time-ordered random trace id.
func NewTraceID() TraceID {
	return defaultIDs.traceID(time.Now())
}

// NewSpanID generates a random span id.
func NewSpanID() SpanID {
	return defaultIDs.spanID(time.Now())
}

var defaultIDs = newIDGenerator(nil)
