// Package tts1 holds the flatbuffers accessors and builders for the
// version 1 spanset schema. The layout mirrors spanset.fbs in this
// directory; keep both in sync.
package tts1

// Identifier is the 4-byte file identifier at offset 4 of every buffer.
const Identifier = "TTS1"

// SpansetVersion is the ABI tag stored in Spanset.abi.
type SpansetVersion byte

const (
	SpansetVersionUnknown  SpansetVersion = 0
	SpansetVersionVersion1 SpansetVersion = 1
)

// LogSeverity mirrors the engine's log severities.
type LogSeverity byte

const (
	LogSeverityFatal       LogSeverity = 0
	LogSeverityError       LogSeverity = 1
	LogSeverityWarn        LogSeverity = 2
	LogSeverityInfo        LogSeverity = 3
	LogSeverityVerbose     LogSeverity = 4
	LogSeverityVeryVerbose LogSeverity = 5
)

// TrueFalseNil encodes Nil and Bool payloads in one table.
type TrueFalseNil byte

const (
	TrueFalseNilNil   TrueFalseNil = 0
	TrueFalseNilTrue  TrueFalseNil = 1
	TrueFalseNilFalse TrueFalseNil = 2
)

// Value is the union discriminator for AttributeDescriptor.attr_value.
type Value byte

const (
	ValueNONE              Value = 0
	ValueTrueFalseNilValue Value = 1
	ValueInt64Value        Value = 2
	ValueFloat64Value      Value = 3
	ValueUInt64Value       Value = 4
	ValueUInt32Value       Value = 5
	ValueUInt16Value       Value = 6
	ValueUInt8Value        Value = 7
	ValueStringValue       Value = 8
	ValueHandleValue       Value = 9
)
