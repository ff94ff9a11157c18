package ir

// Version constants for the trace format and engine.
const (
	// TraceVersion is the schema version of serialized traces.
	TraceVersion = "1"

	// EngineVersion is the pulsenet engine version.
	EngineVersion = "0.1.0"
)
