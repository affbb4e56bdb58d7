// Package emit provides event emission and observability for prompt graph
// sessions.
package emit

// Event represents an observability event emitted while a session traverses
// the prompt graph.
//
// Events cover the session lifecycle:
//   - answer stored for a stage
//   - advance to the next stage (including conditional shortcuts)
//   - session reset
//   - transform failures
//
// Events are emitted to an Emitter which can log to a writer, create
// OpenTelemetry spans, or discard them entirely.
type Event struct {
	// SessionID identifies the session that emitted this event.
	SessionID string

	// Step is the number of advances the session has made (0 while still on
	// the entrypoint stage).
	Step int

	// StageID identifies the stage this event concerns.
	// Empty for session-level events.
	StageID string

	// Msg is a short machine-friendly event name, e.g. "answer_stored".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "fields": number of fields in a stored answer
	//   - "from": source stage of an advance
	//   - "shortcut": whether an advance used a conditional edge
	//   - "error": error details for failures
	Meta map[string]interface{}
}
