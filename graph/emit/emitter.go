package emit

// Emitter receives and processes observability events from session activity.
//
// Emitters enable pluggable observability backends: writer-based logging
// (LogEmitter), distributed tracing (OTelEmitter), or nothing (NullEmitter).
//
// Implementations should be:
//   - Non-blocking: avoid slowing down the interactive session
//   - Thread-safe: a process may run several sessions
//   - Resilient: emission failures must never crash the session
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	// Emit should not panic; errors are handled internally.
	Emit(event Event)
}
