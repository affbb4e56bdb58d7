package emit

// NullEmitter implements Emitter by discarding all events.
//
// Useful when event output is unwanted without changing calling code, and as
// the default emitter for sessions constructed without one.
type NullEmitter struct{}

// NewNullEmitter creates a NullEmitter. It is safe for concurrent use and
// has zero overhead.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(event Event) {}
