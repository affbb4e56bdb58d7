package graph

// Context holds the state accumulated while traversing a prompt graph.
//
// A context is created fresh per user session, grows as stages are completed,
// and is discarded when the session ends. It is owned by a single logical
// session: concurrent StoreAnswer calls against the same context are not
// supported and must be serialized by the caller. The graph itself is
// immutable and safe to share across contexts.
type Context struct {
	// Answers maps stage ID to that stage's stored answer (field -> value).
	Answers map[string]map[string]string

	// Preset is an optional label transforms may consult, e.g. to stamp
	// collected values with the active preset.
	Preset string
}

// NewContext returns an empty traversal context.
func NewContext() *Context {
	return &Context{Answers: make(map[string]map[string]string)}
}

// StoreAnswer attaches the collected payload to the node's stage.
//
// The node's transforms run in declared order; each receives the running
// payload plus the full context, so later transforms may read other stages'
// already-stored answers and the preset. The final payload replaces any
// previously stored answer for the stage wholesale: resubmitting a stage
// overwrites, it never merges.
//
// The payload is not validated against node.Collects: extra or missing
// fields are accepted silently.
//
// The commit is atomic with respect to transform failure: if any transform
// returns an error, StoreAnswer returns a TransformError and neither the
// stored answer nor the caller's payload map is modified.
func (c *Context) StoreAnswer(node Node, payload map[string]string) error {
	enriched := clonePayload(payload)
	for _, t := range node.Transforms {
		next, err := t.Apply(enriched, c)
		if err != nil {
			return &TransformError{
				Stage:     node.ID,
				Transform: t.Spec().Name,
				Cause:     err,
			}
		}
		enriched = next
	}

	if c.Answers == nil {
		c.Answers = make(map[string]map[string]string)
	}
	c.Answers[node.ID] = enriched
	return nil
}

// Answer returns the stored answer for a stage, if any.
func (c *Context) Answer(stageID string) (map[string]string, bool) {
	answer, ok := c.Answers[stageID]
	return answer, ok
}

// clonePayload copies a payload so transforms never alias the caller's map.
// A nil payload clones to an empty, non-nil map: an empty answer is still an
// answer as far as stage-presence conditions are concerned.
func clonePayload(payload map[string]string) map[string]string {
	cloned := make(map[string]string, len(payload))
	for k, v := range payload {
		cloned[k] = v
	}
	return cloned
}
