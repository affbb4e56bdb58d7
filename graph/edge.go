// Package graph provides the declarative prompt-graph primitives that guide
// the multi-layer prompt authoring workflow.
package graph

// Edge represents a directed connection between two stages in the prompt graph.
//
// Edges define which stages become reachable after a stage is completed.
// They can be:
// - Unconditional: Always traversable (When = nil).
// - Conditional: Only traversable when the condition holds for the current context.
//
// Edge declaration order is semantic: NextNodes returns eligible targets in
// the order their edges were declared, never sorted or reordered.
type Edge struct {
	// From is the source stage ID.
	From string

	// To is the destination stage ID.
	To string

	// When is an optional condition that determines if this edge is traversable.
	// If nil, the edge is unconditional (always traversable).
	When *Condition
}

// ConditionKind identifies one of the fixed predicate forms an edge condition
// may take. Conditions are data, not closures, so graphs stay serializable
// and individual predicates stay testable.
type ConditionKind string

const (
	// KindStageAnswered holds when the referenced stage has any stored answer
	// at all, even an empty one. It is an existence check, not a content check.
	KindStageAnswered ConditionKind = "stage_answered"

	// KindFieldCollected holds when the referenced stage has a stored answer
	// and that answer contains the named field, whatever its value.
	KindFieldCollected ConditionKind = "field_collected"
)

// Condition is a declarative predicate over the traversal context.
//
// The two kinds deliberately differ in strictness: a shortcut gated on
// KindFieldCollected requires a specific field to have been collected, while
// one gated on KindStageAnswered opens as soon as the stage was submitted at
// all. Both forms appear in the seed graph and the difference is intentional.
type Condition struct {
	// Kind selects the predicate form.
	Kind ConditionKind

	// Stage is the stage ID the predicate inspects.
	Stage string

	// Field is the answer field inspected by KindFieldCollected.
	// Unused for KindStageAnswered.
	Field string
}

// WhenStageAnswered returns a condition that holds once the given stage has
// any recorded answer, including an empty one.
func WhenStageAnswered(stageID string) *Condition {
	return &Condition{Kind: KindStageAnswered, Stage: stageID}
}

// WhenFieldCollected returns a condition that holds once the given stage's
// answer contains the named field.
func WhenFieldCollected(stageID, field string) *Condition {
	return &Condition{Kind: KindFieldCollected, Stage: stageID, Field: field}
}

// Eval reports whether the condition holds for the given context.
//
// A nil condition represents an unconditional edge and always evaluates true.
// An unknown kind evaluates false; Validate rejects such conditions at
// construction time, so this only matters for hand-built edges.
func (c *Condition) Eval(ctx *Context) bool {
	if c == nil {
		return true
	}
	if ctx == nil {
		return false
	}

	switch c.Kind {
	case KindStageAnswered:
		_, ok := ctx.Answers[c.Stage]
		return ok

	case KindFieldCollected:
		answer, ok := ctx.Answers[c.Stage]
		if !ok {
			return false
		}
		_, ok = answer[c.Field]
		return ok
	}

	return false
}
