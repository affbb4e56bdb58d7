package graph

// Node represents a single authoring stage in the prompt graph.
//
// Each stage collects a small set of named fields from the user and may
// declare transforms that derive or normalize values before they are stored
// in the traversal context.
type Node struct {
	// ID is the stable identifier for this stage. It is unique within a
	// graph and doubles as the lookup key into the context's answer map.
	ID string

	// Layer is a coarse category label (e.g., "idea", "story") used for
	// grouping and display. Traversal logic never consults it.
	Layer string

	// PromptTemplate is the human-readable instruction shown for this stage.
	PromptTemplate string

	// Collects lists the field names this stage is expected to populate.
	// Order is display-relevant only; StoreAnswer does not enforce it.
	Collects []string

	// SummaryKey optionally names the field that represents this stage in
	// downstream summaries. Empty for most stages.
	SummaryKey string

	// Transforms run in order when the stage's answer is stored. Each
	// receives the running payload and the full context, and returns the
	// payload the next transform (or the final commit) sees.
	Transforms []Transform
}
