package graph

import "sort"

// PromptGraph is the static collection of stages and edges describing a
// multi-layer prompt journey.
//
// A graph is immutable after construction: build it once (via NewPromptGraph,
// Load, or DefaultGraph) and share it read-only across any number of
// front-ends and sessions. Mutable per-session state lives in Context.
type PromptGraph struct {
	nodes      map[string]Node
	edges      []Edge
	entrypoint string
}

// NewPromptGraph constructs a graph from the given stages and edges and
// validates its structure.
//
// Validation fails fast with a GraphError when:
//   - a stage ID is empty or duplicated
//   - the entrypoint does not reference a known stage
//   - an edge endpoint does not reference a known stage
//   - an edge condition uses an unknown kind
//
// Surfacing dangling references here, rather than as a lookup fault in the
// middle of a traversal, keeps NextNodes total over well-formed graphs.
func NewPromptGraph(nodes []Node, edges []Edge, entrypoint string) (*PromptGraph, error) {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if n.ID == "" {
			return nil, &GraphError{
				Message: "stage ID cannot be empty",
				Code:    "EMPTY_STAGE_ID",
			}
		}
		if _, exists := byID[n.ID]; exists {
			return nil, &GraphError{
				Message: "duplicate stage ID: " + n.ID,
				Code:    "DUPLICATE_STAGE",
			}
		}
		byID[n.ID] = n
	}

	if entrypoint == "" {
		return nil, &GraphError{
			Message: "entrypoint cannot be empty",
			Code:    "NO_ENTRYPOINT",
		}
	}
	if _, ok := byID[entrypoint]; !ok {
		return nil, &GraphError{
			Message: "entrypoint references unknown stage: " + entrypoint,
			Code:    "STAGE_NOT_FOUND",
		}
	}

	for _, e := range edges {
		if _, ok := byID[e.From]; !ok {
			return nil, &GraphError{
				Message: "edge source references unknown stage: " + e.From,
				Code:    "STAGE_NOT_FOUND",
			}
		}
		if _, ok := byID[e.To]; !ok {
			return nil, &GraphError{
				Message: "edge target references unknown stage: " + e.To,
				Code:    "STAGE_NOT_FOUND",
			}
		}
		if e.When != nil {
			switch e.When.Kind {
			case KindStageAnswered, KindFieldCollected:
			default:
				return nil, &GraphError{
					Message: "unknown condition kind: " + string(e.When.Kind),
					Code:    "UNKNOWN_CONDITION",
				}
			}
		}
	}

	g := &PromptGraph{
		nodes:      byID,
		edges:      make([]Edge, len(edges)),
		entrypoint: entrypoint,
	}
	copy(g.edges, edges)
	return g, nil
}

// NextNodes resolves the stages reachable from nodeID given the current
// context.
//
// It filters the edge list to edges whose source matches nodeID and whose
// condition, if any, holds for ctx, and returns the target stages in edge
// declaration order. An empty result is a valid answer: the stage is terminal
// for this context, which can happen mid-graph when conditions close off
// every outgoing path.
//
// NextNodes is pure: it performs no mutation and returns the same result for
// the same (nodeID, ctx) pair as long as ctx is unchanged. An unknown nodeID
// simply matches no edges.
func (g *PromptGraph) NextNodes(nodeID string, ctx *Context) []Node {
	var next []Node
	for _, e := range g.edges {
		if e.From != nodeID {
			continue
		}
		if !e.When.Eval(ctx) {
			continue
		}
		next = append(next, g.nodes[e.To])
	}
	return next
}

// Node returns the stage with the given ID.
func (g *PromptGraph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Entrypoint returns the stage ID where traversal begins.
func (g *PromptGraph) Entrypoint() string {
	return g.entrypoint
}

// Len returns the number of stages in the graph.
func (g *PromptGraph) Len() int {
	return len(g.nodes)
}

// Edges returns a copy of the edge list in declaration order.
func (g *PromptGraph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// Stages returns all stages in a deterministic display order: a breadth-first
// walk from the entrypoint following edge declaration order and ignoring
// conditions, followed by any unreachable stages in lexical ID order.
//
// This is the order front-ends use for stage lists and summaries; it is not a
// traversal result and says nothing about which stages are currently eligible.
func (g *PromptGraph) Stages() []Node {
	ordered := make([]Node, 0, len(g.nodes))
	seen := make(map[string]bool, len(g.nodes))

	queue := []string{g.entrypoint}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		ordered = append(ordered, g.nodes[id])

		for _, e := range g.edges {
			if e.From == id && !seen[e.To] {
				queue = append(queue, e.To)
			}
		}
	}

	if len(ordered) < len(g.nodes) {
		rest := make([]string, 0, len(g.nodes)-len(ordered))
		for id := range g.nodes {
			if !seen[id] {
				rest = append(rest, id)
			}
		}
		sort.Strings(rest)
		for _, id := range rest {
			ordered = append(ordered, g.nodes[id])
		}
	}

	return ordered
}
