package graph

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Graph file format
//
// Graphs can be authored as static YAML (or JSON, which YAML parses) instead
// of Go code:
//
//	entrypoint: idea:seed
//	nodes:
//	  - id: idea:seed
//	    layer: idea
//	    prompt: Collect the user's initial idea.
//	    collects: [concept, audience, goal]
//	    summary_key: concept
//	    transforms:
//	      - trim_space
//	      - name: copy_field
//	        args: {from_stage: idea:seed, from_field: concept, to: base_concept}
//	edges:
//	  - from: idea:seed
//	    to: story:genre
//	  - from: technique:camera
//	    to: delivery:export
//	    when: {kind: field_collected, stage: technique:camera, field: camera}
//
// Conditions are declared by kind tag, transforms by registered name. Scalar
// transform entries are shorthand for a spec without args.

type graphFile struct {
	Entrypoint string     `yaml:"entrypoint"`
	Nodes      []nodeSpec `yaml:"nodes"`
	Edges      []edgeSpec `yaml:"edges"`
}

type nodeSpec struct {
	ID         string          `yaml:"id"`
	Layer      string          `yaml:"layer"`
	Prompt     string          `yaml:"prompt"`
	Collects   []string        `yaml:"collects,flow"`
	SummaryKey string          `yaml:"summary_key,omitempty"`
	Transforms []transformNode `yaml:"transforms,omitempty"`
}

type edgeSpec struct {
	From string         `yaml:"from"`
	To   string         `yaml:"to"`
	When *conditionSpec `yaml:"when,omitempty"`
}

type conditionSpec struct {
	Kind  string `yaml:"kind"`
	Stage string `yaml:"stage"`
	Field string `yaml:"field,omitempty"`
}

// transformNode wraps TransformSpec to accept the scalar shorthand.
type transformNode struct {
	TransformSpec
}

// UnmarshalYAML accepts either a bare name or a {name, args} mapping.
func (t *transformNode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Name = value.Value
		return nil
	}
	return value.Decode(&t.TransformSpec)
}

// MarshalYAML emits the scalar shorthand when the transform has no args.
func (t transformNode) MarshalYAML() (interface{}, error) {
	if len(t.Args) == 0 {
		return t.Name, nil
	}
	return t.TransformSpec, nil
}

// Load reads a graph definition from r and constructs a validated PromptGraph.
//
// The reader may contain YAML or JSON. Unknown condition kinds, unregistered
// transform names, and structural faults (dangling edges, missing entrypoint)
// are all construction-time errors.
func Load(r io.Reader) (*PromptGraph, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file graphFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode graph file: %w", err)
	}

	nodes := make([]Node, 0, len(file.Nodes))
	for _, spec := range file.Nodes {
		node := Node{
			ID:             spec.ID,
			Layer:          spec.Layer,
			PromptTemplate: spec.Prompt,
			Collects:       spec.Collects,
			SummaryKey:     spec.SummaryKey,
		}
		for _, ts := range spec.Transforms {
			transform, err := NewTransform(ts.TransformSpec)
			if err != nil {
				return nil, fmt.Errorf("stage %s: %w", spec.ID, err)
			}
			node.Transforms = append(node.Transforms, transform)
		}
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(file.Edges))
	for _, spec := range file.Edges {
		edge := Edge{From: spec.From, To: spec.To}
		if spec.When != nil {
			edge.When = &Condition{
				Kind:  ConditionKind(spec.When.Kind),
				Stage: spec.When.Stage,
				Field: spec.When.Field,
			}
		}
		edges = append(edges, edge)
	}

	return NewPromptGraph(nodes, edges, file.Entrypoint)
}

// Dump serializes a graph back to the YAML file format.
//
// Stages are written in display order (see Stages), edges in declaration
// order. A dumped graph reloads to an equivalent one via Load.
func Dump(g *PromptGraph, w io.Writer) error {
	file := graphFile{Entrypoint: g.Entrypoint()}

	for _, node := range g.Stages() {
		spec := nodeSpec{
			ID:         node.ID,
			Layer:      node.Layer,
			Prompt:     node.PromptTemplate,
			Collects:   node.Collects,
			SummaryKey: node.SummaryKey,
		}
		for _, transform := range node.Transforms {
			spec.Transforms = append(spec.Transforms, transformNode{transform.Spec()})
		}
		file.Nodes = append(file.Nodes, spec)
	}

	for _, edge := range g.Edges() {
		spec := edgeSpec{From: edge.From, To: edge.To}
		if edge.When != nil {
			spec.When = &conditionSpec{
				Kind:  string(edge.When.Kind),
				Stage: edge.When.Stage,
				Field: edge.When.Field,
			}
		}
		file.Edges = append(file.Edges, spec)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("failed to encode graph file: %w", err)
	}
	return enc.Close()
}
