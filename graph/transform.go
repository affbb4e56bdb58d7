package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Transform derives or normalizes collected values before they are committed
// to the context.
//
// Transforms are pure value transformers: they receive the running payload
// and the full context, and return the payload the next transform (or the
// final commit) sees. They must not mutate the context. A transform may
// return its input unchanged, a modified copy, or an entirely new map.
//
// There is no rollback protocol: a transform that errors simply aborts the
// store, and StoreAnswer guarantees nothing was committed.
type Transform interface {
	// Apply maps the running payload to the next payload.
	Apply(payload map[string]string, ctx *Context) (map[string]string, error)

	// Spec returns the serializable description of this transform, used by
	// graph files and error reporting.
	Spec() TransformSpec
}

// TransformSpec is the declarative form of a transform as it appears in
// graph files: a registered name plus optional string arguments.
type TransformSpec struct {
	Name string            `yaml:"name"`
	Args map[string]string `yaml:"args,omitempty"`
}

// TransformFactory builds a transform from its file arguments.
type TransformFactory func(args map[string]string) (Transform, error)

// builtinTransforms maps registered names to factories. Load consults this
// table when wiring transforms declared in graph files.
var builtinTransforms = map[string]TransformFactory{
	"trim_space": func(map[string]string) (Transform, error) {
		return TrimSpace{}, nil
	},
	"drop_empty": func(map[string]string) (Transform, error) {
		return DropEmpty{}, nil
	},
	"apply_preset": func(args map[string]string) (Transform, error) {
		return ApplyPreset{Field: args["field"]}, nil
	},
	"copy_field": func(args map[string]string) (Transform, error) {
		t := CopyField{
			FromStage: args["from_stage"],
			FromField: args["from_field"],
			To:        args["to"],
		}
		if t.FromStage == "" || t.FromField == "" {
			return nil, errors.New("copy_field requires from_stage and from_field args")
		}
		return t, nil
	},
}

// NewTransform builds a registered transform by name.
func NewTransform(spec TransformSpec) (Transform, error) {
	factory, ok := builtinTransforms[spec.Name]
	if !ok {
		return nil, &GraphError{
			Message: "unknown transform: " + spec.Name,
			Code:    "UNKNOWN_TRANSFORM",
		}
	}
	return factory(spec.Args)
}

// TrimSpace trims leading and trailing whitespace from every payload value.
type TrimSpace struct{}

// Apply implements Transform.
func (TrimSpace) Apply(payload map[string]string, _ *Context) (map[string]string, error) {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}

// Spec implements Transform.
func (TrimSpace) Spec() TransformSpec {
	return TransformSpec{Name: "trim_space"}
}

// DropEmpty removes payload fields whose value is empty.
type DropEmpty struct{}

// Apply implements Transform.
func (DropEmpty) Apply(payload map[string]string, _ *Context) (map[string]string, error) {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// Spec implements Transform.
func (DropEmpty) Spec() TransformSpec {
	return TransformSpec{Name: "drop_empty"}
}

// ApplyPreset stamps the context's preset label into the payload.
//
// The value is only written when a preset is active and the payload does not
// already carry the field, so user-collected values win over the preset.
type ApplyPreset struct {
	// Field is the payload field to stamp. Defaults to "preset".
	Field string
}

// Apply implements Transform.
func (t ApplyPreset) Apply(payload map[string]string, ctx *Context) (map[string]string, error) {
	field := t.Field
	if field == "" {
		field = "preset"
	}
	if ctx == nil || ctx.Preset == "" {
		return payload, nil
	}
	if _, exists := payload[field]; exists {
		return payload, nil
	}

	out := clonePayload(payload)
	out[field] = ctx.Preset
	return out, nil
}

// Spec implements Transform.
func (t ApplyPreset) Spec() TransformSpec {
	spec := TransformSpec{Name: "apply_preset"}
	if t.Field != "" {
		spec.Args = map[string]string{"field": t.Field}
	}
	return spec
}

// CopyField derives a payload field from an earlier stage's stored answer.
//
// It errors when the source stage or field is absent: a graph that declares
// the derivation expects the source to have been collected first.
type CopyField struct {
	// FromStage is the stage whose answer supplies the value.
	FromStage string

	// FromField is the field read from that answer.
	FromField string

	// To is the payload field written. Defaults to FromField.
	To string
}

// Apply implements Transform.
func (t CopyField) Apply(payload map[string]string, ctx *Context) (map[string]string, error) {
	if ctx == nil {
		return nil, fmt.Errorf("no context to copy %s.%s from", t.FromStage, t.FromField)
	}
	answer, ok := ctx.Answers[t.FromStage]
	if !ok {
		return nil, fmt.Errorf("stage %s has no stored answer", t.FromStage)
	}
	value, ok := answer[t.FromField]
	if !ok {
		return nil, fmt.Errorf("stage %s answer has no field %s", t.FromStage, t.FromField)
	}

	to := t.To
	if to == "" {
		to = t.FromField
	}
	out := clonePayload(payload)
	out[to] = value
	return out, nil
}

// Spec implements Transform.
func (t CopyField) Spec() TransformSpec {
	args := map[string]string{
		"from_stage": t.FromStage,
		"from_field": t.FromField,
	}
	if t.To != "" {
		args["to"] = t.To
	}
	return TransformSpec{Name: "copy_field", Args: args}
}
