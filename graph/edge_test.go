package graph

import "testing"

func TestCondition_Eval(t *testing.T) {
	ctx := NewContext()
	ctx.Answers["style:visual_language"] = map[string]string{}
	ctx.Answers["technique:camera"] = map[string]string{"camera": ""}

	t.Run("nil condition is always true", func(t *testing.T) {
		var c *Condition
		if !c.Eval(ctx) {
			t.Error("nil condition should evaluate true")
		}
		if !c.Eval(nil) {
			t.Error("nil condition should evaluate true even without context")
		}
	})

	t.Run("nil context fails non-nil conditions", func(t *testing.T) {
		if WhenStageAnswered("style:visual_language").Eval(nil) {
			t.Error("stage_answered should be false for nil context")
		}
		if WhenFieldCollected("technique:camera", "camera").Eval(nil) {
			t.Error("field_collected should be false for nil context")
		}
	})

	t.Run("stage_answered is an existence check", func(t *testing.T) {
		// The style answer is empty, but stored. That counts.
		if !WhenStageAnswered("style:visual_language").Eval(ctx) {
			t.Error("empty stored answer should satisfy stage_answered")
		}
		if WhenStageAnswered("idea:seed").Eval(ctx) {
			t.Error("missing stage should not satisfy stage_answered")
		}
	})

	t.Run("field_collected requires the field key", func(t *testing.T) {
		// The camera value is empty, but the key exists. That counts.
		if !WhenFieldCollected("technique:camera", "camera").Eval(ctx) {
			t.Error("empty-valued field should satisfy field_collected")
		}
		if WhenFieldCollected("technique:camera", "lens").Eval(ctx) {
			t.Error("absent field should not satisfy field_collected")
		}
		if WhenFieldCollected("idea:seed", "concept").Eval(ctx) {
			t.Error("absent stage should not satisfy field_collected")
		}
	})

	t.Run("unknown kind evaluates false", func(t *testing.T) {
		c := &Condition{Kind: "bogus", Stage: "style:visual_language"}
		if c.Eval(ctx) {
			t.Error("unknown condition kind should evaluate false")
		}
	})
}
