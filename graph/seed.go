package graph

// DefaultGraph returns the fixed seed graph used by the CLI and as a baseline
// for custom graph files.
//
// It encodes five stages in a fixed linear order (idea, story, style,
// technique, delivery) connected by five edges. Three edges form the
// unconditional default path. The remaining two are conditional shortcuts to
// the delivery stage, and their conditions deliberately differ in strictness:
//
//   - technique → delivery opens only once the technique answer contains a
//     collected "camera" field.
//   - style → delivery opens as soon as the style stage has any recorded
//     answer at all, even an empty one.
//
// DefaultGraph is a pure factory: every call returns a fresh, internally
// consistent graph. Since graphs are immutable there is no observable
// difference between sharing one instance and constructing many.
func DefaultGraph() *PromptGraph {
	nodes := []Node{
		{
			ID:             "idea:seed",
			Layer:          "idea",
			PromptTemplate: "Собери исходную идею пользователя для генерации изображения.",
			Collects:       []string{"concept", "audience", "goal"},
			SummaryKey:     "concept",
		},
		{
			ID:             "story:genre",
			Layer:          "story",
			PromptTemplate: "Уточни жанр, настроение и ключевые элементы сюжета.",
			Collects:       []string{"genre", "mood", "key_elements"},
		},
		{
			ID:             "style:visual_language",
			Layer:          "style",
			PromptTemplate: "Определи визуальный стиль, цветовую палитру и источники вдохновения.",
			Collects:       []string{"visual_style", "color_palette", "inspiration"},
		},
		{
			ID:             "technique:camera",
			Layer:          "technique",
			PromptTemplate: "Если уместно, задай технические параметры (камера, объектив, освещение).",
			Collects:       []string{"camera", "lens", "lighting"},
		},
		{
			ID:             "delivery:export",
			Layer:          "delivery",
			PromptTemplate: "Собери финальный промпт и переведи его на русский и английский.",
			Collects:       []string{"prompt_ru", "prompt_en"},
		},
	}

	edges := []Edge{
		{From: "idea:seed", To: "story:genre"},
		{From: "story:genre", To: "style:visual_language"},
		{From: "style:visual_language", To: "technique:camera"},
		{
			From: "technique:camera",
			To:   "delivery:export",
			When: WhenFieldCollected("technique:camera", "camera"),
		},
		{
			From: "style:visual_language",
			To:   "delivery:export",
			When: WhenStageAnswered("style:visual_language"),
		},
	}

	g, err := NewPromptGraph(nodes, edges, "idea:seed")
	if err != nil {
		// The seed graph is static; a validation failure is a programming
		// error, not a runtime condition.
		panic("default graph is invalid: " + err.Error())
	}
	return g
}
