package diagnosis

import "github.com/abhisek/stepcheck/internal/llm"

// ClassificationSchema defines the JSON schema for LLM step classification
// responses.
var ClassificationSchema = &llm.Schema{
	Name:        llm.PurposeStepClassification,
	Description: "Classification of an invalid algebra step against the mistake taxonomy",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mistake_id": map[string]any{
				"type":        []any{"string", "null"},
				"description": "The ID of the matching mistake kind from the list, or null if none fits",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "Confidence score (0.0–1.0) reflecting how well the step fits the mistake kind",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Brief one-sentence explanation of the classification",
			},
		},
		"required":             []any{"mistake_id", "confidence", "reasoning"},
		"additionalProperties": false,
	},
}
