package trails

import "github.com/yanqian/trailfinder/internal/infra/llm/chatgpt"

const schemaName = "trail_recommendations"

// recommendationFormat constrains completions to {"trails":[{"id":int,"explanation":string}]}.
func recommendationFormat() *chatgpt.ResponseFormat {
	return &chatgpt.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &chatgpt.JSONSchema{
			Name:   schemaName,
			Strict: true,
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"trails": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":          map[string]any{"type": "integer"},
								"explanation": map[string]any{"type": "string"},
							},
							"required":             []string{"id", "explanation"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []string{"trails"},
				"additionalProperties": false,
			},
		},
	}
}
