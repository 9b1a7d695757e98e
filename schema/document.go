package schema

// Document returns the JSON Schema of the error envelope, for API docs and
// client code generation.
func Document() map[string]any {
	return map[string]any{
		"$schema":     "https://json-schema.org/draft/2020-12/schema",
		"$id":         "https://carmarket.dev/schemas/error.json",
		"title":       "Error",
		"description": "Body of every error response returned by the API",
		"type":        "object",
		"required":    []string{"statusCode", "errorCode", "message", "id"},
		"properties": map[string]any{
			"statusCode": map[string]any{
				"type":        "integer",
				"minimum":     MinStatusCode,
				"maximum":     MaxStatusCode,
				"description": "The HTTP status code",
			},
			"errorCode": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The application specific error code",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "The error message",
			},
			"errors": map[string]any{
				"type":        "array",
				"description": "Validation errors, present only when request validation failed",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"field", "message", "code"},
					"properties": map[string]any{
						"field": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The field path (e.g., 'email' or 'user.name')",
						},
						"message": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The validation error message",
						},
						"code": map[string]any{
							"type":        "string",
							"minLength":   1,
							"description": "The validation rule that failed (e.g., 'too_small', 'invalid_type')",
						},
					},
				},
			},
			"id": map[string]any{
				"type":        "string",
				"format":      "uuid",
				"description": "Unique error identifier for tracking",
			},
		},
	}
}
