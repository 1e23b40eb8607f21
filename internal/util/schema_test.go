package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intentShape struct {
	Goal  string   `json:"goal" description:"Objetivo del paso"`
	Notes *string  `json:"notes" description:"Notas opcionales"`
	Tags  []string `json:"tags,omitempty"`
	Limit int      `json:"limit"`
}

func TestCreateSchemaTypesAndRequired(t *testing.T) {
	schema := CreateSchema(intentShape{})

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	goal := props["goal"].(map[string]any)
	assert.Equal(t, "string", goal["type"])
	assert.Equal(t, "Objetivo del paso", goal["description"])
	assert.Equal(t, "string", props["notes"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])
	assert.Equal(t, "integer", props["limit"].(map[string]any)["type"])

	// Pointer and omitempty fields are optional
	assert.ElementsMatch(t, []string{"goal", "limit"}, schema["required"])
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestValidateParametersRequiredShapes(t *testing.T) {
	// Hand-written schemas carry []string, JSON round-trips produce []any
	for _, required := range []any{[]string{"query"}, []any{"query"}} {
		schema := map[string]any{
			"type":       "object",
			"properties": map[string]any{"query": map[string]any{"type": "string"}},
			"required":   required,
		}
		assert.NoError(t, ValidateParameters(map[string]any{"query": "rock"}, schema))

		err := ValidateParameters(map[string]any{}, schema)
		require.Error(t, err)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "query", vErr.Field)
	}
}

func TestValidateParametersTypes(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit":      map[string]any{"type": "integer"},
			"public":     map[string]any{"type": "boolean"},
			"track_uris": map[string]any{"type": "array"},
		},
	}

	// JSON numbers arrive as float64; whole values count as integers
	assert.NoError(t, ValidateParameters(map[string]any{"limit": float64(5)}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"limit": 5.5}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"limit": "cinco"}, schema))

	assert.NoError(t, ValidateParameters(map[string]any{"public": true}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"public": "sí"}, schema))

	assert.NoError(t, ValidateParameters(map[string]any{"track_uris": []any{"a", "b"}}, schema))
	assert.Error(t, ValidateParameters(map[string]any{"track_uris": "a,b"}, schema))

	// Unknown properties and nil values pass
	assert.NoError(t, ValidateParameters(map[string]any{"extra": 1}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"limit": nil}, schema))
}
