package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messageSchema = `{
	"type": "object",
	"required": ["message"],
	"properties": {
		"message": {"type": "string", "minLength": 1},
		"texts": {"type": "array", "items": {"type": "string"}}
	}
}`

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)
	assert.Panics(t, func() { MustCompile(`not json`) })
}

func TestValidateInput(t *testing.T) {
	schema := MustCompile(messageSchema)

	tests := []struct {
		name       string
		input      map[string]interface{}
		valid      bool
		errorField string
	}{
		{name: "valid", input: map[string]interface{}{"message": "stake 5 sol"}, valid: true},
		{name: "missing message", input: map[string]interface{}{}, valid: false, errorField: "(root)"},
		{name: "empty message", input: map[string]interface{}{"message": ""}, valid: false, errorField: "message"},
		{name: "wrong type", input: map[string]interface{}{"message": 5}, valid: false, errorField: "message"},
		{name: "bad array item", input: map[string]interface{}{"message": "x", "texts": []interface{}{"a", 1}}, valid: false, errorField: "texts.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := schema.ValidateInput(tt.input)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.True(t, result.HasErrors(tt.errorField), "errors: %v", result.GetErrorMessages())
				assert.NotEmpty(t, result.Errors[0].Code)
				assert.NotEmpty(t, result.Error())
			}
		})
	}
}

func TestValidateBytes(t *testing.T) {
	schema := MustCompile(messageSchema)

	assert.True(t, schema.ValidateBytes([]byte(`{"message":"hi"}`)).Valid)

	result := schema.ValidateBytes([]byte(`{"message":`))
	assert.False(t, result.Valid)
	assert.Equal(t, "INVALID_DOCUMENT", result.Errors[0].Code)
}

func TestGetErrorsForField(t *testing.T) {
	result := &ValidationResult{Errors: []ValidationError{
		{Field: "texts.0", Message: "bad"},
		{Field: "texts", Message: "bad"},
		{Field: "message", Message: "bad"},
	}}
	assert.Len(t, result.GetErrorsForField("texts"), 2)
	assert.Len(t, result.GetErrorsForField("message"), 1)
	assert.Equal(t, []string{"texts.0: bad", "texts: bad", "message: bad"}, result.GetErrorMessages())
}
