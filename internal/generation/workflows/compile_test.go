package workflows

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Placeholder substitution
// ==========================

func TestCompile_Placeholders(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]interface{}
		expected string
	}{
		{
			name:     "quoted substitution of a string",
			template: `{"6":{"class_type":"CLIPTextEncode","inputs":{"text":"{{prompt}}"}}}`,
			params:   map[string]interface{}{"prompt": "a cat"},
			expected: `{"6":{"class_type":"CLIPTextEncode","inputs":{"text":"a cat"}}}`,
		},
		{
			name:     "quoted substitution of a number stays a string",
			template: `{"a":"{{width}}"}`,
			params:   map[string]interface{}{"width": 1024},
			expected: `{"a":"1024"}`,
		},
		{
			name:     "raw substitution of a number",
			template: `{"a":"{{{width}}}"}`,
			params:   map[string]interface{}{"width": 1024},
			expected: `{"a":1024}`,
		},
		{
			name:     "raw substitution of an object",
			template: `{"a":"{{{image}}}"}`,
			params:   map[string]interface{}{"image": map[string]interface{}{"url": "https://x/y.png"}},
			expected: `{"a":{"url":"https://x/y.png"}}`,
		},
		{
			name:     "spacing tolerant braces",
			template: `{"a":"{ { seed } }","b":"{{ steps }}"}`,
			params:   map[string]interface{}{"seed": 42, "steps": 20},
			expected: `{"a":"42","b":"20"}`,
		},
		{
			name:     "embedded placeholders",
			template: `{"a":"prefix {{x}} and {{y}}"}`,
			params:   map[string]interface{}{"x": "one", "y": true},
			expected: `{"a":"prefix one and true"}`,
		},
		{
			name:     "values with quotes and braces cannot break the document",
			template: `{"a":"{{prompt}}"}`,
			params:   map[string]interface{}{"prompt": `say "hi" }} {{`},
			expected: `{"a":"say \"hi\" }} {{"}`,
		},
		{
			name:     "placeholders inside arrays",
			template: `{"a":["{{{n}}}", 1]}`,
			params:   map[string]interface{}{"n": 2.5},
			expected: `{"a":[2.5,1]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Compile(tt.template, tt.params)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(out))
		})
	}
}

func TestCompile_LiteralTemplateIsUnchanged(t *testing.T) {
	template := `{"3":{"class_type":"KSampler","inputs":{"seed":1125899906842624,"cfg":7.5,"model":["4",0]}},"4":{"class_type":"CheckpointLoaderSimple","inputs":{"ckpt_name":"model.safetensors"}}}`

	bags := []map[string]interface{}{
		nil,
		{},
		{"prompt": "unused", "width": 512},
	}
	for _, params := range bags {
		out, err := Compile(template, params)
		require.NoError(t, err)
		assert.JSONEq(t, template, string(out))
		assert.Contains(t, string(out), "1125899906842624")
	}
}

func TestCompile_MissingParam(t *testing.T) {
	_, err := Compile(`{"a":"{{prompt}}","b":"{{{seed}}}"}`, map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt")
	assert.Contains(t, err.Error(), "seed")
}

func TestCompile_InvalidTemplate(t *testing.T) {
	_, err := Compile(`{"a":`, nil)
	require.Error(t, err)
}

func TestCompile_DoesNotEscapeHTML(t *testing.T) {
	out, err := Compile(`{"a":"{{prompt}}"}`, map[string]interface{}{"prompt": "<tag> & more"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "<tag> & more", decoded["a"])
	assert.Contains(t, string(out), "<tag>")
}
