package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corerr "github.com/signos-ai/signos/internal/errors"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence",
			input:    "```json\n[\"HOLA\"]\n```",
			expected: `["HOLA"]`,
		},
		{
			name:     "plain fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: `{"a": 1}`,
		},
		{
			name:     "no fence",
			input:    `  ["HOLA"]  `,
			expected: `["HOLA"]`,
		},
		{
			name:     "fence with surrounding prose",
			input:    "Here you go:\n```json\n[\"GRACIAS\"]\n```\nLet me know!",
			expected: `["GRACIAS"]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.input))
		})
	}
}

func TestUnmarshalFirstArray(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		var out []string
		require.NoError(t, UnmarshalFirstArray(`["HOLA", "GRACIAS"]`, &out))
		assert.Equal(t, []string{"HOLA", "GRACIAS"}, out)
	})

	t.Run("array with leading prose", func(t *testing.T) {
		var out []string
		require.NoError(t, UnmarshalFirstArray(`The selected glosas are: ["HOLA"] as requested.`, &out))
		assert.Equal(t, []string{"HOLA"}, out)
	})

	t.Run("fenced array", func(t *testing.T) {
		var out []string
		require.NoError(t, UnmarshalFirstArray("```json\n[\"BUENOS DIAS\"]\n```", &out))
		assert.Equal(t, []string{"BUENOS DIAS"}, out)
	})

	t.Run("brackets inside strings do not break balance", func(t *testing.T) {
		var out []string
		require.NoError(t, UnmarshalFirstArray(`["A[1]", "B"]`, &out))
		assert.Equal(t, []string{"A[1]", "B"}, out)
	})

	t.Run("no array present", func(t *testing.T) {
		var out []string
		err := UnmarshalFirstArray(`I could not find any matching signs.`, &out)
		require.Error(t, err)
		assert.True(t, corerr.IsCode(err, corerr.ErrCodeUnparseableModelOutput))
	})

	t.Run("unbalanced array", func(t *testing.T) {
		var out []string
		err := UnmarshalFirstArray(`["HOLA", "GRAC`, &out)
		require.Error(t, err)
		assert.True(t, corerr.IsCode(err, corerr.ErrCodeUnparseableModelOutput))
	})
}

func TestUnmarshalFirstObject(t *testing.T) {
	t.Run("object with prose", func(t *testing.T) {
		var out struct {
			Intent string `json:"intent"`
		}
		require.NoError(t, UnmarshalFirstObject(`Sure: {"intent": "sign_lookup"} done`, &out))
		assert.Equal(t, "sign_lookup", out.Intent)
	})

	t.Run("nested object", func(t *testing.T) {
		var out map[string]any
		require.NoError(t, UnmarshalFirstObject(`{"a": {"b": 1}, "c": "}"}`, &out))
		assert.Contains(t, out, "a")
		assert.Equal(t, "}", out["c"])
	})

	t.Run("no object present", func(t *testing.T) {
		var out map[string]any
		err := UnmarshalFirstObject(`nothing here`, &out)
		require.Error(t, err)
		assert.True(t, corerr.IsCode(err, corerr.ErrCodeUnparseableModelOutput))
	})
}
