package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vittamhq/loan-widget/internal/llm"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"json fence",
			"```json\n{\"reply\": \"hello\"}\n```",
			`{"reply": "hello"}`,
		},
		{
			"bare fence",
			"```\n{\"reply\": \"hello\"}\n```",
			`{"reply": "hello"}`,
		},
		{
			"plain object",
			`{"reply": "hello"}`,
			`{"reply": "hello"}`,
		},
		{
			"object surrounded by prose",
			"Sure, here you go: {\"reply\": \"hello\"} Hope that helps!",
			`{"reply": "hello"}`,
		},
		{
			"nested braces",
			`{"reply": "hi", "params": {"amount": 500000}}`,
			`{"reply": "hi", "params": {"amount": 500000}}`,
		},
		{
			"no json at all",
			"I cannot answer that.",
			"",
		},
		{
			"empty",
			"",
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.ExtractJSON(tt.in))
		})
	}
}
