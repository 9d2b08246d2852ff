package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			in:   `{"search_terms": ["battery"]}`,
			want: `{"search_terms": ["battery"]}`,
		},
		{
			name: "object wrapped in prose",
			in:   "Here is the plan you asked for:\n{\"max_items\": 50}\nLet me know if you need changes.",
			want: `{"max_items": 50}`,
		},
		{
			name: "markdown code fence",
			in:   "```json\n{\"topic\": \"Returns / Refunds\"}\n```",
			want: `{"topic": "Returns / Refunds"}`,
		},
		{
			name: "nested braces and strings",
			in:   `result: {"a": {"b": "close } brace in string"}, "c": 1} trailing`,
			want: `{"a": {"b": "close } brace in string"}, "c": 1}`,
		},
		{
			name:    "no object",
			in:      "I could not produce a plan for that question.",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			in:      `{"a": [1, 2`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNoJSONObject)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONObjectDecodesIntoStruct(t *testing.T) {
	raw, err := ExtractJSONObject("plan follows {\"search_terms\":[\"gps\",\"location\"],\"max_items\":100} done")
	require.NoError(t, err)

	var plan struct {
		SearchTerms []string `json:"search_terms"`
		MaxItems    int      `json:"max_items"`
	}
	require.NoError(t, json.Unmarshal(raw, &plan))
	assert.Equal(t, []string{"gps", "location"}, plan.SearchTerms)
	assert.Equal(t, 100, plan.MaxItems)
}
