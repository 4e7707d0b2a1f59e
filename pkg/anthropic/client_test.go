package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateCost(t *testing.T) {
	usage := TokenUsage{
		InputTokens:  1_000_000,
		OutputTokens: 500_000,
	}

	cost := usage.EstimateCost("claude-sonnet-4-5")
	assert.InDelta(t, 3.00+7.50, cost, 0.001)

	assert.Zero(t, usage.EstimateCost("unknown-model"))
}

func TestEstimateCostWithCache(t *testing.T) {
	usage := TokenUsage{
		InputTokens:              100_000,
		OutputTokens:             10_000,
		CacheCreationInputTokens: 50_000,
		CacheReadInputTokens:     200_000,
	}

	cost := usage.EstimateCost("claude-opus-4-5")
	// in: 0.1*15, out: 0.01*75, cache write: 0.05*15*1.25, cache read: 0.2*15*0.1
	assert.InDelta(t, 1.5+0.75+0.9375+0.3, cost, 0.001)
}

func TestMessageResponseToolInput(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "Calling the tool."},
			{Type: "tool_use", ToolName: "record_statement", ToolInput: json.RawMessage(`{"revenue":{"value":100}}`)},
		},
	}

	raw := resp.ToolInput()
	require.NotNil(t, raw)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Contains(t, got, "revenue")

	assert.Equal(t, "Calling the tool.", resp.Text())
}

func TestMessageResponseToolInputMissing(t *testing.T) {
	resp := &MessageResponse{
		Content: []ContentBlock{{Type: "text", Text: "no tool call"}},
	}
	assert.Nil(t, resp.ToolInput())
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("system prompt text")
	require.Len(t, blocks, 1)
	assert.Equal(t, "system prompt text", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}

func TestContentPartBuilders(t *testing.T) {
	text := TextPart("hello")
	assert.Equal(t, "text", text.Type)
	assert.Equal(t, "hello", text.Text)

	img := ImagePart("image/jpeg", "base64data")
	assert.Equal(t, "image", img.Type)
	assert.Equal(t, "image/jpeg", img.MediaType)
	assert.Equal(t, "base64data", img.Data)
}
