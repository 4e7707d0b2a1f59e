package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// fakeClient records requests and returns canned responses.
type fakeClient struct {
	lastReq anthropic.MessageRequest
	resp    *anthropic.MessageResponse
	err     error
}

func (f *fakeClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func toolUseResponse(payload string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{
			{Type: "tool_use", ToolName: "record", ToolInput: json.RawMessage(payload)},
		},
	}
}

func TestNewGatewayRequiresAPIKey(t *testing.T) {
	_, err := NewGateway("", GatewayConfig{})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrModelConfiguration))
}

func TestNewGatewayRejectsUnknownModel(t *testing.T) {
	_, err := NewGatewayWithClient(&fakeClient{}, GatewayConfig{DeepModel: "gpt-nonexistent"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrModelConfiguration))
}

func TestGatewayTierDefaults(t *testing.T) {
	gw, err := NewGatewayWithClient(&fakeClient{}, GatewayConfig{})
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-5", gw.Deep().ID())
	assert.Equal(t, "claude-sonnet-4-5", gw.Fast().ID())
}

func TestGatewayTierOverride(t *testing.T) {
	gw, err := NewGatewayWithClient(&fakeClient{}, GatewayConfig{
		DeepModel: "claude-sonnet-4-5",
		FastModel: "claude-sonnet-4-5",
	})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", gw.Deep().ID())
}

func TestClampEffort(t *testing.T) {
	assert.Equal(t, effortBudgets["medium"], clampEffort(""))
	assert.Equal(t, effortBudgets["low"], clampEffort("low"))
	assert.Equal(t, effortBudgets["high"], clampEffort("high"))
	// Unsupported levels downgrade, never error.
	assert.Equal(t, effortBudgets["medium"], clampEffort("maximum"))
}

func TestStructuredForcesToolChoice(t *testing.T) {
	fake := &fakeClient{resp: toolUseResponse(`{"ok":true}`)}
	gw, err := NewGatewayWithClient(fake, GatewayConfig{})
	require.NoError(t, err)

	raw, err := gw.Fast().Structured(context.Background(), StructuredRequest{
		System: "detect statements",
		Parts:  []anthropic.ContentPart{anthropic.TextPart("page 1")},
		Tool:   anthropic.Tool{Name: "record", InputSchema: map[string]any{}},
		Phase:  "detection",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	assert.Equal(t, "record", fake.lastReq.ToolChoice)
	// Structured output wins over thinking.
	assert.Zero(t, fake.lastReq.ThinkingBudget)
}

func TestStructuredMissingToolUse(t *testing.T) {
	fake := &fakeClient{resp: &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: "I refuse"}},
	}}
	gw, err := NewGatewayWithClient(fake, GatewayConfig{})
	require.NoError(t, err)

	_, err = gw.Deep().Structured(context.Background(), StructuredRequest{
		Tool:  anthropic.Tool{Name: "record"},
		Phase: "extraction",
	})
	assert.Error(t, err)
}

func TestRegistryValidation(t *testing.T) {
	def := DefaultModel()
	assert.Equal(t, "claude-opus-4-5", def.ID)
	assert.True(t, ValidForSpreading(def))

	_, ok := Lookup("claude-sonnet-4-5")
	assert.True(t, ok)
	_, ok = Lookup("missing")
	assert.False(t, ok)

	textOnly := Definition{ID: "x", Capabilities: []Capability{CapabilityReasoning}}
	assert.False(t, ValidForSpreading(textOnly))
}
