// Package llm resolves model ids to configured handles and owns the
// provider-specific parameter translation: reasoning effort becomes a
// thinking budget, unsupported effort levels clamp to medium, and extended
// thinking is dropped when structured output is forced.
package llm

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/resilience"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// ErrModelConfiguration marks configuration failures caught at model-creation
// time, before any page rendering work is spent.
var ErrModelConfiguration = eris.New("llm: model configuration error")

// effortBudgets maps the generic reasoning-effort concept onto the
// provider's thinking token budget.
var effortBudgets = map[string]int64{
	"low":    2048,
	"medium": 8192,
	"high":   16384,
}

// GatewayConfig selects the two model tiers and the reasoning effort applied
// to deep-tier calls.
type GatewayConfig struct {
	DeepModel       string
	FastModel       string
	ReasoningEffort string
}

// Gateway creates model handles. Two logical tiers are exposed: Deep() for
// final extraction and Fast() for detection/classification.
type Gateway struct {
	client anthropic.Client
	deep   Definition
	fast   Definition
	budget int64
	retry  resilience.RetryConfig
}

// NewGateway validates credentials and tier configuration up front. A
// missing API key or an unknown/incapable model id fails here, typed, before
// any document work begins.
func NewGateway(apiKey string, cfg GatewayConfig) (*Gateway, error) {
	if apiKey == "" {
		return nil, eris.Wrap(ErrModelConfiguration, "llm: ANTHROPIC api key is not set")
	}
	return newGateway(anthropic.NewClient(apiKey), cfg)
}

// NewGatewayWithClient builds a gateway on an existing client. Used by tests
// to inject fakes.
func NewGatewayWithClient(client anthropic.Client, cfg GatewayConfig) (*Gateway, error) {
	return newGateway(client, cfg)
}

func newGateway(client anthropic.Client, cfg GatewayConfig) (*Gateway, error) {
	deepID := cfg.DeepModel
	if deepID == "" {
		deepID = DefaultModel().ID
	}
	fastID := cfg.FastModel
	if fastID == "" {
		fastID = "claude-sonnet-4-5"
	}

	deep, err := resolve(deepID)
	if err != nil {
		return nil, err
	}
	fast, err := resolve(fastID)
	if err != nil {
		return nil, err
	}

	return &Gateway{
		client: client,
		deep:   deep,
		fast:   fast,
		budget: clampEffort(cfg.ReasoningEffort),
		retry:  resilience.DefaultRetryConfig(),
	}, nil
}

func resolve(id string) (Definition, error) {
	def, ok := Lookup(id)
	if !ok {
		return Definition{}, eris.Wrapf(ErrModelConfiguration, "llm: unknown model %q", id)
	}
	if !ValidForSpreading(def) {
		return Definition{}, eris.Wrapf(ErrModelConfiguration,
			"llm: model %q lacks vision/structured-output capabilities", id)
	}
	return def, nil
}

// clampEffort maps a requested reasoning effort to a thinking budget,
// downgrading unsupported levels to medium with a warning rather than
// failing.
func clampEffort(effort string) int64 {
	if effort == "" {
		effort = "medium"
	}
	budget, ok := effortBudgets[effort]
	if !ok {
		zap.L().Warn("unsupported reasoning effort, clamping to medium",
			zap.String("requested", effort),
		)
		return effortBudgets["medium"]
	}
	return budget
}

// Deep returns the deep-reasoning tier handle used for final extraction.
func (g *Gateway) Deep() *Handle {
	return &Handle{gw: g, def: g.deep, thinkingBudget: g.budget}
}

// Fast returns the cheap/fast tier handle used for detection and
// classification. No thinking budget: these calls are structured-output
// calls where thinking would be dropped anyway.
func (g *Gateway) Fast() *Handle {
	return &Handle{gw: g, def: g.fast}
}

// Create returns a handle for an explicitly requested model id.
func (g *Gateway) Create(modelID string) (*Handle, error) {
	def, err := resolve(modelID)
	if err != nil {
		return nil, err
	}
	return &Handle{gw: g, def: def, thinkingBudget: g.budget}, nil
}

// Handle is a configured model ready to answer requests.
type Handle struct {
	gw             *Gateway
	def            Definition
	thinkingBudget int64
}

// ID returns the model id behind the handle.
func (h *Handle) ID() string {
	return h.def.ID
}

// StructuredRequest asks the model to answer by calling a single tool whose
// input is the structured result.
type StructuredRequest struct {
	System    string
	Parts     []anthropic.ContentPart
	Tool      anthropic.Tool
	MaxTokens int64
	Phase     string // for cost attribution logs
}

// Structured performs one structured-output call and returns the tool input
// payload. Forced tool choice is incompatible with extended thinking; when
// the handle carries a thinking budget it is dropped here and logged, never
// silently wrong. Transport-level transient errors are retried with backoff;
// a malformed response is returned to the caller undisturbed.
func (h *Handle) Structured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	if h.thinkingBudget > 0 {
		zap.L().Info("structured output forces tool choice, dropping extended thinking",
			zap.String("model", h.def.ID),
			zap.Int64("thinking_budget", h.thinkingBudget),
		)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = h.def.MaxTokens
	}

	msgReq := anthropic.MessageRequest{
		Model:      h.def.ID,
		MaxTokens:  maxTokens,
		Messages:   []anthropic.Message{{Role: "user", Content: req.Parts}},
		Tools:      []anthropic.Tool{req.Tool},
		ToolChoice: req.Tool.Name,
	}
	if req.System != "" {
		msgReq.System = anthropic.BuildCachedSystemBlocks(req.System)
	}

	retryCfg := h.gw.retry
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", req.Phase)

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return h.gw.client.CreateMessage(ctx, msgReq)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "llm: structured call %s", req.Phase)
	}

	resp.Usage.LogCost(h.def.ID, req.Phase)

	raw := resp.ToolInput()
	if raw == nil {
		return nil, eris.Errorf("llm: %s returned no tool_use block for %s", h.def.ID, req.Phase)
	}
	return raw, nil
}

// WarmCache sends one minimal primer message carrying the given system text
// as cached blocks, so later calls with the same system text read the 1h
// prompt cache instead of each writing it.
func (h *Handle) WarmCache(ctx context.Context, system string) error {
	resp, err := anthropic.PrimerRequest(ctx, h.gw.client, anthropic.MessageRequest{
		Model:     h.def.ID,
		MaxTokens: 16,
		System:    anthropic.BuildCachedSystemBlocks(system),
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: []anthropic.ContentPart{anthropic.TextPart("Acknowledge the instructions with one word.")},
		}},
	})
	if err != nil {
		return eris.Wrapf(err, "llm: warm cache %s", h.def.ID)
	}
	resp.Usage.LogCost(h.def.ID, "cache_primer")
	return nil
}
