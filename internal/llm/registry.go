package llm

// Capability names something a model can do that the spreader depends on.
type Capability string

const (
	CapabilityVision           Capability = "vision"
	CapabilityReasoning        Capability = "reasoning"
	CapabilityStructuredOutput Capability = "structured_output"
)

// Definition describes one model the gateway can hand out.
type Definition struct {
	ID               string
	DisplayName      string
	Provider         string
	Capabilities     []Capability
	CostTier         string // "premium" or "standard"
	SupportsThinking bool
	MaxTokens        int64
	Default          bool
}

// HasCapability reports whether the definition lists the capability.
func (d Definition) HasCapability(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// registry is the static catalog of models usable for spreading. The deep
// tier does final extraction; the fast tier handles detection and
// classification.
var registry = []Definition{
	{
		ID:          "claude-opus-4-5",
		DisplayName: "Claude Opus 4.5",
		Provider:    "anthropic",
		Capabilities: []Capability{
			CapabilityVision, CapabilityReasoning, CapabilityStructuredOutput,
		},
		CostTier:         "premium",
		SupportsThinking: true,
		MaxTokens:        16384,
		Default:          true,
	},
	{
		ID:          "claude-sonnet-4-5",
		DisplayName: "Claude Sonnet 4.5",
		Provider:    "anthropic",
		Capabilities: []Capability{
			CapabilityVision, CapabilityReasoning, CapabilityStructuredOutput,
		},
		CostTier:         "standard",
		SupportsThinking: true,
		MaxTokens:        16384,
	},
}

// Registry returns the model catalog in display order.
func Registry() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a model definition by id.
func Lookup(id string) (Definition, bool) {
	for _, d := range registry {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// DefaultModel returns the registry's default (deep tier) model.
func DefaultModel() Definition {
	for _, d := range registry {
		if d.Default {
			return d
		}
	}
	return registry[0]
}

// ValidForSpreading reports whether a model can drive extraction: it must
// read page images and emit schema-constrained output.
func ValidForSpreading(d Definition) bool {
	return d.HasCapability(CapabilityVision) && d.HasCapability(CapabilityStructuredOutput)
}
