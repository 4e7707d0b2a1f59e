package model

// Provenance markers recorded in LineItem.RawFieldsUsed.
const (
	// NotFoundMarker is recorded when a field has no corresponding row in
	// the source document. A NOT FOUND item always has a nil value and zero
	// confidence.
	NotFoundMarker = "NOT FOUND"

	// ComputedPrefix marks a value derived from other extracted fields
	// during reconciliation rather than read from the document.
	ComputedPrefix = "COMPUTED"
)

// BreakdownComponent is one labeled sub-component of a line item whose
// components sum to the parent value.
type BreakdownComponent struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// LineItem is a single financial fact extracted from a document.
//
// Value is nil when the document has no corresponding row; a nil value
// always carries zero confidence. RawFieldsUsed holds the source-text
// snippets the value was read from, the NotFoundMarker, or a
// ComputedPrefix provenance string appended by reconciliation.
type LineItem struct {
	Value             *float64             `json:"value"`
	Confidence        float64              `json:"confidence"`
	RawFieldsUsed     []string             `json:"raw_fields_used,omitempty"`
	SourceSectionHint string               `json:"source_section_hint,omitempty"`
	Breakdown         []BreakdownComponent `json:"breakdown,omitempty"`
}

// Populated reports whether the item carries an extracted or computed value.
func (li *LineItem) Populated() bool {
	return li != nil && li.Value != nil
}

// Amount returns the value, or 0 when the item is empty.
func (li *LineItem) Amount() float64 {
	if li == nil || li.Value == nil {
		return 0
	}
	return *li.Value
}

// Normalize enforces the nil-value invariant after JSON decoding: a missing
// value means zero confidence regardless of what the model reported.
func (li *LineItem) Normalize() {
	if li.Value == nil {
		li.Confidence = 0
	}
}

// Float returns a pointer to v. Convenience for building test fixtures and
// computed values.
func Float(v float64) *float64 {
	return &v
}

// NamedItem pairs a schema field name with its line item. Statement types
// expose their fields in document order through this shape so validation,
// reconciliation, and quality metadata can iterate without reflection.
type NamedItem struct {
	Name string
	Item *LineItem
}
