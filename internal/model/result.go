package model

import "encoding/json"

// StatementType names a financial statement kind.
type StatementType string

const (
	StatementIncome  StatementType = "income_statement"
	StatementBalance StatementType = "balance_sheet"
	StatementAuto    StatementType = "auto"
)

// ResultKind discriminates the SpreadResult union.
type ResultKind string

const (
	ResultIncome       ResultKind = "income"
	ResultBalance      ResultKind = "balance"
	ResultMultiIncome  ResultKind = "multi_income"
	ResultMultiBalance ResultKind = "multi_balance"
	ResultCombined     ResultKind = "combined"
)

// SpreadResult is a tagged union of the possible extraction outcomes.
// Exactly the arm named by Kind is non-nil; consumers switch on Kind
// exhaustively.
type SpreadResult struct {
	Kind         ResultKind                  `json:"kind"`
	Income       *IncomeStatement            `json:"income,omitempty"`
	Balance      *BalanceSheet               `json:"balance,omitempty"`
	MultiIncome  *MultiPeriodIncomeStatement `json:"multi_income,omitempty"`
	MultiBalance *MultiPeriodBalanceSheet    `json:"multi_balance,omitempty"`
	Combined     *CombinedExtraction         `json:"combined,omitempty"`

	Context    *ExtractionContext `json:"context,omitempty"`
	Validation []ValidationResult `json:"validation,omitempty"`
}

// CombinedExtraction is the auto-detect path's output: whichever statement
// types were present, plus the detection record and execution metadata.
// Both statement pointers nil means nothing was detected; Metadata then
// carries an explanatory note instead of results.
type CombinedExtraction struct {
	IncomeStatement *MultiPeriodIncomeStatement `json:"income_statement,omitempty"`
	BalanceSheet    *MultiPeriodBalanceSheet    `json:"balance_sheet,omitempty"`
	Detection       StatementTypeDetection      `json:"detection"`
	Metadata        map[string]any              `json:"metadata,omitempty"`
}

// ValidationResult reports accounting-identity checks for one period.
// Diagnostic only: producing it never mutates statement data.
type ValidationResult struct {
	PeriodLabel      string             `json:"period_label,omitempty"`
	IsValid          bool               `json:"is_valid"`
	Errors           []string           `json:"errors,omitempty"`
	CalculatedValues map[string]float64 `json:"calculated_values,omitempty"`
}

// QualityMetadata summarizes extraction coverage for one statement.
type QualityMetadata struct {
	TotalFields       int     `json:"total_fields"`
	ExtractedFields   int     `json:"extracted_fields"`
	ExtractionRate    float64 `json:"extraction_rate"`
	AverageConfidence float64 `json:"average_confidence"`
	HighConfidence    int     `json:"high_confidence"`
	MediumConfidence  int     `json:"medium_confidence"`
	LowConfidence     int     `json:"low_confidence"`
	Missing           int     `json:"missing"`
}

// ExtractionContext is created per top-level call and threaded through the
// pipeline. It collects diagnostics that used to be easy to lose: whether a
// built-in prompt fallback was used, which models ran, and step timings.
// Returned with the result; never stored globally.
type ExtractionContext struct {
	FallbackPromptUsed bool              `json:"fallback_prompt_used"`
	ModelsUsed         []string          `json:"models_used,omitempty"`
	StepDurationsMS    map[string]int64  `json:"step_durations_ms,omitempty"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// RecordModel notes a model id once.
func (c *ExtractionContext) RecordModel(id string) {
	for _, m := range c.ModelsUsed {
		if m == id {
			return
		}
	}
	c.ModelsUsed = append(c.ModelsUsed, id)
}

// RecordStep notes a step duration in milliseconds.
func (c *ExtractionContext) RecordStep(name string, ms int64) {
	if c.StepDurationsMS == nil {
		c.StepDurationsMS = make(map[string]int64)
	}
	c.StepDurationsMS[name] = ms
}

// Warn appends a diagnostic warning.
func (c *ExtractionContext) Warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

// RetryContext carries a failed attempt's output into the next extraction
// call of the single-period reasoning loop: the attempt number, the prior
// result verbatim, and the specific validation errors to correct.
type RetryContext struct {
	Attempt          int             `json:"attempt"`
	PriorResult      json.RawMessage `json:"prior_result,omitempty"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
}
