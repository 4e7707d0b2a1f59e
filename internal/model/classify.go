package model

// StatementTypeDetection records which statement types appear in a document
// and on which pages. Page numbers are 1-based.
type StatementTypeDetection struct {
	HasIncomeStatement   bool    `json:"has_income_statement"`
	HasBalanceSheet      bool    `json:"has_balance_sheet"`
	IncomeStatementPages []int   `json:"income_statement_pages,omitempty"`
	BalanceSheetPages    []int   `json:"balance_sheet_pages,omitempty"`
	Confidence           float64 `json:"confidence"`
	IncomeConfidence     float64 `json:"income_confidence"`
	BalanceConfidence    float64 `json:"balance_confidence"`
	Notes                string  `json:"notes,omitempty"`
}

// PeriodCandidate is one reporting-period column the detector saw.
type PeriodCandidate struct {
	Label        string  `json:"label"`
	Simplified   string  `json:"simplified,omitempty"`
	EndDate      string  `json:"end_date,omitempty"`
	IsMostRecent bool    `json:"is_most_recent"`
	Confidence   float64 `json:"confidence"`
	Evidence     string  `json:"evidence,omitempty"`
}

// PeriodDetection is the period detector's output: the best label plus every
// candidate column, most recent first.
type PeriodDetection struct {
	BestPeriod  string            `json:"best_period"`
	BestEndDate string            `json:"best_end_date,omitempty"`
	Confidence  float64           `json:"confidence"`
	Candidates  []PeriodCandidate `json:"candidates,omitempty"`
}

// ColumnClassification is the frozen column-to-role decision for one
// extraction attempt. PeriodColumns are real reporting periods ordered most
// recent first; RollupColumns are aggregates (Total, YTD, Combined) that
// must be excluded from extraction. The artifact is created once per attempt
// and passed unchanged into every retry so column sets cannot drift between
// attempts.
type ColumnClassification struct {
	PeriodColumns []string `json:"period_columns"`
	RollupColumns []string `json:"rollup_columns,omitempty"`
	ColumnOrder   []string `json:"column_order,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}
