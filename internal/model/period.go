package model

// IncomeStatementPeriod wraps one period's income statement with its column
// label. Labels are rewritten once by standardization after extraction and
// never reordered afterwards.
type IncomeStatementPeriod struct {
	PeriodLabel string          `json:"period_label"`
	EndDate     string          `json:"end_date,omitempty"`
	Statement   IncomeStatement `json:"statement"`
}

// BalanceSheetPeriod wraps one reporting date's balance sheet.
type BalanceSheetPeriod struct {
	PeriodLabel string       `json:"period_label"`
	EndDate     string       `json:"end_date,omitempty"`
	Statement   BalanceSheet `json:"statement"`
}

// MultiPeriodIncomeStatement is the extractor's result for an income
// statement document: one entry per frozen period column, most recent first.
type MultiPeriodIncomeStatement struct {
	Periods  []IncomeStatementPeriod `json:"periods"`
	Currency string                  `json:"currency,omitempty"`
	Scale    string                  `json:"scale,omitempty"`
}

// MultiPeriodBalanceSheet is the multi-period balance sheet result.
type MultiPeriodBalanceSheet struct {
	Periods  []BalanceSheetPeriod `json:"periods"`
	Currency string               `json:"currency,omitempty"`
	Scale    string               `json:"scale,omitempty"`
}

// Normalize applies the nil-value invariant across all periods.
func (m *MultiPeriodIncomeStatement) Normalize() {
	for i := range m.Periods {
		m.Periods[i].Statement.Normalize()
	}
}

// Normalize applies the nil-value invariant across all periods.
func (m *MultiPeriodBalanceSheet) Normalize() {
	for i := range m.Periods {
		m.Periods[i].Statement.Normalize()
	}
}
