package spreader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/internal/model"
)

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		expected  float64
		actual    float64
		tolerance float64
		want      bool
	}{
		{"exact match", 1000, 1000, 0.05, true},
		{"within 5 percent", 1000, 1040, 0.05, true},
		{"outside 5 percent", 1000, 1060, 0.05, false},
		{"dollar floor absorbs rounding", 10, 10.5, 0.01, true},
		{"negative values", -500, -510, 0.05, true},
		{"zero expected small actual", 0, 0.5, 0.05, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, withinTolerance(tt.expected, tt.actual, tt.tolerance))
		})
	}
}

func incomeFixture() *model.IncomeStatement {
	return &model.IncomeStatement{
		Revenue:                model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
		COGS:                   model.LineItem{Value: model.Float(400000), Confidence: 0.9},
		GrossProfit:            model.LineItem{Value: model.Float(600000), Confidence: 0.9},
		TotalOperatingExpenses: model.LineItem{Value: model.Float(350000), Confidence: 0.85},
		OperatingIncome:        model.LineItem{Value: model.Float(250000), Confidence: 0.85},
		PretaxIncome:           model.LineItem{Value: model.Float(240000), Confidence: 0.8},
		IncomeTaxExpense:       model.LineItem{Value: model.Float(60000), Confidence: 0.8},
		NetIncome:              model.LineItem{Value: model.Float(180000), Confidence: 0.8},
		FiscalPeriod:           "FY24",
	}
}

func TestValidateIncomeStatementValid(t *testing.T) {
	res := ValidateIncomeStatement(incomeFixture(), 0.05)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "FY24", res.PeriodLabel)
	assert.InDelta(t, 600000, res.CalculatedValues["gross_profit"], 0.01)
	assert.InDelta(t, 250000, res.CalculatedValues["operating_income"], 0.01)
}

func TestValidateIncomeStatementGrossProfitMismatch(t *testing.T) {
	s := incomeFixture()
	s.GrossProfit.Value = model.Float(900000)

	res := ValidateIncomeStatement(s, 0.05)
	require.False(t, res.IsValid)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "gross_profit")
	assert.Contains(t, res.Errors[0], "revenue - cogs")
}

func TestValidateIncomeStatementMissingInputsSkipCheck(t *testing.T) {
	s := incomeFixture()
	s.COGS = model.LineItem{}
	s.GrossProfit.Value = model.Float(999999)

	res := ValidateIncomeStatement(s, 0.05)
	for _, e := range res.Errors {
		assert.NotContains(t, e, "gross_profit mismatch")
	}
}

func TestValidateIncomeStatementNetIncomeMismatch(t *testing.T) {
	s := incomeFixture()
	s.NetIncome.Value = model.Float(500000)

	res := ValidateIncomeStatement(s, 0.05)
	require.False(t, res.IsValid)
	assert.Contains(t, res.Errors[0], "net_income")
}

func balanceFixture() *model.BalanceSheet {
	return &model.BalanceSheet{
		TotalCurrentAssets:         model.LineItem{Value: model.Float(500000), Confidence: 0.9},
		TotalNonCurrentAssets:      model.LineItem{Value: model.Float(1500000), Confidence: 0.9},
		TotalAssets:                model.LineItem{Value: model.Float(2000000), Confidence: 0.95},
		TotalCurrentLiabilities:    model.LineItem{Value: model.Float(300000), Confidence: 0.9},
		TotalNonCurrentLiabilities: model.LineItem{Value: model.Float(700000), Confidence: 0.9},
		TotalLiabilities:           model.LineItem{Value: model.Float(1000000), Confidence: 0.9},
		TotalShareholdersEquity:    model.LineItem{Value: model.Float(1000000), Confidence: 0.9},
		TotalLiabilitiesAndEquity:  model.LineItem{Value: model.Float(2000000), Confidence: 0.9},
		AsOfDate:                   "2024-12-31",
	}
}

func TestValidateBalanceSheetValid(t *testing.T) {
	res := ValidateBalanceSheet(balanceFixture(), 0.05)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "2024-12-31", res.PeriodLabel)
}

func TestValidateBalanceSheetEquationViolated(t *testing.T) {
	s := balanceFixture()
	s.TotalShareholdersEquity.Value = model.Float(400000)

	res := ValidateBalanceSheet(s, 0.05)
	require.False(t, res.IsValid)

	var found bool
	for _, e := range res.Errors {
		if strings.Contains(e, "balance equation") || strings.Contains(e, "total_liabilities_and_equity") {
			found = true
		}
	}
	assert.True(t, found, "expected a balance equation or L+E finding, got %v", res.Errors)
}

func TestValidateMultiIncomeLabelsResults(t *testing.T) {
	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			{PeriodLabel: "FY24", Statement: *incomeFixture()},
			{PeriodLabel: "FY23", Statement: *incomeFixture()},
			{PeriodLabel: "FY22", Statement: *incomeFixture()},
		},
	}
	results := validateMultiIncome(t.Context(), m, 0.05)
	require.Len(t, results, 3)
	assert.Equal(t, "FY24", results[0].PeriodLabel)
	assert.Equal(t, "FY22", results[2].PeriodLabel)
	for _, r := range results {
		assert.True(t, r.IsValid)
	}
}
