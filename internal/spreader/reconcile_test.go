package spreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/internal/model"
)

func TestReconcileFillsMissingGrossProfit(t *testing.T) {
	s := &model.IncomeStatement{
		Revenue:      model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
		COGS:         model.LineItem{Value: model.Float(400000), Confidence: 0.9},
		FiscalPeriod: "FY24",
	}

	reconcileIncomeStatement(s, 0.01)

	require.True(t, s.GrossProfit.Populated())
	assert.InDelta(t, 600000, s.GrossProfit.Amount(), 0.01)
	assert.Equal(t, computedConfidence, s.GrossProfit.Confidence)
	require.NotEmpty(t, s.GrossProfit.RawFieldsUsed)
	assert.Contains(t, s.GrossProfit.RawFieldsUsed[0], model.ComputedPrefix)
	assert.Contains(t, s.GrossProfit.RawFieldsUsed[0], "revenue - cogs")
}

func TestReconcileFillsOperatingIncomeFromFilledGrossProfit(t *testing.T) {
	s := &model.IncomeStatement{
		Revenue:                model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
		COGS:                   model.LineItem{Value: model.Float(400000), Confidence: 0.9},
		TotalOperatingExpenses: model.LineItem{Value: model.Float(350000), Confidence: 0.85},
	}

	reconcileIncomeStatement(s, 0.01)

	require.True(t, s.OperatingIncome.Populated())
	assert.InDelta(t, 250000, s.OperatingIncome.Amount(), 0.01)
	assert.Equal(t, computedConfidence, s.OperatingIncome.Confidence)
}

func TestReconcileKeepsExtractedValueOnMismatch(t *testing.T) {
	s := &model.IncomeStatement{
		Revenue:     model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
		COGS:        model.LineItem{Value: model.Float(400000), Confidence: 0.9},
		GrossProfit: model.LineItem{Value: model.Float(650000), Confidence: 0.8},
	}

	reconcileIncomeStatement(s, 0.01)

	// The stated number wins even though it disagrees with the derivation.
	assert.InDelta(t, 650000, s.GrossProfit.Amount(), 0.01)
	assert.Equal(t, 0.8, s.GrossProfit.Confidence)
	assert.Empty(t, s.GrossProfit.RawFieldsUsed)
}

func TestReconcileTreatsZeroAsMissing(t *testing.T) {
	s := &model.IncomeStatement{
		Revenue:     model.LineItem{Value: model.Float(1000000), Confidence: 0.95},
		COGS:        model.LineItem{Value: model.Float(400000), Confidence: 0.9},
		GrossProfit: model.LineItem{Value: model.Float(0), Confidence: 0.3},
	}

	reconcileIncomeStatement(s, 0.01)

	assert.InDelta(t, 600000, s.GrossProfit.Amount(), 0.01)
	assert.Equal(t, computedConfidence, s.GrossProfit.Confidence)
}

func TestSourcePattern(t *testing.T) {
	assert.Equal(t, sourcePattern("Total Revenue  1,234,567"),
		sourcePattern("total revenue 7,654,321"))
	assert.NotEqual(t, sourcePattern("Total Revenue 100"),
		sourcePattern("Net Sales 100"))
}

func TestAuditIncomeConsistencyFlagsPartialPopulation(t *testing.T) {
	withRevenue := model.IncomeStatement{
		Revenue: model.LineItem{Value: model.Float(100), Confidence: 0.9,
			RawFieldsUsed: []string{"Revenue 100"}},
	}
	withoutRevenue := model.IncomeStatement{}

	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			{PeriodLabel: "FY24", Statement: withRevenue},
			{PeriodLabel: "FY23", Statement: withoutRevenue},
		},
	}

	findings := AuditIncomeConsistency(m)
	require.NotEmpty(t, findings)
	assert.Contains(t, findings[0], "revenue populated in 1 of 2 periods")
}

func TestAuditIncomeConsistencyFlagsSourceRowDrift(t *testing.T) {
	a := model.IncomeStatement{
		Revenue: model.LineItem{Value: model.Float(100), Confidence: 0.9,
			RawFieldsUsed: []string{"Total Revenue 100"}},
	}
	b := model.IncomeStatement{
		Revenue: model.LineItem{Value: model.Float(90), Confidence: 0.9,
			RawFieldsUsed: []string{"Net Sales 90"}},
	}

	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			{PeriodLabel: "FY24", Statement: a},
			{PeriodLabel: "FY23", Statement: b},
		},
	}

	findings := AuditIncomeConsistency(m)
	require.NotEmpty(t, findings)
	assert.Contains(t, findings[0], "distinct source rows")
}

func TestAuditIncomeConsistencyCleanWhenAligned(t *testing.T) {
	stmt := model.IncomeStatement{
		Revenue: model.LineItem{Value: model.Float(100), Confidence: 0.9,
			RawFieldsUsed: []string{"Revenue 100"}},
	}
	other := stmt
	other.Revenue.RawFieldsUsed = []string{"Revenue 90"}

	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			{PeriodLabel: "FY24", Statement: stmt},
			{PeriodLabel: "FY23", Statement: other},
		},
	}

	assert.Empty(t, AuditIncomeConsistency(m))
}

func TestAuditPeriodMagnitudesFlagsRollup(t *testing.T) {
	mk := func(rev float64) model.IncomeStatementPeriod {
		return model.IncomeStatementPeriod{
			Statement: model.IncomeStatement{
				Revenue: model.LineItem{Value: model.Float(rev), Confidence: 0.9},
			},
		}
	}
	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			mk(100), mk(110), mk(105), mk(12000),
		},
	}
	m.Periods[3].PeriodLabel = "Total"

	findings := auditPeriodMagnitudes(m)
	require.NotEmpty(t, findings)
	assert.Contains(t, findings[0], "Total")
}

func TestReconcileMultiIncomeBackfillsFiscalPeriod(t *testing.T) {
	m := &model.MultiPeriodIncomeStatement{
		Periods: []model.IncomeStatementPeriod{
			{PeriodLabel: "FY24", Statement: model.IncomeStatement{
				Revenue: model.LineItem{Value: model.Float(100), Confidence: 0.9},
				COGS:    model.LineItem{Value: model.Float(40), Confidence: 0.9},
			}},
		},
	}
	reconcileMultiIncome(m, 0.01)
	assert.Equal(t, "FY24", m.Periods[0].Statement.FiscalPeriod)
	assert.True(t, m.Periods[0].Statement.GrossProfit.Populated())
}
