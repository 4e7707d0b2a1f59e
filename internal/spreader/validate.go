package spreader

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bridge-group/spreader-cli/internal/model"
)

// validationFloor is the absolute dollar floor under which identity
// mismatches are ignored regardless of relative size. Statements rounded to
// whole dollars or thousands routinely drift by a unit.
const validationFloor = 1.0

// amountPrinter formats dollar amounts with thousands separators for
// validation messages.
var amountPrinter = message.NewPrinter(language.AmericanEnglish)

func fmtAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", v)
}

// withinTolerance reports whether actual agrees with expected under the
// given relative tolerance, with the absolute floor applied.
func withinTolerance(expected, actual, tolerance float64) bool {
	diff := math.Abs(expected - actual)
	if diff <= validationFloor {
		return true
	}
	base := math.Abs(expected)
	if base < validationFloor {
		base = validationFloor
	}
	return diff/base <= tolerance
}

// ValidateIncomeStatement checks the income statement's accounting
// identities. Every check fires only when all of its inputs were extracted;
// missing inputs are never treated as zero. The statement is not mutated.
func ValidateIncomeStatement(s *model.IncomeStatement, tolerance float64) model.ValidationResult {
	res := model.ValidationResult{
		PeriodLabel:      s.FiscalPeriod,
		IsValid:          true,
		CalculatedValues: map[string]float64{},
	}

	check := func(name string, expected float64, actual *model.LineItem, formula string) {
		res.CalculatedValues[name] = expected
		if !actual.Populated() {
			return
		}
		got := actual.Amount()
		if !withinTolerance(expected, got, tolerance) {
			res.IsValid = false
			res.Errors = append(res.Errors, fmt.Sprintf(
				"%s mismatch: extracted %s but %s computes to %s",
				name, fmtAmount(got), formula, fmtAmount(expected),
			))
		}
	}

	if s.Revenue.Populated() && s.COGS.Populated() {
		check("gross_profit", s.Revenue.Amount()-s.COGS.Amount(),
			&s.GrossProfit, "revenue - cogs")
	}

	if s.GrossProfit.Populated() && s.TotalOperatingExpenses.Populated() {
		check("operating_income", s.GrossProfit.Amount()-s.TotalOperatingExpenses.Amount(),
			&s.OperatingIncome, "gross_profit - total_operating_expenses")
	}

	opexComponents := []*model.LineItem{
		&s.SalariesAndWages, &s.RentExpense, &s.Utilities,
		&s.DepreciationAmortization, &s.MarketingAdvertising,
		&s.ProfessionalFees, &s.Insurance, &s.OtherOperatingExpenses,
	}
	if s.TotalOperatingExpenses.Populated() {
		var sum float64
		var populated int
		for _, c := range opexComponents {
			if c.Populated() {
				sum += c.Amount()
				populated++
			}
		}
		// Component rows often collapse into "other"; only a populated
		// majority makes the sum meaningful.
		if populated >= len(opexComponents)/2 {
			check("total_operating_expenses", sum,
				&s.TotalOperatingExpenses, "sum of operating expense lines")
		}
	}

	if s.PretaxIncome.Populated() && s.IncomeTaxExpense.Populated() {
		check("net_income", s.PretaxIncome.Amount()-s.IncomeTaxExpense.Amount(),
			&s.NetIncome, "pretax_income - income_tax_expense")
	}

	return res
}

// ValidateBalanceSheet checks the balance sheet's accounting identities,
// the balance equation included. The statement is not mutated.
func ValidateBalanceSheet(s *model.BalanceSheet, tolerance float64) model.ValidationResult {
	res := model.ValidationResult{
		PeriodLabel:      s.AsOfDate,
		IsValid:          true,
		CalculatedValues: map[string]float64{},
	}

	check := func(name string, expected float64, actual *model.LineItem, formula string) {
		res.CalculatedValues[name] = expected
		if !actual.Populated() {
			return
		}
		got := actual.Amount()
		if !withinTolerance(expected, got, tolerance) {
			res.IsValid = false
			res.Errors = append(res.Errors, fmt.Sprintf(
				"%s mismatch: extracted %s but %s computes to %s",
				name, fmtAmount(got), formula, fmtAmount(expected),
			))
		}
	}

	if s.TotalCurrentAssets.Populated() && s.TotalNonCurrentAssets.Populated() {
		check("total_assets", s.TotalCurrentAssets.Amount()+s.TotalNonCurrentAssets.Amount(),
			&s.TotalAssets, "total_current_assets + total_non_current_assets")
	}

	if s.PPEGross.Populated() && s.AccumulatedDepreciation.Populated() {
		check("ppe_net", s.PPEGross.Amount()-math.Abs(s.AccumulatedDepreciation.Amount()),
			&s.PPENet, "ppe_gross - accumulated_depreciation")
	}

	if s.TotalCurrentLiabilities.Populated() && s.TotalNonCurrentLiabilities.Populated() {
		check("total_liabilities", s.TotalCurrentLiabilities.Amount()+s.TotalNonCurrentLiabilities.Amount(),
			&s.TotalLiabilities, "total_current_liabilities + total_non_current_liabilities")
	}

	if s.TotalLiabilities.Populated() && s.TotalShareholdersEquity.Populated() {
		lse := s.TotalLiabilities.Amount() + s.TotalShareholdersEquity.Amount()
		check("total_liabilities_and_equity", lse,
			&s.TotalLiabilitiesAndEquity, "total_liabilities + total_shareholders_equity")

		if s.TotalAssets.Populated() && !withinTolerance(s.TotalAssets.Amount(), lse, tolerance) {
			res.IsValid = false
			res.Errors = append(res.Errors, fmt.Sprintf(
				"balance equation violated: total_assets %s vs liabilities + equity %s",
				fmtAmount(s.TotalAssets.Amount()), fmtAmount(lse),
			))
		}
	}

	return res
}

// validateMultiIncome validates every period of a multi-period income
// statement. Periods are independent, so larger statements fan out across
// goroutines.
func validateMultiIncome(ctx context.Context, m *model.MultiPeriodIncomeStatement, tolerance float64) []model.ValidationResult {
	results := make([]model.ValidationResult, len(m.Periods))
	if len(m.Periods) < 3 {
		for i := range m.Periods {
			results[i] = ValidateIncomeStatement(&m.Periods[i].Statement, tolerance)
			results[i].PeriodLabel = m.Periods[i].PeriodLabel
		}
		return results
	}
	g, _ := errgroup.WithContext(ctx)
	for i := range m.Periods {
		g.Go(func() error {
			results[i] = ValidateIncomeStatement(&m.Periods[i].Statement, tolerance)
			results[i].PeriodLabel = m.Periods[i].PeriodLabel
			return nil
		})
	}
	g.Wait()
	return results
}

// validateMultiBalance validates every period of a multi-period balance
// sheet.
func validateMultiBalance(ctx context.Context, m *model.MultiPeriodBalanceSheet, tolerance float64) []model.ValidationResult {
	results := make([]model.ValidationResult, len(m.Periods))
	if len(m.Periods) < 3 {
		for i := range m.Periods {
			results[i] = ValidateBalanceSheet(&m.Periods[i].Statement, tolerance)
			results[i].PeriodLabel = m.Periods[i].PeriodLabel
		}
		return results
	}
	g, _ := errgroup.WithContext(ctx)
	for i := range m.Periods {
		g.Go(func() error {
			results[i] = ValidateBalanceSheet(&m.Periods[i].Statement, tolerance)
			results[i].PeriodLabel = m.Periods[i].PeriodLabel
			return nil
		})
	}
	g.Wait()
	return results
}
