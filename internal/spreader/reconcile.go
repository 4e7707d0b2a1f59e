package spreader

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/model"
)

// computedConfidence is assigned to totals derived from extracted components
// rather than read off the page.
const computedConfidence = 0.7

// reconcileIncomeStatement fills missing computed totals and cross-checks
// the ones the document stated.
//
// Fill: an absent or zero gross_profit or operating_income whose inputs were
// extracted is derived from them, marked with computed provenance. Check: a
// stated total that disagrees with its derivation beyond the tolerance is
// logged and left exactly as extracted. The document's own numbers always
// win over arithmetic.
func reconcileIncomeStatement(s *model.IncomeStatement, tolerance float64) {
	if s.Revenue.Populated() && s.COGS.Populated() {
		reconcileTotal(&s.GrossProfit, s.Revenue.Amount()-s.COGS.Amount(),
			"gross_profit", "revenue - cogs", s.FiscalPeriod, tolerance)
	}
	if s.GrossProfit.Populated() && s.TotalOperatingExpenses.Populated() {
		reconcileTotal(&s.OperatingIncome, s.GrossProfit.Amount()-s.TotalOperatingExpenses.Amount(),
			"operating_income", "gross_profit - total_operating_expenses", s.FiscalPeriod, tolerance)
	}
}

// reconcileTotal applies the fill-or-check rule to one total.
func reconcileTotal(item *model.LineItem, derived float64, name, formula, periodLabel string, tolerance float64) {
	if !item.Populated() || item.Amount() == 0 {
		item.Value = model.Float(derived)
		item.Confidence = computedConfidence
		item.RawFieldsUsed = append(item.RawFieldsUsed,
			fmt.Sprintf("%s: %s", model.ComputedPrefix, formula))
		zap.L().Info("filled missing total from components",
			zap.String("field", name),
			zap.String("formula", formula),
			zap.String("period", periodLabel),
			zap.Float64("value", derived),
		)
		return
	}
	if !withinTolerance(derived, item.Amount(), tolerance) {
		zap.L().Warn("stated total disagrees with components, keeping extracted value",
			zap.String("field", name),
			zap.String("formula", formula),
			zap.String("period", periodLabel),
			zap.Float64("extracted", item.Amount()),
			zap.Float64("derived", derived),
		)
	}
}

// reconcileMultiIncome reconciles each period of a multi-period income
// statement in place.
func reconcileMultiIncome(m *model.MultiPeriodIncomeStatement, tolerance float64) {
	for i := range m.Periods {
		if m.Periods[i].Statement.FiscalPeriod == "" {
			m.Periods[i].Statement.FiscalPeriod = m.Periods[i].PeriodLabel
		}
		reconcileIncomeStatement(&m.Periods[i].Statement, tolerance)
	}
}

var digitsRe = regexp.MustCompile(`\d+`)

// sourcePattern reduces a raw source snippet to its digit-free shape so the
// same row label matches across periods with different amounts.
func sourcePattern(raw string) string {
	stripped := digitsRe.ReplaceAllString(raw, "#")
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// AuditIncomeConsistency cross-references field population and source rows
// across the periods of one multi-period income extraction. Findings are
// logged and returned; nothing is modified.
func AuditIncomeConsistency(m *model.MultiPeriodIncomeStatement) []string {
	if len(m.Periods) < 2 {
		return nil
	}
	labels := make([]string, len(m.Periods))
	fieldSets := make([][]model.NamedItem, len(m.Periods))
	for i := range m.Periods {
		labels[i] = m.Periods[i].PeriodLabel
		fieldSets[i] = m.Periods[i].Statement.Fields()
	}
	return auditFieldConsistency(labels, fieldSets)
}

// AuditBalanceConsistency is the balance sheet counterpart of
// AuditIncomeConsistency.
func AuditBalanceConsistency(m *model.MultiPeriodBalanceSheet) []string {
	if len(m.Periods) < 2 {
		return nil
	}
	labels := make([]string, len(m.Periods))
	fieldSets := make([][]model.NamedItem, len(m.Periods))
	for i := range m.Periods {
		labels[i] = m.Periods[i].PeriodLabel
		fieldSets[i] = m.Periods[i].Statement.Fields()
	}
	return auditFieldConsistency(labels, fieldSets)
}

// auditFieldConsistency compares field population and source-row shape
// across periods. A field populated in some periods but not others, or fed
// from differently shaped source rows, usually means the row mapping drifted
// between columns.
func auditFieldConsistency(labels []string, fieldSets [][]model.NamedItem) []string {
	type fieldTrace struct {
		populatedIn []string
		patterns    map[string][]string
	}
	traces := map[string]*fieldTrace{}

	for i, fields := range fieldSets {
		for _, f := range fields {
			t := traces[f.Name]
			if t == nil {
				t = &fieldTrace{patterns: map[string][]string{}}
				traces[f.Name] = t
			}
			if !f.Item.Populated() {
				continue
			}
			t.populatedIn = append(t.populatedIn, labels[i])
			for _, raw := range f.Item.RawFieldsUsed {
				if raw == model.NotFoundMarker || strings.HasPrefix(raw, model.ComputedPrefix) {
					continue
				}
				pat := sourcePattern(raw)
				t.patterns[pat] = append(t.patterns[pat], labels[i])
			}
		}
	}

	var findings []string
	for _, f := range fieldSets[0] {
		t := traces[f.Name]
		if t == nil || len(t.populatedIn) == 0 {
			continue
		}
		if n := len(t.populatedIn); n < len(fieldSets) {
			findings = append(findings, fmt.Sprintf(
				"%s populated in %d of %d periods (%s)",
				f.Name, n, len(fieldSets), strings.Join(t.populatedIn, ", "),
			))
		}
		if len(t.patterns) > 1 {
			var pats []string
			for pat := range t.patterns {
				pats = append(pats, pat)
			}
			sort.Strings(pats)
			findings = append(findings, fmt.Sprintf(
				"%s read from %d distinct source rows across periods: %s",
				f.Name, len(t.patterns), strings.Join(pats, " | "),
			))
		}
	}

	for _, finding := range findings {
		zap.L().Warn("cross-period consistency finding", zap.String("finding", finding))
	}
	return findings
}

// auditPeriodMagnitudes flags a period whose total magnitude is wildly out
// of line with its neighbors, a typical symptom of a rollup column slipping
// through classification.
func auditPeriodMagnitudes(m *model.MultiPeriodIncomeStatement) []string {
	if len(m.Periods) < 3 {
		return nil
	}
	mags := make([]float64, len(m.Periods))
	for i, p := range m.Periods {
		mags[i] = math.Abs(p.Statement.Revenue.Amount())
	}
	var sum float64
	for _, v := range mags {
		sum += v
	}
	mean := sum / float64(len(mags))
	if mean == 0 {
		return nil
	}

	var findings []string
	for i, v := range mags {
		if v > mean*float64(len(mags)-1) {
			findings = append(findings, fmt.Sprintf(
				"period %q revenue is %.0fx the mean of all periods; a rollup column may have been extracted as a period",
				m.Periods[i].PeriodLabel, v/mean,
			))
		}
	}
	for _, finding := range findings {
		zap.L().Warn("cross-period magnitude finding", zap.String("finding", finding))
	}
	return findings
}
