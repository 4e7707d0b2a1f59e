package spreader

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/model"
)

// incomeSystemPrompt is the built-in extraction instruction for income
// statements. An external prompt directory can override it; the built-in is
// deliberately just as detailed so falling back never degrades extraction.
const incomeSystemPrompt = `You are a senior credit analyst spreading an income statement from scanned financial documents.

Work in this order:
1. ROW MAPPING FIRST. Before extracting any value, read every row label in the statement and decide which schema field each row maps to. A row that matches no schema field maps to the nearest "other" bucket or is left out; never force a value into the wrong field.
2. APPLY THE MAPPING IDENTICALLY to every period column. If "Selling expenses" maps to marketing_advertising in one column, it maps there in all columns.
3. ANCHOR TOTALS BEFORE DETAIL. Extract revenue, cogs, gross_profit, total_operating_expenses, and net_income first, then fill in the detail lines. The anchor totals stabilize the row mapping.
4. For each value, record the exact source row text in raw_fields_used and the section heading in source_section_hint. When multiple source rows sum into one schema field, list every row and put the components in breakdown.

Value rules:
- Amounts are recorded exactly as printed, respecting the statement's stated scale (units, thousands, millions). Do not rescale.
- Parenthesized amounts are negative.
- A field with no corresponding row gets value=null, confidence=0.0, and raw_fields_used=["NOT FOUND"]. Never guess a number, never compute one yourself.
- Confidence reflects legibility and mapping certainty: 1.0 for a crisp, unambiguous row; lower for smudged scans, ambiguous labels, or inferred section membership.

Set fiscal_period, currency, and scale from the statement headers.`

// balanceSystemPrompt is the built-in extraction instruction for balance
// sheets.
const balanceSystemPrompt = `You are a senior credit analyst spreading a balance sheet from scanned financial documents.

Work in this order:
1. ROW MAPPING FIRST. Read every row label and decide which schema field it maps to before extracting any value. Respect the statement's section structure: current assets, non-current assets, current liabilities, non-current liabilities, equity.
2. APPLY THE MAPPING IDENTICALLY to every reporting-date column.
3. ANCHOR TOTALS BEFORE DETAIL. Extract total_assets, total_liabilities, total_shareholders_equity, and total_liabilities_and_equity first, then the detail lines.
4. For each value, record the exact source row text in raw_fields_used and the section heading in source_section_hint. When multiple source rows sum into one schema field, list every row and put the components in breakdown.

Value rules:
- Amounts are recorded exactly as printed, respecting the stated scale. Do not rescale.
- Parenthesized amounts are negative. Accumulated depreciation and treasury stock are typically negative.
- A field with no corresponding row gets value=null, confidence=0.0, and raw_fields_used=["NOT FOUND"]. Never guess a number, never compute one yourself.
- The sheet should balance: total_assets = total_liabilities + total_shareholders_equity. If the printed numbers do not balance, extract them as printed anyway and note the discrepancy in your confidence scores.

Set as_of_date, currency, and scale from the statement headers.`

// detectionSystemPrompt instructs the statement-type detector.
const detectionSystemPrompt = `You classify which financial statement types appear in a set of document pages.

INCOME STATEMENT indicators: headers like "Income Statement", "Statement of Operations", "Profit and Loss", "P&L"; row labels like Revenue, Sales, Cost of Goods Sold, Gross Profit, Operating Expenses, Net Income.

BALANCE SHEET indicators: headers like "Balance Sheet", "Statement of Financial Position"; row labels like Assets, Liabilities, Stockholders' Equity, Cash and Equivalents, Accounts Receivable, Retained Earnings; a two-sided structure that balances.

Both types may be present in the same document. Report the 1-based page numbers where each statement appears. Cover pages, notes, and schedules are neither. Set per-type confidence separately from the overall confidence, and explain anything ambiguous in notes.`

// periodSystemPrompt instructs the period detector.
const periodSystemPrompt = `You identify the reporting periods in financial statement pages.

Enumerate EVERY period column visible in the statement headers, not just one. For each column report:
- label: the header text exactly as printed
- simplified: a concise form ("January through December 2024" becomes "2024")
- end_date: the period end date in YYYY-MM-DD when determinable
- is_most_recent: true for exactly one candidate, the latest period
- confidence: how certain you are this is a real reporting period column
- evidence: the header text or context you relied on

Then set best_period to the most recent period's simplified label and best_end_date to its end date. Overall confidence reflects how clearly the periods were printed. If no period headers are visible, return an empty candidate list and confidence 0.0; do not invent a year.`

// columnsSystemPrompt instructs the column classifier.
const columnsSystemPrompt = `You partition the value columns of a financial statement into REAL PERIOD columns and ROLLUP columns.

ROLLUP indicators (exclude from extraction):
- header contains "Total", "Sum", "Combined", "YTD", "Cumulative", "Grand Total"
- the column's values equal the sum of adjacent columns
- the column aggregates several months, quarters, or entities printed beside it

PERIOD indicators (keep for extraction):
- a specific date, month, quarter, fiscal year, or date range ("Jan 2025", "FY2024", "Three months ended March 31, 2024")

When a column is genuinely ambiguous, classify it as PERIOD: extracting an extra column is recoverable, silently dropping a real period is not.

Report period_columns ordered MOST RECENT FIRST, rollup_columns with every excluded column, column_order with all columns left to right as printed, and notes for anything ambiguous.`

// promptFiles names the override file per statement type.
var promptFiles = map[model.StatementType]string{
	model.StatementIncome:  "income_statement.txt",
	model.StatementBalance: "balance_sheet.txt",
}

// PromptSource loads extraction instructions, preferring an external
// directory when configured and falling back to the built-in texts when the
// directory is unavailable. The fallback is recorded on the extraction
// context, never silent.
type PromptSource struct {
	dir string
}

// NewPromptSource creates a source over dir; empty dir means built-ins only.
func NewPromptSource(dir string) *PromptSource {
	return &PromptSource{dir: dir}
}

func builtinInstructions(st model.StatementType) string {
	if st == model.StatementBalance {
		return balanceSystemPrompt
	}
	return incomeSystemPrompt
}

// Instructions returns the extraction system prompt for a statement type.
func (p *PromptSource) Instructions(st model.StatementType, ec *model.ExtractionContext) string {
	if p == nil || p.dir == "" {
		return builtinInstructions(st)
	}

	name, ok := promptFiles[st]
	if !ok {
		return builtinInstructions(st)
	}

	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil || len(data) == 0 {
		zap.L().Warn("prompt source unavailable, using built-in instructions",
			zap.String("dir", p.dir),
			zap.String("statement_type", string(st)),
			zap.Error(err),
		)
		if ec != nil {
			ec.FallbackPromptUsed = true
		}
		return builtinInstructions(st)
	}
	return string(data)
}
