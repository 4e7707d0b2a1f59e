package spreader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/llm"
	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// columnConstraintText renders the frozen classification into the
// non-negotiable column instruction. The lists are copied verbatim from the
// frozen artifact: the model must never re-derive which columns to read.
func columnConstraintText(frozen model.ColumnClassification) string {
	var b strings.Builder
	b.WriteString("COLUMN CONSTRAINTS (final, do not re-derive):\n")
	b.WriteString("Extract ONLY these period columns, one periods[] entry each, in this order (most recent first):\n")
	for _, c := range frozen.PeriodColumns {
		fmt.Fprintf(&b, "  - %q\n", c)
	}
	if len(frozen.RollupColumns) > 0 {
		b.WriteString("IGNORE these rollup/aggregate columns entirely; they are not reporting periods:\n")
		for _, c := range frozen.RollupColumns {
			fmt.Fprintf(&b, "  - %q\n", c)
		}
	}
	b.WriteString("This column list was classified before extraction and is frozen. Do not add, drop, or reorder columns.\n")
	b.WriteString("Build the row-label mapping once and apply it identically to every listed column.")
	return b.String()
}

// retryContextText renders a RetryContext into the correction instruction
// appended on reasoning-loop retries: the model sees its own prior output
// plus the specific validation errors.
func retryContextText(rc *model.RetryContext) string {
	if rc == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n\nIMPORTANT: extraction attempt %d had validation errors:\n", rc.Attempt)
	for _, e := range rc.ValidationErrors {
		fmt.Fprintf(&b, "  - %s\n", e)
	}
	if len(rc.PriorResult) > 0 {
		b.WriteString("Previous extraction output:\n")
		b.Write(rc.PriorResult)
		b.WriteString("\n")
	}
	b.WriteString("Re-examine the images carefully and fix the mapping. Correct only what the errors implicate; keep verified values as they are.")
	return b.String()
}

// extractSingle runs one single-period extraction for the given statement
// type. rc carries the prior attempt on reasoning-loop retries.
func (s *Spreader) extractSingle(ctx context.Context, pages []render.Page, st model.StatementType, periodLabel string, rc *model.RetryContext, ec *model.ExtractionContext) (json.RawMessage, error) {
	instruction := fmt.Sprintf(
		"Analyze the visual layout of the attached financial statement pages.\nExtract the data for the period ending %s and record it with the tool.",
		periodLabel,
	)
	instruction += retryContextText(rc)

	deep := s.deepModel()
	ec.RecordModel(deep.ID())

	parts := append(pagesToParts(pages), anthropic.TextPart(instruction))

	raw, err := deep.Structured(ctx, llm.StructuredRequest{
		System: s.prompts.Instructions(st, ec),
		Parts:  parts,
		Tool: anthropic.Tool{
			Name:        "record_statement",
			Description: "Record the extracted financial statement",
			InputSchema: statementProperties(st),
		},
		Phase: fmt.Sprintf("extract_%s_single", st),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "spreader: extract %s period %s", st, periodLabel)
	}
	return raw, nil
}

// extractMultiPeriod runs the single consolidated call that extracts every
// frozen period column at once. One call, not one per period: the model
// cross-references columns for a consistent row-to-field mapping, and the
// document pages are paid for once.
//
// There is no retry here. A failed call is wrapped and returned; correctness
// for this path comes from the frozen column set, the single consolidated
// call, and post-hoc reconciliation.
func (s *Spreader) extractMultiPeriod(ctx context.Context, pages []render.Page, st model.StatementType, frozen model.ColumnClassification, ec *model.ExtractionContext) (json.RawMessage, error) {
	instruction := "Analyze the visual layout of the attached financial statement pages.\n" +
		columnConstraintText(frozen)

	deep := s.deepModel()
	ec.RecordModel(deep.ID())

	parts := append(pagesToParts(pages), anthropic.TextPart(instruction))

	raw, err := deep.Structured(ctx, llm.StructuredRequest{
		System: s.prompts.Instructions(st, ec),
		Parts:  parts,
		Tool: anthropic.Tool{
			Name:        "record_multi_period_statement",
			Description: "Record the extracted statement for every listed period column",
			InputSchema: multiPeriodSchema(st),
			Required:    []string{"periods"},
		},
		Phase: fmt.Sprintf("extract_%s_multi", st),
	})
	if err != nil {
		return nil, eris.Wrapf(err, "spreader: multi-period extract %s", st)
	}

	zap.L().Info("multi-period extraction complete",
		zap.String("statement_type", string(st)),
		zap.Int("requested_columns", len(frozen.PeriodColumns)),
	)
	return raw, nil
}

// parseMultiIncome decodes and normalizes a multi-period income result.
func parseMultiIncome(raw json.RawMessage) (*model.MultiPeriodIncomeStatement, error) {
	var m model.MultiPeriodIncomeStatement
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, eris.Wrap(err, "spreader: parse multi-period income statement")
	}
	m.Normalize()
	return &m, nil
}

// parseMultiBalance decodes and normalizes a multi-period balance result.
func parseMultiBalance(raw json.RawMessage) (*model.MultiPeriodBalanceSheet, error) {
	var m model.MultiPeriodBalanceSheet
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, eris.Wrap(err, "spreader: parse multi-period balance sheet")
	}
	m.Normalize()
	return &m, nil
}
