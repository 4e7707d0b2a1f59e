package spreader

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/llm"
	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// detectStatementTypes classifies which statement types the document
// contains, looking only at the leading pages: statements rarely start past
// the first third of a document, and the cap bounds detection cost.
//
// This detector never fails the pipeline. Any model or parse error degrades
// to an all-false, zero-confidence detection that the orchestrator treats as
// "nothing to extract".
func (s *Spreader) detectStatementTypes(ctx context.Context, pages []render.Page, ec *model.ExtractionContext) model.StatementTypeDetection {
	subset := headPages(pages, s.opts.DetectionPages)

	fast := s.gw.Fast()
	ec.RecordModel(fast.ID())

	raw, err := fast.Structured(ctx, llm.StructuredRequest{
		System: detectionSystemPrompt,
		Parts:  pagesToParts(subset),
		Tool: anthropic.Tool{
			Name:        "record_statement_detection",
			Description: "Record which financial statement types the pages contain",
			InputSchema: detectionSchema(),
			Required:    []string{"has_income_statement", "has_balance_sheet", "confidence"},
		},
		Phase: "statement_type_detection",
	})
	if err != nil {
		zap.L().Warn("statement type detection failed, degrading to none detected",
			zap.Error(err),
		)
		ec.Warn("statement type detection failed: " + err.Error())
		return model.StatementTypeDetection{Notes: "detection unavailable: model call failed"}
	}

	var det model.StatementTypeDetection
	if err := json.Unmarshal(raw, &det); err != nil {
		zap.L().Warn("statement type detection returned malformed output, degrading to none detected",
			zap.Error(err),
		)
		ec.Warn("statement type detection returned malformed output")
		return model.StatementTypeDetection{Notes: "detection unavailable: malformed model output"}
	}

	zap.L().Info("statement types detected",
		zap.Bool("income", det.HasIncomeStatement),
		zap.Bool("balance", det.HasBalanceSheet),
		zap.Ints("income_pages", det.IncomeStatementPages),
		zap.Ints("balance_pages", det.BalanceSheetPages),
		zap.Float64("confidence", det.Confidence),
	)
	return det
}
