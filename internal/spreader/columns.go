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
	"github.com/bridge-group/spreader-cli/internal/period"
	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// classifierPageCap bounds how many pages the column classifier sees; the
// column headers live on the statement's first pages.
const classifierPageCap = 3

// classifyColumns partitions the statement's columns into real periods and
// rollups, producing the frozen ColumnClassification the extractor is
// constrained to. Detected period candidates ride along as context for the
// model but are not binding.
//
// Degradation: if the model call fails, the classification is rebuilt from
// the confident period candidates so the pipeline can continue. Zero
// resulting period columns is the one hard stop: extraction cannot run
// without at least one period.
func (s *Spreader) classifyColumns(ctx context.Context, pages []render.Page, det model.PeriodDetection, st model.StatementType, ec *model.ExtractionContext) (model.ColumnClassification, error) {
	subset := headPages(pages, classifierPageCap)

	fast := s.gw.Fast()
	ec.RecordModel(fast.ID())

	raw, err := fast.Structured(ctx, llm.StructuredRequest{
		System: columnsSystemPrompt,
		Parts:  append(pagesToParts(subset), anthropic.TextPart(candidateContext(det, st))),
		Tool: anthropic.Tool{
			Name:        "record_column_classification",
			Description: "Record which columns are real periods and which are rollups",
			InputSchema: columnClassificationSchema(),
			Required:    []string{"period_columns", "rollup_columns"},
		},
		Phase: "column_classification",
	})

	var cls model.ColumnClassification
	switch {
	case err != nil:
		zap.L().Warn("column classification failed, rebuilding from period candidates",
			zap.Error(err),
		)
		ec.Warn("column classification failed: " + err.Error())
		cls = classificationFromCandidates(det)
	default:
		if uerr := json.Unmarshal(raw, &cls); uerr != nil {
			zap.L().Warn("column classification returned malformed output, rebuilding from period candidates",
				zap.Error(uerr),
			)
			ec.Warn("column classification returned malformed output")
			cls = classificationFromCandidates(det)
		}
	}

	cls.PeriodColumns = standardizeLabels(cls.PeriodColumns)

	if len(cls.PeriodColumns) == 0 {
		return cls, eris.Wrap(ErrNoPeriodsDetected, "spreader: classify columns")
	}

	zap.L().Info("columns classified",
		zap.Strings("period_columns", cls.PeriodColumns),
		zap.Strings("rollup_columns", cls.RollupColumns),
		zap.String("notes", cls.Notes),
	)
	return cls, nil
}

// candidateContext renders the detected period candidates as extra context
// for the classifier.
func candidateContext(det model.PeriodDetection, st model.StatementType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Statement type under extraction: %s.\n", st)
	if len(det.Candidates) == 0 {
		b.WriteString("No period candidates were pre-detected; classify from the column headers alone.")
		return b.String()
	}
	b.WriteString("Previously detected period candidates (context only, re-examine the headers yourself):\n")
	for _, c := range det.Candidates {
		fmt.Fprintf(&b, "- %q (confidence %.2f, most recent: %v)\n", c.Label, c.Confidence, c.IsMostRecent)
	}
	return b.String()
}

// classificationFromCandidates is the degraded path: the confident period
// candidates become the period columns.
func classificationFromCandidates(det model.PeriodDetection) model.ColumnClassification {
	cands := confidentCandidates(det)
	cls := model.ColumnClassification{
		Notes: "classification degraded: rebuilt from period detection candidates",
	}
	for _, c := range cands {
		cls.PeriodColumns = append(cls.PeriodColumns, c.Label)
		cls.ColumnOrder = append(cls.ColumnOrder, c.Label)
	}
	return cls
}

// standardizeLabels rewrites each accepted period label into standard form,
// dropping duplicates that collapse to the same standardized label.
func standardizeLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		std := period.Standardize(l)
		if std == "" || seen[std] {
			continue
		}
		seen[std] = true
		out = append(out, std)
	}
	return out
}
