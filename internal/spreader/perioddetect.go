package spreader

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bridge-group/spreader-cli/internal/llm"
	"github.com/bridge-group/spreader-cli/internal/model"
	"github.com/bridge-group/spreader-cli/internal/render"
	"github.com/bridge-group/spreader-cli/pkg/anthropic"
)

// periodConfidenceThreshold is the detection confidence at which escalation
// stops.
const periodConfidenceThreshold = 0.70

// pageWindowPolicy maps attempt number (0-based) to the page window each
// detection pass sees. The window grows when the first pass is unconfident:
// period headers occasionally sit on a continuation page.
var pageWindowPolicy = []int{2, 3}

// shouldStopDetection is the escalation stopping predicate.
func shouldStopDetection(attempt int, confidence float64) bool {
	return confidence >= periodConfidenceThreshold || attempt >= len(pageWindowPolicy)-1
}

// autoDetectSentinels are the requested-period values that mean "detect the
// period yourself".
var autoDetectSentinels = map[string]bool{
	"":           true,
	"latest":     true,
	"auto":       true,
	"detect":     true,
	"autodetect": true,
}

// IsAutoPeriod reports whether a requested period label asks for detection.
func IsAutoPeriod(requested string) bool {
	return autoDetectSentinels[strings.ToLower(strings.TrimSpace(requested))]
}

// detectPeriods finds the reporting-period columns. An explicit requested
// label short-circuits detection. Otherwise up to two escalating passes run
// per pageWindowPolicy; the second pass result is accepted only when its
// confidence is at least the first pass's. When no confident label is ever
// found the original sentinel is returned as best; a year is never
// invented.
func (s *Spreader) detectPeriods(ctx context.Context, pages []render.Page, requested string, ec *model.ExtractionContext) (model.PeriodDetection, error) {
	if !IsAutoPeriod(requested) {
		return model.PeriodDetection{
			BestPeriod: requested,
			Confidence: 1.0,
		}, nil
	}

	var best model.PeriodDetection
	for attempt := 0; attempt < len(pageWindowPolicy); attempt++ {
		window := headPages(pages, pageWindowPolicy[attempt])

		det, err := s.invokePeriodDetection(ctx, window, ec)
		if err != nil {
			zap.L().Warn("period detection pass failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			if attempt == 0 {
				// Give the wider window a chance.
				continue
			}
			break
		}

		// A later pass must beat or match the earlier one to be accepted.
		if attempt == 0 || det.Confidence >= best.Confidence {
			best = det
		}

		if shouldStopDetection(attempt, best.Confidence) {
			break
		}
		zap.L().Info("period detection confidence low, escalating page window",
			zap.Int("attempt", attempt+1),
			zap.Float64("confidence", best.Confidence),
			zap.Int("next_window", pageWindowPolicy[min(attempt+1, len(pageWindowPolicy)-1)]),
		)
	}

	sortCandidates(best.Candidates)

	if best.BestPeriod == "" || best.Confidence == 0 {
		zap.L().Warn("no confident period detected, keeping auto sentinel",
			zap.String("requested", requested),
		)
		best.BestPeriod = requested
	}

	zap.L().Info("periods detected",
		zap.String("best_period", best.BestPeriod),
		zap.Float64("confidence", best.Confidence),
		zap.Int("candidates", len(best.Candidates)),
	)
	return best, nil
}

func (s *Spreader) invokePeriodDetection(ctx context.Context, window []render.Page, ec *model.ExtractionContext) (model.PeriodDetection, error) {
	fast := s.gw.Fast()
	ec.RecordModel(fast.ID())

	raw, err := fast.Structured(ctx, llm.StructuredRequest{
		System: periodSystemPrompt,
		Parts:  pagesToParts(window),
		Tool: anthropic.Tool{
			Name:        "record_period_detection",
			Description: "Record every reporting period column visible in the pages",
			InputSchema: periodDetectionSchema(),
			Required:    []string{"best_period", "confidence", "candidates"},
		},
		Phase: "period_detection",
	})
	if err != nil {
		return model.PeriodDetection{}, err
	}

	var det model.PeriodDetection
	if err := json.Unmarshal(raw, &det); err != nil {
		return model.PeriodDetection{}, eris.Wrap(err, "spreader: parse period detection")
	}
	return det, nil
}

// sortCandidates orders most-recent-first, then by descending confidence.
func sortCandidates(cands []model.PeriodCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].IsMostRecent != cands[j].IsMostRecent {
			return cands[i].IsMostRecent
		}
		return cands[i].Confidence > cands[j].Confidence
	})
}

// confidentCandidates filters detection candidates to those worth
// extracting.
func confidentCandidates(det model.PeriodDetection) []model.PeriodCandidate {
	var out []model.PeriodCandidate
	for _, c := range det.Candidates {
		if c.Label != "" && c.Confidence >= 0.5 {
			out = append(out, c)
		}
	}
	return out
}
