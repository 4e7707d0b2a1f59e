package spreader

import (
	"github.com/bridge-group/spreader-cli/internal/model"
)

// Confidence band boundaries for quality metadata.
const (
	highConfidenceMin   = 0.8
	mediumConfidenceMin = 0.5
)

// qualityFromFields summarizes extraction coverage over a statement's
// fields.
func qualityFromFields(fields []model.NamedItem) model.QualityMetadata {
	q := model.QualityMetadata{TotalFields: len(fields)}
	var confSum float64
	for _, f := range fields {
		if !f.Item.Populated() {
			q.Missing++
			continue
		}
		q.ExtractedFields++
		confSum += f.Item.Confidence
		switch {
		case f.Item.Confidence >= highConfidenceMin:
			q.HighConfidence++
		case f.Item.Confidence >= mediumConfidenceMin:
			q.MediumConfidence++
		case f.Item.Confidence > 0:
			q.LowConfidence++
		}
	}
	if q.TotalFields > 0 {
		q.ExtractionRate = float64(q.ExtractedFields) / float64(q.TotalFields)
	}
	if q.ExtractedFields > 0 {
		q.AverageConfidence = confSum / float64(q.ExtractedFields)
	}
	return q
}

// IncomeQuality summarizes coverage for one income statement period.
func IncomeQuality(s *model.IncomeStatement) model.QualityMetadata {
	return qualityFromFields(s.Fields())
}

// BalanceQuality summarizes coverage for one balance sheet period.
func BalanceQuality(s *model.BalanceSheet) model.QualityMetadata {
	return qualityFromFields(s.Fields())
}
