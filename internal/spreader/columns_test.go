package spreader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bridge-group/spreader-cli/internal/model"
)

func TestStandardizeLabels(t *testing.T) {
	labels := []string{"January 2025", "Jan 2025", "FYE 2024", "Q1 2024"}
	got := standardizeLabels(labels)
	// "January 2025" and "Jan 2025" collapse to the same standard label.
	assert.Equal(t, []string{"Jan-2025", "FY24", "Q124"}, got)
}

func TestStandardizeLabelsDropsEmpty(t *testing.T) {
	assert.Empty(t, standardizeLabels(nil))
	assert.Empty(t, standardizeLabels([]string{""}))
}

func TestClassificationFromCandidates(t *testing.T) {
	det := model.PeriodDetection{
		Candidates: []model.PeriodCandidate{
			{Label: "Jan 2025", Confidence: 0.9, IsMostRecent: true},
			{Label: "Dec 2024", Confidence: 0.85},
			{Label: "maybe a total", Confidence: 0.3},
			{Label: "", Confidence: 0.95},
		},
	}

	cls := classificationFromCandidates(det)
	assert.Equal(t, []string{"Jan 2025", "Dec 2024"}, cls.PeriodColumns)
	assert.NotEmpty(t, cls.Notes)
}
