package spreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridge-group/spreader-cli/internal/model"
)

func TestIsAutoPeriod(t *testing.T) {
	for _, s := range []string{"", "latest", "auto", "detect", "autodetect", " Latest ", "AUTO"} {
		assert.True(t, IsAutoPeriod(s), "%q should be auto", s)
	}
	for _, s := range []string{"FY24", "Q1 2024", "Jan 2025", "2024"} {
		assert.False(t, IsAutoPeriod(s), "%q should be explicit", s)
	}
}

func TestShouldStopDetection(t *testing.T) {
	// Confident first pass stops immediately.
	assert.True(t, shouldStopDetection(0, 0.9))
	// Unconfident first pass escalates.
	assert.False(t, shouldStopDetection(0, 0.4))
	// The last window always stops, confident or not.
	assert.True(t, shouldStopDetection(len(pageWindowPolicy)-1, 0.1))
	// The threshold itself is sufficient.
	assert.True(t, shouldStopDetection(0, periodConfidenceThreshold))
}

func TestSortCandidatesMostRecentFirst(t *testing.T) {
	cands := []model.PeriodCandidate{
		{Label: "FY22", Confidence: 0.95},
		{Label: "FY24", Confidence: 0.8, IsMostRecent: true},
		{Label: "FY23", Confidence: 0.9},
	}
	sortCandidates(cands)
	assert.Equal(t, "FY24", cands[0].Label)
	assert.Equal(t, "FY22", cands[1].Label)
	assert.Equal(t, "FY23", cands[2].Label)
}

func TestConfidentCandidates(t *testing.T) {
	det := model.PeriodDetection{
		Candidates: []model.PeriodCandidate{
			{Label: "FY24", Confidence: 0.9},
			{Label: "FY23", Confidence: 0.5},
			{Label: "FY22", Confidence: 0.49},
			{Label: "", Confidence: 0.99},
		},
	}
	got := confidentCandidates(det)
	require.Len(t, got, 2)
	assert.Equal(t, "FY24", got[0].Label)
	assert.Equal(t, "FY23", got[1].Label)
}

func TestDetectPeriodsExplicitLabelShortCircuits(t *testing.T) {
	s := newTestSpreader(t, &fakeClient{}) // no responses queued: any call would fail
	det, err := s.detectPeriods(t.Context(), nil, "Q1 2024", &model.ExtractionContext{})
	require.NoError(t, err)
	assert.Equal(t, "Q1 2024", det.BestPeriod)
	assert.Equal(t, 1.0, det.Confidence)
}
