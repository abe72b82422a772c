package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webrenew/leadscout/internal/core"
)

func TestSpamSignalsHighConfidenceSingleMatch(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", "buy viagra online today"),
	}

	signals := SpamSignals(pages)
	assert.Len(t, signals, 1)
	assert.Equal(t, core.ConfidenceHigh, signals[0].Confidence)
	assert.False(t, signals[0].Hidden)
}

func TestSpamSignalsCJKContent(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", "<p>オンラインカジノへようこそ</p>"),
	}

	signals := SpamSignals(pages)
	assert.Len(t, signals, 1)
	assert.Equal(t, core.ConfidenceHigh, signals[0].Confidence)
}

func TestSpamSignalsMediumNeedsTwoDistinct(t *testing.T) {
	// One distinct phrase is below the medium-tier threshold.
	one := []core.PageResult{
		page("https://example.com/", "buy now buy now buy now"),
	}
	assert.Empty(t, SpamSignals(one))

	two := []core.PageResult{
		page("https://example.com/", "buy now! this is a limited time offer"),
	}
	signals := SpamSignals(two)
	assert.Len(t, signals, 1)
	assert.Equal(t, core.ConfidenceMedium, signals[0].Confidence)
}

func TestSpamSignalsLowNeedsThreeDistinct(t *testing.T) {
	two := []core.PageResult{
		page("https://example.com/", "amazing deal and incredible offer"),
	}
	assert.Empty(t, SpamSignals(two))

	three := []core.PageResult{
		page("https://example.com/", "amazing deal, incredible offer, free gift"),
	}
	signals := SpamSignals(three)
	assert.Len(t, signals, 1)
	assert.Equal(t, core.ConfidenceLow, signals[0].Confidence)
}

func TestSpamSignalsSuspiciousPath(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/wp-content/uploads/page", "regular content here"),
	}

	signals := SpamSignals(pages)
	assert.Len(t, signals, 1)
	assert.Zero(t, signals[0].Confidence)
	assert.Contains(t, signals[0].Description, "/wp-content/uploads/")
}

func TestAssessSpamIgnoresPathOnlyFindings(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/old/index.html", "regular content here"),
	}

	signals := SpamSignals(pages)
	assert.Len(t, signals, 1)

	a := AssessSpam(signals)
	assert.Zero(t, a.TotalSignals)
	assert.Zero(t, a.AvgConfidence)
	assert.Contains(t, a.Recommendation, "ACCEPT - No spam detected")
}

func TestSpamSignalsHiddenContainer(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `<div style="display:none">cheap viagra here</div>`),
	}

	signals := SpamSignals(pages)
	var hidden int
	for _, s := range signals {
		if s.Hidden {
			hidden++
			assert.Equal(t, core.ConfidenceHigh, s.Confidence)
		}
	}
	assert.Equal(t, 1, hidden)
	assert.True(t, HasHiddenSpam(signals))
}

func TestSpamSignalsHiddenVisibilitySpan(t *testing.T) {
	pages := []core.PageResult{
		page("https://example.com/", `<span style="visibility: hidden">win at our casino</span>`),
	}
	assert.True(t, HasHiddenSpam(SpamSignals(pages)))
}

func TestAssessSpamWeightedAverage(t *testing.T) {
	signals := []core.SpamSignal{
		{Confidence: core.ConfidenceHigh},
		{Confidence: core.ConfidenceHigh},
		{Confidence: core.ConfidenceMedium},
	}

	a := AssessSpam(signals)
	assert.Equal(t, 2, a.HighCount)
	assert.Equal(t, 1, a.MediumCount)
	assert.Equal(t, 3, a.TotalSignals)
	assert.InDelta(t, 86.67, a.AvgConfidence, 0.01)
	assert.Contains(t, a.Recommendation, "REVIEW")
}

func TestAssessSpamBands(t *testing.T) {
	tests := []struct {
		name    string
		signals []core.SpamSignal
		want    string
	}{
		{
			name:    "high average rejects",
			signals: []core.SpamSignal{{Confidence: core.ConfidenceHigh}},
			want:    "REJECT",
		},
		{
			name:    "medium average reviews",
			signals: []core.SpamSignal{{Confidence: core.ConfidenceMedium}},
			want:    "REVIEW",
		},
		{
			name:    "low average accepts as likely false positive",
			signals: []core.SpamSignal{{Confidence: core.ConfidenceLow}},
			want:    "ACCEPT - Low confidence",
		},
		{
			name:    "no signals",
			signals: nil,
			want:    "ACCEPT - No spam detected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, AssessSpam(tt.signals).Recommendation, tt.want)
		})
	}
}

func TestSpamSignalsSkipFailedPages(t *testing.T) {
	pages := []core.PageResult{
		{URL: "https://example.com/", StatusCode: 500, Body: "viagra casino"},
	}
	assert.Empty(t, SpamSignals(pages))
}
