package ai

import "testing"

func TestDecodeAnalysisCoercesLooseTypes(t *testing.T) {
	analysis, err := DecodeAnalysis(map[string]any{
		"fitScore":       "73",
		"scoreReasoning": "solid backend profile",
		"topStrengths":   []any{"Go", "SQL"},
		"candidateTags": []any{
			map[string]any{"label": "Generalist", "color": "red", "type": "risk"},
		},
		"resumeQuality":  map[string]any{"readabilityScore": 81.0, "visualFeedback": []any{"dense"}},
		"integrityCheck": map[string]any{"status": "flagged", "issues": []any{"timeline gap"}},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if analysis.FitScore != 73 {
		t.Fatalf("expected coerced score 73, got %d", analysis.FitScore)
	}
	if len(analysis.TopStrengths) != 2 {
		t.Fatalf("unexpected strengths: %v", analysis.TopStrengths)
	}
	if analysis.CandidateTags[0].Kind != TagKindRisk {
		t.Fatalf("unexpected tag kind: %q", analysis.CandidateTags[0].Kind)
	}
	if analysis.ResumeQuality == nil || analysis.ResumeQuality.ReadabilityScore != 81 {
		t.Fatalf("unexpected resume quality: %+v", analysis.ResumeQuality)
	}
	if analysis.IntegrityCheck == nil || analysis.IntegrityCheck.Status != "flagged" {
		t.Fatalf("unexpected integrity check: %+v", analysis.IntegrityCheck)
	}
}

func TestDecodeAnalysisDefaults(t *testing.T) {
	analysis, err := DecodeAnalysis(map[string]any{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if analysis.FitScore != 0 {
		t.Fatalf("missing score must default to 0, got %d", analysis.FitScore)
	}
	if analysis.TopStrengths == nil || analysis.CandidateTags == nil ||
		analysis.GapAnalysis == nil || analysis.InterviewQuestions == nil {
		t.Fatalf("slices must default to empty, got %+v", analysis)
	}
	if analysis.ResumeQuality != nil || analysis.IntegrityCheck != nil {
		t.Fatal("absent nested sections must stay nil")
	}
}

func TestDecodeAnalysisClampsScore(t *testing.T) {
	tests := []struct {
		name   string
		raw    any
		expect int
	}{
		{name: "above range", raw: 180, expect: 100},
		{name: "below range", raw: -5, expect: 0},
		{name: "float truncated", raw: 66.9, expect: 66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis, err := DecodeAnalysis(map[string]any{"fitScore": tt.raw})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if analysis.FitScore != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, analysis.FitScore)
			}
		})
	}
}
