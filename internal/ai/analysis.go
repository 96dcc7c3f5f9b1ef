package ai

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Tag colors assigned by the analyzer. The prompt requests exactly one of each.
const (
	TagColorGreen = "green"
	TagColorRed   = "red"
	TagColorBlue  = "blue"
)

// Tag kinds assigned by the analyzer.
const (
	TagKindStrength = "strength"
	TagKindRisk     = "risk"
	TagKindSkill    = "skill"
)

// Tag is a short label the analyzer attaches to a candidate.
type Tag struct {
	Label string `json:"label" mapstructure:"label"`
	Color string `json:"color" mapstructure:"color"`
	Kind  string `json:"type" mapstructure:"type"`
}

// ResumeQuality holds the analyzer's visual assessment of the resume document.
type ResumeQuality struct {
	ReadabilityScore int      `json:"readabilityScore" mapstructure:"readabilityScore"`
	VisualFeedback   []string `json:"visualFeedback" mapstructure:"visualFeedback"`
}

// IntegrityCheck holds the analyzer's consistency audit of the resume.
type IntegrityCheck struct {
	Status string   `json:"status" mapstructure:"status"`
	Issues []string `json:"issues" mapstructure:"issues"`
}

// Analysis is the structured result of a single resume evaluation. Every field
// is optional on the wire; DecodeAnalysis applies the defaulting rules once so
// consumers never have to.
type Analysis struct {
	FitScore           int             `json:"fitScore" mapstructure:"fitScore"`
	ScoreReasoning     string          `json:"scoreReasoning" mapstructure:"scoreReasoning"`
	TopStrengths       []string        `json:"topStrengths" mapstructure:"topStrengths"`
	CandidateTags      []Tag           `json:"candidateTags" mapstructure:"candidateTags"`
	ResumeQuality      *ResumeQuality  `json:"resumeQuality,omitempty" mapstructure:"resumeQuality"`
	IntegrityCheck     *IntegrityCheck `json:"integrityCheck,omitempty" mapstructure:"integrityCheck"`
	GapAnalysis        []string        `json:"gapAnalysis" mapstructure:"gapAnalysis"`
	InterviewQuestions []string        `json:"interviewQuestions" mapstructure:"interviewQuestions"`
}

// DecodeAnalysis converts the loosely typed payload returned by the model into
// an Analysis. Numbers arriving as strings or floats are coerced, a missing fit
// score becomes 0 and the score is clamped to [0,100].
func DecodeAnalysis(raw map[string]any) (*Analysis, error) {
	var analysis Analysis

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &analysis,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build analysis decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode analysis payload: %w", err)
	}

	if analysis.FitScore < 0 {
		analysis.FitScore = 0
	}
	if analysis.FitScore > 100 {
		analysis.FitScore = 100
	}

	if analysis.TopStrengths == nil {
		analysis.TopStrengths = []string{}
	}
	if analysis.CandidateTags == nil {
		analysis.CandidateTags = []Tag{}
	}
	if analysis.GapAnalysis == nil {
		analysis.GapAnalysis = []string{}
	}
	if analysis.InterviewQuestions == nil {
		analysis.InterviewQuestions = []string{}
	}

	return &analysis, nil
}
