package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/utils"
)

//go:embed analyzer_prompt.md
var analyzerPromptTemplate string

const blindBlock = `
*** BLIND HIRING MODE ACTIVE ***
- STRICTLY IGNORE the candidate's Name, Gender, Age, Photo/Headshot, and University/College Names.
- Do not allow the prestige of a university or demographic factors to influence the score.
- Focus ONLY on skills, experience, projects, and technical qualifications.
- In your output, refer to the candidate as "The Candidate".
`

const (
	analyzerSystem      = "You are a fair and moderate technical recruiter."
	analyzerSystemBlind = "You are a fair and moderate technical recruiter practicing blind hiring."
)

const defaultMaxLogLength = 200

type contentGenerator interface {
	Generate(ctx context.Context, req *Request) (string, error)
	Model() string
}

// Analyzer implements ai.Analyzer on top of Gemini structured output.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewAnalyzer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, req *ai.AnalysisRequest) (*ai.Analysis, error) {
	if req == nil {
		return nil, fmt.Errorf("analysis request is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}
	if len(req.Document) == 0 {
		return nil, fmt.Errorf("resume document is required")
	}

	prompt := buildAnalyzerPrompt(req.JobDescription, req.Blind)
	system := analyzerSystem
	if req.Blind {
		system = analyzerSystemBlind
	}

	a.logger.Debug("gemini analyze request",
		zap.String("model", a.generator.Model()),
		zap.String("media_type", req.MediaType),
		zap.Bool("blind", req.Blind),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.Generate(ctx, &Request{
		System: system,
		Schema: recruiterSchema(),
		Parts: []genai.Part{
			{InlineData: &genai.Blob{MIMEType: req.MediaType, Data: req.Document}},
			{Text: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini analyze response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseAnalysis(raw)
}

func buildAnalyzerPrompt(jobDescription string, blind bool) string {
	prompt := strings.ReplaceAll(analyzerPromptTemplate, "{{JOB_DESCRIPTION}}", jobDescription)

	block := ""
	if blind {
		block = blindBlock
	}
	return strings.ReplaceAll(prompt, "{{BLIND_BLOCK}}", block)
}

func parseAnalysis(raw string) (*ai.Analysis, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse analyzer response: %w", err)
	}

	return ai.DecodeAnalysis(data)
}

// recruiterSchema constrains the model output to the analysis contract.
func recruiterSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"fitScore":       {Type: genai.TypeNumber},
			"scoreReasoning": {Type: genai.TypeString},
			"topStrengths": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"candidateTags": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"label": {Type: genai.TypeString},
						"color": {Type: genai.TypeString, Enum: []string{"green", "red", "blue"}},
						"type":  {Type: genai.TypeString, Enum: []string{"strength", "risk", "skill"}},
					},
				},
			},
			"resumeQuality": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"readabilityScore": {Type: genai.TypeNumber},
					"visualFeedback": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"readabilityScore", "visualFeedback"},
			},
			"integrityCheck": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"status": {Type: genai.TypeString, Enum: []string{"clean", "flagged"}},
					"issues": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
				},
				Required: []string{"status", "issues"},
			},
			"gapAnalysis": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"interviewQuestions": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{
			"fitScore", "scoreReasoning", "topStrengths", "candidateTags",
			"resumeQuality", "integrityCheck", "gapAnalysis", "interviewQuestions",
		},
	}
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
