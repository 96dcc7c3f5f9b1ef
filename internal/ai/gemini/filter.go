package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/utils"
)

const filterPromptTemplate = `User Query: "{{QUERY}}"

Candidate Pool:
{{POOL_JSON}}

Task: Return a JSON array of candidate IDs that match the user's natural language query.
Be smart about synonyms (e.g. if user asks for "React", match "Frontend" or "JS").
If the user specifies logic like "Score > 80", strictly follow it.`

// Filter implements ai.Filterer: natural-language narrowing of a candidate
// pool via Gemini structured output.
type Filter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewFilter(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Filter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (f *Filter) Filter(ctx context.Context, query string, pool []ai.CandidateSummary) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("filter query is required")
	}

	poolJSON, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate pool: %w", err)
	}

	prompt := strings.ReplaceAll(filterPromptTemplate, "{{QUERY}}", query)
	prompt = strings.ReplaceAll(prompt, "{{POOL_JSON}}", string(poolJSON))

	f.logger.Debug("gemini filter request",
		zap.String("model", f.generator.Model()),
		zap.Int("pool_size", len(pool)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, f.maxLogLen)),
	)

	raw, err := f.generator.Generate(ctx, &Request{
		Schema: &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		Parts: []genai.Part{{Text: prompt}},
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("gemini filter response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, f.maxLogLen)),
	)

	return parseIDList(raw)
}

func parseIDList(raw string) ([]string, error) {
	cleaned := extractJSON(raw)

	var values []any
	if err := json.Unmarshal([]byte(cleaned), &values); err != nil {
		return nil, fmt.Errorf("parse filter response: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, value := range values {
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				ids = append(ids, trimmed)
			}
		case float64:
			ids = append(ids, strings.TrimSpace(fmt.Sprintf("%v", v)))
		}
	}

	return ids, nil
}
