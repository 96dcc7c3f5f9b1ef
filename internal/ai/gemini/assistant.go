package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/utils"
)

const assistantSystemTemplate = `You are a helpful AI assistant inside a recruitment application called "RecruiterOS".
You have access to the current candidate pipeline data.

{{CONTEXT_BLOCK}}`

const assistantContextBlock = `CURRENT CANDIDATE DATA (Use this to answer questions):
{{CONTEXT}}

INSTRUCTIONS:
- You can compare candidates, summarize their strengths, or suggest interview questions based on their profiles.
- If the user asks about something not in the data, just say you don't know.`

// Assistant implements ai.Assistant: a grounded recruitment chat backed by a
// Gemini chat session.
type Assistant struct {
	generator contentGenerator
	model     string
	logger    *zap.Logger
	maxLogLen int
}

// NewAssistant builds the assistant. An empty model falls back to the
// generator's default.
func NewAssistant(generator contentGenerator, model string, logger *zap.Logger, maxLogLength int) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{
		generator: generator,
		model:     strings.TrimSpace(model),
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) Reply(ctx context.Context, history []ai.Message, message, grounding string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("chat message is required")
	}

	contextBlock := ""
	if strings.TrimSpace(grounding) != "" {
		contextBlock = strings.ReplaceAll(assistantContextBlock, "{{CONTEXT}}", grounding)
	}
	system := strings.ReplaceAll(assistantSystemTemplate, "{{CONTEXT_BLOCK}}", contextBlock)

	a.logger.Debug("gemini chat request",
		zap.Int("history_turns", len(history)),
		zap.Int("context_length", utf8.RuneCountInString(grounding)),
		zap.String("message_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	reply, err := a.generator.Generate(ctx, &Request{
		Model:   a.model,
		System:  system,
		History: chatHistory(history),
		Parts:   []genai.Part{{Text: message}},
	})
	if err != nil {
		return "", err
	}

	a.logger.Debug("gemini chat response",
		zap.Int("response_length", utf8.RuneCountInString(reply)),
		zap.String("response_preview", utils.TruncateForLog(reply, a.maxLogLen)),
	)

	return reply, nil
}

func chatHistory(history []ai.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, message := range history {
		role := genai.RoleUser
		if message.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: message.Text}},
		})
	}
	return contents
}
