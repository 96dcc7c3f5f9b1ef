package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/pipeline"
)

const (
	greeting = "Hi! I'm your recruitment assistant. Ask me anything about the candidates or recruitment strategies."

	// fallbackReply is appended instead of a raw error so a failed call never
	// leaves a dangling user turn in the transcript.
	fallbackReply = "Sorry, I had trouble connecting. Please try again."
)

var (
	// ErrEmptyMessage rejects blank input before any external call.
	ErrEmptyMessage = errors.New("chat message must not be empty")
	// ErrBusy rejects a send while a previous one is still pending.
	ErrBusy = errors.New("a chat request is already in flight")
)

// Turn is one entry of the conversation transcript.
type Turn struct {
	Role      string
	Text      string
	Timestamp time.Time
}

// Session is the assistant conversation for one application run. The
// transcript is append-only and seeded with a fixed greeting. At most one
// assistant call is in flight at a time: a send moves the session from idle
// to pending, and the reply (or the fallback) moves it back.
type Session struct {
	assistant ai.Assistant
	logger    *zap.Logger

	mu      sync.Mutex
	pending bool
	turns   []Turn
}

func NewSession(assistant ai.Assistant, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		assistant: assistant,
		logger:    logger,
		turns: []Turn{{
			Role:      ai.RoleAssistant,
			Text:      greeting,
			Timestamp: time.Now().UTC(),
		}},
	}
}

// Pending reports whether an assistant call is in flight.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := make([]Turn, len(s.turns))
	copy(transcript, s.turns)
	return transcript
}

// Send appends the user turn, grounds the assistant with a snapshot of the
// records and appends its reply. On service failure a fixed fallback turn is
// appended instead; the user's turn is never discarded.
func (s *Session) Send(ctx context.Context, text string, records []*pipeline.CandidateRecord) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	s.pending = true

	history := make([]ai.Message, 0, len(s.turns))
	for _, turn := range s.turns {
		history = append(history, ai.Message{Role: turn.Role, Text: turn.Text})
	}

	s.turns = append(s.turns, Turn{
		Role:      ai.RoleUser,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	s.mu.Unlock()

	reply, err := s.assistant.Reply(ctx, history, text, BuildContext(records))
	if err != nil {
		s.logger.Warn("assistant call failed", zap.Error(err))
		reply = fallbackReply
	}

	s.mu.Lock()
	s.turns = append(s.turns, Turn{
		Role:      ai.RoleAssistant,
		Text:      reply,
		Timestamp: time.Now().UTC(),
	})
	s.pending = false
	s.mu.Unlock()

	return nil
}

type contextEntry struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Score     int      `json:"score"`
	Stage     string   `json:"status"`
	Tags      string   `json:"tags"`
	Strengths []string `json:"strengths"`
	Gaps      []string `json:"gaps"`
	Summary   string   `json:"summary"`
}

// BuildContext serializes the records into the bounded grounding payload for
// the assistant. It is a projection, never the raw analysis payload.
func BuildContext(records []*pipeline.CandidateRecord) string {
	entries := make([]contextEntry, 0, len(records))
	for _, record := range records {
		labels := make([]string, 0, len(record.Tags))
		for _, tag := range record.Tags {
			labels = append(labels, tag.Label)
		}

		entry := contextEntry{
			Name:    record.Name,
			Role:    record.Role,
			Score:   record.Score,
			Stage:   string(record.Stage),
			Tags:    strings.Join(labels, ", "),
			Summary: record.Summary,
		}
		if record.Analysis != nil {
			entry.Strengths = record.Analysis.TopStrengths
			entry.Gaps = record.Analysis.GapAnalysis
		}
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
