package ai

import "context"

// AnalysisRequest carries one resume document and the job description it is
// evaluated against. Blind instructs the provider to ignore identity signals;
// no redaction happens on this side of the boundary.
type AnalysisRequest struct {
	JobDescription string
	Document       []byte
	MediaType      string
	Blind          bool
}

// Analyzer evaluates a single resume against a job description.
type Analyzer interface {
	Analyze(ctx context.Context, req *AnalysisRequest) (*Analysis, error)
}

// CandidateSummary is the compact projection of a stored candidate sent to the
// semantic filter. The full analysis payload is deliberately left out to bound
// request size.
type CandidateSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Tags    []Tag  `json:"tags"`
	Summary string `json:"summary"`
}

// Filterer answers a natural-language query over a candidate pool with the
// matching candidate IDs.
type Filterer interface {
	Filter(ctx context.Context, query string, pool []CandidateSummary) ([]string, error)
}

// Chat roles understood by the assistant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of an assistant conversation.
type Message struct {
	Role string
	Text string
}

// Assistant produces a conversational reply grounded in the provided context.
type Assistant interface {
	Reply(ctx context.Context, history []Message, message, grounding string) (string, error)
}
