package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/document"
)

type analyzerCall struct {
	analysis *ai.Analysis
	err      error
}

type stubAnalyzer struct {
	queue    []analyzerCall
	requests []*ai.AnalysisRequest
}

func (s *stubAnalyzer) Analyze(_ context.Context, req *ai.AnalysisRequest) (*ai.Analysis, error) {
	s.requests = append(s.requests, req)
	if len(s.queue) == 0 {
		return nil, errors.New("unexpected analyze call")
	}
	call := s.queue[0]
	s.queue = s.queue[1:]
	return call.analysis, call.err
}

func docs(names ...string) []*document.Document {
	out := make([]*document.Document, 0, len(names))
	for _, name := range names {
		out = append(out, &document.Document{
			Name:      name,
			MediaType: "application/pdf",
			Data:      []byte(name),
		})
	}
	return out
}

func TestRunBatchAppendsInReverseChronologicalOrder(t *testing.T) {
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{analysis: &ai.Analysis{FitScore: 90}},
		{analysis: &ai.Analysis{FitScore: 60}},
		{analysis: &ai.Analysis{FitScore: 30}},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	report := coordinator.RunBatch(context.Background(), "job description", docs("a", "b", "c"))

	if report.Attempted != 3 || report.Succeeded != 3 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	snapshot := store.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snapshot))
	}
	for i, want := range []string{"c", "b", "a"} {
		if snapshot[i].Name != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, snapshot[i].Name)
		}
	}
}

func TestRunBatchIsolatesPerDocumentFailure(t *testing.T) {
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{analysis: &ai.Analysis{FitScore: 90}},
		{err: errors.New("model unavailable")},
		{analysis: &ai.Analysis{FitScore: 55}},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	report := coordinator.RunBatch(context.Background(), "jd", docs("a", "b", "c"))

	if report.Attempted != 3 {
		t.Fatalf("expected 3 attempted, got %d", report.Attempted)
	}
	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Failures == nil {
		t.Fatal("expected aggregated failure")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", store.Len())
	}
	// The failed document must not stop the one after it.
	if store.Snapshot()[0].Name != "c" {
		t.Fatalf("expected record for document after the failure, got %q", store.Snapshot()[0].Name)
	}
}

func TestRunBatchAllFailuresLeavesStoreEmpty(t *testing.T) {
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{err: errors.New("boom")},
		{err: errors.New("boom")},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	report := coordinator.RunBatch(context.Background(), "jd", docs("a", "b"))

	if report.Attempted != 2 || report.Failed != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d records", store.Len())
	}
}

func TestRunBatchRejectsEmptyInput(t *testing.T) {
	analyzer := &stubAnalyzer{}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	if report := coordinator.RunBatch(context.Background(), "   ", docs("a")); report.Attempted != 0 {
		t.Fatalf("expected no-op for blank job description, got %+v", report)
	}
	if report := coordinator.RunBatch(context.Background(), "jd", nil); report.Attempted != 0 {
		t.Fatalf("expected no-op for empty document set, got %+v", report)
	}
	if len(analyzer.requests) != 0 {
		t.Fatalf("expected no analyzer calls, got %d", len(analyzer.requests))
	}
}

func TestRunBatchMissingScoreDefaultsToNewApplications(t *testing.T) {
	// A payload without fitScore decodes to 0, which classifies lowest.
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{analysis: &ai.Analysis{}},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	coordinator.RunBatch(context.Background(), "jd", docs("a"))

	record := store.Snapshot()[0]
	if record.Score != 0 {
		t.Fatalf("expected score 0, got %d", record.Score)
	}
	if record.Stage != StageNew {
		t.Fatalf("expected stage %q, got %q", StageNew, record.Stage)
	}
}

func TestRunBatchSingleDocumentRetainsLastResult(t *testing.T) {
	single := &ai.Analysis{FitScore: 75}
	analyzer := &stubAnalyzer{queue: []analyzerCall{{analysis: single}}}
	coordinator := NewCoordinator(NewStore(), analyzer, zap.NewNop())

	coordinator.RunBatch(context.Background(), "jd", docs("a"))

	if coordinator.LastResult() != single {
		t.Fatal("expected single-document result to be retained")
	}

	// A multi-document run clears the displayed result.
	analyzer.queue = []analyzerCall{
		{analysis: &ai.Analysis{FitScore: 10}},
		{analysis: &ai.Analysis{FitScore: 20}},
	}
	coordinator.RunBatch(context.Background(), "jd", docs("b", "c"))

	if coordinator.LastResult() != nil {
		t.Fatal("expected no displayed result after multi-document run")
	}
}

func TestRunBatchIsAdditiveAcrossInvocations(t *testing.T) {
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{analysis: &ai.Analysis{FitScore: 90}},
		{analysis: &ai.Analysis{FitScore: 40}},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	coordinator.RunBatch(context.Background(), "jd", docs("a"))
	coordinator.RunBatch(context.Background(), "jd", docs("b"))

	if store.Len() != 2 {
		t.Fatalf("expected records to accumulate, got %d", store.Len())
	}
}

func TestReanalyzeLastUsesCurrentBlindFlag(t *testing.T) {
	analyzer := &stubAnalyzer{queue: []analyzerCall{
		{analysis: &ai.Analysis{FitScore: 70}},
		{analysis: &ai.Analysis{FitScore: 65}},
	}}
	store := NewStore()
	coordinator := NewCoordinator(store, analyzer, zap.NewNop())

	coordinator.RunBatch(context.Background(), "jd", docs("a"))
	coordinator.SetBlind(true)

	analysis, err := coordinator.ReanalyzeLast(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if analysis.FitScore != 65 {
		t.Fatalf("expected refreshed analysis, got %+v", analysis)
	}
	if coordinator.LastResult() != analysis {
		t.Fatal("expected displayed result to be replaced")
	}

	last := analyzer.requests[len(analyzer.requests)-1]
	if !last.Blind {
		t.Fatal("expected re-analysis request to carry the blind flag")
	}
	// Only the displayed document is re-run, never the whole store.
	if store.Len() != 1 {
		t.Fatalf("expected store untouched, got %d records", store.Len())
	}
}

func TestReanalyzeLastWithoutDisplayedResult(t *testing.T) {
	coordinator := NewCoordinator(NewStore(), &stubAnalyzer{}, zap.NewNop())

	if _, err := coordinator.ReanalyzeLast(context.Background()); !errors.Is(err, ErrNoLastResult) {
		t.Fatalf("expected ErrNoLastResult, got %v", err)
	}
}
