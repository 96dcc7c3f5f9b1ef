package pipeline

import (
	"context"
	"errors"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/recruiteros/recruiteros/internal/ai"
)

type stubFilterer struct {
	ids      []string
	err      error
	lastPool []ai.CandidateSummary
	calls    int
}

func (s *stubFilterer) Filter(_ context.Context, _ string, pool []ai.CandidateSummary) ([]string, error) {
	s.calls++
	s.lastPool = pool
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

func TestFilterBlankQueryMeansNoFilter(t *testing.T) {
	filterer := &stubFilterer{}
	adapter := NewFilterAdapter(filterer, zap.NewNop())

	ids, active := adapter.Filter(context.Background(), "   ", []*CandidateRecord{newTestRecord("alice", 90)})
	if active {
		t.Fatal("expected no active filter for blank query")
	}
	if ids != nil {
		t.Fatalf("expected nil ids, got %v", ids)
	}
	if filterer.calls != 0 {
		t.Fatalf("expected no service call, got %d", filterer.calls)
	}
}

func TestFilterDelegatesCompactProjection(t *testing.T) {
	records := []*CandidateRecord{
		newTestRecord("alice", 90),
		newTestRecord("bob", 40),
	}
	filterer := &stubFilterer{ids: []string{records[1].ID}}
	adapter := NewFilterAdapter(filterer, zap.NewNop())

	ids, active := adapter.Filter(context.Background(), "weak candidates", records)
	if !active {
		t.Fatal("expected active filter")
	}
	if len(ids) != 1 || ids[0] != records[1].ID {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if len(filterer.lastPool) != 2 {
		t.Fatalf("expected 2 pool entries, got %d", len(filterer.lastPool))
	}
	entry := filterer.lastPool[0]
	if entry.ID != records[0].ID || entry.Name != "alice" || entry.Score != 90 {
		t.Fatalf("unexpected projection: %+v", entry)
	}
	if entry.Summary == "" || len(entry.Tags) == 0 {
		t.Fatalf("projection missing summary or tags: %+v", entry)
	}
}

func TestFilterFailsOpenOnServiceError(t *testing.T) {
	records := []*CandidateRecord{
		newTestRecord("alice", 90),
		newTestRecord("bob", 40),
		newTestRecord("carol", 70),
	}
	core, logs := observer.New(zapcore.WarnLevel)
	filterer := &stubFilterer{err: errors.New("service down")}
	adapter := NewFilterAdapter(filterer, zap.New(core))

	ids, active := adapter.Filter(context.Background(), "react experts", records)
	if !active {
		t.Fatal("expected active filter even on failure")
	}

	if logs.FilterMessage("semantic filter failed, showing all candidates").Len() != 1 {
		t.Fatal("expected a warning about the degraded filter")
	}

	want := make([]string, 0, len(records))
	for _, record := range records {
		want = append(want, record.ID)
	}
	sort.Strings(want)
	sort.Strings(ids)

	if len(ids) != len(want) {
		t.Fatalf("expected all %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("id set mismatch: expected %v, got %v", want, ids)
		}
	}
}
