package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/recruiteros/recruiteros/internal/ai"
)

// Stage is one of the four fixed pipeline buckets a candidate occupies.
type Stage string

const (
	StageNew       Stage = "New Applications"
	StageScreening Stage = "Screening"
	StageInterview Stage = "Interview"
	StageOffer     Stage = "Offer"
)

// Stages returns the board columns in display order.
func Stages() []Stage {
	return []Stage{StageNew, StageScreening, StageInterview, StageOffer}
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageNew, StageScreening, StageInterview, StageOffer:
		return true
	}
	return false
}

// CandidateRecord is one analyzed candidate. Only Stage changes after
// creation, and only through Store.Move.
type CandidateRecord struct {
	ID        string
	Name      string
	Role      string
	Score     int
	Stage     Stage
	Tags      []ai.Tag
	Summary   string
	CreatedAt time.Time

	// Analysis keeps the full payload for later display. Opaque here.
	Analysis *ai.Analysis
}

// NewCandidateRecord builds a record from a successful analysis. The initial
// stage comes from the score classifier.
func NewCandidateRecord(name string, analysis *ai.Analysis) *CandidateRecord {
	return &CandidateRecord{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      "Candidate",
		Score:     analysis.FitScore,
		Stage:     ClassifyScore(analysis.FitScore),
		Tags:      analysis.CandidateTags,
		Summary:   analysis.ScoreReasoning,
		CreatedAt: time.Now().UTC(),
		Analysis:  analysis,
	}
}

// Store holds the session's candidate records, most recent first. All
// mutation goes through Prepend and Move; readers get copied snapshots.
type Store struct {
	mu    sync.RWMutex
	items []*CandidateRecord
}

func NewStore() *Store {
	return &Store{}
}

// Prepend inserts the record at the head so the newest candidate is first.
func (s *Store) Prepend(record *CandidateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]*CandidateRecord{record}, s.items...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// FindByID returns the record with the given id, or nil.
func (s *Store) FindByID(id string) *CandidateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.items {
		if record.ID == id {
			return record
		}
	}
	return nil
}

// Move reassigns a record to the given stage. An unknown id is a no-op, not
// an error. Backward moves are allowed: the board is an organizational tool,
// not a workflow enforcer.
func (s *Store) Move(id string, stage Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.items {
		if record.ID == id {
			record.Stage = stage
			return true
		}
	}
	return false
}

// Snapshot returns the records in store order. The slice is a copy; the
// records themselves are shared.
func (s *Store) Snapshot() []*CandidateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]*CandidateRecord, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

// IDs returns all record ids in store order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.items))
	for _, record := range s.items {
		ids = append(ids, record.ID)
	}
	return ids
}

// ByStage partitions a snapshot into the four board columns, preserving store
// order within each column.
func (s *Store) ByStage() map[Stage][]*CandidateRecord {
	board := make(map[Stage][]*CandidateRecord, len(Stages()))
	for _, stage := range Stages() {
		board[stage] = []*CandidateRecord{}
	}
	for _, record := range s.Snapshot() {
		board[record.Stage] = append(board[record.Stage], record)
	}
	return board
}
