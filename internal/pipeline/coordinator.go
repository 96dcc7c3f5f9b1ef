package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/recruiteros/recruiteros/internal/ai"
	"github.com/recruiteros/recruiteros/internal/document"
)

// BatchReport summarizes one RunBatch call. Attempted always equals the
// number of documents processed, regardless of outcome.
type BatchReport struct {
	Attempted int
	Succeeded int
	Failed    int

	// Failures aggregates the per-document errors. Nil when everything
	// succeeded. Failures never abort a batch; they are reported here.
	Failures error
}

// Coordinator owns the record store and runs analysis batches against the
// external analyzer, one document at a time.
type Coordinator struct {
	store    *Store
	analyzer ai.Analyzer
	logger   *zap.Logger

	mu         sync.Mutex
	blind      bool
	lastJD     string
	lastDoc    *document.Document
	lastResult *ai.Analysis
}

func NewCoordinator(store *Store, analyzer ai.Analyzer, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		analyzer: analyzer,
		logger:   logger,
	}
}

// SetBlind switches blind mode for subsequent analyzer calls.
func (c *Coordinator) SetBlind(blind bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blind = blind
}

func (c *Coordinator) Blind() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blind
}

// LastResult returns the raw analysis of the most recent single-document
// batch, or nil after a multi-document run.
func (c *Coordinator) LastResult() *ai.Analysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastResult
}

// RunBatch analyzes the documents strictly sequentially and prepends a record
// to the store for each success. A document failure is logged and counted,
// never propagated; the batch always runs to completion. Empty input makes
// the whole call a no-op.
func (c *Coordinator) RunBatch(ctx context.Context, jobDescription string, docs []*document.Document) *BatchReport {
	report := &BatchReport{}

	if strings.TrimSpace(jobDescription) == "" || len(docs) == 0 {
		c.logger.Warn("skipping batch",
			zap.Bool("has_job_description", strings.TrimSpace(jobDescription) != ""),
			zap.Int("documents", len(docs)),
		)
		return report
	}

	blind := c.Blind()
	total := len(docs)

	c.mu.Lock()
	c.lastResult = nil
	c.lastDoc = nil
	c.lastJD = jobDescription
	c.mu.Unlock()

	for i, doc := range docs {
		c.logger.Info("analyzing document",
			zap.Int("current", i+1),
			zap.Int("total", total),
			zap.String("document", doc.Name),
		)

		analysis, err := c.analyzer.Analyze(ctx, &ai.AnalysisRequest{
			JobDescription: jobDescription,
			Document:       doc.Data,
			MediaType:      doc.MediaType,
			Blind:          blind,
		})

		report.Attempted++

		if err != nil {
			report.Failed++
			report.Failures = multierr.Append(report.Failures, fmt.Errorf("%s: %w", doc.Name, err))
			c.logger.Warn("analysis failed",
				zap.String("document", doc.Name),
				zap.Error(err),
			)
			continue
		}

		record := NewCandidateRecord(doc.Name, analysis)
		c.store.Prepend(record)
		report.Succeeded++

		c.logger.Info("candidate added to pipeline",
			zap.String("candidate_id", record.ID),
			zap.String("name", record.Name),
			zap.Int("score", record.Score),
			zap.String("stage", string(record.Stage)),
		)

		if total == 1 {
			c.mu.Lock()
			c.lastResult = analysis
			c.lastDoc = doc
			c.mu.Unlock()
		}
	}

	c.logger.Info("batch completed",
		zap.Int("attempted", report.Attempted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)

	return report
}

// ReanalyzeLast re-runs the analyzer for the most recently displayed
// single-document result with the current blind flag. It refreshes only the
// displayed result; stored records are left alone.
func (c *Coordinator) ReanalyzeLast(ctx context.Context) (*ai.Analysis, error) {
	c.mu.Lock()
	doc := c.lastDoc
	jd := c.lastJD
	blind := c.blind
	c.mu.Unlock()

	if doc == nil {
		return nil, ErrNoLastResult
	}

	analysis, err := c.analyzer.Analyze(ctx, &ai.AnalysisRequest{
		JobDescription: jd,
		Document:       doc.Data,
		MediaType:      doc.MediaType,
		Blind:          blind,
	})
	if err != nil {
		return nil, fmt.Errorf("re-analyze %s: %w", doc.Name, err)
	}

	c.mu.Lock()
	c.lastResult = analysis
	c.mu.Unlock()

	return analysis, nil
}
